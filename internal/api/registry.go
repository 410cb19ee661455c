package api

import (
	"context"
	"log"
	"sync"

	"github.com/aetherbuildapp/aetherbuild/config"
	"github.com/aetherbuildapp/aetherbuild/internal/engine"
	"github.com/aetherbuildapp/aetherbuild/internal/middleware"
	"github.com/aetherbuildapp/aetherbuild/internal/models"
	"github.com/aetherbuildapp/aetherbuild/internal/services"
)

// SessionRegistry owns the per-user engine instances. HTTP requests are
// stateless; the dialogue and the undo history live here between calls.
type SessionRegistry struct {
	mu    sync.Mutex
	users map[string]*userRuntime

	cfg        *config.Config
	planner    engine.Planner
	generator  engine.Generator
	translator engine.Translator
	imageGen   engine.ImageGenerator
	uploader   engine.Uploader
	projects   *services.ProjectService
}

type userRuntime struct {
	conversation *engine.Conversation
	builder      *engine.Builder
}

func NewSessionRegistry(cfg *config.Config, planner engine.Planner, generator engine.Generator, translator engine.Translator, imageGen engine.ImageGenerator, uploader engine.Uploader, projects *services.ProjectService) *SessionRegistry {
	return &SessionRegistry{
		users:      make(map[string]*userRuntime),
		cfg:        cfg,
		planner:    planner,
		generator:  generator,
		translator: translator,
		imageGen:   imageGen,
		uploader:   uploader,
		projects:   projects,
	}
}

func (reg *SessionRegistry) sessionFor(user *middleware.UserClaims) engine.Session {
	return engine.Session{UserID: user.Sub, Email: user.Email, Pro: user.Pro}
}

func (reg *SessionRegistry) runtimeFor(userID string) *userRuntime {
	if rt, ok := reg.users[userID]; ok {
		return rt
	}
	rt := &userRuntime{}
	reg.users[userID] = rt
	return rt
}

// ConversationFor returns the user's onboarding engine, starting a fresh
// dialogue on first contact.
func (reg *SessionRegistry) ConversationFor(user *middleware.UserClaims) *engine.Conversation {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	rt := reg.runtimeFor(user.Sub)
	if rt.conversation == nil {
		rt.conversation = engine.NewConversation(reg.sessionFor(user), reg.planner, reg.uploader)
	}
	return rt.conversation
}

// BuilderFor returns the user's editing engine, loading the stored project
// (or seeding the demo document) and the token balance on first contact.
func (reg *SessionRegistry) BuilderFor(ctx context.Context, user *middleware.UserClaims) (*engine.Builder, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	rt := reg.runtimeFor(user.Sub)
	if rt.builder != nil {
		return rt.builder, nil
	}

	var project models.Project
	stored, err := reg.projects.LoadCurrent(ctx, user.Sub)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		project = *stored
	} else {
		project = models.DemoProject()
	}

	tokens, err := reg.projects.LoadTokens(ctx, user.Sub, reg.cfg.InitialTokens)
	if err != nil {
		return nil, err
	}

	rt.builder = engine.NewBuilder(reg.sessionFor(user), project, tokens, reg.generator, reg.translator, reg.imageGen, reg.projects)
	return rt.builder, nil
}

// ResetBuilder loads a freshly generated project into the user's builder,
// dropping any edit history from the previous document.
func (reg *SessionRegistry) ResetBuilder(ctx context.Context, user *middleware.UserClaims, project models.Project) (*engine.Builder, error) {
	b, err := reg.BuilderFor(ctx, user)
	if err != nil {
		return nil, err
	}
	b.ResetProject(project)
	return b, nil
}

// PersistTokens writes the builder's balance through to the store. Called
// after debiting operations; failures are logged, the in-memory balance
// stays authoritative for the session.
func (reg *SessionRegistry) PersistTokens(ctx context.Context, userID string, balance int) {
	if err := reg.projects.SaveTokens(ctx, userID, balance); err != nil {
		log.Printf("[Registry] Failed to persist token balance for user %s: %v", userID, err)
	}
}
