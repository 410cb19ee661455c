package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/aetherbuildapp/aetherbuild/internal/engine"
	"github.com/aetherbuildapp/aetherbuild/internal/middleware"
	"github.com/aetherbuildapp/aetherbuild/internal/models"
	"github.com/aetherbuildapp/aetherbuild/internal/worker"
)

// OnboardingHandler exposes the conversation engine over HTTP. Every route
// resolves the caller's engine instance from the registry and returns the
// full dialogue state, so the client never tracks deltas.
type OnboardingHandler struct {
	Registry  *SessionRegistry
	Generator *worker.SiteGenerator
}

func NewOnboardingHandler(registry *SessionRegistry, generator *worker.SiteGenerator) *OnboardingHandler {
	return &OnboardingHandler{Registry: registry, Generator: generator}
}

type onboardingState struct {
	Step         models.OnboardingStep        `json:"step"`
	Messages     []models.ConversationMessage `json:"messages"`
	Profile      models.SiteProfile           `json:"profile"`
	IsGenerating bool                         `json:"is_generating"`
	IsEditMode   bool                         `json:"is_edit_mode"`
}

func stateOf(c *engine.Conversation) onboardingState {
	return onboardingState{
		Step:         c.Step(),
		Messages:     c.Messages(),
		Profile:      c.Profile(),
		IsGenerating: c.IsGenerating(),
		IsEditMode:   c.IsEditMode(),
	}
}

// GetState handles GET /onboarding
func (h *OnboardingHandler) GetState(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.RespondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	middleware.RespondJSON(w, http.StatusOK, stateOf(h.Registry.ConversationFor(user)))
}

// SendMessage handles POST /onboarding/message
func (h *OnboardingHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.RespondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c := h.Registry.ConversationFor(user)
	c.SubmitFreeText(req.Text)
	middleware.RespondJSON(w, http.StatusOK, stateOf(c))
}

// SelectOption handles POST /onboarding/option
func (h *OnboardingHandler) SelectOption(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.RespondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req struct {
		Option string `json:"option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c := h.Registry.ConversationFor(user)
	if err := c.SubmitChoice(r.Context(), req.Option); err != nil {
		middleware.RespondError(w, statusForError(err), err.Error())
		return
	}
	middleware.RespondJSON(w, http.StatusOK, stateOf(c))
}

// Skip handles POST /onboarding/skip
func (h *OnboardingHandler) Skip(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.RespondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	c := h.Registry.ConversationFor(user)
	c.Skip()
	middleware.RespondJSON(w, http.StatusOK, stateOf(c))
}

// GoBack handles POST /onboarding/back
func (h *OnboardingHandler) GoBack(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.RespondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	c := h.Registry.ConversationFor(user)
	c.GoBack()
	middleware.RespondJSON(w, http.StatusOK, stateOf(c))
}

// Restart handles POST /onboarding/restart
func (h *OnboardingHandler) Restart(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.RespondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	c := h.Registry.ConversationFor(user)
	c.Restart()
	middleware.RespondJSON(w, http.StatusOK, stateOf(c))
}

// UploadLogo handles POST /onboarding/logo (multipart form, field "file")
func (h *OnboardingHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.RespondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Missing file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, 10<<20)) // 10 MB cap
	if err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	c := h.Registry.ConversationFor(user)
	if err := c.UploadLogo(r.Context(), header.Filename, data); err != nil {
		middleware.RespondError(w, statusForError(err), err.Error())
		return
	}
	middleware.RespondJSON(w, http.StatusOK, stateOf(c))
}

// StartGeneration handles POST /onboarding/generate. It runs the planner and
// the full section pipeline synchronously; progress streams separately over
// SSE keyed by the returned project id.
func (h *OnboardingHandler) StartGeneration(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.RespondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	c := h.Registry.ConversationFor(user)
	plan, err := c.StartGeneration(r.Context())
	if err != nil {
		middleware.RespondError(w, statusForError(err), err.Error())
		return
	}

	// An AI-generated logo is produced here, after planning, so a failed
	// plan never burns an image call.
	if plan.Profile.LogoURL == models.LogoAIGenerated {
		if logoURL, logoErr := h.Generator.GenerateBrandLogo(r.Context(), plan.Profile); logoErr == nil {
			plan.Profile.LogoURL = logoURL
		}
	}

	project, err := h.Generator.GenerateSite(r.Context(), user.Sub, plan, user.Pro)
	if err != nil {
		middleware.RespondError(w, statusForError(err), err.Error())
		return
	}

	if _, err := h.Registry.ResetBuilder(r.Context(), user, project); err != nil {
		middleware.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"plan":    plan,
		"project": project,
	})
}
