package engine

import (
	"context"
	"sync"

	"github.com/aetherbuildapp/aetherbuild/internal/models"
)

type fakePlanner struct {
	mu    sync.Mutex
	plan  models.GenerationPlan
	err   error
	calls []models.SiteProfile

	// onCall runs outside the engine lock, before the result is returned.
	// Tests use it to race user actions against an in-flight plan.
	onCall func()
}

func (p *fakePlanner) Plan(_ context.Context, profile models.SiteProfile) (models.GenerationPlan, error) {
	p.mu.Lock()
	p.calls = append(p.calls, profile)
	plan, err, onCall := p.plan, p.err, p.onCall
	p.mu.Unlock()
	if onCall != nil {
		onCall()
	}
	return plan, err
}

type fakeGenerator struct {
	mu     sync.Mutex
	result models.GenerationResult
	err    error
	calls  []models.GenerationRequest

	// onCall runs outside the engine lock, before the result is returned.
	// Tests use it to race other operations against an in-flight request.
	onCall func()
}

func (g *fakeGenerator) GenerateSection(_ context.Context, req models.GenerationRequest) (models.GenerationResult, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	onCall := g.onCall
	g.mu.Unlock()
	if onCall != nil {
		onCall()
	}
	return g.result, g.err
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type fakeTranslator struct {
	mu    sync.Mutex
	err   error
	calls []models.TranslationRequest
}

func (t *fakeTranslator) Translate(_ context.Context, req models.TranslationRequest) (models.SectionContent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, req)
	if t.err != nil {
		return models.SectionContent{}, t.err
	}
	out := req.Content.Clone()
	out.Headline = "[" + req.TargetLanguage + "] " + out.Headline
	return out, nil
}

type fakeImageGen struct {
	mu    sync.Mutex
	url   string
	err   error
	calls []models.ImageRequest
}

func (g *fakeImageGen) GenerateImage(_ context.Context, req models.ImageRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.err != nil {
		return "", g.err
	}
	return g.url, nil
}

func (g *fakeImageGen) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type fakeUploader struct {
	url string
	err error
}

func (u *fakeUploader) Store(_ context.Context, filename string, _ []byte) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	if u.url != "" {
		return u.url, nil
	}
	return "https://cdn.test/" + filename, nil
}

type fakeProjectStore struct {
	mu    sync.Mutex
	saves []models.Project
	err   error
}

func (s *fakeProjectStore) Save(_ context.Context, _ string, project models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saves = append(s.saves, project)
	return nil
}

func (s *fakeProjectStore) LoadCurrent(context.Context, string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saves) == 0 {
		return nil, nil
	}
	p := s.saves[len(s.saves)-1]
	return &p, nil
}

func (s *fakeProjectStore) Delete(context.Context, string, string) error { return nil }

func (s *fakeProjectStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}
