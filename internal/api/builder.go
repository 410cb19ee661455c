package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aetherbuildapp/aetherbuild/internal/engine"
	"github.com/aetherbuildapp/aetherbuild/internal/middleware"
	"github.com/aetherbuildapp/aetherbuild/internal/models"
	"github.com/aetherbuildapp/aetherbuild/internal/services"
)

// BuilderHandler exposes the editing engine over HTTP. Every mutation
// responds with the full builder state; undo/redo availability rides along
// so the toolbar never guesses.
type BuilderHandler struct {
	Registry *SessionRegistry
	Publish  *services.PublishService
	Uploader engine.Uploader
}

func NewBuilderHandler(registry *SessionRegistry, publish *services.PublishService, uploader engine.Uploader) *BuilderHandler {
	return &BuilderHandler{
		Registry: registry,
		Publish:  publish,
		Uploader: uploader,
	}
}

type builderState struct {
	Project      models.Project `json:"project"`
	Tokens       int            `json:"tokens"`
	CanUndo      bool           `json:"can_undo"`
	CanRedo      bool           `json:"can_redo"`
	IsGenerating bool           `json:"is_generating"`
}

func stateOfBuilder(b *engine.Builder) builderState {
	return builderState{
		Project:      b.Project(),
		Tokens:       b.Tokens(),
		CanUndo:      b.CanUndo(),
		CanRedo:      b.CanRedo(),
		IsGenerating: b.IsGenerating(),
	}
}

// builder resolves the caller's engine or writes the error response.
func (h *BuilderHandler) builder(w http.ResponseWriter, r *http.Request) (*engine.Builder, *middleware.UserClaims, bool) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		middleware.RespondError(w, http.StatusUnauthorized, "User not found in context")
		return nil, nil, false
	}
	b, err := h.Registry.BuilderFor(r.Context(), user)
	if err != nil {
		middleware.RespondError(w, http.StatusInternalServerError, err.Error())
		return nil, nil, false
	}
	return b, user, true
}

// GetProject handles GET /builder
func (h *BuilderHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.builder(w, r)
	if !ok {
		return
	}
	middleware.RespondJSON(w, http.StatusOK, stateOfBuilder(b))
}

// GetLanguages handles GET /builder/languages
func (h *BuilderHandler) GetLanguages(w http.ResponseWriter, r *http.Request) {
	middleware.RespondJSON(w, http.StatusOK, models.Languages)
}

// Undo handles POST /builder/undo
func (h *BuilderHandler) Undo(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.builder(w, r)
	if !ok {
		return
	}
	b.Undo()
	middleware.RespondJSON(w, http.StatusOK, stateOfBuilder(b))
}

// Redo handles POST /builder/redo
func (h *BuilderHandler) Redo(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.builder(w, r)
	if !ok {
		return
	}
	b.Redo()
	middleware.RespondJSON(w, http.StatusOK, stateOfBuilder(b))
}

// SetLanguage handles POST /builder/language
func (h *BuilderHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.builder(w, r)
	if !ok {
		return
	}
	var req struct {
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Language == "" {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	b.SetLanguage(req.Language)
	middleware.RespondJSON(w, http.StatusOK, stateOfBuilder(b))
}

// ReorderSections handles POST /builder/sections/reorder
func (h *BuilderHandler) ReorderSections(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.builder(w, r)
	if !ok {
		return
	}
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := b.ReorderSections(req.From, req.To); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	middleware.RespondJSON(w, http.StatusOK, stateOfBuilder(b))
}

// AddSection handles POST /builder/sections
func (h *BuilderHandler) AddSection(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.builder(w, r)
	if !ok {
		return
	}
	var req struct {
		Type   models.SectionType `json:"type"`
		Prompt string             `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Type == "" {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	section, err := b.AddSection(r.Context(), req.Type, req.Prompt)
	if err != nil {
		middleware.RespondError(w, statusForError(err), err.Error())
		return
	}
	h.Registry.PersistTokens(r.Context(), user.Sub, b.Tokens())

	middleware.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"section": section,
		"state":   stateOfBuilder(b),
	})
}

// RemoveSection handles DELETE /builder/sections/{id}
func (h *BuilderHandler) RemoveSection(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.builder(w, r)
	if !ok {
		return
	}
	b.RemoveSection(mux.Vars(r)["id"])
	middleware.RespondJSON(w, http.StatusOK, stateOfBuilder(b))
}

// RollSection handles POST /builder/sections/{id}/roll
func (h *BuilderHandler) RollSection(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.builder(w, r)
	if !ok {
		return
	}
	if err := b.RollSection(r.Context(), mux.Vars(r)["id"]); err != nil {
		middleware.RespondError(w, statusForError(err), err.Error())
		return
	}
	h.Registry.PersistTokens(r.Context(), user.Sub, b.Tokens())
	middleware.RespondJSON(w, http.StatusOK, stateOfBuilder(b))
}

// SetVariant handles POST /builder/sections/{id}/variant
func (h *BuilderHandler) SetVariant(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.builder(w, r)
	if !ok {
		return
	}
	var req struct {
		Variant models.SectionVariant `json:"variant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Variant == "" {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	b.ChangeVariant(mux.Vars(r)["id"], req.Variant)
	middleware.RespondJSON(w, http.StatusOK, stateOfBuilder(b))
}

// UpdateStyles handles POST /builder/sections/{id}/styles
func (h *BuilderHandler) UpdateStyles(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.builder(w, r)
	if !ok {
		return
	}
	var patch models.SectionStylesPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	b.UpdateStyles(mux.Vars(r)["id"], patch)
	middleware.RespondJSON(w, http.StatusOK, stateOfBuilder(b))
}

// TranslateSection handles POST /builder/sections/{id}/translate
func (h *BuilderHandler) TranslateSection(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.builder(w, r)
	if !ok {
		return
	}
	if err := b.TranslateMissing(r.Context(), mux.Vars(r)["id"]); err != nil {
		middleware.RespondError(w, statusForError(err), err.Error())
		return
	}
	h.Registry.PersistTokens(r.Context(), user.Sub, b.Tokens())
	middleware.RespondJSON(w, http.StatusOK, stateOfBuilder(b))
}

// GenerateImage handles POST /builder/sections/{id}/image. With a prompt it
// generates an AI image through the engine's gated pipeline at full cost;
// with an image_url (already uploaded) it attaches for free.
func (h *BuilderHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.builder(w, r)
	if !ok {
		return
	}
	var req struct {
		Prompt      string `json:"prompt"`
		AspectRatio string `json:"aspect_ratio"`
		ImageURL    string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	sectionID := mux.Vars(r)["id"]

	if req.ImageURL != "" {
		if err := b.SetSectionImage(sectionID, req.ImageURL, 0); err != nil {
			middleware.RespondError(w, statusForError(err), err.Error())
			return
		}
		middleware.RespondJSON(w, http.StatusOK, stateOfBuilder(b))
		return
	}

	if req.Prompt == "" {
		middleware.RespondError(w, http.StatusBadRequest, "Either prompt or image_url is required")
		return
	}

	aspect := req.AspectRatio
	if aspect == "" {
		aspect = "16:9"
	}
	if _, err := b.GenerateImage(r.Context(), sectionID, req.Prompt, aspect); err != nil {
		middleware.RespondError(w, statusForError(err), err.Error())
		return
	}
	h.Registry.PersistTokens(r.Context(), user.Sub, b.Tokens())
	middleware.RespondJSON(w, http.StatusOK, stateOfBuilder(b))
}

// UploadImage handles POST /builder/upload. Stores the file and returns its
// URL; the client then attaches it to a section via the image endpoint.
func (h *BuilderHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserFromContext(r.Context()); !ok {
		middleware.RespondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, 10<<20))
	if err != nil {
		middleware.RespondError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	url, err := h.Uploader.Store(r.Context(), header.Filename, data)
	if err != nil {
		middleware.RespondError(w, statusForError(err), err.Error())
		return
	}
	middleware.RespondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// PublishSite handles POST /builder/publish
func (h *BuilderHandler) PublishSite(w http.ResponseWriter, r *http.Request) {
	b, user, ok := h.builder(w, r)
	if !ok {
		return
	}

	project := b.Publish()
	site, err := h.Publish.PublishSite(r.Context(), user.Sub, project)
	if err != nil {
		middleware.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"site":  site,
		"state": stateOfBuilder(b),
	})
}
