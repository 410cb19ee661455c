package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aetherbuildapp/aetherbuild/internal/middleware"
	"github.com/aetherbuildapp/aetherbuild/internal/services"
)

// PublicHandler serves published site snapshots without authentication.
type PublicHandler struct {
	Publish *services.PublishService
}

func NewPublicHandler(publish *services.PublishService) *PublicHandler {
	return &PublicHandler{Publish: publish}
}

// GetSite handles GET /sites/{projectId}
func (h *PublicHandler) GetSite(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	site, err := h.Publish.GetPublishedSite(r.Context(), projectID)
	if err != nil {
		middleware.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if site == nil {
		middleware.RespondError(w, http.StatusNotFound, "Site not found")
		return
	}
	middleware.RespondJSON(w, http.StatusOK, site)
}
