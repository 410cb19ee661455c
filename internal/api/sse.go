package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/aetherbuildapp/aetherbuild/internal/middleware"
)

// ProgressHandler streams site generation progress over SSE, backed by the
// Redis channel the worker publishes to.
type ProgressHandler struct {
	RedisClient *redis.Client
}

func NewProgressHandler(redisClient *redis.Client) *ProgressHandler {
	return &ProgressHandler{RedisClient: redisClient}
}

// Stream handles GET /generate/progress/{projectId}
func (h *ProgressHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserFromContext(r.Context()); !ok {
		middleware.RespondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	if h.RedisClient == nil {
		middleware.RespondError(w, http.StatusServiceUnavailable, "Progress streaming not configured")
		return
	}

	projectID := mux.Vars(r)["projectId"]

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	channel := fmt.Sprintf("generate:progress:%s", projectID)
	sub := h.RedisClient.Subscribe(r.Context(), channel)
	defer sub.Close()

	fmt.Fprintf(w, "data: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	ch := sub.Channel()
	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg.Payload)
			flusher.Flush()
		}
	}
}
