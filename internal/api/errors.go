package api

import (
	"errors"
	"net/http"

	"github.com/aetherbuildapp/aetherbuild/internal/engine"
)

// statusForError maps the engines' failure taxonomy onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, engine.ErrInsufficientTokens):
		return http.StatusPaymentRequired
	case errors.Is(err, engine.ErrBusy), errors.Is(err, engine.ErrStaleResult):
		return http.StatusConflict
	case errors.Is(err, engine.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, engine.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, engine.ErrGenerationFailed), errors.Is(err, engine.ErrUploadFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
