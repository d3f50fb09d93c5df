package api

import (
	"errors"
	"net/http"

	apperrors "github.com/rajasatyajit/StatusAggregator/internal/errors"
)

// statusForError maps application errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrSyncInProgress):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrRateLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, apperrors.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperrors.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as an ErrorResponse. Unclassified errors are not
// echoed to the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusForError(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "Internal server error"
	}
	h.writeErrorResponse(w, r, code, message)
}
