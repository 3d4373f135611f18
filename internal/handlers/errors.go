package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/agrisight/leafscan-api/internal/imaging"
	"github.com/agrisight/leafscan-api/internal/middleware"
	"github.com/agrisight/leafscan-api/internal/model"
)

// ErrMissingInput is returned when a request carries no image.
var ErrMissingInput = errors.New("no image provided")

var errMethodNotAllowed = errors.New("method not allowed")

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// statusFor maps pipeline errors onto HTTP status codes. Size, format, and
// encoding errors are caller mistakes; an unloaded model is an operational
// condition; everything else is internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, ErrMissingInput):
		return http.StatusBadRequest
	case errors.Is(err, imaging.ErrBadEncoding):
		return http.StatusBadRequest
	case errors.Is(err, imaging.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, imaging.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, model.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError translates any stage failure into the uniform error payload.
// Internal errors are logged with full detail but reported generically.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = "internal server error"
	}

	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}
