package upload

import (
	"encoding/json"
	"errors"
	"media-pipeline/internal/core/domain"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// V1ErrorResponse is the body returned on failures
type V1ErrorResponse struct {
	Error string `json:"error"`
}

func (h *HandlerV1) jobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "jobID")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "job id is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps service errors to status codes
func (h *HandlerV1) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrJobNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrRetryNotAllowed),
		errors.Is(err, domain.ErrCommitRetryNotAllowed),
		errors.Is(err, domain.ErrJobTerminal),
		errors.Is(err, domain.ErrJobBusy):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnsupportedMedia):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidQuality):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("upload service error")
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, V1ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
