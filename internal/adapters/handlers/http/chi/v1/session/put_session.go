package session

import (
	"encoding/json"
	"errors"
	"media-pipeline/internal/core/domain"
	"media-pipeline/internal/logger"
	"net/http"
)

// V1PutSessionRequest is the body request for Put Session
type V1PutSessionRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token"`
}

// PutSessionV1 adopts the credential of a freshly signed-in user
func (h *HandlerV1) PutSessionV1(w http.ResponseWriter, r *http.Request) {
	var req V1PutSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "access_token is required", http.StatusBadRequest)
		return
	}

	err := h.credentials.Adopt(r.Context(), domain.Credential{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
	})
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		http.Error(w, "access_token is required", http.StatusBadRequest)
	case err != nil:
		h.logger.Error().Err(err).Msg("error adopting credential")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	default:
		h.logger.Info().
			Str("access_token", logger.MaskToken(req.AccessToken)).
			Msg("session adopted")
		w.WriteHeader(http.StatusNoContent)
	}
}
