package session

import (
	"encoding/json"
	"net/http"
	"time"
)

// V1GetSessionResponse is the response to get session
type V1GetSessionResponse struct {
	Authenticated   bool       `json:"authenticated"`
	HasRefreshToken bool       `json:"has_refresh_token"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// GetSessionV1 reports whether a credential is held, tokens are never returned
func (h *HandlerV1) GetSessionV1(w http.ResponseWriter, r *http.Request) {
	cred := h.credentials.CurrentToken()

	resp := V1GetSessionResponse{
		Authenticated:   !cred.IsZero(),
		HasRefreshToken: cred.RefreshToken != "",
	}
	if !cred.ExpiresAt.IsZero() {
		exp := cred.ExpiresAt
		resp.ExpiresAt = &exp
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error().Err(err).Msg("error encoding response")
	}
}
