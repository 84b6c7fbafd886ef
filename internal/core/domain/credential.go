package domain

import "time"

// Credential is the access/refresh token pair of the signed-in user
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// IsZero reports whether no access token is held
func (c Credential) IsZero() bool {
	return c.AccessToken == ""
}
