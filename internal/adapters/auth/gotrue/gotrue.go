package gotrue

import (
	"context"
	"errors"
	"fmt"
	"media-pipeline/internal/config"
	"media-pipeline/internal/core/domain"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Refresher exchanges refresh tokens against a GoTrue compatible auth server
type Refresher struct {
	http *resty.Client
	now  func() time.Time
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

// NewRefresher returns a Refresher for cfg
func NewRefresher(cfg *config.Config) *Refresher {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.AuthURL(), "/")).
		SetHeader("apikey", cfg.AuthAPIKey()).
		SetTimeout(cfg.Auth.Timeout)
	return &Refresher{http: client, now: time.Now}
}

// Refresh trades refreshToken for a new credential
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (domain.Credential, error) {
	if refreshToken == "" {
		return domain.Credential{}, errors.New("refresh token is empty")
	}

	var token tokenResponse
	var apiErr errorResponse
	resp, err := r.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "refresh_token").
		SetBody(refreshRequest{RefreshToken: refreshToken}).
		SetResult(&token).
		SetError(&apiErr).
		Post("/token")
	if err != nil {
		return domain.Credential{}, fmt.Errorf("token refresh request failed: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.ErrorDescription
		if msg == "" {
			msg = apiErr.Msg
		}
		if msg == "" {
			msg = resp.String()
		}
		return domain.Credential{}, fmt.Errorf("token refresh rejected (%d): %s", resp.StatusCode(), msg)
	}
	if token.AccessToken == "" {
		return domain.Credential{}, errors.New("token refresh returned no access token")
	}

	cred := domain.Credential{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken}
	switch {
	case token.ExpiresAt > 0:
		cred.ExpiresAt = time.Unix(token.ExpiresAt, 0)
	case token.ExpiresIn > 0:
		cred.ExpiresAt = r.now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}
	return cred, nil
}
