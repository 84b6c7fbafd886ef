package supabase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"media-pipeline/internal/config"
	"media-pipeline/internal/core/domain"
	"media-pipeline/internal/core/port"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const listLimit = 100

// Adapter talks to the Supabase storage REST api
type Adapter struct {
	baseURL string
	anonKey string
	tokens  port.TokenSource
	http    *resty.Client
	logger  zerolog.Logger
}

type apiError struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func (e *apiError) String() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

type listRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	SortBy struct {
		Column string `json:"column"`
		Order  string `json:"order"`
	} `json:"sortBy"`
}

type listedObject struct {
	Name      string     `json:"name"`
	ID        *string    `json:"id"`
	UpdatedAt *time.Time `json:"updated_at"`
	Metadata  *struct {
		Size int64 `json:"size"`
	} `json:"metadata"`
}

type signRequest struct {
	ExpiresIn int64 `json:"expiresIn"`
}

type signResponse struct {
	SignedURL string `json:"signedURL"`
}

// NewAdapter returns Adapter. tokens supplies the bearer for list and sign calls.
func NewAdapter(cfg config.SupabaseConfig, tokens port.TokenSource, logger zerolog.Logger) *Adapter {
	baseURL := strings.TrimRight(cfg.URL, "/")
	client := resty.New().
		SetBaseURL(baseURL+"/storage/v1").
		SetHeader("apikey", cfg.AnonKey).
		SetTimeout(cfg.Timeout)
	return &Adapter{
		baseURL: baseURL,
		anonKey: cfg.AnonKey,
		tokens:  tokens,
		http:    client,
		logger:  logger,
	}
}

// Put uploads body with upsert semantics under the caller's access token
func (a *Adapter) Put(ctx context.Context, bucket, path string, body io.Reader, size int64, contentType, accessToken string) error {
	var apiErr apiError
	resp, err := a.http.R().
		SetContext(ctx).
		SetAuthToken(a.bearer(accessToken)).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(body).
		SetError(&apiErr).
		Post(objectPath("object", bucket, path))
	if err != nil {
		return &domain.TransportError{Op: "put", Err: err}
	}
	if resp.IsError() {
		return &domain.TransportError{
			Op:         "put",
			StatusCode: resp.StatusCode(),
			Err:        errors.New(describe(resp, &apiErr)),
		}
	}

	a.logger.Debug().
		Str("bucket", bucket).
		Str("path", path).
		Int64("size", size).
		Msg("object stored")
	return nil
}

// List returns the objects directly under dir with names relative to dir
func (a *Adapter) List(ctx context.Context, bucket, dir string) ([]domain.StoredObject, error) {
	req := listRequest{Prefix: strings.Trim(dir, "/"), Limit: listLimit}
	req.SortBy.Column = "name"
	req.SortBy.Order = "asc"

	var listed []listedObject
	var apiErr apiError
	resp, err := a.http.R().
		SetContext(ctx).
		SetAuthToken(a.bearer("")).
		SetBody(req).
		SetResult(&listed).
		SetError(&apiErr).
		Post("/object/list/" + url.PathEscape(bucket))
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to list objects (%d): %s", resp.StatusCode(), describe(resp, &apiErr))
	}

	objects := make([]domain.StoredObject, 0, len(listed))
	for _, o := range listed {
		// folders come back without an id
		if o.ID == nil {
			continue
		}
		obj := domain.StoredObject{Name: o.Name}
		if o.Metadata != nil {
			obj.Size = o.Metadata.Size
		}
		if o.UpdatedAt != nil {
			obj.LastModified = *o.UpdatedAt
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// SignedURL asks the api to sign path for ttl and returns an absolute url
func (a *Adapter) SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	var signed signResponse
	var apiErr apiError
	resp, err := a.http.R().
		SetContext(ctx).
		SetAuthToken(a.bearer("")).
		SetBody(signRequest{ExpiresIn: int64(ttl / time.Second)}).
		SetResult(&signed).
		SetError(&apiErr).
		Post(objectPath("object/sign", bucket, path))
	if err != nil {
		return "", fmt.Errorf("failed to sign url: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("failed to sign url (%d): %s", resp.StatusCode(), describe(resp, &apiErr))
	}
	if signed.SignedURL == "" {
		return "", nil
	}
	if strings.HasPrefix(signed.SignedURL, "http://") || strings.HasPrefix(signed.SignedURL, "https://") {
		return signed.SignedURL, nil
	}
	return a.baseURL + "/storage/v1/" + strings.TrimLeft(signed.SignedURL, "/"), nil
}

// PublicURL builds the public url of an object, valid only for public buckets
func (a *Adapter) PublicURL(ctx context.Context, bucket, path string) (string, error) {
	if a.baseURL == "" {
		return "", errors.New("supabase url is not configured")
	}
	return a.baseURL + "/storage/v1" + objectPath("object/public", bucket, path), nil
}

func (a *Adapter) bearer(accessToken string) string {
	if accessToken != "" {
		return accessToken
	}
	if a.tokens != nil {
		if cred := a.tokens.CurrentToken(); cred.AccessToken != "" {
			return cred.AccessToken
		}
	}
	return a.anonKey
}

func objectPath(kind, bucket, path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/" + kind + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

func describe(resp *resty.Response, apiErr *apiError) string {
	if msg := apiErr.String(); msg != "" {
		return msg
	}
	if body := strings.TrimSpace(resp.String()); body != "" {
		return body
	}
	return http.StatusText(resp.StatusCode())
}
