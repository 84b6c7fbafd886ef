package session

import (
	"media-pipeline/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// HandlerV1 is the handler for v1 session routes
type HandlerV1 struct {
	credentials port.CredentialManager
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewSessionHandlerV1 creates HandlerV1
func NewSessionHandlerV1(credentials port.CredentialManager, logger zerolog.Logger) *HandlerV1 {
	return &HandlerV1{
		credentials: credentials,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Put("/", h.PutSessionV1)
	router.Get("/", h.GetSessionV1)

	return router
}
