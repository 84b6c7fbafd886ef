package upload

import (
	"media-pipeline/internal/core/port"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// HandlerV1 is the handler for v1 uploads routes
type HandlerV1 struct {
	uploadService port.UploadService
	validate      *validator.Validate
	logger        zerolog.Logger
}

// NewUploadHandlerV1 creates HandlerV1
func NewUploadHandlerV1(service port.UploadService, logger zerolog.Logger) *HandlerV1 {
	return &HandlerV1{
		uploadService: service,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		logger:        logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Post("/", h.StartUploadV1)
		r.Get("/", h.ListUploadsV1)
		r.Get("/{jobID}", h.GetUploadV1)
		r.Post("/{jobID}/cancel", h.CancelUploadV1)
		r.Post("/{jobID}/retry", h.RetryUploadV1)
		r.Post("/{jobID}/retry-commit", h.RetryCommitV1)
	})

	// long lived, no timeout
	router.Get("/{jobID}/events", h.StreamEventsV1)

	return router
}
