package uploadrequest

import (
	"media-pipeline/internal/core/port"
	"media-pipeline/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type uploadRequestService struct {
	uploads  port.UploadService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewUploadRequestService creates the handler of upload requests received from the broker
func NewUploadRequestService(uploads port.UploadService, log zerolog.Logger) port.MessageService {
	return &uploadRequestService{
		uploads:  uploads,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.Component(log, "upload_request"),
	}
}
