package cleanup

import (
	"media-pipeline/internal/config"
	"media-pipeline/internal/core/port"
	"media-pipeline/internal/logger"

	"github.com/rs/zerolog"
)

type cleanupService struct {
	uploads port.UploadService
	cfg     config.CleanupConfig
	workDir string
	logger  zerolog.Logger
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(uploads port.UploadService, cfg config.CleanupConfig, workDir string, log zerolog.Logger) port.CleanupService {
	return &cleanupService{
		uploads: uploads,
		cfg:     cfg,
		workDir: workDir,
		logger:  logger.Component(log, "cleanup"),
	}
}
