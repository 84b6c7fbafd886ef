package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"media-pipeline/internal/core/domain"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// V1StartUploadRequest is the body request for Start Upload
type V1StartUploadRequest struct {
	FilePath string `json:"file_path" validate:"required"`
	Caption  string `json:"caption" validate:"max=2200"`
	OwnerID  string `json:"owner_id" validate:"required,uuid"`
	Quality  string `json:"quality" validate:"omitempty,oneof=1080p 4k none"`
}

// V1StartUploadResponse is the response to start upload
type V1StartUploadResponse struct {
	JobID uuid.UUID `json:"job_id"`
}

// StartUploadV1 is the handler for start upload v1
func (h *HandlerV1) StartUploadV1(w http.ResponseWriter, r *http.Request) {
	var req V1StartUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("error decoding start upload request")
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, describeValidation(err))
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid owner id")
		return
	}

	jobID, err := h.uploadService.Start(r.Context(), domain.UploadRequest{
		SourcePath: req.FilePath,
		Caption:    req.Caption,
		OwnerID:    ownerID,
		Quality:    domain.QualityProfile(req.Quality),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", r.URL.Path+"/"+jobID.String())
	writeJSON(w, http.StatusAccepted, V1StartUploadResponse{JobID: jobID})
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
