package upload

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// CancelUploadV1 requests cancellation of a job
func (h *HandlerV1) CancelUploadV1(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "cancel", h.uploadService.Cancel)
}

// RetryUploadV1 restarts a failed job from the beginning
func (h *HandlerV1) RetryUploadV1(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "retry", h.uploadService.Retry)
}

// RetryCommitV1 retries only the metadata commit of a job pending commit
func (h *HandlerV1) RetryCommitV1(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "retry_commit", h.uploadService.RetryCommit)
}

func (h *HandlerV1) act(w http.ResponseWriter, r *http.Request, name string, action func(ctx context.Context, id uuid.UUID) error) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}

	if err := action(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.Info().
		Str("job_id", id.String()).
		Str("action", name).
		Msg("upload action accepted")

	snapshot, err := h.uploadService.Get(r.Context(), id)
	if err != nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusAccepted, snapshot)
}
