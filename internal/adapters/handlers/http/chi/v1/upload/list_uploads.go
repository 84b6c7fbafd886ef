package upload

import (
	"media-pipeline/internal/core/domain"
	"net/http"
	"sort"
)

// V1ListUploadsResponse is the response to list uploads
type V1ListUploadsResponse struct {
	Uploads []domain.JobSnapshot `json:"uploads"`
}

// ListUploadsV1 returns every known job, most recent first
func (h *HandlerV1) ListUploadsV1(w http.ResponseWriter, r *http.Request) {
	jobs := h.uploadService.List(r.Context())
	if jobs == nil {
		jobs = []domain.JobSnapshot{}
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	writeJSON(w, http.StatusOK, V1ListUploadsResponse{Uploads: jobs})
}
