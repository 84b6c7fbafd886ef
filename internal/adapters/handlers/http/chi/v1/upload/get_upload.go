package upload

import (
	"net/http"
)

// GetUploadV1 is the function that handles GetUpload
func (h *HandlerV1) GetUploadV1(w http.ResponseWriter, r *http.Request) {
	id, ok := h.jobID(w, r)
	if !ok {
		return
	}

	snapshot, err := h.uploadService.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}
