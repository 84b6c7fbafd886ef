package upload

import (
	"errors"
	"fmt"
	"media-pipeline/internal/core/domain"
	"net/http"
	"strings"
)

// userMessage tells the caller what went wrong and which retry applies
func userMessage(err error) string {
	var transportErr *domain.TransportError
	var commitErr *domain.CommitError
	switch domain.KindOf(err) {
	case domain.ErrorKindNone:
		return ""
	case domain.ErrorKindCancelled:
		return "Upload cancelled."
	case domain.ErrorKindCommit:
		if errors.As(err, &commitErr) {
			err = commitErr.Err
		}
		return fmt.Sprintf("Upload stored, but failed to save metadata: %v. Retry saving, the video will not be uploaded again.", err)
	case domain.ErrorKindLocator:
		return "Upload completed, but we couldn't locate the object yet. Please wait a moment and tap Retry."
	case domain.ErrorKindTransport:
		if errors.As(err, &transportErr) && isTooLarge(transportErr) {
			return "Storage upload failed: file is too large. Try a lower quality profile and retry."
		}
		return fmt.Sprintf("Storage upload failed: %v. Tap Retry to upload again.", err)
	default:
		return fmt.Sprintf("Upload failed: %v. Tap Retry to upload again.", err)
	}
}

func isTooLarge(err *domain.TransportError) bool {
	if err.StatusCode == http.StatusRequestEntityTooLarge {
		return true
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "too large") || strings.Contains(text, "exceeded the maximum allowed size")
}
