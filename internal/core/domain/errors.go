package domain

import (
	"errors"
	"fmt"
)

// ErrCancelled is an error returned when a job was cancelled by its caller
var ErrCancelled = errors.New("upload cancelled")

// ErrJobNotFound is an error thrown when the job id is unknown
var ErrJobNotFound = errors.New("job not found")

// ErrRetryNotAllowed is an error thrown when a full retry is requested outside the failed state
var ErrRetryNotAllowed = errors.New("retry is only allowed from failed state")

// ErrCommitRetryNotAllowed is an error thrown when a commit retry is requested outside pending commit
var ErrCommitRetryNotAllowed = errors.New("commit retry is only allowed from pending commit state")

// ErrJobTerminal is an error thrown when acting on a completed or cancelled job
var ErrJobTerminal = errors.New("job already terminated")

// ErrJobBusy is an error thrown when a job run is still in flight
var ErrJobBusy = errors.New("job is running")

// ErrAssetExists is an error thrown when the asset row already exists
var ErrAssetExists = errors.New("asset already exists")

// ErrAssetNotFound is an error thrown when no media asset has the given id
var ErrAssetNotFound = errors.New("media asset not found")

// ErrProfileNotFound is an error thrown when no profile matches the owner
var ErrProfileNotFound = errors.New("profile not found")

// ErrClaimDecode is an error thrown when the access token claims cannot be decoded
var ErrClaimDecode = errors.New("cannot decode token claims")

// ErrNotAuthenticated is an error thrown when no access token is available
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrUnsupportedMedia is an error thrown when the source file is not a video
var ErrUnsupportedMedia = errors.New("unsupported media type")

// ErrInvalidRequest is an error thrown when an upload request is malformed
var ErrInvalidRequest = errors.New("invalid upload request")

// ErrInvalidQuality is an error thrown when the quality profile is unknown
var ErrInvalidQuality = errors.New("invalid quality profile")

// TransportError wraps a failure of the storage write.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// LocatorError is returned when neither a signed nor a public URL could be obtained.
type LocatorError struct {
	Path string
	Err  error
}

func (e *LocatorError) Error() string {
	return fmt.Sprintf("cannot resolve url for %s: %v", e.Path, e.Err)
}

func (e *LocatorError) Unwrap() error { return e.Err }

// CommitError is returned when the asset row could not be written.
type CommitError struct {
	AssetID string
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit of asset %s failed: %v", e.AssetID, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

// ErrorKind classifies an error for callers deciding which retry to offer.
type ErrorKind string

const (
	ErrorKindNone      ErrorKind = ""
	ErrorKindTransport ErrorKind = "transport"
	ErrorKindLocator   ErrorKind = "locator"
	ErrorKindCommit    ErrorKind = "commit"
	ErrorKindCancelled ErrorKind = "cancelled"
	ErrorKindInternal  ErrorKind = "internal"
)

// KindOf returns the ErrorKind of err
func KindOf(err error) ErrorKind {
	var transportErr *TransportError
	var locatorErr *LocatorError
	var commitErr *CommitError
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrCancelled):
		return ErrorKindCancelled
	case errors.As(err, &commitErr):
		return ErrorKindCommit
	case errors.As(err, &locatorErr):
		return ErrorKindLocator
	case errors.As(err, &transportErr):
		return ErrorKindTransport
	default:
		return ErrorKindInternal
	}
}
