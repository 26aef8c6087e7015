package videos

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable indicates the metadata provider is not configured.
	ErrProviderUnavailable = errors.New("video metadata provider unavailable")
	// ErrInvalidURL indicates no video id could be extracted from the URL.
	ErrInvalidURL = errors.New("invalid youtube url")
	// ErrVideoNotFound indicates the upstream API knows no video with the id.
	ErrVideoNotFound = errors.New("video not found")
	// ErrMissingAPIKey indicates a lookup was attempted without a credential.
	ErrMissingAPIKey = errors.New("api key is required")
)

// UpstreamError reports a non-successful status returned by the YouTube API.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("youtube api returned status %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
