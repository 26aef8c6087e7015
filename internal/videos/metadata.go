package videos

import "context"

// Record captures everything needed to format an announcement for a video.
type Record struct {
	VideoID       string `json:"videoId"`
	ThumbnailURL  string `json:"thumbnailUrl"`
	Title         string `json:"title"`
	FileDate      string `json:"fileDate"`
	FormattedDate string `json:"formattedDate"`
	SourceURL     string `json:"sourceUrl"`
}

// Provider returns metadata for the supplied video URL. apiKey is the caller's
// credential for providers that need one.
type Provider interface {
	Lookup(ctx context.Context, url, apiKey string) (Record, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, url, apiKey string) (Record, error)

// Lookup implements Provider.
func (f ProviderFunc) Lookup(ctx context.Context, url, apiKey string) (Record, error) {
	return f(ctx, url, apiKey)
}
