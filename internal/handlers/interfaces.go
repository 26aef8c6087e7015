package handlers

import (
	"context"

	"github.com/discordtext/backend/internal/models"
	"github.com/discordtext/backend/internal/thumbnails"
	"github.com/discordtext/backend/internal/videos"
)

// MetadataProvider resolves video details for a pasted URL.
type MetadataProvider interface {
	Lookup(ctx context.Context, url, apiKey string) (videos.Record, error)
}

// ThumbnailSaver downloads and stores a thumbnail image.
type ThumbnailSaver interface {
	Save(ctx context.Context, req thumbnails.Request) (models.SavedThumbnail, error)
}

// ThumbnailHistory lists previously saved thumbnails.
type ThumbnailHistory interface {
	ListRecent(ctx context.Context, limit int) ([]models.SavedThumbnail, error)
}
