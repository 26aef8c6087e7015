// Package thumbnails downloads video thumbnails and stores them under a
// date-prefixed file name.
package thumbnails

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/discordtext/backend/internal/logging"
	"github.com/discordtext/backend/internal/models"
	"github.com/discordtext/backend/internal/storage"
)

var (
	// ErrMissingData indicates the request lacked the url, title or date.
	ErrMissingData = errors.New("missing thumbnail data")
	// ErrDownloadFailed indicates the thumbnail host did not return the image.
	ErrDownloadFailed = errors.New("failed to download image")
)

// History records saved thumbnails. It is optional.
type History interface {
	Record(ctx context.Context, saved models.SavedThumbnail) error
}

// Request describes a thumbnail to save.
type Request struct {
	ThumbnailURL string
	Title        string
	FileDate     string
}

// Saver downloads thumbnails and hands them to a Storage backend.
type Saver struct {
	client  *http.Client
	store   storage.Storage
	history History
	now     func() time.Time
}

// NewSaver constructs a Saver. client may be nil to use a client with the
// given timeout; history may be nil.
func NewSaver(client *http.Client, store storage.Storage, history History, timeout time.Duration) *Saver {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Saver{client: client, store: store, history: history, now: time.Now}
}

// Save downloads req.ThumbnailURL and stores it as "<FileDate>_<Title>.jpg".
// It returns the storage location.
func (s *Saver) Save(ctx context.Context, req Request) (models.SavedThumbnail, error) {
	if strings.TrimSpace(req.ThumbnailURL) == "" || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.FileDate) == "" {
		return models.SavedThumbnail{}, ErrMissingData
	}
	if s == nil || s.store == nil {
		return models.SavedThumbnail{}, errors.New("thumbnail storage unavailable")
	}

	ctx, span := logging.StartSpan(ctx, "thumbnails.save")
	defer span.End()
	logger := logging.FromContext(ctx)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.ThumbnailURL, nil)
	if err != nil {
		return models.SavedThumbnail{}, fmt.Errorf("build thumbnail request: %w", err)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return models.SavedThumbnail{}, fmt.Errorf("download thumbnail: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("close thumbnail body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("thumbnail download rejected", "status", resp.StatusCode, "url", req.ThumbnailURL)
		return models.SavedThumbnail{}, ErrDownloadFailed
	}

	location, err := s.store.Save(ctx, FileName(req.FileDate, req.Title), resp.Body)
	if err != nil {
		return models.SavedThumbnail{}, fmt.Errorf("store thumbnail: %w", err)
	}

	saved := models.SavedThumbnail{
		ID:           uuid.NewString(),
		Title:        req.Title,
		FileDate:     req.FileDate,
		ThumbnailURL: req.ThumbnailURL,
		Location:     location,
		SavedAt:      s.now().UTC(),
	}

	if s.history != nil {
		if err := s.history.Record(ctx, saved); err != nil {
			// The file is already stored; a missing history row is not fatal.
			logger.Error("record saved thumbnail", "location", location, "error", err)
		}
	}

	logger.Info("thumbnail saved", "location", location)
	return saved, nil
}

var unsafeFileChars = strings.NewReplacer(
	`\`, "", "/", "", "*", "", "?", "", ":", "",
	`"`, "", "<", "", ">", "", "|", "",
)

// FileName builds the stored file name, dropping characters that are not
// allowed in file names on common platforms.
func FileName(fileDate, title string) string {
	return fmt.Sprintf("%s_%s.jpg", fileDate, unsafeFileChars.Replace(title))
}
