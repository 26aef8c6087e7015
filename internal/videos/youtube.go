package videos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/discordtext/backend/internal/logging"
)

// YouTubeProvider resolves metadata through the YouTube Data API v3 using the
// caller's API key.
type YouTubeProvider struct {
	// Endpoint overrides the API base URL. Empty uses the public endpoint.
	Endpoint string
}

// NewYouTubeProvider constructs a Provider backed by the YouTube Data API.
func NewYouTubeProvider(endpoint string) *YouTubeProvider {
	return &YouTubeProvider{Endpoint: strings.TrimSpace(endpoint)}
}

// Lookup fetches snippet and live streaming details for the video in url.
func (p *YouTubeProvider) Lookup(ctx context.Context, url, apiKey string) (Record, error) {
	if p == nil {
		return Record{}, ErrProviderUnavailable
	}
	if strings.TrimSpace(apiKey) == "" {
		return Record{}, ErrMissingAPIKey
	}

	videoID, err := ExtractVideoID(url)
	if err != nil {
		return Record{}, err
	}

	ctx, span := logging.StartSpan(ctx, "youtube.videos.list")
	defer span.End()

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if p.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.Endpoint))
	}

	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return Record{}, fmt.Errorf("create youtube service: %w", err)
	}

	resp, err := svc.Videos.
		List([]string{"snippet", "liveStreamingDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return Record{}, &UpstreamError{StatusCode: apiErr.Code, Err: err}
		}
		return Record{}, fmt.Errorf("youtube videos.list: %w", err)
	}

	if len(resp.Items) == 0 || resp.Items[0] == nil {
		return Record{}, ErrVideoNotFound
	}

	return recordFromVideo(resp.Items[0], videoID, url)
}

func recordFromVideo(item *youtube.Video, videoID, sourceURL string) (Record, error) {
	if item.Snippet == nil {
		return Record{}, errors.New("youtube response missing snippet")
	}

	startsAt, err := time.Parse(time.RFC3339, scheduleSource(item))
	if err != nil {
		return Record{}, fmt.Errorf("parse video date: %w", err)
	}
	formatted, file := FormatSchedule(startsAt)

	return Record{
		VideoID:       videoID,
		ThumbnailURL:  bestThumbnail(item.Snippet.Thumbnails),
		Title:         item.Snippet.Title,
		FileDate:      file,
		FormattedDate: formatted,
		SourceURL:     sourceURL,
	}, nil
}

// scheduleSource prefers the scheduled start of a live stream, then its actual
// start, then the upload date.
func scheduleSource(item *youtube.Video) string {
	if live := item.LiveStreamingDetails; live != nil {
		if live.ScheduledStartTime != "" {
			return live.ScheduledStartTime
		}
		if live.ActualStartTime != "" {
			return live.ActualStartTime
		}
	}
	return item.Snippet.PublishedAt
}

func bestThumbnail(details *youtube.ThumbnailDetails) string {
	if details == nil {
		return ""
	}
	for _, t := range []*youtube.Thumbnail{details.Maxres, details.Standard, details.High, details.Medium, details.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}
	return ""
}
