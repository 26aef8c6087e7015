package videos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandRunner executes external commands and returns stdout bytes.
type CommandRunner func(ctx context.Context, binary string, args ...string) ([]byte, error)

// YTDLPProvider resolves metadata with the yt-dlp CLI. It needs no API key and
// serves deployments that cannot use the Data API.
type YTDLPProvider struct {
	Binary  string
	Args    []string
	Run     CommandRunner
	Timeout time.Duration
}

// NewYTDLPProvider constructs a Provider that shells out to yt-dlp.
func NewYTDLPProvider(binary string, timeout time.Duration) *YTDLPProvider {
	if strings.TrimSpace(binary) == "" {
		binary = "yt-dlp"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YTDLPProvider{
		Binary:  binary,
		Args:    []string{"--dump-single-json", "--no-warnings", "--no-playlist", "--skip-download"},
		Run:     defaultCommandRunner,
		Timeout: timeout,
	}
}

type ytdlpPayload struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Thumbnail        string `json:"thumbnail"`
	UploadDate       string `json:"upload_date"`
	Timestamp        int64  `json:"timestamp"`
	ReleaseTimestamp int64  `json:"release_timestamp"`
}

// Lookup executes yt-dlp for the provided URL and parses the JSON response.
// The api key is ignored.
func (p *YTDLPProvider) Lookup(ctx context.Context, url, _ string) (Record, error) {
	if p == nil {
		return Record{}, ErrProviderUnavailable
	}
	if p.Run == nil {
		p.Run = defaultCommandRunner
	}

	videoID, err := ExtractVideoID(url)
	if err != nil {
		return Record{}, err
	}

	execCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	args := append([]string{}, p.Args...)
	args = append(args, url)

	out, err := p.Run(execCtx, p.Binary, args...)
	if err != nil {
		return Record{}, fmt.Errorf("yt-dlp fetch: %w", err)
	}

	var payload ytdlpPayload
	if err := json.Unmarshal(out, &payload); err != nil {
		return Record{}, fmt.Errorf("parse yt-dlp response: %w", err)
	}

	if payload.Title == "" && payload.Thumbnail == "" {
		return Record{}, errors.New("yt-dlp returned empty metadata")
	}

	startsAt, err := payload.startsAt()
	if err != nil {
		return Record{}, err
	}
	formatted, file := FormatSchedule(startsAt)

	if payload.ID != "" {
		videoID = payload.ID
	}

	return Record{
		VideoID:       videoID,
		ThumbnailURL:  payload.Thumbnail,
		Title:         payload.Title,
		FileDate:      file,
		FormattedDate: formatted,
		SourceURL:     url,
	}, nil
}

func (p ytdlpPayload) startsAt() (time.Time, error) {
	switch {
	case p.ReleaseTimestamp > 0:
		return time.Unix(p.ReleaseTimestamp, 0), nil
	case p.Timestamp > 0:
		return time.Unix(p.Timestamp, 0), nil
	case p.UploadDate != "":
		t, err := time.ParseInLocation("20060102", p.UploadDate, jst)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse yt-dlp upload date: %w", err)
		}
		return t, nil
	}
	return time.Time{}, errors.New("yt-dlp returned no date")
}

func defaultCommandRunner(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.Output()
}
