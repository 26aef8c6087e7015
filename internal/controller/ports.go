package controller

import (
	"context"
	"time"

	"github.com/discordtext/backend/internal/message"
	"github.com/discordtext/backend/internal/videos"
)

// MetadataFetcher asks the API for video metadata.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, url, apiKey string) (videos.Record, error)
}

// ThumbnailSaver asks the API to save a thumbnail.
type ThumbnailSaver interface {
	SaveThumbnail(ctx context.Context, thumbnailURL, title, fileDate string) (string, error)
}

// CredentialStore remembers the API key between runs.
type CredentialStore interface {
	Save(ctx context.Context, key, value string) error
}

// Clipboard receives copied messages.
type Clipboard interface {
	Copy(text string) error
}

// View presents state changes. All calls come from the controller goroutine.
type View interface {
	SetStyle(style message.Style)
	ShowResult(record videos.Record)
	ShowMessage(text string)
	SetButton(button Button, state ButtonState)
	ReportError(msg string)
}

// Executor runs blocking work off the controller goroutine.
type Executor interface {
	Go(task func())
}

// Stopper cancels a pending timer.
type Stopper interface {
	Stop() bool
}

// Timers schedules delayed callbacks.
type Timers interface {
	AfterFunc(d time.Duration, fn func()) Stopper
}

type goroutineExecutor struct{}

func (goroutineExecutor) Go(task func()) { go task() }

type systemTimers struct{}

func (systemTimers) AfterFunc(d time.Duration, fn func()) Stopper {
	return time.AfterFunc(d, fn)
}
