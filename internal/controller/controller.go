package controller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/discordtext/backend/internal/client"
	"github.com/discordtext/backend/internal/credentials"
	"github.com/discordtext/backend/internal/logging"
)

// FeedbackWindow is how long a button shows its "done" label.
const FeedbackWindow = 2 * time.Second

const eventBuffer = 64

// Deps holds the controller's collaborators. Executor and Timers default to
// goroutines and time.AfterFunc.
type Deps struct {
	Fetcher     MetadataFetcher
	Saver       ThumbnailSaver
	Credentials CredentialStore
	Clipboard   Clipboard
	View        View
	Logger      *slog.Logger
	Executor    Executor
	Timers      Timers
}

type feedbackTimer struct {
	gen  uint64
	stop Stopper
}

// Controller owns the client State and reduces events one at a time.
type Controller struct {
	deps   Deps
	logger *slog.Logger

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	state   State
	seq     uint64
	timerID uint64
	timers  map[Button]feedbackTimer
}

// New constructs a Controller. Events are processed by Run, or by Drain when
// the caller drives the loop itself.
func New(deps Deps) *Controller {
	if deps.Executor == nil {
		deps.Executor = goroutineExecutor{}
	}
	if deps.Timers == nil {
		deps.Timers = systemTimers{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		deps:   deps,
		logger: logger.With("component", "controller"),
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
		state:  initialState(),
		timers: make(map[Button]feedbackTimer),
	}
}

// Dispatch queues ev for the controller goroutine. It is safe for concurrent
// use and drops events once the controller has stopped.
func (c *Controller) Dispatch(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// Run publishes the initial state and handles events until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	defer c.stop()

	c.publish()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			c.Handle(ctx, ev)
		}
	}
}

// Drain handles queued events without blocking and returns how many it handled.
func (c *Controller) Drain(ctx context.Context) int {
	n := 0
	for {
		select {
		case ev := <-c.events:
			c.Handle(ctx, ev)
			n++
		default:
			return n
		}
	}
}

// State returns a snapshot of the current state. Call it from the goroutine
// that handles events.
func (c *Controller) State() State {
	return c.state
}

func (c *Controller) stop() {
	c.closeOnce.Do(func() {
		close(c.done)
		for b, t := range c.timers {
			t.stop.Stop()
			delete(c.timers, b)
		}
	})
}

func (c *Controller) publish() {
	v := c.deps.View
	if v == nil {
		return
	}
	v.SetStyle(c.state.Style)
	v.SetButton(SaveButton, c.state.Save)
	v.SetButton(CopyButton, c.state.Copy)
}

// Handle reduces a single event.
func (c *Controller) Handle(ctx context.Context, ev Event) {
	switch ev := ev.(type) {
	case StyleSelected:
		c.selectStyle(ev)
	case FetchRequested:
		c.requestFetch(ctx, ev)
	case FetchSucceeded:
		c.fetchSucceeded(ev)
	case FetchFailed:
		c.fetchFailed(ev)
	case SaveRequested:
		c.requestSave(ctx)
	case SaveSucceeded:
		c.saveSucceeded(ev)
	case SaveFailed:
		c.saveFailed(ev)
	case CopyRequested:
		c.copyMessage()
	case LabelExpired:
		c.labelExpired(ev)
	default:
		c.logger.Warn("unknown event", "event", ev)
	}
}

func (c *Controller) selectStyle(ev StyleSelected) {
	if !ev.Style.Valid() {
		c.logger.Warn("ignoring unknown style", "style", string(ev.Style))
		return
	}
	c.state.Style = ev.Style
	c.state.Message = c.state.render()

	if v := c.deps.View; v != nil {
		v.SetStyle(c.state.Style)
		v.ShowMessage(c.state.Message)
	}
}

func (c *Controller) requestFetch(ctx context.Context, ev FetchRequested) {
	url := strings.TrimSpace(ev.URL)
	apiKey := strings.TrimSpace(ev.APIKey)

	if url == "" {
		c.reportError(MsgMissingURL)
		return
	}
	if apiKey == "" {
		c.reportError(MsgMissingAPIKey)
		return
	}
	if c.deps.Fetcher == nil {
		c.logger.Error("metadata fetcher unavailable")
		c.reportError(MsgFetchFailed)
		return
	}

	if c.deps.Credentials != nil {
		if err := c.deps.Credentials.Save(ctx, credentials.APIKeyName, apiKey); err != nil {
			c.logger.Warn("persist api key", "error", err)
		}
	}

	c.seq++
	seq := c.seq
	c.state.latestFetch = seq
	fetcher := c.deps.Fetcher

	c.logger.Debug("fetch issued", "seq", seq, "url", url)
	c.spawn(func() Event {
		ctx, span := logging.StartSpan(ctx, "controller.fetch")
		defer span.End()

		record, err := fetcher.FetchMetadata(ctx, url, apiKey)
		if err != nil {
			return FetchFailed{Seq: seq, Err: err}
		}
		return FetchSucceeded{Seq: seq, URL: url, Record: record}
	})
}

func (c *Controller) fetchSucceeded(ev FetchSucceeded) {
	if ev.Seq != c.state.latestFetch {
		c.logger.Info("dropping stale fetch result", "seq", ev.Seq, "latest", c.state.latestFetch)
		return
	}

	record := ev.Record
	if record.SourceURL == "" {
		record.SourceURL = ev.URL
	}

	c.state.Record = &record
	c.state.Message = c.state.render()

	if v := c.deps.View; v != nil {
		v.ShowResult(record)
		v.ShowMessage(c.state.Message)
	}
}

func (c *Controller) fetchFailed(ev FetchFailed) {
	if ev.Seq != c.state.latestFetch {
		c.logger.Info("dropping stale fetch failure", "seq", ev.Seq, "latest", c.state.latestFetch, "error", ev.Err)
		return
	}

	var apiErr *client.APIError
	if errors.As(ev.Err, &apiErr) {
		c.reportError(apiErr.Message)
		return
	}
	c.logger.Error("fetch metadata", "error", ev.Err)
	c.reportError(MsgFetchFailed)
}

func (c *Controller) requestSave(ctx context.Context) {
	record := c.state.Record
	if record == nil || !c.state.Save.Enabled {
		return
	}
	if c.deps.Saver == nil {
		c.logger.Error("thumbnail saver unavailable")
		c.reportError(MsgSaveError)
		return
	}

	c.cancelTimer(SaveButton)
	c.setButton(SaveButton, ButtonState{Label: SavingLabel, Enabled: false})

	saver := c.deps.Saver
	thumbnailURL, title, fileDate := record.ThumbnailURL, record.Title, record.FileDate
	c.spawn(func() Event {
		path, err := saver.SaveThumbnail(ctx, thumbnailURL, title, fileDate)
		if err != nil {
			return SaveFailed{Err: err}
		}
		return SaveSucceeded{Path: path}
	})
}

func (c *Controller) saveSucceeded(ev SaveSucceeded) {
	c.logger.Info("thumbnail saved", "path", ev.Path)
	c.setButton(SaveButton, ButtonState{Label: SavedLabel, Enabled: false})
	c.startTimer(SaveButton)
}

func (c *Controller) saveFailed(ev SaveFailed) {
	var apiErr *client.APIError
	if errors.As(ev.Err, &apiErr) {
		c.reportError(MsgSaveFailedPrefix + apiErr.Message)
	} else {
		c.logger.Error("save thumbnail", "error", ev.Err)
		c.reportError(MsgSaveError)
	}
	c.setButton(SaveButton, defaultButton(SaveButton))
}

func (c *Controller) copyMessage() {
	if c.state.Record == nil {
		return
	}
	if c.deps.Clipboard != nil {
		if err := c.deps.Clipboard.Copy(c.state.Message); err != nil {
			c.logger.Warn("copy to clipboard", "error", err)
		}
	}
	// Every copy shows the feedback label, even when it is already showing.
	c.showButton(CopyButton, ButtonState{Label: CopiedLabel, Enabled: true})
	c.startTimer(CopyButton)
}

func (c *Controller) labelExpired(ev LabelExpired) {
	t, ok := c.timers[ev.Button]
	if !ok || t.gen != ev.Gen {
		return
	}
	delete(c.timers, ev.Button)
	c.setButton(ev.Button, defaultButton(ev.Button))
}

// startTimer replaces any running feedback timer for b.
func (c *Controller) startTimer(b Button) {
	c.cancelTimer(b)

	c.timerID++
	gen := c.timerID
	stop := c.deps.Timers.AfterFunc(FeedbackWindow, func() {
		c.Dispatch(LabelExpired{Button: b, Gen: gen})
	})
	c.timers[b] = feedbackTimer{gen: gen, stop: stop}
}

func (c *Controller) cancelTimer(b Button) {
	if t, ok := c.timers[b]; ok {
		t.stop.Stop()
		delete(c.timers, b)
	}
}

func (c *Controller) spawn(task func() Event) {
	c.deps.Executor.Go(func() {
		c.Dispatch(task())
	})
}

func (c *Controller) setButton(b Button, bs ButtonState) {
	if c.state.button(b) == bs {
		return
	}
	c.showButton(b, bs)
}

func (c *Controller) showButton(b Button, bs ButtonState) {
	c.state.setButton(b, bs)
	if v := c.deps.View; v != nil {
		v.SetButton(b, bs)
	}
}

func (c *Controller) reportError(msg string) {
	if v := c.deps.View; v != nil {
		v.ReportError(msg)
	}
}
