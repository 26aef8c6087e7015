package cli

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/discordtext/backend/internal/controller"
	"github.com/discordtext/backend/internal/message"
	"github.com/discordtext/backend/internal/videos"
)

type notice int

const (
	noticeMessage notice = iota
	noticeError
	noticeSaved
	noticeCopied
)

// Session turns the controller's asynchronous updates into blocking calls for
// terminal front ends. It is the controller's View.
type Session struct {
	*TerminalView

	ctrl      *controller.Controller
	progress  io.Writer
	notices   chan notice
	hasResult atomic.Bool
	saveBusy  atomic.Bool
	failed    atomic.Bool
}

// NewSession wraps view. Spinners are drawn on progress, which may be nil.
func NewSession(view *TerminalView, progress io.Writer) *Session {
	return &Session{
		TerminalView: view,
		progress:     progress,
		notices:      make(chan notice, 16),
	}
}

// Attach connects the controller the session drives. It must be called before
// any other Session method.
func (s *Session) Attach(ctrl *controller.Controller) {
	s.ctrl = ctrl
}

// HasResult reports whether a fetch has succeeded.
func (s *Session) HasResult() bool {
	return s.hasResult.Load()
}

// Select switches the style and waits for the message to be re-rendered.
func (s *Session) Select(ctx context.Context, style message.Style) error {
	if !style.Valid() {
		return nil
	}
	return s.do(ctx, "", controller.StyleSelected{Style: style}, noticeMessage)
}

// Fetch requests metadata and waits for the outcome. It reports whether the
// fetch succeeded; failures have already been shown to the user.
func (s *Session) Fetch(ctx context.Context, url, apiKey string) (bool, error) {
	err := s.do(ctx, "取得中...", controller.FetchRequested{URL: url, APIKey: apiKey}, noticeMessage, noticeError)
	return !s.failed.Load(), err
}

// Save asks the server to store the thumbnail and waits for the outcome.
// Without a fetched video, or while the save button is disabled, it does
// nothing.
func (s *Session) Save(ctx context.Context) (bool, error) {
	if !s.HasResult() || s.saveBusy.Load() {
		return false, nil
	}
	err := s.do(ctx, controller.SavingLabel, controller.SaveRequested{}, noticeSaved, noticeError)
	return !s.failed.Load(), err
}

// Copy copies the current message. Without a fetched video it does nothing.
func (s *Session) Copy(ctx context.Context) error {
	if !s.HasResult() {
		return nil
	}
	return s.do(ctx, "", controller.CopyRequested{}, noticeCopied)
}

func (s *Session) do(ctx context.Context, description string, ev controller.Event, want ...notice) error {
	s.drain()
	s.failed.Store(false)
	s.ctrl.Dispatch(ev)

	var sp *spinner
	if description != "" && s.progress != nil {
		sp = startSpinner(s.progress, description)
		defer sp.stop()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-s.notices:
			for _, w := range want {
				if n == w {
					return nil
				}
			}
		}
	}
}

func (s *Session) drain() {
	for {
		select {
		case <-s.notices:
		default:
			return
		}
	}
}

func (s *Session) notify(n notice) {
	select {
	case s.notices <- n:
	default:
	}
}

// ShowResult records that a fetch succeeded before printing it.
func (s *Session) ShowResult(record videos.Record) {
	s.hasResult.Store(true)
	s.TerminalView.ShowResult(record)
}

// ShowMessage prints the rendered message and wakes a waiting Select or Fetch.
func (s *Session) ShowMessage(text string) {
	s.TerminalView.ShowMessage(text)
	s.notify(noticeMessage)
}

// SetButton tracks the save button and completes Save or Copy on their
// feedback labels.
func (s *Session) SetButton(button controller.Button, state controller.ButtonState) {
	s.TerminalView.SetButton(button, state)
	if button == controller.SaveButton {
		s.saveBusy.Store(!state.Enabled)
	}
	switch state.Label {
	case controller.SavedLabel:
		s.notify(noticeSaved)
	case controller.CopiedLabel:
		s.notify(noticeCopied)
	}
}

// ReportError prints msg and fails the pending call.
func (s *Session) ReportError(msg string) {
	s.failed.Store(true)
	s.TerminalView.ReportError(msg)
	s.notify(noticeError)
}

var _ controller.View = (*Session)(nil)
