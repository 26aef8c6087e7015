package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/discordtext/backend/internal/client"
	"github.com/discordtext/backend/internal/controller"
	"github.com/discordtext/backend/internal/message"
	"github.com/discordtext/backend/internal/videos"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fetcherStub struct {
	record videos.Record
	err    error
}

func (f fetcherStub) FetchMetadata(ctx context.Context, url, apiKey string) (videos.Record, error) {
	return f.record, f.err
}

type saverStub struct{ err error }

func (s saverStub) SaveThumbnail(ctx context.Context, thumbnailURL, title, fileDate string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "downloaded_thumbnails/" + fileDate + "_" + title + ".jpg", nil
}

type clipboardStub struct {
	mu     sync.Mutex
	text   string
	copies int
}

func (c *clipboardStub) Copy(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	c.copies++
	return nil
}

func startSession(t *testing.T, fetcher controller.MetadataFetcher, saver controller.ThumbnailSaver, clip controller.Clipboard) (*Session, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	session := NewSession(NewTerminalView(out, false, nil), nil)
	ctrl := controller.New(controller.Deps{
		Fetcher:   fetcher,
		Saver:     saver,
		Clipboard: clip,
		View:      session,
	})
	session.Attach(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = ctrl.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return session, out
}

func withTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

var sample = videos.Record{
	Title:         "My Video",
	FormattedDate: "2024-01-15",
	SourceURL:     "https://youtu.be/abc",
	ThumbnailURL:  "https://i.ytimg.com/vi/abc/maxresdefault.jpg",
	FileDate:      "20240115",
}

func TestSessionFetchSelectCopy(t *testing.T) {
	clip := &clipboardStub{}
	session, out := startSession(t, fetcherStub{record: sample}, saverStub{}, clip)
	ctx := withTimeout(t)

	ok, err := session.Fetch(ctx, "https://youtu.be/abc", "key")
	if err != nil || !ok {
		t.Fatalf("Fetch() = %v, %v", ok, err)
	}
	if !session.HasResult() {
		t.Fatal("expected result after fetch")
	}
	if !strings.Contains(out.String(), "```python\n'My Video'\n```") {
		t.Fatalf("expected blue message in output, got %q", out.String())
	}

	if err := session.Select(ctx, message.StyleRed); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := session.Copy(ctx); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}

	clip.mu.Lock()
	copied := clip.text
	clip.mu.Unlock()
	if copied != message.Render("My Video", "2024-01-15", "https://youtu.be/abc", message.StyleRed) {
		t.Fatalf("unexpected clipboard text %q", copied)
	}
	if !strings.Contains(out.String(), "["+controller.CopiedLabel+"]") {
		t.Fatalf("expected copy feedback, got %q", out.String())
	}
}

func TestSessionCopyTwiceWithinWindow(t *testing.T) {
	clip := &clipboardStub{}
	session, _ := startSession(t, fetcherStub{record: sample}, saverStub{}, clip)
	ctx := withTimeout(t)

	if _, err := session.Fetch(ctx, "https://youtu.be/abc", "key"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if err := session.Copy(ctx); err != nil {
		t.Fatalf("first Copy() error = %v", err)
	}

	second, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := session.Copy(second); err != nil {
		t.Fatalf("second Copy() within feedback window: %v", err)
	}

	clip.mu.Lock()
	defer clip.mu.Unlock()
	if clip.copies != 2 {
		t.Fatalf("unexpected clipboard writes: got %d want 2", clip.copies)
	}
	want := message.Render("My Video", "2024-01-15", "https://youtu.be/abc", message.StyleBlue)
	if clip.text != want {
		t.Fatalf("unexpected clipboard text %q", clip.text)
	}
}

func TestSessionFetchFailure(t *testing.T) {
	session, out := startSession(t, fetcherStub{err: &client.APIError{StatusCode: 404, Message: "Video not found"}}, saverStub{}, nil)
	ctx := withTimeout(t)

	ok, err := session.Fetch(ctx, "https://youtu.be/abc", "key")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if ok {
		t.Fatal("expected fetch to report failure")
	}
	if !strings.Contains(out.String(), "! Video not found") {
		t.Fatalf("expected error in output, got %q", out.String())
	}
}

func TestSessionValidationError(t *testing.T) {
	session, out := startSession(t, fetcherStub{record: sample}, saverStub{}, nil)

	ok, err := session.Fetch(withTimeout(t), "", "key")
	if err != nil || ok {
		t.Fatalf("Fetch() = %v, %v", ok, err)
	}
	if !strings.Contains(out.String(), controller.MsgMissingURL) {
		t.Fatalf("expected validation message, got %q", out.String())
	}
}

func TestSessionSave(t *testing.T) {
	session, out := startSession(t, fetcherStub{record: sample}, saverStub{}, nil)
	ctx := withTimeout(t)

	if ok, err := session.Save(ctx); ok || err != nil {
		t.Fatalf("Save() before fetch = %v, %v", ok, err)
	}

	if _, err := session.Fetch(ctx, "https://youtu.be/abc", "key"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	ok, err := session.Save(ctx)
	if err != nil || !ok {
		t.Fatalf("Save() = %v, %v", ok, err)
	}
	if !strings.Contains(out.String(), "["+controller.SavedLabel+"]") {
		t.Fatalf("expected save feedback, got %q", out.String())
	}

	// The save button stays disabled during the feedback window.
	if ok, err := session.Save(ctx); ok || err != nil {
		t.Fatalf("Save() during feedback window = %v, %v", ok, err)
	}
}

func TestSessionSaveFailure(t *testing.T) {
	session, out := startSession(t, fetcherStub{record: sample}, saverStub{err: errors.New("reset")}, nil)
	ctx := withTimeout(t)

	if _, err := session.Fetch(ctx, "https://youtu.be/abc", "key"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	ok, err := session.Save(ctx)
	if err != nil || ok {
		t.Fatalf("Save() = %v, %v", ok, err)
	}
	if !strings.Contains(out.String(), controller.MsgSaveError) {
		t.Fatalf("expected save error, got %q", out.String())
	}
}

func TestTerminalViewSkipsIdleLabels(t *testing.T) {
	var out bytes.Buffer
	view := NewTerminalView(&out, false, nil)

	view.SetButton(controller.SaveButton, controller.ButtonState{Label: controller.SaveLabel, Enabled: true})
	view.ShowMessage("")
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}

	view.SetButton(controller.SaveButton, controller.ButtonState{Label: controller.SavingLabel})
	if !strings.Contains(out.String(), controller.SavingLabel) {
		t.Fatalf("expected in-progress label, got %q", out.String())
	}
}
