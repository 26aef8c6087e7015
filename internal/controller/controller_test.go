package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/discordtext/backend/internal/client"
	"github.com/discordtext/backend/internal/credentials"
	"github.com/discordtext/backend/internal/message"
	"github.com/discordtext/backend/internal/videos"
)

type queueExecutor struct {
	tasks []func()
}

func (q *queueExecutor) Go(task func()) {
	q.tasks = append(q.tasks, task)
}

// runAt runs the i-th queued task.
func (q *queueExecutor) runAt(t *testing.T, i int) {
	t.Helper()
	if i >= len(q.tasks) {
		t.Fatalf("no task %d queued (have %d)", i, len(q.tasks))
	}
	q.tasks[i]()
}

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	wasActive := !f.stopped
	f.stopped = true
	return wasActive
}

type fakeTimers struct {
	started []*fakeTimer
}

func (f *fakeTimers) AfterFunc(d time.Duration, fn func()) Stopper {
	timer := &fakeTimer{d: d, fn: fn}
	f.started = append(f.started, timer)
	return timer
}

type fetcherStub struct {
	records map[string]videos.Record
	errs    map[string]error
	err     error
	calls   []string
}

func (f *fetcherStub) FetchMetadata(ctx context.Context, url, apiKey string) (videos.Record, error) {
	f.calls = append(f.calls, url)
	if err := f.errs[url]; err != nil {
		return videos.Record{}, err
	}
	if f.err != nil {
		return videos.Record{}, f.err
	}
	return f.records[url], nil
}

type saverStub struct {
	err   error
	calls int
	title string
}

func (s *saverStub) SaveThumbnail(ctx context.Context, thumbnailURL, title, fileDate string) (string, error) {
	s.calls++
	s.title = title
	if s.err != nil {
		return "", s.err
	}
	return "downloaded_thumbnails/" + fileDate + "_" + title + ".jpg", nil
}

type credentialStub struct {
	saved map[string]string
	err   error
}

func (c *credentialStub) Save(ctx context.Context, key, value string) error {
	if c.saved == nil {
		c.saved = make(map[string]string)
	}
	c.saved[key] = value
	return c.err
}

type clipboardStub struct {
	texts []string
	err   error
}

func (c *clipboardStub) Copy(text string) error {
	c.texts = append(c.texts, text)
	return c.err
}

type recordingView struct {
	styles   []message.Style
	results  []videos.Record
	messages []string
	buttons  map[Button][]ButtonState
	errors   []string
}

func (v *recordingView) SetStyle(style message.Style)     { v.styles = append(v.styles, style) }
func (v *recordingView) ShowResult(record videos.Record) { v.results = append(v.results, record) }
func (v *recordingView) ShowMessage(text string)          { v.messages = append(v.messages, text) }
func (v *recordingView) ReportError(msg string)           { v.errors = append(v.errors, msg) }
func (v *recordingView) SetButton(button Button, state ButtonState) {
	if v.buttons == nil {
		v.buttons = make(map[Button][]ButtonState)
	}
	v.buttons[button] = append(v.buttons[button], state)
}

func (v *recordingView) lastMessage() string {
	if len(v.messages) == 0 {
		return ""
	}
	return v.messages[len(v.messages)-1]
}

func (v *recordingView) lastButton(b Button) ButtonState {
	states := v.buttons[b]
	if len(states) == 0 {
		return ButtonState{}
	}
	return states[len(states)-1]
}

type harness struct {
	ctrl   *Controller
	exec   *queueExecutor
	timers *fakeTimers
	fetch  *fetcherStub
	saver  *saverStub
	creds  *credentialStub
	clip   *clipboardStub
	view   *recordingView
}

func newHarness() *harness {
	h := &harness{
		exec:   &queueExecutor{},
		timers: &fakeTimers{},
		fetch:  &fetcherStub{records: map[string]videos.Record{}},
		saver:  &saverStub{},
		creds:  &credentialStub{},
		clip:   &clipboardStub{},
		view:   &recordingView{},
	}
	h.ctrl = New(Deps{
		Fetcher:     h.fetch,
		Saver:       h.saver,
		Credentials: h.creds,
		Clipboard:   h.clip,
		View:        h.view,
		Executor:    h.exec,
		Timers:      h.timers,
	})
	return h
}

func (h *harness) handle(ev Event) {
	h.ctrl.Handle(context.Background(), ev)
}

// complete runs queued task i and handles the event it posts.
func (h *harness) complete(t *testing.T, i int) {
	t.Helper()
	h.exec.runAt(t, i)
	if n := h.ctrl.Drain(context.Background()); n != 1 {
		t.Fatalf("expected one completion event, handled %d", n)
	}
}

func (h *harness) fire(t *testing.T, i int) {
	t.Helper()
	if i >= len(h.timers.started) {
		t.Fatalf("no timer %d started", i)
	}
	h.timers.started[i].fn()
	h.ctrl.Drain(context.Background())
}

var myVideo = videos.Record{
	VideoID:       "abc",
	ThumbnailURL:  "https://i.ytimg.com/vi/abc/maxresdefault.jpg",
	Title:         "My Video",
	FileDate:      "20240115",
	FormattedDate: "2024-01-15",
	SourceURL:     "https://youtu.be/abc",
}

func (h *harness) fetchMyVideo(t *testing.T) {
	t.Helper()
	h.fetch.records["https://youtu.be/abc"] = myVideo
	h.handle(FetchRequested{URL: "https://youtu.be/abc", APIKey: "key"})
	h.complete(t, len(h.exec.tasks)-1)
}

func TestFetchRendersBlueByDefault(t *testing.T) {
	h := newHarness()
	h.fetchMyVideo(t)

	want := "```python\n'My Video'\n```\n### 2024-01-15\n<https://youtu.be/abc>"
	if got := h.view.lastMessage(); got != want {
		t.Fatalf("unexpected message:\ngot  %q\nwant %q", got, want)
	}
	if len(h.view.results) != 1 || h.view.results[0] != myVideo {
		t.Fatalf("expected result to be revealed, got %+v", h.view.results)
	}
	state := h.ctrl.State()
	if state.Record == nil || *state.Record != myVideo || state.Message != want {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestSelectStyleRerendersCurrentRecord(t *testing.T) {
	h := newHarness()
	h.fetchMyVideo(t)

	h.handle(StyleSelected{Style: message.StyleRed})

	want := "```diff\n- My Video\n```\n### 2024-01-15\n<https://youtu.be/abc>"
	if got := h.view.lastMessage(); got != want {
		t.Fatalf("unexpected message:\ngot  %q\nwant %q", got, want)
	}
	if got := h.view.styles[len(h.view.styles)-1]; got != message.StyleRed {
		t.Fatalf("unexpected active style %q", got)
	}
}

func TestSelectStyleWithoutRecordShowsEmptyMessage(t *testing.T) {
	h := newHarness()

	h.handle(StyleSelected{Style: message.StyleGreen})

	if h.ctrl.State().Style != message.StyleGreen {
		t.Fatalf("unexpected style %q", h.ctrl.State().Style)
	}
	if got := h.view.lastMessage(); got != "" {
		t.Fatalf("expected empty message, got %q", got)
	}
}

func TestSelectUnknownStyleIgnored(t *testing.T) {
	h := newHarness()
	h.handle(StyleSelected{Style: message.StyleYellow})
	h.handle(StyleSelected{Style: message.Style("purple")})

	if h.ctrl.State().Style != message.StyleYellow {
		t.Fatalf("unknown style should not replace %q, got %q", message.StyleYellow, h.ctrl.State().Style)
	}
}

func TestStyleThenFetchUsesNewRecordAndSelectedStyle(t *testing.T) {
	h := newHarness()
	h.fetchMyVideo(t)
	h.handle(StyleSelected{Style: message.StyleGreen})

	second := videos.Record{Title: "Second", FormattedDate: "2024-02-01", SourceURL: "https://youtu.be/def"}
	h.fetch.records["https://youtu.be/def"] = second
	h.handle(FetchRequested{URL: "https://youtu.be/def", APIKey: "key"})
	h.complete(t, 1)

	want := message.Render("Second", "2024-02-01", "https://youtu.be/def", message.StyleGreen)
	if got := h.view.lastMessage(); got != want {
		t.Fatalf("unexpected message:\ngot  %q\nwant %q", got, want)
	}
}

func TestFetchValidation(t *testing.T) {
	tests := []struct {
		name string
		ev   FetchRequested
		want string
	}{
		{name: "empty url", ev: FetchRequested{URL: "  ", APIKey: "key"}, want: MsgMissingURL},
		{name: "empty key", ev: FetchRequested{URL: "https://youtu.be/abc"}, want: MsgMissingAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.handle(tt.ev)

			if len(h.view.errors) != 1 || h.view.errors[0] != tt.want {
				t.Fatalf("unexpected errors %v", h.view.errors)
			}
			if len(h.exec.tasks) != 0 || len(h.fetch.calls) != 0 {
				t.Fatalf("expected no request, got %d tasks", len(h.exec.tasks))
			}
			if len(h.creds.saved) != 0 {
				t.Fatalf("expected no credential write, got %v", h.creds.saved)
			}
		})
	}
}

func TestFetchPersistsCredentialBeforeOutcome(t *testing.T) {
	h := newHarness()
	h.fetch.err = errors.New("network down")

	h.handle(FetchRequested{URL: "https://youtu.be/abc", APIKey: " secret "})

	if got := h.creds.saved[credentials.APIKeyName]; got != "secret" {
		t.Fatalf("expected credential to be saved at fetch start, got %q", got)
	}

	h.complete(t, 0)
	if got := h.creds.saved[credentials.APIKeyName]; got != "secret" {
		t.Fatalf("credential should survive failure, got %q", got)
	}
}

func TestFetchFailureKeepsPreviousRecord(t *testing.T) {
	h := newHarness()
	h.fetchMyVideo(t)

	h.fetch.err = &client.APIError{StatusCode: 404, Message: "Video not found"}
	h.handle(FetchRequested{URL: "https://youtu.be/zzz", APIKey: "key"})
	h.complete(t, 1)

	if len(h.view.errors) != 1 || h.view.errors[0] != "Video not found" {
		t.Fatalf("expected server error verbatim, got %v", h.view.errors)
	}
	if rec := h.ctrl.State().Record; rec == nil || *rec != myVideo {
		t.Fatalf("record should be unchanged, got %+v", rec)
	}
}

func TestFetchTransportErrorReportsGenericMessage(t *testing.T) {
	h := newHarness()
	h.fetch.err = errors.New("connection refused")

	h.handle(FetchRequested{URL: "https://youtu.be/abc", APIKey: "key"})
	h.complete(t, 0)

	if len(h.view.errors) != 1 || h.view.errors[0] != MsgFetchFailed {
		t.Fatalf("expected generic error, got %v", h.view.errors)
	}
	if h.ctrl.State().Record != nil {
		t.Fatal("record should stay empty")
	}
}

func TestStaleFetchResponseIgnored(t *testing.T) {
	h := newHarness()
	first := videos.Record{Title: "First", FormattedDate: "d1", SourceURL: "https://youtu.be/first"}
	second := videos.Record{Title: "Second", FormattedDate: "d2", SourceURL: "https://youtu.be/second"}
	h.fetch.records["https://youtu.be/first"] = first
	h.fetch.records["https://youtu.be/second"] = second

	h.handle(FetchRequested{URL: "https://youtu.be/first", APIKey: "key"})
	h.handle(FetchRequested{URL: "https://youtu.be/second", APIKey: "key"})

	// The newer request finishes first; the older one arrives last.
	h.complete(t, 1)
	h.complete(t, 0)

	if rec := h.ctrl.State().Record; rec == nil || rec.Title != "Second" {
		t.Fatalf("expected latest fetch to win, got %+v", rec)
	}
	if len(h.view.results) != 1 {
		t.Fatalf("stale result should not reach the view, got %d results", len(h.view.results))
	}
}

func TestStaleFetchFailureIgnored(t *testing.T) {
	h := newHarness()
	h.fetch.errs = map[string]error{"https://youtu.be/first": errors.New("boom")}
	h.handle(FetchRequested{URL: "https://youtu.be/first", APIKey: "key"})

	h.fetch.records["https://youtu.be/second"] = myVideo
	h.handle(FetchRequested{URL: "https://youtu.be/second", APIKey: "key"})

	h.complete(t, 1)
	h.complete(t, 0)

	if len(h.view.errors) != 0 {
		t.Fatalf("stale failure should not be reported, got %v", h.view.errors)
	}
}

func TestSaveWithoutRecordIsNoop(t *testing.T) {
	h := newHarness()

	h.handle(SaveRequested{})

	if len(h.exec.tasks) != 0 || h.saver.calls != 0 {
		t.Fatal("expected no save request without a record")
	}
	if len(h.view.buttons[SaveButton]) != 0 {
		t.Fatalf("save button should be untouched, got %v", h.view.buttons[SaveButton])
	}
}

func TestSaveSuccessShowsTransientLabel(t *testing.T) {
	h := newHarness()
	h.fetchMyVideo(t)

	h.handle(SaveRequested{})
	if got := h.view.lastButton(SaveButton); got != (ButtonState{Label: SavingLabel, Enabled: false}) {
		t.Fatalf("unexpected in-progress state %+v", got)
	}

	// Clicks while saving are ignored.
	h.handle(SaveRequested{})
	if len(h.exec.tasks) != 2 {
		t.Fatalf("expected a single save task, got %d tasks", len(h.exec.tasks))
	}

	h.complete(t, 1)
	if h.saver.title != "My Video" {
		t.Fatalf("unexpected saved title %q", h.saver.title)
	}
	if got := h.view.lastButton(SaveButton); got != (ButtonState{Label: SavedLabel, Enabled: false}) {
		t.Fatalf("unexpected done state %+v", got)
	}
	if len(h.timers.started) != 1 || h.timers.started[0].d != FeedbackWindow {
		t.Fatalf("expected one %v timer, got %+v", FeedbackWindow, h.timers.started)
	}

	h.fire(t, 0)
	if got := h.view.lastButton(SaveButton); got != (ButtonState{Label: SaveLabel, Enabled: true}) {
		t.Fatalf("expected reset state, got %+v", got)
	}
}

func TestSaveServerFailureRevertsImmediately(t *testing.T) {
	h := newHarness()
	h.fetchMyVideo(t)
	h.saver.err = &client.APIError{StatusCode: 500, Message: "Failed to download image"}

	h.handle(SaveRequested{})
	h.complete(t, 1)

	if len(h.view.errors) != 1 || h.view.errors[0] != MsgSaveFailedPrefix+"Failed to download image" {
		t.Fatalf("unexpected errors %v", h.view.errors)
	}
	if got := h.view.lastButton(SaveButton); got != (ButtonState{Label: SaveLabel, Enabled: true}) {
		t.Fatalf("expected immediate reset, got %+v", got)
	}
	if len(h.timers.started) != 0 {
		t.Fatal("failure must not start a feedback timer")
	}
}

func TestSaveTransportFailure(t *testing.T) {
	h := newHarness()
	h.fetchMyVideo(t)
	h.saver.err = errors.New("connection reset")

	h.handle(SaveRequested{})
	h.complete(t, 1)

	if len(h.view.errors) != 1 || h.view.errors[0] != MsgSaveError {
		t.Fatalf("unexpected errors %v", h.view.errors)
	}
	if !h.ctrl.State().Save.Enabled {
		t.Fatal("save button should be re-enabled")
	}
}

func TestCopyCopiesCurrentMessage(t *testing.T) {
	h := newHarness()
	h.fetchMyVideo(t)
	h.handle(StyleSelected{Style: message.StyleYellow})

	h.handle(CopyRequested{})

	want := "```fix\nMy Video\n```\n### 2024-01-15\n<https://youtu.be/abc>"
	if len(h.clip.texts) != 1 || h.clip.texts[0] != want {
		t.Fatalf("unexpected clipboard contents %q", h.clip.texts)
	}
	if got := h.view.lastButton(CopyButton); got.Label != CopiedLabel {
		t.Fatalf("unexpected copy label %+v", got)
	}

	h.fire(t, 0)
	if got := h.view.lastButton(CopyButton); got.Label != CopyLabel {
		t.Fatalf("expected copy label reset, got %+v", got)
	}
}

func TestCopyRetriggerCancelsPreviousTimer(t *testing.T) {
	h := newHarness()
	h.fetchMyVideo(t)

	h.handle(CopyRequested{})
	h.handle(CopyRequested{})

	if len(h.timers.started) != 2 {
		t.Fatalf("expected two timers, got %d", len(h.timers.started))
	}
	if !h.timers.started[0].stopped {
		t.Fatal("first timer should be cancelled")
	}
	if got := len(h.view.buttons[CopyButton]); got != 2 {
		t.Fatalf("expected feedback shown for each copy, got %d updates", got)
	}
	if len(h.clip.texts) != 2 {
		t.Fatalf("expected two clipboard writes, got %d", len(h.clip.texts))
	}

	// A late expiry from the cancelled timer must not reset the label early.
	h.fire(t, 0)
	if got := h.ctrl.State().Copy.Label; got != CopiedLabel {
		t.Fatalf("label reset by cancelled timer: %q", got)
	}

	h.fire(t, 1)
	if got := h.ctrl.State().Copy.Label; got != CopyLabel {
		t.Fatalf("expected reset after current timer, got %q", got)
	}
}

func TestCopyClipboardErrorStillShowsFeedback(t *testing.T) {
	h := newHarness()
	h.fetchMyVideo(t)
	h.clip.err = errors.New("no clipboard")

	h.handle(CopyRequested{})

	if len(h.view.errors) != 0 {
		t.Fatalf("clipboard errors are not reported, got %v", h.view.errors)
	}
	if h.ctrl.State().Copy.Label != CopiedLabel {
		t.Fatalf("unexpected copy label %q", h.ctrl.State().Copy.Label)
	}
}

func TestCopyWithoutRecordIsNoop(t *testing.T) {
	h := newHarness()

	h.handle(CopyRequested{})

	if len(h.clip.texts) != 0 || len(h.timers.started) != 0 {
		t.Fatal("copy without a record should do nothing")
	}
}

type signalView struct {
	recordingView
	reported chan string
}

func (v *signalView) ReportError(msg string) { v.reported <- msg }

func TestRunProcessesDispatchedEvents(t *testing.T) {
	view := &signalView{reported: make(chan string, 1)}
	ctrl := New(Deps{View: view})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	ctrl.Dispatch(StyleSelected{Style: message.StyleRed})
	ctrl.Dispatch(FetchRequested{URL: "", APIKey: "key"})

	select {
	case msg := <-view.reported:
		if msg != MsgMissingURL {
			t.Fatalf("unexpected error %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected Run error %v", err)
	}
	if ctrl.State().Style != message.StyleRed {
		t.Fatalf("unexpected style %q", ctrl.State().Style)
	}

	// Dispatch after Run returns must not block.
	ctrl.Dispatch(CopyRequested{})
}
