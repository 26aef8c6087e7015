package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/discordtext/backend/internal/controller"
	"github.com/discordtext/backend/internal/message"
	"github.com/discordtext/backend/internal/videos"
)

// TerminalView prints controller updates. With Pretty set the announcement is
// rendered as terminal markdown; otherwise it is printed verbatim.
type TerminalView struct {
	mu     sync.Mutex
	out    io.Writer
	pretty *glamour.TermRenderer
	logger *slog.Logger
}

// NewTerminalView writes to out. Markdown rendering is used when pretty is
// true and a renderer can be built.
func NewTerminalView(out io.Writer, pretty bool, logger *slog.Logger) *TerminalView {
	if logger == nil {
		logger = slog.Default()
	}
	v := &TerminalView{out: out, logger: logger}
	if pretty {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			logger.Warn("markdown renderer unavailable", "error", err)
		} else {
			v.pretty = r
		}
	}
	return v
}

func (v *TerminalView) SetStyle(style message.Style) {
	v.printf("スタイル: %s\n", style)
}

func (v *TerminalView) ShowResult(record videos.Record) {
	v.printf("\n%s\n%s\nサムネイル: %s\n", record.Title, record.FormattedDate, record.ThumbnailURL)
}

func (v *TerminalView) ShowMessage(text string) {
	if text == "" {
		return
	}
	if v.pretty != nil {
		rendered, err := v.pretty.Render(text)
		if err == nil {
			v.printf("%s", rendered)
			return
		}
		v.logger.Warn("render markdown", "error", err)
	}
	v.printf("\n%s\n\n", text)
}

// SetButton prints transient labels. Returning to the idle label is silent.
func (v *TerminalView) SetButton(button controller.Button, state controller.ButtonState) {
	switch state.Label {
	case controller.SaveLabel, controller.CopyLabel:
		return
	}
	v.printf("[%s]\n", state.Label)
}

func (v *TerminalView) ReportError(msg string) {
	v.printf("! %s\n", msg)
}

func (v *TerminalView) printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, format, args...)
}

var _ controller.View = (*TerminalView)(nil)
