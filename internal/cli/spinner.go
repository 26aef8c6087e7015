package cli

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// spinner animates an indeterminate progress indicator until stop is called.
type spinner struct {
	bar  *progressbar.ProgressBar
	done chan struct{}
}

func startSpinner(w io.Writer, description string) *spinner {
	s := &spinner{
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		),
		done: make(chan struct{}),
	}
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				_ = s.bar.Add(1)
			}
		}
	}()
	return s
}

func (s *spinner) stop() {
	close(s.done)
	_ = s.bar.Finish()
}
