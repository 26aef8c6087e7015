package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Writer puts text on a clipboard.
type Writer interface {
	Copy(text string) error
}

// System writes to the operating system clipboard.
type System struct{}

func (System) Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard: no clipboard utility available")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}

// Memory keeps the last copied text. It backs headless runs and tests.
type Memory struct {
	Text string
}

func (m *Memory) Copy(text string) error {
	m.Text = text
	return nil
}
