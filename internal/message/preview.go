package message

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
)

var previewRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
)

// Preview converts a rendered message to HTML so it can be shown the way a
// chat client would display it. Raw HTML in the title is omitted.
func Preview(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := previewRenderer.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}
	return buf.String(), nil
}
