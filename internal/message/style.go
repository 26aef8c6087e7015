package message

import "strings"

// Style selects one of the preset announcement templates.
type Style string

const (
	StyleBlue   Style = "blue"
	StyleRed    Style = "red"
	StyleGreen  Style = "green"
	StyleYellow Style = "yellow"
)

// DefaultStyle is active until the user picks another one.
const DefaultStyle = StyleBlue

// Styles lists every selectable style in display order.
var Styles = []Style{StyleBlue, StyleRed, StyleGreen, StyleYellow}

// Valid reports whether s is one of the known styles.
func (s Style) Valid() bool {
	switch s {
	case StyleBlue, StyleRed, StyleGreen, StyleYellow:
		return true
	}
	return false
}

// ParseStyle normalises user input. Unknown values are returned as-is so that
// Render can apply its fallback; ok reports whether the value was recognised.
func ParseStyle(raw string) (style Style, ok bool) {
	style = Style(strings.ToLower(strings.TrimSpace(raw)))
	return style, style.Valid()
}
