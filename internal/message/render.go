// Package message renders video metadata into Discord-flavoured markdown
// announcements.
package message

import "strings"

const fence = "```"

// Render formats a message for the supplied style. Unknown styles fall back to
// the blue template. Title is inserted verbatim: a title containing a code
// fence produces malformed markdown.
func Render(title, formattedDate, url string, style Style) string {
	var b strings.Builder

	b.WriteString(fence)
	switch style {
	case StyleRed:
		b.WriteString("diff\n- ")
		b.WriteString(title)
	case StyleGreen:
		b.WriteString("diff\n+ ")
		b.WriteString(title)
	case StyleYellow:
		b.WriteString("fix\n")
		b.WriteString(title)
	default:
		b.WriteString("python\n'")
		b.WriteString(title)
		b.WriteString("'")
	}
	b.WriteString("\n")
	b.WriteString(fence)
	b.WriteString("\n### ")
	b.WriteString(formattedDate)
	b.WriteString("\n<")
	b.WriteString(url)
	b.WriteString(">")

	return b.String()
}
