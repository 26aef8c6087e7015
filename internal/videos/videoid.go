package videos

import (
	"regexp"
	"strings"
)

// Video ids are always 11 characters long.
var (
	videoURLPattern = regexp.MustCompile(`(?:youtube(?:-nocookie)?\.com/(?:(?:shorts|live|embed|v|e)/|\S*?[?&]v=)|youtu\.be/)([0-9A-Za-z_-]{11})`)
	looseURLPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)
	videoIDPattern  = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
)

// ExtractVideoID returns the video id contained in a watch, short, live,
// embed or youtu.be URL. A bare id is accepted as well.
func ExtractVideoID(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if match := videoURLPattern.FindStringSubmatch(s); len(match) > 1 {
		return match[1], nil
	}
	if videoIDPattern.MatchString(s) {
		return s, nil
	}
	if match := looseURLPattern.FindStringSubmatch(s); len(match) > 1 {
		return match[1], nil
	}

	return "", ErrInvalidURL
}
