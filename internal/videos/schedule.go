package videos

import (
	"fmt"
	"time"
)

// Announcements are written for a Japanese audience.
var jst = time.FixedZone("JST", 9*60*60)

var weekdays = [...]string{
	time.Sunday:    "日",
	time.Monday:    "月",
	time.Tuesday:   "火",
	time.Wednesday: "水",
	time.Thursday:  "木",
	time.Friday:    "金",
	time.Saturday:  "土",
}

// FormatSchedule converts t to JST and returns the display date
// ("01月02日(月) 15時04分～") and the file date ("20060102").
func FormatSchedule(t time.Time) (formatted, file string) {
	local := t.In(jst)
	formatted = fmt.Sprintf("%s(%s) %s",
		local.Format("01月02日"),
		weekdays[local.Weekday()],
		local.Format("15時04分～"),
	)
	return formatted, local.Format("20060102")
}
