package task

import (
	"strconv"
	"time"
)

var weekdayShort = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// FormatRelativeDay renders an ISO date as a short relative label: Today,
// Tomorrow, Yesterday, "3d ago", the weekday name within the coming week,
// "Next week" at exactly seven days, and "Jan 02" beyond that. Unparseable
// values are returned verbatim so callers never lose information.
func FormatRelativeDay(value string, today time.Time) string {
	day := DayOf(value)
	if day == "" {
		return ""
	}
	parsed, err := time.ParseInLocation("2006-01-02", day, today.Location())
	if err != nil {
		return value
	}

	base := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	delta := int(parsed.Sub(base).Hours() / 24)

	switch {
	case delta == 0:
		return "Today"
	case delta == 1:
		return "Tomorrow"
	case delta == -1:
		return "Yesterday"
	case delta < -1:
		return strconv.Itoa(-delta) + "d ago"
	case delta >= 2 && delta <= 6:
		// time.Weekday is Sunday-based; the label table is Monday-based.
		return weekdayShort[(int(parsed.Weekday())+6)%7]
	case delta == 7:
		return "Next week"
	default:
		return parsed.Format("Jan 02")
	}
}
