package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDay = "2006-01-02"

var weekdays = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday,
}

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// ordinals for "nth weekday of month"; -1 means last.
var ordinals = map[string]int{
	"1st": 1, "2nd": 2, "3rd": 3, "4th": 4, "5th": 5,
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"last": -1,
}

var wordNumbers = map[string]int{
	"a": 1, "an": 1,
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

var (
	reISODate = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	reUSDate  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?$`)
	reDayNum  = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?,?$`)
)

// cleanToken strips surrounding whitespace and light trailing punctuation so
// phrase matching works for inputs like "friday," or "jan 15.".
func cleanToken(s string) string {
	return strings.Trim(strings.TrimSpace(s), ",.;")
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func iso(t time.Time) string { return t.Format(isoDay) }

func daysInMonth(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// addMonths shifts a date by whole months, clamping the day to the target
// month's length (Jan 31 + 1 month = Feb 28/29).
func addMonths(base time.Time, n int) time.Time {
	total := base.Year()*12 + int(base.Month()) - 1 + n
	year := total / 12
	month := time.Month(total%12 + 1)
	day := min(base.Day(), daysInMonth(year, month, base.Location()))
	return time.Date(year, month, day, 0, 0, 0, 0, base.Location())
}

func addYears(base time.Time, n int) time.Time {
	year := base.Year() + n
	day := min(base.Day(), daysInMonth(year, base.Month(), base.Location()))
	return time.Date(year, base.Month(), day, 0, 0, 0, 0, base.Location())
}

// nextWeekday returns the strictly future occurrence of the target weekday.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	delta := (int(target) - int(today.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return today.AddDate(0, 0, delta)
}

// prevWeekday returns the most recent past occurrence of the target weekday.
func prevWeekday(today time.Time, target time.Weekday) time.Time {
	delta := (int(today.Weekday()) - int(target) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return today.AddDate(0, 0, -delta)
}

func parseCount(tok string) (int, bool) {
	t := strings.ToLower(cleanToken(tok))
	if n, err := strconv.Atoi(t); err == nil && t != "" {
		return n, true
	}
	n, ok := wordNumbers[t]
	return n, ok
}

func parseUnit(tok string) (string, bool) {
	switch strings.ToLower(cleanToken(tok)) {
	case "day", "days":
		return "days", true
	case "week", "weeks":
		return "weeks", true
	case "month", "months":
		return "months", true
	case "year", "years":
		return "years", true
	}
	return "", false
}

func applyOffset(today time.Time, n int, unit string) time.Time {
	switch unit {
	case "days":
		return today.AddDate(0, 0, n)
	case "weeks":
		return today.AddDate(0, 0, 7*n)
	case "months":
		return addMonths(today, n)
	case "years":
		return addYears(today, n)
	}
	return today
}

// parseRelativePhrase recognizes "in N unit", "after N unit", and
// "N unit from today|now" starting at tokens[i].
func parseRelativePhrase(tokens []string, i int, today time.Time) (string, int) {
	if i >= len(tokens) {
		return "", 0
	}
	t0 := strings.ToLower(cleanToken(tokens[i]))

	if (t0 == "in" || t0 == "after") && i+2 < len(tokens) {
		if n, ok := parseCount(tokens[i+1]); ok {
			if unit, ok := parseUnit(tokens[i+2]); ok {
				return iso(applyOffset(today, n, unit)), 3
			}
		}
	}

	if i+3 < len(tokens) {
		n, okN := parseCount(tokens[i])
		unit, okU := parseUnit(tokens[i+1])
		t2 := strings.ToLower(cleanToken(tokens[i+2]))
		t3 := strings.ToLower(cleanToken(tokens[i+3]))
		if okN && okU && t2 == "from" && (t3 == "today" || t3 == "now") {
			return iso(applyOffset(today, n, unit)), 4
		}
	}

	return "", 0
}

// nthWeekdayOfMonth computes the nth (1..5, or -1 for last) occurrence of a
// weekday within a month. Returns ok=false when the month has no nth
// occurrence.
func nthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, ordinal int, loc *time.Location) (time.Time, bool) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	dim := daysInMonth(year, month, loc)

	if ordinal == -1 {
		last := time.Date(year, month, dim, 0, 0, 0, 0, loc)
		delta := (int(last.Weekday()) - int(weekday) + 7) % 7
		return last.AddDate(0, 0, -delta), true
	}
	if ordinal < 1 {
		return time.Time{}, false
	}

	delta := (int(weekday) - int(first.Weekday()) + 7) % 7
	day := 1 + delta + (ordinal-1)*7
	if day > dim {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc), true
}

// parseNthWeekdayPhrase recognizes "<ordinal> <weekday> of <month> [year]".
func parseNthWeekdayPhrase(tokens []string, i int, today time.Time, allowPast bool) (string, int) {
	if i+3 >= len(tokens) {
		return "", 0
	}
	ordinal, ok := ordinals[strings.ToLower(cleanToken(tokens[i]))]
	if !ok {
		return "", 0
	}
	weekday, ok := weekdays[strings.ToLower(cleanToken(tokens[i+1]))]
	if !ok {
		return "", 0
	}
	if strings.ToLower(cleanToken(tokens[i+2])) != "of" {
		return "", 0
	}
	month, ok := months[strings.ToLower(cleanToken(tokens[i+3]))]
	if !ok {
		return "", 0
	}

	consumed := 4
	year := 0
	if i+4 < len(tokens) {
		ytok := cleanToken(tokens[i+4])
		if len(ytok) == 4 {
			if y, err := strconv.Atoi(ytok); err == nil {
				year = y
				consumed = 5
			}
		}
	}

	explicitYear := year != 0
	if !explicitYear {
		year = today.Year()
	}
	d, ok := nthWeekdayOfMonth(year, month, weekday, ordinal, today.Location())
	if !ok {
		return "", 0
	}
	if !explicitYear && d.Before(today) && !allowPast {
		if next, ok := nthWeekdayOfMonth(today.Year()+1, month, weekday, ordinal, today.Location()); ok {
			d = next
		}
	}
	return iso(d), consumed
}

// parseDatePhrase parses a date expression starting at tokens[i] and returns
// its ISO form plus the number of tokens consumed (0 when no date starts
// there). allowPast controls the future-rollover rule for yearless dates:
// explicit keywords pass true, bare dates pass false.
func parseDatePhrase(tokens []string, i int, today time.Time, allowPast bool) (string, int) {
	if i >= len(tokens) {
		return "", 0
	}

	if d, n := parseRelativePhrase(tokens, i, today); n > 0 {
		return d, n
	}
	if d, n := parseNthWeekdayPhrase(tokens, i, today, allowPast); n > 0 {
		return d, n
	}

	tok := cleanToken(tokens[i])
	low := strings.ToLower(tok)

	switch low {
	case "today", "tod":
		return iso(today), 1
	case "yesterday", "yest":
		return iso(today.AddDate(0, 0, -1)), 1
	case "tomorrow", "tmr", "tom":
		return iso(today.AddDate(0, 0, 1)), 1
	}

	if low == "next" && i+1 < len(tokens) {
		next := strings.ToLower(cleanToken(tokens[i+1]))
		if wd, ok := weekdays[next]; ok {
			return iso(nextWeekday(today, wd)), 2
		}
		switch next {
		case "week":
			return iso(today.AddDate(0, 0, 7)), 2
		case "month":
			return iso(addMonths(today, 1)), 2
		}
	}

	if low == "last" && i+1 < len(tokens) {
		if wd, ok := weekdays[strings.ToLower(cleanToken(tokens[i+1]))]; ok {
			return iso(prevWeekday(today, wd)), 2
		}
	}

	if wd, ok := weekdays[low]; ok {
		return iso(nextWeekday(today, wd)), 1
	}

	if m := reISODate.FindStringSubmatch(tok); m != nil {
		d, ok := safeDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), today.Location())
		if !ok {
			return "", 0
		}
		return iso(d), 1
	}

	if m := reUSDate.FindStringSubmatch(tok); m != nil {
		month, day := atoi(m[1]), atoi(m[2])
		year := today.Year()
		explicitYear := m[3] != ""
		if explicitYear {
			year = atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		d, ok := safeDate(year, month, day, today.Location())
		if !ok {
			return "", 0
		}
		if !explicitYear && d.Before(today) && !allowPast {
			if next, ok := safeDate(today.Year()+1, month, day, today.Location()); ok {
				d = next
			}
		}
		return iso(d), 1
	}

	if month, ok := months[low]; ok && i+1 < len(tokens) {
		dayTok := strings.ToLower(cleanToken(tokens[i+1]))
		m := reDayNum.FindStringSubmatch(dayTok)
		if m == nil {
			return "", 0
		}
		day := atoi(m[1])
		year := today.Year()
		consumed := 2
		explicitYear := false
		if i+2 < len(tokens) {
			ytok := strings.TrimSuffix(cleanToken(tokens[i+2]), ",")
			if len(ytok) == 2 || len(ytok) == 4 {
				if y, err := strconv.Atoi(ytok); err == nil {
					if y < 100 {
						y += 2000
					}
					year = y
					consumed = 3
					explicitYear = true
				}
			}
		}
		d, ok := safeDate(year, int(month), day, today.Location())
		if !ok {
			return "", 0
		}
		if !explicitYear && d.Before(today) && !allowPast {
			if next, ok := safeDate(today.Year()+1, int(month), day, today.Location()); ok {
				d = next
			}
		}
		return iso(d), consumed
	}

	return "", 0
}

// safeDate builds a date only when the components denote a real calendar day
// (time.Date would silently normalize Feb 30 into March).
func safeDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	if day > daysInMonth(year, time.Month(month), loc) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
