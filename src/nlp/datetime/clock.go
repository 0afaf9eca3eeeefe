package datetime

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// clockExpr matches a time-of-day token; its single group feeds parseClock
const clockExpr = `(noon|midnight|\d{1,2}(?::\d{2})?(?:\s*[ap]\.?m\.?)?)\b`

var clockRe = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(?:([ap])\.?m\.?)?$`)

type clock struct {
	hour, minute int
}

func parseClock(s string) (clock, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "noon":
		return clock{12, 0}, true
	case "midnight":
		return clock{0, 0}, true
	}
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return clock{}, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	switch m[3] {
	case "p":
		if hour < 12 {
			hour += 12
		}
	case "a":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 || minute > 59 {
		return clock{}, false
	}
	return clock{hour, minute}, true
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// mondayIndex numbers the week from Monday (0) to Sunday (6)
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func at(day time.Time, c clock) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.hour, c.minute, 0, 0, day.Location())
}

// addDays moves by calendar days, keeping the wall clock across DST changes
func addDays(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+n, t.Hour(), t.Minute(), 0, 0, t.Location())
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// date builds a calendar date and rejects overflowing days such as Feb 30
func date(year int, month time.Month, day int, c clock, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, month, day, c.hour, c.minute, 0, 0, loc)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
