package datetime

import (
	"regexp"
	"strconv"
	"time"
)

const (
	weekdayExpr = `(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tue|wed|thu|fri|sat|sun)`
	monthExpr   = `(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)`
	ordinal     = `(?:st|nd|rd|th)?`
	optAt       = `(?:\s+at)?\s+`
)

// pattern resolves one structural phrasing. resolve returns the candidate
// start and whether a past result may be rolled into next year.
type pattern struct {
	name    string
	re      *regexp.Regexp
	resolve func(m []string, ref time.Time) (time.Time, bool, bool)
}

// patterns are tried in order; the first that yields a valid time wins
var patterns = []pattern{
	{
		name:    "next_week_weekday",
		re:      regexp.MustCompile(`\bnext\s+week\s+(?:on\s+)?` + weekdayExpr + optAt + clockExpr),
		resolve: nextWeekWeekday,
	},
	{
		name:    "weekday_next_week",
		re:      regexp.MustCompile(`\b(?:on\s+)?` + weekdayExpr + `\s+next\s+week` + optAt + clockExpr),
		resolve: nextWeekWeekday,
	},
	{
		name:    "next_weekday",
		re:      regexp.MustCompile(`\bnext\s+` + weekdayExpr + optAt + clockExpr),
		resolve: nextWeekday,
	},
	{
		name:    "tomorrow",
		re:      regexp.MustCompile(`\btomorrow` + optAt + clockExpr),
		resolve: relativeDay(1),
	},
	{
		name:    "time_tomorrow",
		re:      regexp.MustCompile(`\bat\s+` + clockExpr + `\s+tomorrow\b`),
		resolve: relativeDay(1),
	},
	{
		name:    "today",
		re:      regexp.MustCompile(`\btoday` + optAt + clockExpr),
		resolve: relativeDay(0),
	},
	{
		name:    "time_today",
		re:      regexp.MustCompile(`\bat\s+` + clockExpr + `\s+today\b`),
		resolve: relativeDay(0),
	},
	{
		name:    "month_day",
		re:      regexp.MustCompile(`\b` + monthExpr + `\.?\s+(\d{1,2})` + ordinal + `(?:,?\s+(\d{4}))?,?\s+at\s+` + clockExpr),
		resolve: monthDay,
	},
	{
		name:    "day_of_month",
		re:      regexp.MustCompile(`\b(?:the\s+)?(\d{1,2})` + ordinal + `\s+of\s+` + monthExpr + `(?:,?\s+(\d{4}))?\s+at\s+` + clockExpr),
		resolve: dayOfMonth,
	},
	{
		name:    "in_days",
		re:      regexp.MustCompile(`\bin\s+(\d{1,3})\s+days?\s+at\s+` + clockExpr),
		resolve: inDays,
	},
	{
		name:    "next_month_day",
		re:      regexp.MustCompile(`\bnext\s+month\s+on\s+the\s+(\d{1,2})` + ordinal + `\s+at\s+` + clockExpr),
		resolve: nextMonthDay,
	},
	{
		name:    "weekday",
		re:      regexp.MustCompile(`\b(?:on\s+)?` + weekdayExpr + optAt + clockExpr),
		resolve: upcomingWeekday,
	},
	{
		name:    "time",
		re:      regexp.MustCompile(`\bat\s+` + clockExpr),
		resolve: relativeDay(0),
	},
}

// nextWeekWeekday lands in the calendar week (Monday start) after ref's week
func nextWeekWeekday(m []string, ref time.Time) (time.Time, bool, bool) {
	c, ok := parseClock(m[2])
	if !ok {
		return time.Time{}, false, false
	}
	target := weekdays[m[1]]
	days := 7 - mondayIndex(ref.Weekday()) + mondayIndex(target)
	return at(addDays(ref, days), c), false, true
}

// nextWeekday is the next occurrence of the weekday, never today
func nextWeekday(m []string, ref time.Time) (time.Time, bool, bool) {
	c, ok := parseClock(m[2])
	if !ok {
		return time.Time{}, false, false
	}
	days := (int(weekdays[m[1]]) - int(ref.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return at(addDays(ref, days), c), false, true
}

// upcomingWeekday allows today when the time is still ahead
func upcomingWeekday(m []string, ref time.Time) (time.Time, bool, bool) {
	c, ok := parseClock(m[2])
	if !ok {
		return time.Time{}, false, false
	}
	days := (int(weekdays[m[1]]) - int(ref.Weekday()) + 7) % 7
	start := at(addDays(ref, days), c)
	if days == 0 && start.Before(ref) {
		start = addDays(start, 7)
	}
	return start, false, true
}

func relativeDay(offset int) func([]string, time.Time) (time.Time, bool, bool) {
	return func(m []string, ref time.Time) (time.Time, bool, bool) {
		c, ok := parseClock(m[1])
		if !ok {
			return time.Time{}, false, false
		}
		return at(addDays(ref, offset), c), false, true
	}
}

func monthDay(m []string, ref time.Time) (time.Time, bool, bool) {
	day, _ := strconv.Atoi(m[2])
	return calendarDate(months[m[1]], day, m[3], m[4], ref)
}

func dayOfMonth(m []string, ref time.Time) (time.Time, bool, bool) {
	day, _ := strconv.Atoi(m[1])
	return calendarDate(months[m[2]], day, m[3], m[4], ref)
}

func calendarDate(month time.Month, day int, year, clockText string, ref time.Time) (time.Time, bool, bool) {
	c, ok := parseClock(clockText)
	if !ok {
		return time.Time{}, false, false
	}
	y := ref.Year()
	rollYear := true
	if year != "" {
		y, _ = strconv.Atoi(year)
		rollYear = false
	}
	t, ok := date(y, month, day, c, ref.Location())
	return t, rollYear, ok
}

func inDays(m []string, ref time.Time) (time.Time, bool, bool) {
	n, _ := strconv.Atoi(m[1])
	c, ok := parseClock(m[2])
	if !ok {
		return time.Time{}, false, false
	}
	return at(addDays(ref, n), c), false, true
}

func nextMonthDay(m []string, ref time.Time) (time.Time, bool, bool) {
	day, _ := strconv.Atoi(m[1])
	c, ok := parseClock(m[2])
	if !ok {
		return time.Time{}, false, false
	}
	first := time.Date(ref.Year(), ref.Month()+1, 1, 0, 0, 0, 0, ref.Location())
	t, ok := date(first.Year(), first.Month(), day, c, ref.Location())
	return t, false, ok
}

var (
	isoDateRe    = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	slashDateRe  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\b`)
	ordinalDayRe = regexp.MustCompile(`\b(?:on\s+the|on|the)\s+(\d{1,2})(?:st|nd|rd|th)\b`)
	atClockRe    = regexp.MustCompile(`(?:\bat|@)\s*` + clockExpr)
	meridiemRe   = regexp.MustCompile(`\b(\d{1,2}(?::\d{2})?\s*[ap]\.?m\.?|noon|midnight)(?:\W|$)`)
)

// dateToken is a numeric or ordinal calendar date found in the text. A zero
// year means the year was not given; a zero month means only the day was.
type dateToken struct {
	source           string
	year, month, day int
	from, to         int
}

func findDateToken(text string) (dateToken, bool) {
	if m := isoDateRe.FindStringSubmatchIndex(text); m != nil {
		return dateToken{
			source: "iso_date",
			year:   atoi(text[m[2]:m[3]]),
			month:  atoi(text[m[4]:m[5]]),
			day:    atoi(text[m[6]:m[7]]),
			from:   m[0], to: m[1],
		}, true
	}
	if m := slashDateRe.FindStringSubmatchIndex(text); m != nil {
		tok := dateToken{
			source: "numeric_date",
			month:  atoi(text[m[2]:m[3]]),
			day:    atoi(text[m[4]:m[5]]),
			from:   m[0], to: m[1],
		}
		if m[6] >= 0 {
			tok.year = atoi(text[m[6]:m[7]])
			if tok.year < 100 {
				tok.year += 2000
			}
		}
		return tok, true
	}
	// "the 21st of march" belongs to the month-name patterns and the parser
	if monthNameRe.MatchString(text) {
		return dateToken{}, false
	}
	if m := ordinalDayRe.FindStringSubmatchIndex(text); m != nil {
		return dateToken{
			source: "ordinal_day",
			day:    atoi(text[m[2]:m[3]]),
			from:   m[0], to: m[1],
		}, true
	}
	return dateToken{}, false
}

// clockOutside finds a time of day outside the date token's span: an
// "at <clock>" phrase first, then a bare am/pm time.
func clockOutside(text string, tok dateToken) (clock, bool) {
	rest := text[:tok.from] + " " + text[tok.to:]
	for _, re := range []*regexp.Regexp{atClockRe, meridiemRe} {
		if m := re.FindStringSubmatch(rest); m != nil {
			if c, ok := parseClock(m[1]); ok {
				return c, true
			}
		}
	}
	return clock{}, false
}

// resolveToken returns the start for tok and whether a past result may roll
// into next year. Month/day pairs are read month first.
func resolveToken(tok dateToken, c clock, ref time.Time) (time.Time, bool, bool) {
	loc := ref.Location()
	if tok.month == 0 {
		// ordinal day alone: this month, or next month once the day has passed
		for i := 0; i < 2; i++ {
			first := time.Date(ref.Year(), ref.Month()+time.Month(i), 1, 0, 0, 0, 0, loc)
			t, ok := date(first.Year(), first.Month(), tok.day, c, loc)
			if ok && (!t.Before(ref) || sameDate(t, ref)) {
				return t, false, true
			}
		}
		return time.Time{}, false, false
	}
	if tok.month > 12 {
		return time.Time{}, false, false
	}
	if tok.year != 0 {
		t, ok := date(tok.year, time.Month(tok.month), tok.day, c, loc)
		return t, false, ok
	}
	t, ok := date(ref.Year(), time.Month(tok.month), tok.day, c, loc)
	return t, true, ok
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
