// Package normalize canonicalizes free-form chat text before intent
// classification and slot extraction.
package normalize

import (
	"regexp"
	"strings"
)

type rewrite struct {
	re   *regexp.Regexp
	repl string
	fn   func(string) string
}

const weekday = `(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`
const clock = `(\d{1,2}(?::\d{2})?(?:\s*[ap]m)?)`

// Order matters: typo fixes run first so the phrase rules see clean words.
var rewrites = []rewrite{
	// typos
	{re: regexp.MustCompile(`\b(?:nex|nxt)\b`), repl: "next"},
	{re: regexp.MustCompile(`\b(?:meetinf|meetin|meting|metting|meetng|meeitng)\b`), repl: "meeting"},
	{re: regexp.MustCompile(`\b(?:shedule|schedual|scedule|schedul|shcedule|scheudle)\b`), repl: "schedule"},
	{re: regexp.MustCompile(`\b(?:emial|emal|emali|mial)\b`), repl: "email"},
	{re: regexp.MustCompile(`\be-mail(s?)\b`), repl: "email$1"},
	{re: regexp.MustCompile(`\b(?:slak|slck|salck)\b`), repl: "slack"},
	{re: regexp.MustCompile(`\b(?:retreive|retrive|retreve)\b`), repl: "retrieve"},
	{re: regexp.MustCompile(`\b(?:tommorow|tomorow|tommorrow|tomorrw|tmrw|tmr)\b`), repl: "tomorrow"},
	{re: regexp.MustCompile(`\b(?:tody|todya)\b`), repl: "today"},
	{re: regexp.MustCompile(`\b(?:mondy|monady)\b`), repl: "monday"},
	{re: regexp.MustCompile(`\b(?:tues|teusday|tuseday)\b`), repl: "tuesday"},
	{re: regexp.MustCompile(`\b(?:wensday|wendsday|wednsday|wedensday|wednesdy)\b`), repl: "wednesday"},
	{re: regexp.MustCompile(`\b(?:thurs|thur|thrusday|thursdy)\b`), repl: "thursday"},
	{re: regexp.MustCompile(`\b(?:firday|fridy|fri)\b`), repl: "friday"},
	{re: regexp.MustCompile(`\b(?:saturdy|satruday)\b`), repl: "saturday"},
	{re: regexp.MustCompile(`\b(?:sundy|sundya)\b`), repl: "sunday"},

	// 3pm / 3 p.m. -> 3 pm
	{re: regexp.MustCompile(`\b(\d{1,2}(?::\d{2})?)\s*([ap])\.?m\b\.?`), repl: "$1 ${2}m"},
	// 2h / 2hr / 2hrs -> 2 hours
	{re: regexp.MustCompile(`\b(\d+)\s*(?:h|hr|hrs)\b`), fn: expandHours},

	// command phrases
	{re: regexp.MustCompile(`\b(?:send|shoot|drop)\s+(?:out\s+)?(?:an?\s+)?(?:e-?)?mail\b`), repl: "send email"},
	{re: regexp.MustCompile(`\b(?:post|send|write)\s+(?:a\s+)?(?:message\s+)?(?:to|on|in)\s+slack\b`), repl: "send slack"},
	{re: regexp.MustCompile(`\b(?:get|check|read|show|fetch)\s+(?:me\s+)?(?:my\s+)?(?:latest\s+|recent\s+|new\s+|unread\s+)?e-?mails?\b`), repl: "retrieve email"},
	{re: regexp.MustCompile(`\b(?:get|check|read|show|fetch)\s+(?:me\s+)?(?:the\s+)?(?:latest\s+|recent\s+)?slack\s+messages?\b`), repl: "retrieve slack"},

	// relative week phrasing
	{re: regexp.MustCompile(`\bfor\s+next\s+week\b`), repl: "next week"},
	{re: regexp.MustCompile(`\bnext\s+week\s+at\s+` + clock + `\s+on\s+` + weekday + `\b`), repl: "next week $2 at $1"},
	{re: regexp.MustCompile(`\bnext\s+week\s+on\s+` + weekday + `\b`), repl: "next week $1"},
	{re: regexp.MustCompile(`\bon\s+` + weekday + `\s+next\s+week\b`), repl: "next week $1"},
	{re: regexp.MustCompile(`\bfor\s+` + weekday + `\s+at\b`), repl: "for next $1 at"},
}

var spaces = regexp.MustCompile(`\s+`)

var hoursRe = regexp.MustCompile(`\d+`)

func expandHours(m string) string {
	n := hoursRe.FindString(m)
	if n == "1" {
		return "1 hour"
	}
	return n + " hours"
}

// maxPasses bounds the fixed-point loop; every rule shrinks or stabilizes text
const maxPasses = 5

// Normalize lower-cases text outside quoted spans, fixes common typos and
// canonicalizes command and time phrasing. Quoted spans are returned byte for
// byte. Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	segments := Split(text)
	var b strings.Builder
	for _, seg := range segments {
		if seg.Quoted {
			b.WriteString(seg.Text)
			continue
		}
		b.WriteString(normalizeSegment(seg.Text))
	}
	return strings.TrimSpace(b.String())
}

// protected tokens are lower-cased but never rewritten
var protected = regexp.MustCompile(`[\w.%+\-]+@[\w.\-]+\.[a-z]{2,}|https?://\S+|#[\w\-]+`)

func normalizeSegment(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	last := 0
	for _, loc := range protected.FindAllStringIndex(s, -1) {
		b.WriteString(rewriteToFixpoint(s[last:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(rewriteToFixpoint(s[last:]))
	return b.String()
}

func rewriteToFixpoint(s string) string {
	for i := 0; i < maxPasses; i++ {
		next := applyRewrites(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func applyRewrites(s string) string {
	for _, rw := range rewrites {
		if rw.fn != nil {
			s = rw.re.ReplaceAllStringFunc(s, rw.fn)
			continue
		}
		s = rw.re.ReplaceAllString(s, rw.repl)
	}
	return spaces.ReplaceAllString(s, " ")
}
