package datetime

import (
	"regexp"
	"strconv"
	"time"
)

// DefaultDuration is used when the text carries no explicit length
const DefaultDuration = time.Hour

// MaxDurationHours bounds an explicit length; larger values are ignored
const MaxDurationHours = 24

var durationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bfor\s+(\d+)\s*hours?\b`),
	regexp.MustCompile(`\bfor\s+(\d+)\s*(?:h|hrs?)\b`),
	regexp.MustCompile(`\b(\d+)\s*hours?\s+(?:long|duration)\b`),
	regexp.MustCompile(`\b(\d+)[\s-]*hours?\s+(?:meeting|call|session)\b`),
	regexp.MustCompile(`\bduration\s+of\s+(\d+)\s*hours?\b`),
	regexp.MustCompile(`\blasting\s+(\d+)\s*hours?\b`),
}

// ExtractDuration finds an explicit whole-hour duration in lower-cased text.
// It returns the hours, the text with the matched span blanked out, and
// whether a duration was present.
func ExtractDuration(text string) (int, string, bool) {
	for _, re := range durationPatterns {
		m := re.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		hours, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil || hours < 1 || hours > MaxDurationHours {
			continue
		}
		return hours, text[:m[0]] + " " + text[m[1]:], true
	}
	return 0, text, false
}
