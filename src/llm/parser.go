package llm

import (
	"regexp"
	"strings"
)

var labelTrim = regexp.MustCompile(`^[\s"'` + "`" + `*.:]+|[\s"'` + "`" + `*.:]+$`)

// ParseLabel reduces a classifier completion to a bare lower-case label.
// Membership in the label set is checked by the caller.
func ParseLabel(out string) string {
	out = strings.TrimSpace(out)
	if i := strings.IndexAny(out, "\r\n"); i >= 0 {
		out = out[:i]
	}
	out = labelTrim.ReplaceAllString(out, "")
	out = strings.TrimPrefix(strings.ToLower(out), "intent:")
	return strings.TrimSpace(out)
}

// CleanMessage strips wrapping quotes and whitespace from a drafted message
func CleanMessage(out string) string {
	out = strings.TrimSpace(out)
	for _, pair := range [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}} {
		if len(out) >= 2 && strings.HasPrefix(out, pair[0]) && strings.HasSuffix(out, pair[1]) {
			out = strings.TrimSpace(out[len(pair[0]) : len(out)-len(pair[1])])
		}
	}
	return out
}

var (
	subjectLine = regexp.MustCompile(`(?im)^\s*subject\s*:\s*(.+?)\s*$`)
	bodyMarker  = regexp.MustCompile(`(?im)^\s*body\s*:\s*`)
)

// ParseEmailDraft splits a "SUBJECT: ... BODY: ..." completion
func ParseEmailDraft(out string) (subject, body string, ok bool) {
	m := subjectLine.FindStringSubmatch(out)
	loc := bodyMarker.FindStringIndex(out)
	if m == nil || loc == nil {
		return "", "", false
	}
	subject = strings.TrimSpace(m[1])
	body = strings.TrimSpace(out[loc[1]:])
	if subject == "" || body == "" {
		return "", "", false
	}
	return subject, body, true
}
