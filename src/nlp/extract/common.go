// Package extract pulls intent-specific slots out of a user's message.
package extract

import (
	"regexp"
	"strings"
	"unicode"
)

const emailExpr = `[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`

var (
	emailRe      = regexp.MustCompile(emailExpr)
	validEmailRe = regexp.MustCompile(`^` + emailExpr + `$`)
	spacesRe     = regexp.MustCompile(`\s+`)
)

// ValidEmail reports whether s is exactly one syntactically valid address
func ValidEmail(s string) bool {
	return validEmailRe.MatchString(strings.TrimSpace(s))
}

func collapse(s string) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}

// titleWord upper-cases the first letter and lower-cases the rest
func titleWord(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func titleName(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func isStopWord(words map[string]bool, s string) bool {
	return words[strings.ToLower(strings.TrimSpace(s))]
}
