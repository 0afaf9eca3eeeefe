package normalize

import (
	"unicode"
	"unicode/utf8"
)

// Segment is a run of text that is either inside a quoted span or not
type Segment struct {
	Text   string
	Quoted bool
}

var closers = map[rune]rune{
	'"':  '"',
	'\'': '\'',
	'“':  '”',
	'‘':  '’',
	'«':  '»',
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Split cuts text into quoted and unquoted segments. A quote only opens at a
// word boundary and only closes before one, so apostrophes inside words such
// as "let's" never start a span. Quoted segments keep their quote marks.
func Split(text string) []Segment {
	var (
		segments []Segment
		start    int
		prev     rune = -1
	)
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		closer, isQuote := closers[r]
		if isQuote && (prev == -1 || !isWordRune(prev)) {
			if end := findClose(text, i+size, closer); end > 0 {
				if start < i {
					segments = append(segments, Segment{Text: text[start:i]})
				}
				segments = append(segments, Segment{Text: text[i:end], Quoted: true})
				start = end
				prev = closer
				i = end
				continue
			}
		}
		prev = r
		i += size
	}
	if start < len(text) {
		segments = append(segments, Segment{Text: text[start:]})
	}
	return segments
}

// findClose returns the byte offset just past the closing quote, or -1
func findClose(text string, from int, closer rune) int {
	first := true
	for j := from; j < len(text); {
		r, size := utf8.DecodeRuneInString(text[j:])
		if r == closer && !first {
			next := j + size
			if next >= len(text) {
				return next
			}
			nr, _ := utf8.DecodeRuneInString(text[next:])
			if !isWordRune(nr) {
				return next
			}
		}
		first = false
		j += size
	}
	return -1
}

// Quoted returns the content of the first quoted span in text, without marks
func Quoted(text string) (string, bool) {
	for _, seg := range Split(text) {
		if !seg.Quoted {
			continue
		}
		_, openSize := utf8.DecodeRuneInString(seg.Text)
		_, closeSize := utf8.DecodeLastRuneInString(seg.Text)
		return seg.Text[openSize : len(seg.Text)-closeSize], true
	}
	return "", false
}

// StripQuoted removes every quoted span from text
func StripQuoted(text string) string {
	out := make([]byte, 0, len(text))
	for _, seg := range Split(text) {
		if seg.Quoted {
			out = append(out, ' ')
			continue
		}
		out = append(out, seg.Text...)
	}
	return string(out)
}
