package extract

import (
	"regexp"
	"sort"
	"strings"

	"workflowx/src/model"
)

var (
	recipientRe      = regexp.MustCompile(`(?i)\b(?:to|for|towards|with)\s+<?(` + emailExpr + `)>?`)
	namedRecipientRe = regexp.MustCompile(`\bto\s+([A-Z][a-z'\-]+(?:\s+[A-Z][a-z'\-]+)?)\s*(?:<|\(|,\s*|\s+at\s+)(` + emailExpr + `)[>)]?`)
	recipientNameRe  = regexp.MustCompile(`\bto\s+([A-Z][a-z'\-]+(?:\s+[A-Z][a-z'\-]+)?)\b`)

	// quoted subjects are cut whole; unquoted ones stop before the terminator
	subjectPatterns = []struct {
		re       *regexp.Regexp
		cutWhole bool
	}{
		{regexp.MustCompile(`(?i)\b(?:with\s+(?:the\s+|a\s+)?)?subject(?:\s+line)?\s*(?::|=|of)?\s*["“']([^"”']+)["”']`), true},
		{regexp.MustCompile(`(?i)\b(?:with\s+(?:the\s+|a\s+)?)?subject\s*:\s*([^,;\n]+?)(?:\s+(?:saying|and|body|that)\b|[,;\n]|$)`), false},
		{regexp.MustCompile(`(?i)\bwith\s+(?:the\s+|a\s+)?subject\s+([^,;\n]+?)(?:\s+(?:saying|and|that|about|telling)\b|[,;\n]|$)`), false},
	}

	senderRe = regexp.MustCompile(`\b(?:[Ff]rom|[Bb]y)\s+([A-Za-z][\w'\-]*)(?:\s+([A-Z][\w'\-]*))?`)

	emailCommandRe   = regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:can\s+you\s+|could\s+you\s+)?(?:send|write|compose|draft|shoot|drop|e-?mail)\b(?:\s+(?:out\s+)?(?:an?\s+)?(?:e-?mail|mail|message|note)\b)?`)
	emailConnectorRe = regexp.MustCompile(`(?i)^\s*(?:[,:\-]\s*)?(?:saying|that\s+says|which\s+says|telling\s+(?:them|him|her)|to\s+say|and\s+say|that|about)\b\s*`)
)

var notNames = map[string]bool{
	"the": true, "me": true, "my": true, "our": true, "your": true, "a": true, "an": true,
	"tomorrow": true, "today": true, "tonight": true, "eod": true, "end": true, "noon": true,
	"next": true, "this": true, "email": true, "mail": true, "now": true, "then": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true, "friday": true,
	"saturday": true, "sunday": true,
}

type span struct{ from, to int }

// ExtractEmail pulls recipient, subject, sender and the free-text
// instructions out of a send_email request.
func ExtractEmail(raw string) model.EmailSlots {
	var (
		slots model.EmailSlots
		cuts  []span
	)

	if m := namedRecipientRe.FindStringSubmatchIndex(raw); m != nil {
		slots.RecipientName = raw[m[2]:m[3]]
		slots.RecipientEmail = raw[m[4]:m[5]]
		cuts = append(cuts, span{m[0], m[1]})
	} else if m := recipientRe.FindStringSubmatchIndex(raw); m != nil {
		slots.RecipientEmail = raw[m[2]:m[3]]
		cuts = append(cuts, span{m[0], m[1]})
	} else if m := emailRe.FindStringIndex(raw); m != nil {
		slots.RecipientEmail = raw[m[0]:m[1]]
		cuts = append(cuts, span{m[0], m[1]})
	} else if m := recipientNameRe.FindStringSubmatchIndex(raw); m != nil && !isStopWord(notNames, raw[m[2]:m[3]]) {
		slots.RecipientName = raw[m[2]:m[3]]
		cuts = append(cuts, span{m[0], m[1]})
	}

	for _, p := range subjectPatterns {
		if m := p.re.FindStringSubmatchIndex(raw); m != nil {
			slots.Subject = strings.TrimSpace(raw[m[2]:m[3]])
			end := m[3]
			if p.cutWhole {
				end = m[1]
			}
			cuts = append(cuts, span{m[0], end})
			break
		}
	}

	for _, m := range senderRe.FindAllStringSubmatchIndex(raw, -1) {
		first := raw[m[2]:m[3]]
		if isStopWord(notNames, first) || inside(cuts, m[0]) {
			continue
		}
		name := first
		end := m[3]
		if m[4] >= 0 && !isStopWord(notNames, raw[m[4]:m[5]]) {
			name += " " + raw[m[4]:m[5]]
			end = m[5]
		}
		slots.SenderName = titleName(name)
		cuts = append(cuts, span{m[0], end})
		break
	}

	slots.Instructions = instructions(raw, cuts)
	return slots
}

func inside(spans []span, i int) bool {
	for _, s := range spans {
		if i >= s.from && i < s.to {
			return true
		}
	}
	return false
}

func instructions(raw string, cuts []span) string {
	sort.Slice(cuts, func(i, j int) bool { return cuts[i].from > cuts[j].from })
	out := raw
	last := len(raw) + 1
	for _, c := range cuts {
		if c.to > last {
			c.to = last
		}
		if c.from >= c.to {
			continue
		}
		out = out[:c.from] + " " + out[c.to:]
		last = c.from
	}
	out = emailCommandRe.ReplaceAllString(out, "")
	out = emailConnectorRe.ReplaceAllString(out, "")
	return strings.Trim(collapse(out), " ,;:-")
}
