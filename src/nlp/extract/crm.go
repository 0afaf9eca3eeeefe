package extract

import (
	"regexp"
	"strings"

	"workflowx/src/model"
	"workflowx/src/nlp/normalize"
)

const nameWord = `([A-Za-z][A-Za-z'\-]*)`

var (
	namedRe        = regexp.MustCompile(`(?i)\b(?:named|called|for)\s+` + nameWord + `(?:\s+` + nameWord + `)?`)
	labeledEmailRe = regexp.MustCompile(`(?i)\be-?mail(?:\s+address)?(?:\s+(?:is|of))?\s*[:=]?\s*(` + emailExpr + `)`)

	// update forms, most specific first
	nameByEmailRe = regexp.MustCompile(`(?i)\b(?:update|change|set|rename)\s+(?:the\s+)?(?:crm\s+|hubspot\s+)?(?:contact\s+)?(?:first\s+|last\s+)?name\s+(?:for|of)\s+(` + emailExpr + `)\s+to\s+` + nameWord + `(?:\s+` + nameWord + `)?`)
	emailByNameRe = regexp.MustCompile(`(?i)\b(?:update|change|set)\s+(?:the\s+)?(?:crm\s+|hubspot\s+)?(?:contact\s+)?e-?mail\s+(?:address\s+)?(?:for|of)\s+` + nameWord + `(?:\s+` + nameWord + `)?\s+to\s+(` + emailExpr + `)`)

	contactIDRe = regexp.MustCompile(`(?i)\b(?:id|contact)\s*[#:]?\s*(\d{2,})\b`)
	bareIDRe    = regexp.MustCompile(`\b(\d{3,})\b`)
	firstNameRe = regexp.MustCompile(`(?i)\bfirst\s*name\s+(?:to\s+)?` + nameWord)
	lastNameRe  = regexp.MustCompile(`(?i)\blast\s*name\s+(?:to\s+)?` + nameWord)
	fullNameRe  = regexp.MustCompile(`(?i)\bname\b.*?\bto\s+` + nameWord + `(?:\s+` + nameWord + `)?\s*[.!]?\s*$`)
)

var notContactNames = map[string]bool{
	"the": true, "a": true, "an": true, "contact": true, "crm": true, "hubspot": true,
	"email": true, "with": true, "and": true, "to": true, "id": true, "me": true,
}

// ExtractCrmCreate reads "named First Last" and a labeled or bare address
func ExtractCrmCreate(raw string) model.CrmCreateSlots {
	var slots model.CrmCreateSlots
	for _, m := range namedRe.FindAllStringSubmatch(raw, -1) {
		if isStopWord(notContactNames, m[1]) {
			continue
		}
		slots.FirstName = titleWord(m[1])
		if m[2] != "" && !isStopWord(notContactNames, m[2]) {
			slots.LastName = titleWord(m[2])
		}
		break
	}
	if m := labeledEmailRe.FindStringSubmatch(raw); m != nil {
		slots.Email = m[1]
	} else if m := emailRe.FindString(raw); m != "" {
		slots.Email = m
	}
	return slots
}

// ExtractCrmUpdate finds which contact to change and the new values
func ExtractCrmUpdate(raw string) model.CrmUpdateSlots {
	var slots model.CrmUpdateSlots

	if m := nameByEmailRe.FindStringSubmatch(raw); m != nil {
		slots.Identifier.Email = m[1]
		if strings.Contains(strings.ToLower(m[0]), "last name") {
			slots.Update.LastName = titleWord(m[2])
			return slots
		}
		slots.Update.FirstName = titleWord(m[2])
		if m[3] != "" {
			slots.Update.LastName = titleWord(m[3])
		}
		return slots
	}

	if m := emailByNameRe.FindStringSubmatch(raw); m != nil {
		slots.Identifier.FirstName = titleWord(m[1])
		slots.Identifier.LastName = titleWord(m[2])
		slots.Update.Email = m[3]
		return slots
	}

	emails := emailRe.FindAllString(raw, -1)
	if m := contactIDRe.FindStringSubmatch(raw); m != nil {
		slots.Identifier.ID = m[1]
	} else if m := bareIDRe.FindStringSubmatch(raw); m != nil && len(emails) <= 1 {
		slots.Identifier.ID = m[1]
	}

	switch {
	case slots.Identifier.ID != "" && len(emails) > 0:
		slots.Update.Email = emails[len(emails)-1]
	case len(emails) >= 2:
		slots.Identifier.Email = emails[0]
		slots.Update.Email = emails[1]
	case len(emails) == 1 && slots.Identifier.ID == "":
		slots.Identifier.Email = emails[0]
	}

	if slots.Identifier.IsZero() {
		if quoted, ok := normalize.Quoted(raw); ok {
			parts := strings.Fields(quoted)
			if len(parts) > 0 {
				slots.Identifier.FirstName = titleWord(parts[0])
			}
			if len(parts) > 1 {
				slots.Identifier.LastName = titleName(strings.Join(parts[1:], " "))
			}
		}
	}

	if m := firstNameRe.FindStringSubmatch(raw); m != nil {
		slots.Update.FirstName = titleWord(m[1])
	}
	if m := lastNameRe.FindStringSubmatch(raw); m != nil {
		slots.Update.LastName = titleWord(m[1])
	}
	if slots.Update.FirstName == "" && slots.Update.LastName == "" {
		if m := fullNameRe.FindStringSubmatch(raw); m != nil && !isStopWord(notContactNames, m[1]) {
			slots.Update.FirstName = titleWord(m[1])
			if m[2] != "" {
				slots.Update.LastName = titleWord(m[2])
			}
		}
	}
	return slots
}
