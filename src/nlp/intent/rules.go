package intent

import (
	"regexp"

	"workflowx/src/model"
)

// rule is one entry of the ordered rule table. An intent may appear more than
// once so that weak signals (a bare weekday, a bare address) rank below the
// explicit command phrases of other intents.
type rule struct {
	intent   model.Intent
	patterns []*regexp.Regexp
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

const emailAddr = `[\w.%+\-]+@[\w.\-]+\.[a-z]{2,}`

// defaultRules is evaluated top to bottom against lower-cased text;
// CRM intents are checked before the generic email and slack ones.
var defaultRules = []rule{
	{model.IntentCreateCRM, compile(
		`\b(?:create|add|make)\s+(?:a\s+)?(?:new\s+)?(?:crm\s+|hubspot\s+)?contact\b`,
		`\bnew\s+(?:crm|hubspot)\s+contact\b`,
		`\b(?:create|add)\b.*\b(?:to|in|into)\s+(?:the\s+)?(?:crm|hubspot)\b`,
		`\bcreate\s+(?:a\s+)?crm\b`,
	)},
	{model.IntentUpdateCRM, compile(
		`\bupdate\s+(?:the\s+)?(?:crm|hubspot)\b`,
		`\b(?:update|change|modify|edit)\b.*\bcontact\b`,
		`\b(?:update|change|modify|edit)\b.*\b(?:in|on)\s+(?:the\s+)?(?:crm|hubspot)\b`,
	)},
	{model.IntentRetrieveCRM, compile(
		`\bretrieve\s+(?:the\s+)?crm\b`,
		`\b(?:get|show|list|retrieve|fetch|view|find|look\s+up)\b.*\b(?:crm|hubspot|contacts)\b`,
		`\bcrm\s+contacts\b`,
	)},
	{model.IntentRetrieveEmail, compile(
		`\bretrieve\s+(?:my\s+)?emails?\b`,
		`\b(?:get|show|read|fetch|check|list|summarize)\b.*\b(?:inbox|emails)\b`,
		`\b(?:latest|recent|unread|new)\s+emails\b`,
		`\bwhat(?:'s|\s+is)\s+in\s+my\s+inbox\b`,
	)},
	{model.IntentRetrieveSlack, compile(
		`\bretrieve\s+slack\b`,
		`\b(?:get|show|read|fetch|check|list|retrieve|summarize)\b.*\bslack\b.*\bmessages?\b`,
		`\b(?:get|show|read|fetch|check|list|retrieve)\b.*\b(?:messages?|history)\b.*\b(?:in|from|on)\s+#[\w\-]+`,
		`\bwhat(?:'s|\s+is)\s+(?:new\s+|happening\s+)?(?:in|on)\s+(?:#[\w\-]+|slack)\b`,
	)},
	{model.IntentSendSlack, compile(
		`\bsend\s+slack\b`,
		`\b(?:send|post|write|drop)\b.*\bslack\b`,
		`\bslack\b.*\b(?:saying|tell|ask|announce)\b`,
		`\b(?:send|post|write|message)\b.*\b(?:to|in|on)\s+(?:the\s+)?#[\w\-]+`,
		`\b(?:tell|ask|notify|announce\s+to)\s+#[\w\-]+`,
	)},
	{model.IntentScheduleMeeting, compile(
		`\b(?:schedule|book|set\s+up|arrange|organize|plan)\b.*\b(?:meeting|call|sync|appointment|interview|1on1|one[- ]on[- ]one|event)\b`,
		`\btest\s+calendar\b`,
		`\b(?:add|put)\b.*\b(?:to|on|in)\s+(?:my\s+)?calendar\b`,
	)},
	{model.IntentSendEmail, compile(
		`\bsend\s+email\b`,
		`\b(?:send|write|compose|draft|email)\b.*\b(?:e-?mail|mail|message)\b`,
		`\b(?:email|mail)\s+(?:to\s+)?` + emailAddr,
		`\breply\s+to\b.*\bemail\b`,
	)},
	{model.IntentScheduleMeeting, compile(
		`\b(?:meeting|call|sync|appointment)\b.*\b(?:tomorrow|today|next|at\s+\d|on\s+(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday))\b`,
		`\bmeet\s+(?:with\s+)?\w+.*\b(?:tomorrow|today|next|at\s+\d)\b`,
		`\b(?:let'?s|can\s+we|could\s+we|shall\s+we)\s+meet\b`,
		`\b(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`,
	)},
	{model.IntentSendEmail, compile(
		emailAddr,
	)},
}
