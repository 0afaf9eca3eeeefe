package assistant

import (
	"fmt"
	"strings"
	"time"

	"workflowx/src/model"
)

const (
	replyTimeLayout  = "Monday, January 02 at 03:04 PM"
	slackStampLayout = "Jan 02 15:04"
)

const (
	replyMeetingNoTime = "Sorry, I couldn't understand the date/time. Try e.g. 'Schedule meeting on March 10 at 2 PM for 2 hours'."
	replySlackNoText   = "I couldn't tell what to post in %s. Try e.g. 'send a slack message to %s saying the deploy is live'."
	replyCrmNoCreate   = "Please give the contact's name and email, e.g. 'create crm contact named Jane Doe with email jane@example.com'."
	replyCrmNoTarget   = "Please tell me which contact to update, e.g. 'update crm email for John Smith to john@new.com'."
	replyCrmNoChange   = "Please tell me what to change for %s, e.g. a new email or name."
	replyChatFallback  = "I'm sorry, I couldn't come up with a reply right now."
	replySummaryNone   = "Summary unavailable."
	noteAIGenerated    = "(Note: I wrote this message from your request, since no exact text was given.)"
	noteNoSearch       = "(Searching isn't supported for this channel, so these are unfiltered.)"
)

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func meetingTitle(slots model.MeetingSlots) string {
	if slots.TestEvent {
		return fmt.Sprintf("Test Calendar Event (%s)", plural(slots.DurationHours, "hour"))
	}
	if slots.Topic != "" {
		return capitalize(slots.Topic)
	}
	return fmt.Sprintf("Meeting scheduled by WorkflowX (%s)", plural(slots.DurationHours, "hour"))
}

func meetingReply(slots model.MeetingSlots, link string) string {
	if slots.TestEvent {
		return fmt.Sprintf("Test event scheduled for %s! Event link: %s", plural(slots.DurationHours, "hour"), link)
	}
	return fmt.Sprintf("Meeting scheduled for %s with a duration of %s! Event link: %s",
		slots.Window.Start.Format(replyTimeLayout), plural(slots.DurationHours, "hour"), link)
}

func slackHistoryReply(q model.SlackQuery, msgs []model.ChatMessage, searched bool, loc *time.Location) string {
	var b strings.Builder
	switch {
	case len(msgs) == 0 && searched:
		return fmt.Sprintf("No messages matching %q found in %s.", q.SearchTerm, q.Channel)
	case len(msgs) == 0:
		return fmt.Sprintf("No messages found in %s.", q.Channel)
	case searched:
		fmt.Fprintf(&b, "Here are the latest %s matching %q in %s:", plural(len(msgs), "message"), q.SearchTerm, q.Channel)
	default:
		fmt.Fprintf(&b, "Here are the latest %s from %s:", plural(len(msgs), "message"), q.Channel)
	}
	for _, m := range msgs {
		b.WriteString("\n- ")
		if !m.Timestamp.IsZero() {
			b.WriteString("[" + m.Timestamp.In(loc).Format(slackStampLayout) + "] ")
		}
		user := m.User
		if user == "" {
			user = "unknown"
		}
		b.WriteString(user + ": " + m.Text)
	}
	return b.String()
}

type inboxEntry struct {
	msg     model.EmailMessage
	summary string
}

func inboxReply(entries []inboxEntry) string {
	if len(entries) == 0 {
		return "Your inbox has no messages."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Here are your latest %s:", plural(len(entries), "email"))
	for i, e := range entries {
		fmt.Fprintf(&b, "\n\n%d. From: %s\n   Date: %s\n   Subject: %s\n   Summary: %s",
			i+1, e.msg.From, e.msg.Date, e.msg.Subject, e.summary)
	}
	return b.String()
}

func contactsReply(contacts []model.Contact) string {
	if len(contacts) == 0 {
		return "No CRM contacts found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Here are your latest %s:", plural(len(contacts), "CRM contact"))
	for _, c := range contacts {
		name := c.FullName()
		if name == "" {
			name = "(no name)"
		}
		fmt.Fprintf(&b, "\n- %s: %s", c.ID, name)
		if c.Email != "" {
			fmt.Fprintf(&b, " <%s>", c.Email)
		}
	}
	return b.String()
}

func describeUpdate(u model.ContactUpdate) string {
	var parts []string
	if u.FirstName != "" {
		parts = append(parts, "first name "+u.FirstName)
	}
	if u.LastName != "" {
		parts = append(parts, "last name "+u.LastName)
	}
	if u.Email != "" {
		parts = append(parts, "email "+u.Email)
	}
	return strings.Join(parts, ", ")
}

// fallbackEmail is used when no model is available to write the email
func fallbackEmail(d model.EmailDraftContext) (subject, body string) {
	subject = d.ExplicitSubject
	if subject == "" {
		subject = "Message from " + d.SenderName
	}

	greeting := "Hi,"
	if d.RecipientName != "" {
		greeting = "Hi " + d.RecipientName + ","
	}
	text := strings.TrimSpace(d.Instructions)
	if text == "" {
		text = "I wanted to reach out."
	}
	text = capitalize(text)
	if !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}
	body = fmt.Sprintf("%s\n\n%s\n\nBest regards,\n%s", greeting, text, d.SenderName)
	return subject, body
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
