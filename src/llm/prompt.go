package llm

import (
	"fmt"
	"strings"
	"time"

	"workflowx/src/model"
)

// Sampling settings per prompt
const (
	ClassifyMaxTokens  = 5
	SlackMaxTokens     = 60
	SlackTemperature   = 0.7
	RewriteMaxTokens   = 40
	EmailMaxTokens     = 300
	EmailTemperature   = 0.4
	SummaryMaxTokens   = 60
	SummaryTemperature = 0.3
)

// ClassifyPrompt asks for exactly one label out of the closed intent set
func ClassifyPrompt(text string, labels []model.Intent) Request {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = string(l)
	}
	return Request{
		System: "You are a classifier. Classify the user's message into exactly one of these intents: " +
			strings.Join(names, ", ") + ". Output ONLY the intent name.",
		User:        text,
		MaxTokens:   ClassifyMaxTokens,
		Temperature: 0,
	}
}

// SlackMessagePrompt drafts a short channel message from a vague request
func SlackMessagePrompt(channel, request string) Request {
	return Request{
		System: "You write short, friendly Slack messages for a workplace channel. " +
			"Return only the message text, without quotes or explanations.",
		User:        fmt.Sprintf("Write a brief Slack message for %s based on this request: %s", channel, request),
		MaxTokens:   SlackMaxTokens,
		Temperature: SlackTemperature,
	}
}

// DateRewritePrompt asks for the meeting window as START=/END= timestamps
func DateRewritePrompt(text string, ref time.Time) Request {
	return Request{
		System: "You convert meeting requests into exact local timestamps. " +
			"Reply with one line in the form START=YYYY-MM-DDThh:mm END=YYYY-MM-DDThh:mm and nothing else.",
		User: fmt.Sprintf("Now is %s (%s). Request: %s",
			ref.Format("Monday, 2006-01-02T15:04"), ref.Location(), text),
		MaxTokens:   RewriteMaxTokens,
		Temperature: 0,
	}
}

// EmailDraft is the input to email composition
type EmailDraft struct {
	RecipientName string
	SenderName    string
	Subject       string
	Instructions  string
}

// EmailComposePrompt asks for a subject line and body in a fixed layout
func EmailComposePrompt(d EmailDraft) Request {
	var b strings.Builder
	b.WriteString("Instructions: ")
	b.WriteString(d.Instructions)
	if d.RecipientName != "" {
		b.WriteString("\nRecipient: " + d.RecipientName)
	}
	if d.Subject != "" {
		b.WriteString("\nSubject (use as is): " + d.Subject)
	}
	b.WriteString("\nSign the email as: " + d.SenderName)

	return Request{
		System: "You write concise, professional emails. Respond exactly in this layout:\n" +
			"SUBJECT: <subject line>\nBODY:\n<email body>",
		User:        b.String(),
		MaxTokens:   EmailMaxTokens,
		Temperature: EmailTemperature,
	}
}

const summaryBodyLimit = 2000

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// EmailSummaryPrompt summarizes one inbox message in a sentence
func EmailSummaryPrompt(from, subject, body string) Request {
	body = truncateRunes(body, summaryBodyLimit)
	return Request{
		System:      "Summarize the email in one short sentence.",
		User:        fmt.Sprintf("From: %s\nSubject: %s\n\n%s", from, subject, body),
		MaxTokens:   SummaryMaxTokens,
		Temperature: SummaryTemperature,
	}
}

// ChatPrompt is the open-ended assistant reply; callers attach recent turns
func ChatPrompt(cfg model.LLMConfig, text string) Request {
	return Request{
		System:      cfg.SystemPrompt,
		User:        text,
		MaxTokens:   cfg.ChatMaxTokens,
		Temperature: cfg.ChatTemperature,
	}
}
