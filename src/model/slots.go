package model

import "time"

// TimeWindow is a concrete meeting interval in the configured zone
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

type MeetingType string

const (
	MeetingCall      MeetingType = "call"
	MeetingVideo     MeetingType = "video"
	MeetingInPerson  MeetingType = "in_person"
	MeetingInterview MeetingType = "interview"
	MeetingOneOnOne  MeetingType = "1on1"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

// MeetingModifiers is the optional bag attached to a scheduled event
type MeetingModifiers struct {
	Type      MeetingType `json:"type,omitempty"`
	Attendees []string    `json:"attendees,omitempty"`
	Priority  Priority    `json:"priority,omitempty"`
}

func (m MeetingModifiers) IsZero() bool {
	return m.Type == "" && len(m.Attendees) == 0 && m.Priority == ""
}

// MeetingSlots is what the meeting extractor pulls out of a request
type MeetingSlots struct {
	Window        TimeWindow
	Found         bool
	DurationHours int
	Modifiers     MeetingModifiers
	Description   string
	// Topic is set only when the description came from an explicit phrase
	Topic string
	// TestEvent marks the "test calendar" shortcut
	TestEvent bool
}

// EmailSlots is what the email extractor pulls out of a single message
type EmailSlots struct {
	RecipientEmail string
	RecipientName  string
	SenderName     string
	Subject        string
	Instructions   string
}

// WaitingFor names the slot a pending email draft still needs
type WaitingFor string

const (
	WaitingForNothing        WaitingFor = ""
	WaitingForRecipientEmail WaitingFor = "recipient_email"
	WaitingForSenderName     WaitingFor = "sender_name"
)

// EmailDraftContext is the state carried between turns of the send_email flow
type EmailDraftContext struct {
	RecipientEmail  string     `json:"recipient_email,omitempty"`
	RecipientName   string     `json:"recipient_name,omitempty"`
	SenderName      string     `json:"sender_name,omitempty"`
	Instructions    string     `json:"instructions"`
	ExplicitSubject string     `json:"explicit_subject,omitempty"`
	WaitingFor      WaitingFor `json:"waiting_for,omitempty"`
}

// SlackTarget is the destination and content of an outgoing chat message
type SlackTarget struct {
	Channel       string
	Message       string
	IsAIGenerated bool
	IsQuoted      bool
}

// SlackQuery selects messages to read back from a channel
type SlackQuery struct {
	Channel    string
	Limit      int
	SearchTerm string
}

// CrmIdentifier locates an existing contact. Only one form is expected to be set.
type CrmIdentifier struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

func (c CrmIdentifier) IsZero() bool {
	return c.ID == "" && c.Email == "" && c.FirstName == "" && c.LastName == ""
}

func (c CrmIdentifier) FullName() string {
	return joinName(c.FirstName, c.LastName)
}

// String renders the identifier the way a user typed it
func (c CrmIdentifier) String() string {
	switch {
	case c.ID != "":
		return "ID " + c.ID
	case c.Email != "":
		return c.Email
	default:
		return c.FullName()
	}
}

type CrmCreateSlots struct {
	FirstName string
	LastName  string
	Email     string
}

type CrmUpdateSlots struct {
	Identifier CrmIdentifier
	Update     ContactUpdate
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
