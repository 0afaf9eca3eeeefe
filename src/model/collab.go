package model

import "time"

// CalendarEvent is the payload handed to the calendar collaborator
type CalendarEvent struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Modifiers   MeetingModifiers
}

// EmailMessage is one inbox entry returned by the mail collaborator
type EmailMessage struct {
	ID      string
	From    string
	Subject string
	Date    string
	Snippet string
	Body    string
}

// ChatMessage is one entry of a chat channel's history
type ChatMessage struct {
	User      string
	Text      string
	Timestamp time.Time
}

// Contact is a CRM contact record
type Contact struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}

func (c Contact) FullName() string {
	return joinName(c.FirstName, c.LastName)
}

// ContactUpdate carries the fields to change; empty fields are left alone
type ContactUpdate struct {
	FirstName string
	LastName  string
	Email     string
}

func (u ContactUpdate) IsZero() bool {
	return u.FirstName == "" && u.LastName == "" && u.Email == ""
}

// Properties renders the update as CRM property names
func (u ContactUpdate) Properties() map[string]string {
	props := make(map[string]string, 3)
	if u.FirstName != "" {
		props["firstname"] = u.FirstName
	}
	if u.LastName != "" {
		props["lastname"] = u.LastName
	}
	if u.Email != "" {
		props["email"] = u.Email
	}
	return props
}
