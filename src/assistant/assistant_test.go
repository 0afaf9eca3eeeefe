package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"workflowx/src/llm"
	"workflowx/src/model"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	fn    func(req llm.Request) (string, error)
	calls []llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.calls = append(f.calls, req)
	return f.fn(req)
}

type fakeCalendar struct {
	events []model.CalendarEvent
	link   string
	err    error
}

func (f *fakeCalendar) CreateEvent(_ context.Context, ev model.CalendarEvent) (string, error) {
	f.events = append(f.events, ev)
	return f.link, f.err
}

type sentMail struct{ to, subject, body string }

type fakeMailer struct {
	sent []sentMail
	noID bool
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) (string, error) {
	f.sent = append(f.sent, sentMail{to, subject, body})
	if f.noID {
		return "", f.err
	}
	return "msg-1", f.err
}

type fakeInbox struct {
	msgs  []model.EmailMessage
	limit int
}

func (f *fakeInbox) ListRecent(_ context.Context, limit int) ([]model.EmailMessage, error) {
	f.limit = limit
	return f.msgs, nil
}

type post struct{ channel, text string }

type fakeSlack struct {
	posts    []post
	msgs     []model.ChatMessage
	search   bool
	gotQuery string
	err      error
}

func (f *fakeSlack) PostMessage(_ context.Context, channel, text string) error {
	f.posts = append(f.posts, post{channel, text})
	return f.err
}

func (f *fakeSlack) GetMessages(_ context.Context, channel string, limit int, search string) ([]model.ChatMessage, error) {
	f.gotQuery = search
	return f.msgs, f.err
}

func (f *fakeSlack) SupportsSearch() bool { return f.search }

type fakeCRM struct {
	byName  map[string]string
	byEmail map[string]string
	updates map[string]model.ContactUpdate
	created []model.Contact
}

func newFakeCRM() *fakeCRM {
	return &fakeCRM{
		byName:  map[string]string{"John Smith": "501"},
		byEmail: map[string]string{"ana@x.com": "502"},
		updates: map[string]model.ContactUpdate{},
	}
}

func (f *fakeCRM) ListContacts(_ context.Context, limit int) ([]model.Contact, error) {
	return []model.Contact{{ID: "501", FirstName: "John", LastName: "Smith", Email: "john@old.com"}}, nil
}

func (f *fakeCRM) FindByEmail(_ context.Context, email string) (string, bool, error) {
	id, ok := f.byEmail[email]
	return id, ok, nil
}

func (f *fakeCRM) FindByName(_ context.Context, first, last string) (string, bool, error) {
	id, ok := f.byName[strings.TrimSpace(first+" "+last)]
	return id, ok, nil
}

func (f *fakeCRM) CreateContact(_ context.Context, first, last, email string) (string, error) {
	f.created = append(f.created, model.Contact{FirstName: first, LastName: last, Email: email})
	return "777", nil
}

func (f *fakeCRM) UpdateContact(_ context.Context, id string, u model.ContactUpdate) (string, error) {
	f.updates[id] = u
	return id, nil
}

var testLoc = mustLoad("America/Chicago")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// Monday 2025-03-03 09:00 local
var testNow = time.Date(2025, 3, 3, 9, 0, 0, 0, testLoc)

func testConfig() Config {
	return Config{
		Classifier: model.ClassifierConfig{ZeroShotThreshold: 0.5, MaxTokens: 5},
		Resolver:   model.ResolverConfig{TimeZone: "America/Chicago", DefaultHour: 15},
		LLM:        model.LLMConfig{SystemPrompt: "You are a helpful AI assistant for WorkflowX.", ChatMaxTokens: 100, ChatTemperature: 0.7},
	}
}

func newTestAssistant(t *testing.T, cfg Config, deps Deps) *Assistant {
	t.Helper()
	a, err := New(cfg, deps, WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	return a
}

func TestNewRejectsUnknownTimeZone(t *testing.T) {
	cfg := testConfig()
	cfg.Resolver.TimeZone = "Mars/Olympus"
	_, err := New(cfg, Deps{})
	assert.Error(t, err)
}

func TestScheduleMeeting(t *testing.T) {
	cal := &fakeCalendar{link: "https://cal/e1"}
	a := newTestAssistant(t, testConfig(), Deps{Calendar: cal})

	reply, err := a.HandleMessage(context.Background(), "schedule meeting next wednesday at 2pm for 2 hours", nil)
	require.NoError(t, err)

	assert.Equal(t, model.IntentScheduleMeeting, reply.Intent)
	assert.Equal(t, "Meeting scheduled for Wednesday, March 05 at 02:00 PM with a duration of 2 hours! Event link: https://cal/e1", reply.Text)
	assert.Nil(t, reply.DialogContext)

	require.Len(t, cal.events, 1)
	ev := cal.events[0]
	assert.True(t, time.Date(2025, 3, 5, 14, 0, 0, 0, testLoc).Equal(ev.Start))
	assert.True(t, time.Date(2025, 3, 5, 16, 0, 0, 0, testLoc).Equal(ev.End))
	assert.Equal(t, "America/Chicago", ev.TimeZone)
	assert.Equal(t, "Meeting scheduled by WorkflowX (2 hours)", ev.Title)
}

func TestScheduleMeetingUsesTopicAsTitle(t *testing.T) {
	cal := &fakeCalendar{link: "L"}
	a := newTestAssistant(t, testConfig(), Deps{Calendar: cal})

	_, err := a.HandleMessage(context.Background(), "schedule a meeting tomorrow at 10am to discuss the Q3 budget", nil)
	require.NoError(t, err)
	require.Len(t, cal.events, 1)
	assert.Equal(t, "The Q3 budget", cal.events[0].Title)
}

func TestScheduleMeetingWithoutDate(t *testing.T) {
	cal := &fakeCalendar{link: "L"}
	a := newTestAssistant(t, testConfig(), Deps{Calendar: cal})

	reply, err := a.HandleMessage(context.Background(), "let's meet sometime", nil)
	require.NoError(t, err)
	assert.Equal(t, model.IntentScheduleMeeting, reply.Intent)
	assert.Equal(t, replyMeetingNoTime, reply.Text)
	assert.Empty(t, cal.events)
}

func TestScheduleMeetingFailures(t *testing.T) {
	cal := &fakeCalendar{err: errors.New("403 forbidden")}
	a := newTestAssistant(t, testConfig(), Deps{Calendar: cal})

	reply, err := a.HandleMessage(context.Background(), "schedule meeting next wednesday at 2pm", nil)
	require.NoError(t, err)
	assert.Equal(t, "Sorry, I failed to schedule the meeting for Wednesday, March 05 at 02:00 PM.", reply.Text)
	assert.NotContains(t, reply.Text, "403")

	a = newTestAssistant(t, testConfig(), Deps{})
	reply, err = a.HandleMessage(context.Background(), "schedule meeting next wednesday at 2pm", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply.Text, "Sorry, I failed to schedule"))
}

func TestTestCalendarEvent(t *testing.T) {
	cal := &fakeCalendar{link: "L"}
	a := newTestAssistant(t, testConfig(), Deps{Calendar: cal})

	reply, err := a.HandleMessage(context.Background(), "create a test calendar event for 2 hours", nil)
	require.NoError(t, err)
	assert.Equal(t, "Test event scheduled for 2 hours! Event link: L", reply.Text)
	require.Len(t, cal.events, 1)
	assert.Equal(t, "Test Calendar Event (2 hours)", cal.events[0].Title)
	assert.True(t, time.Date(2025, 3, 6, 14, 0, 0, 0, testLoc).Equal(cal.events[0].Start))
}

func TestSendEmailSingleTurn(t *testing.T) {
	mailer := &fakeMailer{}
	cfg := testConfig()
	cfg.Email.SenderName = "Sam"
	a := newTestAssistant(t, cfg, Deps{Mailer: mailer})

	reply, err := a.HandleMessage(context.Background(), "send email to jane.doe@example.com saying the report is ready", nil)
	require.NoError(t, err)

	assert.Equal(t, model.IntentSendEmail, reply.Intent)
	assert.Nil(t, reply.DialogContext)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "jane.doe@example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].body, "The report is ready.")
	assert.Contains(t, mailer.sent[0].body, "Sam")
	assert.Equal(t, `Email sent to jane.doe@example.com with subject "Message from Sam".`, reply.Text)
}

func TestSendEmailDialogRoundTrip(t *testing.T) {
	mailer := &fakeMailer{}
	a := newTestAssistant(t, testConfig(), Deps{Mailer: mailer})
	ctx := context.Background()

	reply, err := a.HandleMessage(ctx, "send an email about the quarterly report", nil)
	require.NoError(t, err)
	require.NotNil(t, reply.DialogContext)
	assert.Equal(t, "recipient_email", reply.DialogContext["waiting_for"])
	assert.Empty(t, mailer.sent)

	// an invalid answer keeps the question open
	reply, err = a.HandleMessage(ctx, "bob at example dot com", reply.DialogContext)
	require.NoError(t, err)
	require.NotNil(t, reply.DialogContext)
	assert.Equal(t, "recipient_email", reply.DialogContext["waiting_for"])
	assert.Equal(t, model.IntentSendEmail, reply.Intent)

	reply, err = a.HandleMessage(ctx, "bob@example.com", reply.DialogContext)
	require.NoError(t, err)
	require.NotNil(t, reply.DialogContext)
	assert.Equal(t, "sender_name", reply.DialogContext["waiting_for"])
	assert.Empty(t, mailer.sent)

	reply, err = a.HandleMessage(ctx, "from Sam Lee", reply.DialogContext)
	require.NoError(t, err)
	assert.Nil(t, reply.DialogContext)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "bob@example.com", mailer.sent[0].to)
	assert.Equal(t, "Message from Sam Lee", mailer.sent[0].subject)
	assert.Contains(t, mailer.sent[0].body, "The quarterly report.")
}

func TestSendEmailCancel(t *testing.T) {
	mailer := &fakeMailer{}
	a := newTestAssistant(t, testConfig(), Deps{Mailer: mailer})

	reply, err := a.HandleMessage(context.Background(), "send an email about lunch", nil)
	require.NoError(t, err)
	reply, err = a.HandleMessage(context.Background(), "never mind", reply.DialogContext)
	require.NoError(t, err)

	assert.Nil(t, reply.DialogContext)
	assert.Empty(t, mailer.sent)
}

func TestSendEmailComposedByModel(t *testing.T) {
	mailer := &fakeMailer{}
	comp := &fakeCompleter{fn: func(req llm.Request) (string, error) {
		return "SUBJECT: Offsite update\nBODY:\nHi Bob,\n\nThe offsite moved to Friday.\n\nSam", nil
	}}
	cfg := testConfig()
	cfg.Email.SenderName = "Sam"
	a := newTestAssistant(t, cfg, Deps{Mailer: mailer, Completer: comp})

	reply, err := a.HandleMessage(context.Background(), "email bob@x.com and tell him the offsite moved to friday", nil)
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Offsite update", mailer.sent[0].subject)
	assert.Contains(t, mailer.sent[0].body, "The offsite moved to Friday.")
	assert.Contains(t, reply.Text, `"Offsite update"`)
}

func TestSendEmailFailure(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("invalid_grant")}
	cfg := testConfig()
	cfg.Email.SenderName = "Sam"
	a := newTestAssistant(t, cfg, Deps{Mailer: mailer})

	reply, err := a.HandleMessage(context.Background(), "send email to bob@x.com saying hi there", nil)
	require.NoError(t, err)
	assert.Equal(t, "Sorry, I failed to send the email to bob@x.com.", reply.Text)
}

func TestSendEmailWithoutMessageID(t *testing.T) {
	mailer := &fakeMailer{noID: true}
	cfg := testConfig()
	cfg.Email.SenderName = "Sam"
	a := newTestAssistant(t, cfg, Deps{Mailer: mailer})

	reply, err := a.HandleMessage(context.Background(), "send email to bob@x.com saying hi there", nil)
	require.NoError(t, err)
	assert.Len(t, mailer.sent, 1)
	assert.Equal(t, "Sorry, I failed to send the email to bob@x.com.", reply.Text)
}

func TestInvalidDialogContextIsDiscarded(t *testing.T) {
	cal := &fakeCalendar{link: "L"}
	a := newTestAssistant(t, testConfig(), Deps{Calendar: cal})

	reply, err := a.HandleMessage(context.Background(), "schedule meeting tomorrow at 3pm",
		map[string]any{"flow": "unknown", "waiting_for": "recipient_email"})
	require.NoError(t, err)
	assert.Equal(t, model.IntentScheduleMeeting, reply.Intent)
	assert.Len(t, cal.events, 1)
}

func TestSendSlackQuoted(t *testing.T) {
	slack := &fakeSlack{}
	a := newTestAssistant(t, testConfig(), Deps{ChatPoster: slack})

	reply, err := a.HandleMessage(context.Background(), "send a slack message to #eng saying 'deploy is live'", nil)
	require.NoError(t, err)

	assert.Equal(t, model.IntentSendSlack, reply.Intent)
	assert.False(t, reply.AIGenerated)
	require.Len(t, slack.posts, 1)
	assert.Equal(t, post{"#eng", "deploy is live"}, slack.posts[0])
	assert.Equal(t, `Message posted to #eng: "deploy is live"`, reply.Text)
}

func TestSendSlackQuotedPayloadNamingOtherActions(t *testing.T) {
	tests := []struct {
		text    string
		channel string
		message string
	}{
		{"send a slack message to #eng saying 'please check your emails'", "#eng", "please check your emails"},
		{"post to slack 'get the crm contacts updated'", "#general", "get the crm contacts updated"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			slack := &fakeSlack{}
			inbox := &fakeInbox{}
			crm := newFakeCRM()
			cfg := testConfig()
			cfg.DefaultChannel = "#general"
			a := newTestAssistant(t, cfg, Deps{ChatPoster: slack, Inbox: inbox, CRM: crm})

			reply, err := a.HandleMessage(context.Background(), tt.text, nil)
			require.NoError(t, err)

			assert.Equal(t, model.IntentSendSlack, reply.Intent)
			require.Len(t, slack.posts, 1)
			assert.Equal(t, post{tt.channel, tt.message}, slack.posts[0])
			assert.Zero(t, inbox.limit)
		})
	}
}

func TestSendSlackDraftedByModel(t *testing.T) {
	slack := &fakeSlack{}
	comp := &fakeCompleter{fn: func(req llm.Request) (string, error) {
		return "Hey team, quick reminder about standup!", nil
	}}
	a := newTestAssistant(t, testConfig(), Deps{ChatPoster: slack, Completer: comp})

	reply, err := a.HandleMessage(context.Background(), "send a slack message to #eng", nil)
	require.NoError(t, err)

	assert.True(t, reply.AIGenerated)
	assert.Contains(t, reply.Text, noteAIGenerated)
	require.Len(t, slack.posts, 1)
	assert.Equal(t, "Hey team, quick reminder about standup!", slack.posts[0].text)
}

func TestSendSlackWithoutMessage(t *testing.T) {
	slack := &fakeSlack{}
	a := newTestAssistant(t, testConfig(), Deps{ChatPoster: slack})

	reply, err := a.HandleMessage(context.Background(), "send a slack message to #eng", nil)
	require.NoError(t, err)
	assert.Empty(t, slack.posts)
	assert.Contains(t, reply.Text, "I couldn't tell what to post in #eng")
}

func TestRetrieveSlackWithoutSearchSupport(t *testing.T) {
	slack := &fakeSlack{msgs: []model.ChatMessage{
		{User: "U1", Text: "outage resolved", Timestamp: time.Date(2025, 3, 3, 14, 5, 0, 0, time.UTC)},
		{User: "U2", Text: "lunch?"},
	}}
	a := newTestAssistant(t, testConfig(), Deps{ChatHistory: slack})

	reply, err := a.HandleMessage(context.Background(), "show slack messages about the outage in #ops", nil)
	require.NoError(t, err)

	assert.Equal(t, model.IntentRetrieveSlack, reply.Intent)
	assert.Empty(t, slack.gotQuery)
	assert.Contains(t, reply.Text, "Here are the latest 2 messages from #ops:")
	assert.Contains(t, reply.Text, "- [Mar 03 08:05] U1: outage resolved")
	assert.Contains(t, reply.Text, noteNoSearch)
}

func TestRetrieveSlackWithSearch(t *testing.T) {
	slack := &fakeSlack{search: true}
	a := newTestAssistant(t, testConfig(), Deps{ChatHistory: slack})

	reply, err := a.HandleMessage(context.Background(), "show slack messages about the outage in #ops", nil)
	require.NoError(t, err)
	assert.Equal(t, "the outage", slack.gotQuery)
	assert.Equal(t, `No messages matching "the outage" found in #ops.`, reply.Text)
}

func TestRetrieveEmail(t *testing.T) {
	inbox := &fakeInbox{msgs: []model.EmailMessage{
		{ID: "a", From: "cfo@x.com", Subject: "Q3", Date: "Mon, 3 Mar 2025", Body: "Numbers attached."},
		{ID: "b", From: "hr@x.com", Subject: "Benefits", Date: "Sun, 2 Mar 2025", Body: "Enrollment closes Friday."},
	}}
	comp := &fakeCompleter{fn: func(req llm.Request) (string, error) {
		if strings.Contains(req.User, "Benefits") {
			return "", errors.New("rate limited")
		}
		return "The CFO shared Q3 numbers.", nil
	}}
	a := newTestAssistant(t, testConfig(), Deps{Inbox: inbox, Completer: comp})

	reply, err := a.HandleMessage(context.Background(), "check my 2 latest emails", nil)
	require.NoError(t, err)

	assert.Equal(t, model.IntentRetrieveEmail, reply.Intent)
	assert.Equal(t, 2, inbox.limit)
	assert.Contains(t, reply.Text, "Here are your latest 2 emails:")
	assert.Contains(t, reply.Text, "1. From: cfo@x.com")
	assert.Contains(t, reply.Text, "Summary: The CFO shared Q3 numbers.")
	assert.Contains(t, reply.Text, "Summary: "+replySummaryNone)
}

func TestCreateContact(t *testing.T) {
	crm := newFakeCRM()
	a := newTestAssistant(t, testConfig(), Deps{CRM: crm})

	reply, err := a.HandleMessage(context.Background(), "create crm contact named jane doe with email jane@x.com", nil)
	require.NoError(t, err)

	assert.Equal(t, model.IntentCreateCRM, reply.Intent)
	require.Len(t, crm.created, 1)
	assert.Equal(t, model.Contact{FirstName: "Jane", LastName: "Doe", Email: "jane@x.com"}, crm.created[0])
	assert.Equal(t, "Created CRM contact Jane Doe (jane@x.com) with ID 777.", reply.Text)
}

func TestUpdateContactByName(t *testing.T) {
	crm := newFakeCRM()
	a := newTestAssistant(t, testConfig(), Deps{CRM: crm})

	reply, err := a.HandleMessage(context.Background(), "update crm email for John Smith to john@new.com", nil)
	require.NoError(t, err)

	assert.Equal(t, model.IntentUpdateCRM, reply.Intent)
	assert.Equal(t, model.ContactUpdate{Email: "john@new.com"}, crm.updates["501"])
	assert.Equal(t, "Updated CRM contact 501: email john@new.com.", reply.Text)
}

func TestUpdateContactNotFound(t *testing.T) {
	crm := newFakeCRM()
	a := newTestAssistant(t, testConfig(), Deps{CRM: crm})

	reply, err := a.HandleMessage(context.Background(), "update crm email for Jane Roe to jane@new.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "I couldn't find a CRM contact matching Jane Roe.", reply.Text)
	assert.Empty(t, crm.updates)
}

func TestRetrieveContacts(t *testing.T) {
	a := newTestAssistant(t, testConfig(), Deps{CRM: newFakeCRM()})

	reply, err := a.HandleMessage(context.Background(), "show my crm contacts", nil)
	require.NoError(t, err)
	assert.Equal(t, model.IntentRetrieveCRM, reply.Intent)
	assert.Equal(t, "Here are your latest 1 CRM contact:\n- 501: John Smith <john@old.com>", reply.Text)
}

func TestGeneralChat(t *testing.T) {
	comp := &fakeCompleter{fn: func(req llm.Request) (string, error) {
		return "Hi! How can I help?", nil
	}}
	a := newTestAssistant(t, testConfig(), Deps{Completer: comp})
	history := []*schema.Message{schema.UserMessage("hi"), schema.AssistantMessage("hello", nil)}

	reply, err := a.HandleMessage(context.Background(), "how are you today?", nil, WithHistory(history))
	require.NoError(t, err)

	assert.Equal(t, model.IntentGeneral, reply.Intent)
	assert.Equal(t, "Hi! How can I help?", reply.Text)
	assert.True(t, reply.AIGenerated)
	require.Len(t, comp.calls, 1)
	assert.Equal(t, "You are a helpful AI assistant for WorkflowX.", comp.calls[0].System)
	assert.Equal(t, 100, comp.calls[0].MaxTokens)
	assert.Len(t, comp.calls[0].History, 2)
}

func TestGeneralChatUsesGenerativeTierFirst(t *testing.T) {
	comp := &fakeCompleter{fn: func(req llm.Request) (string, error) {
		if req.MaxTokens == llm.ClassifyMaxTokens {
			return "general", nil
		}
		return "Sure.", nil
	}}
	cfg := testConfig()
	cfg.Classifier.GenerativeEnabled = true
	a := newTestAssistant(t, cfg, Deps{Completer: comp})

	reply, err := a.HandleMessage(context.Background(), "what is the capital of France", nil)
	require.NoError(t, err)
	assert.Equal(t, "Sure.", reply.Text)
	assert.Len(t, comp.calls, 2)
}

func TestGeneralChatWithoutModel(t *testing.T) {
	a := newTestAssistant(t, testConfig(), Deps{})
	reply, err := a.HandleMessage(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, replyChatFallback, reply.Text)
}

func TestHandleMessageCancelledContext(t *testing.T) {
	a := newTestAssistant(t, testConfig(), Deps{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.HandleMessage(ctx, "hello", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
