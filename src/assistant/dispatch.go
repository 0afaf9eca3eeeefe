package assistant

import (
	"context"
	"errors"
	"fmt"

	"workflowx/src/dialog"
	"workflowx/src/llm"
	"workflowx/src/logger"
	"workflowx/src/metrics"
	"workflowx/src/model"
	"workflowx/src/nlp/extract"

	"github.com/cloudwego/eino/schema"
)

const (
	defaultListLimit = 5
	maxListLimit     = 20
)

// errEmptyResult stands in when a collaborator reports success without an id
var errEmptyResult = errors.New("collaborator returned an empty result")

func orEmpty(err error) error {
	if err != nil {
		return err
	}
	return errEmptyResult
}

// fail logs the upstream error and returns the fixed reply naming the target
func fail(in model.Intent, err error, text string) Reply {
	outcome := metrics.OutcomeFailed
	if err == nil {
		outcome = metrics.OutcomeUnavailable
	}
	metrics.Dispatched(string(in), outcome)
	logger.Warn().Err(err).Str("intent", string(in)).Str("outcome", outcome).Msg("action failed")
	return Reply{Text: text}
}

func success(in model.Intent, text string) Reply {
	metrics.Dispatched(string(in), metrics.OutcomeOK)
	return Reply{Text: text}
}

func needsInput(in model.Intent, text string) Reply {
	metrics.Dispatched(string(in), metrics.OutcomeNeedsInput)
	return Reply{Text: text}
}

func (a *Assistant) scheduleMeeting(ctx context.Context, raw, normalized string) Reply {
	in := model.IntentScheduleMeeting
	slots := a.meetings.Extract(ctx, raw, normalized, a.now())
	if !slots.Found {
		return needsInput(in, replyMeetingNoTime)
	}

	failText := fmt.Sprintf("Sorry, I failed to schedule the meeting for %s.", slots.Window.Start.Format(replyTimeLayout))
	if a.deps.Calendar == nil {
		return fail(in, nil, failText)
	}
	link, err := a.deps.Calendar.CreateEvent(ctx, model.CalendarEvent{
		Title:       meetingTitle(slots),
		Description: slots.Description,
		Start:       slots.Window.Start,
		End:         slots.Window.End,
		TimeZone:    a.loc.String(),
		Modifiers:   slots.Modifiers,
	})
	if err != nil || link == "" {
		return fail(in, orEmpty(err), failText)
	}
	return success(in, meetingReply(slots, link))
}

func (a *Assistant) startEmail(ctx context.Context, raw string) Reply {
	slots := extract.ExtractEmail(raw)
	if slots.SenderName == "" {
		slots.SenderName = a.cfg.Email.SenderName
	}
	step := dialog.Start(slots)
	metrics.DialogTransition(string(dialog.StateNew), string(step.State))
	return a.emailStep(ctx, step)
}

func (a *Assistant) continueEmail(ctx context.Context, draft model.EmailDraftContext, text string) Reply {
	from := dialog.StateOf(draft)
	step := dialog.Advance(draft, text)
	metrics.DialogTransition(string(from), string(step.State))
	logger.Debug().Str("state", string(step.State)).Msg("email dialog advanced")

	reply := a.emailStep(ctx, step)
	reply.Intent = model.IntentSendEmail
	return reply
}

func (a *Assistant) emailStep(ctx context.Context, step dialog.Step) Reply {
	in := model.IntentSendEmail
	switch step.State {
	case dialog.StateResolved:
		return a.sendEmail(ctx, step.Draft)
	case dialog.StateAbandoned:
		metrics.Dispatched(string(in), "abandoned")
		return Reply{Text: step.Prompt}
	}

	dc, err := dialog.Encode(step.Draft)
	if err != nil {
		return fail(in, err, "Sorry, I failed to prepare the email.")
	}
	metrics.Dispatched(string(in), metrics.OutcomeNeedsInput)
	return Reply{Text: step.Prompt, DialogContext: dc}
}

func (a *Assistant) sendEmail(ctx context.Context, d model.EmailDraftContext) Reply {
	in := model.IntentSendEmail
	failText := fmt.Sprintf("Sorry, I failed to send the email to %s.", d.RecipientEmail)
	if a.deps.Mailer == nil {
		return fail(in, nil, failText)
	}

	subject, body := a.composeEmail(ctx, d)
	if id, err := a.deps.Mailer.Send(ctx, d.RecipientEmail, subject, body); err != nil || id == "" {
		return fail(in, orEmpty(err), failText)
	}
	return success(in, fmt.Sprintf("Email sent to %s with subject %q.", d.RecipientEmail, subject))
}

func (a *Assistant) composeEmail(ctx context.Context, d model.EmailDraftContext) (string, string) {
	if a.deps.Completer == nil {
		return fallbackEmail(d)
	}
	out, err := a.deps.Completer.Complete(ctx, llm.EmailComposePrompt(llm.EmailDraft{
		RecipientName: d.RecipientName,
		SenderName:    d.SenderName,
		Subject:       d.ExplicitSubject,
		Instructions:  d.Instructions,
	}))
	if err != nil {
		logger.Warn().Err(err).Msg("email compose failed, using template")
		return fallbackEmail(d)
	}
	subject, body, found := llm.ParseEmailDraft(out)
	if !found {
		return fallbackEmail(d)
	}
	if d.ExplicitSubject != "" {
		subject = d.ExplicitSubject
	}
	return subject, body
}

func (a *Assistant) sendSlack(ctx context.Context, raw string) Reply {
	in := model.IntentSendSlack
	target := a.slack.ExtractSend(ctx, raw)
	if target.Message == "" {
		return needsInput(in, fmt.Sprintf(replySlackNoText, target.Channel, target.Channel))
	}

	failText := fmt.Sprintf("Sorry, I failed to post the message to %s.", target.Channel)
	if a.deps.ChatPoster == nil {
		return fail(in, nil, failText)
	}
	if err := a.deps.ChatPoster.PostMessage(ctx, target.Channel, target.Message); err != nil {
		return fail(in, err, failText)
	}

	text := fmt.Sprintf("Message posted to %s: %q", target.Channel, target.Message)
	if target.IsAIGenerated {
		text += "\n" + noteAIGenerated
	}
	reply := success(in, text)
	reply.AIGenerated = target.IsAIGenerated
	return reply
}

func (a *Assistant) retrieveSlack(ctx context.Context, raw string) Reply {
	in := model.IntentRetrieveSlack
	q := extract.ExtractSlackQuery(raw, a.cfg.DefaultChannel)

	failText := fmt.Sprintf("Sorry, I failed to retrieve messages from %s.", q.Channel)
	if a.deps.ChatHistory == nil {
		return fail(in, nil, failText)
	}

	search := q.SearchTerm
	unsupported := search != "" && !a.deps.ChatHistory.SupportsSearch()
	if unsupported {
		search = ""
	}
	msgs, err := a.deps.ChatHistory.GetMessages(ctx, q.Channel, q.Limit, search)
	if err != nil {
		return fail(in, err, failText)
	}

	text := slackHistoryReply(q, msgs, search != "", a.loc)
	if unsupported {
		text += "\n" + noteNoSearch
	}
	return success(in, text)
}

func (a *Assistant) retrieveEmail(ctx context.Context, raw string) Reply {
	in := model.IntentRetrieveEmail
	failText := "Sorry, I failed to retrieve your emails."
	if a.deps.Inbox == nil {
		return fail(in, nil, failText)
	}

	msgs, err := a.deps.Inbox.ListRecent(ctx, extract.ExtractLimit(raw, defaultListLimit, maxListLimit))
	if err != nil {
		return fail(in, err, failText)
	}

	entries := make([]inboxEntry, len(msgs))
	for i, m := range msgs {
		entries[i] = inboxEntry{msg: m, summary: a.summarize(ctx, m)}
	}
	return success(in, inboxReply(entries))
}

func (a *Assistant) summarize(ctx context.Context, m model.EmailMessage) string {
	if a.deps.Completer == nil {
		return replySummaryNone
	}
	body := m.Body
	if body == "" {
		body = m.Snippet
	}
	if body == "" {
		return replySummaryNone
	}
	out, err := a.deps.Completer.Complete(ctx, llm.EmailSummaryPrompt(m.From, m.Subject, body))
	if err != nil {
		logger.Warn().Err(err).Str("email_id", m.ID).Msg("email summary failed")
		return replySummaryNone
	}
	if s := llm.CleanMessage(out); s != "" {
		return s
	}
	return replySummaryNone
}

func (a *Assistant) createContact(ctx context.Context, raw string) Reply {
	in := model.IntentCreateCRM
	slots := extract.ExtractCrmCreate(raw)
	if slots.FirstName == "" && slots.Email == "" {
		return needsInput(in, replyCrmNoCreate)
	}

	label := model.Contact{FirstName: slots.FirstName, LastName: slots.LastName}.FullName()
	if label == "" {
		label = slots.Email
	}
	failText := fmt.Sprintf("Sorry, I failed to create the CRM contact %s.", label)
	if a.deps.CRM == nil {
		return fail(in, nil, failText)
	}

	id, err := a.deps.CRM.CreateContact(ctx, slots.FirstName, slots.LastName, slots.Email)
	if err != nil || id == "" {
		return fail(in, orEmpty(err), failText)
	}
	text := fmt.Sprintf("Created CRM contact %s", label)
	if slots.Email != "" && label != slots.Email {
		text += " (" + slots.Email + ")"
	}
	return success(in, text+" with ID "+id+".")
}

func (a *Assistant) updateContact(ctx context.Context, raw string) Reply {
	in := model.IntentUpdateCRM
	slots := extract.ExtractCrmUpdate(raw)
	if slots.Identifier.IsZero() {
		return needsInput(in, replyCrmNoTarget)
	}
	if slots.Update.IsZero() {
		return needsInput(in, fmt.Sprintf(replyCrmNoChange, slots.Identifier))
	}
	if a.deps.CRM == nil {
		return fail(in, nil, fmt.Sprintf("Sorry, I failed to update the CRM contact %s.", slots.Identifier))
	}

	id, found, err := a.resolveContact(ctx, slots.Identifier)
	if err != nil {
		return fail(in, err, fmt.Sprintf("Sorry, I failed to look up the CRM contact %s.", slots.Identifier))
	}
	if !found {
		metrics.Dispatched(string(in), "not_found")
		return Reply{Text: fmt.Sprintf("I couldn't find a CRM contact matching %s.", slots.Identifier)}
	}

	updated, err := a.deps.CRM.UpdateContact(ctx, id, slots.Update)
	if err != nil || updated == "" {
		return fail(in, orEmpty(err), fmt.Sprintf("Sorry, I failed to update CRM contact %s.", id))
	}
	return success(in, fmt.Sprintf("Updated CRM contact %s: %s.", updated, describeUpdate(slots.Update)))
}

// resolveContact turns an identifier into a record id; lookups are exact
func (a *Assistant) resolveContact(ctx context.Context, ident model.CrmIdentifier) (string, bool, error) {
	switch {
	case ident.ID != "":
		return ident.ID, true, nil
	case ident.Email != "":
		return a.deps.CRM.FindByEmail(ctx, ident.Email)
	default:
		return a.deps.CRM.FindByName(ctx, ident.FirstName, ident.LastName)
	}
}

func (a *Assistant) listContacts(ctx context.Context, raw string) Reply {
	in := model.IntentRetrieveCRM
	failText := "Sorry, I failed to retrieve your CRM contacts."
	if a.deps.CRM == nil {
		return fail(in, nil, failText)
	}
	contacts, err := a.deps.CRM.ListContacts(ctx, extract.ExtractLimit(raw, defaultListLimit, maxListLimit))
	if err != nil {
		return fail(in, err, failText)
	}
	return success(in, contactsReply(contacts))
}

func (a *Assistant) chat(ctx context.Context, raw string, history []*schema.Message) Reply {
	in := model.IntentGeneral
	if a.deps.Completer == nil {
		return fail(in, nil, replyChatFallback)
	}
	req := llm.ChatPrompt(a.cfg.LLM, raw)
	req.History = history
	out, err := a.deps.Completer.Complete(ctx, req)
	if err != nil {
		return fail(in, err, replyChatFallback)
	}
	reply := success(in, out)
	reply.AIGenerated = true
	return reply
}
