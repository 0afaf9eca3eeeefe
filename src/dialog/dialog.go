// Package dialog runs the multi-turn send_email flow. The state lives in an
// opaque map that the caller stores between turns and hands back unchanged.
package dialog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"workflowx/src/model"
	"workflowx/src/nlp/extract"

	"github.com/bytedance/sonic"
)

// State of an email draft
type State string

const (
	StateNew                    State = "NEW"
	StateAwaitingRecipientEmail State = "AWAITING_RECIPIENT_EMAIL"
	StateAwaitingSenderName     State = "AWAITING_SENDER_NAME"
	StateResolved               State = "RESOLVED"
	StateAbandoned              State = "ABANDONED"
)

// Context map keys that identify a flow
const (
	keyFlow    = "flow"
	keyVersion = "version"
	flowEmail  = "send_email"
	version    = 1
)

var ErrInvalidContext = errors.New("invalid dialog context")

const (
	PromptRecipientEmail = "Who should I send this email to? Please provide their email address."
	PromptInvalidEmail   = "That doesn't look like a valid email address. Please reply with just the recipient's address, e.g. jane@example.com."
	PromptSenderName     = "What name should I sign the email with?"
	ReplyCancelled       = "Okay, I've cancelled that email."
)

// Step is the result of one transition
type Step struct {
	Draft  model.EmailDraftContext
	State  State
	Prompt string
}

// Done reports whether the flow left the conversation
func (s Step) Done() bool {
	return s.State == StateResolved || s.State == StateAbandoned
}

// StateOf derives the state from the pending slot
func StateOf(d model.EmailDraftContext) State {
	switch d.WaitingFor {
	case model.WaitingForRecipientEmail:
		return StateAwaitingRecipientEmail
	case model.WaitingForSenderName:
		return StateAwaitingSenderName
	}
	if extract.ValidEmail(d.RecipientEmail) && d.SenderName != "" {
		return StateResolved
	}
	return StateNew
}

// Start leaves NEW using the slots of the first message
func Start(slots model.EmailSlots) Step {
	draft := model.EmailDraftContext{
		RecipientName:   slots.RecipientName,
		SenderName:      strings.TrimSpace(slots.SenderName),
		Instructions:    slots.Instructions,
		ExplicitSubject: slots.Subject,
	}
	if extract.ValidEmail(slots.RecipientEmail) {
		draft.RecipientEmail = strings.TrimSpace(slots.RecipientEmail)
	}
	return next(draft)
}

var cancelRe = regexp.MustCompile(`(?i)^\s*(?:cancel|never\s*mind|nevermind|stop|forget\s+it|abort)\s*[.!]?\s*$`)

var fromPrefix = regexp.MustCompile(`(?i)^\s*from\s+`)

// Advance consumes the whole message as the answer to the pending question.
// The message is never re-classified.
func Advance(draft model.EmailDraftContext, message string) Step {
	if cancelRe.MatchString(message) {
		draft.WaitingFor = model.WaitingForNothing
		return Step{Draft: draft, State: StateAbandoned, Prompt: ReplyCancelled}
	}

	switch draft.WaitingFor {
	case model.WaitingForRecipientEmail:
		addr := strings.TrimSpace(message)
		if !extract.ValidEmail(addr) {
			return Step{Draft: draft, State: StateAwaitingRecipientEmail, Prompt: PromptInvalidEmail}
		}
		draft.RecipientEmail = addr
		return next(draft)

	case model.WaitingForSenderName:
		name := strings.TrimSpace(fromPrefix.ReplaceAllString(message, ""))
		if name == "" {
			return Step{Draft: draft, State: StateAwaitingSenderName, Prompt: PromptSenderName}
		}
		draft.SenderName = name
		return next(draft)
	}

	return next(draft)
}

func next(draft model.EmailDraftContext) Step {
	switch {
	case draft.RecipientEmail == "":
		draft.WaitingFor = model.WaitingForRecipientEmail
		return Step{Draft: draft, State: StateAwaitingRecipientEmail, Prompt: PromptRecipientEmail}
	case draft.SenderName == "":
		draft.WaitingFor = model.WaitingForSenderName
		return Step{Draft: draft, State: StateAwaitingSenderName, Prompt: PromptSenderName}
	default:
		draft.WaitingFor = model.WaitingForNothing
		return Step{Draft: draft, State: StateResolved}
	}
}

// Encode renders a pending draft as the opaque context map
func Encode(d model.EmailDraftContext) (map[string]any, error) {
	raw, err := sonic.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal dialog context: %w", err)
	}
	out := map[string]any{}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal dialog context: %w", err)
	}
	out[keyFlow] = flowEmail
	out[keyVersion] = version
	return out, nil
}

// Decode reads a context map produced by Encode. A map with no flow key or a
// draft that is not waiting on anything is rejected.
func Decode(m map[string]any) (model.EmailDraftContext, error) {
	var d model.EmailDraftContext
	if flow, _ := m[keyFlow].(string); flow != flowEmail {
		return d, fmt.Errorf("%w: unknown flow %q", ErrInvalidContext, flow)
	}
	raw, err := sonic.Marshal(m)
	if err != nil {
		return d, fmt.Errorf("%w: %v", ErrInvalidContext, err)
	}
	if err := sonic.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("%w: %v", ErrInvalidContext, err)
	}
	if d.WaitingFor != model.WaitingForRecipientEmail && d.WaitingFor != model.WaitingForSenderName {
		return d, fmt.Errorf("%w: waiting_for %q", ErrInvalidContext, d.WaitingFor)
	}
	return d, nil
}
