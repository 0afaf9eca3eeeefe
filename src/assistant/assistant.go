// Package assistant is the single entry point of the core: it takes one chat
// message plus the carried dialog context and returns the reply.
package assistant

import (
	"context"
	"fmt"
	"time"

	"workflowx/src/dialog"
	"workflowx/src/llm"
	"workflowx/src/logger"
	"workflowx/src/metrics"
	"workflowx/src/model"
	"workflowx/src/nlp/datetime"
	"workflowx/src/nlp/extract"
	"workflowx/src/nlp/intent"
	"workflowx/src/nlp/normalize"

	"github.com/cloudwego/eino/schema"
)

// Capabilities of the external collaborators. Any of them may be nil, in
// which case the matching action replies with a failure.

type Calendar interface {
	CreateEvent(ctx context.Context, ev model.CalendarEvent) (link string, err error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) (id string, err error)
}

type Inbox interface {
	ListRecent(ctx context.Context, limit int) ([]model.EmailMessage, error)
}

type ChatPoster interface {
	PostMessage(ctx context.Context, channel, text string) error
}

type ChatHistory interface {
	GetMessages(ctx context.Context, channel string, limit int, search string) ([]model.ChatMessage, error)
	SupportsSearch() bool
}

type CRM interface {
	ListContacts(ctx context.Context, limit int) ([]model.Contact, error)
	FindByEmail(ctx context.Context, email string) (id string, found bool, err error)
	FindByName(ctx context.Context, first, last string) (id string, found bool, err error)
	CreateContact(ctx context.Context, first, last, email string) (id string, err error)
	UpdateContact(ctx context.Context, id string, update model.ContactUpdate) (string, error)
}

// Deps are the injected capabilities. The caller owns their lifecycle.
type Deps struct {
	Completer   llm.Completer
	ZeroShot    intent.ZeroShot
	Calendar    Calendar
	Mailer      Mailer
	Inbox       Inbox
	ChatPoster  ChatPoster
	ChatHistory ChatHistory
	CRM         CRM
}

type Config struct {
	Classifier     model.ClassifierConfig
	Resolver       model.ResolverConfig
	LLM            model.LLMConfig
	Email          model.EmailConfig
	DefaultChannel string
}

// Reply is the outcome of one turn
type Reply struct {
	Text string
	// DialogContext is nil when no question is outstanding
	DialogContext map[string]any
	Intent        model.Intent
	AIGenerated   bool
}

type Assistant struct {
	deps       Deps
	cfg        Config
	loc        *time.Location
	classifier *intent.Classifier
	resolver   *datetime.Resolver
	meetings   *extract.MeetingExtractor
	slack      *extract.SlackExtractor
	now        func() time.Time
}

type Option func(*Assistant)

// WithClock replaces time.Now as the reference time source
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) { a.now = now }
}

func New(cfg Config, deps Deps, opts ...Option) (*Assistant, error) {
	loc, err := time.LoadLocation(cfg.Resolver.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", cfg.Resolver.TimeZone, err)
	}
	if cfg.DefaultChannel == "" {
		cfg.DefaultChannel = extract.DefaultChannel
	}

	copts := []intent.Option{
		intent.WithThreshold(cfg.Classifier.ZeroShotThreshold),
		intent.WithMaxTokens(cfg.Classifier.MaxTokens),
		intent.WithLabels(cfg.Classifier.Labels),
	}
	if deps.ZeroShot != nil {
		copts = append(copts, intent.WithZeroShot(deps.ZeroShot))
	}
	if deps.Completer != nil && cfg.Classifier.GenerativeEnabled {
		copts = append(copts, intent.WithCompleter(deps.Completer))
	}

	ropts := []datetime.Option{datetime.WithDefaultHour(cfg.Resolver.DefaultHour)}
	if deps.Completer != nil && cfg.Resolver.RewriterEnabled {
		ropts = append(ropts, datetime.WithRewriter(llm.NewDateRewriter(deps.Completer)))
	}
	resolver := datetime.NewResolver(loc, ropts...)

	a := &Assistant{
		deps:       deps,
		cfg:        cfg,
		loc:        loc,
		classifier: intent.New(copts...),
		resolver:   resolver,
		meetings:   extract.NewMeetingExtractor(resolver),
		slack:      extract.NewSlackExtractor(deps.Completer, cfg.DefaultChannel),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

type callOptions struct {
	history []*schema.Message
}

type CallOption func(*callOptions)

// WithHistory supplies recent chat turns for the general conversation reply
func WithHistory(msgs []*schema.Message) CallOption {
	return func(o *callOptions) { o.history = msgs }
}

// HandleMessage runs one turn. User-level failures come back as reply text;
// the error is only set when ctx is already done.
func (a *Assistant) HandleMessage(ctx context.Context, text string, dialogCtx map[string]any, opts ...CallOption) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	var call callOptions
	for _, opt := range opts {
		opt(&call)
	}

	if dialogCtx != nil {
		draft, err := dialog.Decode(dialogCtx)
		if err == nil {
			return a.continueEmail(ctx, draft, text), nil
		}
		logger.Warn().Err(err).Msg("discarding dialog context")
	}

	normalized := normalize.Normalize(text)
	decision := a.classifier.Classify(ctx, normalized)
	metrics.IntentClassified(string(decision.Intent), string(decision.Tier))
	logger.Debug().
		Str("intent", string(decision.Intent)).
		Str("tier", string(decision.Tier)).
		Float64("confidence", decision.Confidence).
		Msg("message classified")

	reply := a.dispatch(ctx, decision.Intent, text, normalized, call)
	reply.Intent = decision.Intent
	return reply, nil
}

func (a *Assistant) dispatch(ctx context.Context, in model.Intent, raw, normalized string, call callOptions) Reply {
	switch in {
	case model.IntentScheduleMeeting:
		return a.scheduleMeeting(ctx, raw, normalized)
	case model.IntentSendEmail:
		return a.startEmail(ctx, raw)
	case model.IntentSendSlack:
		return a.sendSlack(ctx, raw)
	case model.IntentRetrieveSlack:
		return a.retrieveSlack(ctx, raw)
	case model.IntentRetrieveEmail:
		return a.retrieveEmail(ctx, raw)
	case model.IntentCreateCRM:
		return a.createContact(ctx, raw)
	case model.IntentUpdateCRM:
		return a.updateContact(ctx, raw)
	case model.IntentRetrieveCRM:
		return a.listContacts(ctx, raw)
	default:
		return a.chat(ctx, raw, call.history)
	}
}
