// Package intent maps normalized chat text onto the closed intent set using
// rules first, then a zero-shot model, then a generative model.
package intent

import (
	"context"
	"strings"

	"workflowx/src/llm"
	"workflowx/src/logger"
	"workflowx/src/model"
	"workflowx/src/nlp/normalize"
)

// Tier names which stage produced a decision
type Tier string

const (
	TierRule       Tier = "rule"
	TierZeroShot   Tier = "zero_shot"
	TierGenerative Tier = "generative"
	TierDefault    Tier = "default"
)

// DefaultThreshold is the minimum zero-shot score that is trusted
const DefaultThreshold = 0.5

// Decision is the classifier output; Intent is always a member of the set
type Decision struct {
	Intent     model.Intent
	Tier       Tier
	Confidence float64
}

// ZeroShot scores text against candidate labels, best first
type ZeroShot interface {
	ClassifyZeroShot(ctx context.Context, text string, labels []string) ([]model.LabelScore, error)
}

type Classifier struct {
	rules     []rule
	zeroShot  ZeroShot
	completer llm.Completer
	labels    []model.Intent
	threshold float64
	maxTokens int
}

type Option func(*Classifier)

func WithZeroShot(z ZeroShot) Option {
	return func(c *Classifier) { c.zeroShot = z }
}

func WithCompleter(comp llm.Completer) Option {
	return func(c *Classifier) { c.completer = comp }
}

// WithThreshold overrides the zero-shot acceptance score
func WithThreshold(t float64) Option {
	return func(c *Classifier) {
		if t > 0 && t < 1 {
			c.threshold = t
		}
	}
}

// WithLabels narrows the candidate labels offered to the models. Unknown
// labels are dropped; general is always kept.
func WithLabels(labels []string) Option {
	return func(c *Classifier) {
		var out []model.Intent
		hasGeneral := false
		for _, l := range labels {
			in, ok := model.ParseIntent(l)
			if !ok {
				continue
			}
			hasGeneral = hasGeneral || in == model.IntentGeneral
			out = append(out, in)
		}
		if len(out) == 0 {
			return
		}
		if !hasGeneral {
			out = append(out, model.IntentGeneral)
		}
		c.labels = out
	}
}

func WithMaxTokens(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

func New(opts ...Option) *Classifier {
	c := &Classifier{
		rules:     defaultRules,
		labels:    model.Intents(),
		threshold: DefaultThreshold,
		maxTokens: llm.ClassifyMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify never fails: model errors fall through to the next tier and the
// last resort is general. Quoted spans are payload and take no part in the
// decision unless the message is nothing but a quote.
func (c *Classifier) Classify(ctx context.Context, text string) Decision {
	if stripped := normalize.StripQuoted(text); strings.TrimSpace(stripped) != "" {
		text = stripped
	}
	if d, ok := c.byRules(text); ok {
		return d
	}
	if d, ok := c.byZeroShot(ctx, text); ok {
		return d
	}
	if d, ok := c.byGenerative(ctx, text); ok {
		return d
	}
	return Decision{Intent: model.IntentGeneral, Tier: TierDefault}
}

func (c *Classifier) byRules(text string) (Decision, bool) {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		for _, re := range r.patterns {
			if re.MatchString(lower) {
				return Decision{Intent: r.intent, Tier: TierRule, Confidence: 1}, true
			}
		}
	}
	return Decision{}, false
}

func (c *Classifier) byZeroShot(ctx context.Context, text string) (Decision, bool) {
	if c.zeroShot == nil {
		return Decision{}, false
	}
	labels := make([]string, len(c.labels))
	for i, l := range c.labels {
		labels[i] = string(l)
	}
	scores, err := c.zeroShot.ClassifyZeroShot(ctx, text, labels)
	if err != nil {
		logger.Warn().Err(err).Msg("zero-shot classification failed")
		return Decision{}, false
	}

	var best model.LabelScore
	for _, s := range scores {
		if s.Score > best.Score {
			best = s
		}
	}
	in, ok := model.ParseIntent(best.Label)
	if !ok || !c.offered(in) || best.Score <= c.threshold {
		logger.Debug().Str("label", best.Label).Float64("score", best.Score).Msg("zero-shot below threshold")
		return Decision{}, false
	}
	return Decision{Intent: in, Tier: TierZeroShot, Confidence: best.Score}, true
}

func (c *Classifier) byGenerative(ctx context.Context, text string) (Decision, bool) {
	if c.completer == nil {
		return Decision{}, false
	}
	req := llm.ClassifyPrompt(text, c.labels)
	req.MaxTokens = c.maxTokens
	out, err := c.completer.Complete(ctx, req)
	if err != nil {
		logger.Warn().Err(err).Msg("generative classification failed")
		return Decision{}, false
	}
	label := llm.ParseLabel(out)
	in, ok := model.ParseIntent(label)
	if !ok || !c.offered(in) {
		logger.Debug().Str("output", out).Msg("generative classifier returned an unknown label")
		return Decision{}, false
	}
	return Decision{Intent: in, Tier: TierGenerative}, true
}

func (c *Classifier) offered(in model.Intent) bool {
	for _, l := range c.labels {
		if l == in {
			return true
		}
	}
	return false
}
