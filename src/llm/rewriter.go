package llm

import (
	"context"
	"time"
)

// DateRewriter restates a meeting request as START=/END= timestamps
type DateRewriter struct {
	completer Completer
}

func NewDateRewriter(c Completer) *DateRewriter {
	return &DateRewriter{completer: c}
}

func (r *DateRewriter) Rewrite(ctx context.Context, text string, ref time.Time) (string, error) {
	return r.completer.Complete(ctx, DateRewritePrompt(text, ref))
}
