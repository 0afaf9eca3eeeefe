// Package llm wraps the generative model behind a single completion call
// and holds the prompts the assistant sends to it.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"workflowx/src/model"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

var ErrEmptyCompletion = errors.New("model returned an empty completion")

// Request is one completion: a system prompt, optional prior turns and the
// user prompt, with per-call sampling settings.
type Request struct {
	System      string
	User        string
	History     []*schema.Message
	MaxTokens   int
	Temperature float64
}

// Completer is the generative model capability used across the assistant
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Generator runs Template -> ChatModel through a compiled eino chain
type Generator struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

func NewGenerator(ctx context.Context, cfg model.LLMConfig) (*Generator, error) {
	cm, err := NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating chat model: %w", err)
	}
	return NewGeneratorFromModel(ctx, cm)
}

// NewGeneratorFromModel compiles the completion chain around an existing model
func NewGeneratorFromModel(ctx context.Context, cm einomodel.BaseChatModel) (*Generator, error) {
	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(completionTemplate()).
		AppendChatModel(cm).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating eino chain: %w", err)
	}
	return &Generator{chain: chain}, nil
}

func completionTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(schema.FString,
		schema.SystemMessage("{system_prompt}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{user_prompt}"),
	)
}

func (g *Generator) Complete(ctx context.Context, req Request) (string, error) {
	vars := map[string]any{
		"system_prompt": req.System,
		"user_prompt":   req.User,
	}
	if len(req.History) > 0 {
		vars["history"] = req.History
	}

	var opts []einomodel.Option
	if req.MaxTokens > 0 {
		opts = append(opts, einomodel.WithMaxTokens(req.MaxTokens))
	}
	opts = append(opts, einomodel.WithTemperature(float32(req.Temperature)))

	msg, err := g.chain.Invoke(ctx, vars, compose.WithChatModelOption(opts...))
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	out := strings.TrimSpace(msg.Content)
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}
