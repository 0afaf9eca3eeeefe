package conversation

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

type Service struct {
	repo     Repository
	strategy ContextStrategy
}

func NewService(repo Repository, strategy ContextStrategy) *Service {
	return &Service{repo: repo, strategy: strategy}
}

// History returns the context window for the next model call
func (s *Service) History(ctx context.Context, sessionID string) ([]*schema.Message, error) {
	history, err := s.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.strategy.BuildContext(history.Messages), nil
}

// Record appends one exchange to the session history
func (s *Service) Record(ctx context.Context, sessionID, userText, reply string) error {
	return s.repo.AddMessages(ctx, sessionID,
		schema.UserMessage(userText),
		schema.AssistantMessage(reply, nil),
	)
}
