package conversation

import (
	"github.com/cloudwego/eino/schema"
)

type ContextStrategy interface {
	BuildContext(messages []*schema.Message) []*schema.Message
	GetMaxTurns() int
}

// ChatContextStrategy keeps the last N user and assistant messages
type ChatContextStrategy struct {
	maxTurns int
}

func NewChatContextStrategy(maxTurns int) *ChatContextStrategy {
	return &ChatContextStrategy{maxTurns: maxTurns}
}

func (s *ChatContextStrategy) GetMaxTurns() int {
	return s.maxTurns
}

func (s *ChatContextStrategy) BuildContext(messages []*schema.Message) []*schema.Message {
	filtered := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case schema.User, schema.Assistant:
			filtered = append(filtered, msg)
		}
	}
	return trimTail(filtered, s.maxTurns)
}

// Helper function
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 {
		return nil
	}
	if len(messages) <= maxTurns {
		return messages
	}
	return messages[len(messages)-maxTurns:]
}
