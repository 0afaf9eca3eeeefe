// Package conversation keeps recent chat turns per session so general chat
// can answer with context.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"workflowx/src/model"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
)

const conversationPrefix = "conversation:"

type ConversationHistory struct {
	Messages []*schema.Message `json:"messages"`
}

type Repository interface {
	Load(ctx context.Context, sessionID string) (*ConversationHistory, error)
	Save(ctx context.Context, sessionID string, history *ConversationHistory) error
	AddMessages(ctx context.Context, sessionID string, messages ...*schema.Message) error
}

type RedisRepository struct {
	client   *redis.Client
	ttl      time.Duration
	maxStore int
}

// NewRedisRepository stores at most four times the configured turns per session
func NewRedisRepository(client *redis.Client, cfg model.ConversationConfig) *RedisRepository {
	return &RedisRepository{
		client:   client,
		ttl:      cfg.TTL,
		maxStore: cfg.MaxTurns * 4,
	}
}

func (r *RedisRepository) Load(ctx context.Context, sessionID string) (*ConversationHistory, error) {
	key := conversationPrefix + sessionID
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &ConversationHistory{Messages: []*schema.Message{}}, nil
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	var history ConversationHistory
	if err := sonic.UnmarshalString(data, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}

	// Refresh TTL
	r.client.Expire(ctx, key, r.ttl)
	return &history, nil
}

func (r *RedisRepository) Save(ctx context.Context, sessionID string, history *ConversationHistory) error {
	if r.maxStore > 0 {
		history.Messages = trimTail(history.Messages, r.maxStore)
	}
	data, err := sonic.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	return r.client.Set(ctx, conversationPrefix+sessionID, data, r.ttl).Err()
}

func (r *RedisRepository) AddMessages(ctx context.Context, sessionID string, messages ...*schema.Message) error {
	history, err := r.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	history.Messages = append(history.Messages, messages...)
	return r.Save(ctx, sessionID, history)
}

// MemoryRepository is an in-memory Repository for development and tests
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string][]*schema.Message
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string][]*schema.Message)}
}

func (m *MemoryRepository) Load(ctx context.Context, sessionID string) (*ConversationHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := append([]*schema.Message{}, m.sessions[sessionID]...)
	return &ConversationHistory{Messages: msgs}, nil
}

func (m *MemoryRepository) Save(ctx context.Context, sessionID string, history *ConversationHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[sessionID] = append([]*schema.Message{}, history.Messages...)
	return nil
}

func (m *MemoryRepository) AddMessages(ctx context.Context, sessionID string, messages ...*schema.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[sessionID] = append(m.sessions[sessionID], messages...)
	return nil
}
