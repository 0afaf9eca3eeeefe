// Package storage keeps pending dialog contexts between turns, keyed by
// session id. It lives outside the core: the assistant itself is stateless.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workflowx/src/model"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const dialogPrefix = "dialog:"

// DialogStore persists the opaque context of a pending dialog
type DialogStore interface {
	// Load returns nil when nothing is stored or the entry expired
	Load(ctx context.Context, sessionID string) (map[string]any, error)
	Save(ctx context.Context, sessionID string, dialogCtx map[string]any) error
	Delete(ctx context.Context, sessionID string) error
}

// Connect opens and pings a Redis client from the configured URL
func Connect(ctx context.Context, cfg model.RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis url is required")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RedisDialogStore implements DialogStore on Redis
type RedisDialogStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDialogStore(client *redis.Client, cfg model.DialogConfig) *RedisDialogStore {
	return &RedisDialogStore{client: client, ttl: cfg.TTL}
}

func (r *RedisDialogStore) key(sessionID string) string {
	return dialogPrefix + sessionID
}

// Load reads the context and extends its TTL
func (r *RedisDialogStore) Load(ctx context.Context, sessionID string) (map[string]any, error) {
	s, err := r.client.Do(ctx, "GETEX", r.key(sessionID), "EX", int64(r.ttl.Seconds())).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to GETEX dialog: %w", err)
	}
	if s == "" {
		return nil, nil
	}

	var out map[string]any
	if err := sonic.UnmarshalString(s, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dialog: %w", err)
	}
	return out, nil
}

// Save stores the context; a nil context deletes the entry
func (r *RedisDialogStore) Save(ctx context.Context, sessionID string, dialogCtx map[string]any) error {
	if dialogCtx == nil {
		return r.Delete(ctx, sessionID)
	}
	data, err := sonic.Marshal(dialogCtx)
	if err != nil {
		return fmt.Errorf("failed to marshal dialog: %w", err)
	}
	if err := r.client.Set(ctx, r.key(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set dialog: %w", err)
	}
	return nil
}

func (r *RedisDialogStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete dialog: %w", err)
	}
	return nil
}

// Ping tests Redis connection
func (r *RedisDialogStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
