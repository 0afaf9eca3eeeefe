package model

import "time"

// Key layout used by the Redis backed stores:
//
// dialog:{session_id}        // opaque dialog context of a pending multi-turn flow
// conversation:{session_id}  // recent chat turns used by general chat

// DialogConfig controls how long a pending dialog context is kept
type DialogConfig struct {
	TTL time.Duration `envconfig:"TTL" default:"15m" yaml:"ttl"`
}

// ConversationConfig controls the chat history kept for general chat
type ConversationConfig struct {
	TTL      time.Duration `envconfig:"TTL" default:"24h" yaml:"ttl"`
	MaxTurns int           `envconfig:"MAX_TURNS" default:"6" yaml:"max_turns"`
}

// RedisConfig points at the Redis instance backing the stores.
// An empty URL selects the in-memory stores.
type RedisConfig struct {
	URL string `envconfig:"URL" yaml:"-"`
}
