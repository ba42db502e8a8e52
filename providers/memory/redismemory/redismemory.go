package redismemory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/advigo/advigo/providers/ai"
	"github.com/advigo/advigo/providers/memory"
)

// defaultKeyPrefix namespaces conversation keys so an advigo deployment can
// share a Redis database with other applications.
const defaultKeyPrefix = "advigo:memory:"

// RedisStore implements [memory.Store] on a Redis list per conversation.
// Messages are stored as JSON entries appended with RPUSH and read back with
// LRANGE, preserving insertion order. The client may be a *redis.Client,
// *redis.ClusterClient, or any other redis.Cmdable implementation.
type RedisStore struct {
	client    redis.Cmdable
	keyPrefix string
	ttl       time.Duration
}

// Compile-time check: RedisStore must implement memory.Store.
var _ memory.Store = (*RedisStore)(nil)

// Option configures optional RedisStore behavior.
type Option func(*RedisStore)

// WithKeyPrefix overrides the default key prefix ("advigo:memory:").
func WithKeyPrefix(prefix string) Option {
	return func(s *RedisStore) {
		s.keyPrefix = prefix
	}
}

// WithTTL sets an expiry on each conversation key, refreshed on every append.
// Conversations idle for longer than the TTL are evicted by Redis. A zero or
// negative duration disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// New creates a Redis-backed conversation store on an existing client.
func New(client redis.Cmdable, opts ...Option) *RedisStore {
	store := &RedisStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// storedMessage is the JSON shape of a single list entry.
type storedMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// key returns the Redis key holding the conversation's message list.
func (s *RedisStore) key(conversationID string) string {
	return s.keyPrefix + conversationID
}

// Messages returns all messages for the conversation in insertion order.
// Returns an empty non-nil slice when the conversation has no history.
func (s *RedisStore) Messages(ctx context.Context, conversationID string) ([]ai.Message, error) {
	entries, err := s.client.LRange(ctx, s.key(conversationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redismemory: messages: %w", err)
	}

	messages := make([]ai.Message, 0, len(entries))
	for _, entry := range entries {
		message, err := decodeMessage(entry)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// Append persists the given messages at the end of the conversation list.
// All entries land in a single RPUSH, so a user/assistant pair cannot be
// split by a failure. Appending an empty slice is a no-op.
func (s *RedisStore) Append(ctx context.Context, conversationID string, messages []ai.Message) error {
	if len(messages) == 0 {
		return nil
	}

	entries, err := encodeMessages(messages)
	if err != nil {
		return err
	}

	key := s.key(conversationID)
	if err := s.client.RPush(ctx, key, entries...).Err(); err != nil {
		return fmt.Errorf("redismemory: append: %w", err)
	}

	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("redismemory: refresh ttl: %w", err)
		}
	}
	return nil
}

// Clear deletes the conversation's message list.
func (s *RedisStore) Clear(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, s.key(conversationID)).Err(); err != nil {
		return fmt.Errorf("redismemory: clear: %w", err)
	}
	return nil
}

// Count returns the number of messages stored for the conversation.
func (s *RedisStore) Count(ctx context.Context, conversationID string) (int, error) {
	length, err := s.client.LLen(ctx, s.key(conversationID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redismemory: count: %w", err)
	}
	return int(length), nil
}

// encodeMessages serializes messages into RPUSH-ready list entries.
func encodeMessages(messages []ai.Message) ([]any, error) {
	entries := make([]any, 0, len(messages))
	for _, message := range messages {
		data, err := json.Marshal(storedMessage{
			Role:    string(message.Role),
			Content: message.Content,
		})
		if err != nil {
			return nil, fmt.Errorf("redismemory: encode message: %w", err)
		}
		entries = append(entries, string(data))
	}
	return entries, nil
}

// decodeMessage deserializes a single list entry back into an ai.Message.
func decodeMessage(entry string) (ai.Message, error) {
	var stored storedMessage
	if err := json.Unmarshal([]byte(entry), &stored); err != nil {
		return ai.Message{}, fmt.Errorf("redismemory: decode message: %w", err)
	}
	return ai.Message{Role: ai.MessageRole(stored.Role), Content: stored.Content}, nil
}
