// internal/cache/conversations.go

// Package cache holds the Redis-backed caches: conversation detail blobs and
// the revoked-token denylist.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const conversationKeyPrefix = "chat:conv:"

// ConversationCache keeps conversation detail payloads in Redis so repeated
// chat reads skip the two-table fetch. Entries are written on read misses
// and deleted whenever a message lands (delete-then-refill).
type ConversationCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewConversationCache(client *redis.Client, ttl time.Duration, log logger.Logger) *ConversationCache {
	return &ConversationCache{
		redis:  client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"cache": "conversations"}),
	}
}

// Get returns the cached conversation, or nil on a miss. Corrupt entries are
// dropped and reported as a miss.
func (c *ConversationCache) Get(ctx context.Context, conversationID string) (*models.ConversationWithMessages, error) {
	key := conversationKeyPrefix + conversationID

	raw, err := c.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("conversation cache get: %w", err)
	}

	var conv models.ConversationWithMessages
	if err := json.Unmarshal([]byte(raw), &conv); err != nil {
		c.logger.Warn("dropping corrupt cache entry", map[string]interface{}{
			"conversationId": conversationID,
			"error":          err.Error(),
		})
		c.redis.Del(ctx, key)
		return nil, nil
	}

	return &conv, nil
}

// Set stores the conversation payload under the configured TTL.
func (c *ConversationCache) Set(ctx context.Context, conv *models.ConversationWithMessages) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("conversation cache marshal: %w", err)
	}

	key := conversationKeyPrefix + conv.Conversation.ID
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("conversation cache set: %w", err)
	}

	return nil
}

// Invalidate evicts the conversation after a write.
func (c *ConversationCache) Invalidate(ctx context.Context, conversationID string) error {
	if err := c.redis.Del(ctx, conversationKeyPrefix+conversationID).Err(); err != nil {
		return fmt.Errorf("conversation cache invalidate: %w", err)
	}
	return nil
}
