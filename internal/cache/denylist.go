// internal/cache/denylist.go
package cache

import (
	"context"
	"fmt"
	"time"

	"jobmate-backend/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const denylistKeyPrefix = "auth:denylist:"

// TokenDenylist marks logged-out token IDs in Redis until their natural
// expiry, so a revoked bearer token cannot be replayed.
type TokenDenylist struct {
	redis  *redis.Client
	logger logger.Logger
}

func NewTokenDenylist(client *redis.Client, log logger.Logger) *TokenDenylist {
	return &TokenDenylist{
		redis:  client,
		logger: log.WithFields(map[string]interface{}{"cache": "denylist"}),
	}
}

// Revoke records the token ID for the remainder of the token's lifetime.
func (d *TokenDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.redis.Set(ctx, denylistKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("denylist set: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token ID has been revoked.
func (d *TokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.redis.Exists(ctx, denylistKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("denylist lookup: %w", err)
	}
	return n > 0, nil
}
