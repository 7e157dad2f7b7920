// internal/cache/conversations_test.go
package cache

import (
	"context"
	"testing"
	"time"

	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func testConversation(id string) *models.ConversationWithMessages {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return &models.ConversationWithMessages{
		Conversation: models.ChatConversation{
			ID:            id,
			UserID:        "user-1",
			Title:         "Career advice",
			LastMessageAt: now,
			MessageCount:  2,
			IsActive:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		Messages: []models.ChatMessage{
			{ID: "msg-1", ConversationID: id, Sender: models.SenderUser, Content: "hi", CreatedAt: now},
			{ID: "msg-2", ConversationID: id, Sender: models.SenderAssistant, Content: "hello", Intent: models.IntentGeneral, CreatedAt: now},
		},
	}
}

// ==========================
// ConversationCache Tests
// ==========================

func TestConversationCache_SetAndGet(t *testing.T) {
	_, client := setupRedis(t)
	cache := NewConversationCache(client, 30*time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	conv := testConversation("conv-1")
	require.NoError(t, cache.Set(ctx, conv))

	got, err := cache.Get(ctx, "conv-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "conv-1", got.Conversation.ID)
	assert.Equal(t, "user-1", got.Conversation.UserID)
	assert.Len(t, got.Messages, 2)
	assert.Equal(t, models.SenderAssistant, got.Messages[1].Sender)
}

func TestConversationCache_MissReturnsNil(t *testing.T) {
	_, client := setupRedis(t)
	cache := NewConversationCache(client, 30*time.Minute, logger.NewTestLogger(t))

	got, err := cache.Get(context.Background(), "no-such-conv")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestConversationCache_SetAppliesTTL(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewConversationCache(client, 10*time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testConversation("conv-ttl")))
	assert.Equal(t, 10*time.Minute, mr.TTL("chat:conv:conv-ttl"))

	mr.FastForward(11 * time.Minute)

	got, err := cache.Get(ctx, "conv-ttl")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestConversationCache_Invalidate(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewConversationCache(client, 30*time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testConversation("conv-2")))
	require.NoError(t, cache.Invalidate(ctx, "conv-2"))

	assert.False(t, mr.Exists("chat:conv:conv-2"))
}

func TestConversationCache_CorruptEntryIsDropped(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewConversationCache(client, 30*time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	require.NoError(t, mr.Set("chat:conv:conv-bad", "{not valid json"))

	got, err := cache.Get(ctx, "conv-bad")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists("chat:conv:conv-bad"), "corrupt entry should be evicted")
}

// ==========================
// TokenDenylist Tests
// ==========================

func TestTokenDenylist_RevokeAndCheck(t *testing.T) {
	_, client := setupRedis(t)
	denylist := NewTokenDenylist(client, logger.NewTestLogger(t))
	ctx := context.Background()

	require.NoError(t, denylist.Revoke(ctx, "jti-1", time.Hour))

	revoked, err := denylist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = denylist.IsRevoked(ctx, "jti-other")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenDenylist_EntryExpiresWithToken(t *testing.T) {
	mr, client := setupRedis(t)
	denylist := NewTokenDenylist(client, logger.NewTestLogger(t))
	ctx := context.Background()

	require.NoError(t, denylist.Revoke(ctx, "jti-short", time.Minute))
	mr.FastForward(2 * time.Minute)

	revoked, err := denylist.IsRevoked(ctx, "jti-short")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenDenylist_ExpiredTokenNotStored(t *testing.T) {
	mr, client := setupRedis(t)
	denylist := NewTokenDenylist(client, logger.NewTestLogger(t))

	require.NoError(t, denylist.Revoke(context.Background(), "jti-expired", 0))
	assert.False(t, mr.Exists("auth:denylist:jti-expired"))
}
