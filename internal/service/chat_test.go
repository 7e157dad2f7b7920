// internal/service/chat_test.go
package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/mlclient"
	"jobmate-backend/internal/models"
	"jobmate-backend/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeAssistant struct {
	reply *mlclient.ChatResponse
	err   error
	calls int
}

func (f *fakeAssistant) Chat(ctx context.Context, req *mlclient.ChatRequest) (*mlclient.ChatResponse, error) {
	f.calls++
	return f.reply, f.err
}

type fakeConvCache struct {
	entries     map[string]*models.ConversationWithMessages
	invalidated []string
	getErr      error
}

func newFakeConvCache() *fakeConvCache {
	return &fakeConvCache{entries: make(map[string]*models.ConversationWithMessages)}
}

func (f *fakeConvCache) Get(ctx context.Context, conversationID string) (*models.ConversationWithMessages, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.entries[conversationID], nil
}

func (f *fakeConvCache) Set(ctx context.Context, conv *models.ConversationWithMessages) error {
	f.entries[conv.Conversation.ID] = conv
	return nil
}

func (f *fakeConvCache) Invalidate(ctx context.Context, conversationID string) error {
	f.invalidated = append(f.invalidated, conversationID)
	delete(f.entries, conversationID)
	return nil
}

func newChatService(t *testing.T, db *sqlx.DB, cache ConversationCacher, assistant ChatAssistant) *ChatService {
	t.Helper()
	log := logger.NewTestLogger(t)
	return NewChatService(store.NewChatStore(db, log), cache, assistant, log)
}

func expectConversationFetch(mock sqlmock.Sqlmock, id, userID string) {
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM chat_conversations").
		WithArgs(id, userID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "title", "last_message_at", "message_count",
			"is_active", "created_at", "updated_at",
		}).AddRow(id, userID, "Career advice", now, 2, true, now, now))
}

func expectMessageInsert(mock sqlmock.Sqlmock, msgID string) {
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO chat_messages").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(msgID))
	mock.ExpectExec("UPDATE chat_conversations").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

// ==========================
// SendMessage Tests
// ==========================

func TestChatService_SendMessage(t *testing.T) {
	db, mock := setupMockDB(t)
	cache := newFakeConvCache()
	assistant := &fakeAssistant{reply: &mlclient.ChatResponse{
		Response: "You look like a strong fit for backend roles.",
		Intent:   models.IntentJobMatch,
	}}
	svc := newChatService(t, db, cache, assistant)

	expectConversationFetch(mock, "conv-1", "user-1")
	expectMessageInsert(mock, "msg-user")
	expectMessageInsert(mock, "msg-reply")

	turn, err := svc.SendMessage(context.Background(), "user-1", "conv-1", "what jobs fit me?")
	require.NoError(t, err)

	assert.Equal(t, "what jobs fit me?", turn.UserMessage.Content)
	assert.Equal(t, models.SenderUser, turn.UserMessage.Sender)
	assert.Equal(t, "You look like a strong fit for backend roles.", turn.Reply.Content)
	assert.Equal(t, models.IntentJobMatch, turn.Reply.Intent)
	assert.False(t, turn.Degraded)
	assert.Equal(t, []string{"conv-1"}, cache.invalidated, "a new message must evict the cached conversation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatService_SendMessage_FallbackWhenAssistantDown(t *testing.T) {
	db, mock := setupMockDB(t)
	cache := newFakeConvCache()
	assistant := &fakeAssistant{err: errors.New("ml service unavailable")}
	svc := newChatService(t, db, cache, assistant)

	expectConversationFetch(mock, "conv-1", "user-1")
	expectMessageInsert(mock, "msg-user")
	expectMessageInsert(mock, "msg-reply")

	turn, err := svc.SendMessage(context.Background(), "user-1", "conv-1", "hello?")
	require.NoError(t, err, "an unreachable assistant degrades, it does not fail the request")

	assert.True(t, turn.Degraded)
	assert.Equal(t, models.IntentFallback, turn.Reply.Intent)
	assert.Contains(t, turn.Reply.Content, "trouble reaching the assistant")
	assert.NoError(t, mock.ExpectationsWereMet(), "both messages persist even in the fallback path")
}

func TestChatService_SendMessage_StartsNewConversation(t *testing.T) {
	db, mock := setupMockDB(t)
	cache := newFakeConvCache()
	assistant := &fakeAssistant{reply: &mlclient.ChatResponse{Response: "Hi!", Intent: models.IntentGeneral}}
	svc := newChatService(t, db, cache, assistant)

	mock.ExpectQuery("INSERT INTO chat_conversations").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("conv-new"))
	expectMessageInsert(mock, "msg-user")
	expectMessageInsert(mock, "msg-reply")

	turn, err := svc.SendMessage(context.Background(), "user-1", "", "hello")
	require.NoError(t, err)
	assert.Equal(t, "conv-new", turn.Conversation.ID)
	assert.Equal(t, "hello", turn.Conversation.Title, "new conversations take their title from the opening message")
}

func TestChatService_SendMessage_ForeignConversationRejected(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := newChatService(t, db, newFakeConvCache(), &fakeAssistant{})

	mock.ExpectQuery("SELECT (.+) FROM chat_conversations").
		WithArgs("conv-other", "user-1").
		WillReturnError(sql.ErrNoRows)

	_, err := svc.SendMessage(context.Background(), "user-1", "conv-other", "hi")
	assert.Error(t, err)
}

// ==========================
// GetConversation Tests
// ==========================

func TestChatService_GetConversation_CacheHit(t *testing.T) {
	db, mock := setupMockDB(t)
	cache := newFakeConvCache()
	cache.entries["conv-1"] = &models.ConversationWithMessages{
		Conversation: models.ChatConversation{ID: "conv-1", UserID: "user-1"},
	}
	svc := newChatService(t, db, cache, &fakeAssistant{})

	got, err := svc.GetConversation(context.Background(), "user-1", "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", got.Conversation.ID)
	assert.NoError(t, mock.ExpectationsWereMet(), "a cache hit must not touch the database")
}

func TestChatService_GetConversation_CachedForeignConversationHidden(t *testing.T) {
	db, _ := setupMockDB(t)
	cache := newFakeConvCache()
	cache.entries["conv-1"] = &models.ConversationWithMessages{
		Conversation: models.ChatConversation{ID: "conv-1", UserID: "someone-else"},
	}
	svc := newChatService(t, db, cache, &fakeAssistant{})

	_, err := svc.GetConversation(context.Background(), "user-1", "conv-1")
	assert.Error(t, err, "cached entries still enforce ownership")
}

func TestChatService_GetConversation_MissFillsCache(t *testing.T) {
	db, mock := setupMockDB(t)
	cache := newFakeConvCache()
	svc := newChatService(t, db, cache, &fakeAssistant{})

	expectConversationFetch(mock, "conv-1", "user-1")
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM chat_messages").
		WithArgs("conv-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "conversation_id", "sender", "content", "intent", "created_at",
		}).AddRow("msg-1", "conv-1", "user", "hi", "", now).
			AddRow("msg-2", "conv-1", "assistant", "hello", "general", now))

	got, err := svc.GetConversation(context.Background(), "user-1", "conv-1")
	require.NoError(t, err)
	assert.Len(t, got.Messages, 2)
	assert.NotNil(t, cache.entries["conv-1"], "a read miss must refill the cache")
}

func TestChatService_GetConversation_CacheErrorDegradesToDB(t *testing.T) {
	db, mock := setupMockDB(t)
	cache := newFakeConvCache()
	cache.getErr = errors.New("redis down")
	svc := newChatService(t, db, cache, &fakeAssistant{})

	expectConversationFetch(mock, "conv-1", "user-1")
	mock.ExpectQuery("SELECT (.+) FROM chat_messages").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "conversation_id", "sender", "content", "intent", "created_at",
		}))

	_, err := svc.GetConversation(context.Background(), "user-1", "conv-1")
	assert.NoError(t, err, "a broken cache degrades to a direct read")
}

// ==========================
// Title Tests
// ==========================

func TestTruncateTitle(t *testing.T) {
	assert.Equal(t, "short", truncateTitle("short", 60))

	long := strings.Repeat("a", 80)
	got := truncateTitle(long, 60)
	assert.Equal(t, 60, len([]rune(got)))
	assert.Equal(t, "…", string([]rune(got)[59]))
}
