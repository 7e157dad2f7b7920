// internal/store/chat.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

type ChatStore struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewChatStore(db *sqlx.DB, log logger.Logger) *ChatStore {
	return &ChatStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"store": "chat"}),
	}
}

const conversationColumns = `id, user_id, title, last_message_at, message_count,
	is_active, created_at, updated_at`

// CreateConversation starts a conversation for the user.
func (s *ChatStore) CreateConversation(ctx context.Context, conv *models.ChatConversation) error {
	now := time.Now().UTC()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	conv.LastMessageAt = now
	conv.IsActive = true

	query := `
		INSERT INTO chat_conversations (user_id, title, last_message_at,
			message_count, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, 0, TRUE, $4, $5)
		RETURNING id`

	err := s.db.QueryRowContext(ctx, query,
		conv.UserID, conv.Title, conv.LastMessageAt, conv.CreatedAt, conv.UpdatedAt,
	).Scan(&conv.ID)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}

	return nil
}

// GetConversation fetches a conversation owned by the user.
func (s *ChatStore) GetConversation(ctx context.Context, id, userID string) (*models.ChatConversation, error) {
	var conv models.ChatConversation
	query := `SELECT ` + conversationColumns + ` FROM chat_conversations
		WHERE id = $1 AND user_id = $2 AND is_active`

	err := s.db.GetContext(ctx, &conv, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewResourceNotFoundError("conversation", id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("chat.getConversation", err)
	}

	return &conv, nil
}

// ListConversations returns the user's conversations, most recent first.
func (s *ChatStore) ListConversations(ctx context.Context, userID string) ([]models.ChatConversation, error) {
	convs := []models.ChatConversation{}
	query := `SELECT ` + conversationColumns + ` FROM chat_conversations
		WHERE user_id = $1 AND is_active
		ORDER BY last_message_at DESC`

	err := s.db.SelectContext(ctx, &convs, query, userID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("chat.listConversations", err)
	}

	return convs, nil
}

// ListMessages returns a conversation's messages oldest first.
func (s *ChatStore) ListMessages(ctx context.Context, conversationID string) ([]models.ChatMessage, error) {
	msgs := []models.ChatMessage{}
	query := `SELECT id, conversation_id, sender, content, intent, created_at
		FROM chat_messages
		WHERE conversation_id = $1
		ORDER BY created_at`

	err := s.db.SelectContext(ctx, &msgs, query, conversationID)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("chat.listMessages", err)
	}

	return msgs, nil
}

// AddMessage appends a message and bumps the conversation counters in one
// transaction, so message_count and last_message_at never drift.
func (s *ChatStore) AddMessage(ctx context.Context, msg *models.ChatMessage) error {
	msg.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("chat.addMessage.begin", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO chat_messages (conversation_id, sender, content, intent, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		msg.ConversationID, msg.Sender, msg.Content, msg.Intent, msg.CreatedAt,
	).Scan(&msg.ID)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE chat_conversations
		SET message_count = message_count + 1, last_message_at = $1, updated_at = $1
		WHERE id = $2`,
		msg.CreatedAt, msg.ConversationID,
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("chat.addMessage.bump", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewQueryExecutionFailedError("chat.addMessage.commit", err)
	}

	return nil
}
