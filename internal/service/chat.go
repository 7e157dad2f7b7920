// internal/service/chat.go
package service

import (
	"context"
	"unicode/utf8"

	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/mlclient"
	"jobmate-backend/internal/models"
	"jobmate-backend/internal/store"
)

// fallbackMessage is returned when the ML service stays unreachable after
// the retry budget. The chat request itself still succeeds.
const fallbackMessage = "I'm having trouble reaching the assistant right now. " +
	"Please try again in a few minutes."

// ChatAssistant is the ML chat surface. Satisfied by mlclient.Client.
type ChatAssistant interface {
	Chat(ctx context.Context, req *mlclient.ChatRequest) (*mlclient.ChatResponse, error)
}

// ConversationCacher is the Redis cache for conversation detail payloads.
type ConversationCacher interface {
	Get(ctx context.Context, conversationID string) (*models.ConversationWithMessages, error)
	Set(ctx context.Context, conv *models.ConversationWithMessages) error
	Invalidate(ctx context.Context, conversationID string) error
}

// ChatTurn is one completed chatbot exchange.
type ChatTurn struct {
	Conversation *models.ChatConversation `json:"conversation"`
	UserMessage  models.ChatMessage       `json:"userMessage"`
	Reply        models.ChatMessage       `json:"reply"`
	Degraded     bool                     `json:"degraded"`
}

type ChatService struct {
	chats     *store.ChatStore
	cache     ConversationCacher
	assistant ChatAssistant
	logger    logger.Logger
}

func NewChatService(chats *store.ChatStore, cache ConversationCacher, assistant ChatAssistant, log logger.Logger) *ChatService {
	return &ChatService{
		chats:     chats,
		cache:     cache,
		assistant: assistant,
		logger:    log.WithFields(map[string]interface{}{"service": "chat"}),
	}
}

// SendMessage runs one chatbot turn: persist the user message, forward it to
// the ML service, persist the reply. When the service is down the assistant
// answers with a static fallback instead of an error.
func (s *ChatService) SendMessage(ctx context.Context, userID, conversationID, message string) (*ChatTurn, error) {
	conv, err := s.resolveConversation(ctx, userID, conversationID, message)
	if err != nil {
		return nil, err
	}

	userMsg := models.ChatMessage{
		ConversationID: conv.ID,
		Sender:         models.SenderUser,
		Content:        message,
	}
	if err := s.chats.AddMessage(ctx, &userMsg); err != nil {
		return nil, err
	}

	reply := models.ChatMessage{
		ConversationID: conv.ID,
		Sender:         models.SenderAssistant,
	}
	degraded := false

	response, err := s.assistant.Chat(ctx, &mlclient.ChatRequest{
		UserID:         userID,
		Message:        message,
		ConversationID: conv.ID,
	})
	if err != nil {
		s.logger.Warn("assistant unavailable, serving fallback", map[string]interface{}{
			"conversationId": conv.ID,
			"error":          err.Error(),
		})
		reply.Content = fallbackMessage
		reply.Intent = models.IntentFallback
		degraded = true
	} else {
		reply.Content = response.Response
		reply.Intent = response.Intent
	}

	if err := s.chats.AddMessage(ctx, &reply); err != nil {
		return nil, err
	}
	conv.MessageCount += 2
	conv.LastMessageAt = reply.CreatedAt

	if err := s.cache.Invalidate(ctx, conv.ID); err != nil {
		s.logger.Warn("conversation cache invalidation failed", map[string]interface{}{
			"conversationId": conv.ID,
			"error":          err.Error(),
		})
	}

	return &ChatTurn{
		Conversation: conv,
		UserMessage:  userMsg,
		Reply:        reply,
		Degraded:     degraded,
	}, nil
}

// GetConversation returns the conversation with its messages, cache-aside
// through Redis. Cache failures degrade to a direct read.
func (s *ChatService) GetConversation(ctx context.Context, userID, conversationID string) (*models.ConversationWithMessages, error) {
	cached, err := s.cache.Get(ctx, conversationID)
	if err != nil {
		s.logger.Warn("conversation cache read failed", map[string]interface{}{
			"conversationId": conversationID,
			"error":          err.Error(),
		})
	}
	if cached != nil {
		// Ownership still has to hold for the caller. A foreign conversation
		// reads as not found so IDs cannot be probed.
		if cached.Conversation.UserID == userID {
			return cached, nil
		}
		return nil, apperrors.NewResourceNotFoundError("conversation", conversationID)
	}

	conv, err := s.chats.GetConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	messages, err := s.chats.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	payload := &models.ConversationWithMessages{
		Conversation: *conv,
		Messages:     messages,
	}

	if err := s.cache.Set(ctx, payload); err != nil {
		s.logger.Warn("conversation cache write failed", map[string]interface{}{
			"conversationId": conversationID,
			"error":          err.Error(),
		})
	}

	return payload, nil
}

// ListConversations returns the user's conversations, most recent first.
func (s *ChatService) ListConversations(ctx context.Context, userID string) ([]models.ChatConversation, error) {
	return s.chats.ListConversations(ctx, userID)
}

// resolveConversation loads the addressed conversation or starts a new one
// titled after the opening message.
func (s *ChatService) resolveConversation(ctx context.Context, userID, conversationID, message string) (*models.ChatConversation, error) {
	if conversationID != "" {
		return s.chats.GetConversation(ctx, conversationID, userID)
	}

	conv := &models.ChatConversation{
		UserID: userID,
		Title:  truncateTitle(message, 60),
	}
	if err := s.chats.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func truncateTitle(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
