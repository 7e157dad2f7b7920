// internal/models/chat.go
package models

import "time"

type MessageSender string

const (
	SenderUser      MessageSender = "user"
	SenderAssistant MessageSender = "assistant"
)

// Chat intents as reported by the ML service; IntentFallback marks assistant
// messages written while the service was unreachable.
const (
	IntentJobMatch       = "job_match"
	IntentCareerGuidance = "career_guidance"
	IntentGeneral        = "general"
	IntentFallback       = "fallback"
)

type ChatConversation struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"userId" db:"user_id"`
	Title         string    `json:"title" db:"title"`
	LastMessageAt time.Time `json:"lastMessageAt" db:"last_message_at"`
	MessageCount  int       `json:"messageCount" db:"message_count"`
	IsActive      bool      `json:"isActive" db:"is_active"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

type ChatMessage struct {
	ID             string        `json:"id" db:"id"`
	ConversationID string        `json:"conversationId" db:"conversation_id"`
	Sender         MessageSender `json:"sender" db:"sender"`
	Content        string        `json:"content" db:"content"`
	Intent         string        `json:"intent,omitempty" db:"intent"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
}

// ConversationWithMessages is the conversation detail payload and the shape
// cached in Redis.
type ConversationWithMessages struct {
	Conversation ChatConversation `json:"conversation"`
	Messages     []ChatMessage    `json:"messages"`
}
