package models

import (
	"time"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents one turn in a conversation
type ChatMessage struct {
	ID             string       `json:"id"`             // Unique message ID (e.g., UUID)
	ConversationID string       `json:"conversationId"` // ID of the chat room/conversation
	Role           string       `json:"role"`           // "user" or "assistant"
	Content        string       `json:"content"`        // Message text, final for user turns, accumulated for assistant turns
	Consultants    []Consultant `json:"consultants,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"` // Timestamp of message creation
}

// LastUserMessage returns the most recent user-role message in history,
// or nil if there is none.
func LastUserMessage(history []ChatMessage) *ChatMessage {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			return &history[i]
		}
	}
	return nil
}
