package domain

import (
	"context"
	"time"
)

// Message roles. The chat transcript only ever contains these two.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is a chat transcript owned by a single user. Ownership follows
// the same policy as tasks: a foreign conversation is indistinguishable from
// a missing one.
type Conversation struct {
	ID        string
	OwnerID   string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is a single turn in a conversation.
type Message struct {
	ID             string
	ConversationID string
	Role           string
	Content        string
	CreatedAt      time.Time
}

// ConversationRepository defines persistence operations for conversations and
// their messages.
type ConversationRepository interface {
	Create(ctx context.Context, conv *Conversation) error
	GetByID(ctx context.Context, ownerID, id string) (*Conversation, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Conversation, error)
	Touch(ctx context.Context, ownerID, id string, at time.Time) error
	AddMessage(ctx context.Context, msg *Message) error
	Messages(ctx context.Context, conversationID string) ([]Message, error)
}
