package handler

import (
	"time"

	"github.com/msomdec/taskchat/internal/domain"
)

// TaskDTO is the JSON representation of a task. The owner is always the
// caller, so it is never echoed back.
type TaskDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toTaskDTO(t *domain.Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}

func toTaskDTOs(tasks []domain.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = toTaskDTO(&tasks[i])
	}
	return dtos
}

// ConversationDTO is the JSON representation of a conversation.
type ConversationDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toConversationDTO(c *domain.Conversation) ConversationDTO {
	return ConversationDTO{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func toConversationDTOs(convs []domain.Conversation) []ConversationDTO {
	dtos := make([]ConversationDTO, len(convs))
	for i := range convs {
		dtos[i] = toConversationDTO(&convs[i])
	}
	return dtos
}

// MessageDTO is the JSON representation of a chat message.
type MessageDTO struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func toMessageDTO(m *domain.Message) MessageDTO {
	return MessageDTO{
		ID:        m.ID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

func toMessageDTOs(msgs []domain.Message) []MessageDTO {
	dtos := make([]MessageDTO, len(msgs))
	for i := range msgs {
		dtos[i] = toMessageDTO(&msgs[i])
	}
	return dtos
}
