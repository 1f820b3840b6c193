package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/msomdec/taskchat/internal/agent"
	"github.com/msomdec/taskchat/internal/domain"
)

const (
	maxMessageLen = 2000

	// chatSnapshotLimit bounds the task snapshot the agent works against.
	// Index references ("complete task 2") resolve within this window, the
	// same newest-first order the list UI shows.
	chatSnapshotLimit = 100

	conversationTitleLen = 60
)

// ChatService turns free-text instructions into task operations. Each turn
// runs the agent as a pure function over (instruction, current task
// snapshot) and executes at most one TaskService call. The agent goes
// through the same service as every other client, so ownership checks apply
// unchanged. Nothing is remembered between turns beyond what the store holds.
type ChatService struct {
	conversations domain.ConversationRepository
	tasks         *TaskService
}

// NewChatService creates a new ChatService.
func NewChatService(conversations domain.ConversationRepository, tasks *TaskService) *ChatService {
	return &ChatService{conversations: conversations, tasks: tasks}
}

// Respond handles one chat turn: persist the user message, run the agent,
// execute its command, and persist the reply. An empty conversationID starts
// a new conversation owned by the ctx subject; a foreign or unknown id is
// ErrNotFound.
func (s *ChatService) Respond(ctx context.Context, conversationID, message string) (*domain.Conversation, string, error) {
	owner, err := ownerFromContext(ctx)
	if err != nil {
		return nil, "", err
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, "", fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(message) > maxMessageLen {
		return nil, "", fmt.Errorf("%w: message must be at most %d characters", domain.ErrInvalidInput, maxMessageLen)
	}

	conv, err := s.resolveConversation(ctx, owner, conversationID, message)
	if err != nil {
		return nil, "", err
	}

	userMsg := &domain.Message{
		ConversationID: conv.ID,
		Role:           domain.RoleUser,
		Content:        message,
	}
	err = withRetry(ctx, func(ctx context.Context) error {
		return s.conversations.AddMessage(ctx, userMsg)
	})
	if err != nil {
		return nil, "", fmt.Errorf("add user message: %w", err)
	}

	snapshot, _, err := s.tasks.List(ctx, domain.TaskFilter{Limit: chatSnapshotLimit})
	if err != nil {
		return nil, "", fmt.Errorf("snapshot tasks: %w", err)
	}

	reply, err := s.execute(ctx, agent.Parse(message), snapshot)
	if err != nil {
		return nil, "", err
	}

	assistantMsg := &domain.Message{
		ConversationID: conv.ID,
		Role:           domain.RoleAssistant,
		Content:        reply,
	}
	err = withRetry(ctx, func(ctx context.Context) error {
		return s.conversations.AddMessage(ctx, assistantMsg)
	})
	if err != nil {
		return nil, "", fmt.Errorf("add assistant message: %w", err)
	}

	err = withRetry(ctx, func(ctx context.Context) error {
		return s.conversations.Touch(ctx, owner, conv.ID, assistantMsg.CreatedAt)
	})
	if err != nil {
		return nil, "", fmt.Errorf("touch conversation: %w", err)
	}

	return conv, reply, nil
}

// ListConversations returns the ctx subject's conversations, most recently
// active first.
func (s *ChatService) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	owner, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var convs []domain.Conversation
	err = withRetry(ctx, func(ctx context.Context) error {
		var err error
		convs, err = s.conversations.ListByOwner(ctx, owner)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

// Messages returns one of the ctx subject's conversations with its full
// transcript in chronological order.
func (s *ChatService) Messages(ctx context.Context, conversationID string) (*domain.Conversation, []domain.Message, error) {
	owner, err := ownerFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}

	var conv *domain.Conversation
	err = withRetry(ctx, func(ctx context.Context) error {
		var err error
		conv, err = s.conversations.GetByID(ctx, owner, conversationID)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get conversation: %w", err)
	}

	var msgs []domain.Message
	err = withRetry(ctx, func(ctx context.Context) error {
		var err error
		msgs, err = s.conversations.Messages(ctx, conv.ID)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("get messages: %w", err)
	}
	return conv, msgs, nil
}

func (s *ChatService) resolveConversation(ctx context.Context, owner, id, firstMessage string) (*domain.Conversation, error) {
	if id != "" {
		var conv *domain.Conversation
		err := withRetry(ctx, func(ctx context.Context) error {
			var err error
			conv, err = s.conversations.GetByID(ctx, owner, id)
			return err
		})
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("get conversation: %w", err)
		}
		return conv, nil
	}

	conv := &domain.Conversation{
		OwnerID: owner,
		Title:   conversationTitle(firstMessage),
	}
	err := withRetry(ctx, func(ctx context.Context) error {
		return s.conversations.Create(ctx, conv)
	})
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// execute runs at most one task operation for the parsed command and builds
// the reply. Misses that are the user's to fix (bad index, too-long title)
// come back as conversational replies, not errors; store failures propagate.
func (s *ChatService) execute(ctx context.Context, cmd agent.Command, snapshot []domain.Task) (string, error) {
	switch cmd.Action {
	case agent.ActionAdd:
		task, err := s.tasks.Create(ctx, cmd.Title, cmd.Description)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				return fmt.Sprintf("That title doesn't work: it must be 1-%d characters.", maxTitleLen), nil
			}
			return "", err
		}
		return fmt.Sprintf("Added %q to your list.", task.Title), nil

	case agent.ActionList:
		return formatTaskList(snapshot), nil

	case agent.ActionComplete:
		task, ok := taskAt(snapshot, cmd.Index)
		if !ok {
			return missingIndexReply(cmd.Index, len(snapshot)), nil
		}
		completed := true
		if _, err := s.tasks.Update(ctx, task.ID, domain.TaskPatch{Completed: &completed}); err != nil {
			return "", err
		}
		return fmt.Sprintf("Marked %q as done.", task.Title), nil

	case agent.ActionDelete:
		task, ok := taskAt(snapshot, cmd.Index)
		if !ok {
			return missingIndexReply(cmd.Index, len(snapshot)), nil
		}
		if err := s.tasks.Delete(ctx, task.ID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Deleted %q.", task.Title), nil

	case agent.ActionUpdate:
		task, ok := taskAt(snapshot, cmd.Index)
		if !ok {
			return missingIndexReply(cmd.Index, len(snapshot)), nil
		}
		if _, err := s.tasks.Update(ctx, task.ID, domain.TaskPatch{Title: &cmd.Title}); err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				return fmt.Sprintf("That title doesn't work: it must be 1-%d characters.", maxTitleLen), nil
			}
			return "", err
		}
		return fmt.Sprintf("Renamed %q to %q.", task.Title, cmd.Title), nil

	default:
		return agent.Help, nil
	}
}

func taskAt(snapshot []domain.Task, index int) (*domain.Task, bool) {
	if index < 1 || index > len(snapshot) {
		return nil, false
	}
	return &snapshot[index-1], true
}

func missingIndexReply(index, have int) string {
	if have == 0 {
		return `You have no tasks yet. Try "add buy milk".`
	}
	return fmt.Sprintf("There is no task %d - you have %d.", index, have)
}

func formatTaskList(tasks []domain.Task) string {
	if len(tasks) == 0 {
		return `You have no tasks yet. Try "add buy milk".`
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are your tasks:\n")
	for i, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, mark, t.Title)
	}
	return strings.TrimRight(b.String(), "\n")
}

func conversationTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= conversationTitleLen {
		return message
	}
	return string(runes[:conversationTitleLen])
}
