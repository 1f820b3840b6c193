package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/taskchat/internal/domain"
)

// ConversationRepository implements domain.ConversationRepository using
// SQLite. Conversations follow the same owner-equality rule as tasks;
// messages are only reachable through an owned conversation.
type ConversationRepository struct {
	db *sql.DB
}

func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO conversations (id, owner_id, title, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, conv.OwnerID, conv.Title, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}

	conv.ID = id
	conv.CreatedAt = now
	conv.UpdatedAt = now
	return nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Conversation, error) {
	conv := &domain.Conversation{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, created_at, updated_at
		 FROM conversations WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&conv.ID, &conv.OwnerID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query conversation by id: %w", err)
	}
	return conv, nil
}

func (r *ConversationRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Conversation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, created_at, updated_at
		 FROM conversations WHERE owner_id = ?
		 ORDER BY updated_at DESC, id DESC`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return convs, nil
}

func (r *ConversationRepository) Touch(ctx context.Context, ownerID, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = ? WHERE id = ? AND owner_id = ?`,
		at.UTC(), id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ConversationRepository) AddMessage(ctx context.Context, msg *domain.Message) error {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, msg.ConversationID, msg.Role, msg.Content, now,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	msg.ID = id
	msg.CreatedAt = now
	return nil
}

func (r *ConversationRepository) Messages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, created_at
		 FROM messages WHERE conversation_id = ?
		 ORDER BY created_at ASC, id ASC`, conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}
