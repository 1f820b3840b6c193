package domain

import (
	"context"
	"time"
)

// Task is a single to-do item. OwnerID is set once at creation from the
// authenticated subject and is never taken from client input.
type Task struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskPatch describes a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// TaskFilter narrows a task listing. Completed of nil means both states.
type TaskFilter struct {
	Completed *bool
	Limit     int
	Offset    int
}

// TaskRepository defines persistence operations for tasks. Every lookup and
// mutation is scoped by owner: a row owned by someone else behaves exactly
// like a row that does not exist.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, ownerID, id string) (*Task, error)
	List(ctx context.Context, ownerID string, filter TaskFilter) ([]Task, int, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, ownerID, id string) error
}
