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

// TaskRepository implements domain.TaskRepository using SQLite. Every query
// carries an owner-equality predicate, so a task owned by someone else is the
// same as no task at all.
type TaskRepository struct {
	db *sql.DB
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, owner_id, title, description, completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, task.OwnerID, task.Title, task.Description, task.Completed, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	task := &domain.Task{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, description, completed, created_at, updated_at
		 FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&task.ID, &task.OwnerID, &task.Title, &task.Description, &task.Completed, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query task by id: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) List(ctx context.Context, ownerID string, filter domain.TaskFilter) ([]domain.Task, int, error) {
	where := `WHERE owner_id = ?`
	args := []any{ownerID}
	if filter.Completed != nil {
		where += ` AND completed = ?`
		args = append(args, *filter.Completed)
	}

	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := `SELECT id, owner_id, title, description, completed, created_at, updated_at
		 FROM tasks ` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, total, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, completed = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		task.Title, task.Description, task.Completed, now, task.ID, task.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	task.UpdatedAt = now
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
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
