package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/msomdec/taskchat/internal/domain"
)

// DefaultListLimit and MaxListLimit bound task list pages. A zero limit
// means DefaultListLimit; anything outside [1, MaxListLimit] is invalid
// input.
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

const maxTitleLen = 200

// TaskService handles task CRUD. Every operation derives its owner from the
// verified subject in ctx; a task owned by someone else is reported as
// ErrNotFound, never as a distinct "forbidden" outcome, so existence of other
// users' tasks does not leak through status codes.
type TaskService struct {
	tasks domain.TaskRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks domain.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// Create stores a new task owned by the ctx subject.
func (s *TaskService) Create(ctx context.Context, title, description string) (*domain.Task, error) {
	owner, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	task := &domain.Task{
		OwnerID:     owner,
		Title:       title,
		Description: description,
	}

	err = withRetry(ctx, func(ctx context.Context) error {
		return s.tasks.Create(ctx, task)
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// List returns the ctx subject's tasks, newest first, with the total count
// for the filter.
func (s *TaskService) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, int, error) {
	owner, err := ownerFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}

	if filter.Limit == 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit < 1 || filter.Limit > MaxListLimit {
		return nil, 0, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidInput, MaxListLimit)
	}
	if filter.Offset < 0 {
		return nil, 0, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidInput)
	}

	var (
		tasks []domain.Task
		total int
	)
	err = withRetry(ctx, func(ctx context.Context) error {
		var err error
		tasks, total, err = s.tasks.List(ctx, owner, filter)
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, total, nil
}

// Get returns one of the ctx subject's tasks by id.
func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	owner, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var task *domain.Task
	err = withRetry(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.tasks.GetByID(ctx, owner, id)
		return err
	})
	if err != nil {
		return nil, wrapTaskErr("get task", err)
	}
	return task, nil
}

// Update applies a partial patch to one of the ctx subject's tasks. Only
// title, description, and completion mutate; updated-at refreshes on every
// successful call.
func (s *TaskService) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	owner, err := ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return nil, err
		}
	}

	var task *domain.Task
	err = withRetry(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.tasks.GetByID(ctx, owner, id)
		return err
	})
	if err != nil {
		return nil, wrapTaskErr("get task", err)
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}

	err = withRetry(ctx, func(ctx context.Context) error {
		return s.tasks.Update(ctx, task)
	})
	if err != nil {
		return nil, wrapTaskErr("update task", err)
	}
	return task, nil
}

// Delete removes one of the ctx subject's tasks. Deleting an id that is gone
// (or was never theirs) reports ErrNotFound, indistinguishable from
// never-existed.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	owner, err := ownerFromContext(ctx)
	if err != nil {
		return err
	}

	err = withRetry(ctx, func(ctx context.Context) error {
		return s.tasks.Delete(ctx, owner, id)
	})
	if err != nil {
		return wrapTaskErr("delete task", err)
	}
	return nil
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < 1 || n > maxTitleLen {
		return fmt.Errorf("%w: title must be 1-%d characters", domain.ErrInvalidInput, maxTitleLen)
	}
	return nil
}

func wrapTaskErr(op string, err error) error {
	if isDomainOutcome(err) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
