package mcpserver

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/msomdec/taskchat/internal/domain"
	"github.com/msomdec/taskchat/internal/service"
)

// TaskEntry is the wire shape of a task in tool results.
type TaskEntry struct {
	ID          string `json:"id" jsonschema:"task identifier"`
	Title       string `json:"title" jsonschema:"task title"`
	Description string `json:"description,omitempty" jsonschema:"task description"`
	Completed   bool   `json:"completed" jsonschema:"whether the task is done"`
	CreatedAt   string `json:"created_at" jsonschema:"creation time (RFC 3339)"`
	UpdatedAt   string `json:"updated_at" jsonschema:"last update time (RFC 3339)"`
}

func toTaskEntry(t *domain.Task) TaskEntry {
	return TaskEntry{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}

// AddTaskInput represents the MCP tool input for creating a task.
type AddTaskInput struct {
	Title       string `json:"title" jsonschema:"task title (1-200 characters)"`
	Description string `json:"description,omitempty" jsonschema:"optional task description"`
}

// AddTaskResult represents the MCP tool output for creating a task.
type AddTaskResult struct {
	Task TaskEntry `json:"task" jsonschema:"the created task"`
}

// AddTaskTool defines the MCP tool schema for creating tasks.
func AddTaskTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "add_task",
		Description: "Creates a new task on the authenticated subject's list",
	}
}

// AddTaskHandler executes a task creation request as the configured subject.
func AddTaskHandler(tasks *service.TaskService, subjectID string) mcp.ToolHandlerFor[AddTaskInput, AddTaskResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AddTaskInput) (*mcp.CallToolResult, AddTaskResult, error) {
		ctx = service.ContextWithSubject(ctx, subjectID)

		task, err := tasks.Create(ctx, input.Title, input.Description)
		if err != nil {
			return nil, AddTaskResult{}, err
		}
		return nil, AddTaskResult{Task: toTaskEntry(task)}, nil
	}
}

// ListTasksInput represents the MCP tool input for listing tasks.
type ListTasksInput struct {
	Completed *bool `json:"completed,omitempty" jsonschema:"filter by completion state; omit for both"`
	Limit     int   `json:"limit,omitempty" jsonschema:"page size (1-100, default 10)"`
	Offset    int   `json:"offset,omitempty" jsonschema:"number of tasks to skip"`
}

// ListTasksResult represents the MCP tool output for listing tasks.
type ListTasksResult struct {
	Tasks []TaskEntry `json:"tasks" jsonschema:"tasks, newest first"`
	Total int         `json:"total" jsonschema:"total tasks matching the filter"`
}

// ListTasksTool defines the MCP tool schema for listing tasks.
func ListTasksTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_tasks",
		Description: "Lists the authenticated subject's tasks, newest first",
	}
}

// ListTasksHandler executes a task listing request as the configured subject.
func ListTasksHandler(tasks *service.TaskService, subjectID string) mcp.ToolHandlerFor[ListTasksInput, ListTasksResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ListTasksInput) (*mcp.CallToolResult, ListTasksResult, error) {
		ctx = service.ContextWithSubject(ctx, subjectID)

		filter := domain.TaskFilter{
			Completed: input.Completed,
			Limit:     input.Limit,
			Offset:    input.Offset,
		}
		list, total, err := tasks.List(ctx, filter)
		if err != nil {
			return nil, ListTasksResult{}, err
		}

		result := ListTasksResult{
			Tasks: make([]TaskEntry, 0, len(list)),
			Total: total,
		}
		for i := range list {
			result.Tasks = append(result.Tasks, toTaskEntry(&list[i]))
		}
		return nil, result, nil
	}
}

// CompleteTaskInput represents the MCP tool input for completing a task.
type CompleteTaskInput struct {
	ID string `json:"id" jsonschema:"task identifier"`
}

// CompleteTaskResult represents the MCP tool output for completing a task.
type CompleteTaskResult struct {
	Task TaskEntry `json:"task" jsonschema:"the completed task"`
}

// CompleteTaskTool defines the MCP tool schema for marking tasks done.
func CompleteTaskTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "complete_task",
		Description: "Marks one of the authenticated subject's tasks as done",
	}
}

// CompleteTaskHandler executes a completion request as the configured subject.
func CompleteTaskHandler(tasks *service.TaskService, subjectID string) mcp.ToolHandlerFor[CompleteTaskInput, CompleteTaskResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CompleteTaskInput) (*mcp.CallToolResult, CompleteTaskResult, error) {
		ctx = service.ContextWithSubject(ctx, subjectID)

		done := true
		task, err := tasks.Update(ctx, input.ID, domain.TaskPatch{Completed: &done})
		if err != nil {
			return nil, CompleteTaskResult{}, err
		}
		return nil, CompleteTaskResult{Task: toTaskEntry(task)}, nil
	}
}

// UpdateTaskInput represents the MCP tool input for patching a task. Omitted
// fields are left unchanged.
type UpdateTaskInput struct {
	ID          string  `json:"id" jsonschema:"task identifier"`
	Title       *string `json:"title,omitempty" jsonschema:"new title (1-200 characters)"`
	Description *string `json:"description,omitempty" jsonschema:"new description"`
	Completed   *bool   `json:"completed,omitempty" jsonschema:"new completion state"`
}

// UpdateTaskResult represents the MCP tool output for patching a task.
type UpdateTaskResult struct {
	Task TaskEntry `json:"task" jsonschema:"the updated task"`
}

// UpdateTaskTool defines the MCP tool schema for patching tasks.
func UpdateTaskTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "update_task",
		Description: "Applies a partial update to one of the authenticated subject's tasks",
	}
}

// UpdateTaskHandler executes a patch request as the configured subject.
func UpdateTaskHandler(tasks *service.TaskService, subjectID string) mcp.ToolHandlerFor[UpdateTaskInput, UpdateTaskResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input UpdateTaskInput) (*mcp.CallToolResult, UpdateTaskResult, error) {
		ctx = service.ContextWithSubject(ctx, subjectID)

		patch := domain.TaskPatch{
			Title:       input.Title,
			Description: input.Description,
			Completed:   input.Completed,
		}
		task, err := tasks.Update(ctx, input.ID, patch)
		if err != nil {
			return nil, UpdateTaskResult{}, err
		}
		return nil, UpdateTaskResult{Task: toTaskEntry(task)}, nil
	}
}

// DeleteTaskInput represents the MCP tool input for deleting a task.
type DeleteTaskInput struct {
	ID string `json:"id" jsonschema:"task identifier"`
}

// DeleteTaskResult represents the MCP tool output for deleting a task.
type DeleteTaskResult struct {
	ID      string `json:"id" jsonschema:"identifier of the deleted task"`
	Deleted bool   `json:"deleted" jsonschema:"whether the task was removed"`
}

// DeleteTaskTool defines the MCP tool schema for deleting tasks.
func DeleteTaskTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "delete_task",
		Description: "Deletes one of the authenticated subject's tasks",
	}
}

// DeleteTaskHandler executes a deletion request as the configured subject.
func DeleteTaskHandler(tasks *service.TaskService, subjectID string) mcp.ToolHandlerFor[DeleteTaskInput, DeleteTaskResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DeleteTaskInput) (*mcp.CallToolResult, DeleteTaskResult, error) {
		ctx = service.ContextWithSubject(ctx, subjectID)

		if err := tasks.Delete(ctx, input.ID); err != nil {
			return nil, DeleteTaskResult{}, err
		}
		return nil, DeleteTaskResult{ID: input.ID, Deleted: true}, nil
	}
}
