package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/msomdec/taskchat/internal/domain"
	"github.com/msomdec/taskchat/internal/service"
)

// TaskHandler handles task CRUD HTTP requests. The owner of every operation
// is the verified subject injected by RequireAuth; task ids arrive as path
// values and nothing else identifies the caller.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// HandleCreate creates a task for the authenticated subject.
// POST /tasks
// Request:  {"title":"...","description":"..."}
// Response: 201 TaskDTO
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body.")
		return
	}

	task, err := h.tasks.Create(r.Context(), req.Title, req.Description)
	if err != nil {
		writeDomainError(w, "create task", err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskDTO(task))
}

// HandleList lists the subject's tasks, newest first.
// GET /tasks?completed=true&limit=10&offset=0
// Response: {"tasks":[...],"total":N,"limit":N,"offset":N}
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTaskFilter(r)
	if err != nil {
		writeDomainError(w, "parse task filter", err)
		return
	}

	tasks, total, err := h.tasks.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, "list tasks", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tasks":  toTaskDTOs(tasks),
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// HandleGet returns one of the subject's tasks.
// GET /tasks/{id}
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, "get task", err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskDTO(task))
}

// HandleUpdate applies a partial update to one of the subject's tasks.
// PUT /tasks/{id}
// Request:  {"title":"...","description":"...","completed":true} (all optional)
// Response: the updated TaskDTO
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body.")
		return
	}

	patch := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	}
	task, err := h.tasks.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeDomainError(w, "update task", err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskDTO(task))
}

// HandleDelete removes one of the subject's tasks.
// DELETE /tasks/{id}
// Response: 204 No Content
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, "delete task", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseTaskFilter reads the list query parameters. Malformed values are
// invalid input; range checks live in the service.
func parseTaskFilter(r *http.Request) (domain.TaskFilter, error) {
	filter := domain.TaskFilter{Limit: service.DefaultListLimit}
	q := r.URL.Query()

	if v := q.Get("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("%w: completed must be true or false", domain.ErrInvalidInput)
		}
		filter.Completed = &b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, fmt.Errorf("%w: limit must be an integer", domain.ErrInvalidInput)
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, fmt.Errorf("%w: offset must be an integer", domain.ErrInvalidInput)
		}
		filter.Offset = n
	}
	return filter, nil
}
