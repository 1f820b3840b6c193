package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/msomdec/taskchat/internal/agent"
	"github.com/msomdec/taskchat/internal/domain"
	"github.com/msomdec/taskchat/internal/repository/sqlite"
	"github.com/msomdec/taskchat/internal/service"
)

func newTestChatService(t *testing.T) (*service.ChatService, *service.TaskService, *sqlite.DB) {
	t.Helper()
	_, db := newTestAuthService(t)
	tasks := service.NewTaskService(db.Tasks())
	return service.NewChatService(db.Conversations(), tasks), tasks, db
}

func TestChatService_AddTask(t *testing.T) {
	chat, tasks, db := newTestChatService(t)
	ctx := subjectCtx(seedUser(t, db, "alice@example.com"))

	conv, reply, err := chat.Respond(ctx, "", "add buy milk")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if conv.ID == "" {
		t.Fatal("expected a new conversation")
	}
	if conv.Title != "add buy milk" {
		t.Fatalf("expected conversation titled after the first message, got %q", conv.Title)
	}
	if reply != `Added "buy milk" to your list.` {
		t.Fatalf("unexpected reply: %q", reply)
	}

	list, total, err := tasks.List(ctx, domain.TaskFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || list[0].Title != "buy milk" {
		t.Fatalf("expected the task to exist, got total=%d", total)
	}

	// Both sides of the turn are persisted.
	_, msgs, err := chat.Messages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != domain.RoleUser || msgs[0].Content != "add buy milk" {
		t.Fatalf("unexpected user message: %+v", msgs[0])
	}
	if msgs[1].Role != domain.RoleAssistant || msgs[1].Content != reply {
		t.Fatalf("unexpected assistant message: %+v", msgs[1])
	}
}

// Index references resolve against the newest-first snapshot, the same order
// the list shows.
func TestChatService_CompleteByIndex(t *testing.T) {
	chat, tasks, db := newTestChatService(t)
	ctx := subjectCtx(seedUser(t, db, "alice@example.com"))

	older, err := tasks.Create(ctx, "older", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := tasks.Create(ctx, "newer", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, reply, err := chat.Respond(ctx, "", "done 2")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if reply != `Marked "older" as done.` {
		t.Fatalf("unexpected reply: %q", reply)
	}

	got, err := tasks.Get(ctx, older.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Completed {
		t.Fatal("expected the older task to be completed")
	}
}

func TestChatService_DeleteByIndex(t *testing.T) {
	chat, tasks, db := newTestChatService(t)
	ctx := subjectCtx(seedUser(t, db, "alice@example.com"))

	if _, err := tasks.Create(ctx, "keep", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	newest, err := tasks.Create(ctx, "drop", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, reply, err := chat.Respond(ctx, "", "delete task 1")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if reply != `Deleted "drop".` {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if _, err := tasks.Get(ctx, newest.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected the task to be gone, got %v", err)
	}

	_, total, err := tasks.List(ctx, domain.TaskFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 task left, got %d", total)
	}
}

func TestChatService_RenameByIndex(t *testing.T) {
	chat, tasks, db := newTestChatService(t)
	ctx := subjectCtx(seedUser(t, db, "alice@example.com"))

	task, err := tasks.Create(ctx, "shoping", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, reply, err := chat.Respond(ctx, "", "rename 1 to shopping")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if reply != `Renamed "shoping" to "shopping".` {
		t.Fatalf("unexpected reply: %q", reply)
	}

	got, err := tasks.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "shopping" {
		t.Fatalf("expected renamed title, got %q", got.Title)
	}
}

func TestChatService_ListTasks(t *testing.T) {
	chat, tasks, db := newTestChatService(t)
	ctx := subjectCtx(seedUser(t, db, "alice@example.com"))

	_, reply, err := chat.Respond(ctx, "", "list")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !strings.Contains(reply, "no tasks yet") {
		t.Fatalf("expected empty-list reply, got %q", reply)
	}

	first, err := tasks.Create(ctx, "first", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := tasks.Create(ctx, "second", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	done := true
	if _, err := tasks.Update(ctx, first.ID, domain.TaskPatch{Completed: &done}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	_, reply, err = chat.Respond(ctx, "", "show my tasks")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !strings.HasPrefix(reply, "Here are your tasks:") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if !strings.Contains(reply, "1. [ ] second") || !strings.Contains(reply, "2. [x] first") {
		t.Fatalf("unexpected listing:\n%s", reply)
	}
}

// Phrasing the agent does not understand answers with help and mutates
// nothing. The turn is still recorded.
func TestChatService_UnknownPhrasing(t *testing.T) {
	chat, tasks, db := newTestChatService(t)
	ctx := subjectCtx(seedUser(t, db, "alice@example.com"))

	if _, err := tasks.Create(ctx, "untouched", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	conv, reply, err := chat.Respond(ctx, "", "what is the weather like")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if reply != agent.Help {
		t.Fatalf("expected the help text, got %q", reply)
	}

	list, total, err := tasks.List(ctx, domain.TaskFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || list[0].Title != "untouched" || list[0].Completed {
		t.Fatal("unknown phrasing must not mutate tasks")
	}

	_, msgs, err := chat.Messages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected the turn to be recorded, got %d messages", len(msgs))
	}
}

func TestChatService_IndexOutOfRange(t *testing.T) {
	chat, tasks, db := newTestChatService(t)
	ctx := subjectCtx(seedUser(t, db, "alice@example.com"))

	task, err := tasks.Create(ctx, "only", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, reply, err := chat.Respond(ctx, "", "complete task 7")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if reply != "There is no task 7 - you have 1." {
		t.Fatalf("unexpected reply: %q", reply)
	}

	got, err := tasks.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Completed {
		t.Fatal("out-of-range index must not mutate tasks")
	}
}

func TestChatService_ForeignConversation(t *testing.T) {
	chat, _, db := newTestChatService(t)
	aliceCtx := subjectCtx(seedUser(t, db, "alice@example.com"))
	bobCtx := subjectCtx(seedUser(t, db, "bob@example.com"))

	conv, _, err := chat.Respond(aliceCtx, "", "add buy milk")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if _, _, err := chat.Respond(bobCtx, conv.ID, "list"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Respond to foreign conversation: expected ErrNotFound, got %v", err)
	}
	if _, _, err := chat.Messages(bobCtx, conv.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Messages of foreign conversation: expected ErrNotFound, got %v", err)
	}
}

func TestChatService_ContinuesConversation(t *testing.T) {
	chat, _, db := newTestChatService(t)
	ctx := subjectCtx(seedUser(t, db, "alice@example.com"))

	conv, _, err := chat.Respond(ctx, "", "add buy milk")
	if err != nil {
		t.Fatalf("first turn: %v", err)
	}
	second, _, err := chat.Respond(ctx, conv.ID, "list")
	if err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if second.ID != conv.ID {
		t.Fatal("expected the same conversation to continue")
	}

	_, msgs, err := chat.Messages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages after two turns, got %d", len(msgs))
	}

	convs, err := chat.ListConversations(ctx)
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("expected a single conversation, got %d", len(convs))
	}
}

func TestChatService_MessageValidation(t *testing.T) {
	chat, _, db := newTestChatService(t)
	ctx := subjectCtx(seedUser(t, db, "alice@example.com"))

	if _, _, err := chat.Respond(ctx, "", "   "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank message: expected ErrInvalidInput, got %v", err)
	}
	long := strings.Repeat("x", 2001)
	if _, _, err := chat.Respond(ctx, "", long); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("oversized message: expected ErrInvalidInput, got %v", err)
	}
}

func TestChatService_TruncatesLongTitles(t *testing.T) {
	chat, _, db := newTestChatService(t)
	ctx := subjectCtx(seedUser(t, db, "alice@example.com"))

	message := "add " + strings.Repeat("y", 100)
	conv, _, err := chat.Respond(ctx, "", message)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if got := len([]rune(conv.Title)); got != 60 {
		t.Fatalf("expected 60-rune conversation title, got %d", got)
	}
}
