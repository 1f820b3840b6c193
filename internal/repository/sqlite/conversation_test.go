package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/msomdec/taskchat/internal/domain"
)

func TestConversationRepository_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com")

	conv := &domain.Conversation{OwnerID: alice.ID, Title: "groceries"}
	if err := db.Conversations().Create(ctx, conv); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if conv.ID == "" {
		t.Fatal("expected generated conversation id")
	}

	msgs := []domain.Message{
		{ConversationID: conv.ID, Role: domain.RoleUser, Content: "add buy milk"},
		{ConversationID: conv.ID, Role: domain.RoleAssistant, Content: `Added "buy milk" to your list.`},
	}
	for i := range msgs {
		if err := db.Conversations().AddMessage(ctx, &msgs[i]); err != nil {
			t.Fatalf("AddMessage %d: %v", i, err)
		}
	}

	got, err := db.Conversations().Messages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].Role != domain.RoleUser || got[1].Role != domain.RoleAssistant {
		t.Fatalf("expected user then assistant, got %q then %q", got[0].Role, got[1].Role)
	}
	if got[0].Content != "add buy milk" {
		t.Fatalf("unexpected first message: %q", got[0].Content)
	}
}

func TestConversationRepository_OwnerScoping(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	conv := &domain.Conversation{OwnerID: alice.ID, Title: "private"}
	if err := db.Conversations().Create(ctx, conv); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := db.Conversations().GetByID(ctx, alice.ID, conv.ID); err != nil {
		t.Fatalf("GetByID as owner: %v", err)
	}
	if _, err := db.Conversations().GetByID(ctx, bob.ID, conv.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID as non-owner: expected ErrNotFound, got %v", err)
	}
	if err := db.Conversations().Touch(ctx, bob.ID, conv.ID, time.Now().UTC()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Touch as non-owner: expected ErrNotFound, got %v", err)
	}

	list, err := db.Conversations().ListByOwner(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no conversations for bob, got %d", len(list))
	}
}

func TestConversationRepository_ListOrderedByActivity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice@example.com")

	older := &domain.Conversation{OwnerID: alice.ID, Title: "older"}
	newer := &domain.Conversation{OwnerID: alice.ID, Title: "newer"}
	for _, c := range []*domain.Conversation{older, newer} {
		if err := db.Conversations().Create(ctx, c); err != nil {
			t.Fatalf("Create %s: %v", c.Title, err)
		}
	}

	// Touching the older conversation bumps it to the top.
	if err := db.Conversations().Touch(ctx, alice.ID, older.ID, time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	list, err := db.Conversations().ListByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(list))
	}
	if list[0].ID != older.ID {
		t.Fatalf("expected most recently touched conversation first, got %q", list[0].Title)
	}
}
