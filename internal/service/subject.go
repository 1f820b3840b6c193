package service

import (
	"context"
	"fmt"

	"github.com/msomdec/taskchat/internal/domain"
)

type contextKey string

const subjectContextKey contextKey = "subject"

// ContextWithSubject returns a copy of ctx carrying the verified subject id.
// The auth middleware sets it exactly once after token verification; nothing
// else writes it.
func ContextWithSubject(ctx context.Context, subjectID string) context.Context {
	return context.WithValue(ctx, subjectContextKey, subjectID)
}

// SubjectFromContext extracts the verified subject id from ctx.
func SubjectFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(subjectContextKey).(string)
	return id, ok && id != ""
}

// ownerFromContext is the single ownership guard: every task and chat
// operation derives its owner from the verified subject in ctx and from
// nowhere else. Client-supplied owner ids do not exist in any request shape.
func ownerFromContext(ctx context.Context) (string, error) {
	id, ok := SubjectFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("%w: no subject in context", domain.ErrTokenMissing)
	}
	return id, nil
}
