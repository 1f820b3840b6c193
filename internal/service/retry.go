package service

import (
	"context"
	"errors"
	"time"

	"github.com/msomdec/taskchat/internal/domain"
	"github.com/sethvargo/go-retry"
)

const storeRetryBackoff = 50 * time.Millisecond

// withRetry runs op against the store, retrying exactly once on transient
// failures. Domain outcomes (not found, duplicate email, bad credentials,
// invalid input) are final and never retried. Callers see at most one retry;
// anything that still fails surfaces as a plain error.
func withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(1, retry.NewConstant(storeRetryBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if isDomainOutcome(err) {
			return err
		}
		return retry.RetryableError(err)
	})
}

func isDomainOutcome(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrDuplicateEmail) ||
		errors.Is(err, domain.ErrInvalidCredentials) ||
		errors.Is(err, domain.ErrInvalidInput)
}
