// Package services defines the business logic for the users resource.
// This file centralizes how store errors become catalog failures, so every
// service method raises the same kind for the same condition.
//
// Translation into HTTP statuses is not done here; handlers record the
// returned failure and the dispatcher maps it.
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tbourn/go-error-advice/internal/failure"
)

// ErrMaintenance is raised for writes while the service is read-only.
var ErrMaintenance = failure.IllegalState("service is in maintenance mode; writes are disabled")

// storeErr classifies a repository error for operation op. Deadlines become
// Timeout failures; anything not listed stays unrecognized so it reaches
// clients only as a generic 500.
func storeErr(ctx context.Context, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return failure.Wrap(failure.KindTimeout, op+" timed out", err)
	case isNotFound(err):
		return failure.Wrap(failure.KindNotFound, "record not found", err)
	case isDuplicate(err):
		return failure.Wrap(failure.KindConflict, "resource already exists", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

func isDuplicate(err error) bool { return errors.Is(err, gorm.ErrDuplicatedKey) }
