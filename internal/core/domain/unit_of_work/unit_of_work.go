package uow

import (
	"context"
	"forgotpassword/internal/core/domain/user"
)

// Context is a single transaction. Rollback after a successful Commit is a
// no-op, so callers defer Rollback right after Begin.
type Context interface {
	Rollback(ctx context.Context) error
	Commit(ctx context.Context) error

	Users() user.UserRepository
}

type UnitOfWork interface {
	Begin(ctx context.Context) (Context, error)
}
