package uow

import (
	"context"
	"fmt"
	"forgotpassword/internal/core/domain/user"
)

type FakeUnitOfWorkContext struct {
	UserRepository    *user.FakeUserRepository
	WasRollbackCalled bool
	WasCommitCalled   bool
	CommitReturnError bool
	// CommitErr, when set, is returned by Commit as is.
	CommitErr error
}

func NewFakeUnitOfWorkContext(userRepository *user.FakeUserRepository) *FakeUnitOfWorkContext {
	return &FakeUnitOfWorkContext{UserRepository: userRepository}
}

func (c *FakeUnitOfWorkContext) Rollback(ctx context.Context) error {
	c.WasRollbackCalled = true
	return nil
}

func (c *FakeUnitOfWorkContext) Commit(ctx context.Context) error {
	if c.CommitErr != nil {
		return c.CommitErr
	}
	if c.CommitReturnError {
		return fmt.Errorf("could not commit")
	}
	c.WasCommitCalled = true
	return nil
}

func (c *FakeUnitOfWorkContext) Users() user.UserRepository {
	return c.UserRepository
}

type FakeUnitOfWork struct {
	Context          *FakeUnitOfWorkContext
	BeginCount       int
	BeginReturnError bool
}

func NewFakeUnitOfWork() *FakeUnitOfWork {
	return &FakeUnitOfWork{
		Context: NewFakeUnitOfWorkContext(user.NewFakeUserRepository()),
	}
}

func (u *FakeUnitOfWork) Begin(ctx context.Context) (Context, error) {
	if u.BeginReturnError {
		return nil, fmt.Errorf("could not begin unit of work")
	}
	u.BeginCount++
	return u.Context, nil
}
