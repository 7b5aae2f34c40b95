package user

import (
	"context"
	c "forgotpassword/internal/core/domain/common"
)

// CreateUserInput is used by store implementations to provision accounts.
// The password reset flow itself never creates users.
type CreateUserInput struct {
	Email        c.Email
	DisplayName  string
	PasswordHash PasswordHash
}

type UserRepository interface {
	GetByEmail(ctx context.Context, email c.Email) (User, error)
	GetByResetToken(ctx context.Context, token PasswordResetToken) (User, error)
	// Save overwrites the password hash and the reset token fields of an
	// existing user.
	Save(ctx context.Context, u User) error
}
