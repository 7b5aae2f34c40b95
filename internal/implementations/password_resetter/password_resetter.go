package passwordresetter

import (
	"context"
	"errors"
	e "forgotpassword/internal/core/domain/errors"
	"forgotpassword/internal/core/domain/user"
	"time"

	"github.com/golang-module/carbon/v2"
)

type Resetter struct {
	generator  user.PasswordResetTokenGenerator
	validHours int
	now        func() time.Time
}

func New(generator user.PasswordResetTokenGenerator, validHours int, now func() time.Time) *Resetter {
	if generator == nil {
		panic(e.NewNilArgumentError("generator"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	if validHours <= 0 {
		panic("password reset tokens must be valid for at least one hour")
	}
	return &Resetter{generator: generator, validHours: validHours, now: now}
}

func (r *Resetter) IssueToken(
	ctx context.Context,
	users user.UserRepository,
	u user.User,
) (user.User, user.PasswordResetToken, error) {
	token := r.generator.GeneratePasswordResetToken()
	if token == "" {
		return u, token, e.NewInvalidStateError("generated password reset token is empty")
	}
	u.SetResetToken(token, r.expiresAt())
	if err := users.Save(ctx, u); err != nil {
		return u, "", err
	}
	return u, token, nil
}

func (r *Resetter) IsTokenValid(
	ctx context.Context,
	users user.UserRepository,
	token user.PasswordResetToken,
) (bool, error) {
	_, ok, err := r.findValid(ctx, users, token)
	return ok, err
}

func (r *Resetter) ConsumeToken(
	ctx context.Context,
	users user.UserRepository,
	token user.PasswordResetToken,
) (user.User, bool, error) {
	return r.findValid(ctx, users, token)
}

func (r *Resetter) findValid(
	ctx context.Context,
	users user.UserRepository,
	token user.PasswordResetToken,
) (u user.User, ok bool, err error) {
	if token == "" {
		return u, false, nil
	}
	u, err = users.GetByResetToken(ctx, token)
	if errors.Is(err, user.ErrUserDoesNotExist) {
		return user.User{}, false, nil
	}
	if err != nil {
		return user.User{}, false, err
	}
	if !u.HasValidResetToken(token, r.now()) {
		return user.User{}, false, nil
	}
	return u, true, nil
}

func (r *Resetter) expiresAt() time.Time {
	now := r.now()
	return carbon.Time2Carbon(now).AddHours(r.validHours).Carbon2Time().In(now.Location())
}
