package resetpassword

import (
	"context"
	"errors"
	e "forgotpassword/internal/core/domain/errors"
	"forgotpassword/internal/core/domain/logging"
	uow "forgotpassword/internal/core/domain/unit_of_work"
	"forgotpassword/internal/core/domain/user"
	"forgotpassword/internal/core/services"
)

type Outcome int

const (
	Completed Outcome = iota + 1
	Mismatch
	WeakPassword
	InvalidOrExpiredToken
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Mismatch:
		return "mismatch"
	case WeakPassword:
		return "weak_password"
	case InvalidOrExpiredToken:
		return "invalid_or_expired_token"
	}
	return "unknown"
}

type Input struct {
	Token           user.PasswordResetToken
	NewPassword     user.RawPassword
	ConfirmPassword user.RawPassword
}

type Result struct {
	Outcome Outcome
	// Violations is set for WeakPassword only.
	Violations []user.PasswordViolation
}

type service struct {
	log              logging.Logger
	unitOfWork       uow.UnitOfWork
	passwordResetter user.PasswordResetter
	passwordHasher   user.PasswordHasher
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	passwordResetter user.PasswordResetter,
	passwordHasher user.PasswordHasher,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if unitOfWork == nil {
		panic(e.NewNilArgumentError("unitOfWork"))
	}
	if passwordResetter == nil {
		panic(e.NewNilArgumentError("passwordResetter"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	return &service{
		log:              log,
		unitOfWork:       unitOfWork,
		passwordResetter: passwordResetter,
		passwordHasher:   passwordHasher,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	if input.NewPassword != input.ConfirmPassword {
		return Result{Outcome: Mismatch}, nil
	}
	if violations := user.ValidatePassword(input.NewPassword); len(violations) > 0 {
		return Result{Outcome: WeakPassword, Violations: violations}, nil
	}

	uow, err := s.unitOfWork.Begin(ctx)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(ctx, "Could not begin unit of work.", logging.Entry("err", err))
		return result, err
	}
	defer uow.Rollback(ctx)

	u, ok, err := s.passwordResetter.ConsumeToken(ctx, uow.Users(), input.Token)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(ctx, "Could not consume password reset token.", logging.Entry("err", err))
		return result, err
	}
	if !ok {
		s.log.Info(ctx, "Invalid or expired password reset token.")
		return Result{Outcome: InvalidOrExpiredToken}, nil
	}

	passwordHash, err := s.passwordHasher.HashPassword(input.NewPassword)
	if err != nil {
		s.log.Error(ctx, "Could not hash password.", logging.Entry("err", err))
		return result, err
	}
	u.CompletePasswordReset(passwordHash)

	err = uow.Users().Save(ctx, u)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrConcurrentUpdate) {
		return s.consumedConcurrently(ctx, u), nil
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not update user password.",
			logging.Entry("userID", u.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	err = uow.Commit(ctx)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrConcurrentUpdate) {
		return s.consumedConcurrently(ctx, u), nil
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not commit unit of work.",
			logging.Entry("userID", u.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	s.log.Info(ctx, "New password has been successfully set.", logging.Entry("userID", u.ID))
	return Result{Outcome: Completed}, nil
}

// The request that committed first has already cleared the token.
func (s *service) consumedConcurrently(ctx context.Context, u user.User) Result {
	s.log.Info(
		ctx,
		"Password reset token has been consumed by a concurrent request.",
		logging.Entry("userID", u.ID),
	)
	return Result{Outcome: InvalidOrExpiredToken}
}
