package validatepasswordresettoken

import (
	"context"
	"errors"
	e "forgotpassword/internal/core/domain/errors"
	"forgotpassword/internal/core/domain/logging"
	"forgotpassword/internal/core/domain/user"
	"forgotpassword/internal/core/services"
)

type Input struct {
	Token user.PasswordResetToken
}

type Result struct {
	IsValid bool
}

type service struct {
	log              logging.Logger
	userRepository   user.UserRepository
	passwordResetter user.PasswordResetter
}

func New(
	log logging.Logger,
	userRepository user.UserRepository,
	passwordResetter user.PasswordResetter,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if passwordResetter == nil {
		panic(e.NewNilArgumentError("passwordResetter"))
	}
	return &service{
		log:              log,
		userRepository:   userRepository,
		passwordResetter: passwordResetter,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	isValid, err := s.passwordResetter.IsTokenValid(ctx, s.userRepository, input.Token)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(ctx, "Could not validate password reset token.", logging.Entry("err", err))
		return result, err
	}
	return Result{IsValid: isValid}, nil
}
