package sendpasswordresettoken

import (
	"context"
	"errors"
	c "forgotpassword/internal/core/domain/common"
	e "forgotpassword/internal/core/domain/errors"
	"forgotpassword/internal/core/domain/logging"
	uow "forgotpassword/internal/core/domain/unit_of_work"
	"forgotpassword/internal/core/domain/user"
	"forgotpassword/internal/core/services"
	"net/url"
)

type Outcome int

const (
	Initiated Outcome = iota + 1
	NoSuchUser
	NotificationFailed
)

func (o Outcome) String() string {
	switch o {
	case Initiated:
		return "initiated"
	case NoSuchUser:
		return "no_such_user"
	case NotificationFailed:
		return "notification_failed"
	}
	return "unknown"
}

type Input struct {
	Email c.Email
}

type Result struct {
	Outcome Outcome
	// Token is exposed only to let test mode hand it back to the client.
	Token user.PasswordResetToken
}

type service struct {
	log              logging.Logger
	unitOfWork       uow.UnitOfWork
	passwordResetter user.PasswordResetter
	sender           user.PasswordResetLinkSender
	baseURL          url.URL
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	passwordResetter user.PasswordResetter,
	sender user.PasswordResetLinkSender,
	baseURL url.URL,
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
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	return &service{
		log:              log,
		unitOfWork:       unitOfWork,
		passwordResetter: passwordResetter,
		sender:           sender,
		baseURL:          baseURL,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	u, token, err := s.issueToken(ctx, input)
	if errors.Is(err, user.ErrUserDoesNotExist) {
		s.log.Info(
			ctx,
			"Password reset requested for unknown email.",
			logging.Entry("email", input.Email),
		)
		return Result{Outcome: NoSuchUser}, nil
	}
	if errors.Is(err, user.ErrConcurrentUpdate) {
		// The concurrent request that won sends its own link.
		s.log.Info(
			ctx,
			"Password reset token has been issued by a concurrent request.",
			logging.Entry("userID", u.ID),
		)
		return Result{Outcome: Initiated}, nil
	}
	if err != nil {
		return result, err
	}

	link := user.NewPasswordResetLink(s.baseURL, token)
	err = s.sender.SendPasswordResetLink(ctx, u.Email, link, u.DisplayName)
	if err != nil {
		s.log.Error(
			ctx,
			"Could not send password reset link.",
			logging.Entry("userID", u.ID),
			logging.Entry("err", err),
		)
		return Result{Outcome: NotificationFailed, Token: token}, nil
	}

	s.log.Info(ctx, "Password reset link has been sent.", logging.Entry("userID", u.ID))
	return Result{Outcome: Initiated, Token: token}, nil
}

func (s *service) issueToken(ctx context.Context, input Input) (u user.User, token user.PasswordResetToken, err error) {
	uow, err := s.unitOfWork.Begin(ctx)
	if errors.Is(err, context.Canceled) {
		return u, token, err
	}
	if err != nil {
		s.log.Error(ctx, "Could not begin unit of work.", logging.Entry("err", err))
		return u, token, err
	}
	defer uow.Rollback(ctx)

	u, err = uow.Users().GetByEmail(ctx, input.Email)
	if errors.Is(err, context.Canceled) || errors.Is(err, user.ErrUserDoesNotExist) {
		return u, token, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not get user by email.",
			logging.Entry("email", input.Email),
			logging.Entry("err", err),
		)
		return u, token, err
	}

	u, token, err = s.passwordResetter.IssueToken(ctx, uow.Users(), u)
	if errors.Is(err, context.Canceled) || errors.Is(err, user.ErrConcurrentUpdate) {
		return u, token, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not issue password reset token.",
			logging.Entry("userID", u.ID),
			logging.Entry("err", err),
		)
		return u, token, err
	}

	err = uow.Commit(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, user.ErrConcurrentUpdate) {
		return u, token, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not commit unit of work.",
			logging.Entry("userID", u.ID),
			logging.Entry("err", err),
		)
		return u, token, err
	}
	return u, token, nil
}
