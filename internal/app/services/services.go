package services

import (
	"forgotpassword/internal/app/deps"
	"forgotpassword/internal/core/services"
	resetpassword "forgotpassword/internal/core/services/reset_password"
	sendpasswordresettoken "forgotpassword/internal/core/services/send_password_reset_token"
	validatepasswordresettoken "forgotpassword/internal/core/services/validate_password_reset_token"
)

type Services struct {
	SendPasswordResetToken     services.Service[sendpasswordresettoken.Input, sendpasswordresettoken.Result]
	ValidatePasswordResetToken services.Service[validatepasswordresettoken.Input, validatepasswordresettoken.Result]
	ResetPassword              services.Service[resetpassword.Input, resetpassword.Result]
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	s.SendPasswordResetToken = sendpasswordresettoken.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.PasswordResetter,
		deps.PasswordResetLinkSender,
		deps.Config.PasswordResetBaseURL,
	)
	s.ValidatePasswordResetToken = validatepasswordresettoken.New(
		deps.Logger,
		deps.UserRepository,
		deps.PasswordResetter,
	)
	s.ResetPassword = resetpassword.New(
		deps.Logger,
		deps.UnitOfWork,
		deps.PasswordResetter,
		deps.PasswordHasher,
	)

	return s
}
