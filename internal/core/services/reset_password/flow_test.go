package resetpassword

import (
	"context"
	c "forgotpassword/internal/core/domain/common"
	"forgotpassword/internal/core/domain/logging"
	uow "forgotpassword/internal/core/domain/unit_of_work"
	"forgotpassword/internal/core/domain/user"
	sendpasswordresettoken "forgotpassword/internal/core/services/send_password_reset_token"
	validatepasswordresettoken "forgotpassword/internal/core/services/validate_password_reset_token"
	passwordresetter "forgotpassword/internal/implementations/password_resetter"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFullPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	log := logging.NewFakeLogger()
	unitOfWork := uow.NewFakeUnitOfWork()
	users := unitOfWork.Context.UserRepository
	hasher := user.NewFakePasswordHasher()
	sender := user.NewFakePasswordResetLinkSender()
	resetter := passwordresetter.New(
		user.NewFakePasswordResetTokenGenerator("flow-token"),
		1,
		func() time.Time { return now },
	)
	baseURL, err := url.Parse("https://app.example.com")
	require.NoError(t, err)

	send := sendpasswordresettoken.New(log, unitOfWork, resetter, sender, *baseURL)
	validate := validatepasswordresettoken.New(log, users, resetter)
	reset := New(log, unitOfWork, resetter, hasher)

	oldHash, err := hasher.HashPassword("OldPassword1!")
	require.NoError(t, err)
	_, err = users.Create(ctx, user.CreateUserInput{Email: c.Email("user@example.com"), PasswordHash: oldHash})
	require.NoError(t, err)

	sent, err := send.Run(ctx, sendpasswordresettoken.Input{Email: "user@example.com"})
	require.NoError(t, err)
	require.Equal(t, sendpasswordresettoken.Initiated, sent.Outcome)

	link := sender.LastSent().Link
	token := user.PasswordResetToken(link.Query().Get(user.PasswordResetTokenParam))
	require.Equal(t, user.PasswordResetToken("flow-token"), token)
	require.Equal(t, "/reset-password", link.Path)

	validated, err := validate.Run(ctx, validatepasswordresettoken.Input{Token: token})
	require.NoError(t, err)
	require.True(t, validated.IsValid)

	result, err := reset.Run(ctx, Input{Token: token, NewPassword: "Password1!", ConfirmPassword: "Password1!"})
	require.NoError(t, err)
	require.Equal(t, Completed, result.Outcome)

	u, err := users.GetByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	require.True(t, hasher.ValidatePassword("Password1!", u.PasswordHash))

	validated, err = validate.Run(ctx, validatepasswordresettoken.Input{Token: token})
	require.NoError(t, err)
	require.False(t, validated.IsValid)

	result, err = reset.Run(ctx, Input{Token: token, NewPassword: "Password2!", ConfirmPassword: "Password2!"})
	require.NoError(t, err)
	require.Equal(t, InvalidOrExpiredToken, result.Outcome)
}

func TestNeverIssuedTokenIsRejected(t *testing.T) {
	unitOfWork := uow.NewFakeUnitOfWork()
	resetter := passwordresetter.New(user.NewFakePasswordResetTokenGenerator(), 1, time.Now)
	reset := New(logging.NewFakeLogger(), unitOfWork, resetter, user.NewFakePasswordHasher())
	validate := validatepasswordresettoken.New(logging.NewFakeLogger(), unitOfWork.Context.UserRepository, resetter)

	validated, err := validate.Run(context.Background(), validatepasswordresettoken.Input{Token: "bad-token"})
	require.NoError(t, err)
	require.False(t, validated.IsValid)

	result, err := reset.Run(context.Background(), Input{
		Token:           "bad-token",
		NewPassword:     "Password1!",
		ConfirmPassword: "Password1!",
	})
	require.NoError(t, err)
	require.Equal(t, InvalidOrExpiredToken, result.Outcome)
}
