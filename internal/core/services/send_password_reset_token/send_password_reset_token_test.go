package sendpasswordresettoken

import (
	"context"
	c "forgotpassword/internal/core/domain/common"
	"forgotpassword/internal/core/domain/logging"
	uow "forgotpassword/internal/core/domain/unit_of_work"
	"forgotpassword/internal/core/domain/user"
	"forgotpassword/internal/core/services"
	passwordresetter "forgotpassword/internal/implementations/password_resetter"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	EMAIL        = c.Email("user@example.com")
	DISPLAY_NAME = "Test User"
)

var Now = time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)

type testSuite struct {
	suite.Suite
	Logger     *logging.FakeLogger
	UnitOfWork *uow.FakeUnitOfWork
	Sender     *user.FakePasswordResetLinkSender
	Service    services.Service[Input, Result]
}

func (suite *testSuite) SetupTest() {
	suite.Logger = logging.NewFakeLogger()
	suite.UnitOfWork = uow.NewFakeUnitOfWork()
	suite.Sender = user.NewFakePasswordResetLinkSender()
	baseURL, err := url.Parse("https://app.example.com")
	suite.Require().NoError(err)
	suite.Service = New(
		suite.Logger,
		suite.UnitOfWork,
		passwordresetter.New(
			user.NewFakePasswordResetTokenGenerator("token-1", "token-2"),
			1,
			func() time.Time { return Now },
		),
		suite.Sender,
		*baseURL,
	)

	_, err = suite.UnitOfWork.Context.UserRepository.Create(context.Background(), user.CreateUserInput{
		Email:        EMAIL,
		DisplayName:  DISPLAY_NAME,
		PasswordHash: "test",
	})
	suite.Require().NoError(err)
}

func TestSendPasswordResetTokenService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (suite *testSuite) TestSuccess() {
	result, err := suite.Service.Run(context.Background(), Input{Email: EMAIL})

	assert := suite.Require()
	assert.NoError(err)
	assert.Equal(Initiated, result.Outcome)
	assert.Equal(user.PasswordResetToken("token-1"), result.Token)
	assert.True(suite.UnitOfWork.Context.WasCommitCalled)

	assert.Equal(1, suite.Sender.SentCount())
	sent := suite.Sender.LastSent()
	assert.Equal(EMAIL, sent.Email)
	assert.Equal(DISPLAY_NAME, sent.DisplayName)
	assert.Equal("https://app.example.com/reset-password?token=token-1", sent.Link.String())

	stored, err := suite.UnitOfWork.Context.UserRepository.GetByEmail(context.Background(), EMAIL)
	assert.NoError(err)
	assert.True(stored.ResetToken.IsPresent)
	assert.Equal(user.PasswordResetToken("token-1"), stored.ResetToken.Value)
	assert.True(stored.ResetTokenExpiry.Value.Equal(Now.Add(time.Hour)))
}

func (suite *testSuite) TestUnknownEmail() {
	result, err := suite.Service.Run(context.Background(), Input{Email: "nobody@example.com"})

	assert := suite.Require()
	assert.NoError(err)
	assert.Equal(NoSuchUser, result.Outcome)
	assert.Equal(user.PasswordResetToken(""), result.Token)
	assert.Equal(0, suite.Sender.SentCount())
	assert.Equal(0, suite.UnitOfWork.Context.UserRepository.SaveCount)
	assert.False(suite.UnitOfWork.Context.WasCommitCalled)
	assert.True(suite.UnitOfWork.Context.WasRollbackCalled)
}

func (suite *testSuite) TestNotificationFailed() {
	suite.Sender.ReturnError = true
	result, err := suite.Service.Run(context.Background(), Input{Email: EMAIL})

	assert := suite.Require()
	assert.NoError(err)
	assert.Equal(NotificationFailed, result.Outcome)
	assert.True(suite.UnitOfWork.Context.WasCommitCalled)
	assert.Equal(1, suite.Logger.CountLevel(logging.ERROR))

	stored, err := suite.UnitOfWork.Context.UserRepository.GetByEmail(context.Background(), EMAIL)
	assert.NoError(err)
	assert.Equal(user.PasswordResetToken("token-1"), stored.ResetToken.Value)
}

func (suite *testSuite) TestRepeatedRequestReplacesToken() {
	for _, expected := range []user.PasswordResetToken{"token-1", "token-2"} {
		result, err := suite.Service.Run(context.Background(), Input{Email: EMAIL})
		suite.Require().NoError(err)
		suite.Require().Equal(expected, result.Token)
	}

	assert := suite.Require()
	assert.Equal(2, suite.Sender.SentCount())
	stored, err := suite.UnitOfWork.Context.UserRepository.GetByEmail(context.Background(), EMAIL)
	assert.NoError(err)
	assert.Equal(user.PasswordResetToken("token-2"), stored.ResetToken.Value)

	_, err = suite.UnitOfWork.Context.UserRepository.GetByResetToken(context.Background(), "token-1")
	assert.ErrorIs(err, user.ErrUserDoesNotExist)
}

func (suite *testSuite) TestRepositoryError() {
	suite.UnitOfWork.Context.UserRepository.ReturnError = true
	_, err := suite.Service.Run(context.Background(), Input{Email: EMAIL})

	assert := suite.Require()
	assert.Error(err)
	assert.Equal(0, suite.Sender.SentCount())
	assert.False(suite.UnitOfWork.Context.WasCommitCalled)
	assert.True(suite.UnitOfWork.Context.WasRollbackCalled)
}

func (suite *testSuite) TestCommitError() {
	suite.UnitOfWork.Context.CommitReturnError = true
	_, err := suite.Service.Run(context.Background(), Input{Email: EMAIL})

	assert := suite.Require()
	assert.Error(err)
	assert.Equal(0, suite.Sender.SentCount())
}

func (suite *testSuite) TestConcurrentRequestLooksInitiated() {
	suite.UnitOfWork.Context.CommitErr = user.ErrConcurrentUpdate
	result, err := suite.Service.Run(context.Background(), Input{Email: EMAIL})

	assert := suite.Require()
	assert.NoError(err)
	assert.Equal(Initiated, result.Outcome)
	assert.Empty(result.Token)
	assert.Equal(0, suite.Sender.SentCount())
	assert.Equal(0, suite.Logger.CountLevel(logging.ERROR))
}

func (suite *testSuite) TestBeginError() {
	suite.UnitOfWork.BeginReturnError = true
	_, err := suite.Service.Run(context.Background(), Input{Email: EMAIL})

	assert := suite.Require()
	assert.Error(err)
	assert.Equal(0, suite.Sender.SentCount())
}
