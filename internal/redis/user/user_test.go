package user

import (
	"context"
	c "forgotpassword/internal/core/domain/common"
	"forgotpassword/internal/core/domain/user"
	redisdb "forgotpassword/internal/redis"
	"testing"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/stretchr/testify/suite"
)

const (
	EMAIL         = "test@test.test"
	DISPLAY_NAME  = "Test"
	PASSWORD_HASH = "test-password-hash"
	TOKEN         = "test-reset-token"
)

var NOW time.Time = time.Date(2020, 6, 6, 15, 30, 30, 0, time.UTC)

type testSuite struct {
	suite.Suite
	client *redis.Client
	repo   *RedisUserRepository
	uow    *RedisUnitOfWork
}

func (suite *testSuite) SetupSuite() {
	suite.client = redisdb.CreateTestClient(suite.T())
	now := func() time.Time { return NOW }
	suite.repo = NewRedisRepository(suite.client, now)
	suite.uow = NewRedisUnitOfWork(suite.client, now)
}

func (suite *testSuite) TearDownSuite() {
	suite.client.Close()
}

func (suite *testSuite) TearDownTest() {
	redisdb.FlushTestDB(suite.client)
}

func TestRedisUserRepository(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestCreateAndGetByEmail() {
	created := s.createUser()

	u, err := s.repo.GetByEmail(context.Background(), EMAIL)

	assert := s.Require()
	assert.NoError(err)
	assert.Equal(created, u)
	assert.NotEqual(user.ID(0), u.ID)
	assert.Equal(DISPLAY_NAME, u.DisplayName)
	assert.False(u.ResetToken.IsPresent)

	_, err = s.repo.GetByEmail(context.Background(), "unknown@test.test")
	assert.ErrorIs(err, user.ErrUserDoesNotExist)
}

func (s *testSuite) TestEmailAlreadyExistsError() {
	s.createUser()
	_, err := s.repo.Create(context.Background(), user.CreateUserInput{Email: EMAIL, PasswordHash: "x"})
	s.Require().ErrorIs(err, user.ErrEmailAlreadyExists)
}

func (s *testSuite) TestSaveResetTokenSetsIndexWithTTL() {
	u := s.createUser()
	u.SetResetToken(TOKEN, NOW.Add(time.Hour))
	s.Require().NoError(s.repo.Save(context.Background(), u))

	stored, err := s.repo.GetByResetToken(context.Background(), TOKEN)
	assert := s.Require()
	assert.NoError(err)
	assert.Equal(u.ID, stored.ID)
	assert.True(stored.ResetTokenExpiry.Value.Equal(NOW.Add(time.Hour)))

	ttl, err := s.client.PTTL(context.Background(), resetTokenKey(TOKEN)).Result()
	assert.NoError(err)
	assert.Greater(ttl, 59*time.Minute)
	assert.LessOrEqual(ttl, time.Hour)
}

func (s *testSuite) TestNewTokenReplacesIndex() {
	u := s.createUser()
	u.SetResetToken(TOKEN, NOW.Add(time.Hour))
	s.Require().NoError(s.repo.Save(context.Background(), u))
	u.SetResetToken("other-token", NOW.Add(time.Hour))
	s.Require().NoError(s.repo.Save(context.Background(), u))

	_, err := s.repo.GetByResetToken(context.Background(), TOKEN)
	s.Require().ErrorIs(err, user.ErrUserDoesNotExist)
	exists, err := s.client.Exists(context.Background(), resetTokenKey(TOKEN)).Result()
	s.Require().NoError(err)
	s.Require().Equal(int64(0), exists)

	_, err = s.repo.GetByResetToken(context.Background(), "other-token")
	s.Require().NoError(err)
}

func (s *testSuite) TestCompletePasswordResetClearsToken() {
	u := s.createUser()
	u.SetResetToken(TOKEN, NOW.Add(time.Hour))
	s.Require().NoError(s.repo.Save(context.Background(), u))
	u.CompletePasswordReset("new-password-hash")
	s.Require().NoError(s.repo.Save(context.Background(), u))

	stored, err := s.repo.GetByEmail(context.Background(), EMAIL)
	assert := s.Require()
	assert.NoError(err)
	assert.Equal(user.PasswordHash("new-password-hash"), stored.PasswordHash)
	assert.False(stored.ResetToken.IsPresent)
	assert.False(stored.ResetTokenExpiry.IsPresent)

	_, err = s.repo.GetByResetToken(context.Background(), TOKEN)
	assert.ErrorIs(err, user.ErrUserDoesNotExist)
}

func (s *testSuite) TestSaveReturnsErrorIfUserDoesNotExist() {
	u := s.createUser()
	u.ID = 111222333
	s.Require().ErrorIs(s.repo.Save(context.Background(), u), user.ErrUserDoesNotExist)
}

func (s *testSuite) TestUnitOfWorkRollbackDiscardsChanges() {
	s.createUser()
	ctx := context.Background()

	uow, err := s.uow.Begin(ctx)
	s.Require().NoError(err)
	u, err := uow.Users().GetByEmail(ctx, EMAIL)
	s.Require().NoError(err)
	u.SetResetToken(TOKEN, NOW.Add(time.Hour))
	s.Require().NoError(uow.Users().Save(ctx, u))
	s.Require().NoError(uow.Rollback(ctx))

	stored, err := s.repo.GetByEmail(ctx, EMAIL)
	s.Require().NoError(err)
	s.Require().False(stored.ResetToken.IsPresent)
}

func (s *testSuite) TestUnitOfWorkDetectsConcurrentUpdate() {
	u := s.createUser()
	u.SetResetToken(TOKEN, NOW.Add(time.Hour))
	s.Require().NoError(s.repo.Save(context.Background(), u))
	ctx := context.Background()

	first, err := s.uow.Begin(ctx)
	s.Require().NoError(err)
	second, err := s.uow.Begin(ctx)
	s.Require().NoError(err)

	firstUser, err := first.Users().GetByResetToken(ctx, TOKEN)
	s.Require().NoError(err)
	secondUser, err := second.Users().GetByResetToken(ctx, TOKEN)
	s.Require().NoError(err)

	firstUser.CompletePasswordReset("first-hash")
	s.Require().NoError(first.Users().Save(ctx, firstUser))
	secondUser.CompletePasswordReset("second-hash")
	s.Require().NoError(second.Users().Save(ctx, secondUser))

	s.Require().NoError(first.Commit(ctx))
	s.Require().ErrorIs(second.Commit(ctx), user.ErrConcurrentUpdate)

	stored, err := s.repo.GetByEmail(ctx, EMAIL)
	s.Require().NoError(err)
	s.Require().Equal(user.PasswordHash("first-hash"), stored.PasswordHash)
}

func (s *testSuite) createUser() user.User {
	s.T().Helper()
	u, err := s.repo.Create(context.Background(), user.CreateUserInput{
		Email:        c.NewEmail(EMAIL),
		DisplayName:  DISPLAY_NAME,
		PasswordHash: PASSWORD_HASH,
	})
	if err != nil {
		s.FailNowf("could not create user", "err: %v", err)
	}
	return u
}
