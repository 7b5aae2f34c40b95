package user

import (
	"context"
	e "forgotpassword/internal/core/domain/errors"
	uow "forgotpassword/internal/core/domain/unit_of_work"
	"forgotpassword/internal/core/domain/user"
	"time"

	"github.com/go-redis/redis/v9"
)

type redisUnitOfWorkContext struct {
	users *RedisUserRepository
}

func (c *redisUnitOfWorkContext) Commit(ctx context.Context) error {
	return c.users.flush(ctx)
}

func (c *redisUnitOfWorkContext) Rollback(ctx context.Context) error {
	c.users.discard()
	return nil
}

func (c *redisUnitOfWorkContext) Users() user.UserRepository {
	return c.users
}

type RedisUnitOfWork struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisUnitOfWork(client *redis.Client, now func() time.Time) *RedisUnitOfWork {
	if client == nil {
		panic(e.NewNilArgumentError("client"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &RedisUnitOfWork{client: client, now: now}
}

func (u *RedisUnitOfWork) Begin(ctx context.Context) (uow.Context, error) {
	return &redisUnitOfWorkContext{users: newRedisRepository(u.client, u.now, true)}, nil
}
