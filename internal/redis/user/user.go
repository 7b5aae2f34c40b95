package user

import (
	"context"
	"errors"
	"fmt"
	c "forgotpassword/internal/core/domain/common"
	e "forgotpassword/internal/core/domain/errors"
	"forgotpassword/internal/core/domain/user"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v9"
)

const (
	userKeyPrefix       = "user:"
	resetTokenKeyPrefix = "reset_token:"
	userIDCounterKey    = "user_id_seq"
)

func userKey(email c.Email) string {
	return userKeyPrefix + string(email)
}

func resetTokenKey(token user.PasswordResetToken) string {
	return resetTokenKeyPrefix + string(token)
}

// RedisUserRepository writes users through Lua scripts. A repository
// created by a unit of work queues Save calls until commit and refuses to
// overwrite a user that has been changed since it was read.
type RedisUserRepository struct {
	client   *redis.Client
	now      func() time.Time
	buffered bool
	versions map[user.ID]string
	pending  []user.User
	lock     sync.Mutex
}

func NewRedisRepository(client *redis.Client, now func() time.Time) *RedisUserRepository {
	return newRedisRepository(client, now, false)
}

func newRedisRepository(client *redis.Client, now func() time.Time, buffered bool) *RedisUserRepository {
	if client == nil {
		panic(e.NewNilArgumentError("client"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &RedisUserRepository{
		client:   client,
		now:      now,
		buffered: buffered,
		versions: make(map[user.ID]string),
	}
}

// Create provisions an account. It is not part of UserRepository and is used
// to seed users, for example in tests.
func (r *RedisUserRepository) Create(ctx context.Context, input user.CreateUserInput) (u user.User, err error) {
	id, err := createUserScript.Run(
		ctx,
		r.client,
		[]string{userKey(input.Email), userIDCounterKey},
		string(input.Email),
		input.DisplayName,
		string(input.PasswordHash),
	).Int64()
	if err != nil {
		return u, err
	}
	if id == 0 {
		return u, user.ErrEmailAlreadyExists
	}
	u = user.User{
		ID:           user.ID(id),
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		PasswordHash: input.PasswordHash,
	}
	r.rememberVersion(u.ID, "1")
	return u, nil
}

func (r *RedisUserRepository) GetByEmail(ctx context.Context, email c.Email) (u user.User, err error) {
	fields, err := r.client.HGetAll(ctx, userKey(email)).Result()
	if err != nil {
		return u, err
	}
	if len(fields) == 0 {
		return u, user.ErrUserDoesNotExist
	}
	u, err = decodeUser(fields)
	if err != nil {
		return u, err
	}
	r.rememberVersion(u.ID, fields["version"])
	return u, nil
}

func (r *RedisUserRepository) GetByResetToken(
	ctx context.Context,
	token user.PasswordResetToken,
) (u user.User, err error) {
	if token == "" {
		return u, user.ErrUserDoesNotExist
	}
	email, err := r.client.Get(ctx, resetTokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return u, user.ErrUserDoesNotExist
	}
	if err != nil {
		return u, err
	}
	u, err = r.GetByEmail(ctx, c.Email(email))
	if err != nil {
		return user.User{}, err
	}
	// The index entry may outlive a token that has been replaced or cleared.
	if !u.ResetToken.IsPresent || u.ResetToken.Value != token {
		return user.User{}, user.ErrUserDoesNotExist
	}
	return u, nil
}

func (r *RedisUserRepository) Save(ctx context.Context, u user.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if !r.buffered {
		return r.save(ctx, u)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix := range r.pending {
		if r.pending[ix].ID == u.ID {
			r.pending[ix] = u
			return nil
		}
	}
	r.pending = append(r.pending, u)
	return nil
}

func (r *RedisUserRepository) flush(ctx context.Context) error {
	r.lock.Lock()
	pending := r.pending
	r.pending = nil
	r.lock.Unlock()
	for _, u := range pending {
		if err := r.save(ctx, u); err != nil {
			return err
		}
	}
	return nil
}

func (r *RedisUserRepository) discard() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.pending = nil
}

func (r *RedisUserRepository) save(ctx context.Context, u user.User) error {
	var token, expiry string
	ttl := int64(1)
	if u.ResetToken.IsPresent {
		token = string(u.ResetToken.Value)
		expiry = u.ResetTokenExpiry.Value.UTC().Format(time.RFC3339Nano)
		if remaining := u.ResetTokenExpiry.Value.Sub(r.now()).Milliseconds(); remaining > ttl {
			ttl = remaining
		}
	}
	version, err := saveUserScript.Run(
		ctx,
		r.client,
		[]string{userKey(u.Email)},
		r.expectedVersion(u.ID),
		strconv.FormatInt(int64(u.ID), 10),
		string(u.PasswordHash),
		token,
		expiry,
		ttl,
		resetTokenKeyPrefix,
		string(u.Email),
	).Int64()
	if err != nil {
		return err
	}
	switch version {
	case 0:
		return user.ErrUserDoesNotExist
	case -1:
		return user.ErrConcurrentUpdate
	}
	r.rememberVersion(u.ID, strconv.FormatInt(version, 10))
	return nil
}

func (r *RedisUserRepository) rememberVersion(id user.ID, version string) {
	if !r.buffered {
		return
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.versions[id] = version
}

func (r *RedisUserRepository) expectedVersion(id user.ID) string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.versions[id]
}

func decodeUser(fields map[string]string) (u user.User, err error) {
	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return u, e.NewInvalidStateError(fmt.Sprintf("user id %q is not a number", fields["id"]))
	}
	u = user.User{
		ID:           user.ID(id),
		Email:        c.Email(fields["email"]),
		DisplayName:  fields["display_name"],
		PasswordHash: user.PasswordHash(fields["password_hash"]),
	}
	if token := fields["reset_token"]; token != "" {
		u.ResetToken = c.Some(user.PasswordResetToken(token))
	}
	if raw := fields["reset_token_expiry"]; raw != "" {
		expiry, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return user.User{}, e.NewInvalidStateError(fmt.Sprintf("reset token expiry %q is not a time", raw))
		}
		u.ResetTokenExpiry = c.Some(expiry.UTC())
	}
	if err := u.Validate(); err != nil {
		return user.User{}, err
	}
	return u, nil
}
