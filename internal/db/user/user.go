package user

import (
	"context"
	"errors"
	c "forgotpassword/internal/core/domain/common"
	"forgotpassword/internal/core/domain/user"
	"forgotpassword/internal/db"
	"time"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

const EMAIL_CONSTRAINT_NAME = "user_email_idx"

const userColumns = `id, email, display_name, password_hash, reset_token, reset_token_expiry`

const createUserQuery = `
INSERT INTO "user" (email, display_name, password_hash)
VALUES ($1, $2, $3)
RETURNING ` + userColumns

const getUserByEmailQuery = `
SELECT ` + userColumns + ` FROM "user"
WHERE email = $1
FOR UPDATE`

const getUserByResetTokenQuery = `
SELECT ` + userColumns + ` FROM "user"
WHERE reset_token = $1
FOR UPDATE`

const saveUserQuery = `
UPDATE "user"
SET password_hash = $2, reset_token = $3, reset_token_expiry = $4
WHERE id = $1`

type PgxUserRepository struct {
	db db.DBTX
}

func NewPgxRepository(db db.DBTX) *PgxUserRepository {
	if db == nil {
		panic("Argument db must not be nil.")
	}
	return &PgxUserRepository{db: db}
}

// Create provisions an account. It is not part of UserRepository and is used
// to seed users, for example in tests.
func (r *PgxUserRepository) Create(ctx context.Context, input user.CreateUserInput) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		createUserQuery,
		string(input.Email),
		input.DisplayName,
		string(input.PasswordHash),
	)
	u, err = scanUser(row)
	if db.IsUniqueViolation(err, EMAIL_CONSTRAINT_NAME) {
		return u, user.ErrEmailAlreadyExists
	}
	return u, err
}

func (r *PgxUserRepository) GetByEmail(ctx context.Context, email c.Email) (u user.User, err error) {
	u, err = scanUser(r.db.QueryRow(ctx, getUserByEmailQuery, string(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return u, user.ErrUserDoesNotExist
	}
	return u, err
}

func (r *PgxUserRepository) GetByResetToken(
	ctx context.Context,
	token user.PasswordResetToken,
) (u user.User, err error) {
	if token == "" {
		return u, user.ErrUserDoesNotExist
	}
	u, err = scanUser(r.db.QueryRow(ctx, getUserByResetTokenQuery, string(token)))
	if errors.Is(err, pgx.ErrNoRows) {
		return u, user.ErrUserDoesNotExist
	}
	return u, err
}

func (r *PgxUserRepository) Save(ctx context.Context, u user.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	tag, err := r.db.Exec(
		ctx,
		saveUserQuery,
		int64(u.ID),
		string(u.PasswordHash),
		encodeResetToken(u.ResetToken),
		encodeOptionalTime(u.ResetTokenExpiry),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserDoesNotExist
	}
	return nil
}

func scanUser(row pgx.Row) (u user.User, err error) {
	var (
		id           int64
		email        string
		displayName  string
		passwordHash string
		resetToken   pgtype.Text
		expiry       pgtype.Timestamptz
	)
	err = row.Scan(&id, &email, &displayName, &passwordHash, &resetToken, &expiry)
	if err != nil {
		return u, err
	}
	u = user.User{
		ID:           user.ID(id),
		Email:        c.Email(email),
		DisplayName:  displayName,
		PasswordHash: user.PasswordHash(passwordHash),
		ResetToken: c.NewOptional(
			user.PasswordResetToken(resetToken.String),
			resetToken.Status == pgtype.Present,
		),
		ResetTokenExpiry: c.NewOptional(expiry.Time.UTC(), expiry.Status == pgtype.Present),
	}
	if err = u.Validate(); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func encodeResetToken(token c.Optional[user.PasswordResetToken]) pgtype.Text {
	if !token.IsPresent {
		return pgtype.Text{Status: pgtype.Null}
	}
	return pgtype.Text{String: string(token.Value), Status: pgtype.Present}
}

func encodeOptionalTime(at c.Optional[time.Time]) pgtype.Timestamptz {
	if !at.IsPresent {
		return pgtype.Timestamptz{Status: pgtype.Null}
	}
	return pgtype.Timestamptz{Time: at.Value, Status: pgtype.Present}
}
