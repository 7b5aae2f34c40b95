package user

import (
	"fmt"
	c "forgotpassword/internal/core/domain/common"
	e "forgotpassword/internal/core/domain/errors"
	"time"
)

type ID int64

type PasswordHash string

func (p PasswordHash) String() string {
	return "***"
}

type RawPassword string

func (p RawPassword) String() string {
	return "***"
}

type User struct {
	ID               ID
	Email            c.Email
	DisplayName      string
	PasswordHash     PasswordHash
	ResetToken       c.Optional[PasswordResetToken]
	ResetTokenExpiry c.Optional[time.Time]
}

func (u *User) Validate() error {
	if u.Email == "" {
		return e.NewInvalidStateError(fmt.Sprintf("email is not set for user %d", u.ID))
	}
	if u.ResetToken.IsPresent != u.ResetTokenExpiry.IsPresent {
		return e.NewInvalidStateError(
			fmt.Sprintf("reset token and its expiry must be set together for user %d", u.ID),
		)
	}
	if u.ResetToken.IsPresent && u.ResetToken.Value == "" {
		return e.NewInvalidStateError(fmt.Sprintf("reset token is empty for user %d", u.ID))
	}
	return nil
}

// SetResetToken replaces any pending reset token.
func (u *User) SetResetToken(token PasswordResetToken, expiry time.Time) {
	u.ResetToken = c.Some(token)
	u.ResetTokenExpiry = c.Some(expiry)
}

func (u *User) ClearResetToken() {
	u.ResetToken = c.None[PasswordResetToken]()
	u.ResetTokenExpiry = c.None[time.Time]()
}

// CompletePasswordReset stores the new hash and burns the reset token in the
// same mutation, so a single Save persists both.
func (u *User) CompletePasswordReset(hash PasswordHash) {
	u.PasswordHash = hash
	u.ClearResetToken()
}

// HasValidResetToken reports whether token is the user's pending token and
// it expires strictly after now.
func (u *User) HasValidResetToken(token PasswordResetToken, now time.Time) bool {
	if token == "" || !u.ResetToken.IsPresent || !u.ResetTokenExpiry.IsPresent {
		return false
	}
	if u.ResetToken.Value != token {
		return false
	}
	return u.ResetTokenExpiry.Value.After(now)
}
