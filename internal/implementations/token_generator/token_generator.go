package tokengenerator

import (
	"forgotpassword/internal/core/domain/user"

	"github.com/google/uuid"
)

// UUID generates version 4 UUIDs. They carry 122 bits from crypto/rand and
// consist of hex digits and dashes only, so they are safe to put in a URL
// as is.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

func (g *UUID) GeneratePasswordResetToken() user.PasswordResetToken {
	return user.PasswordResetToken(uuid.NewString())
}
