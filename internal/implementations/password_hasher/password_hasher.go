package passwordhasher

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"forgotpassword/internal/core/domain/user"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt peppers passwords with the server secret. The password is first
// reduced to a fixed-size HMAC so that bcrypt never sees more than 72 bytes.
type Bcrypt struct {
	secret []byte
	cost   int
}

func NewBcrypt(secret string, cost int) *Bcrypt {
	return &Bcrypt{secret: []byte(secret), cost: cost}
}

func (h *Bcrypt) HashPassword(password user.RawPassword) (hash user.PasswordHash, err error) {
	bcryptHash, err := bcrypt.GenerateFromPassword(h.pepper(password), h.cost)
	if err != nil {
		return hash, err
	}
	return user.PasswordHash(bcryptHash), nil
}

func (h *Bcrypt) ValidatePassword(password user.RawPassword, hash user.PasswordHash) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), h.pepper(password))
	return err == nil
}

func (h *Bcrypt) pepper(password user.RawPassword) []byte {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(password))
	sum := mac.Sum(nil)
	encoded := make([]byte, base64.RawStdEncoding.EncodedLen(len(sum)))
	base64.RawStdEncoding.Encode(encoded, sum)
	return encoded
}
