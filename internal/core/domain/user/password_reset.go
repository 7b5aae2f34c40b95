package user

import (
	"context"
	c "forgotpassword/internal/core/domain/common"
	"net/url"
	"strings"
)

const (
	PasswordResetPath       = "reset-password"
	PasswordResetTokenParam = "token"
)

type PasswordResetToken string

func (t PasswordResetToken) String() string {
	return "***"
}

type PasswordResetTokenGenerator interface {
	GeneratePasswordResetToken() PasswordResetToken
}

// PasswordResetter issues and checks reset tokens. Every method works through
// the given repository so that callers decide the transaction it runs in.
type PasswordResetter interface {
	IssueToken(ctx context.Context, users UserRepository, u User) (User, PasswordResetToken, error)
	IsTokenValid(ctx context.Context, users UserRepository, token PasswordResetToken) (bool, error)
	// ConsumeToken returns the owner of a valid token. The caller must clear
	// the token within the same unit of work.
	ConsumeToken(ctx context.Context, users UserRepository, token PasswordResetToken) (User, bool, error)
}

type PasswordResetLinkSender interface {
	SendPasswordResetLink(ctx context.Context, email c.Email, link url.URL, displayName string) error
}

// NewPasswordResetLink renders <baseURL>/reset-password?token=<token>.
func NewPasswordResetLink(baseURL url.URL, token PasswordResetToken) url.URL {
	link := baseURL.JoinPath(PasswordResetPath)
	// JoinPath keeps an empty base path relative.
	if link.Host != "" && !strings.HasPrefix(link.Path, "/") {
		link.Path = "/" + link.Path
	}
	query := link.Query()
	query.Set(PasswordResetTokenParam, string(token))
	link.RawQuery = query.Encode()
	return *link
}
