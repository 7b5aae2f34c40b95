package user

import (
	"context"
	"crypto/md5"
	"fmt"
	c "forgotpassword/internal/core/domain/common"
	"io"
	"net/url"
	"sync"
)

type FakePasswordHasher struct{}

func NewFakePasswordHasher() *FakePasswordHasher {
	return &FakePasswordHasher{}
}

func (h *FakePasswordHasher) HashPassword(password RawPassword) (PasswordHash, error) {
	hash := md5.New()
	io.WriteString(hash, string(password))
	return PasswordHash(fmt.Sprintf("%x", hash.Sum(nil))), nil
}

func (h *FakePasswordHasher) ValidatePassword(password RawPassword, hash PasswordHash) bool {
	actualHash, err := h.HashPassword(password)
	if err != nil {
		return false
	}
	return actualHash == hash
}

type FakeUserRepository struct {
	Users       []User
	SaveCount   int
	ReturnError bool
	lock        sync.Mutex
}

func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{Users: make([]User, 0, 10)}
}

// Create seeds a user for tests.
func (r *FakeUserRepository) Create(ctx context.Context, input CreateUserInput) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not create user %v", input.Email)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	maxID := ID(0)
	for _, u := range r.Users {
		if u.Email == input.Email {
			return u, ErrEmailAlreadyExists
		}
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	u = User{
		ID:           maxID + 1,
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		PasswordHash: input.PasswordHash,
	}
	r.Users = append(r.Users, u)
	return u, nil
}

func (r *FakeUserRepository) GetByEmail(ctx context.Context, email c.Email) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not get user by email")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, u := range r.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return u, ErrUserDoesNotExist
}

func (r *FakeUserRepository) GetByResetToken(ctx context.Context, token PasswordResetToken) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not get user by reset token")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, u := range r.Users {
		if u.ResetToken.IsPresent && u.ResetToken.Value == token {
			return u, nil
		}
	}
	return u, ErrUserDoesNotExist
}

func (r *FakeUserRepository) Save(ctx context.Context, u User) error {
	if r.ReturnError {
		return fmt.Errorf("could not save user %d", u.ID)
	}
	if err := u.Validate(); err != nil {
		return err
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix := range r.Users {
		if r.Users[ix].ID == u.ID {
			r.Users[ix].PasswordHash = u.PasswordHash
			r.Users[ix].ResetToken = u.ResetToken
			r.Users[ix].ResetTokenExpiry = u.ResetTokenExpiry
			r.SaveCount++
			return nil
		}
	}
	return ErrUserDoesNotExist
}

type FakePasswordResetTokenGenerator struct {
	Tokens []PasswordResetToken
	next   int
	lock   sync.Mutex
}

// NewFakePasswordResetTokenGenerator returns the given tokens in order and
// then keeps numbering them.
func NewFakePasswordResetTokenGenerator(tokens ...string) *FakePasswordResetTokenGenerator {
	g := &FakePasswordResetTokenGenerator{}
	for _, token := range tokens {
		g.Tokens = append(g.Tokens, PasswordResetToken(token))
	}
	return g
}

func (g *FakePasswordResetTokenGenerator) GeneratePasswordResetToken() PasswordResetToken {
	g.lock.Lock()
	defer g.lock.Unlock()
	ix := g.next
	g.next++
	if ix < len(g.Tokens) {
		return g.Tokens[ix]
	}
	return PasswordResetToken(fmt.Sprintf("fake-password-reset-token-%d", ix))
}

type SentPasswordResetLink struct {
	Email       c.Email
	Link        url.URL
	DisplayName string
}

type FakePasswordResetLinkSender struct {
	Sent        []SentPasswordResetLink
	ReturnError bool
	lock        sync.Mutex
}

func NewFakePasswordResetLinkSender() *FakePasswordResetLinkSender {
	return &FakePasswordResetLinkSender{}
}

func (s *FakePasswordResetLinkSender) SendPasswordResetLink(
	ctx context.Context,
	email c.Email,
	link url.URL,
	displayName string,
) error {
	if s.ReturnError {
		return fmt.Errorf("could not send password reset link")
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Sent = append(s.Sent, SentPasswordResetLink{Email: email, Link: link, DisplayName: displayName})
	return nil
}

func (s *FakePasswordResetLinkSender) SentCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.Sent)
}

func (s *FakePasswordResetLinkSender) LastSent() SentPasswordResetLink {
	s.lock.Lock()
	defer s.lock.Unlock()
	l := len(s.Sent)
	if l == 0 {
		panic("Sent count is 0.")
	}
	return s.Sent[l-1]
}
