package user

import (
	"fmt"
	c "forgotpassword/internal/core/domain/common"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var Now = time.Date(2020, 1, 1, 15, 0, 0, 0, time.UTC)

func TestValidate(t *testing.T) {
	cases := []struct {
		id      string
		u       User
		isValid bool
	}{
		{
			id:      "no-token",
			u:       User{ID: 1, Email: "a@b.c"},
			isValid: true,
		},
		{
			id: "token-with-expiry",
			u: User{
				ID:               1,
				Email:            "a@b.c",
				ResetToken:       c.Some(PasswordResetToken("t")),
				ResetTokenExpiry: c.Some(Now),
			},
			isValid: true,
		},
		{
			id:      "token-without-expiry",
			u:       User{ID: 1, Email: "a@b.c", ResetToken: c.Some(PasswordResetToken("t"))},
			isValid: false,
		},
		{
			id:      "expiry-without-token",
			u:       User{ID: 1, Email: "a@b.c", ResetTokenExpiry: c.Some(Now)},
			isValid: false,
		},
		{
			id: "empty-token",
			u: User{
				ID:               1,
				Email:            "a@b.c",
				ResetToken:       c.Some(PasswordResetToken("")),
				ResetTokenExpiry: c.Some(Now),
			},
			isValid: false,
		},
		{
			id:      "no-email",
			u:       User{ID: 1},
			isValid: false,
		},
	}
	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			err := testcase.u.Validate()
			if testcase.isValid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestResetTokenLifecycle(t *testing.T) {
	u := User{ID: 1, Email: "a@b.c", PasswordHash: "old"}

	u.SetResetToken("first", Now.Add(time.Hour))
	require.True(t, u.HasValidResetToken("first", Now))

	u.SetResetToken("second", Now.Add(time.Hour))
	require.False(t, u.HasValidResetToken("first", Now))
	require.True(t, u.HasValidResetToken("second", Now))

	u.CompletePasswordReset("new")
	require.Equal(t, PasswordHash("new"), u.PasswordHash)
	require.False(t, u.ResetToken.IsPresent)
	require.False(t, u.ResetTokenExpiry.IsPresent)
	require.False(t, u.HasValidResetToken("second", Now))
	require.NoError(t, u.Validate())
}

func TestHasValidResetTokenExpiryBoundary(t *testing.T) {
	expiry := Now.Add(time.Hour)
	u := User{ID: 1, Email: "a@b.c"}
	u.SetResetToken("token", expiry)

	require.True(t, u.HasValidResetToken("token", expiry.Add(-time.Nanosecond)))
	require.False(t, u.HasValidResetToken("token", expiry))
	require.False(t, u.HasValidResetToken("token", expiry.Add(time.Second)))
	require.False(t, u.HasValidResetToken("", Now))
}

func TestSecretsAreNotPrinted(t *testing.T) {
	u := User{ID: 1, Email: "a@b.c", PasswordHash: "secret-hash"}
	u.SetResetToken("secret-token", Now)
	printed := fmt.Sprintf("%v", u)
	require.NotContains(t, printed, "secret-hash")
	require.NotContains(t, printed, "secret-token")
	require.Equal(t, "***", RawPassword("secret").String())
}

func TestNewPasswordResetLink(t *testing.T) {
	cases := []struct {
		base         string
		expected     string
		expectedPath string
	}{
		{
			base:         "http://localhost:8080",
			expected:     "http://localhost:8080/reset-password?token=abc-123",
			expectedPath: "/reset-password",
		},
		{
			base:         "https://app.example.com",
			expected:     "https://app.example.com/reset-password?token=abc-123",
			expectedPath: "/reset-password",
		},
		{
			base:         "https://example.com/",
			expected:     "https://example.com/reset-password?token=abc-123",
			expectedPath: "/reset-password",
		},
		{
			base:         "https://example.com/account",
			expected:     "https://example.com/account/reset-password?token=abc-123",
			expectedPath: "/account/reset-password",
		},
	}
	for _, testcase := range cases {
		t.Run(testcase.base, func(t *testing.T) {
			base, err := url.Parse(testcase.base)
			require.NoError(t, err)
			link := NewPasswordResetLink(*base, PasswordResetToken("abc-123"))
			require.Equal(t, testcase.expected, link.String())
			require.Equal(t, testcase.expectedPath, link.Path)
			require.Equal(t, "abc-123", link.Query().Get(PasswordResetTokenParam))
		})
	}
}
