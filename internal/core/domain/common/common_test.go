package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptional(t *testing.T) {
	assert := require.New(t)

	optionalInt := NewOptional(42, true)
	assert.Equal(42, optionalInt.Value)
	assert.True(optionalInt.IsPresent)

	optionalString := NewOptional("foo", false)
	assert.Equal("foo", optionalString.Value)
	assert.False(optionalString.IsPresent)

	assert.Equal(NewOptional("bar", true), Some("bar"))
	assert.False(None[int]().IsPresent)
	assert.Zero(None[int]().Value)
}

func TestOptionalString(t *testing.T) {
	present := Some("token")
	absent := None[string]()
	require.Equal(t, "[token]", present.String())
	require.Equal(t, "[-]", absent.String())
}

func TestNewEmail(t *testing.T) {
	cases := []struct {
		raw      string
		expected Email
	}{
		{raw: "user@example.com", expected: "user@example.com"},
		{raw: "User@Example.COM", expected: "user@example.com"},
		{raw: "  user@example.com\t", expected: "user@example.com"},
	}
	for _, testcase := range cases {
		t.Run(testcase.raw, func(t *testing.T) {
			require.Equal(t, testcase.expected, NewEmail(testcase.raw))
		})
	}
}
