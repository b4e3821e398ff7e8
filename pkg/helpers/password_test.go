package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", hash)

	assert.True(t, CompareHashAndPassword(hash, "Secret123"))
	assert.False(t, CompareHashAndPassword(hash, "secret123"))
	assert.False(t, CompareHashAndPassword(hash, ""))
}

func TestPasswordStrong(t *testing.T) {
	cases := []struct {
		pw string
		ok bool
	}{
		{"Abcdef12", true},
		{"Password1", true},
		{"xY3xY3xY3", true},
		{"abcdefgh", false}, // no digit, no upper
		{"ABCDEFGH", false}, // no digit, no lower
		{"Abcdefgh", false}, // no digit
		{"abcdefg1", false}, // no upper
		{"ABCDEFG1", false}, // no lower
		{"Ab1", false},      // too short
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, PasswordStrong(tc.pw), "password %q", tc.pw)
	}
}
