package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetTokenRoundTrip(t *testing.T) {
	s := NewResetTokenSigner("secret", 300*time.Second)

	token, err := s.Sign("user@x.com", "jti-1")
	require.NoError(t, err)

	claims, err := s.Verify(token, "user@x.com")
	require.NoError(t, err)
	assert.Equal(t, "user@x.com", claims.Email)
	assert.Equal(t, ActionResetPassword, claims.Action)
	assert.Equal(t, "jti-1", claims.ID)
}

func TestResetTokenWrongEmail(t *testing.T) {
	s := NewResetTokenSigner("secret", 300*time.Second)
	token, err := s.Sign("user@x.com", "jti-1")
	require.NoError(t, err)

	_, err = s.Verify(token, "other@x.com")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetTokenWrongSecret(t *testing.T) {
	a := NewResetTokenSigner("secret-a", 300*time.Second)
	b := NewResetTokenSigner("secret-b", 300*time.Second)
	token, err := a.Sign("user@x.com", "jti-1")
	require.NoError(t, err)

	_, err = b.Verify(token, "user@x.com")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetTokenTampered(t *testing.T) {
	s := NewResetTokenSigner("secret", 300*time.Second)
	token, err := s.Sign("user@x.com", "jti-1")
	require.NoError(t, err)

	_, err = s.Verify(token+"x", "user@x.com")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)

	_, err = s.Verify("", "user@x.com")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetTokenExpired(t *testing.T) {
	s := NewResetTokenSigner("secret", time.Nanosecond)
	token, err := s.Sign("user@x.com", "jti-1")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond) // iat resolves to whole seconds

	_, err = s.Verify(token, "user@x.com")
	assert.ErrorIs(t, err, ErrResetTokenExpired)
}

func TestResetTokenMissingIssuedAt(t *testing.T) {
	s := NewResetTokenSigner("secret", 300*time.Second)
	claims := &ResetClaims{
		Email:  "user@x.com",
		Action: ActionResetPassword,
		RegisteredClaims: jwt.RegisteredClaims{
			ID: "jti-1",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = s.Verify(token, "user@x.com")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetTokenWrongAction(t *testing.T) {
	s := NewResetTokenSigner("secret", 300*time.Second)
	claims := &ResetClaims{
		Email:  "user@x.com",
		Action: "something_else",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       "jti-1",
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = s.Verify(token, "user@x.com")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetTokenNoneAlgorithmRejected(t *testing.T) {
	s := NewResetTokenSigner("secret", 300*time.Second)
	claims := &ResetClaims{
		Email:  "user@x.com",
		Action: ActionResetPassword,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       "jti-1",
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.Verify(token, "user@x.com")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}
