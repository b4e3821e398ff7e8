package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ActionResetPassword is the only action a reset token may assert.
const ActionResetPassword = "reset_password"

var (
	// ErrResetTokenExpired means the signature checked out but the token is
	// older than the allowed age.
	ErrResetTokenExpired = errors.New("reset token expired")
	// ErrResetTokenInvalid covers tampering, wrong signing method, missing
	// claims, or a claims/identity mismatch.
	ErrResetTokenInvalid = errors.New("invalid reset token")
)

// ResetTokenSigner mints and verifies the short-lived signed assertion that
// substitutes for the emailed code once verified. Tokens are stateless: the
// only checks are the HMAC signature and the issued-at age. The jti claim is
// carried so the finalizer can mark a token consumed.
type ResetTokenSigner struct {
	secret []byte
	maxAge time.Duration
}

func NewResetTokenSigner(secret string, maxAge time.Duration) *ResetTokenSigner {
	return &ResetTokenSigner{secret: []byte(secret), maxAge: maxAge}
}

// MaxAge returns the configured maximum token age.
func (s *ResetTokenSigner) MaxAge() time.Duration { return s.maxAge }

// ResetClaims binds {email, action} with issuance time and a nonce.
type ResetClaims struct {
	Email  string `json:"email"`
	Action string `json:"action"`
	jwt.RegisteredClaims
}

// Sign mints a reset token for the given email with a fresh jti.
func (s *ResetTokenSigner) Sign(email, jti string) (string, error) {
	claims := &ResetClaims{
		Email:  email,
		Action: ActionResetPassword,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       jti,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks signature and age, then that the claims bind the expected
// email and the reset_password action. Age past maxAge yields
// ErrResetTokenExpired; every other failure yields ErrResetTokenInvalid.
func (s *ResetTokenSigner) Verify(tokenStr, email string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrResetTokenInvalid
	}
	if claims.IssuedAt == nil {
		return nil, ErrResetTokenInvalid
	}
	if time.Since(claims.IssuedAt.Time) > s.maxAge {
		return nil, ErrResetTokenExpired
	}
	if claims.Email != email || claims.Action != ActionResetPassword {
		return nil, ErrResetTokenInvalid
	}
	return claims, nil
}
