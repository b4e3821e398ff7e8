package repository

import (
	"context"
	"errors"
	"time"

	"github.com/userhub/accounts-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned by Create when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the persistence operations the account core needs.
//
// SetResetCode, ClearResetCode and UpdatePassword are single-row atomic
// updates; concurrent reset issues for the same account resolve
// last-writer-wins at the store, no cross-request locking.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateProfile(ctx context.Context, u *entity.User) error

	// SetResetCode binds a reset code and its expiry to the account in one
	// statement, replacing any previous code.
	SetResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error

	// ClearResetCode nulls both reset fields.
	ClearResetCode(ctx context.Context, userID string) error

	// UpdatePassword commits a new password hash and clears both reset
	// fields in the same statement.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}
