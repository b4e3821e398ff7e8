package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash, never plaintext.
//
// ResetCode and ResetCodeExpiresAt are both set or both nil; they are only
// mutated together (issue sets both, finalize clears both).
type User struct {
	ID                 string
	Email              string
	Password           string
	Name               string
	Birthdate          *time.Time
	AvatarURL          string
	ResetCode          *string
	ResetCodeExpiresAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasActiveResetCode reports whether a reset code is bound and not yet expired
// at the given instant.
func (u *User) HasActiveResetCode(now time.Time) bool {
	return u.ResetCode != nil && u.ResetCodeExpiresAt != nil && now.Before(*u.ResetCodeExpiresAt)
}
