package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	repo "github.com/userhub/accounts-api/internal/domain/repository"
	"github.com/userhub/accounts-api/pkg/helpers"
	tpl "github.com/userhub/accounts-api/pkg/mailer/templates"
)

var (
	// ErrInvalidOrExpiredCode is the single undifferentiated verification
	// failure: unknown email, no code bound, mismatch and expiry all collapse
	// into it so a caller cannot tell which check failed.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired reset code")

	ErrMissingFields    = errors.New("missing required fields")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrTokenExpired     = errors.New("reset token expired")
	ErrInvalidToken     = errors.New("invalid reset token")
	ErrDeliveryFailed   = errors.New("failed to deliver reset email")
)

// Notifier delivers a message to an email address. Send blocks; failure is
// observable by the caller.
type Notifier interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// ResetService implements the password-reset protocol: issue a short code by
// email, exchange a correct code for a signed short-lived token, redeem the
// token exactly once to replace the credential.
type ResetService struct {
	Repo     repo.UserRepository
	Signer   *helpers.ResetTokenSigner
	Notifier Notifier
	Redis    *redis.Client
	Logger   *logrus.Logger

	AppName     string
	CodeTTL     time.Duration
	MailEnabled bool
}

func NewResetService(r repo.UserRepository, signer *helpers.ResetTokenSigner, notifier Notifier, rdb *redis.Client, logger *logrus.Logger, appName string, codeTTL time.Duration, mailEnabled bool) *ResetService {
	return &ResetService{
		Repo:        r,
		Signer:      signer,
		Notifier:    notifier,
		Redis:       rdb,
		Logger:      logger,
		AppName:     appName,
		CodeTTL:     codeTTL,
		MailEnabled: mailEnabled,
	}
}

func resetJTIKey(jti string) string { return "pwd:reset:jti:" + jti }

// IssueCode generates a fresh code for the account behind email, persists it
// with its expiry, then attempts delivery. A nil error for an unregistered
// email is intentional: callers respond identically either way so accounts
// cannot be enumerated.
//
// The code is committed before the send attempt; on delivery failure the code
// is live but the user never received it. The caller sees ErrDeliveryFailed
// and may retry, which simply overwrites the code.
func (s *ResetService) IssueCode(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			if s.Logger != nil {
				s.Logger.WithField("email", email).Info("reset requested for unknown email")
			}
			return nil
		}
		return err
	}

	code, err := helpers.GenResetCode()
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(s.CodeTTL)
	if err := s.Repo.SetResetCode(ctx, u.ID, code, expiresAt); err != nil {
		return err
	}

	if !s.MailEnabled || s.Notifier == nil {
		if s.Logger != nil {
			s.Logger.WithField("user_id", u.ID).Info("mail sending disabled, reset code not delivered")
		}
		return nil
	}

	subject, text, html, err := tpl.Render(tpl.ResetCode, tpl.EmailData{
		Name:      u.Name,
		Email:     u.Email,
		AppName:   s.AppName,
		Code:      code,
		ExpiresIn: humanDuration(s.CodeTTL),
	})
	if err != nil {
		return err
	}
	if err := s.Notifier.Send(ctx, u.Email, subject, text, html); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("reset code delivery failed")
		}
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// VerifyCode checks the submitted code and, on success, mints a signed reset
// token asserting {email, reset_password}. The stored code is left in place;
// only the finalizer clears it.
func (s *ResetService) VerifyCode(ctx context.Context, email, code string) (string, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return "", ErrInvalidOrExpiredCode
	}
	if !u.HasActiveResetCode(time.Now()) {
		if u.ResetCode != nil {
			// expired leftovers are dropped lazily
			_ = s.Repo.ClearResetCode(ctx, u.ID)
		}
		return "", ErrInvalidOrExpiredCode
	}
	if *u.ResetCode != code {
		return "", ErrInvalidOrExpiredCode
	}

	token, err := s.Signer.Sign(email, uuid.NewString())
	if err != nil {
		return "", err
	}
	return token, nil
}

// FinalizeReset validates in order, short-circuiting on the first failure:
// field presence, password confirmation, strength, token signature/age/claims,
// account existence. On success the reset fields are cleared and the new hash
// committed in one row update.
func (s *ResetService) FinalizeReset(ctx context.Context, email, newPassword, confirmPassword, token string) error {
	if email == "" || newPassword == "" || confirmPassword == "" || token == "" {
		return ErrMissingFields
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if !helpers.PasswordStrong(newPassword) {
		return ErrWeakPassword
	}

	claims, err := s.Signer.Verify(token, email)
	if err != nil {
		if errors.Is(err, helpers.ErrResetTokenExpired) {
			return ErrTokenExpired
		}
		return ErrInvalidToken
	}

	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return ErrUserNotFound
	}

	// Single-use guard: each token carries a jti, consumed here. When Redis
	// is not configured the token stays replayable within its max age, which
	// matches the original looser behavior.
	if s.Redis != nil && claims.ID != "" {
		ok, rErr := s.Redis.SetNX(ctx, resetJTIKey(claims.ID), "1", s.Signer.MaxAge()).Result()
		if rErr == nil && !ok {
			return ErrInvalidToken
		}
		if rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).Warn("reset token consumption check failed, allowing")
		}
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("password reset completed")
	}
	return nil
}

func humanDuration(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	m := int(d / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
