package application

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userhub/accounts-api/internal/domain/entity"
	repo "github.com/userhub/accounts-api/internal/domain/repository"
	"github.com/userhub/accounts-api/pkg/helpers"
)

// memRepo is an in-memory UserRepository for tests.
type memRepo struct {
	byEmail map[string]*entity.User
	nextID  int
}

func newMemRepo() *memRepo {
	return &memRepo{byEmail: map[string]*entity.User{}}
}

func (m *memRepo) addUser(email, password string) *entity.User {
	hash, _ := helpers.HashPassword(password)
	m.nextID++
	u := &entity.User{
		ID:        "u-" + strconv.Itoa(m.nextID),
		Email:     email,
		Password:  hash,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.byEmail[email] = u
	return u
}

func (m *memRepo) find(id string) *entity.User {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (m *memRepo) Create(_ context.Context, u *entity.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return repo.ErrDuplicateEmail
	}
	m.nextID++
	u.ID = "u-" + strconv.Itoa(m.nextID)
	m.byEmail[u.Email] = u
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u := m.find(id); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	if u, ok := m.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (m *memRepo) UpdateProfile(_ context.Context, u *entity.User) error {
	cur := m.find(u.ID)
	if cur == nil {
		return repo.ErrNotFound
	}
	cur.Name = u.Name
	cur.Birthdate = u.Birthdate
	cur.AvatarURL = u.AvatarURL
	return nil
}

func (m *memRepo) SetResetCode(_ context.Context, userID, code string, expiresAt time.Time) error {
	u := m.find(userID)
	if u == nil {
		return repo.ErrNotFound
	}
	u.ResetCode = &code
	u.ResetCodeExpiresAt = &expiresAt
	return nil
}

func (m *memRepo) ClearResetCode(_ context.Context, userID string) error {
	u := m.find(userID)
	if u == nil {
		return repo.ErrNotFound
	}
	u.ResetCode = nil
	u.ResetCodeExpiresAt = nil
	return nil
}

func (m *memRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	u := m.find(userID)
	if u == nil {
		return repo.ErrNotFound
	}
	u.Password = passwordHash
	u.ResetCode = nil
	u.ResetCodeExpiresAt = nil
	return nil
}

var _ repo.UserRepository = (*memRepo)(nil)

// fakeNotifier records sends and can be told to fail.
type fakeNotifier struct {
	sent []sentMail
	fail error
}

type sentMail struct {
	to      string
	subject string
	text    string
	html    string
}

func (f *fakeNotifier) Send(_ context.Context, to, subject, text, html string) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, text: text, html: html})
	return nil
}

func newResetFixture(t *testing.T, maxAge time.Duration) (*ResetService, *memRepo, *fakeNotifier) {
	t.Helper()
	r := newMemRepo()
	n := &fakeNotifier{}
	signer := helpers.NewResetTokenSigner("test-secret", maxAge)
	svc := NewResetService(r, signer, n, nil, nil, "accounts-api", 15*time.Minute, true)
	return svc, r, n
}

var codeRe = regexp.MustCompile(`^[0-9A-F]{6}$`)

func TestIssueCode_UnknownEmailIsSilent(t *testing.T) {
	svc, _, n := newResetFixture(t, 300*time.Second)

	err := svc.IssueCode(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.Empty(t, n.sent, "no mail for unregistered email")
}

func TestIssueCode_PersistsAndDelivers(t *testing.T) {
	svc, r, n := newResetFixture(t, 300*time.Second)
	u := r.addUser("user@x.com", "OldPass123")

	err := svc.IssueCode(context.Background(), "user@x.com")
	require.NoError(t, err)

	stored := r.find(u.ID)
	require.NotNil(t, stored.ResetCode)
	require.NotNil(t, stored.ResetCodeExpiresAt)
	assert.Regexp(t, codeRe, *stored.ResetCode)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), *stored.ResetCodeExpiresAt, 5*time.Second)

	require.Len(t, n.sent, 1)
	assert.Equal(t, "user@x.com", n.sent[0].to)
	assert.Contains(t, n.sent[0].text, *stored.ResetCode)
	assert.Contains(t, n.sent[0].html, *stored.ResetCode)
}

func TestIssueCode_DeliveryFailureLeavesCodeLive(t *testing.T) {
	svc, r, n := newResetFixture(t, 300*time.Second)
	u := r.addUser("user@x.com", "OldPass123")
	n.fail = errors.New("smtp down")

	err := svc.IssueCode(context.Background(), "user@x.com")
	require.ErrorIs(t, err, ErrDeliveryFailed)

	// The code was committed before the send attempt.
	stored := r.find(u.ID)
	assert.NotNil(t, stored.ResetCode)
	assert.NotNil(t, stored.ResetCodeExpiresAt)
}

func TestVerifyCode_SuccessMintsToken(t *testing.T) {
	svc, r, _ := newResetFixture(t, 300*time.Second)
	u := r.addUser("user@x.com", "OldPass123")
	require.NoError(t, svc.IssueCode(context.Background(), "user@x.com"))
	code := *r.find(u.ID).ResetCode

	token, err := svc.VerifyCode(context.Background(), "user@x.com", code)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Signer.Verify(token, "user@x.com")
	require.NoError(t, err)
	assert.Equal(t, helpers.ActionResetPassword, claims.Action)
	assert.NotEmpty(t, claims.ID)

	// The stored code stays in place after a successful exchange.
	assert.NotNil(t, r.find(u.ID).ResetCode)
}

func TestVerifyCode_AllFailuresCollapse(t *testing.T) {
	svc, r, _ := newResetFixture(t, 300*time.Second)
	r.addUser("user@x.com", "OldPass123")
	r.addUser("nocode@x.com", "OldPass123")
	require.NoError(t, svc.IssueCode(context.Background(), "user@x.com"))

	expired := time.Now().Add(-time.Minute)
	expiredCode := "ABC123"
	uExp := r.addUser("expired@x.com", "OldPass123")
	uExp.ResetCode = &expiredCode
	uExp.ResetCodeExpiresAt = &expired

	cases := map[string]struct {
		email string
		code  string
	}{
		"unknown email":  {"nobody@x.com", "ABC123"},
		"no code issued": {"nocode@x.com", "ABC123"},
		"wrong code":     {"user@x.com", "000000"},
		"expired code":   {"expired@x.com", expiredCode},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.VerifyCode(context.Background(), tc.email, tc.code)
			assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
		})
	}

	// Expired codes are dropped on the failed verify.
	assert.Nil(t, uExp.ResetCode)
	assert.Nil(t, uExp.ResetCodeExpiresAt)
}

func TestVerifyCode_LastWriterWins(t *testing.T) {
	svc, r, _ := newResetFixture(t, 300*time.Second)
	u := r.addUser("user@x.com", "OldPass123")

	require.NoError(t, svc.IssueCode(context.Background(), "user@x.com"))
	first := *r.find(u.ID).ResetCode

	require.NoError(t, svc.IssueCode(context.Background(), "user@x.com"))
	second := *r.find(u.ID).ResetCode

	if first != second {
		_, err := svc.VerifyCode(context.Background(), "user@x.com", first)
		assert.ErrorIs(t, err, ErrInvalidOrExpiredCode, "earlier code must stop verifying")
	}
	_, err := svc.VerifyCode(context.Background(), "user@x.com", second)
	assert.NoError(t, err, "latest code must verify")
}

func TestFinalizeReset_OrderedValidation(t *testing.T) {
	svc, r, _ := newResetFixture(t, 300*time.Second)
	r.addUser("user@x.com", "OldPass123")
	token, err := svc.Signer.Sign("user@x.com", "jti-1")
	require.NoError(t, err)

	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		pw       string
		confirm  string
		token    string
		expected error
	}{
		{"missing email", "", "Abcdef12", "Abcdef12", token, ErrMissingFields},
		{"missing token", "user@x.com", "Abcdef12", "Abcdef12", "", ErrMissingFields},
		{"mismatch", "user@x.com", "Abcdef12", "Abcdef13", token, ErrPasswordMismatch},
		{"no digit", "user@x.com", "Abcdefgh", "Abcdefgh", token, ErrWeakPassword},
		{"no upper", "user@x.com", "abcdefg1", "abcdefg1", token, ErrWeakPassword},
		{"no lower", "user@x.com", "ABCDEFG1", "ABCDEFG1", token, ErrWeakPassword},
		{"too short", "user@x.com", "Ab1", "Ab1", token, ErrWeakPassword},
		{"garbage token", "user@x.com", "Abcdef12", "Abcdef12", "not-a-token", ErrInvalidToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.FinalizeReset(ctx, tc.email, tc.pw, tc.confirm, tc.token)
			assert.ErrorIs(t, err, tc.expected)
		})
	}

	// Mismatch is reported before strength: both passwords weak but unequal.
	err = svc.FinalizeReset(ctx, "user@x.com", "weak", "weaker", token)
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestFinalizeReset_TokenForOtherEmailRejected(t *testing.T) {
	svc, r, _ := newResetFixture(t, 300*time.Second)
	r.addUser("user@x.com", "OldPass123")
	token, err := svc.Signer.Sign("other@x.com", "jti-2")
	require.NoError(t, err)

	err = svc.FinalizeReset(context.Background(), "user@x.com", "Abcdef12", "Abcdef12", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFinalizeReset_ExpiredToken(t *testing.T) {
	svc, r, _ := newResetFixture(t, 50*time.Millisecond)
	r.addUser("user@x.com", "OldPass123")
	token, err := svc.Signer.Sign("user@x.com", "jti-3")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond) // jwt iat has second precision

	err = svc.FinalizeReset(context.Background(), "user@x.com", "Abcdef12", "Abcdef12", token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestFinalizeReset_AccountVanished(t *testing.T) {
	svc, r, _ := newResetFixture(t, 300*time.Second)
	r.addUser("user@x.com", "OldPass123")
	token, err := svc.Signer.Sign("user@x.com", "jti-4")
	require.NoError(t, err)
	delete(r.byEmail, "user@x.com")

	err = svc.FinalizeReset(context.Background(), "user@x.com", "Abcdef12", "Abcdef12", token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestResetFlow_EndToEnd(t *testing.T) {
	svc, r, n := newResetFixture(t, 300*time.Second)
	u := r.addUser("user@x.com", "OldPass123")
	oldHash := u.Password

	require.NoError(t, svc.IssueCode(context.Background(), "user@x.com"))
	require.Len(t, n.sent, 1)
	code := *r.find(u.ID).ResetCode

	token, err := svc.VerifyCode(context.Background(), "user@x.com", code)
	require.NoError(t, err)

	err = svc.FinalizeReset(context.Background(), "user@x.com", "NewPass456", "NewPass456", token)
	require.NoError(t, err)

	stored := r.find(u.ID)
	assert.Nil(t, stored.ResetCode, "code cleared after finalize")
	assert.Nil(t, stored.ResetCodeExpiresAt)
	assert.NotEqual(t, oldHash, stored.Password)
	assert.True(t, helpers.CompareHashAndPassword(stored.Password, "NewPass456"), "new password works")
	assert.False(t, helpers.CompareHashAndPassword(stored.Password, "OldPass123"), "old password rejected")

	// With the code cleared, a second verify fails.
	_, err = svc.VerifyCode(context.Background(), "user@x.com", code)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "15 minutes", humanDuration(15*time.Minute))
	assert.Equal(t, "1 minute", humanDuration(time.Minute))
	assert.Equal(t, "1 hour", humanDuration(time.Hour))
	assert.Equal(t, "2 hours", humanDuration(2*time.Hour))
}
