package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userhub/accounts-api/config"
	"github.com/userhub/accounts-api/internal/application"
	"github.com/userhub/accounts-api/internal/domain/entity"
	"github.com/userhub/accounts-api/pkg/helpers"
	"github.com/userhub/accounts-api/pkg/validation"
)

func newUserRouter(t *testing.T) (*gin.Engine, *stubRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	hash, err := helpers.HashPassword("OldPass123")
	require.NoError(t, err)
	r := &stubRepo{user: &entity.User{ID: "u-1", Email: "user@x.com", Password: hash, Name: "Existing"}}

	jwtm := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	svc := application.NewAccountService(r, jwtm, nil, "", nil, nil, nil, "")
	cfg := &config.Config{AppName: "accounts-api", CookieDomain: "localhost"}
	h := NewUserHandler(svc, nil, cfg, nil)

	e := gin.New()
	grp := e.Group("/api/v1")
	grp.POST("/signup", h.Signup)
	grp.POST("/login", h.Login)
	grp.POST("/logout", h.Logout)
	return e, r
}

func TestSignupEndpoint(t *testing.T) {
	e, _ := newUserRouter(t)

	w, env := postJSON(t, e, "/api/v1/signup", gin.H{
		"email": "new@x.com", "password": "Abcdef12", "name": "New", "birthdate": "1990-04-01",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Signup successful", env.Message)
	assert.True(t, env.Success)
}

func TestSignupEndpoint_DuplicateEmail(t *testing.T) {
	e, _ := newUserRouter(t)

	w, env := postJSON(t, e, "/api/v1/signup", gin.H{
		"email": "user@x.com", "password": "Abcdef12",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", env.Message)
}

func TestSignupEndpoint_BindingRejectsWeakPassword(t *testing.T) {
	e, _ := newUserRouter(t)

	for _, pw := range []string{"short1A", "abcdefg1", "ABCDEFG1", "Abcdefgh"} {
		w, env := postJSON(t, e, "/api/v1/signup", gin.H{"email": "new@x.com", "password": pw})
		assert.Equal(t, http.StatusBadRequest, w.Code, "password %q", pw)
		assert.False(t, env.Success)
	}
}

func TestSignupEndpoint_BadBirthdate(t *testing.T) {
	e, _ := newUserRouter(t)

	w, _ := postJSON(t, e, "/api/v1/signup", gin.H{
		"email": "new@x.com", "password": "Abcdef12", "birthdate": "01/04/1990",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	e, _ := newUserRouter(t)

	w, env := postJSON(t, e, "/api/v1/login", gin.H{"email": "user@x.com", "password": "OldPass123"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Login successful", env.Message)

	var names []string
	for _, c := range w.Result().Cookies() {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "access_token")
	assert.Contains(t, names, "refresh_token")
}

func TestLoginEndpoint_GenericFailure(t *testing.T) {
	e, _ := newUserRouter(t)

	w1, env1 := postJSON(t, e, "/api/v1/login", gin.H{"email": "user@x.com", "password": "wrongpass"})
	w2, env2 := postJSON(t, e, "/api/v1/login", gin.H{"email": "nobody@x.com", "password": "OldPass123"})

	assert.Equal(t, http.StatusUnauthorized, w1.Code)
	assert.Equal(t, http.StatusUnauthorized, w2.Code)
	assert.Equal(t, "Invalid credentials", env1.Message)
	assert.Equal(t, env1.Message, env2.Message, "unknown email and bad password are indistinguishable")
}

func TestLogoutEndpoint_ClearsCookies(t *testing.T) {
	e, _ := newUserRouter(t)

	w, env := postJSON(t, e, "/api/v1/logout", gin.H{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	for _, c := range w.Result().Cookies() {
		assert.LessOrEqual(t, c.MaxAge, 0, "cookie %s must be expired", c.Name)
	}
}
