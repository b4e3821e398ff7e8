package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "accounts-api", cfg.AppName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.ResetCodeTTL)
	assert.Equal(t, 300*time.Second, cfg.ResetTokenMaxAge)
	assert.Equal(t, "db/migrations", cfg.MigrationsDir)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_NAME", "test-app")
	t.Setenv("RESET_CODE_TTL", "30m")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("DB_MAX_CONNS", "25")

	cfg := Load()
	assert.Equal(t, "test-app", cfg.AppName)
	assert.Equal(t, 30*time.Minute, cfg.ResetCodeTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, int32(25), cfg.DBMaxConns)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("RESET_CODE_TTL", "not-a-duration")
	t.Setenv("COOKIE_SECURE", "not-a-bool")
	t.Setenv("DB_MAX_CONNS", "not-an-int")

	cfg := Load()
	assert.Equal(t, 15*time.Minute, cfg.ResetCodeTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
}

func TestPostgresDSN(t *testing.T) {
	c := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", c.PostgresDSN())
}

func TestSplitTrim(t *testing.T) {
	c := &Config{CORSAllowedOrigins: " https://a.com , https://b.com ,, "}
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, c.CORSOrigins())

	c = &Config{CORSAllowedOrigins: ""}
	assert.Empty(t, c.CORSOrigins())
}
