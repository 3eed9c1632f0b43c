package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("EMAIL_USER", "")
	t.Setenv("CONTACT_INBOX", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, StoreMySQL, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*time.Minute, cfg.ResetTokenTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 10*time.Second, cfg.Email.Timeout)
	assert.Equal(t, "Pinvent App", cfg.S3.Folder)
	assert.False(t, cfg.S3.Enabled())
	assert.Error(t, cfg.Validate(), "missing secret must be rejected")
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "5000")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("FRONTEND_URL", "https://pinvent.example.com/")
	t.Setenv("EMAIL_HOST", "smtp.example.com")
	t.Setenv("EMAIL_PORT", "465")
	t.Setenv("EMAIL_USER", "team@example.com")
	t.Setenv("CONTACT_INBOX", "")
	t.Setenv("MAIL_TIMEOUT", "not-a-duration")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, "https://pinvent.example.com", cfg.FrontendURL)
	assert.Equal(t, 465, cfg.Email.Port)
	assert.True(t, cfg.Email.Enabled())
	assert.Equal(t, "team@example.com", cfg.ContactInbox)
	assert.Equal(t, 10*time.Second, cfg.Email.Timeout)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &Config{JWTSecret: "x", StoreDriver: "mongo", SessionTTL: time.Hour, ResetTokenTTL: time.Minute}
	assert.Error(t, cfg.Validate())
}
