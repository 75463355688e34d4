package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDatabaseConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CHECKOUT_MAX_ATTEMPTS", "")
	t.Setenv("DB_LOCK_TIMEOUT", "")

	cfg := LoadDatabaseConfig()

	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.LockTimeout)
	assert.False(t, cfg.ClampQuantity)
}

func TestLoadDatabaseConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("CHECKOUT_MAX_ATTEMPTS", "5")
	t.Setenv("DB_LOCK_TIMEOUT", "2500")
	t.Setenv("CHECKOUT_CLAMP_QUANTITY", "true")

	cfg := LoadDatabaseConfig()

	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 2500*time.Millisecond, cfg.LockTimeout)
	assert.True(t, cfg.ClampQuantity)
}

func TestSMTPConfigEnabled(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "shop@example.com")
	t.Setenv("SMTP_PASS", "")
	t.Setenv("SMTP_FROM", "")

	cfg := LoadSMTPConfig()
	assert.False(t, cfg.Enabled(), "password is required")
	assert.Equal(t, "shop@example.com", cfg.From, "sender falls back to the SMTP user")
	assert.Equal(t, 587, cfg.Port)

	t.Setenv("SMTP_PASS", "secret")
	assert.True(t, LoadSMTPConfig().Enabled())
}

func TestOptionalIntegrationsDisabledByDefault(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("KAFKA_BROKERS", " ")
	t.Setenv("OIDC_ISSUER", "")
	t.Setenv("AT_USERNAME", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "")

	assert.False(t, LoadRedisConfig().Enabled())
	assert.False(t, LoadKafkaConfig().Enabled())
	assert.False(t, LoadOIDCConfig().Enabled())
	assert.False(t, LoadAfricaTalkingConfig().Enabled())
	assert.False(t, LoadEmailConfig().Enabled())
}
