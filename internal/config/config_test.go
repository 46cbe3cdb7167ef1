package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{URL: "postgresql://localhost:5432/wikimasters"},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		Cache:    CacheConfig{ArticlesTTL: 60 * time.Second},
		Email:    EmailConfig{APIKey: "re_123", From: "Wikimasters <onboarding@resend.dev>"},
		Auth:     AuthConfig{JWTSecret: "secret"},
		Cron:     CronConfig{Secret: "0123456789abcdef"},
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	assert.Empty(t, Validate(validConfig()))
}

func TestValidateReportsEveryMissingField(t *testing.T) {
	errs := Validate(&Config{})

	fields := make(map[string]string)
	for _, e := range errs {
		fields[e.Field] = e.Message
	}

	for _, want := range []string{
		"Database.URL",
		"Redis.Addr",
		"Cache.ArticlesTTL",
		"Email.APIKey",
		"Email.From",
		"Auth.JWTSecret",
		"Cron.Secret",
	} {
		assert.Contains(t, fields, want)
	}
}

func TestValidateCronSecretLength(t *testing.T) {
	cfg := validConfig()
	cfg.Cron.Secret = "too-short"

	errs := Validate(cfg)
	require.Len(t, errs, 1)
	assert.Equal(t, "Cron.Secret", errs[0].Field)
	assert.Contains(t, errs[0].Message, "16")
}

func TestValidateDatabaseScheme(t *testing.T) {
	cfg := validConfig()
	cfg.Database.URL = "mysql://localhost/wikimasters"

	errs := Validate(cfg)
	require.Len(t, errs, 1)
	assert.Equal(t, "Database.URL", errs[0].Field)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgresql://localhost:5432/wikimasters")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RESEND_API_KEY", "re_123")
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("CRON_SECRET", "0123456789abcdef")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgresql://localhost:5432/wikimasters", cfg.Database.URL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "0123456789abcdef", cfg.Cron.Secret)
	assert.Equal(t, 60*time.Second, cfg.Cache.ArticlesTTL, "default TTL")
	assert.Equal(t, "8080", cfg.Server.Port, "default port")
	assert.False(t, cfg.Kafka.Enabled, "event bus off by default")
}

func TestLoadFailsFast(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("RESEND_API_KEY", "")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("CRON_SECRET", "short")

	_, err := Load("")
	require.Error(t, err)

	verr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(verr.Fields), 5)
}
