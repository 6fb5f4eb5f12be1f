package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "GIN_MODE", "DATABASE_URL", "REDIS_URL",
		"JWT_SECRET", "JWT_EXPIRY_HOURS", "BCRYPT_COST",
		"REPORT_CACHE_TTL_SECONDS", "ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	require.Equal(t, "8080", cfg.ServerPort)
	require.Equal(t, "debug", cfg.GinMode)
	require.Empty(t, cfg.JWTSecret)
	require.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	require.Equal(t, 10, cfg.BcryptCost)
	require.Equal(t, 60*time.Second, cfg.ReportCacheTTL)
	require.Nil(t, cfg.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("ALLOWED_ORIGINS", "https://portal.school.test, https://admin.school.test")

	cfg := Load()
	require.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	require.Equal(t, "prod-secret", cfg.JWTSecret)
	require.Equal(t, []string{"https://portal.school.test", "https://admin.school.test"}, cfg.AllowedOrigins)
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("BCRYPT_COST", "not-a-number")

	cfg := Load()
	require.Equal(t, 10, cfg.BcryptCost)
}

func TestValidateReleaseRequiresSecret(t *testing.T) {
	cfg := &Config{GinMode: "release", JWTSecret: ""}
	require.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)

	cfg.JWTSecret = "real-secret"
	require.NoError(t, cfg.Validate())

	// Debug mode may run without a key; main substitutes the dev fallback.
	dev := &Config{GinMode: "debug", JWTSecret: ""}
	require.NoError(t, dev.Validate())
}

func TestParseOrigins(t *testing.T) {
	require.Nil(t, parseOrigins(""))
	require.Equal(t, []string{"https://a.test"}, parseOrigins("https://a.test"))
	require.Equal(t, []string{"https://a.test", "https://b.test"}, parseOrigins(" https://a.test ,, https://b.test "))
}
