package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("JWT_EXPIRY_HOURS", "not-a-number")

	cfg := Load()

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	require.Equal(t, 24, cfg.JWTExpiryHours)
	require.Equal(t, "0 * * * *", cfg.OverdueCron)
}

func TestValidate_ReleaseRequiresJWTSecret(t *testing.T) {
	cfg := &Config{GinMode: "release"}
	require.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)
}

func TestValidate_DebugFallsBackToDevSecret(t *testing.T) {
	cfg := &Config{GinMode: "debug"}
	require.NoError(t, cfg.Validate())
	require.Equal(t, devJWTSecret, cfg.JWTSecret)
}

func TestValidate_SnowflakeNodeRange(t *testing.T) {
	cfg := &Config{JWTSecret: "s", SnowflakeNode: 2048}
	require.Error(t, cfg.Validate())
}
