package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/bot-dashboard/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MIN_PASSWORD_LENGTH", "")
	t.Setenv("DOWNSTREAM_TIMEOUT", "")

	c := config.New()
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, 6, c.GetMinPasswordLength())
	require.Equal(t, 10*time.Second, c.GetDownstreamTimeout())
	require.Equal(t, time.Hour, c.GetAccessTokenExpiry())
}

func TestOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_MAX_AGE", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	c := config.New()
	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, 2*time.Hour, c.GetMaxSessionAge())
	require.Equal(t, config.AllowedOrigins{"https://a.example", "https://b.example"}, c.GetAllowedOrigins())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://b.example"))
	require.False(t, c.GetAllowedOrigins().IsAllowedOrigin("https://c.example"))
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MIN_PASSWORD_LENGTH", "six")
	t.Setenv("DOWNSTREAM_TIMEOUT", "soon")

	c := config.New()
	require.Equal(t, 6, c.GetMinPasswordLength())
	require.Equal(t, 10*time.Second, c.GetDownstreamTimeout())
}

func TestMinPasswordLengthFloor(t *testing.T) {
	t.Setenv("MIN_PASSWORD_LENGTH", "3")
	require.Equal(t, config.MinPasswordLength, config.New().GetMinPasswordLength())

	t.Setenv("MIN_PASSWORD_LENGTH", "0")
	require.Equal(t, config.MinPasswordLength, config.New().GetMinPasswordLength())

	t.Setenv("MIN_PASSWORD_LENGTH", "12")
	require.Equal(t, 12, config.New().GetMinPasswordLength())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("DOTENV_ONLY_VALUE=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DOTENV_ONLY_VALUE") })

	config.LoadDotEnv(envFile, filepath.Join(dir, "missing.env"))
	require.Equal(t, "loaded", config.GetEnv("DOTENV_ONLY_VALUE", ""))
}
