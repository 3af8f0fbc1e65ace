package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOpenWeatherMapAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "test_api_key_123")
	assert.Equal(t, "test_api_key_123", GetOpenWeatherMapAPIKey())

	t.Setenv(APIKeyEnv, "   ")
	assert.Equal(t, "", GetOpenWeatherMapAPIKey())
}

func TestRequireAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	_, err := RequireAPIKey()
	assert.ErrorIs(t, err, ErrAPIKeyMissing)

	t.Setenv(APIKeyEnv, "abc")
	key, err := RequireAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "abc", key)
}

func TestGetOpenWeatherApiUrl(t *testing.T) {
	assert.Equal(t, "https://api.openweathermap.org/data/2.5/weather", GetOpenWeatherApiUrl())
}

func TestGetOpenWeatherTimeout(t *testing.T) {
	// config_test.yaml overrides the 10s default.
	assert.Equal(t, 2*time.Second, GetOpenWeatherTimeout())
}

func TestGetServerPort(t *testing.T) {
	assert.Equal(t, "8080", GetServerPort())
}

func TestGetServerTimeout(t *testing.T) {
	assert.Equal(t, "15s", GetServerTimeout("read_header_timeout"))
	assert.Equal(t, 30*time.Second, GetServerTimeoutDuration("idle_timeout", time.Second))
	assert.Equal(t, time.Second, GetServerTimeoutDuration("no_such_timeout", time.Second))
}

func TestGetTrustProxyHeaders(t *testing.T) {
	assert.False(t, GetTrustProxyHeaders())

	viper.Set("server.trust_proxy_headers", true)
	t.Cleanup(func() { viper.Set("server.trust_proxy_headers", false) })
	assert.True(t, GetTrustProxyHeaders())
}

func TestGetRedisAddr(t *testing.T) {
	assert.Equal(t, "localhost:6379", GetRedisAddr())
}

func TestGetBackgroundURL(t *testing.T) {
	assert.Contains(t, GetBackgroundURL("snow"), "cold-weather-serenity")
	assert.Equal(t, "", GetBackgroundURL("volcano"))
}

func TestGetRateLimiterBackend(t *testing.T) {
	assert.Equal(t, "off", GetRateLimiterBackend())
}

func TestGetRateLimiterConfig(t *testing.T) {
	perMinute, burst := GetRateLimiterConfig()
	assert.Equal(t, 10.0, perMinute)
	assert.Equal(t, 10, burst)
	assert.Equal(t, 3*time.Minute, GetRateLimiterCleanupTimeout())
}

func TestGetRateLimiterCleanupTimeout_Invalid(t *testing.T) {
	viper.Set("rate_limiter.cleanup_timeout", "soon")
	defer viper.Set("rate_limiter.cleanup_timeout", "3m")
	assert.Equal(t, 3*time.Minute, GetRateLimiterCleanupTimeout())
}

func TestReloadConfigForTest(t *testing.T) {
	assert.NotPanics(t, ReloadConfigForTest)
}

func TestGetProjectRoot_FromSubdirectory(t *testing.T) {
	root, err := getProjectRoot()
	require.NoError(t, err)
	_, err = os.Stat(root + "/go.mod")
	assert.NoError(t, err)
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger())
	assert.Same(t, GetLogger(), GetLogger())
}
