package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// APIKeyEnv is the environment variable holding the OpenWeatherMap API key.
const APIKeyEnv = "OPENWEATHER_API_KEY"

// MissingAPIKeyMessage is shown in place of the page when no API key is configured.
const MissingAPIKeyMessage = "API key not found. Make sure to add it to your .env file."

// ErrAPIKeyMissing is returned by RequireAPIKey when no API key is configured.
var ErrAPIKeyMissing = errors.New("API key missing")

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || strings.HasSuffix(os.Args[0], ".test")
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_header_timeout", "15s")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("server.idle_timeout", "30s")
	viper.SetDefault("server.trust_proxy_headers", false)
	viper.SetDefault("openweathermap.api_url", "https://api.openweathermap.org/data/2.5/weather")
	viper.SetDefault("openweathermap.timeout", "10s")
	viper.SetDefault("rate_limiter.backend", "memory")
	viper.SetDefault("redis.addr", "localhost:6379")
}

func initConfig() {
	once.Do(func() {
		setDefaults()

		root, err := getProjectRoot()
		if err != nil {
			GetLogger().Errorw("Error finding project root", "error", err)
			return
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			if err = viper.MergeInConfig(); err != nil {
				GetLogger().Errorw("Error merging test config file", "error", err)
			}
		}
	})
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func GetOpenWeatherApiUrl() string {
	initConfig()
	return viper.GetString("openweathermap.api_url")
}

// GetOpenWeatherMapAPIKey reads the API key from the environment, loading a
// .env file first if one is present.
func GetOpenWeatherMapAPIKey() string {
	_ = godotenv.Load()
	return strings.TrimSpace(os.Getenv(APIKeyEnv))
}

// RequireAPIKey returns the configured API key or ErrAPIKeyMissing.
func RequireAPIKey() (string, error) {
	key := GetOpenWeatherMapAPIKey()
	if key == "" {
		return "", ErrAPIKeyMissing
	}
	return key, nil
}

// GetOpenWeatherTimeout returns the outbound request timeout. Defaults to 10s.
func GetOpenWeatherTimeout() time.Duration {
	initConfig()
	return parseDuration(viper.GetString("openweathermap.timeout"), 10*time.Second)
}

func GetRedisAddr() string {
	initConfig()
	return viper.GetString("redis.addr")
}

func GetServerPort() string {
	initConfig()
	serverPort := viper.GetString("server.port")
	return serverPort
}

func GetServerTimeout(key string) string {
	initConfig()
	return viper.GetString("server." + key)
}

// GetTrustProxyHeaders reports whether X-Forwarded-For and friends may
// replace the peer address. Only enable it behind a proxy that sets them.
func GetTrustProxyHeaders() bool {
	initConfig()
	return viper.GetBool("server.trust_proxy_headers")
}

// GetServerTimeoutDuration parses the server timeout stored under key,
// returning fallback when it is unset or invalid.
func GetServerTimeoutDuration(key string, fallback time.Duration) time.Duration {
	return parseDuration(GetServerTimeout(key), fallback)
}

// GetBackgroundURL returns the configured image URL for a background key,
// or an empty string when none is configured.
func GetBackgroundURL(key string) string {
	initConfig()
	return viper.GetString("backgrounds." + key)
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}

// GetRateLimiterBackend returns the rate limiter backend: "memory", "redis" or "off".
func GetRateLimiterBackend() string {
	initConfig()
	return strings.ToLower(viper.GetString("rate_limiter.backend"))
}

// GetRateLimiterCleanupTimeout returns the rate limiter cleanup timeout as a time.Duration.
// Defaults to 3m if not set or invalid.
func GetRateLimiterCleanupTimeout() time.Duration {
	initConfig()
	return parseDuration(viper.GetString("rate_limiter.cleanup_timeout"), 3*time.Minute)
}

// GetRateLimiterConfig returns the per-minute rate and burst for the lookup rate limiter.
func GetRateLimiterConfig() (perMinute float64, burst int) {
	initConfig()
	perMinute = viper.GetFloat64("rate_limiter.rate")
	if perMinute == 0 {
		perMinute = 10
	}
	burst = viper.GetInt("rate_limiter.burst")
	if burst == 0 {
		burst = 10
	}
	return
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
