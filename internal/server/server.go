package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-advisor/internal/classifier"
	"github.com/fakhrymubarak/weather-advisor/internal/config"
	"github.com/fakhrymubarak/weather-advisor/internal/handler"
	"github.com/fakhrymubarak/weather-advisor/internal/middleware"
	"github.com/fakhrymubarak/weather-advisor/internal/redis"
	"github.com/fakhrymubarak/weather-advisor/internal/repository"
	"github.com/fakhrymubarak/weather-advisor/internal/service"
)

// NewRouter mounts the page, the JSON API and the health check. limiter may
// be nil, in which case lookups are not throttled.
func NewRouter(svc service.WeatherServiceInterface, limiter middleware.Limiter, logger *zap.SugaredLogger) http.Handler {
	weatherHandler := handler.NewWeatherHandler(svc)
	weatherHandler.Logger = logger

	limited := func(h http.HandlerFunc) http.Handler {
		if limiter == nil {
			return h
		}
		return middleware.RateLimitMiddleware(limiter, logger)(h)
	}

	r := mux.NewRouter()
	r.HandleFunc(handler.HealthPath, handler.Health).Methods(http.MethodGet)
	r.Handle(handler.PagePath, limited(weatherHandler.HandlePage)).Methods(http.MethodGet)
	r.Handle(handler.WeatherPath, limited(weatherHandler.HandleWeather)).Methods(http.MethodGet)

	return wrap(r, logger)
}

func wrap(h http.Handler, logger *zap.SugaredLogger) http.Handler {
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{logger}))(h)
	// ProxyHeaders rewrites RemoteAddr, which keys the rate limiter.
	if config.GetTrustProxyHeaders() {
		h = handlers.ProxyHeaders(h)
	}
	return middleware.RequestLogger(logger)(h)
}

type recoveryLogger struct {
	logger *zap.SugaredLogger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Errorw("recovered from panic", "panic", fmt.Sprint(v...))
}

// NewHandler builds the application handler from configuration. Without an
// API key every route answers with the configuration error.
func NewHandler(ctx context.Context, logger *zap.SugaredLogger) http.Handler {
	apiKey, err := config.RequireAPIKey()
	if err != nil {
		logger.Errorw("configuration error, lookups disabled", "error", err, "env", config.APIKeyEnv)
		return wrap(handler.ConfigErrorHandler(err), logger)
	}

	repo := repository.NewWeatherRepository(repository.Options{
		APIKey:  apiKey,
		APIURL:  config.GetOpenWeatherApiUrl(),
		Timeout: config.GetOpenWeatherTimeout(),
	})
	backgrounds := classifier.DefaultBackgrounds().WithOverrides(config.GetBackgroundURL)
	svc := service.NewWeatherService(repo, backgrounds)

	return NewRouter(svc, newLimiter(ctx, logger), logger)
}

func newLimiter(ctx context.Context, logger *zap.SugaredLogger) middleware.Limiter {
	perMinute, burst := config.GetRateLimiterConfig()
	switch backend := config.GetRateLimiterBackend(); backend {
	case "off":
		logger.Infow("rate limiter disabled")
		return nil
	case "redis":
		if err := redis.Ping(ctx); err != nil {
			logger.Errorw("redis unavailable, falling back to in-memory rate limiter", "addr", config.GetRedisAddr(), "error", err)
			break
		}
		logger.Infow("rate limiter using redis", "addr", config.GetRedisAddr(), "rate", perMinute, "burst", burst)
		return middleware.NewRedisLimiter(redis.GetClient(), perMinute, burst)
	case "memory", "":
	default:
		logger.Errorw("unknown rate limiter backend, using memory", "backend", backend)
	}

	limiter := middleware.NewMemoryLimiter(perMinute, burst)
	limiter.StartCleanup(ctx, config.GetRateLimiterCleanupTimeout())
	logger.Infow("rate limiter using memory", "rate", perMinute, "burst", burst)
	return limiter
}

// NewHTTPServer applies the configured timeouts.
func NewHTTPServer(h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + config.GetServerPort(),
		Handler:           h,
		ReadHeaderTimeout: config.GetServerTimeoutDuration("read_header_timeout", 15*time.Second),
		ReadTimeout:       config.GetServerTimeoutDuration("read_timeout", 15*time.Second),
		WriteTimeout:      config.GetServerTimeoutDuration("write_timeout", 10*time.Second),
		IdleTimeout:       config.GetServerTimeoutDuration("idle_timeout", 30*time.Second),
	}
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func Run() error {
	logger := config.GetLogger()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := NewHTTPServer(NewHandler(ctx, logger))
	return serve(ctx, srv, logger)
}

func serve(ctx context.Context, srv *http.Server, logger *zap.SugaredLogger) error {
	serverErr := make(chan error, 1)
	go func() {
		logger.Infow("Weather advisor server running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Infow("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Infow("server stopped gracefully")
	return nil
}
