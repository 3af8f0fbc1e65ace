package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fakhrymubarak/weather-advisor/internal/model"
)

// Limiter decides whether the client identified by key may make another request.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// visitor holds the rate limiter and last seen time for a specific IP address.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a token bucket per client, held in process memory.
type MemoryLimiter struct {
	perMinute float64
	burst     int

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

// NewMemoryLimiter allows perMinute requests per minute per client with the given burst.
func NewMemoryLimiter(perMinute float64, burst int) *MemoryLimiter {
	return &MemoryLimiter{
		perMinute: perMinute,
		burst:     burst,
		visitors:  make(map[string]*visitor),
		now:       time.Now,
	}
}

// Allow implements Limiter. It never returns an error.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(l.perMinute/60.0), l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = l.now()
	l.mu.Unlock()
	return v.limiter.Allow(), nil
}

// Cleanup removes visitors that have not been seen for longer than idle.
func (l *MemoryLimiter) Cleanup(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) > idle {
			delete(l.visitors, k)
		}
	}
}

// Len reports the number of tracked clients.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// StartCleanup evicts idle visitors every minute until ctx is done.
func (l *MemoryLimiter) StartCleanup(ctx context.Context, idle time.Duration) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Cleanup(idle)
			}
		}
	}()
}

// RedisLimiter counts requests per client in fixed windows stored in Redis,
// so several server instances share one budget.
type RedisLimiter struct {
	client redisv9.Cmdable
	limit  int64
	window time.Duration
	prefix string
	now    func() time.Time
}

// NewRedisLimiter allows burst requests per window, where the window is
// sized so that the long-run rate equals perMinute.
func NewRedisLimiter(client redisv9.Cmdable, perMinute float64, burst int) *RedisLimiter {
	window := time.Duration(float64(burst) / perMinute * float64(time.Minute))
	if window < time.Second {
		window = time.Second
	}
	return &RedisLimiter{
		client: client,
		limit:  int64(burst),
		window: window,
		prefix: "ratelimit:",
		now:    time.Now,
	}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	slot := l.now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, key, slot)

	var incr *redisv9.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	return incr.Val() <= l.limit, nil
}

// getIP returns the host part of the connection's peer address. Forwarding
// headers are ignored here; when they are trusted, handlers.ProxyHeaders has
// already rewritten RemoteAddr.
func getIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr // fallback
	}
	return ip
}

// RateLimitMiddleware rejects requests over the limiter's budget with a 429
// and a JSON error. When the limiter itself fails the request is let through.
func RateLimitMiddleware(limiter Limiter, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getIP(r)
			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.Errorw("rate limiter unavailable", "ip", ip, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(model.ErrorResponse("Rate limit exceeded, please wait a minute before looking up another city"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
