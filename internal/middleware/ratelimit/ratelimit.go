package ratelimit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"spendwise/internal/cache"
	"spendwise/internal/log"
)

// window is the fixed counting window per client.
const window = time.Minute

// Limiter provides per-client fixed-window rate limiting. The client table is
// an LRU cache so a flood of distinct addresses cannot grow it without bound.
type Limiter struct {
	clients           cache.Cache[clientInfo]
	requestsPerMinute int
	now               func() time.Time
	rejected          prometheus.Counter
}

type clientInfo struct {
	windowStart time.Time
	requests    int
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	MaxClients        int
	// Registerer receives the rejection counter. Nil disables metrics.
	Registerer prometheus.Registerer
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		MaxClients:        10000,
	}
}

// NewLimiter creates a new rate limiter. The returned cache should be
// registered with a cache.Manager for periodic cleanup.
func NewLimiter(config Config) *Limiter {
	defaults := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = defaults.RequestsPerMinute
	}
	if config.MaxClients <= 0 {
		config.MaxClients = defaults.MaxClients
	}

	rl := &Limiter{
		clients:           cache.NewLRUCache[clientInfo](config.MaxClients, 2*window),
		requestsPerMinute: config.RequestsPerMinute,
		now:               time.Now,
	}
	if config.Registerer != nil {
		rl.rejected = promauto.With(config.Registerer).NewCounter(prometheus.CounterOpts{
			Namespace: "spendwise",
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter.",
		})
	}
	return rl
}

// Cleaner exposes the client table for registration with a cache.Manager.
func (rl *Limiter) Cleaner() cache.Cleaner {
	if c, ok := rl.clients.(cache.Cleaner); ok {
		return c
	}
	return nil
}

// Allow checks if a request from the given IP should be allowed
func (rl *Limiter) Allow(clientIP string) bool {
	now := rl.now()
	info := rl.clients.Upsert(clientIP, func(cur clientInfo, found bool) clientInfo {
		if !found || now.Sub(cur.windowStart) > window {
			return clientInfo{windowStart: now, requests: 1}
		}
		cur.requests++
		return cur
	})
	return info.requests <= rl.requestsPerMinute
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	return rl.clients.Size()
}

// Middleware creates HTTP middleware for rate limiting
func (rl *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	if onLimit == nil {
		onLimit = TooManyRequests
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := extractIP(r)

			if !rl.Allow(clientIP) {
				if rl.rejected != nil {
					rl.rejected.Inc()
				}
				log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).
					WarnContext(r.Context(), "Rate limit exceeded", log.FieldClientIP, clientIP)
				onLimit(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// TooManyRequests writes the JSON 429 body used by the API.
func TooManyRequests(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message": "Rate limit exceeded. Please try again later.",
	})
}
