package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"jobfinder/internal/errors"

	"golang.org/x/time/rate"
)

// limiterEntry pairs a token bucket with the time it last served a request,
// so idle clients can be evicted.
type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client key (IP or API key).
// Buckets for clients idle longer than the eviction age are dropped by a
// background sweep.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rate    rate.Limit
	burst   int
	done    chan struct{}
	logger  *errors.Logger
}

const limiterEvictionAge = 10 * time.Minute

// NewRateLimiter builds a per-client limiter allowing requestsPerMin
// sustained requests with bursts up to burstCapacity.
func NewRateLimiter(requestsPerMin int, burstCapacity int, logger *errors.Logger) *RateLimiter {
	rl := &RateLimiter{
		entries: make(map[string]*limiterEntry),
		rate:    rate.Limit(float64(requestsPerMin) / 60.0),
		burst:   burstCapacity,
		done:    make(chan struct{}),
		logger:  logger,
	}

	go rl.sweep()
	return rl
}

// Allow reports whether the client identified by key may proceed. Non-blocking.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	entry, ok := rl.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.entries[key] = entry
	}
	entry.lastSeen = time.Now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

// GetStats returns a snapshot for the stats endpoint.
func (rl *RateLimiter) GetStats() map[string]any {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]any{
		"active_limiters": len(rl.entries),
		"rate_per_second": float64(rl.rate),
		"rate_per_minute": float64(rl.rate) * 60.0,
		"burst_capacity":  rl.burst,
	}
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(limiterEvictionAge)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-limiterEvictionAge)
	for key, entry := range rl.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.entries, key)
		}
	}

	if rl.logger != nil {
		rl.logger.Debug("Rate limiter sweep completed",
			"remaining_limiters", len(rl.entries))
	}
}

// Close stops the eviction sweep. Call during server shutdown.
func (rl *RateLimiter) Close() {
	close(rl.done)
}

// rateLimitMiddleware rejects clients that exhausted their token bucket.
// Requests that cannot be attributed to any key pass through.
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimit == nil || !s.RateLimit.Enabled {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if key == "" {
				next(w, r)
				return
			}

			if !s.RateLimiter.Allow(key) {
				s.Logger.Info("Rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"client_ip", getClientIP(r))
				writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
				return
			}

			next(w, r)
		}
	}
}

// getRateLimitKey attributes a request to an API key when one is present and
// API-key limiting is on, otherwise to the client IP when IP limiting is on.
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if apiKey := clientAPIKey(r); apiKey != "" {
			return "api:" + apiKey
		}
	}

	if byIP {
		return "ip:" + getClientIP(r)
	}

	return ""
}

// clientAPIKey reads the API key from X-API-Key or, failing that, from an
// Authorization Bearer token.
func clientAPIKey(r *http.Request) string {
	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		return apiKey
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	return ""
}

// getClientIP resolves the originating client address, honoring proxy headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP returns the first valid address in a comma-separated list.
func parseFirstIP(ips string) string {
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if parsed := net.ParseIP(ip); parsed != nil {
			return ip
		}
	}
	return ""
}
