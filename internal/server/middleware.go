package server

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// RequestIDHeader carries the per-request identifier.
	RequestIDHeader = "X-Request-ID"

	limiterSweepInterval = 5 * time.Minute
	limiterTTL           = 10 * time.Minute
)

// rateLimiter keeps one token bucket per client address.
type rateLimiter struct {
	mu                sync.Mutex
	limiters          map[string]*limiterEntry
	requestsPerMinute int
	perSecond         float64
	burstSize         int
	lastSweep         time.Time
	now               func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(requestsPerMinute, burstSize int) *rateLimiter {
	return &rateLimiter{
		limiters:          make(map[string]*limiterEntry),
		requestsPerMinute: requestsPerMinute,
		perSecond:         float64(requestsPerMinute) / 60.0,
		burstSize:         burstSize,
		lastSweep:         time.Now(),
		now:               time.Now,
	}
}

// allow consumes a token for client and reports the tokens left.
func (r *rateLimiter) allow(client string) (bool, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) > limiterSweepInterval {
		for key, entry := range r.limiters {
			if now.Sub(entry.lastSeen) > limiterTTL {
				delete(r.limiters, key)
			}
		}
		r.lastSweep = now
	}

	entry, ok := r.limiters[client]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(r.perSecond), r.burstSize)}
		r.limiters[client] = entry
	}
	entry.lastSeen = now

	allowed := entry.limiter.AllowN(now, 1)
	remaining := int(entry.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining
}

// retryAfter is the whole number of seconds until one token is available.
func (r *rateLimiter) retryAfter() int {
	seconds := int(1/r.perSecond + 0.999)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

func (r *rateLimiter) middleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		client := clientAddress(req)
		allowed, remaining := r.allow(client)

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", r.requestsPerMinute))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if !allowed {
			retry := r.retryAfter()
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
			logger.Warn("rate limit exceeded",
				zap.String("op", "server.rateLimit"),
				zap.String("client", client),
				zap.Int("retryAfter", retry),
			)
			writeJSON(logger, w, http.StatusTooManyRequests, map[string]string{
				"error": fmt.Sprintf("too many requests, retry after %d seconds", retry),
			})
			return
		}
		next.ServeHTTP(w, req)
	})
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// requestLogger tags each request with an ID (reusing a client-supplied one)
// and logs its outcome.
func requestLogger(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Debug("request handled",
			zap.String("op", "server.requestLogger"),
			zap.String("requestID", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func bodyLimit(maxBytes int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next.ServeHTTP(w, r)
	})
}
