package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ecomarket/support-agent/internal/models"
)

type clientWindow struct {
	mu       sync.Mutex
	requests []time.Time
	limit    int
	span     time.Duration
}

func (cw *clientWindow) allow() (remaining int, ok bool) {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-cw.span)

	valid := cw.requests[:0]
	for _, t := range cw.requests {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	cw.requests = valid

	if len(cw.requests) >= cw.limit {
		return 0, false
	}
	cw.requests = append(cw.requests, now)
	return cw.limit - len(cw.requests), true
}

// RateLimiter enforces a per-client sliding window, keyed by API key
// when present, client address otherwise.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*clientWindow
	limit   int
}

func NewRateLimiter(limitPerMinute int) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*clientWindow),
		limit:   limitPerMinute,
	}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			rl.prune()
		}
	}()
	return rl
}

func (rl *RateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := time.Now().Add(-time.Minute)
	for key, cw := range rl.windows {
		cw.mu.Lock()
		if len(cw.requests) == 0 || cw.requests[len(cw.requests)-1].Before(cutoff) {
			delete(rl.windows, key)
		}
		cw.mu.Unlock()
	}
}

func (rl *RateLimiter) window(key string) *clientWindow {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if cw, ok := rl.windows[key]; ok {
		return cw
	}
	cw := &clientWindow{limit: rl.limit, span: time.Minute}
	rl.windows[key] = cw
	return cw
}

func RateLimit(limitPerMinute int) func(http.Handler) http.Handler {
	rl := NewRateLimiter(limitPerMinute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.RemoteAddr
			}

			remaining, ok := rl.window(key).allow()

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limitPerMinute))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !ok {
				w.Header().Set("Retry-After", "60")
				models.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
