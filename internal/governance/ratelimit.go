package governance

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig sets a token bucket rate. RequestsPerSecond <= 0 disables
// limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	// TrustForwardedFor keys clients by X-Forwarded-For. Enable it only when
	// a proxy in front of the server sets the header.
	TrustForwardedFor bool
}

// RateLimiter keeps one token bucket per client key.
type RateLimiter struct {
	mu      sync.Mutex
	cfg     RateLimitConfig
	buckets map[string]*tokenBucket
	now     func() time.Time
}

// NewRateLimiter creates a limiter. Burst defaults to the rounded-up rate.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = max(1, int(cfg.RequestsPerSecond+0.999))
	}
	return &RateLimiter{
		cfg:     cfg,
		buckets: make(map[string]*tokenBucket),
		now:     time.Now,
	}
}

// Enabled reports whether the limiter rejects anything.
func (rl *RateLimiter) Enabled() bool {
	return rl != nil && rl.cfg.RequestsPerSecond > 0
}

// Allow consumes a token for key. It returns the tokens left and, when the
// call is rejected, how long until the next token.
func (rl *RateLimiter) Allow(key string) (ok bool, remaining int, retryAfter time.Duration) {
	if !rl.Enabled() {
		return true, 0, 0
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, exists := rl.buckets[key]
	if !exists {
		b = &tokenBucket{tokens: float64(rl.cfg.Burst), last: now, touched: now}
		rl.buckets[key] = b
	}
	b.refill(now, rl.cfg.RequestsPerSecond, float64(rl.cfg.Burst))
	b.touched = now

	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}
	wait := time.Duration((1 - b.tokens) / rl.cfg.RequestsPerSecond * float64(time.Second))
	return false, 0, wait
}

// Prune drops buckets that have been full for longer than idle.
func (rl *RateLimiter) Prune(idle time.Duration) int {
	if !rl.Enabled() {
		return 0
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, b := range rl.buckets {
		b.refill(now, rl.cfg.RequestsPerSecond, float64(rl.cfg.Burst))
		if b.tokens >= float64(rl.cfg.Burst) && now.Sub(b.touched) > idle {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// Limit returns the configured burst, for response headers.
func (rl *RateLimiter) Limit() int {
	return rl.cfg.Burst
}

type tokenBucket struct {
	tokens  float64
	last    time.Time
	touched time.Time
}

func (b *tokenBucket) refill(now time.Time, rate, capacity float64) {
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = min(capacity, b.tokens+elapsed*rate)
	}
	b.last = now
}

// Key identifies the caller of r under the limiter's proxy setting.
func (rl *RateLimiter) Key(r *http.Request) string {
	return ClientKey(r, rl != nil && rl.cfg.TrustForwardedFor)
}

// ClientKey identifies the caller of r by its remote host. With
// trustForwarded it uses the last X-Forwarded-For hop instead: that is the
// address the trusted proxy appended, while earlier hops are client supplied.
func ClientKey(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if hops := r.Header.Values("X-Forwarded-For"); len(hops) > 0 {
			all := strings.Split(strings.Join(hops, ","), ",")
			for i := len(all) - 1; i >= 0; i-- {
				if hop := strings.TrimSpace(all[i]); hop != "" {
					return hop
				}
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// WriteRateLimitHeaders sets the X-RateLimit headers and, when rejected,
// Retry-After.
func WriteRateLimitHeaders(w http.ResponseWriter, limit, remaining int, retryAfter time.Duration) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if retryAfter > 0 {
		secs := int((retryAfter + time.Second - 1) / time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
}
