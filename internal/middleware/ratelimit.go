package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
)

const maxSweepInterval = 5 * time.Minute

// RateLimitRule is a ceiling of Requests per Window.
type RateLimitRule struct {
	Requests int
	Window   time.Duration
}

// RateLimiter is an in-process sliding window limiter for one route group.
// Keys are client addresses unless KeyFunc is replaced.
type RateLimiter struct {
	name    string
	limit   int
	window  time.Duration
	keyFunc func(*gin.Context) string

	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a limiter and starts its background sweeper.
func NewRateLimiter(name string, rule RateLimitRule) *RateLimiter {
	if rule.Requests <= 0 {
		rule.Requests = 60
	}
	if rule.Window <= 0 {
		rule.Window = time.Minute
	}
	rl := &RateLimiter{
		name:    name,
		limit:   rule.Requests,
		window:  rule.Window,
		keyFunc: func(c *gin.Context) string { return c.ClientIP() },
		hits:    make(map[string][]time.Time),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// WithClock replaces the limiter clock.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	rl.mu.Lock()
	rl.now = now
	rl.mu.Unlock()
	return rl
}

// Name returns the route group the limiter guards.
func (rl *RateLimiter) Name() string {
	return rl.name
}

// Allow records a hit for key. When the ceiling is reached it reports how
// long until the oldest hit leaves the window.
func (rl *RateLimiter) Allow(key string) (remaining int, retryAfter time.Duration, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	valid := filterAfter(rl.hits[key], now.Add(-rl.window))
	if len(valid) >= rl.limit {
		rl.hits[key] = valid
		return 0, valid[0].Add(rl.window).Sub(now), false
	}
	rl.hits[key] = append(valid, now)
	return rl.limit - len(valid) - 1, 0, true
}

// Handler returns the gin middleware enforcing the limit.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	limit := strconv.Itoa(rl.limit)
	return func(c *gin.Context) {
		remaining, retryAfter, ok := rl.Allow(rl.keyFunc(c))
		c.Header("RateLimit-Limit", limit)
		c.Header("RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(retrySeconds(retryAfter)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse(dto.ErrorCodeRateLimited, "Too many requests").WithDetails("Please try again later"))
			return
		}
		c.Next()
	}
}

// Close stops the sweeper. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) sweep() {
	interval := rl.window
	if interval > maxSweepInterval {
		interval = maxSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := rl.now().Add(-rl.window)
			for key, times := range rl.hits {
				valid := filterAfter(times, cutoff)
				if len(valid) == 0 {
					delete(rl.hits, key)
				} else {
					rl.hits[key] = valid
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) keys() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.hits)
}

func filterAfter(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}

func retrySeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
