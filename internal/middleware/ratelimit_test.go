package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models/dto"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func get(r http.Handler, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Allow(t *testing.T) {
	clock := &fakeClock{t: testNow}
	rl := NewRateLimiter("auth", RateLimitRule{Requests: 3, Window: time.Minute}).WithClock(clock.now)
	defer rl.Close()

	for i := 2; i >= 0; i-- {
		remaining, _, ok := rl.Allow("1.2.3.4")
		require.True(t, ok)
		assert.Equal(t, i, remaining)
		clock.advance(10 * time.Second)
	}

	_, retry, ok := rl.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, 30*time.Second, retry)

	_, _, ok = rl.Allow("5.6.7.8")
	assert.True(t, ok, "keys are independent")

	// The first hit slides out of the window.
	clock.advance(31 * time.Second)
	_, _, ok = rl.Allow("1.2.3.4")
	assert.True(t, ok)
}

func TestRateLimiter_Handler(t *testing.T) {
	clock := &fakeClock{t: testNow}
	general := NewRateLimiter("general", RateLimitRule{Requests: 10, Window: 15 * time.Minute}).WithClock(clock.now)
	authGroup := NewRateLimiter("auth", RateLimitRule{Requests: 2, Window: 15 * time.Minute}).WithClock(clock.now)
	defer general.Close()
	defer authGroup.Close()

	r := gin.New()
	r.Use(general.Handler())
	r.GET("/signin", authGroup.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/trending-blogs", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := get(r, "/signin", "10.0.0.1")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("RateLimit-Limit"))
	}

	w := get(r, "/signin", "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "900", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("RateLimit-Remaining"))
	body := decodeError(t, w)
	assert.Equal(t, dto.ErrorResponse{Error: "Too many requests", Code: dto.ErrorCodeRateLimited, Details: "Please try again later"}, body)

	// Other groups and other clients are unaffected.
	assert.Equal(t, http.StatusOK, get(r, "/trending-blogs", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, get(r, "/signin", "10.0.0.2").Code)

	clock.advance(15 * time.Minute)
	assert.Equal(t, http.StatusOK, get(r, "/signin", "10.0.0.1").Code)
}

func TestRateLimiter_SweepsIdleKeys(t *testing.T) {
	rl := NewRateLimiter("comments", RateLimitRule{Requests: 5, Window: 20 * time.Millisecond})
	defer rl.Close()

	_, _, ok := rl.Allow("1.1.1.1")
	require.True(t, ok)
	assert.Equal(t, 1, rl.keys())

	assert.Eventually(t, func() bool { return rl.keys() == 0 }, time.Second, 10*time.Millisecond)

	rl.Close()
	rl.Close()
}
