package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpark/parking-reservation/internal/config"
)

func bucketConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:      true,
		Capacity:     2,
		RefillTokens: 1,
		// a long interval keeps refills out of the picture during a test
		RefillInterval: time.Hour,
		TTL:            2 * time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
}

func runThrough(t *testing.T, mw echo.MiddlewareFunc, userID string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/lots", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
	}
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec
}

func TestTokenBucketExhaustsCapacity(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	mw := NewTokenBucket(bucketConfig(), rdb)

	first := runThrough(t, mw, "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := runThrough(t, mw, "")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	third := runThrough(t, mw, "")
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.NotEmpty(t, third.Header().Get("Retry-After"))
}

func TestTokenBucketKeysPerUser(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cfg := bucketConfig()
	cfg.Capacity = 1
	cfg.KeyStrategy = "user"
	mw := NewTokenBucket(cfg, rdb)

	assert.Equal(t, http.StatusOK, runThrough(t, mw, "7").Code)
	assert.Equal(t, http.StatusTooManyRequests, runThrough(t, mw, "7").Code)
	// a different user still has a full bucket
	assert.Equal(t, http.StatusOK, runThrough(t, mw, "8").Code)
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	cfg := bucketConfig()
	cfg.Enabled = false
	mw := NewTokenBucket(cfg, nil)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, runThrough(t, mw, "").Code)
	}
}

func TestTokenBucketFailsOpenOnRedisError(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()
	defer rdb.Close()

	mw := NewTokenBucket(bucketConfig(), rdb)
	assert.Equal(t, http.StatusOK, runThrough(t, mw, "").Code)
}
