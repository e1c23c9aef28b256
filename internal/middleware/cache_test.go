package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpark/parking-reservation/internal/config"
)

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

func TestRedisCacheServesSecondHit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	var calls int64
	e := echo.New()
	e.GET("/v1/lots", func(c echo.Context) error {
		atomic.AddInt64(&calls, 1)
		return c.JSON(http.StatusOK, echo.Map{"lots": []string{"Central"}})
	}, NewRedisCache(cacheConfig(), rdb))

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/v1/lots", nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := httptest.NewRecorder()
	e.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/v1/lots", nil))
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.EqualValues(t, 1, atomic.LoadInt64(&calls))
}

func TestRedisCacheKeysOnQuery(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	e := echo.New()
	e.GET("/v1/lots", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"q": c.QueryParam("q")})
	}, NewRedisCache(cacheConfig(), rdb))

	warm := httptest.NewRecorder()
	e.ServeHTTP(warm, httptest.NewRequest(http.MethodGet, "/v1/lots?q=central", nil))
	require.Equal(t, "MISS", warm.Header().Get("X-Cache"))

	other := httptest.NewRecorder()
	e.ServeHTTP(other, httptest.NewRequest(http.MethodGet, "/v1/lots?q=airport", nil))
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
}

func TestRedisCacheSkipsUncachedMethods(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	e := echo.New()
	e.POST("/v1/lots/3/book", func(c echo.Context) error {
		return c.JSON(http.StatusCreated, echo.Map{"ok": true})
	}, NewRedisCache(cacheConfig(), rdb))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/lots/3/book", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
