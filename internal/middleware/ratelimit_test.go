package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveFrom(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", nil)
	req.RemoteAddr = ip + ":5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRedisRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	h := RedisRateLimit(client, 2, time.Minute)(okHandler)

	first := serveFrom(h, "10.0.0.1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, serveFrom(h, "10.0.0.1").Code)

	blocked := serveFrom(h, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	retry, err := strconv.Atoi(blocked.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.InDelta(t, 60, retry, 1)

	assert.Equal(t, http.StatusOK, serveFrom(h, "10.0.0.2").Code)

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, serveFrom(h, "10.0.0.1").Code)
}

func TestRedisRateLimitFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	h := RedisRateLimit(client, 1, time.Minute)(okHandler)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serveFrom(h, "10.0.0.1").Code)
	}
}

func TestRedisRateLimitWithoutClient(t *testing.T) {
	h := RedisRateLimit(nil, 1, time.Minute)(okHandler)
	assert.Equal(t, http.StatusOK, serveFrom(h, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, serveFrom(h, "10.0.0.1").Code)
}
