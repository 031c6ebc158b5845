package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/auth"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(ActorFromContext(r.Context())))
	})
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewManager("secret", time.Hour)
	h := RequireAuth(tokens)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analytics/status", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authorization required"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/analytics/status", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _, err := tokens.Issue("asha", "staff")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/analytics/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "asha", rec.Body.String())
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	h := OptionalAuth(auth.NewManager("secret", time.Hour))(okHandler())

	req := httptest.NewRequest(http.MethodPut, "/complaintslogs/c-1", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders()(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRedisLimiterFixedWindow(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	limiter := NewRedisLimiter(client, 2)
	limiter.now = func() time.Time { return time.Unix(1700000000, 0) }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "other callers keep their own window")

	limiter.now = func() time.Time { return time.Unix(1700000060, 0) }
	ok, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "next window resets the count")
}

func TestRedisLimiterNonPositiveLimitDisablesLimiting(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	for _, limit := range []int{0, -1} {
		limiter := NewRedisLimiter(client, limit)
		for i := 0; i < 5; i++ {
			ok, err := limiter.Allow(context.Background(), "10.0.0.1")
			require.NoError(t, err)
			assert.True(t, ok, "limit %d", limit)
		}
	}
	assert.Empty(t, srv.Keys(), "disabled limiter never touches redis")
}

func TestRateLimitFailsOpenWhenRedisDown(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr(), MaxRetries: -1})
	defer client.Close()
	srv.Close()

	h := RateLimit(NewRedisLimiter(client, 1), zap.NewNop().Sugar())(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload-media", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitLocal(t *testing.T) {
	h := RateLimit(NewLocalLimiter(1), zap.NewNop().Sugar())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/upload-media", nil)
	req.RemoteAddr = "192.0.2.1:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Rate limit exceeded"}`, rec.Body.String())
}
