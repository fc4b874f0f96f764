package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/teamtask/internal/constants"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeAuth map[string]uint64

func (f fakeAuth) Authenticate(token string) (uint64, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return 0, errors.New("bad token")
}

type fakeLimiter struct {
	allowed bool
	retry   time.Duration
	err     error
	keys    []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.retry, f.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func errorName(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Data  interface{} `json:"data"`
		Error struct {
			Name string `json:"name"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Nil(t, body.Data)
	return body.Error.Name
}

func TestRequireAuth(t *testing.T) {
	r := gin.New()
	r.GET("/me", RequireAuth(fakeAuth{"good": 7}), func(c *gin.Context) {
		id, ok := GetUserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "UnauthorizedError", errorName(t, w))
			}
		})
	}
}

func TestRequireID(t *testing.T) {
	r := gin.New()
	r.GET("/tasks/:id", RequireID(), func(c *gin.Context) {
		id, _ := GetID(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/12", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":12}`, w.Body.String())

	for _, bad := range []string{"/tasks/abc", "/tasks/0", "/tasks/-1"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, bad, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
		assert.Equal(t, "ValidationError", errorName(t, w))
	}
}

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{allowed: false, retry: 1500 * time.Millisecond}
	r := gin.New()
	r.Use(RateLimit(limiter, zap.NewNop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get(constants.HeaderRetryAfter))
	assert.Equal(t, "RateLimitError", errorName(t, w))
	require.Len(t, limiter.keys, 1)
	assert.Contains(t, limiter.keys[0], "ip:")

	limiter.allowed = true
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	// A failing limiter lets requests through.
	limiter.allowed, limiter.err = false, errors.New("redis down")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimitKeysByUser(t *testing.T) {
	limiter := &fakeLimiter{allowed: true}
	r := gin.New()
	r.GET("/x", RequireAuth(fakeAuth{"t": 9}), RateLimit(limiter, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(constants.HeaderAuthorization, "Bearer t")
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, []string{"user:9"}, limiter.keys)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	generated := w.Header().Get(constants.HeaderRequestID)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(constants.HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(constants.HeaderRequestID))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "request handled", entries[0].Message)
	assert.Equal(t, "request rejected", entries[1].Message)
	assert.Equal(t, "abc-123", entries[1].ContextMap()["request_id"])
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "ApplicationError", errorName(t, w))
	assert.Equal(t, 1, logs.Len())
}
