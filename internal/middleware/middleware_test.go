package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibecircles.web/internal/jwt"
	"vibecircles.web/pkg/response"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestJWTAuth(t *testing.T) {
	jwtService := jwt.NewService("test-secret-key", time.Hour, "vibecircles")
	expired := jwt.NewService("test-secret-key", -time.Hour, "vibecircles")

	valid, _, err := jwtService.GenerateAccessToken(42)
	require.NoError(t, err)
	stale, _, err := expired.GenerateAccessToken(42)
	require.NoError(t, err)

	router := setupTestRouter()
	router.GET("/me", JWTAuth(jwtService), func(c *gin.Context) {
		response.Success(c, gin.H{"userId": GetUserID(c)})
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"missing header", "", http.StatusUnauthorized, "Access denied. No token provided."},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "Access denied. No token provided."},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "Access denied. No token provided."},
		{"invalid token", "Bearer not-a-token", http.StatusUnauthorized, "Invalid token"},
		{"expired token", "Bearer " + stale, http.StatusUnauthorized, "Token expired"},
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w)
			if tt.wantStatus == http.StatusOK {
				assert.True(t, resp.Success)
				assert.Equal(t, float64(42), resp.Data.(map[string]interface{})["userId"])
			} else {
				assert.False(t, resp.Success)
				assert.Equal(t, tt.wantMsg, resp.Message)
			}
		})
	}
}

func TestGetUserID_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, int64(0), GetUserID(c))
}

func TestCORS(t *testing.T) {
	router := setupTestRouter()
	router.Use(CORS([]string{"http://localhost:3000"}, []string{"GET", "POST"}, true))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestLogger_RequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := setupTestRouter()
	router.Use(Logger(logger))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generated", func(t *testing.T) {
		buf.Reset()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping?x=1", nil))

		id := w.Header().Get(HeaderRequestID)
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Body.String())

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "HTTP request", entry["msg"])
		assert.Equal(t, id, entry["requestId"])
		assert.Equal(t, "/ping?x=1", entry["path"])
		assert.Equal(t, float64(200), entry["status"])
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(HeaderRequestID, "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
		assert.Equal(t, "req-123", w.Body.String())
	})
}

func TestRecovery(t *testing.T) {
	router := setupTestRouter()
	router.Use(Recovery(discardLogger()))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Internal server error")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	limiter := NewRateLimiter(client, 1, time.Minute)
	limiter.logger = discardLogger()

	router := setupTestRouter()
	router.Use(RateLimit(limiter))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimit_Redis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("skipping: redis unavailable: %v", err)
	}

	limiter := NewRateLimiter(client, 2, time.Minute)
	// a window nobody else shares
	fixed := time.Unix(int64(time.Now().Nanosecond())*60, 0)
	limiter.now = func() time.Time { return fixed }

	router := setupTestRouter()
	router.Use(RateLimit(limiter))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)

		if w.Code == http.StatusTooManyRequests {
			resp := decode(t, w)
			assert.Equal(t, "Too many requests from this IP, please try again later.", resp.Message)
			assert.Equal(t, "0", w.Header().Get("RateLimit-Remaining"))
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	client.Del(ctx, rateLimitKey("203.0.113.7", fixed.Truncate(time.Minute)))
}
