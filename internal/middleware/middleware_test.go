package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/movierec/internal/config"
	"github.com/temcen/movierec/internal/validation"
	"github.com/temcen/movierec/pkg/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"request_id": c.GetString("request_id")})
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", ok)

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		router.ServeHTTP(w, req)
		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})

	t.Run("propagated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		router.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Contains(t, w.Body.String(), "abc-123")
	})
}

func TestSecurityAndCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Security.CORS = config.CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
	}

	router := gin.New()
	router.Use(CORS(cfg), Security())
	router.GET("/", ok)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://example.com")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery(quietLogger()))
	router.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
}

type fakeLimiter struct {
	allowed bool
	err     error
}

func (f fakeLimiter) IsAllowed(ctx context.Context, clientID string) (bool, *models.RateLimitInfo, error) {
	if f.err != nil {
		return false, nil, f.err
	}
	remaining := 0
	if f.allowed {
		remaining = 5
	}
	return f.allowed, &models.RateLimitInfo{Limit: 10, Remaining: remaining, ResetTime: 1700000000}, nil
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name         string
		limiter      fakeLimiter
		expectedCode int
		limitHeader  string
	}{
		{name: "allowed", limiter: fakeLimiter{allowed: true}, expectedCode: http.StatusOK, limitHeader: "10"},
		{name: "exceeded", limiter: fakeLimiter{allowed: false}, expectedCode: http.StatusTooManyRequests, limitHeader: "10"},
		{name: "limiter error passes", limiter: fakeLimiter{err: errors.New("down")}, expectedCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RateLimit(tt.limiter, quietLogger()))
			router.GET("/", ok)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Equal(t, tt.limitHeader, w.Header().Get("X-RateLimit-Limit"))
			if tt.expectedCode == http.StatusTooManyRequests {
				assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
			}
		})
	}
}

func TestValidationMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sv, err := validation.NewSchemaValidator()
	require.NoError(t, err)
	vm := NewValidationMiddleware(sv)

	router := gin.New()
	router.POST("/ratings", vm.ValidateRating(), func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_JSON"}})
			return
		}
		c.JSON(http.StatusOK, body)
	})
	router.POST("/tags", vm.ValidateTag(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	tests := []struct {
		name         string
		path         string
		body         string
		expectedCode int
		errorCode    string
	}{
		{name: "valid body reaches handler", path: "/ratings", body: `{"userId": 1, "movieId": 2, "rating": 4}`, expectedCode: http.StatusOK},
		{name: "schema violation", path: "/ratings", body: `{"userId": 1, "movieId": 2, "rating": 4.2}`, expectedCode: http.StatusBadRequest, errorCode: "VALIDATION_ERROR"},
		{name: "empty body", path: "/ratings", body: ``, expectedCode: http.StatusBadRequest, errorCode: "EMPTY_BODY"},
		{name: "malformed json left to handler", path: "/ratings", body: `{"userId":`, expectedCode: http.StatusBadRequest, errorCode: "INVALID_JSON"},
		{name: "valid tag", path: "/tags", body: `{"userId": 1, "movieId": 2, "tag": "noir"}`, expectedCode: http.StatusCreated},
		{name: "blank tag", path: "/tags", body: `{"userId": 1, "movieId": 2, "tag": " "}`, expectedCode: http.StatusBadRequest, errorCode: "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.errorCode != "" {
				var resp struct {
					Error struct {
						Code string `json:"code"`
					} `json:"error"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.errorCode, resp.Error.Code)
			}
		})
	}
}
