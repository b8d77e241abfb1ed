package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/doctors-portal-api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens(t *testing.T) *utils.TokenService {
	t.Helper()
	svc, err := utils.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	return svc
}

func authRouter(tokens TokenVerifier) *gin.Engine {
	r := gin.New()
	r.GET("/private", AuthMiddleware(tokens), func(c *gin.Context) {
		email, _ := Email(c)
		claims, _ := c.Get(ContextClaims)
		c.JSON(http.StatusOK, gin.H{"email": email, "hasClaims": claims != nil})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tokens := newTokens(t)
	valid, err := tokens.Issue("a@x.com")
	require.NoError(t, err)

	cases := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing header", "", http.StatusUnauthorized, "Unauthorized access"},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "Unauthorized access"},
		{"bearer without token", "Bearer", http.StatusForbidden, "Forbidden access"},
		{"garbage token", "Bearer nope", http.StatusForbidden, "Forbidden access"},
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, ""},
	}

	r := authRouter(tokens)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tc.status == http.StatusOK {
				assert.Equal(t, "a@x.com", body["email"])
				assert.Equal(t, true, body["hasClaims"])
			} else {
				assert.Equal(t, tc.message, body["message"])
			}
		})
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	short, err := utils.NewTokenService("test-secret", time.Nanosecond)
	require.NoError(t, err)
	token, err := short.Issue("a@x.com")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	authRouter(newTokens(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(HeaderXRequestID)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "my-id")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "my-id", rec.Header().Get(HeaderXRequestID))
}

func TestLoggerAndRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestID(), Logger(logger), Recovery(logger))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom?x=1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	out := buf.String()
	assert.Contains(t, out, "panic recovered")
	assert.Contains(t, out, "kaboom")
	assert.Contains(t, out, `"path":"/boom"`)
	assert.Contains(t, out, `"status":500`)
	assert.True(t, strings.Contains(out, `"level":"error"`))
}

func TestLoggerOmitsPersonalData(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(Logger(zerolog.New(&buf)))
	r.GET("/admin/:email", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/booking", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, target := range []string{"/admin/a@x.com", "/booking?patient=a%40x.com", "/missing/a@x.com"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	out := buf.String()
	assert.Contains(t, out, `"path":"/admin/:email"`)
	assert.Contains(t, out, `"path":"/booking"`)
	assert.Contains(t, out, `"path":"unmatched"`)
	assert.NotContains(t, out, "a@x.com")
	assert.NotContains(t, out, "a%40x.com")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, time.Minute)

	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code, "other clients have their own bucket")
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/doctor/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/doctor/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/doctor/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}
