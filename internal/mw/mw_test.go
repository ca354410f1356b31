package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCache(t *testing.T) {
	calls := 0
	r := gin.New()
	r.GET("/dash/:id", Cache(cache.New(time.Minute, time.Minute), time.Minute), func(c *gin.Context) {
		calls++
		if c.Param("id") == "missing" {
			c.JSON(http.StatusNotFound, gin.H{"error": "no"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	first := serve(r, "/dash/a", nil)
	second := serve(r, "/dash/a", nil)

	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
	assert.Equal(t, 1, calls)

	serve(r, "/dash/missing", nil)
	serve(r, "/dash/missing", nil)
	assert.Equal(t, 3, calls, "error responses must not be cached")

	third := serve(r, "/dash/a?bust=1", nil)
	assert.Equal(t, "HIT", third.Header().Get("X-Cache"), "query strings share the path entry")

	fresh := serve(r, "/dash/a", map[string]string{"Cache-Control": "no-cache"})
	assert.Equal(t, "MISS", fresh.Header().Get("X-Cache"))
	assert.Equal(t, 4, calls)
	assert.JSONEq(t, `{"calls":4}`, serve(r, "/dash/a", nil).Body.String())
	assert.Equal(t, "private, max-age=60", fresh.Header().Get("Cache-Control"))
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimiter(rate.Limit(1), 2), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(r, "/", nil).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, "/", nil).Code)
	w := serve(r, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
}

func TestIPRateLimiter_PerIP(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 1, time.Minute)

	assert.True(t, l.GetLimiter("10.0.0.1").Allow())
	assert.False(t, l.GetLimiter("10.0.0.1").Allow())
	assert.True(t, l.GetLimiter("10.0.0.2").Allow())
}

func TestAdminSecret(t *testing.T) {
	testCases := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
	}{
		{name: "valid secret", secret: "s3cret", header: "s3cret", wantStatus: http.StatusOK},
		{name: "wrong secret", secret: "s3cret", header: "nope", wantStatus: http.StatusUnauthorized},
		{name: "missing header", secret: "s3cret", wantStatus: http.StatusUnauthorized},
		{name: "unconfigured secret", secret: "", header: "", wantStatus: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", AdminSecret(tc.secret), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := serve(r, "/", map[string]string{AdminSecretHeader: tc.header})
			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}
