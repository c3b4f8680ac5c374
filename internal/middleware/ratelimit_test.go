package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(generalMax, evalMax int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(time.Minute, generalMax, time.Minute, evalMax))
	r.GET("/api/other", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/evaluate", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "203.0.113.1:12345"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_AllowsUpToBurst(t *testing.T) {
	r := newTestRouter(2, 5)

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/api/other").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/api/other").Code)

	rec := doRequest(r, http.MethodGet, "/api/other")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimit_RetryAfterIsPlainSeconds(t *testing.T) {
	r := newTestRouter(1, 5)
	doRequest(r, http.MethodGet, "/api/other")
	rec := doRequest(r, http.MethodGet, "/api/other")

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"),
		"Retry-After must be a plain integer-seconds string, not a Go duration like 1m0s")
}

func TestRateLimit_EvalTierIsIndependentAndTighter(t *testing.T) {
	r := newTestRouter(100, 1)

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "/api/evaluate").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, http.MethodPost, "/api/evaluate").Code)

	// The general tier's budget is untouched by the evaluation tier's limiter.
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/api/other").Code)
}
