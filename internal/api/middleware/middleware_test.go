package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa911/portfolio-contact/internal/api/constants"
	"github.com/osa911/portfolio-contact/internal/api/dto/common"
	"github.com/osa911/portfolio-contact/internal/api/dto/v1/contact"
	"github.com/osa911/portfolio-contact/internal/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.POST("/submit", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func do(r http.Handler, method, path, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS_AllowAll(t *testing.T) {
	r := newRouter(CORS([]string{"*"}))

	w := do(r, http.MethodGet, "/ping", "https://anywhere.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestCORS_Preflight(t *testing.T) {
	r := newRouter(CORS(nil))

	for _, path := range []string{"/submit", "/does-not-exist"} {
		w := do(r, http.MethodOptions, path, "https://site.example")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Empty(t, w.Body.String(), path)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"), path)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type", path)
	}
}

func TestCORS_AllowList(t *testing.T) {
	r := newRouter(CORS([]string{"https://portfolio.example", " https://www.portfolio.example"}))

	w := do(r, http.MethodGet, "/ping", "https://www.portfolio.example")
	assert.Equal(t, "https://www.portfolio.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))

	w = do(r, http.MethodGet, "/ping", "https://evil.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newRouter(RateLimitMiddleware(RateLimitConfig{RPS: 1, Burst: 3}))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "").Code)
	}

	w := do(r, http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	var resp common.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "RATE_LIMITED", resp.Error)
	assert.Equal(t, "TOO_MANY_REQUESTS", resp.Code)
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	r := newRouter(RateLimitMiddleware(RateLimitConfig{}))
	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "").Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	w := do(newRouter(SecurityHeaders()), http.MethodGet, "/ping", "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestBindContactRequest(t *testing.T) {
	var bound *contact.ContactRequest
	r := gin.New()
	r.POST("/submit", LimitRequestBody(constants.MaxContactBodyBytes), BindContactRequest(), func(c *gin.Context) {
		v, _ := c.Get(constants.ContextKeyContact)
		bound = v.(*contact.ContactRequest)
		c.Status(http.StatusOK)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"name":"Jo","email":"jo@example.com","message":"Hello there, this is a test."}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, bound)
	assert.Equal(t, "Jo", bound.Name)

	w = post(`{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_BODY")

	big := `{"name":"Jo","email":"jo@example.com","message":"` + strings.Repeat("x", int(constants.MaxContactBodyBytes)) + `"}`
	w = post(big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_BODY")
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriterLogger(&buf, logging.LevelInfo)

	// request lines are off unless enabled
	do(newRouter(RequestLogger(logger)), http.MethodGet, "/ping", "")
	assert.Empty(t, buf.String())
}
