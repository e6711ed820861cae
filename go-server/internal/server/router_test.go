package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/kbeqi/llms-generator/go-server/internal/config"
	"github.com/kbeqi/llms-generator/go-server/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var csrfInput = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func newTestRouter(t *testing.T, maxRequests int) (*gin.Engine, *middleware.AnalyticsCollector) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		AppVersion:    "test",
		BaseURL:       "https://llms.example.com",
		SessionSecret: "test-secret",
	}
	analytics := middleware.NewAnalyticsCollector(nil, SiteHost(cfg.BaseURL))
	router, err := NewRouter(Deps{
		Config:    cfg,
		Analytics: analytics,
		Limiter:   middleware.NewInMemoryRateLimiter(ctx, maxRequests),
	})
	require.NoError(t, err)
	return router, analytics
}

// fetchToken loads the form and returns the CSRF cookie and field value.
func fetchToken(t *testing.T, router *gin.Engine) (*http.Cookie, string) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.CSRFCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "CSRF cookie not set")
	m := csrfInput.FindStringSubmatch(w.Body.String())
	require.Len(t, m, 2, "CSRF field not rendered")
	return cookie, m[1]
}

func postForm(router *gin.Engine, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestFormSubmitRequiresCSRF(t *testing.T) {
	router, _ := newTestRouter(t, 60)

	form := url.Values{"submitted": {"1"}, "allow": {"ClaudeBot"}}
	w := postForm(router, "/", form, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	cookie, token := fetchToken(t, router)
	form.Set("csrf_token", token)
	w = postForm(router, "/", form, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "User-Agent: ClaudeBot\nAllow: /")
	assert.Contains(t, w.Body.String(), "User-Agent: OpenAI\nDisallow: /")
}

func TestDownloadThroughRouter(t *testing.T) {
	router, analytics := newTestRouter(t, 60)
	cookie, token := fetchToken(t, router)

	form := url.Values{
		"csrf_token": {token},
		"submitted":  {"1"},
		"site_url":   {"https://x.com"},
		"allow":      {"OpenAI", "Perplexity"},
	}
	w := postForm(router, "/download", form, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=LLMs.txt", w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "# LLMs.txt generated for https://x.com\n"))
	assert.EqualValues(t, 1, analytics.Stats().Downloads)
}

func TestAPIGenerateIsCSRFExempt(t *testing.T) {
	router, analytics := newTestRouter(t, 60)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"policy":{"CCBot":true}}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, strings.HasSuffix(body.Text, "User-Agent: CCBot\nAllow: /"))
	assert.EqualValues(t, 1, analytics.Stats().Generations)
}

func TestDownloadRateLimited(t *testing.T) {
	router, _ := newTestRouter(t, 2)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/download", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		last = httptest.NewRecorder()
		router.ServeHTTP(last, req)
	}
	assert.Equal(t, http.StatusSeeOther, last.Code)
	assert.Equal(t, "/", last.Header().Get("Location"))
}

func TestAPIGenerateKeepsUpWithTyping(t *testing.T) {
	router, _ := newTestRouter(t, config.DefaultRateLimitMaxRequests)

	site := "https://a-rather-long-site-name.example.com/with/a/path"
	contact := "webmaster-and-crawler-policy-owner@example.com"

	generate := func(siteURL, contactValue string) *httptest.ResponseRecorder {
		body, err := json.Marshal(map[string]any{"site_url": siteURL, "contact": contactValue})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.10:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	var last *httptest.ResponseRecorder
	for i := 1; i <= len(site); i++ {
		last = generate(site[:i], "")
		require.Equal(t, http.StatusOK, last.Code, "edit %d", i)
	}
	for i := 1; i <= len(contact); i++ {
		last = generate(site, contact[:i])
		require.Equal(t, http.StatusOK, last.Code, "edit %d", len(site)+i)
	}

	var resp struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(last.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Text, "# LLMs.txt generated for "+site+"\n"))
	assert.True(t, strings.HasSuffix(resp.Text, "\n\n# Contact: "+contact))
}

func TestCopyEventCounted(t *testing.T) {
	router, analytics := newTestRouter(t, 60)

	for _, body := range []string{`{"event":"copy","ok":true}`, `{"event":"copy","ok":false,"error":"denied"}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusNoContent, w.Code)
	}
	stats := analytics.Stats()
	assert.EqualValues(t, 1, stats.Copies)
	assert.EqualValues(t, 1, stats.CopyFailures)
}

func TestNotFoundAndSecurityHeaders(t *testing.T) {
	router, _ := newTestRouter(t, 60)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "nonce-")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestSiteHost(t *testing.T) {
	assert.Equal(t, "llms.example.com", SiteHost("https://llms.example.com:8443/x"))
	assert.Equal(t, "", SiteHost("://bad"))
}
