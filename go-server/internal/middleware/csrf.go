// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CSRFCookieName = "llmsgen_csrf"
	CSRFFormField  = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"

	keyCSRFToken  = "csrf_token"
	csrfTokenSize = 32
	csrfCookieTTL = 3600
)

var (
	errCSRFNoCookie      = errors.New("missing CSRF cookie")
	errCSRFBadSignature  = errors.New("invalid CSRF cookie signature")
	errCSRFTokenMismatch = errors.New("CSRF token mismatch")
)

// CSRFGuard protects the form posts with HMAC-signed double-submit tokens.
// The cookie holds token.signature; the page echoes the bare token back in
// the form field or header. API routes and crawler files are exempt.
type CSRFGuard struct {
	key []byte
}

func NewCSRFGuard(secret string) *CSRFGuard {
	return &CSRFGuard{key: []byte(secret)}
}

func (g *CSRFGuard) mac(token string) string {
	h := hmac.New(sha256.New, g.key)
	h.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func (g *CSRFGuard) seal(token string) string {
	return token + "." + g.mac(token)
}

func (g *CSRFGuard) open(sealed string) (string, bool) {
	token, sig, ok := strings.Cut(sealed, ".")
	if !ok || token == "" || !hmac.Equal([]byte(sig), []byte(g.mac(token))) {
		return "", false
	}
	return token, true
}

func csrfExempt(path string) bool {
	if strings.HasPrefix(path, "/api/") {
		return true
	}
	switch path {
	case "/go/health", "/robots.txt", "/llms.txt", "/sitemap.xml":
		return true
	}
	return false
}

func safeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

func (g *CSRFGuard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch {
		case safeMethod(c.Request.Method):
			c.Set(keyCSRFToken, g.issue(c))
		case csrfExempt(c.Request.URL.Path):
		default:
			token, err := g.verify(c)
			if err != nil {
				g.reject(c, err)
				return
			}
			c.Set(keyCSRFToken, token)
		}
		c.Next()
	}
}

// issue reuses a valid cookie token or sets a fresh one.
func (g *CSRFGuard) issue(c *gin.Context) string {
	if sealed, err := c.Cookie(CSRFCookieName); err == nil {
		if token, ok := g.open(sealed); ok {
			return token
		}
	}

	b := make([]byte, csrfTokenSize)
	_, _ = rand.Read(b)
	token := base64.RawURLEncoding.EncodeToString(b)

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    g.seal(token),
		Path:     "/",
		MaxAge:   csrfCookieTTL,
		HttpOnly: true,
		Secure:   isHTTPS(c),
		SameSite: http.SameSiteStrictMode,
	})
	return token
}

func (g *CSRFGuard) verify(c *gin.Context) (string, error) {
	sealed, err := c.Cookie(CSRFCookieName)
	if err != nil || sealed == "" {
		return "", errCSRFNoCookie
	}
	token, ok := g.open(sealed)
	if !ok {
		return "", errCSRFBadSignature
	}

	submitted := c.PostForm(CSRFFormField)
	if submitted == "" {
		submitted = c.GetHeader(CSRFHeaderName)
	}
	if !hmac.Equal([]byte(submitted), []byte(token)) {
		return "", errCSRFTokenMismatch
	}
	return token, nil
}

// reject answers JSON clients with a 403 body and sends browsers back to
// the form with a flash, since the usual cause is an expired page.
func (g *CSRFGuard) reject(c *gin.Context, reason error) {
	slog.Warn("CSRF validation failed",
		"trace_id", TraceID(c),
		"reason", reason.Error(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
	)
	if wantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Form expired. Reload the page and try again."})
		return
	}
	SetFlash(c, "warning", "Your form expired. Please try again.")
	c.Redirect(http.StatusSeeOther, "/")
	c.Abort()
}

// GetCSRFToken returns the token to embed in the page.
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(keyCSRFToken)
}
