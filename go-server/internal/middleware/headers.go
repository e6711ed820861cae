// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

var staticSecurityHeaders = map[string]string{
	"X-Content-Type-Options":       "nosniff",
	"X-Frame-Options":              "DENY",
	"Referrer-Policy":              "strict-origin-when-cross-origin",
	"Permissions-Policy":           "geolocation=(), microphone=(), camera=(), payment=(), usb=(), interest-cohort=(), browsing-topics=(), clipboard-write=(self)",
	"Cross-Origin-Opener-Policy":   "same-origin",
	"Cross-Origin-Resource-Policy": "same-origin",
}

const hstsValue = "max-age=63072000; includeSubDomains"

func isHTTPS(c *gin.Context) bool {
	return c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
}

// contentSecurityPolicy allows only same-origin assets, the nonce'd page
// script, same-origin fetches for event reports and same-origin form posts.
func contentSecurityPolicy(nonce string, https bool) string {
	directives := []string{
		"default-src 'none'",
		"script-src 'self' 'nonce-" + nonce + "'",
		"style-src 'self'",
		"img-src 'self' data:",
		"connect-src 'self'",
		"form-action 'self'",
		"frame-ancestors 'none'",
		"base-uri 'none'",
	}
	if https {
		directives = append(directives, "upgrade-insecure-requests")
	}
	return strings.Join(directives, "; ")
}

// SecurityHeaders must run after RequestContext. HSTS is only sent over
// HTTPS; browsers ignore it on plain HTTP.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		for name, value := range staticSecurityHeaders {
			c.Header(name, value)
		}
		https := isHTTPS(c)
		if https {
			c.Header("Strict-Transport-Security", hstsValue)
		}
		c.Header("Content-Security-Policy", contentSecurityPolicy(CSPNonce(c), https))
		c.Next()
	}
}
