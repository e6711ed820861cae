// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package middleware

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	keyCSPNonce = "csp_nonce"
	keyTraceID  = "trace_id"
)

func newNonce() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// RequestContext tags each request with a short trace id and a CSP nonce
// and logs it on completion. Asset requests are logged at debug level.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		traceID := uuid.NewString()[:8]
		c.Set(keyTraceID, traceID)
		c.Set(keyCSPNonce, newNonce())

		c.Next()

		level := slog.LevelInfo
		if strings.HasPrefix(c.Request.URL.Path, "/static/") {
			level = slog.LevelDebug
		}
		slog.Log(c.Request.Context(), level, "Request completed",
			"trace_id", traceID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// TraceID returns the request's trace id, or "" outside RequestContext.
func TraceID(c *gin.Context) string {
	return c.GetString(keyTraceID)
}

// CSPNonce returns the nonce page scripts must carry.
func CSPNonce(c *gin.Context) string {
	return c.GetString(keyCSPNonce)
}
