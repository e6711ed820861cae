// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	RateLimitWindow      = 60 * time.Second
	RateLimitMaxRequests = 60

	cleanupInterval = 5 * time.Minute
)

type RateLimitResult struct {
	Allowed     bool
	Reason      string
	WaitSeconds int
}

type RateLimiter interface {
	CheckAndRecord(ip string) RateLimitResult
}

// InMemoryRateLimiter is a per-IP sliding window limiter.
type InMemoryRateLimiter struct {
	mu          sync.Mutex
	requests    map[string][]time.Time
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// NewInMemoryRateLimiter starts a limiter whose cleanup loop runs until ctx
// is cancelled. maxRequests <= 0 selects RateLimitMaxRequests.
func NewInMemoryRateLimiter(ctx context.Context, maxRequests int) *InMemoryRateLimiter {
	if maxRequests <= 0 {
		maxRequests = RateLimitMaxRequests
	}
	limiter := &InMemoryRateLimiter{
		requests:    make(map[string][]time.Time),
		maxRequests: maxRequests,
		window:      RateLimitWindow,
		now:         time.Now,
	}

	go limiter.cleanupLoop(ctx)

	return limiter
}

func (l *InMemoryRateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *InMemoryRateLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for ip, entries := range l.requests {
		l.requests[ip] = l.pruneOld(entries, now)
		if len(l.requests[ip]) == 0 {
			delete(l.requests, ip)
		}
	}
}

func (l *InMemoryRateLimiter) pruneOld(entries []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	result := entries[:0]
	for _, ts := range entries {
		if !ts.Before(cutoff) {
			result = append(result, ts)
		}
	}
	return result
}

func (l *InMemoryRateLimiter) CheckAndRecord(ip string) RateLimitResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entries := l.pruneOld(l.requests[ip], now)

	if len(entries) >= l.maxRequests {
		l.requests[ip] = entries
		waitSeconds := int(entries[0].Add(l.window).Sub(now).Seconds()) + 1
		if waitSeconds < 1 {
			waitSeconds = 1
		}
		return RateLimitResult{
			Allowed:     false,
			Reason:      "rate_limit",
			WaitSeconds: waitSeconds,
		}
	}

	l.requests[ip] = append(entries, now)

	return RateLimitResult{
		Allowed: true,
		Reason:  "ok",
	}
}

func wantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/") ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}

// RateLimit rejects requests from clients over their budget. API callers get
// a JSON 429; browsers are redirected to the form with a flash message.
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		result := limiter.CheckAndRecord(clientIP)
		if result.Allowed {
			c.Next()
			return
		}

		slog.Info("Rate limit triggered",
			"trace_id", TraceID(c),
			"ip", clientIP,
			"path", c.Request.URL.Path,
			"wait_seconds", result.WaitSeconds,
		)

		msg := fmt.Sprintf("Rate limit reached. Please wait %d seconds before trying again.", result.WaitSeconds)
		if wantsJSON(c) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":        msg,
				"reason":       result.Reason,
				"wait_seconds": result.WaitSeconds,
			})
		} else {
			SetFlash(c, "warning", msg)
			c.Redirect(http.StatusSeeOther, "/")
		}
		c.Abort()
	}
}
