// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/kbeqi/llms-generator/go-server/internal/db"
	"github.com/kbeqi/llms-generator/go-server/internal/middleware"

	"github.com/gin-gonic/gin"
)

const recentUsageDays = 7

// UsageStore is the part of *db.Database the health report reads.
type UsageStore interface {
	HealthCheck(ctx context.Context) error
	RecentUsage(ctx context.Context, limit int) ([]db.DailyUsage, error)
}

type HealthHandler struct {
	DB        UsageStore
	StartTime time.Time
	Analytics *middleware.AnalyticsCollector
}

// NewHealthHandler builds the health endpoint; database and analytics may
// be nil.
func NewHealthHandler(database UsageStore, analytics *middleware.AnalyticsCollector) *HealthHandler {
	return &HealthHandler{
		DB:        database,
		StartTime: time.Now(),
		Analytics: analytics,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	dbStatus := "not configured"
	var recent []db.DailyUsage
	if h.DB != nil {
		dbStatus = "healthy"
		if err := h.DB.HealthCheck(ctx); err != nil {
			dbStatus = "unhealthy: " + err.Error()
		} else if days, err := h.DB.RecentUsage(ctx, recentUsageDays); err != nil {
			slog.Warn("Recent usage query failed", "error", err)
		} else {
			recent = days
		}
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := gin.H{
		"status":  "ok",
		"runtime": "go",
		"uptime":  time.Since(h.StartTime).String(),
		"database": gin.H{
			"status": dbStatus,
		},
		"recent_usage": recent,
		"memory": gin.H{
			"alloc_mb":       memStats.Alloc / 1024 / 1024,
			"sys_mb":         memStats.Sys / 1024 / 1024,
			"num_goroutines": runtime.NumGoroutine(),
		},
	}

	if h.Analytics != nil {
		response["usage"] = h.Analytics.Stats()
		if h.DB != nil {
			response["usage_store"] = h.Analytics.StoreHealth()
		}
	}

	c.JSON(http.StatusOK, response)
}
