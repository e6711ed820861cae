// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package server

import (
	"net/url"

	"github.com/kbeqi/llms-generator/go-server/internal/config"
	"github.com/kbeqi/llms-generator/go-server/internal/db"
	"github.com/kbeqi/llms-generator/go-server/internal/handlers"
	"github.com/kbeqi/llms-generator/go-server/internal/middleware"
	"github.com/kbeqi/llms-generator/go-server/internal/templates"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Deps are the long-lived collaborators shared by all requests. DB may be nil.
type Deps struct {
	Config    *config.Config
	DB        *db.Database
	Analytics *middleware.AnalyticsCollector
	Limiter   middleware.RateLimiter
}

// NewRouter wires middleware and routes. Form state is never shared between
// requests; each handler builds its own from the request.
func NewRouter(d Deps) (*gin.Engine, error) {
	tmpl, err := templates.Load()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	router.Use(middleware.Recovery(d.Config.AppVersion))
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.RequestContext())
	router.Use(middleware.SecurityHeaders())

	router.Use(middleware.NewCSRFGuard(d.Config.SessionSecret).Middleware())

	var usage handlers.UsageRecorder
	if d.Analytics != nil {
		router.Use(d.Analytics.Middleware())
		usage = d.Analytics
	}

	homeHandler := handlers.NewHomeHandler(d.Config, usage)
	generateHandler := handlers.NewGenerateHandler(usage)
	eventsHandler := handlers.NewEventsHandler(usage)
	var store handlers.UsageStore
	if d.DB != nil {
		store = d.DB
	}
	healthHandler := handlers.NewHealthHandler(store, d.Analytics)
	staticHandler := handlers.NewStaticHandler(templates.StaticFS(), d.Config.BaseURL)

	limit := func(c *gin.Context) { c.Next() }
	if d.Limiter != nil {
		limit = middleware.RateLimit(d.Limiter)
	}

	router.GET("/", homeHandler.Index)
	router.POST("/", limit, homeHandler.Submit)

	router.GET("/download", limit, generateHandler.Download)
	router.POST("/download", limit, generateHandler.Download)

	router.POST("/api/generate", generateHandler.APIGenerate)
	router.GET("/api/catalog", generateHandler.APICatalog)
	router.POST("/api/events", eventsHandler.Record)

	router.GET("/api/health", healthHandler.HealthCheck)
	router.GET("/go/health", healthHandler.HealthCheck)

	router.GET("/robots.txt", staticHandler.RobotsTxt)
	router.GET("/llms.txt", staticHandler.LLMsTxt)
	router.GET("/sitemap.xml", staticHandler.SitemapXML)
	router.GET("/static/*filepath", staticHandler.Assets)
	router.HEAD("/static/*filepath", staticHandler.Assets)

	router.NoRoute(homeHandler.NotFound)

	return router, nil
}

// SiteHost extracts the hostname used to ignore self referrals.
func SiteHost(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
