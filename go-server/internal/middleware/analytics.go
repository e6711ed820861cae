// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package middleware

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kbeqi/llms-generator/go-server/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	analyticsFlushInterval = 60 * time.Second

	// UsageStoreBackend names the analytics table in health reports.
	UsageStoreBackend = "usage_store"
)

// Execer is the subset of *pgxpool.Pool the collector writes through.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// UsageStats are counters since process start. Form contents are never
// recorded, only that an action happened.
type UsageStats struct {
	Pageviews    int64 `json:"pageviews"`
	Generations  int64 `json:"generations"`
	Downloads    int64 `json:"downloads"`
	Copies       int64 `json:"copies"`
	CopyFailures int64 `json:"copy_failures"`
}

// AnalyticsCollector aggregates privacy-preserving daily counters and
// flushes them to site_analytics when a database is configured.
type AnalyticsCollector struct {
	pool   Execer
	host   string
	now    func() time.Time
	health *telemetry.Registry

	mu           sync.Mutex
	dailySalt    string
	saltDate     string
	visitors     map[string]bool
	pageviews    int
	pageCounts   map[string]int
	refCounts    map[string]int
	generations  int
	downloads    int
	copies       int
	copyFailures int
	totals       UsageStats
}

// NewAnalyticsCollector creates a collector. pool may be nil, in which case
// counters are kept in memory only. host is this site's own hostname and is
// excluded from referrer counts.
func NewAnalyticsCollector(pool Execer, host string) *AnalyticsCollector {
	ac := &AnalyticsCollector{
		pool:       pool,
		host:       strings.ToLower(host),
		now:        time.Now,
		health:     telemetry.NewRegistry(),
		visitors:   make(map[string]bool),
		pageCounts: make(map[string]int),
		refCounts:  make(map[string]int),
	}
	ac.rotateSalt()
	return ac
}

func (ac *AnalyticsCollector) rotateSalt() {
	today := ac.now().UTC().Format("2006-01-02")
	if ac.saltDate == today {
		return
	}
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	ac.dailySalt = hex.EncodeToString(b)
	ac.saltDate = today
	ac.visitors = make(map[string]bool)
	ac.pageCounts = make(map[string]int)
	ac.refCounts = make(map[string]int)
	ac.pageviews = 0
	ac.generations = 0
	ac.downloads = 0
	ac.copies = 0
	ac.copyFailures = 0
}

func (ac *AnalyticsCollector) pseudoID(ip string) string {
	h := sha256.Sum256([]byte(ac.dailySalt + "|" + ip))
	return hex.EncodeToString(h[:8])
}

func isUntrackedPath(path string) bool {
	return strings.HasPrefix(path, "/static/") ||
		strings.HasPrefix(path, "/api/") ||
		strings.HasPrefix(path, "/favicon") ||
		strings.HasPrefix(path, "/.well-known/") ||
		path == "/robots.txt" ||
		path == "/llms.txt" ||
		path == "/sitemap.xml" ||
		path == "/go/health"
}

// Middleware counts successful GET page views.
func (ac *AnalyticsCollector) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != "GET" || isUntrackedPath(path) {
			c.Next()
			return
		}

		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		referer := ac.extractRefOrigin(c.Request.Referer())

		ac.mu.Lock()
		ac.rotateSalt()
		ac.pageviews++
		ac.totals.Pageviews++
		ac.visitors[ac.pseudoID(c.ClientIP())] = true
		ac.pageCounts[normalizePath(path)]++
		if referer != "" && referer != "direct" {
			ac.refCounts[referer]++
		}
		ac.mu.Unlock()
	}
}

func (ac *AnalyticsCollector) RecordGenerate() {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	ac.rotateSalt()
	ac.generations++
	ac.totals.Generations++
}

func (ac *AnalyticsCollector) RecordDownload() {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	ac.rotateSalt()
	ac.downloads++
	ac.totals.Downloads++
}

func (ac *AnalyticsCollector) RecordCopy(ok bool) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	ac.rotateSalt()
	if ok {
		ac.copies++
		ac.totals.Copies++
		return
	}
	ac.copyFailures++
	ac.totals.CopyFailures++
}

func (ac *AnalyticsCollector) Stats() UsageStats {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.totals
}

func (ac *AnalyticsCollector) extractRefOrigin(ref string) string {
	if ref == "" {
		return "direct"
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "direct"
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "direct"
	}
	if host == ac.host {
		return ""
	}
	return host
}

func normalizePath(p string) string {
	if p == "/" {
		return "/"
	}
	p = strings.TrimRight(p, "/")
	parts := strings.SplitN(p, "?", 2)
	return parts[0]
}

// Run flushes on an interval until ctx is cancelled, then flushes once more.
func (ac *AnalyticsCollector) Run(ctx context.Context) {
	ticker := time.NewTicker(analyticsFlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			ac.Flush(flushCtx)
			cancel()
			return
		case <-ticker.C:
			ac.Flush(ctx)
		}
	}
}

func (ac *AnalyticsCollector) hasPending() bool {
	return ac.pageviews > 0 || ac.generations > 0 || ac.downloads > 0 || ac.copies > 0 || ac.copyFailures > 0
}

// Flush upserts the pending counters into today's row. Without a database
// it does nothing.
func (ac *AnalyticsCollector) Flush(ctx context.Context) {
	if ac.pool == nil {
		return
	}
	if ac.health.InCooldown(UsageStoreBackend) {
		slog.Debug("Analytics flush skipped, store in cooldown")
		return
	}

	ac.mu.Lock()
	if !ac.hasPending() {
		ac.mu.Unlock()
		return
	}

	date := ac.saltDate
	pv := ac.pageviews
	uv := len(ac.visitors)
	gen := ac.generations
	dl := ac.downloads
	cp := ac.copies
	cf := ac.copyFailures

	topPages := make(map[string]int, len(ac.pageCounts))
	for k, v := range ac.pageCounts {
		topPages[k] = v
	}
	refs := make(map[string]int, len(ac.refCounts))
	for k, v := range ac.refCounts {
		refs[k] = v
	}

	ac.pageviews = 0
	ac.generations = 0
	ac.downloads = 0
	ac.copies = 0
	ac.copyFailures = 0
	ac.mu.Unlock()

	pagesJSON, _ := json.Marshal(topPages)
	refsJSON, _ := json.Marshal(refs)

	start := time.Now()
	_, err := ac.pool.Exec(ctx, `
		INSERT INTO site_analytics (date, pageviews, unique_visitors, generations, downloads, copies, copy_failures, referrer_sources, top_pages)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (date) DO UPDATE SET
			pageviews = site_analytics.pageviews + EXCLUDED.pageviews,
			unique_visitors = GREATEST(site_analytics.unique_visitors, EXCLUDED.unique_visitors),
			generations = site_analytics.generations + EXCLUDED.generations,
			downloads = site_analytics.downloads + EXCLUDED.downloads,
			copies = site_analytics.copies + EXCLUDED.copies,
			copy_failures = site_analytics.copy_failures + EXCLUDED.copy_failures,
			referrer_sources = site_analytics.referrer_sources || EXCLUDED.referrer_sources,
			top_pages = site_analytics.top_pages || EXCLUDED.top_pages,
			updated_at = NOW()
	`, date, pv, uv, gen, dl, cp, cf, refsJSON, pagesJSON)
	if err != nil {
		ac.health.RecordFailure(UsageStoreBackend, err.Error())
		slog.Error("Analytics flush failed", "error", err)

		ac.mu.Lock()
		if ac.saltDate == date {
			ac.pageviews += pv
			ac.generations += gen
			ac.downloads += dl
			ac.copies += cp
			ac.copyFailures += cf
		}
		ac.mu.Unlock()
		return
	}
	ac.health.RecordSuccess(UsageStoreBackend, time.Since(start))
	slog.Debug("Analytics flushed", "date", date, "pageviews", pv, "unique_visitors", uv, "generations", gen, "downloads", dl)
}

// StoreHealth reports the flush target's health. Without a database it
// stays healthy with no requests.
func (ac *AnalyticsCollector) StoreHealth() telemetry.BackendStats {
	return ac.health.Stats(UsageStoreBackend)
}
