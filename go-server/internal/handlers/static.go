// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const headerCacheControl = "Cache-Control"

type StaticHandler struct {
	BaseURL string
	FS      fs.FS
	files   http.Handler
}

// NewStaticHandler serves crawler files and assets from fsys.
func NewStaticHandler(fsys fs.FS, baseURL string) *StaticHandler {
	return &StaticHandler{
		BaseURL: strings.TrimRight(baseURL, "/"),
		FS:      fsys,
		files:   http.StripPrefix("/static", http.FileServer(http.FS(fsys))),
	}
}

func (h *StaticHandler) serveText(c *gin.Context, name string) {
	data, err := fs.ReadFile(h.FS, name)
	if err != nil {
		slog.Error("Embedded file missing", "file", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}
	c.Header(headerCacheControl, "public, max-age=86400")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}

func (h *StaticHandler) RobotsTxt(c *gin.Context) {
	h.serveText(c, "robots.txt")
}

func (h *StaticHandler) LLMsTxt(c *gin.Context) {
	h.serveText(c, "llms.txt")
}

func (h *StaticHandler) SitemapXML(c *gin.Context) {
	today := time.Now().Format("2006-01-02")

	xml := `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
	xml += `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n"
	xml += "  <url>\n"
	xml += fmt.Sprintf("    <loc>%s/</loc>\n", h.BaseURL)
	xml += fmt.Sprintf("    <lastmod>%s</lastmod>\n", today)
	xml += "    <changefreq>monthly</changefreq>\n"
	xml += "    <priority>1.0</priority>\n"
	xml += "  </url>\n"
	xml += "</urlset>\n"

	c.Data(http.StatusOK, "application/xml", []byte(xml))
}

// Assets serves /static/*filepath with versioned-asset caching.
func (h *StaticHandler) Assets(c *gin.Context) {
	fp := c.Param("filepath")
	if strings.HasSuffix(fp, ".css") || strings.HasSuffix(fp, ".js") {
		if c.Request.URL.Query().Has("v") {
			c.Header(headerCacheControl, "public, max-age=31536000, immutable")
		} else {
			c.Header(headerCacheControl, "public, max-age=86400")
		}
	}
	h.files.ServeHTTP(c.Writer, c.Request)
}
