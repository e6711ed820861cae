// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"net/http"

	"github.com/kbeqi/llms-generator/go-server/internal/config"
	"github.com/kbeqi/llms-generator/go-server/internal/directive"
	"github.com/kbeqi/llms-generator/go-server/internal/middleware"

	"github.com/gin-gonic/gin"
)

type HomeHandler struct {
	Config *config.Config
	Usage  UsageRecorder
}

func NewHomeHandler(cfg *config.Config, usage UsageRecorder) *HomeHandler {
	return &HomeHandler{Config: cfg, Usage: recorderOrNoop(usage)}
}

// Index renders the form, reproducing any state carried in the query.
func (h *HomeHandler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, parseFormState(c))
}

// Submit is the no-script path: it re-renders the page for the posted form.
func (h *HomeHandler) Submit(c *gin.Context) {
	h.Usage.RecordGenerate()
	h.render(c, http.StatusOK, parseFormState(c))
}

func (h *HomeHandler) render(c *gin.Context, status int, s directive.State) {
	form := directive.NewFormFromState(s)
	state := form.State()

	c.HTML(status, "index.html", gin.H{
		"AppVersion":      h.Config.AppVersion,
		"CspNonce":        middleware.CSPNonce(c),
		"CsrfToken":       middleware.GetCSRFToken(c),
		"CsrfField":       middleware.CSRFFormField,
		"MaintenanceNote": h.Config.MaintenanceNote,
		"FlashMessages":   middleware.PopFlash(c),
		"SiteURL":         state.SiteURL,
		"Contact":         state.Contact,
		"Agents":          buildAgentRows(state.Policy),
		"Text":            form.Text(),
		"Copied":          form.Copied(),
		"Filename":        directive.Filename,
	})
}

func (h *HomeHandler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "error.html", gin.H{
		"AppVersion":    h.Config.AppVersion,
		"CspNonce":      middleware.CSPNonce(c),
		"FlashMessages": []middleware.FlashMessage{{Category: "warning", Message: "Page not found."}},
	})
}
