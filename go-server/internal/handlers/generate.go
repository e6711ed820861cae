// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/kbeqi/llms-generator/go-server/internal/catalog"
	"github.com/kbeqi/llms-generator/go-server/internal/directive"

	"github.com/gin-gonic/gin"
)

type GenerateHandler struct {
	Usage UsageRecorder
}

func NewGenerateHandler(usage UsageRecorder) *GenerateHandler {
	return &GenerateHandler{Usage: recorderOrNoop(usage)}
}

type generateRequest struct {
	SiteURL string          `json:"site_url"`
	Contact string          `json:"contact"`
	Policy  map[string]bool `json:"policy"`
}

// APIGenerate renders the document for a JSON form state. Agents missing
// from policy keep their catalog default.
func (h *GenerateHandler) APIGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	form := directive.NewFormFromState(directive.State{
		SiteURL: req.SiteURL,
		Contact: req.Contact,
		Policy:  req.Policy,
	})
	h.Usage.RecordGenerate()

	c.JSON(http.StatusOK, gin.H{
		"text":     form.Text(),
		"filename": directive.Filename,
		"agents":   buildAgentRows(form.State().Policy),
	})
}

// Download streams the document as an LLMs.txt attachment.
func (h *GenerateHandler) Download(c *gin.Context) {
	state := parseFormState(c)
	h.Usage.RecordDownload()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", directive.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, directive.ContentType, []byte(state.Text()))
}

func (h *GenerateHandler) APICatalog(c *gin.Context) {
	c.JSON(http.StatusOK, catalog.Agents())
}
