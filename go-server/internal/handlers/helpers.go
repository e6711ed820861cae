// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"net/http"

	"github.com/kbeqi/llms-generator/go-server/internal/catalog"
	"github.com/kbeqi/llms-generator/go-server/internal/directive"

	"github.com/gin-gonic/gin"
)

// UsageRecorder receives anonymous action counts.
type UsageRecorder interface {
	RecordGenerate()
	RecordDownload()
	RecordCopy(ok bool)
}

type noopRecorder struct{}

func (noopRecorder) RecordGenerate()  {}
func (noopRecorder) RecordDownload()  {}
func (noopRecorder) RecordCopy(bool) {}

func recorderOrNoop(r UsageRecorder) UsageRecorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}

// parseFormState reads the form from the POST body or, for other methods,
// the query string. Unchecked checkboxes are not sent, so the hidden
// "submitted" field tells a submitted form (missing agent = disallow) apart
// from a fresh load (catalog defaults). Unknown agent names are ignored.
func parseFormState(c *gin.Context) directive.State {
	value := c.Query
	values := c.QueryArray
	if c.Request.Method == http.MethodPost {
		value = c.PostForm
		values = c.PostFormArray
	}

	state := directive.DefaultState()
	state.SiteURL = value("site_url")
	state.Contact = value("contact")

	if value("submitted") != "1" {
		return state
	}

	for name := range state.Policy {
		state.Policy[name] = false
	}
	for _, name := range values("allow") {
		if _, ok := catalog.Lookup(name); ok {
			state.Policy[name] = true
		}
	}
	return state
}
