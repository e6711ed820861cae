// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package directive renders the LLMs.txt crawler directive document from
// form state and keeps that state consistent with its derived text.
package directive

import (
	"strings"

	"github.com/kbeqi/llms-generator/go-server/internal/catalog"
)

const (
	Filename    = "LLMs.txt"
	ContentType = "text/plain; charset=utf-8"

	defaultSiteLabel = "your site"
)

// Generate builds the directive document. Agents are emitted in catalog
// order; names in policy that are not in the catalog are ignored and
// missing ones use their catalog default.
func Generate(siteURL, contact string, policy catalog.Policy) string {
	site := strings.TrimSpace(siteURL)
	if site == "" {
		site = defaultSiteLabel
	}

	lines := []string{
		"# LLMs.txt generated for " + site,
		"User-Agent: *",
		"Disallow: /",
	}

	for _, a := range catalog.Agents() {
		lines = append(lines, "", "User-Agent: "+a.Name, catalog.ActionLabel(policy.Allowed(a.Name))+": /")
	}

	if c := strings.TrimSpace(contact); c != "" {
		lines = append(lines, "", "# Contact: "+c)
	}

	return strings.Join(lines, "\n")
}
