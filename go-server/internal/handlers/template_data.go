// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"github.com/kbeqi/llms-generator/go-server/internal/catalog"
)

// AgentRow is one checkbox on the form.
type AgentRow struct {
	Name         string `json:"name"`
	Allow        bool   `json:"allow"`
	DefaultAllow bool   `json:"default_allow"`
}

func buildAgentRows(policy catalog.Policy) []AgentRow {
	agents := catalog.Agents()
	rows := make([]AgentRow, 0, len(agents))
	for _, a := range agents {
		rows = append(rows, AgentRow{
			Name:         a.Name,
			Allow:        policy.Allowed(a.Name),
			DefaultAllow: a.DefaultAllow,
		})
	}
	return rows
}
