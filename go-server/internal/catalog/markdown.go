// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package catalog

import (
	"io"

	"github.com/nao1215/markdown"
)

// WriteMarkdown renders the catalog as a Markdown table showing each agent's
// default and its value in policy.
func WriteMarkdown(w io.Writer, policy Policy) error {
	rows := make([][]string, 0, len(knownAICrawlers))
	for _, a := range knownAICrawlers {
		rows = append(rows, []string{a.Name, ActionLabel(a.DefaultAllow), ActionLabel(policy.Allowed(a.Name))})
	}

	md := markdown.NewMarkdown(w)
	md.H2("AI crawler catalog")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Agent", "Default", "Current"},
		Rows:   rows,
	})
	return md.Build()
}
