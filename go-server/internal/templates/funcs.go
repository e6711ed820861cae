// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package templates

import (
	"html/template"
	"strings"
	"time"
	"unicode"

	"github.com/kbeqi/llms-generator/go-server/internal/catalog"
	"github.com/kbeqi/llms-generator/go-server/internal/directive"
)

func FuncMap() template.FuncMap {
	m := template.FuncMap{}
	mergeFuncs(m, stringFuncs())
	mergeFuncs(m, directiveFuncs())
	mergeFuncs(m, dateTimeFuncs())
	return m
}

func mergeFuncs(dst, src template.FuncMap) {
	for k, v := range src {
		dst[k] = v
	}
}

func stringFuncs() template.FuncMap {
	return template.FuncMap{
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"join":      strings.Join,
		"trimSpace": strings.TrimSpace,
		"agentID":   agentID,
	}
}

func directiveFuncs() template.FuncMap {
	return template.FuncMap{
		"actionLabel": catalog.ActionLabel,
		"copyLabel":   directive.CopyLabel,
		"lineCount": func(s string) int {
			if s == "" {
				return 0
			}
			return strings.Count(s, "\n") + 1
		},
	}
}

func dateTimeFuncs() template.FuncMap {
	return template.FuncMap{
		"currentYear": func() int {
			return time.Now().UTC().Year()
		},
	}
}

// agentID turns an agent name into an HTML id fragment: "Google-Extended"
// becomes "agent-google-extended".
func agentID(name string) string {
	var b strings.Builder
	b.WriteString("agent-")
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}
