// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package main provides the llmsgen command line tool.
//
// llmsgen builds LLMs.txt crawler directive files from the same catalog
// and generator the web form uses.
//
// Usage:
//
//	llmsgen generate --site https://example.com --allow ClaudeBot
//	llmsgen catalog --format markdown
//	llmsgen tui
package main

func main() {
	Execute()
}
