// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package main

import (
	"log/slog"

	"github.com/kbeqi/llms-generator/go-server/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// NewTUICmd creates the interactive form command.
func NewTUICmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit the directive file in an interactive terminal form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			restore := muteLogging()
			defer restore()

			model := tui.New(tui.Options{OutputDir: outDir})
			p := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err := p.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "Directory that receives LLMs.txt on ctrl+s")
	return cmd
}

// muteLogging silences the default logger while the alt screen owns the
// terminal. Failures are shown in the form's status line instead.
func muteLogging() func() {
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.DiscardHandler))
	return func() { slog.SetDefault(prev) }
}
