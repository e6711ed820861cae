// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/kbeqi/llms-generator/go-server/internal/catalog"

	"github.com/spf13/cobra"
)

// NewCatalogCmd creates the catalog command.
func NewCatalogCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the known AI crawlers and their defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch format {
			case "markdown", "md":
				return catalog.WriteMarkdown(cmd.OutOrStdout(), catalog.DefaultPolicy())
			case "text":
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "AGENT\tDEFAULT")
				for _, a := range catalog.Agents() {
					fmt.Fprintf(tw, "%s\t%s\n", a.Name, catalog.ActionLabel(a.DefaultAllow))
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unsupported format %q (use markdown or text)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or markdown")
	return cmd
}
