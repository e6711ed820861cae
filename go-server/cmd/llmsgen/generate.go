// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbeqi/llms-generator/go-server/internal/catalog"
	"github.com/kbeqi/llms-generator/go-server/internal/directive"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

// clipboardWriteAll is swapped in tests.
var clipboardWriteAll = clipboard.WriteAll

type generateOptions struct {
	site     string
	contact  string
	allow    []string
	disallow []string
	toggle   []string
	output   string
	copy     bool
}

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an LLMs.txt file",
		Long: `Generate an LLMs.txt file starting from the catalog defaults.

--allow and --disallow set an agent explicitly and are applied first;
--toggle flips an agent afterwards. Without --output the file is written
to stdout. An output directory receives LLMs.txt.`,
		Example: `  llmsgen generate --site https://example.com --contact web@example.com
  llmsgen generate --allow ClaudeBot --disallow OpenAI -o ./public
  llmsgen generate --toggle CCBot --copy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.site, "site", "", "Site URL for the header comment")
	cmd.Flags().StringVar(&opts.contact, "contact", "", "Contact email appended as a comment")
	cmd.Flags().StringSliceVar(&opts.allow, "allow", nil, "Allow an agent (repeatable)")
	cmd.Flags().StringSliceVar(&opts.disallow, "disallow", nil, "Disallow an agent (repeatable)")
	cmd.Flags().StringSliceVar(&opts.toggle, "toggle", nil, "Flip an agent's policy (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file or directory")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the result to the clipboard")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	form, err := buildForm(opts)
	if err != nil {
		return err
	}
	text := form.Text()

	if opts.output == "" {
		fmt.Fprint(cmd.OutOrStdout(), text)
	} else {
		path, err := writeOutput(opts.output, text)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	}

	if opts.copy {
		if form.Copy(clipboardWriteAll) {
			fmt.Fprintln(cmd.ErrOrStderr(), directive.CopyLabel(true))
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "Clipboard unavailable; text was not copied")
		}
	}
	return nil
}

func buildForm(opts *generateOptions) (*directive.Form, error) {
	form := directive.NewForm()
	form.SetSiteURL(opts.site)
	form.SetContact(opts.contact)

	apply := func(names []string, fn func(string) error) error {
		for _, name := range names {
			if err := fn(name); err != nil {
				if errors.Is(err, directive.ErrUnknownAgent) {
					return fmt.Errorf("%w (valid agents: %s)", err, strings.Join(catalog.Names(), ", "))
				}
				return err
			}
		}
		return nil
	}

	if err := apply(opts.allow, func(n string) error { return form.SetAllow(n, true) }); err != nil {
		return nil, err
	}
	if err := apply(opts.disallow, func(n string) error { return form.SetAllow(n, false) }); err != nil {
		return nil, err
	}
	if err := apply(opts.toggle, form.Toggle); err != nil {
		return nil, err
	}
	slog.Debug("Form built", "state", form.State())
	return form, nil
}

// writeOutput writes into a directory when path is one (or ends with a
// separator), otherwise to path itself.
func writeOutput(path, text string) (string, error) {
	if info, err := os.Stat(path); (err == nil && info.IsDir()) || strings.HasSuffix(path, string(os.PathSeparator)) {
		return directive.WriteFile(path, text)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
