/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"
	"runtime"

	"github.com/fulmenhq/manifold/internal/assets"
	"github.com/fulmenhq/manifold/pkg/buildinfo"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the manifold version",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().Bool("extended", false, "Show detailed build information")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	out := cmd.OutOrStdout()

	_, _ = fmt.Fprintf(out, "manifold %s\n", buildinfo.Version())
	if !extended {
		return nil
	}
	_, _ = fmt.Fprintf(out, "Git commit: %s\n", buildinfo.GitCommit)
	_, _ = fmt.Fprintf(out, "Build date: %s\n", buildinfo.BuildDate)
	if mv := buildinfo.ModuleVersion(); mv != "" {
		_, _ = fmt.Fprintf(out, "Module:     %s\n", mv)
	}
	_, _ = fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
	_, _ = fmt.Fprintf(out, "Platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintln(out, "Embedded schemas:")
	for _, s := range assets.GetSchemaNames() {
		_, _ = fmt.Fprintf(out, "  %-20s %s (%s)\n", s.Name, s.Path, s.Draft)
	}
	return nil
}
