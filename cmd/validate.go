/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/fulmenhq/manifold/internal/report"
	"github.com/fulmenhq/manifold/pkg/exitcode"
	"github.com/fulmenhq/manifold/pkg/raster"
	"github.com/fulmenhq/manifold/pkg/validate"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate manifests, referenced assets and PNG dimensions",
		Long: `Validate walks the source tree for manifest.json files at any depth and, for
each one, checks it against a JSON schema (a manifest-schema.json next to the
file, else at the source root, else the built-in schema), confirms that the
icon and background exist and that their PNG dimensions match the policy:

  background  exactly 1920x1080
  icon        square, 64x64 to 520x520

Nothing is modified. Exit code 3 means at least one manifest failed.`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}
	cmd.Flags().String("source", "", "Directory to search for manifests (default from config: servers)")
	cmd.Flags().Bool("no-schema", false, "Skip JSON schema validation")
	cmd.Flags().Bool("no-dimensions", false, "Only check that assets exist")
	cmd.Flags().Bool("strict-header", false, "Also verify the IHDR chunk type, length and CRC")
	cmd.Flags().Bool("optional-roles", false, "Do not fail manifests that omit the icon or background")
	cmd.Flags().StringSlice("exclude", nil, "Glob patterns (doublestar) relative to the source to skip")
	cmd.Flags().Bool("no-ignore", false, "Ignore .gitignore and .manifoldignore")
	cmd.Flags().String("format", "", "Output format: markdown, json, yaml, toml (default from config: markdown)")
	return cmd
}

func runValidate(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	format, err := report.ParseFormat(stringOverride(flags, "format", appConfig.Validate.Format))
	if err != nil {
		return exitcode.New(exitcode.UnsupportedFormat, err)
	}

	opts := validate.DefaultOptions(stringOverride(flags, "source", appConfig.Sources.Root))
	opts.ManifestFile = appConfig.Sources.ManifestFile
	opts.SchemaFile = appConfig.Sources.SchemaFile
	opts.CheckSchema = !boolOverride(flags, "no-schema", false)
	opts.CheckDimensions = !boolOverride(flags, "no-dimensions", false)
	opts.RequireRoles = !boolOverride(flags, "optional-roles", !appConfig.Validate.RequireRoles)
	opts.NoIgnore = boolOverride(flags, "no-ignore", appConfig.Validate.NoIgnore)
	opts.Exclude = appConfig.Validate.Exclude
	if flags.Changed("exclude") {
		opts.Exclude, _ = flags.GetStringSlice("exclude")
	}
	if boolOverride(flags, "strict-header", appConfig.Validate.StrictHeader) {
		opts.Decoder = raster.Strict{}
	}

	v, err := validate.New(opts)
	if err != nil {
		return exitcode.New(exitcode.ConfigError, err)
	}
	res, err := v.Run()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return exitcode.New(exitcode.FileSystemError, err)
		}
		return exitcode.New(exitcode.GeneralError, err)
	}

	out, err := report.NewFormatter(format).FormatReport(res)
	if err != nil {
		return exitcode.New(exitcode.GeneralError, err)
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), out)

	if !res.Passed {
		return exitcode.New(exitcode.ValidationError,
			fmt.Errorf("%d of %d manifests failed validation", res.Failed(), len(res.Manifests)))
	}
	return nil
}
