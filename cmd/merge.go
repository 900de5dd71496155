package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/fulmenhq/manifold/pkg/aggregate"
	"github.com/fulmenhq/manifold/pkg/ascii"
	"github.com/fulmenhq/manifold/pkg/exitcode"
	"github.com/fulmenhq/manifold/pkg/logger"
	"github.com/fulmenhq/manifold/pkg/safeio"
	"github.com/spf13/cobra"
)

func newMergeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge every server manifest into one catalog",
		Long: `Merge reads <source>/<server>/manifest.json for every server directory,
copies the referenced icon and background to <output>/assets/<server>/ and
writes <output>/merged-manifest.json.

Directories without a manifest are skipped; invalid manifests are counted as
errors. The command fails only when no server could be merged.`,
		Args: cobra.NoArgs,
		RunE: runMerge,
	}
	cmd.Flags().String("source", "", "Source directory holding one folder per server (default from config: servers)")
	cmd.Flags().String("output", "", "Output directory (default from config: merged)")
	cmd.Flags().String("ext", "", "Extension used for rehomed assets (default from config: png)")
	return cmd
}

func runMerge(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	opts := aggregate.Options{
		SourceRoot:   stringOverride(flags, "source", appConfig.Sources.Root),
		OutputDir:    stringOverride(flags, "output", appConfig.Output.Dir),
		CatalogFile:  appConfig.Output.CatalogFile,
		ManifestFile: appConfig.Sources.ManifestFile,
		AssetExt:     stringOverride(flags, "ext", appConfig.Output.AssetExt),
		Reserved:     appConfig.Sources.Reserved,
	}

	report, err := aggregate.New(opts).Run()
	if report == nil {
		if errors.Is(err, fs.ErrNotExist) {
			return exitcode.New(exitcode.FileSystemError, err)
		}
		return exitcode.New(exitcode.GeneralError, err)
	}

	ascii.DrawBox(cmd.OutOrStdout(), mergeSummary(report))

	if err != nil {
		if errors.Is(err, aggregate.ErrNothingMerged) {
			return exitcode.New(exitcode.GeneralError, err)
		}
		return exitcode.New(exitcode.FileSystemError, err)
	}

	verifyCatalog(opts.SourceRoot, report.OutputPath)
	return nil
}

func mergeSummary(r *aggregate.Report) []string {
	lines := []string{"Merge summary", ""}
	lines = append(lines, ascii.KeyValues([][2]string{
		{"Processed", strconv.Itoa(r.Merged)},
		{"Skipped", strconv.Itoa(r.Skipped)},
		{"Errors", strconv.Itoa(r.Errors)},
		{"Output", ascii.TruncateForBox(r.OutputPath, 60)},
	})...)
	for _, e := range r.Entries {
		if e.Status == aggregate.StatusFailed {
			lines = append(lines, ascii.TruncateForBox(fmt.Sprintf("  x %s", e.Folder), 72))
		}
	}
	return lines
}

// verifyCatalog re-reads the written catalog when the source tree carries a
// root schema. Findings are warnings only.
func verifyCatalog(sourceRoot, catalogPath string) {
	if !safeio.Exists(filepath.Join(sourceRoot, appConfig.Sources.SchemaFile)) {
		return
	}
	problems, err := aggregate.VerifyCatalogFile(catalogPath)
	if err != nil {
		logger.Warn("Could not verify merged catalog", logger.Err(err))
		return
	}
	for _, p := range problems {
		logger.Warn(p)
	}
	if len(problems) == 0 {
		logger.Info("Merged manifest validation passed")
	}
}
