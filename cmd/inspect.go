package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fulmenhq/manifold/pkg/dimension"
	"github.com/fulmenhq/manifold/pkg/exitcode"
	"github.com/fulmenhq/manifold/pkg/manifest"
	"github.com/fulmenhq/manifold/pkg/raster"
	"github.com/spf13/cobra"
)

type inspectResult struct {
	Path     string                   `json:"path"`
	Header   *raster.Header           `json:"header,omitempty"`
	Verdicts map[manifest.Role]string `json:"verdicts,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

func newInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Print PNG header dimensions and the verdict of each role policy",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runInspect,
	}
	cmd.Flags().Bool("strict-header", false, "Also verify the IHDR chunk type, length and CRC")
	cmd.Flags().String("format", "text", "Output format: text or json")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	var dec raster.Decoder = raster.FixedOffset{}
	if strict, _ := cmd.Flags().GetBool("strict-header"); strict {
		dec = raster.Strict{}
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return exitcode.New(exitcode.UnsupportedFormat, fmt.Errorf("unsupported format %q (want text or json)", format))
	}

	results := make([]inspectResult, 0, len(args))
	failed := 0
	for _, path := range args {
		res := inspectResult{Path: path}
		h, err := raster.ReadFile(path, dec)
		if err != nil {
			res.Error = err.Error()
			failed++
		} else {
			res.Header = &h
			res.Verdicts = map[manifest.Role]string{}
			for _, role := range manifest.Roles() {
				rule, _ := dimension.ForRole(role)
				if rule.Check(h) {
					res.Verdicts[role] = "ok"
				} else {
					res.Verdicts[role] = "expected " + rule.Expected
				}
			}
		}
		results = append(results, res)
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return exitcode.New(exitcode.GeneralError, err)
		}
		_, _ = fmt.Fprintln(out, string(data))
	} else {
		for _, r := range results {
			if r.Error != "" {
				_, _ = fmt.Fprintf(out, "%s: %s\n", r.Path, r.Error)
				continue
			}
			var verdicts []string
			for _, role := range manifest.Roles() {
				verdicts = append(verdicts, fmt.Sprintf("%s=%s", role, r.Verdicts[role]))
			}
			_, _ = fmt.Fprintf(out, "%s: %s (%s)\n", r.Path, r.Header, strings.Join(verdicts, ", "))
		}
	}

	if failed > 0 {
		return exitcode.New(exitcode.ValidationError, fmt.Errorf("%d of %d files could not be decoded", failed, len(args)))
	}
	return nil
}
