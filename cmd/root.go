/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fulmenhq/manifold/pkg/buildinfo"
	"github.com/fulmenhq/manifold/pkg/config"
	"github.com/fulmenhq/manifold/pkg/exitcode"
	"github.com/fulmenhq/manifold/pkg/logger"
	"github.com/spf13/cobra"
)

// appConfig is loaded by the root command before any subcommand runs.
var appConfig = config.Default()

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifold",
		Short: "Merge and validate per-server manifests and their image assets",
		Long: `Manifold consolidates per-server manifest.json descriptors into a single
catalog, copies their icon and background images next to it, and validates
descriptors and PNG dimensions.

Examples:
   manifold merge                 # servers/* -> merged/merged-manifest.json
   manifold validate              # schema, asset and dimension checks
   manifold inspect icon.png      # show a PNG header and policy verdicts
   manifold version --extended    # show build info`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			initializeLogger(cmd)
			return loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().String("config", "", "Config file (default: manifold.yaml in . or ~/.manifold)")

	cmd.Version = buildinfo.Version()
	cmd.SetVersionTemplate("manifold {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
// This is called from init() for production and can be called explicitly in tests.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newMergeCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newInspectCommand())
	cmd.AddCommand(newVersionCommand())
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

func init() {
	registerSubcommands(rootCmd)
}

// Execute runs the root command and exits with the code carried by the error.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	code := exitcode.Code(err)
	var ee *exitcode.Error
	if !errors.As(err, &ee) {
		// cobra flag and argument errors
		fmt.Fprintln(os.Stderr, "Error:", err)
	} else {
		logger.Error("Command execution failed", logger.Err(err), logger.Int("exit_code", code))
	}
	os.Exit(code)
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	config := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor && os.Getenv("NO_COLOR") == "",
		JSON:      jsonLogs,
		Component: "manifold",
		Output:    cmd.ErrOrStderr(),
	}

	if err := logger.Initialize(config); err != nil {
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
}

func loadConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	c, err := config.LoadConfig(path)
	if err != nil {
		return exitcode.New(exitcode.ConfigError, err)
	}
	if c.File != "" {
		logger.Debug("Using config file", logger.String("path", c.File))
	}
	appConfig = c
	return nil
}
