// Package app provides the entry point for the source registry CLI.
package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/novelforge/source-registry/internal/config"
	"github.com/novelforge/source-registry/internal/logger"
	"github.com/novelforge/source-registry/internal/sources"
	"github.com/novelforge/source-registry/internal/versions"
)

var rootCmd = &cobra.Command{
	Use:               "source-registry",
	DisableAutoGenTag: true,
	Short:             "Source handler registry and update pipeline",
	Long: `source-registry maintains a self-updating catalog of site handler
scripts and resolves input URLs to the handler responsible for them.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		_ = cmd.Help()
	},
}

// NewRootCmd creates the root command for the source registry CLI.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(resolveCmd)

	return rootCmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := versions.GetVersionInfo()
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}

		if format == "json" {
			output, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to format version info: %w", err)
			}
			fmt.Println(string(output))
			return nil
		}
		fmt.Printf("source-registry %s (commit %s, built %s, %s, %s)\n",
			info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
		return nil
	},
}

func init() {
	versionCmd.Flags().String("format", "", "Output format (json)")
}

// newLogger builds the CLI logger, at debug level when --debug is set.
func newLogger() logger.Logger {
	level := "info"
	if viper.GetBool("debug") {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level})
	if err != nil {
		return logger.NewNop()
	}
	return log
}

// newManager wires a manager from the CLI flags and environment.
func newManager(log logger.Logger, include, exclude []string) (sources.Manager, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return sources.NewManager(cfg, log, sources.Options{
		Notifier: func(latest string) {
			log.Warn("a newer release is available",
				logger.String("latest", latest))
		},
		Include: include,
		Exclude: exclude,
	}), nil
}
