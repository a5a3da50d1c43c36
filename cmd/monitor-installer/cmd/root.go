package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/monitor-bootstrap/internal/config"
	"github.com/oshokin/monitor-bootstrap/internal/domain/bootstrap"
	"github.com/oshokin/monitor-bootstrap/internal/logger"
	"github.com/oshokin/monitor-bootstrap/internal/service/installer"
	"github.com/oshokin/monitor-bootstrap/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for provisioning the runtime.
	rootCmd = &cobra.Command{
		Use:   "monitor-installer",
		Short: "Check the runtime and install the monitor's dependencies.",
		Long: `Prepares this PC to run the activity monitor.

Checks that the runtime answers a version query, upgrades its package manager
and installs every library listed in the dependency manifest.
Stops at the first failure with a hint on how to fix it.
Safe to run again: already installed libraries are skipped.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Ctrl+C stops the running step.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return installer.Run(ctx, &installer.Options{
				ConfigPath: configPath,
			})
		},
	}
)

// Execute runs the monitor-installer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.Execute()
	if err != nil && !bootstrap.IsDiagnosed(err) {
		logger.Logger().Errorw("Installer failed", "error", err)
	}

	os.Exit(bootstrap.ExitCode(err))
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
