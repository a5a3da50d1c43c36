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
	"github.com/oshokin/monitor-bootstrap/internal/service/launcher"
	"github.com/oshokin/monitor-bootstrap/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for running the monitor in the foreground.
	rootCmd = &cobra.Command{
		Use:   "monitor-launcher",
		Short: "Start the activity monitor.",
		Long: `Runs the activity monitor in this console until it exits.

If the monitor fails to start, lists the usual causes
(missing runtime, missing dependencies, insufficient permission) and waits
for Enter so the message stays on screen.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Ctrl+C is forwarded to the monitor through the shared console.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return launcher.Run(ctx, &launcher.Options{
				ConfigPath: configPath,
			})
		},
	}

	// silentCmd starts the monitor in the background, as used for autostart.
	silentCmd = &cobra.Command{
		Use:   "silent",
		Short: "Start the activity monitor in the background without a console.",
		Long: `Starts the activity monitor detached from this console and returns.

Prefers the windowless runtime when it is installed. The outcome is appended
to the launcher log files in the log directory and the PID is saved to the
launch record.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return launcher.RunDetached(context.Background(), configPath)
		},
	}
)

// Execute runs the monitor-launcher CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(silentCmd)

	err := rootCmd.Execute()
	if err != nil && !bootstrap.IsDiagnosed(err) {
		logger.Logger().Errorw("Launcher failed", "error", err)
	}

	os.Exit(bootstrap.ExitCode(err))
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename,
		"path to configuration file")
}
