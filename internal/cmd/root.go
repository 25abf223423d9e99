// Package cmd implements the chambers CLI.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chrisgilldc/chambers/internal/config"
)

var (
	rootConfigPath string
	rootLogLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "chambers",
	Short: "Track the session state of the U.S. House and Senate",
	Long: `chambers polls the public House and Senate floor feeds, derives whether
each chamber is currently convened, and publishes the derived signals
(convened, convened_at, adjourned_at, convenes_at) over MQTT.

Configuration is read from chambers.toml in the working directory, or the
file named by --config or the CHAMBERS_CONFIG environment variable.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to settings file")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "chambers: %v\n", err)
		return 1
	}
	return 0
}

// loadSettings loads the settings file and hands back a logger at the
// configured level. The --log-level flag wins over the file.
func loadSettings() (*config.Settings, *slog.Logger, error) {
	settings, err := config.Load(config.Path(rootConfigPath))
	if err != nil {
		return nil, nil, err
	}

	level := settings.LogLevel
	if rootLogLevel != "" {
		level = rootLogLevel
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return settings, logger, nil
}
