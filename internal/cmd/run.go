package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/chrisgilldc/chambers/internal/chamber"
	"github.com/chrisgilldc/chambers/internal/config"
	"github.com/chrisgilldc/chambers/internal/fetch"
	"github.com/chrisgilldc/chambers/internal/house"
	"github.com/chrisgilldc/chambers/internal/mqtt"
	"github.com/chrisgilldc/chambers/internal/senate"
)

var runClearCache bool

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runClearCache, "clear-cache", false, "Remove chamber caches before starting")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the polling daemon and publish signals over MQTT",
	Long: `Run the daemon loop: poll each chamber on its adaptive schedule, derive
the session signals, and publish any changes to the configured MQTT broker
as retained topics. Home Assistant discovery configs are published on
connect. SIGINT/SIGTERM stops the loop after a final cache write.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	settings, logger, err := loadSettings()
	if err != nil {
		return err
	}

	if runClearCache {
		clearCaches(settings, logger)
	}

	chambers := buildChambers(settings, logger)

	pub := mqtt.New(settings.MQTT, logger)
	if err := pub.Connect(); err != nil {
		return err
	}
	defer pub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tick := config.ParseDurationOrDefault(settings.TickInterval, 15*time.Second)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	logger.Info("daemon started", "tick", tick)
	// First pass runs immediately; chambers with fresh caches may still
	// skip fetching.
	if err := updateAndPublish(ctx, chambers, pub, logger); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			for _, c := range chambers {
				if err := c.SaveCache(); err != nil {
					logger.Warn("final cache write", "chamber", c.Name(), "error", err)
				}
			}
			return nil
		case <-ticker.C:
			if err := updateAndPublish(ctx, chambers, pub, logger); err != nil {
				return err
			}
		}
	}
}

// updateAndPublish runs the scheduler-gated update on every chamber and
// publishes signals for those that refreshed. A fatal engine error stops
// the daemon; everything recoverable has already been degraded below.
func updateAndPublish(ctx context.Context, chambers []chamber.Chamber, pub *mqtt.Publisher, logger *slog.Logger) error {
	for _, c := range chambers {
		changed, err := c.Update(ctx, false)
		if err != nil {
			if errors.Is(err, senate.ErrImpossibleConvene) {
				logger.Error("fatal engine state", "chamber", c.Name(), "error", err)
				return err
			}
			logger.Warn("update", "chamber", c.Name(), "error", err)
		}
		if changed {
			pub.PublishSignals(c.Name(), c.Signals(), c.NextUpdate())
			logger.Info("published signals", "chamber", c.Name(), "next_update", c.NextUpdate())
		}
	}
	return nil
}

func buildChambers(settings *config.Settings, logger *slog.Logger) []chamber.Chamber {
	clock := clockwork.NewRealClock()
	client := fetch.New(config.ParseDurationOrDefault(settings.HTTPTimeout, fetch.DefaultTimeout))
	return []chamber.Chamber{
		house.New(clock, logger, settings.CachePath("house"), client),
		senate.New(clock, logger, settings.CachePath("senate"), client, settings.SenateLookbackDays),
	}
}

func clearCaches(settings *config.Settings, logger *slog.Logger) {
	for _, name := range []string{"house", "senate"} {
		path := settings.CachePath(name)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("clearing cache", "path", path, "error", err)
			continue
		}
		logger.Info("cleared cache", "path", path)
	}
}
