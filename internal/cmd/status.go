package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Fetch both chambers once and print their signals",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	settings, logger, err := loadSettings()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, c := range buildChambers(settings, logger) {
		if _, err := c.Update(ctx, true); err != nil {
			return fmt.Errorf("updating %s: %w", c.Name(), err)
		}
		sig := c.Signals()
		fmt.Printf("%s:\n", c.Name())
		fmt.Printf("  convened:     %s\n", sig.Convened)
		fmt.Printf("  convened_at:  %s\n", formatInstant(sig.ConvenedAt))
		fmt.Printf("  adjourned_at: %s\n", formatInstant(sig.AdjournedAt))
		fmt.Printf("  convenes_at:  %s\n", formatInstant(sig.ConvenesAt))
		fmt.Printf("  next_update:  %s\n", formatInstant(c.NextUpdate()))
	}
	return nil
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
