package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	triggerFeeds   string
	triggerTimeout time.Duration
)

// triggerCmd runs a single standalone collection cycle (fetch every
// configured source once, fuse, print the outcome) without starting the
// periodic loop or the HTTP server. Operators use `serve`'s
// /collection/trigger endpoint to force a cycle on an already-running
// process instead.
var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Args:  cobra.NoArgs,
	Short: "Run one collection-fusion cycle and exit",
	RunE:  runTrigger,
}

func init() {
	triggerCmd.Flags().StringVar(&triggerFeeds, "feeds", "", "path to the upstream feeds config (required)")
	triggerCmd.Flags().DurationVar(&triggerTimeout, "timeout", 30*time.Second, "overall cycle budget")
}

func runTrigger(cmd *cobra.Command, args []string) error {
	if triggerFeeds == "" {
		return fmt.Errorf("trigger: --feeds is required")
	}

	rt, err := boot(cfgFile, triggerFeeds, verbose)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), triggerTimeout)
	defer cancel()

	if err := rt.scheduler.Trigger(ctx, triggerTimeout); err != nil {
		return fmt.Errorf("trigger cycle: %w", err)
	}

	stats := rt.scheduler.Stats()
	rt.log.Info("collection cycle complete",
		"runs", stats.Runs,
		"successes", stats.Successes,
		"failures", stats.Failures,
		"last_error", stats.LastError,
	)
	return nil
}
