package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/floodroute/backend/internal/api"
)

var (
	serveAddr   string
	serveFeeds  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Args:  cobra.NoArgs,
	Short: "Run the Query Surface and the periodic collection loop",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
	serveCmd.Flags().StringVar(&serveFeeds, "feeds", "", "path to the upstream feeds config (omit to run with no live sources)")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := boot(cfgFile, serveFeeds, verbose)
	if err != nil {
		return err
	}

	period := time.Duration(rt.cfg.SchedulerPeriodS) * time.Second
	if period <= 0 {
		period = 5 * time.Minute
	}
	rt.scheduler.Start(period)
	defer rt.scheduler.Stop(10 * time.Second)

	server := api.NewServer(serveAddr, api.Deps{
		Graph:           rt.graph,
		Fusion:          rt.fusion,
		Router:          rt.router,
		Scheduler:       rt.scheduler,
		Hub:             rt.hub,
		SchedulerPeriod: period,
		Logger:          rt.log,
	})

	if err := server.Start(); err != nil {
		return fmt.Errorf("api server exited: %w", err)
	}
	return nil
}
