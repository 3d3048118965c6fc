package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/floodroute/backend/broadcast"
	"github.com/example/floodroute/backend/internal/api"
	"github.com/example/floodroute/backend/logging"
	"github.com/example/floodroute/backend/routing"
	"github.com/example/floodroute/backend/scenario"
)

var demoAddr string

// demoCmd runs the synthetic demo topology and scripted event list against
// the full API server, with no config file or feeds config required.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Args:  cobra.NoArgs,
	Short: "Run the built-in demo scenario against the Query Surface",
	RunE:  runDemo,
}

func init() {
	demoCmd.Flags().StringVar(&demoAddr, "addr", ":8080", "HTTP listen address")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	log := logging.New(logging.Config{Level: logging.LevelInfo, Format: logging.FormatText})

	g, driver := scenario.NewDemoScenario()
	hub := broadcast.New(64, 1024)
	driver.Start(4.0) // 4x real time so the demo shows motion quickly

	server := api.NewServer(demoAddr, api.Deps{
		Graph:    g,
		Fusion:   driver.Fusion(),
		Router:   routing.New(routing.DefaultSpeedTable, 100000),
		Scenario: driver,
		Hub:      hub,
		Logger:   log,
	})

	log.Info("demo server listening", "addr", demoAddr)
	if err := server.Start(); err != nil {
		return fmt.Errorf("demo server exited: %w", err)
	}
	return nil
}
