package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/floodroute/backend/broadcast"
	"github.com/example/floodroute/backend/internal/api"
	"github.com/example/floodroute/backend/scenario"
)

var (
	simulateAddr   string
	simulateEvents string
	simulateSpeed  float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Args:  cobra.NoArgs,
	Short: "Run the Scenario Driver against an authored event list",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simulateAddr, "addr", ":8080", "HTTP listen address")
	simulateCmd.Flags().StringVar(&simulateEvents, "events", "", "path to the authored scenario event list (required)")
	simulateCmd.Flags().Float64Var(&simulateSpeed, "speed", 1.0, "replay speed factor, 1.0 = real time")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simulateEvents == "" {
		return fmt.Errorf("simulate: --events is required")
	}

	rt, err := boot(cfgFile, "", verbose)
	if err != nil {
		return err
	}

	events, err := scenario.LoadEvents(simulateEvents)
	if err != nil {
		return err
	}

	driver := scenario.New(rt.graph, rt.fusion, broadcast.ScenarioPublisher{Hub: rt.hub}, events)
	driver.Start(simulateSpeed)
	defer driver.Stop()

	server := api.NewServer(simulateAddr, api.Deps{
		Graph:    rt.graph,
		Fusion:   rt.fusion,
		Router:   rt.router,
		Scenario: driver,
		Hub:      rt.hub,
		Logger:   rt.log,
	})

	if err := server.Start(); err != nil {
		return fmt.Errorf("api server exited: %w", err)
	}
	return nil
}
