// Command floodctl is the process entry point: it loads configuration and
// the topology artifact, wires the Fusion Engine, Scheduler, Scenario
// Driver, Broadcast Hub, and Query Surface together, and runs one of the
// serve/simulate/trigger/demo subcommands. Grounded on the teacher's
// cmd/chaos-runner (cobra root command with persistent --config/--verbose
// flags, subcommands split one-file-each).
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "floodctl",
	Short: "Flood-aware routing and situational-awareness service",
	Long: `floodctl runs the flood-aware routing core: a road graph with
live per-edge risk, a fusion engine that folds gauge/weather/raster/crowd
observations into that risk, a safest/balanced/fastest router, and a
websocket broadcast of risk and alert events.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "path to the service config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(triggerCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
