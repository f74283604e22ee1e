// flapsim runs the flappy episode simulator under a decision policy.
//
// Usage:
//
//	flapsim run [policy]       - Run one episode and print its score
//	flapsim batch [policy]     - Run a batch and print the mean score
//	flapsim compare            - Check the circuit policy against the digital one
//	flapsim netlist            - Print the summing amplifier for one observation
//	flapsim policies           - List available policies
//	flapsim history [policy]   - Show stored batches
//
// Global flags:
//
//	--config <path>     - Game configuration YAML
//	--params <path>     - Parameter vector YAML
//	--weights <list>    - Parameter vector inline (w0,w1,w2,bias)
//	--seed <value>      - Base RNG seed (0 = random based on time)
//	--db <path>         - Batch history database (default: ~/.flapsim/history.db)
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flapsim/internal/core"
)

var (
	// Global flags
	flagConfig    string
	flagParams    string
	flagWeights   []float64
	flagSeed      int64
	flagMaxFrames int
	flagDBPath    string
	flagLogLevel  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flapsim",
	Short: "Flappy episode simulator and policy evaluator",
	Long: `flapsim runs a deterministic Flappy Bird-style simulation and lets a
four-parameter policy play it, either as a weighted sum (digital) or as the
steady-state output of an op-amp summing circuit (circuit).

Available commands:
  run       - Run one episode
  batch     - Run many episodes and report the mean score
  compare   - Run digital and circuit side by side
  netlist   - Print the circuit for one observation
  policies  - List available policies
  history   - Show stored batch results

Examples:
  flapsim run --weights 0.8,-1.2,0.5,0.3
  flapsim batch circuit --params best.yaml -n 20 --workers 4
  flapsim compare --weights 0.8,-1.2,0.5,0.3 -n 5
  flapsim history digital`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	defaults := core.DefaultConfig()

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to game configuration YAML")
	rootCmd.PersistentFlags().StringVar(&flagParams, "params", "", "Path to parameter vector YAML")
	rootCmd.PersistentFlags().Float64SliceVar(&flagWeights, "weights", nil, "Parameter vector w0,w1,w2,bias (overrides --params)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", defaults.Seed, "Base RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().IntVar(&flagMaxFrames, "max-frames", defaults.MaxFrames, "Frame cap per episode")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.flapsim/history.db", "Path to batch history database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(netlistCmd)
	rootCmd.AddCommand(policiesCmd)
	rootCmd.AddCommand(historyCmd)
}
