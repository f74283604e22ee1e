package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flapsim/internal/harness"
)

var (
	flagTrace      bool
	flagTraceEvery int
)

var runCmd = &cobra.Command{
	Use:   "run [policy]",
	Short: "Run one episode and print its score",
	Long: `Run a single episode under the given policy (default: digital) and print
the final score. The episode ends when the bird dies or --max-frames is reached.

With --trace, every frame (or every --trace-every frames) is logged at debug level.

Examples:
  flapsim run --weights 0.8,-1.2,0.5,0.3 --seed 42
  flapsim run circuit --params best.yaml --trace --log-level debug`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&flagTrace, "trace", false, "Log frames at debug level")
	runCmd.Flags().IntVar(&flagTraceEvery, "trace-every", 1, "Log every Nth frame when tracing")
}

func runRun(_ *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	params, err := loadParams()
	if err != nil {
		return err
	}
	pol, err := policyArg(args, cfg)
	if err != nil {
		return err
	}

	seed := resolveSeed()
	logger.Debug("running episode", "policy", pol.Name(), "seed", seed, "params", params)

	score, err := harness.RunEpisode(params, pol, flagMaxFrames,
		harness.WithConfig(cfg),
		harness.WithSeed(seed),
		harness.WithLogger(logger),
		harness.WithObserver(harness.LogObserver{Logger: logger, Every: flagTraceEvery}),
		harness.WithRenderScreen(flagTrace),
	)
	if err != nil {
		return err
	}

	fmt.Println(score)
	return nil
}
