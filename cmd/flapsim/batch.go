package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flapsim/internal/core"
	"github.com/vovakirdan/flapsim/internal/harness"
	"github.com/vovakirdan/flapsim/internal/storage"
)

var (
	flagEpisodes int
	flagWorkers  int
	flagNoSave   bool
	flagQuiet    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [policy]",
	Short: "Run a batch of episodes and print the mean score",
	Long: `Run -n independent episodes under the given policy (default: digital).
Episode i uses seed+i. Episodes whose decisions fail (for example a singular
circuit) are dropped from the mean and reported.

Results are stored in the history database unless --no-save is given.

Examples:
  flapsim batch --weights 0.8,-1.2,0.5,0.3 -n 20
  flapsim batch circuit --params best.yaml -n 50 --workers 8
  flapsim batch --weights 1,1,1,1 --quiet --no-save`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	defaults := core.DefaultConfig()
	batchCmd.Flags().IntVarP(&flagEpisodes, "episodes", "n", defaults.Episodes, "Number of episodes")
	batchCmd.Flags().IntVar(&flagWorkers, "workers", defaults.Workers, "Episodes evaluated concurrently")
	batchCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not store the result")
	batchCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "Print only the mean score")
}

func runBatch(_ *cobra.Command, args []string) error {
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

	res, err := harness.RunEpisodes(flagEpisodes, params, pol,
		harness.WithConfig(cfg),
		harness.WithSeed(resolveSeed()),
		harness.WithWorkers(flagWorkers),
		harness.WithMaxFrames(flagMaxFrames),
		harness.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	if !flagNoSave {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			logger.Warn("could not open history database", "error", err)
		} else {
			id, err := store.SaveBatch(res)
			if err != nil {
				logger.Warn("could not save batch", "error", err)
			} else {
				logger.Debug("batch saved", "id", id)
			}
			store.Close()
		}
	}

	if flagQuiet {
		fmt.Println(res.Mean)
		return nil
	}

	printHeading(fmt.Sprintf("Batch - %s", res.Policy))
	printField("Params", res.Params)
	printField("Seed", res.Seed)
	printField("Episodes", len(res.Episodes))
	printField("Scores", res.Scores())
	printField("Best", res.Best())
	if res.Failed > 0 {
		printField("Failed", render(badStyle, fmt.Sprint(res.Failed)))
	}
	printField("Duration", res.Duration.Round(time.Millisecond))
	printField("Mean", render(headingStyle, fmt.Sprintf("%.2f", res.Mean)))
	return nil
}
