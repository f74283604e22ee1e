package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flapsim/internal/harness"
	"github.com/vovakirdan/flapsim/internal/policy"
)

var (
	flagCompareEpisodes int
	flagStrict          bool
	flagShow            int
)

var compareCmd = &cobra.Command{
	Use:   "compare [policy-a policy-b]",
	Short: "Run two policies side by side and report disagreements",
	Long: `Drive -n episodes with the first policy and ask the second to decide each
observation as well. Reports the number of frames where the actions differ
and the largest difference between the two pre-threshold sums.

Defaults to comparing digital against circuit. With --strict, any
disagreement that is not on the threshold itself is an error.

Examples:
  flapsim compare --weights 0.8,-1.2,0.5,0.3
  flapsim compare digital circuit --params best.yaml -n 10 --strict`,
	Args: cobra.MatchAll(cobra.MaximumNArgs(2), func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return fmt.Errorf("compare needs two policies or none")
		}
		return nil
	}),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().IntVarP(&flagCompareEpisodes, "episodes", "n", 3, "Number of episodes")
	compareCmd.Flags().BoolVar(&flagStrict, "strict", false, "Fail on disagreements away from the threshold")
	compareCmd.Flags().IntVar(&flagShow, "show", 5, "Disagreements to print")
}

func runCompare(_ *cobra.Command, args []string) error {
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

	names := []string{"digital", "circuit"}
	if len(args) == 2 {
		names = args
	}
	var pols [2]policy.Policy
	for i, name := range names {
		if pols[i], err = policyArg([]string{name}, cfg); err != nil {
			return err
		}
	}

	res, err := harness.Compare(params, pols[0], pols[1], flagCompareEpisodes,
		harness.WithConfig(cfg),
		harness.WithSeed(resolveSeed()),
		harness.WithMaxFrames(flagMaxFrames),
		harness.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	printHeading(fmt.Sprintf("Compare - %s vs %s", res.A, res.B))
	printField("Episodes", res.Episodes)
	printField("Scores", res.Scores)
	printField("Frames", res.Frames)
	printField("Max diff", fmt.Sprintf("%.3g", res.MaxDiff))
	printField("Disagreements", len(res.Disagreements))
	printField("Result", verdict(res.Agree(), "equivalent", "differs"))

	for i, d := range res.Disagreements {
		if i >= flagShow {
			fmt.Printf("  ... %d more\n", len(res.Disagreements)-flagShow)
			break
		}
		fmt.Printf("  episode %d frame %d: %s=%v (%.6f) %s=%v (%.6f)\n",
			d.Episode, d.Frame, res.A, d.A, d.ActivationA, res.B, d.B, d.ActivationB)
	}

	if flagStrict {
		// Sums within solver tolerance of the threshold may round either way
		limit := cfg.Policy.Threshold
		for _, d := range res.Disagreements {
			tol := 1e-3 * math.Max(1, math.Abs(d.ActivationA))
			if math.Abs(d.ActivationA-limit) > tol {
				return fmt.Errorf("policies disagree at episode %d frame %d", d.Episode, d.Frame)
			}
		}
	}
	return nil
}
