package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flapsim/internal/config"
	"github.com/vovakirdan/flapsim/internal/policy"
)

// newLogger builds the stderr logger at the level given by --log-level.
func newLogger() (*log.Logger, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "flapsim",
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	logger.SetLevel(level)
	return logger, nil
}

// loadConfig resolves the game configuration from --config and the search path.
func loadConfig() (config.FlappyConfig, error) {
	return config.LoadFlappy(flagConfig)
}

// loadParams resolves the parameter vector from --weights or --params.
func loadParams() (policy.Params, error) {
	values := flagWeights
	if len(values) == 0 {
		if flagParams == "" {
			return policy.Params{}, errors.New("no parameters given: use --weights or --params")
		}
		var err error
		values, err = config.LoadParams(flagParams)
		if err != nil {
			return policy.Params{}, err
		}
	}
	return policy.NewParams(values)
}

// resolveSeed returns --seed, or a time-based seed when it is 0.
func resolveSeed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}

// policyArg returns the policy named by args[0], defaulting to digital.
func policyArg(args []string, cfg config.FlappyConfig) (policy.Policy, error) {
	name := "digital"
	if len(args) > 0 {
		name = args[0]
	}
	if !policy.Exists(name) {
		return nil, fmt.Errorf("unknown policy %q (run 'flapsim policies' to list them)", name)
	}
	return policy.Create(name, cfg)
}
