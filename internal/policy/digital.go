package policy

import (
	"github.com/vovakirdan/flapsim/internal/config"
	"github.com/vovakirdan/flapsim/internal/core"
	"github.com/vovakirdan/flapsim/internal/games/flappy"
)

// Digital is the weighted-sum threshold policy. Any real parameter is valid,
// including zero.
type Digital struct {
	norm      Normalizer
	threshold float64
}

// NewDigital creates a digital policy from the configuration.
func NewDigital(cfg config.FlappyConfig) (*Digital, error) {
	norm, err := NewNormalizer(cfg.Observation)
	if err != nil {
		return nil, err
	}
	return &Digital{norm: norm, threshold: cfg.Policy.Threshold}, nil
}

// Name implements Policy.
func (d *Digital) Name() string {
	return "digital"
}

// Bind implements Policy.
func (d *Digital) Bind(p Params) (Decider, error) {
	return digitalDecider{policy: d, params: p}, nil
}

type digitalDecider struct {
	policy *Digital
	params Params
}

func (dd digitalDecider) Activation(obs flappy.Observation) (float64, error) {
	n := dd.policy.norm.Normalize(obs)
	w := dd.params.Weights()
	var sum float64
	for i := range n {
		sum += w[i] * n[i]
	}
	// The bias input is the constant 1
	sum += dd.params.Bias() * 1
	return sum, nil
}

func (dd digitalDecider) Decide(obs flappy.Observation) (core.Action, error) {
	a, err := dd.Activation(obs)
	if err != nil {
		return core.ActionNone, err
	}
	return Threshold(a, dd.policy.threshold), nil
}

func init() {
	Register("digital", func(cfg config.FlappyConfig) (Policy, error) {
		return NewDigital(cfg)
	})
}
