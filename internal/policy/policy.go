// Package policy maps observations to jump decisions.
//
// Two implementations share one contract: Digital computes a weighted sum
// directly and Circuit obtains the same sum as the output of an analog
// summing amplifier. Both normalise observations with the same ranges and
// compare against the same threshold, so for a given parameter vector they
// choose the same action up to solver tolerance.
package policy

import (
	"errors"
	"fmt"
	"math"

	"github.com/vovakirdan/flapsim/internal/config"
	"github.com/vovakirdan/flapsim/internal/core"
	"github.com/vovakirdan/flapsim/internal/games/flappy"
)

// NumParams is the length of a parameter vector: one weight per observation
// component followed by the bias.
const NumParams = 4

var (
	// ErrParamCount is returned when a parameter vector has the wrong length.
	ErrParamCount = errors.New("policy: parameter vector must have 4 elements")
	// ErrZeroWeight is returned by the circuit policy for a zero parameter,
	// which has no finite resistor equivalent.
	ErrZeroWeight = errors.New("policy: zero parameter has no resistor equivalent")
)

// Params holds three observation weights and a bias.
type Params [NumParams]float64

// NewParams builds a parameter vector from an ordered sequence.
func NewParams(values []float64) (Params, error) {
	var p Params
	if len(values) != NumParams {
		return p, fmt.Errorf("%w, got %d", ErrParamCount, len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return p, fmt.Errorf("policy: %w: parameter %d is %v", config.ErrInvalid, i, v)
		}
	}
	copy(p[:], values)
	return p, nil
}

// Weights returns the observation weights.
func (p Params) Weights() [3]float64 {
	return [3]float64{p[0], p[1], p[2]}
}

// Bias returns the bias term.
func (p Params) Bias() float64 {
	return p[3]
}

// Policy is a decision model that can be bound to a parameter vector.
type Policy interface {
	// Name returns the registry name (e.g., "digital", "circuit").
	Name() string

	// Bind validates params and precomputes anything that depends only on
	// them. Configuration errors are reported here, before any decision.
	Bind(p Params) (Decider, error)
}

// Decider chooses actions for one bound parameter vector. Deciders are
// immutable and safe for concurrent use.
type Decider interface {
	// Decide returns the action for the observation.
	Decide(obs flappy.Observation) (core.Action, error)

	// Activation returns the value compared against the threshold.
	Activation(obs flappy.Observation) (float64, error)
}

// Decide binds p and decides a single observation.
func Decide(pol Policy, obs flappy.Observation, p Params) (core.Action, error) {
	d, err := pol.Bind(p)
	if err != nil {
		return core.ActionNone, err
	}
	return d.Decide(obs)
}

// Normalizer remaps observation components onto the target range.
type Normalizer struct {
	distance, height, velocity config.Range
	target                     config.Range
}

// NewNormalizer builds a normalizer from the observation configuration.
func NewNormalizer(cfg config.FlappyObservation) (Normalizer, error) {
	ranges := []struct {
		name string
		r    config.Range
	}{
		{"distance", cfg.Distance},
		{"height", cfg.Height},
		{"velocity", cfg.Velocity},
	}
	for _, nr := range ranges {
		if nr.r.Span() == 0 {
			return Normalizer{}, fmt.Errorf("policy: %w: %s range is empty", config.ErrInvalid, nr.name)
		}
	}
	return Normalizer{
		distance: cfg.Distance,
		height:   cfg.Height,
		velocity: cfg.Velocity,
		target:   cfg.Target,
	}, nil
}

// Normalize returns the three remapped components in input order.
func (n Normalizer) Normalize(obs flappy.Observation) [3]float64 {
	remap := func(v float64, src config.Range) float64 {
		return core.Remap(v, src.Min, src.Max, n.target.Min, n.target.Max)
	}
	return [3]float64{
		remap(obs.Distance, n.distance),
		remap(obs.HeightOffset, n.height),
		remap(obs.Velocity, n.velocity),
	}
}

// Threshold converts an activation into an action: Jump iff activation
// exceeds limit.
func Threshold(activation, limit float64) core.Action {
	if activation > limit {
		return core.ActionJump
	}
	return core.ActionNone
}
