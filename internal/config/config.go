// Package config provides YAML-based configuration loading for the simulator:
// game physics, observation normalisation, policy threshold and the analog
// circuit model. Values are immutable once loaded and passed explicitly into
// the packages that need them.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned (wrapped) when a configuration cannot run an episode.
var ErrInvalid = errors.New("invalid configuration")

// FlappyConfig contains all configuration for the simulator.
type FlappyConfig struct {
	Screen      FlappyScreen      `yaml:"screen"`
	Physics     FlappyPhysics     `yaml:"physics"`
	Player      FlappyPlayer      `yaml:"player"`
	Obstacles   FlappyObstacles   `yaml:"obstacles"`
	Observation FlappyObservation `yaml:"observation"`
	Policy      PolicyConfig      `yaml:"policy"`
	Circuit     CircuitConfig     `yaml:"circuit"`
}

// FlappyScreen defines the playfield extent.
type FlappyScreen struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// FlappyPhysics defines physics parameters.
type FlappyPhysics struct {
	Gravity     float64 `yaml:"gravity"`
	JumpImpulse float64 `yaml:"jump_impulse"` // Added to velocity on jump (negative = up)
}

// FlappyPlayer defines player parameters.
type FlappyPlayer struct {
	X    float64 `yaml:"x"`
	Size float64 `yaml:"size"`
}

// FlappyObstacles defines obstacle parameters.
type FlappyObstacles struct {
	Speed         float64 `yaml:"speed"`          // Horizontal distance moved per frame
	GapWidth      float64 `yaml:"gap_width"`      // Vertical opening between the halves
	Depth         float64 `yaml:"depth"`          // Horizontal extent of each half
	SpawnInterval int     `yaml:"spawn_interval"` // Frames between spawns
}

// FlappyObservation defines how observations are extracted and normalised.
type FlappyObservation struct {
	SentinelDistance float64 `yaml:"sentinel_distance"` // Distance reported when nothing is ahead
	Distance         Range   `yaml:"distance"`
	Height           Range   `yaml:"height"`
	Velocity         Range   `yaml:"velocity"`
	Target           Range   `yaml:"target"`
}

// Range is a closed numeric interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Span returns Max - Min.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// PolicyConfig defines the shared decision threshold.
type PolicyConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// CircuitConfig defines the summing amplifier used by the circuit policy.
type CircuitConfig struct {
	ResistorScale float64     `yaml:"resistor_scale"` // Input resistor = scale / |weight|
	Feedback      float64     `yaml:"feedback"`       // Feedback resistor in ohms
	OpAmp         OpAmpConfig `yaml:"opamp"`
}

// OpAmpConfig defines the op-amp macro model.
type OpAmpConfig struct {
	InputResistance  float64 `yaml:"input_resistance"`
	Gain             float64 `yaml:"gain"`
	PoleResistance   float64 `yaml:"pole_resistance"`
	PoleCapacitance  float64 `yaml:"pole_capacitance"`
	OutputResistance float64 `yaml:"output_resistance"`
}

// GapRange returns the half-open integer range [lo, hi) gap centres are drawn from.
func (o FlappyObstacles) GapRange(screenH float64) (lo, hi int) {
	return int(o.GapWidth), int(screenH - o.GapWidth)
}

// Validate reports the first problem that would prevent an episode from running.
func (c FlappyConfig) Validate() error {
	switch {
	case c.Screen.Width <= 0 || c.Screen.Height <= 0:
		return fmt.Errorf("%w: screen must be positive, got %vx%v", ErrInvalid, c.Screen.Width, c.Screen.Height)
	case c.Player.Size <= 0:
		return fmt.Errorf("%w: player size must be positive, got %v", ErrInvalid, c.Player.Size)
	case c.Obstacles.Depth <= 0:
		return fmt.Errorf("%w: obstacle depth must be positive, got %v", ErrInvalid, c.Obstacles.Depth)
	case c.Obstacles.Speed <= 0:
		return fmt.Errorf("%w: obstacle speed must be positive, got %v", ErrInvalid, c.Obstacles.Speed)
	case c.Obstacles.SpawnInterval <= 0:
		return fmt.Errorf("%w: spawn interval must be positive, got %d", ErrInvalid, c.Obstacles.SpawnInterval)
	case c.Obstacles.GapWidth <= 0:
		return fmt.Errorf("%w: gap width must be positive, got %v", ErrInvalid, c.Obstacles.GapWidth)
	}

	if lo, hi := c.Obstacles.GapRange(c.Screen.Height); hi <= lo {
		return fmt.Errorf("%w: gap width %v leaves no spawn range on a screen %v high",
			ErrInvalid, c.Obstacles.GapWidth, c.Screen.Height)
	}

	ranges := []struct {
		name string
		r    Range
	}{
		{"distance", c.Observation.Distance},
		{"height", c.Observation.Height},
		{"velocity", c.Observation.Velocity},
	}
	for _, nr := range ranges {
		if nr.r.Span() == 0 {
			return fmt.Errorf("%w: %s normalisation range is empty", ErrInvalid, nr.name)
		}
	}

	return nil
}

// ValidateCircuit reports problems with the analog model. Only the circuit
// policy depends on these values, so the check is separate from Validate.
func (c CircuitConfig) ValidateCircuit() error {
	values := []struct {
		name string
		v    float64
	}{
		{"resistor_scale", c.ResistorScale},
		{"feedback", c.Feedback},
		{"opamp.input_resistance", c.OpAmp.InputResistance},
		{"opamp.gain", c.OpAmp.Gain},
		{"opamp.pole_resistance", c.OpAmp.PoleResistance},
		{"opamp.output_resistance", c.OpAmp.OutputResistance},
	}
	for _, nv := range values {
		if nv.v <= 0 {
			return fmt.Errorf("%w: circuit %s must be positive, got %v", ErrInvalid, nv.name, nv.v)
		}
	}
	return nil
}
