package config

import (
	_ "embed"
)

//go:embed defaults/flappy.yaml
var defaultFlappyYAML []byte

// DefaultFlappyConfig returns the default simulator configuration.
func DefaultFlappyConfig() FlappyConfig {
	return FlappyConfig{
		Screen: FlappyScreen{
			Width:  600,
			Height: 400,
		},
		Physics: FlappyPhysics{
			Gravity:     0.8,
			JumpImpulse: -12,
		},
		Player: FlappyPlayer{
			X:    100,
			Size: 30,
		},
		Obstacles: FlappyObstacles{
			Speed:         6,
			GapWidth:      125,
			Depth:         80,
			SpawnInterval: 75,
		},
		Observation: FlappyObservation{
			SentinelDistance: 200,
			Distance:         Range{Min: 0, Max: 75},
			Height:           Range{Min: 0, Max: 400},
			Velocity:         Range{Min: -5, Max: 5},
			Target:           Range{Min: 0, Max: 5},
		},
		Policy: PolicyConfig{
			Threshold: 2.5,
		},
		Circuit: CircuitConfig{
			ResistorScale: 1000,
			Feedback:      1000,
			OpAmp: OpAmpConfig{
				InputResistance:  10e6,
				Gain:             100e3,
				PoleResistance:   1000,
				PoleCapacitance:  1.5915e-5,
				OutputResistance: 10,
			},
		},
	}
}
