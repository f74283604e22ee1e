package core

// RuntimeConfig contains per-run settings that are not part of the game physics.
type RuntimeConfig struct {
	Seed      int64 // RNG seed for deterministic obstacle spawning
	MaxFrames int   // Hard cap on frames per episode
	Episodes  int   // Number of episodes in a batch
	Workers   int   // Episodes evaluated concurrently (1 = sequential)
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		Seed:      0, // 0 means use current time in the CLI layer
		MaxFrames: 20000,
		Episodes:  3,
		Workers:   1,
	}
}
