// Package flappy implements the episode simulator for a Flappy Bird-style
// game: a bird at a fixed column falls under gravity, may jump, and must pass
// through gaps in obstacle pairs scrolling in from the right.
//
// A World is advanced only by Step, one frame at a time, in the order
// jump -> advance -> collide -> score -> spawn -> retire -> observe.
package flappy

import (
	"fmt"

	"github.com/vovakirdan/flapsim/internal/config"
	"github.com/vovakirdan/flapsim/internal/core"
)

// StepResult is returned by World.Step after each frame.
type StepResult struct {
	Observation Observation
	Alive       bool
	Score       int
}

// World owns one episode's state. It is not safe for concurrent use; run
// concurrent episodes on separate worlds.
type World struct {
	cfg    config.FlappyConfig
	player Player
	pairs  *PairManager
	score  int  // Frames survived, starting at -1
	frame  int  // Frames advanced
	alive  bool // False once terminated
}

// NewWorld creates a world in its initial state: alive, no obstacles,
// score -1. The seed drives obstacle placement.
func NewWorld(cfg config.FlappyConfig, seed int64) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("flappy: %w", err)
	}
	return &World{
		cfg:    cfg,
		player: newPlayer(cfg),
		pairs:  NewPairManager(seed, cfg),
		score:  -1,
		alive:  true,
	}, nil
}

// Step advances the world by one frame.
// Stepping a terminated world changes nothing.
func (w *World) Step(action core.Action) StepResult {
	if !w.alive {
		return w.result()
	}

	w.frame++

	if action == core.ActionJump {
		w.player.Jump()
	}

	w.player.Advance()
	w.pairs.Update()

	if w.player.OutOfBounds(w.cfg.Screen.Height) || w.pairs.CheckCollision(w.player.Rect()) {
		w.alive = false
	}

	if w.alive {
		w.score++
	}

	// Evaluated after the alive gate whether or not the player survived. The
	// score does not move on a death frame, so dying on the frame after a
	// spawn repeats that spawn.
	if w.score%w.cfg.Obstacles.SpawnInterval == 0 {
		w.pairs.Spawn()
	}

	w.pairs.Retire()

	return w.result()
}

func (w *World) result() StepResult {
	return StepResult{
		Observation: w.Observe(),
		Alive:       w.alive,
		Score:       w.score,
	}
}

// Player returns a copy of the player.
func (w *World) Player() Player {
	return w.player
}

// Pairs returns a copy of the live obstacle pairs in spawn order.
func (w *World) Pairs() []ObstaclePair {
	live := w.pairs.Pairs()
	out := make([]ObstaclePair, len(live))
	copy(out, live)
	return out
}

// Score returns the current score.
func (w *World) Score() int {
	return w.score
}

// Frame returns the number of frames advanced so far.
func (w *World) Frame() int {
	return w.frame
}

// Alive reports whether the episode is still running.
func (w *World) Alive() bool {
	return w.alive
}

// Config returns the configuration the world was built with.
func (w *World) Config() config.FlappyConfig {
	return w.cfg
}

// Terminate ends the episode without advancing a frame. Used by frame
// observers that request an early stop.
func (w *World) Terminate() {
	w.alive = false
}
