package flappy

import (
	"testing"

	"github.com/vovakirdan/flapsim/internal/config"
	"github.com/vovakirdan/flapsim/internal/core"
)

func TestPlayerOutOfBounds(t *testing.T) {
	cfg := config.DefaultFlappyConfig()

	tests := []struct {
		name     string
		y        float64
		expected bool
	}{
		{"exactly at top edge", 0, true},
		{"one pixel inside top", 1, false},
		{"above the screen", -5, true},
		{"exactly at bottom edge", 400 - 30, true},
		{"one pixel inside bottom", 400 - 31, false},
		{"below the screen", 390, true},
		{"mid screen", 200, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newPlayer(cfg)
			p.Y = tc.y
			if got := p.OutOfBounds(cfg.Screen.Height); got != tc.expected {
				t.Errorf("OutOfBounds() at y=%f = %v, expected %v", tc.y, got, tc.expected)
			}
		})
	}
}

func TestPlayerAdvanceDoesNotClamp(t *testing.T) {
	p := newPlayer(config.DefaultFlappyConfig())
	p.Y = 395
	p.Vel = 10
	p.Advance()

	if p.Y <= 400 {
		t.Errorf("Advance() Y = %f, expected the player to leave the screen", p.Y)
	}
	if !p.OutOfBounds(400) {
		t.Error("player below the screen should be out of bounds")
	}
}

func TestObstaclePairGeometry(t *testing.T) {
	pair := ObstaclePair{X: 601, GapCenter: 200, GapWidth: 125, Depth: 80, speed: 6, screenH: 400}

	top := pair.Top()
	if top != core.NewRect(601, 0, 80, 137.5) {
		t.Errorf("Top() = %+v", top)
	}
	bottom := pair.Bottom()
	if bottom != core.NewRect(601, 262.5, 80, 137.5) {
		t.Errorf("Bottom() = %+v", bottom)
	}

	pair.Advance()
	if pair.X != 595 || pair.Top().X != pair.Bottom().X {
		t.Errorf("Advance() X = %f, halves at %f / %f", pair.X, pair.Top().X, pair.Bottom().X)
	}
}

func TestObstaclePairOffscreen(t *testing.T) {
	tests := []struct {
		name     string
		x        float64
		expected bool
	}{
		{"on screen", 10, false},
		{"right edge at boundary", -80, false},
		{"right edge just past boundary", -80.5, true},
		{"far left", -200, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pair := ObstaclePair{X: tc.x, Depth: 80}
			if got := pair.Offscreen(); got != tc.expected {
				t.Errorf("Offscreen() with right=%f = %v, expected %v", pair.Right(), got, tc.expected)
			}
		})
	}
}

func TestPairManagerSpawnRange(t *testing.T) {
	cfg := config.DefaultFlappyConfig()
	pm := NewPairManager(99, cfg)

	for i := 0; i < 500; i++ {
		p := pm.Spawn()
		if p.GapCenter < 125 || p.GapCenter >= 275 {
			t.Fatalf("gap centre %f outside [125, 275)", p.GapCenter)
		}
		if p.Top().H < 0 || p.Bottom().H < 0 {
			t.Fatalf("negative half height for centre %f", p.GapCenter)
		}
		if p.ID != i {
			t.Fatalf("spawn ID = %d, expected %d", p.ID, i)
		}
	}
}

func TestPairManagerReset(t *testing.T) {
	cfg := config.DefaultFlappyConfig()
	pm := NewPairManager(5, cfg)

	first := []float64{pm.Spawn().GapCenter, pm.Spawn().GapCenter, pm.Spawn().GapCenter}
	pm.Reset(5)

	if len(pm.Pairs()) != 0 {
		t.Errorf("Reset should clear pairs, got %d", len(pm.Pairs()))
	}
	for i, want := range first {
		got := pm.Spawn()
		if got.GapCenter != want || got.ID != i {
			t.Errorf("spawn %d after Reset = (%d, %f), expected (%d, %f)", i, got.ID, got.GapCenter, i, want)
		}
	}
}

func TestObserveScanOrder(t *testing.T) {
	w := newTestWorld(t, floatingConfig(), 1)
	px := w.player.X

	// Behind the player: right edge exactly at the player column
	w.pairs.pairs = append(w.pairs.pairs,
		ObstaclePair{ID: 0, X: px - 80, GapCenter: 150, GapWidth: 125, Depth: 80, screenH: 400},
		ObstaclePair{ID: 1, X: px + 50, GapCenter: 260, GapWidth: 125, Depth: 80, screenH: 400},
		ObstaclePair{ID: 2, X: px - 60, GapCenter: 140, GapWidth: 125, Depth: 80, screenH: 400},
	)

	obs := w.Observe()

	// Pair 1 is the first ahead in spawn order; pair 2 is closer but later
	if obs.Distance != 130 {
		t.Errorf("Distance = %f, expected 130", obs.Distance)
	}
	if obs.HeightOffset != 260-w.player.Y {
		t.Errorf("HeightOffset = %f, expected %f", obs.HeightOffset, 260-w.player.Y)
	}
}

func TestObserveSentinelWhenNothingAhead(t *testing.T) {
	w := newTestWorld(t, floatingConfig(), 1)
	w.player.Vel = -3.5
	w.pairs.pairs = append(w.pairs.pairs,
		ObstaclePair{X: w.player.X - 100, GapCenter: 150, GapWidth: 125, Depth: 80, screenH: 400},
	)

	obs := w.Observe()
	expected := Observation{Distance: 200, HeightOffset: 0, Velocity: -3.5}
	if obs != expected {
		t.Errorf("Observe() = %+v, expected %+v", obs, expected)
	}
	if obs.Vector() != [3]float64{200, 0, -3.5} {
		t.Errorf("Vector() = %v", obs.Vector())
	}
}
