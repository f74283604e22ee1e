package flappy

import (
	"math/rand"

	"github.com/vovakirdan/flapsim/internal/config"
	"github.com/vovakirdan/flapsim/internal/core"
)

// ObstaclePair is a top and bottom barrier sharing one gap. Both halves use
// the same X, so they always move in lockstep.
type ObstaclePair struct {
	ID        int     // Spawn sequence number, starting at 0
	X         float64 // Left edge of both halves
	GapCenter float64 // Vertical centre of the opening
	GapWidth  float64 // Height of the opening
	Depth     float64 // Horizontal extent of each half

	speed   float64
	screenH float64
}

// Top returns the collision rectangle of the upper half, from the screen top
// to the start of the gap.
func (o ObstaclePair) Top() core.Rect {
	return core.NewRect(o.X, 0, o.Depth, o.GapCenter-o.GapWidth/2)
}

// Bottom returns the collision rectangle of the lower half, from the end of
// the gap to the screen bottom.
func (o ObstaclePair) Bottom() core.Rect {
	y := o.GapCenter + o.GapWidth/2
	return core.NewRect(o.X, y, o.Depth, o.screenH-y)
}

// Right returns the x-coordinate shared by the right edges of both halves.
func (o ObstaclePair) Right() float64 {
	return o.X + o.Depth
}

// Advance moves both halves left by one frame's distance.
func (o *ObstaclePair) Advance() {
	o.X -= o.speed
}

// Offscreen reports whether the pair has scrolled fully past the left edge.
func (o ObstaclePair) Offscreen() bool {
	return o.Right() < 0
}

// Collides reports whether r overlaps either half. Each half is tested on
// its own.
func (o ObstaclePair) Collides(r core.Rect) bool {
	return r.Intersects(o.Top()) || r.Intersects(o.Bottom())
}

// PairManager handles spawning, movement, and removal of obstacle pairs.
// Pairs are kept in spawn order.
type PairManager struct {
	pairs  []ObstaclePair
	rng    *rand.Rand
	cfg    config.FlappyConfig
	nextID int
}

// NewPairManager creates a new pair manager with the given RNG seed.
func NewPairManager(seed int64, cfg config.FlappyConfig) *PairManager {
	pm := &PairManager{
		pairs: make([]ObstaclePair, 0, 8),
		cfg:   cfg,
	}
	pm.Reset(seed)
	return pm
}

// Reset clears all pairs and resets the RNG.
func (pm *PairManager) Reset(seed int64) {
	pm.pairs = pm.pairs[:0]
	pm.rng = rand.New(rand.NewSource(seed))
	pm.nextID = 0
}

// Update moves every pair left by one frame.
func (pm *PairManager) Update() {
	for i := range pm.pairs {
		pm.pairs[i].Advance()
	}
}

// Spawn creates a new pair just past the right edge of the screen with a gap
// centre drawn uniformly from the configured range.
func (pm *PairManager) Spawn() ObstaclePair {
	lo, hi := pm.cfg.Obstacles.GapRange(pm.cfg.Screen.Height)
	center := lo + pm.rng.Intn(hi-lo)

	pair := ObstaclePair{
		ID:        pm.nextID,
		X:         pm.cfg.Screen.Width + 1,
		GapCenter: float64(center),
		GapWidth:  pm.cfg.Obstacles.GapWidth,
		Depth:     pm.cfg.Obstacles.Depth,
		speed:     pm.cfg.Obstacles.Speed,
		screenH:   pm.cfg.Screen.Height,
	}
	pm.nextID++
	pm.pairs = append(pm.pairs, pair)
	return pair
}

// Retire removes pairs that have moved off the left side.
// Returns the number of pairs removed.
func (pm *PairManager) Retire() int {
	before := len(pm.pairs)
	valid := pm.pairs[:0]
	for _, p := range pm.pairs {
		if !p.Offscreen() {
			valid = append(valid, p)
		}
	}
	pm.pairs = valid
	return before - len(valid)
}

// Pairs returns the live pairs in spawn order. The slice must not be modified.
func (pm *PairManager) Pairs() []ObstaclePair {
	return pm.pairs
}

// CheckCollision tests if the given rectangle collides with any pair.
func (pm *PairManager) CheckCollision(r core.Rect) bool {
	for _, p := range pm.pairs {
		if p.Collides(r) {
			return true
		}
	}
	return false
}
