package flappy

import (
	"github.com/vovakirdan/flapsim/internal/config"
	"github.com/vovakirdan/flapsim/internal/core"
)

// Player is the bird. X is fixed for the whole episode; Y is the top of the
// hitbox and grows downward.
type Player struct {
	X, Y float64
	Vel  float64 // Vertical velocity (negative = up)
	Size float64 // Hitbox is Size x Size

	gravity float64
	impulse float64
}

// newPlayer places a player at its configured column, vertically centred.
func newPlayer(cfg config.FlappyConfig) Player {
	return Player{
		X:       cfg.Player.X,
		Y:       cfg.Screen.Height / 2,
		Size:    cfg.Player.Size,
		gravity: cfg.Physics.Gravity,
		impulse: cfg.Physics.JumpImpulse,
	}
}

// Rect returns the player's collision rectangle.
func (p Player) Rect() core.Rect {
	return core.NewRect(p.X, p.Y, p.Size, p.Size)
}

// Advance applies one explicit Euler step. Position is not clamped.
func (p *Player) Advance() {
	p.Vel += p.gravity
	p.Y += p.Vel
}

// Jump adds the jump impulse to the current velocity.
func (p *Player) Jump() {
	p.Vel += p.impulse
}

// OutOfBounds reports whether the hitbox touches or leaves the top or bottom
// edge of a screen screenH high.
func (p Player) OutOfBounds(screenH float64) bool {
	r := p.Rect()
	return r.Y <= 0 || r.Bottom() >= screenH
}
