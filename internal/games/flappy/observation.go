package flappy

// Observation is the compact summary of world state fed to a policy.
type Observation struct {
	Distance     float64 // Player X to the right edge of the next top half
	HeightOffset float64 // That pair's gap centre minus player Y
	Velocity     float64 // Player vertical velocity
}

// Vector returns the observation components in policy input order.
func (o Observation) Vector() [3]float64 {
	return [3]float64{o.Distance, o.HeightOffset, o.Velocity}
}

// Observe extracts the observation for the current frame.
//
// Pairs are scanned in spawn order and the first whose right edge is still
// ahead of the player wins, even if a later pair were closer.
func (w *World) Observe() Observation {
	obs := Observation{
		Distance: w.cfg.Observation.SentinelDistance,
		Velocity: w.player.Vel,
	}
	for _, p := range w.pairs.Pairs() {
		dist := p.Top().Right() - w.player.X
		if dist > 0 {
			obs.Distance = dist
			obs.HeightOffset = p.GapCenter - w.player.Y
			break
		}
	}
	return obs
}
