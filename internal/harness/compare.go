package harness

import (
	"fmt"
	"math"

	"github.com/vovakirdan/flapsim/internal/config"
	"github.com/vovakirdan/flapsim/internal/core"
	"github.com/vovakirdan/flapsim/internal/games/flappy"
	"github.com/vovakirdan/flapsim/internal/policy"
)

// Disagreement records a frame where two policies chose different actions.
type Disagreement struct {
	Episode     int
	Frame       int
	Observation flappy.Observation
	A, B        core.Action
	ActivationA float64
	ActivationB float64
}

// CompareResult summarises running two policies over the same frames.
type CompareResult struct {
	A, B          string
	Episodes      int
	Frames        int            // Decisions compared
	Scores        []int          // Per-episode score of the driving policy
	Disagreements []Disagreement // Frames where the actions differed
	MaxDiff       float64        // Largest |activation A - activation B|
}

// Agree reports whether the two policies chose the same action on every frame.
func (r CompareResult) Agree() bool {
	return len(r.Disagreements) == 0
}

// Compare runs n episodes driven by a and, on every frame, also asks b to
// decide the same observation. Episodes use seeds seed, seed+1, ... and end
// as in RunEpisodes. Both actions are derived from the activations with the
// configured threshold. Any bind or decision error from either policy aborts
// the comparison.
func Compare(params policy.Params, a, b policy.Policy, n int, opts ...Option) (CompareResult, error) {
	o := buildOptions(opts)
	result := CompareResult{A: a.Name(), B: b.Name(), Episodes: n}
	if n <= 0 {
		return result, fmt.Errorf("harness: %w: episode count must be positive, got %d", config.ErrInvalid, n)
	}
	if o.maxFrames <= 0 {
		return result, fmt.Errorf("harness: %w: max frames must be positive, got %d", config.ErrInvalid, o.maxFrames)
	}

	da, err := a.Bind(params)
	if err != nil {
		return result, fmt.Errorf("harness: bind %s: %w", a.Name(), err)
	}
	db, err := b.Bind(params)
	if err != nil {
		return result, fmt.Errorf("harness: bind %s: %w", b.Name(), err)
	}

	for i := 0; i < n; i++ {
		seed := o.seed + int64(i)
		w, err := flappy.NewWorld(o.cfg, seed)
		if err != nil {
			return result, fmt.Errorf("harness: %w", err)
		}

		obs := w.Observe()
		for w.Alive() && w.Frame() < o.maxFrames {
			d, actB, err := decideBoth(da, db, obs, o.cfg.Policy.Threshold, &result)
			if err != nil {
				return result, fmt.Errorf("harness: episode %d frame %d: %w", i, w.Frame()+1, err)
			}
			if d.A != actB {
				d.Episode = i
				d.Frame = w.Frame() + 1
				d.B = actB
				result.Disagreements = append(result.Disagreements, d)
			}
			obs = w.Step(d.A).Observation
		}
		result.Scores = append(result.Scores, w.Score())
		o.logger.Debug("compare episode", "index", i, "seed", seed, "score", w.Score(), "frames", w.Frame())
	}
	return result, nil
}

// decideBoth evaluates both deciders on obs and updates the running totals.
// The returned Disagreement is filled in for a; the caller keeps it only if
// the actions differ.
func decideBoth(da, db policy.Decider, obs flappy.Observation, limit float64, r *CompareResult) (Disagreement, core.Action, error) {
	d := Disagreement{Observation: obs}

	var err error
	if d.ActivationA, err = da.Activation(obs); err != nil {
		return d, core.ActionNone, fmt.Errorf("%s: %w", r.A, err)
	}
	if d.ActivationB, err = db.Activation(obs); err != nil {
		return d, core.ActionNone, fmt.Errorf("%s: %w", r.B, err)
	}
	d.A = policy.Threshold(d.ActivationA, limit)

	r.Frames++
	r.MaxDiff = math.Max(r.MaxDiff, math.Abs(d.ActivationA-d.ActivationB))
	return d, policy.Threshold(d.ActivationB, limit), nil
}
