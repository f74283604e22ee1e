// Package harness runs episodes of the flappy simulator under a decision
// policy and aggregates their scores.
//
// An episode is the loop observe -> decide -> step, ending when the bird
// dies or a frame cap is reached. A batch runs n episodes with seeds
// seed, seed+1, ... and reports the mean score of those that completed.
package harness

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/flapsim/internal/config"
	"github.com/vovakirdan/flapsim/internal/core"
	"github.com/vovakirdan/flapsim/internal/games/flappy"
	"github.com/vovakirdan/flapsim/internal/policy"
)

// ErrAllFailed is returned by RunEpisodes when no episode completed.
var ErrAllFailed = errors.New("harness: every episode failed")

// EpisodeResult is the outcome of one episode.
type EpisodeResult struct {
	Index  int   // Position in the batch
	Seed   int64 // Obstacle seed
	Score  int   // Last observed score
	Frames int   // Frames stepped
	Err    error // Non-nil if the episode aborted
}

// BatchResult aggregates a batch of episodes.
type BatchResult struct {
	Policy    string
	Params    policy.Params
	Seed      int64 // Base seed
	MaxFrames int
	Episodes  []EpisodeResult // In index order
	Mean      float64         // Mean score of completed episodes
	Failed    int             // Episodes dropped from the mean
	Duration  time.Duration
}

// Scores returns the scores of completed episodes in index order.
func (b BatchResult) Scores() []int {
	scores := make([]int, 0, len(b.Episodes))
	for _, ep := range b.Episodes {
		if ep.Err == nil {
			scores = append(scores, ep.Score)
		}
	}
	return scores
}

// Errors returns the errors of failed episodes in index order.
func (b BatchResult) Errors() []error {
	var errs []error
	for _, ep := range b.Episodes {
		if ep.Err != nil {
			errs = append(errs, ep.Err)
		}
	}
	return errs
}

// Best returns the highest completed score, or -1 if none completed.
func (b BatchResult) Best() int {
	best := -1
	for _, s := range b.Scores() {
		if s > best {
			best = s
		}
	}
	return best
}

// RunEpisode binds params to pol and runs one episode of at most maxFrames
// frames. It returns the last observed score.
func RunEpisode(params policy.Params, pol policy.Policy, maxFrames int, opts ...Option) (int, error) {
	o := buildOptions(opts)
	if maxFrames <= 0 {
		return 0, fmt.Errorf("harness: %w: max frames must be positive, got %d", config.ErrInvalid, maxFrames)
	}
	dec, err := pol.Bind(params)
	if err != nil {
		return 0, fmt.Errorf("harness: bind %s: %w", pol.Name(), err)
	}
	res := runEpisode(dec, o.cfg, o.seed, maxFrames, o.activeObserver())
	return res.Score, res.Err
}

// RunEpisodes runs n independent episodes and returns their aggregate.
// Params are bound once before any episode starts, so a bind error aborts
// the batch. Episodes that fail mid-run are dropped from the mean and
// counted in Failed; if all of them fail the result carries ErrAllFailed.
func RunEpisodes(n int, params policy.Params, pol policy.Policy, opts ...Option) (BatchResult, error) {
	o := buildOptions(opts)
	result := BatchResult{
		Policy:    pol.Name(),
		Params:    params,
		Seed:      o.seed,
		MaxFrames: o.maxFrames,
	}
	if n <= 0 {
		return result, fmt.Errorf("harness: %w: episode count must be positive, got %d", config.ErrInvalid, n)
	}
	if o.maxFrames <= 0 {
		return result, fmt.Errorf("harness: %w: max frames must be positive, got %d", config.ErrInvalid, o.maxFrames)
	}
	if err := o.cfg.Validate(); err != nil {
		return result, fmt.Errorf("harness: %w", err)
	}

	dec, err := pol.Bind(params)
	if err != nil {
		return result, fmt.Errorf("harness: bind %s: %w", pol.Name(), err)
	}

	o.logger.Info("batch started",
		"policy", pol.Name(),
		"episodes", n,
		"seed", o.seed,
		"workers", o.workers,
	)
	start := time.Now()

	result.Episodes = make([]EpisodeResult, n)
	observer := o.activeObserver()

	g, ctx := errgroup.WithContext(o.ctx)
	g.SetLimit(o.workers)
	for i := 0; i < n; i++ {
		seed := o.seed + int64(i)
		if ctx.Err() != nil {
			result.Episodes[i] = EpisodeResult{Index: i, Seed: seed, Err: ctx.Err()}
			continue
		}
		g.Go(func() error {
			// Each episode writes only its own slot
			ep := runEpisode(dec, o.cfg, seed, o.maxFrames, observer)
			ep.Index = i
			result.Episodes[i] = ep
			return nil
		})
	}
	_ = g.Wait()

	var sum float64
	for _, ep := range result.Episodes {
		if ep.Err != nil {
			result.Failed++
			o.logger.Warn("episode dropped", "index", ep.Index, "seed", ep.Seed, "error", ep.Err)
			continue
		}
		sum += float64(ep.Score)
	}
	result.Duration = time.Since(start)

	completed := n - result.Failed
	if completed == 0 {
		return result, fmt.Errorf("%w (%d episodes): %w", ErrAllFailed, n, result.Episodes[0].Err)
	}
	result.Mean = sum / float64(completed)

	o.logger.Info("batch finished",
		"policy", pol.Name(),
		"mean", result.Mean,
		"failed", result.Failed,
		"duration", result.Duration,
	)
	return result, nil
}

// runEpisode plays one episode with a bound decider.
func runEpisode(dec policy.Decider, cfg config.FlappyConfig, seed int64, maxFrames int, observer Observer) EpisodeResult {
	ep := EpisodeResult{Seed: seed}

	w, err := flappy.NewWorld(cfg, seed)
	if err != nil {
		ep.Err = fmt.Errorf("harness: %w", err)
		return ep
	}
	ep.Score = w.Score()

	obs := w.Observe()
	forced := core.ActionNone
	for w.Frame() < maxFrames {
		action, err := dec.Decide(obs)
		if err != nil {
			ep.Err = fmt.Errorf("harness: episode seed %d frame %d: %w", seed, w.Frame()+1, err)
			break
		}
		if forced == core.ActionJump {
			action = core.ActionJump
		}

		res := w.Step(action)
		obs = res.Observation
		ep.Score = res.Score

		if observer != nil {
			ctl := observer.Frame(w, res)
			forced = forcedAction(ctl)
			if ctl.Quit {
				w.Terminate()
			}
		}
		if !w.Alive() {
			break
		}
	}
	ep.Frames = w.Frame()
	return ep
}
