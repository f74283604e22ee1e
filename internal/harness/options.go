package harness

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flapsim/internal/config"
	"github.com/vovakirdan/flapsim/internal/core"
)

// Option configures RunEpisode, RunEpisodes and Compare.
type Option func(*options)

type options struct {
	ctx       context.Context
	cfg       config.FlappyConfig
	seed      int64
	workers   int
	maxFrames int
	logger    *log.Logger
	observer  Observer
	render    bool
}

func defaultOptions() options {
	return options{
		ctx:       context.Background(),
		cfg:       config.DefaultFlappyConfig(),
		workers:   1,
		maxFrames: core.DefaultConfig().MaxFrames,
		logger:    log.New(io.Discard),
		render:    true,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithContext stops a batch early when ctx is cancelled. Episodes that had
// not started are reported as failed.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithConfig sets the game configuration. Defaults to
// config.DefaultFlappyConfig().
func WithConfig(cfg config.FlappyConfig) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithSeed sets the base seed. Episode i of a batch uses seed+i.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithWorkers bounds the number of episodes evaluated at once.
// Values below 1 mean sequential.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.workers = n
	}
}

// WithMaxFrames caps each episode of a batch. RunEpisode takes the cap as an
// argument instead.
func WithMaxFrames(n int) Option {
	return func(o *options) {
		o.maxFrames = n
	}
}

// WithLogger sets the logger for batch progress. Nil keeps the discard logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver installs a per-frame observer. With more than one worker the
// observer is called from several goroutines.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithRenderScreen enables or disables the observer without removing it.
func WithRenderScreen(enabled bool) Option {
	return func(o *options) {
		o.render = enabled
	}
}

// activeObserver returns the observer to call each frame, or nil.
func (o options) activeObserver() Observer {
	if !o.render {
		return nil
	}
	return o.observer
}
