package harness

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/flapsim/internal/core"
	"github.com/vovakirdan/flapsim/internal/games/flappy"
)

// FrameControl is an observer's reply after a frame.
type FrameControl struct {
	Jump bool // Force a jump on the next frame regardless of the policy
	Quit bool // End the episode now
}

// Observer is called once per frame after the world has stepped. It stands
// in for rendering and human input: it may look at the world but must not
// mutate it.
type Observer interface {
	Frame(w *flappy.World, res flappy.StepResult) FrameControl
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(w *flappy.World, res flappy.StepResult) FrameControl

// Frame implements Observer.
func (f ObserverFunc) Frame(w *flappy.World, res flappy.StepResult) FrameControl {
	return f(w, res)
}

// LogObserver traces frames at debug level.
type LogObserver struct {
	Logger *log.Logger
	Every  int // Log every Nth frame; 0 or 1 logs all frames
}

// Frame implements Observer.
func (l LogObserver) Frame(w *flappy.World, res flappy.StepResult) FrameControl {
	if l.Logger == nil {
		return FrameControl{}
	}
	if l.Every > 1 && w.Frame()%l.Every != 0 && res.Alive {
		return FrameControl{}
	}
	p := w.Player()
	l.Logger.Debug("frame",
		"frame", w.Frame(),
		"score", res.Score,
		"alive", res.Alive,
		"y", p.Y,
		"vel", p.Vel,
		"pairs", len(w.Pairs()),
		"distance", res.Observation.Distance,
		"height", res.Observation.HeightOffset,
	)
	return FrameControl{}
}

// MultiObserver calls each observer in order and merges their replies.
type MultiObserver []Observer

// Frame implements Observer.
func (m MultiObserver) Frame(w *flappy.World, res flappy.StepResult) FrameControl {
	var ctl FrameControl
	for _, o := range m {
		c := o.Frame(w, res)
		ctl.Jump = ctl.Jump || c.Jump
		ctl.Quit = ctl.Quit || c.Quit
	}
	return ctl
}

func forcedAction(ctl FrameControl) core.Action {
	if ctl.Jump {
		return core.ActionJump
	}
	return core.ActionNone
}
