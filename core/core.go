// Package core carries the capability bundle threaded through every
// contextual state update, and the fixed-rate driver loop.
package core

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/detect"
	"github.com/behold-mycode/komari/game"
	"github.com/behold-mycode/komari/minimap"
	"github.com/behold-mycode/komari/rng"
)

// Flow decides when the state returned by an update takes effect.
type Flow int

const (
	// FlowNext defers the returned state to the following tick.
	FlowNext Flow = iota
	// FlowImmediate feeds the returned state back into dispatch within the
	// same tick, so a coordinator transition does not waste a tick.
	FlowImmediate
)

// Context is the per-tick capability bundle. It is owned by the tick loop and
// handed to updates by pointer; no update outlives the tick it ran in.
type Context struct {
	// Keys sends input to the game client.
	Keys bridge.KeySender
	// Detector answers perception queries. Nil until a frame was captured.
	Detector detect.Detector
	// RNG is the deterministic randomness capability.
	RNG *rng.Rng
	// Minimap is the current minimap classification.
	Minimap minimap.Minimap
	// Halting is true while autonomous rotation is suspended by the user.
	Halting bool
	// Tick is the current simulation tick, incremented before updates run.
	Tick uint64
}

// DetectorMust returns the detector, panicking when no frame was ever
// captured. Call sites reaching this are gated by a prior minimap-idle check.
func (c *Context) DetectorMust() detect.Detector {
	if c.Detector == nil {
		panic("detector is not available because no frame has ever been captured")
	}
	return c.Detector
}

var loopShutdown atomic.Bool

// SignalShutdown asks RunLoop to exit after the current tick.
func SignalShutdown() {
	loopShutdown.Store(true)
}

// RunLoop invokes onTick at the fixed simulation rate until SignalShutdown is
// called. Late ticks are logged at debug level, at most once per interval.
func RunLoop(log *logrus.Logger, onTick func()) {
	const logInterval = 5 * time.Second

	lastLogged := time.Now()
	for !loopShutdown.Load() {
		start := time.Now()
		onTick()

		elapsed := time.Since(start)
		if elapsed <= game.TickDuration {
			time.Sleep(game.TickDuration - elapsed)
			continue
		}
		if time.Since(lastLogged) >= logInterval {
			lastLogged = time.Now()
			log.WithField("elapsed", elapsed).Debug("tick running late")
		}
	}
	log.Info("tick loop shutdown requested, exiting")
}
