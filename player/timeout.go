package player

import (
	"github.com/behold-mycode/komari/assert"
	"github.com/behold-mycode/komari/game"
)

// ChangeAxis is the axis along which a position change resets a movement
// timeout.
type ChangeAxis int

const (
	// AxisHorizontal detects a change in the x direction.
	AxisHorizontal ChangeAxis = iota
	// AxisVertical detects a change in the y direction.
	AxisVertical
	// AxisBoth detects a change in either direction.
	AxisBoth
)

// Lifecycle is the phase a Timeout is in after advancing it.
type Lifecycle int

const (
	// LifecycleStarted fires exactly once when the timeout begins counting.
	LifecycleStarted Lifecycle = iota
	// LifecycleEnded fires once Current reached the maximum. It does not
	// auto-reset; callers construct a fresh Timeout to restart the wait.
	LifecycleEnded
	// LifecycleUpdated fires on every counted tick in between.
	LifecycleUpdated
)

// Timeout counts ticks until a sub-state gives up waiting.
//
// Most contextual states can be timed out as there is no guarantee an action
// will be performed or a state can be transitioned. The timeout retries or
// abandons such state, and a few states perform their action only after
// timing out.
type Timeout struct {
	// Current is the current timeout tick. In the context of movement it is
	// reset whenever the tracked position changes.
	Current uint32
	// Total is the total number of passed ticks. Unlike Current it is never
	// reset, which is what delays up-jump spamming and releases the down
	// key early while falling.
	Total uint32
	// Started indicates whether the timeout has started.
	Started bool
}

// nextTimeout advances a Timeout against maxTimeout and returns the new value
// together with its lifecycle phase. On LifecycleEnded the value is returned
// unchanged.
func nextTimeout(timeout Timeout, maxTimeout uint32) (Timeout, Lifecycle) {
	assert.IsTrue(maxTimeout > 0, "maxTimeout must be positive")
	assert.IsTrue(timeout.Started || timeout == Timeout{}, "started timeout in non-default state")
	assert.IsTrue(timeout.Current <= maxTimeout, "current timeout tick larger than maxTimeout")

	switch {
	case !timeout.Started:
		timeout.Started = true
		return timeout, LifecycleStarted
	case timeout.Current >= maxTimeout:
		return timeout, LifecycleEnded
	default:
		timeout.Current++
		timeout.Total++
		return timeout, LifecycleUpdated
	}
}

// nextMoving advances a Moving value, resetting its timeout's Current (but
// not Total) whenever curPos differs from the previously tracked position
// along axis. This keeps a genuinely progressing movement from timing out
// while still catching in-place stalls. The tracked position is overwritten
// with curPos afterwards.
func nextMoving(moving Moving, curPos game.Point, maxTimeout uint32, axis ChangeAxis) (Moving, Lifecycle) {
	if moving.Timeout.Current < maxTimeout {
		prev := moving.Pos
		moved := false
		switch axis {
		case AxisHorizontal:
			moved = curPos.X != prev.X
		case AxisVertical:
			moved = curPos.Y != prev.Y
		case AxisBoth:
			moved = curPos.X != prev.X || curPos.Y != prev.Y
		}
		if moved {
			moving.Timeout.Current = 0
		}
	}
	moving.Pos = curPos

	timeout, phase := nextTimeout(moving.Timeout, maxTimeout)
	moving.Timeout = timeout
	return moving, phase
}
