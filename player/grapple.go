package player

import (
	"github.com/behold-mycode/komari/assert"
	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/core"
	"github.com/behold-mycode/komari/game"
)

const (
	// Upward distance from which grappling beats up jumping, and the tallest
	// gap a single grapple can climb.
	grapplingThreshold    = 24
	grapplingMaxThreshold = 41

	// A grapple takes long; the pull itself must not be treated as a stall.
	grapplingTimeout = moveTimeout * 8

	// Ticks after the stopping press before the state force-ends.
	grapplingStoppingTimeout = 8

	// Base remaining distance at which the pull is cancelled; grows with the
	// current upward velocity so the cancel lands on the platform.
	grapplingStoppingThreshold = 3
)

func grapplingStoppingAt(yVelocity float32) int {
	return game.CeilInt32(grapplingStoppingThreshold + 1.1*yVelocity)
}

// updateGrappling climbs with the grappling skill and cancels the pull right
// before overshooting the destination.
func updateGrappling(ctx *core.Context, state *State, g Grappling) Player {
	key := state.Config.GrapplingKey
	assert.IsTrue(key != bridge.KeyNone, "grappling without a bound key")

	curPos := *state.LastKnownPos
	xChanged := curPos.X != g.Moving.Pos.X
	moving, phase := nextMoving(g.Moving, curPos, grapplingTimeout, AxisVertical)
	g.Moving = moving

	switch phase {
	case LifecycleStarted:
		state.setLastMovement(movementGrappling)
		_ = ctx.Keys.Send(key)

	case LifecycleEnded:
		return MoveTo{Dest: moving.Dest, Exact: moving.Exact, Intermediates: moving.Intermediates}

	case LifecycleUpdated:
		yDistance, yDirection := moving.yDistanceDirection(true, curPos)
		switch {
		case moving.Timeout.Current >= moveTimeout && xChanged:
			// Still drifting horizontally: the hook never attached, likely
			// thrown mid double jump. Give up.
			moving = moving.withCompleted(true).withTimeoutCurrent(grapplingTimeout)

		case !moving.Completed && (yDirection <= 0 || yDistance <= grapplingStoppingAt(state.Velocity.Y())):
			_ = ctx.Keys.Send(key)
			moving = moving.withCompleted(true)

		case moving.Completed && moving.Timeout.Current >= grapplingStoppingTimeout:
			moving = moving.withTimeoutCurrent(grapplingTimeout)
		}
		g.Moving = moving
	}

	return onAction(state, func(action Action) (Player, bool, bool) {
		switch action := action.(type) {
		case AutoMobAction:
			if !moving.Completed {
				return nil, false, false
			}
			if moving.isDestinationIntermediate() {
				return MoveTo{Dest: moving.Dest, Exact: moving.Exact, Intermediates: moving.Intermediates}, false, true
			}
			xDistance, _ := moving.xDistanceDirection(false, curPos)
			yDistance, _ := moving.yDistanceDirection(false, curPos)
			return onAutoMobUseKeyAction(ctx, action, xDistance, yDistance)

		case PingPongAction:
			if curPos.Y >= action.Bound.Y && ctx.RNG.PerlinBool(curPos.X, curPos.Y, ctx.Tick, 0.7) {
				next, terminal := onPingPongDoubleJumpAction(ctx, curPos, action.Bound, action.Direction)
				return next, terminal, true
			}
			return nil, false, false

		default:
			return nil, false, false
		}
	}, func() Player {
		return g
	})
}
