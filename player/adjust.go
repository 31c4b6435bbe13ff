package player

import (
	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/core"
	"github.com/behold-mycode/komari/game"
)

const (
	// Exact destinations adjust from a single pixel off; others only from a
	// few pixels.
	adjustingShortThreshold  = 1
	adjustingMediumThreshold = 3

	// Ticks per nudge cycle of a short adjustment.
	adjustingShortTimeout = 3

	// Downward distance that turns an adjustment into a fall first.
	adjustingFallingThreshold = 8
)

// updateAdjusting walks the last few pixels to the destination. Medium
// distances hold the direction key; exact destinations tap it pixel by
// pixel.
func updateAdjusting(ctx *core.Context, state *State, a Adjusting) Player {
	curPos := *state.LastKnownPos
	moving := a.Moving

	if !moving.Timeout.Started {
		xDistance, _ := moving.xDistanceDirection(true, curPos)
		yDistance, yDirection := moving.yDistanceDirection(true, curPos)
		if !moving.isDestinationIntermediate() &&
			state.lastMovement != movementFalling &&
			state.IsStationary &&
			yDirection < 0 && yDistance >= adjustingFallingThreshold &&
			xDistance >= adjustingMediumThreshold {
			// Dropping first makes the remaining walk a straight line.
			state.useImmediateControlFlow = true
			return Falling{Moving: moving, Anchor: curPos, TimeoutOnComplete: true}
		}
	}

	moving, phase := nextMoving(moving, curPos, moveTimeout, AxisBoth)
	a.Moving = moving

	switch phase {
	case LifecycleStarted:
		state.setLastMovement(movementAdjusting)

	case LifecycleEnded:
		releaseDirectionKeys(ctx.Keys)
		return MoveTo{Dest: moving.Dest, Exact: moving.Exact, Intermediates: moving.Intermediates}

	case LifecycleUpdated:
		xDistance, xDirection := moving.xDistanceDirection(true, curPos)
		if xDistance >= state.doubleJumpThreshold(moving.isDestinationIntermediate()) {
			// Drifted too far, hand back to the coordinator.
			releaseDirectionKeys(ctx.Keys)
			state.useImmediateControlFlow = true
			return MoveTo{Dest: moving.Dest, Exact: moving.Exact, Intermediates: moving.Intermediates}
		}

		if a.AdjustTimeout.Started && moving.Timeout.Current > 0 {
			// A nudge cycle is in flight; keep the movement timeout from
			// expiring under it.
			moving = moving.withTimeoutCurrent(moving.Timeout.Current - 1)
		}

		var directionKey, oppositeKey bridge.KeyKind
		var direction ActionKeyDirection
		switch {
		case xDirection > 0:
			directionKey, oppositeKey, direction = bridge.KeyRight, bridge.KeyLeft, DirectionRight
		case xDirection < 0:
			directionKey, oppositeKey, direction = bridge.KeyLeft, bridge.KeyRight, DirectionLeft
		}

		switch {
		case directionKey == bridge.KeyNone:
			releaseDirectionKeys(ctx.Keys)
			moving = moving.withCompleted(true)

		case !state.Config.DisableAdjusting && xDistance >= adjustingMediumThreshold:
			_ = ctx.Keys.SendUp(oppositeKey)
			_ = ctx.Keys.SendDown(directionKey)
			state.LastKnownDirection = direction

		case moving.Exact && xDistance >= adjustingShortThreshold:
			timeout, adjustPhase := nextTimeout(a.AdjustTimeout, adjustingShortTimeout)
			a.AdjustTimeout = timeout
			switch adjustPhase {
			case LifecycleStarted:
				_ = ctx.Keys.SendUp(oppositeKey)
				_ = ctx.Keys.Send(directionKey)
				state.LastKnownDirection = direction
			case LifecycleEnded:
				a.AdjustTimeout = Timeout{}
			}

		default:
			releaseDirectionKeys(ctx.Keys)
			moving = moving.withCompleted(true)
		}
		a.Moving = moving
	}

	return onAction(state, func(action Action) (Player, bool, bool) {
		switch action := action.(type) {
		case AutoMobAction:
			if !moving.Completed {
				return nil, false, false
			}
			xDistance, _ := moving.xDistanceDirection(false, curPos)
			yDistance, _ := moving.yDistanceDirection(false, curPos)
			return onAutoMobUseKeyAction(ctx, action, xDistance, yDistance)

		case KeyAction:
			switch action.With {
			case WithDoubleJump:
				_, yDirection := moving.yDistanceDirection(false, curPos)
				if moving.Completed && yDirection <= 0 {
					if action.Direction == DirectionAny || action.Direction == state.LastKnownDirection {
						return DoubleJumping{
							Moving: newMoving(curPos, curPos, false, Intermediates{}),
							Forced: true,
						}, false, true
					}
					return newUseKeyFromKeyAction(ctx, action), false, true
				}
			case WithAny:
				yDistance, _ := moving.yDistanceDirection(false, curPos)
				if moving.Completed && yDistance <= 2 {
					return newUseKeyFromKeyAction(ctx, action), false, true
				}
			}
			return nil, false, false

		default:
			return nil, false, false
		}
	}, func() Player {
		final := a
		switch {
		case moving.Completed && moving.Exact && notYetExact(moving, curPos):
			// Overshot or undershot by a pixel; go for another nudge round.
			final.Moving = moving.withCompleted(false).withTimeoutCurrent(0)
		case moving.Completed:
			final.Moving = moving.withTimeoutCurrent(moveTimeout)
		}
		return final
	})
}

func notYetExact(moving Moving, curPos game.Point) bool {
	xDistance, _ := moving.xDistanceDirection(true, curPos)
	return xDistance >= adjustingShortThreshold
}
