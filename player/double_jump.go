package player

import (
	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/core"
	"github.com/behold-mycode/komari/game"
)

const (
	// Horizontal distance from which a double jump beats walking. Auto mob
	// movement uses the tighter threshold to land closer to the target.
	doubleJumpThreshold        = 25
	doubleJumpAutoMobThreshold = 15

	// Proximity to the final destination inside which a mid-flight key
	// action may fire.
	doubleJumpUseKeyXThreshold = doubleJumpThreshold
	doubleJumpUseKeyYThreshold = 10

	doubleJumpTimeout       = 5
	doubleJumpForcedTimeout = 8

	// Ticks between repeated jump presses while airborne.
	doubleJumpCooldownTimeout = 5

	// Horizontal proximity that chains a completed double jump into a
	// grapple when the destination is above.
	doubleJumpGrapplingXThreshold = 4

	// Jump presses only register below this horizontal velocity.
	doubleJumpXVelocityThreshold = 1.0

	// Near-stationary velocities for delayed double jumps.
	doubleJumpXNearStationary = 0.75
	doubleJumpYNearStationary = 0.4

	// Downward distance that turns the double jump into a fall first.
	doubleJumpFallingThreshold = 8

	// Vertical distance from the ping pong bound's middle below which the
	// follow-up keeps attacking in place instead of randomizing up or down.
	pingPongIgnoreRandomizeYThreshold = 9

	pingPongRandomizeUpChance   = 0.35
	pingPongRandomizeDownChance = 0.25
)

// updateDoubleJumping covers horizontal ground fast. A normal double jump
// keeps pressing while far from the destination; a forced one performs
// exactly one jump in the faced direction for double-jump-combined actions.
func updateDoubleJumping(ctx *core.Context, state *State, d DoubleJumping) Player {
	curPos := *state.LastKnownPos
	moving := d.Moving
	ignoreGrappling := d.Forced || state.shouldDisableGrappling()

	if !moving.Timeout.Started {
		if d.RequireNearStationary &&
			(state.Velocity.X() > doubleJumpXNearStationary || state.Velocity.Y() > doubleJumpYNearStationary) {
			return d
		}
		yDistance, yDirection := moving.yDistanceDirection(true, curPos)
		if !moving.isDestinationIntermediate() &&
			!d.Forced &&
			!state.Config.hasTeleportKey() &&
			state.lastMovement != movementFalling &&
			state.IsStationary &&
			yDirection < 0 && yDistance >= doubleJumpFallingThreshold {
			// Fall below the destination first so the jump lands on it
			// instead of flying past above.
			state.useImmediateControlFlow = true
			return Falling{Moving: moving, Anchor: curPos, TimeoutOnComplete: true}
		}
	}

	maxTimeout := uint32(doubleJumpTimeout)
	axis := AxisBoth
	if d.Forced {
		maxTimeout = doubleJumpForcedTimeout
		axis = AxisHorizontal
	}
	moving, phase := nextMoving(moving, curPos, maxTimeout, axis)
	d.Moving = moving

	switch phase {
	case LifecycleStarted:
		state.setLastMovement(movementDoubleJumping)
		state.useImmediateControlFlow = true
		return d

	case LifecycleEnded:
		releaseDirectionKeys(ctx.Keys)
		return MoveTo{Dest: moving.Dest, Exact: moving.Exact, Intermediates: moving.Intermediates}

	case LifecycleUpdated:
		if !moving.Completed {
			xDistance, xDirection := moving.xDistanceDirection(true, curPos)

			// A forced jump goes wherever the player already faces; only
			// mages steer it, since the teleport needs a direction held.
			if !d.Forced || state.Config.hasTeleportKey() {
				directionKey := bridge.KeyNone
				oppositeKey := bridge.KeyNone
				direction := DirectionAny
				switch {
				case xDirection > 0:
					directionKey, oppositeKey, direction = bridge.KeyRight, bridge.KeyLeft, DirectionRight
				case xDirection < 0:
					directionKey, oppositeKey, direction = bridge.KeyLeft, bridge.KeyRight, DirectionLeft
				case d.Forced && state.Config.hasTeleportKey():
					// TODO: the tracked direction can be stale after knockback,
					// teleporting the wrong way.
					switch state.LastKnownDirection {
					case DirectionLeft:
						directionKey, oppositeKey = bridge.KeyLeft, bridge.KeyRight
					case DirectionRight:
						directionKey, oppositeKey = bridge.KeyRight, bridge.KeyLeft
					}
				}
				if directionKey != bridge.KeyNone {
					_ = ctx.Keys.SendDown(directionKey)
					_ = ctx.Keys.SendUp(oppositeKey)
					if direction != DirectionAny {
						state.LastKnownDirection = direction
					}
				}
			}

			jumpKey := state.Config.JumpKey
			if state.Config.hasTeleportKey() {
				jumpKey = state.Config.TeleportKey
			}
			canContinue := !d.Forced && xDistance >= state.doubleJumpThreshold(moving.isDestinationIntermediate())
			canPress := d.Forced && state.Velocity.X() <= doubleJumpXVelocityThreshold
			if canContinue || canPress {
				if !d.CooldownTimeout.Started && state.Velocity.X() <= doubleJumpXVelocityThreshold {
					_ = ctx.Keys.Send(jumpKey)
					timeout, _ := nextTimeout(Timeout{}, doubleJumpCooldownTimeout)
					d.CooldownTimeout = timeout
				} else if d.CooldownTimeout.Started {
					timeout, cooldownPhase := nextTimeout(d.CooldownTimeout, doubleJumpCooldownTimeout)
					if cooldownPhase == LifecycleEnded {
						d.CooldownTimeout = Timeout{}
					} else {
						d.CooldownTimeout = timeout
					}
				}
			} else {
				releaseDirectionKeys(ctx.Keys)
				moving = moving.withCompleted(true)
				d.Moving = moving
			}
		}
	}

	return onAction(state, func(action Action) (Player, bool, bool) {
		switch action := action.(type) {
		case PingPongAction:
			return onPingPongUseKeyAfterDoubleJump(ctx, state, moving, curPos, action)

		case AutoMobAction:
			xDistance, _ := moving.xDistanceDirection(false, curPos)
			yDistance, _ := moving.yDistanceDirection(false, curPos)
			return onAutoMobUseKeyAction(ctx, action, xDistance, yDistance)

		case KeyAction:
			if action.With != WithDoubleJump && action.With != WithAny {
				return nil, false, false
			}
			xDistance, _ := moving.xDistanceDirection(false, curPos)
			yDistance, _ := moving.yDistanceDirection(false, curPos)
			inRange := !moving.Exact &&
				xDistance <= doubleJumpUseKeyXThreshold &&
				yDistance <= doubleJumpUseKeyYThreshold
			if moving.Completed && (d.Forced || inRange) {
				return newUseKeyFromKeyAction(ctx, action), false, true
			}
			return nil, false, false

		default:
			return nil, false, false
		}
	}, func() Player {
		if !ignoreGrappling && moving.Completed {
			xDistance, _ := moving.xDistanceDirection(true, curPos)
			_, yDirection := moving.yDistanceDirection(true, curPos)
			if xDistance <= doubleJumpGrapplingXThreshold && yDirection > 0 {
				state.useImmediateControlFlow = true
				return Grappling{Moving: moving.withCompleted(false).withTimeout(Timeout{})}
			}
		}
		final := d
		if moving.Completed {
			final.Moving = moving.withTimeoutCurrent(maxTimeout)
		}
		return final
	})
}

// onPingPongUseKeyAfterDoubleJump fires the ping pong key mid flight. A
// player outside the vertical bound climbs or falls back into it first; one
// drifted toward an edge inside the bound has a chance to detour back toward
// the opposite edge.
func onPingPongUseKeyAfterDoubleJump(
	ctx *core.Context,
	state *State,
	moving Moving,
	curPos game.Point,
	action PingPongAction,
) (Player, bool, bool) {
	hitEdge := (action.Direction == PingPongLeft && curPos.X <= action.Bound.X) ||
		(action.Direction == PingPongRight && curPos.X >= action.Bound.X+action.Bound.Width)
	if hitEdge {
		return Idle{}, true, true
	}
	if !moving.Completed {
		return nil, false, false
	}
	releaseDirectionKeys(ctx.Keys)

	top := action.Bound.Y + action.Bound.Height
	climb := func() (Player, bool, bool) {
		up := newMoving(curPos, game.Point{X: curPos.X, Y: top}, false, Intermediates{})
		if state.Config.hasGrapplingKey() {
			return Grappling{Moving: up}, false, true
		}
		return UpJumping{Moving: up}, false, true
	}
	fall := func() (Player, bool, bool) {
		down := newMoving(curPos, game.Point{X: curPos.X, Y: action.Bound.Y}, false, Intermediates{})
		return Falling{Moving: down, Anchor: curPos, TimeoutOnComplete: true}, false, true
	}

	// Outside the vertical bound the player must get back in before attacking.
	if curPos.Y < action.Bound.Y {
		return climb()
	}
	if curPos.Y > top {
		return fall()
	}

	mid := action.Bound.Center().Y
	if game.AbsInt(curPos.Y-mid) >= pingPongIgnoreRandomizeYThreshold {
		switch {
		case curPos.Y < mid && ctx.RNG.PerlinBool(curPos.X, curPos.Y, ctx.Tick, pingPongRandomizeUpChance):
			return climb()
		// Offset the hash coordinate so the down draw is independent of the
		// up draw within the same tick.
		case curPos.Y > mid && ctx.RNG.PerlinBool(curPos.X, curPos.Y+1, ctx.Tick, pingPongRandomizeDownChance):
			return fall()
		}
	}
	return newUseKeyFromPingPongAction(ctx, action), false, true
}

func newUseKeyFromPingPongAction(ctx *core.Context, action PingPongAction) UseKey {
	count := action.Count
	if count == 0 {
		count = 1
	}
	return UseKey{
		Key:             action.Key,
		Link:            action.Link,
		Count:           count,
		Direction:       DirectionAny,
		With:            action.With,
		WaitBeforeTicks: action.WaitBeforeTicks,
		WaitAfterTicks:  action.WaitAfterTicks,
	}
}
