package player

import (
	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/core"
)

const (
	// Ticks before spamming the jump key to trigger the up jump; short hops
	// wait longer so the spam does not double-trigger.
	upJumpSpamDelay     = 7
	upJumpSoftSpamDelay = 12
	softUpJumpThreshold = 16

	upJumpTimeout = 8

	// Upward velocity confirming the up jump actually launched.
	upJumpedYVelocityThreshold = 1.3

	// Horizontal velocity below which the up jump may start.
	upJumpXNearStationary = 0.28

	// Mages teleport up instead for gaps this small.
	teleportUpJumpThreshold = 14
)

// updateUpJumping climbs a medium gap with the class up jump. Classes
// without a dedicated key hold up and spam jump; classes with one press it
// once.
func updateUpJumping(ctx *core.Context, state *State, u UpJumping) Player {
	curPos := *state.LastKnownPos
	moving := u.Moving
	yDistance, _ := moving.yDistanceDirection(true, curPos)

	if !moving.Timeout.Started {
		if state.Velocity.X() > upJumpXNearStationary {
			// Still sliding; an up jump now would drift off the platform.
			return u
		}
		if idle := ctx.Minimap.Idle; idle != nil && idle.IsPositionInsidePortal(curPos) {
			// Jumping inside a portal would take it.
			state.clearActionCompleted()
			return Idle{}
		}
	}

	moving, phase := nextMoving(moving, curPos, upJumpTimeout, AxisVertical)
	u.Moving = moving

	upJumpKey := state.Config.UpJumpKey
	hasUpJumpKey := state.Config.hasUpJumpKey()
	hasTeleport := state.Config.hasTeleportKey()

	switch phase {
	case LifecycleStarted:
		state.setLastMovement(movementUpJumping)
		u.SpamDelay = upJumpSpamDelay
		if yDistance <= softUpJumpThreshold {
			u.SpamDelay = upJumpSoftSpamDelay
		}
		if upJumpKey != bridge.KeyUp {
			_ = ctx.Keys.SendDown(bridge.KeyUp)
		}
		pressJump := false
		switch {
		case !hasUpJumpKey:
			pressJump = true
		case hasTeleport:
			// Close gaps teleport up directly; the jump would overshoot.
			pressJump = yDistance > teleportUpJumpThreshold
		case upJumpKey == bridge.KeyUp:
			pressJump = true
		}
		if pressJump {
			_ = ctx.Keys.Send(state.Config.JumpKey)
		}

	case LifecycleEnded:
		_ = ctx.Keys.SendUp(bridge.KeyUp)
		return MoveTo{Dest: moving.Dest, Exact: moving.Exact, Intermediates: moving.Intermediates}

	case LifecycleUpdated:
		switch {
		case moving.Completed:
			_ = ctx.Keys.SendUp(bridge.KeyUp)

		case hasUpJumpKey && upJumpKey != bridge.KeyUp:
			if !hasTeleport || yDistance <= teleportUpJumpThreshold || moving.Timeout.Total >= upJumpSpamDelay {
				_ = ctx.Keys.Send(upJumpKey)
				moving = moving.withCompleted(true)
			}

		default:
			if state.Velocity.Y() <= upJumpedYVelocityThreshold {
				// Not launched yet; spam to catch the double-press window.
				if moving.Timeout.Total >= u.SpamDelay {
					key := state.Config.JumpKey
					if upJumpKey == bridge.KeyUp {
						key = bridge.KeyUp
					}
					_ = ctx.Keys.Send(key)
				}
			} else {
				// Launching upward, the jump registered.
				moving = moving.withCompleted(true)
			}
		}
		u.Moving = moving
	}

	return onAction(state, func(action Action) (Player, bool, bool) {
		switch action := action.(type) {
		case AutoMobAction:
			if !moving.Completed {
				return nil, false, false
			}
			_, yDirection := moving.yDistanceDirection(true, curPos)
			if moving.isDestinationIntermediate() && yDirection <= 0 {
				_ = ctx.Keys.SendUp(bridge.KeyUp)
				return MoveTo{Dest: moving.Dest, Exact: moving.Exact, Intermediates: moving.Intermediates}, false, true
			}
			xDistance, _ := moving.xDistanceDirection(false, curPos)
			yDistanceFinal, _ := moving.yDistanceDirection(false, curPos)
			return onAutoMobUseKeyAction(ctx, action, xDistance, yDistanceFinal)

		case KeyAction:
			if action.With != WithAny {
				return nil, false, false
			}
			_, yDirection := moving.yDistanceDirection(false, curPos)
			if moving.Completed && yDirection <= 0 {
				return newUseKeyFromKeyAction(ctx, action), false, true
			}
			return nil, false, false

		case PingPongAction:
			if moving.Completed && ctx.RNG.PerlinBool(curPos.X, curPos.Y, ctx.Tick, 0.7) {
				next, terminal := onPingPongDoubleJumpAction(ctx, curPos, action.Bound, action.Direction)
				return next, terminal, true
			}
			return nil, false, false

		default:
			return nil, false, false
		}
	}, func() Player {
		return u
	})
}
