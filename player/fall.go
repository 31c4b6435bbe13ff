package player

import (
	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/core"
)

const (
	// Downward distance from which dropping beats staying put. Movements
	// outside auto mob and waypoints tolerate a little more.
	fallingThreshold       = 4
	fallingNormalThreshold = 8

	// Proximity below which a completed fall may fire a key action.
	fallingToUseKeyThreshold = 5

	// Tick at which the held down key is released; holding longer would
	// drop through a second platform.
	fallingStopDownKeyTick = 3

	fallingTimeout = 8

	// Mages teleport down for short drops.
	teleportFallThreshold = 15
)

// updateFalling drops below the current platform by pressing down plus jump.
// The fall counts as complete once the player is below the anchor where it
// started.
func updateFalling(ctx *core.Context, state *State, f Falling) Player {
	curPos := *state.LastKnownPos
	moving := f.Moving

	if !moving.Timeout.Started {
		if !state.IsStationary {
			return f
		}
		_, yDirection := moving.yDistanceDirection(true, curPos)
		if yDirection >= 0 {
			// Destination is no longer below.
			state.useImmediateControlFlow = true
			return MoveTo{Dest: moving.Dest, Exact: moving.Exact, Intermediates: moving.Intermediates}
		}
	}

	moving, phase := nextMoving(moving, curPos, fallingTimeout, AxisVertical)
	f.Moving = moving

	switch phase {
	case LifecycleStarted:
		state.setLastMovement(movementFalling)
		yDistance, _ := moving.yDistanceDirection(true, curPos)
		_ = ctx.Keys.SendDown(bridge.KeyDown)
		if state.Config.hasTeleportKey() && yDistance < teleportFallThreshold {
			_ = ctx.Keys.Send(state.Config.TeleportKey)
		} else {
			_ = ctx.Keys.Send(state.Config.JumpKey)
		}

	case LifecycleEnded:
		_ = ctx.Keys.SendUp(bridge.KeyDown)
		return MoveTo{Dest: moving.Dest, Exact: moving.Exact, Intermediates: moving.Intermediates}

	case LifecycleUpdated:
		if moving.Timeout.Total == fallingStopDownKeyTick {
			_ = ctx.Keys.SendUp(bridge.KeyDown)
		}
		if !moving.Completed && curPos.Y < f.Anchor.Y {
			moving = moving.withCompleted(true)
		}
		if moving.Completed && f.TimeoutOnComplete {
			moving = moving.withTimeoutCurrent(fallingTimeout)
		}
		f.Moving = moving
	}

	return onAction(state, func(action Action) (Player, bool, bool) {
		switch action := action.(type) {
		case AutoMobAction:
			_, yDirection := moving.yDistanceDirection(true, curPos)
			if moving.isDestinationIntermediate() && moving.Completed && yDirection >= 0 {
				_ = ctx.Keys.SendUp(bridge.KeyDown)
				return MoveTo{Dest: moving.Dest, Exact: moving.Exact, Intermediates: moving.Intermediates}, false, true
			}
			if state.Config.hasTeleportKey() && !moving.Completed {
				return nil, false, false
			}
			xDistance, _ := moving.xDistanceDirection(false, curPos)
			yDistance, _ := moving.yDistanceDirection(false, curPos)
			return onAutoMobUseKeyAction(ctx, action, xDistance, yDistance)

		case KeyAction:
			if action.With != WithAny {
				return nil, false, false
			}
			yDistance, _ := moving.yDistanceDirection(false, curPos)
			if !state.Config.hasTeleportKey() && moving.Completed && yDistance < fallingToUseKeyThreshold {
				return newUseKeyFromKeyAction(ctx, action), false, true
			}
			return nil, false, false

		default:
			return nil, false, false
		}
	}, func() Player {
		return f
	})
}
