package player

import (
	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/core"
	"github.com/behold-mycode/komari/game"
)

const (
	// Ticks a direction key is held to turn the player around.
	useKeyChangeDirectionTimeout = 3
	// Ticks between repeated presses of a multi-count action.
	useKeyPressInterval = 4
)

type useKeyStage int

const (
	useKeyPrecondition useKeyStage = iota
	useKeyChangingDirection
	useKeyUsing
	useKeyPostcondition
)

// newUseKeyFromKeyAction builds the UseKey state for a key action, resolving
// the random parts of its waits up front so the state itself stays
// deterministic.
func newUseKeyFromKeyAction(ctx *core.Context, action KeyAction) UseKey {
	count := action.Count
	if count == 0 {
		count = 1
	}
	return UseKey{
		Key:             action.Key,
		Link:            action.Link,
		Count:           count,
		Direction:       action.Direction,
		With:            action.With,
		WaitBeforeTicks: action.WaitBeforeTicks + randomExtraTicks(ctx, action.WaitBeforeRandomTicks),
		WaitAfterTicks:  action.WaitAfterTicks + randomExtraTicks(ctx, action.WaitAfterRandomTicks),
		Position:        action.Position,
	}
}

// newUseKeyFromAutoMobAction builds the UseKey state for an auto mob action.
// The mob was reached (or is close enough), so no position remains to travel
// to.
func newUseKeyFromAutoMobAction(ctx *core.Context, action AutoMobAction) UseKey {
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

func randomExtraTicks(ctx *core.Context, max uint32) uint32 {
	if max == 0 {
		return 0
	}
	return uint32(ctx.RNG.IntRange(0, int(max)+1))
}

func updateUseKey(ctx *core.Context, state *State, u UseKey) Player {
	switch u.Stage {
	case useKeyPrecondition:
		// A positioned action first walks to its spot; the coordinator hands
		// control back here once within the adjust tolerance.
		if u.Position != nil && state.LastKnownPos != nil {
			dest := u.Position.Point()
			xDistance := game.AbsInt(dest.X - state.LastKnownPos.X)
			if xDistance >= adjustingMediumThreshold ||
				(u.Position.AllowAdjusting && xDistance >= adjustingShortThreshold) {
				state.useImmediateControlFlow = true
				return MoveTo{Dest: dest, Exact: u.Position.AllowAdjusting}
			}
		}
		if u.With == WithStationary && !state.IsStationary {
			return u
		}
		if u.Direction != DirectionAny && u.Direction != state.LastKnownDirection {
			u.Stage = useKeyChangingDirection
		} else {
			u.Stage = useKeyUsing
		}
		u.Timeout = Timeout{}
		state.useImmediateControlFlow = true
		return u

	case useKeyChangingDirection:
		key := bridge.KeyLeft
		if u.Direction == DirectionRight {
			key = bridge.KeyRight
		}
		timeout, phase := nextTimeout(u.Timeout, useKeyChangeDirectionTimeout)
		u.Timeout = timeout
		switch phase {
		case LifecycleStarted:
			_ = ctx.Keys.SendDown(key)
		case LifecycleEnded:
			_ = ctx.Keys.SendUp(key)
			state.LastKnownDirection = u.Direction
			u.Stage = useKeyUsing
			u.Timeout = Timeout{}
			state.useImmediateControlFlow = true
		}
		return u

	case useKeyUsing:
		maxTimeout := u.WaitBeforeTicks + u.Count*useKeyPressInterval + 1
		timeout, phase := nextTimeout(u.Timeout, maxTimeout)
		u.Timeout = timeout
		if phase != LifecycleEnded &&
			timeout.Total >= u.WaitBeforeTicks &&
			(timeout.Total-u.WaitBeforeTicks)%useKeyPressInterval == 0 &&
			u.CurrentCount < u.Count {
			pressWithLink(ctx.Keys, u.Key, u.Link)
			u.CurrentCount++
		}
		if phase == LifecycleEnded || u.CurrentCount >= u.Count {
			u.Stage = useKeyPostcondition
			u.Timeout = Timeout{}
			state.useImmediateControlFlow = true
		}
		return u

	case useKeyPostcondition:
		if u.WaitAfterTicks > 0 {
			timeout, phase := nextTimeout(u.Timeout, u.WaitAfterTicks)
			u.Timeout = timeout
			if phase != LifecycleEnded {
				return u
			}
		}
		return onAction(state, func(Action) (Player, bool, bool) {
			return Idle{}, true, true
		}, func() Player {
			return Idle{}
		})

	default:
		return Idle{}
	}
}

// pressWithLink presses key together with its link key in the configured
// order.
func pressWithLink(keys bridge.KeySender, key bridge.KeyKind, link LinkKey) {
	switch link.Kind {
	case LinkBefore:
		_ = keys.Send(link.Key)
		_ = keys.Send(key)
	case LinkAtTheSame:
		_ = keys.SendDown(link.Key)
		_ = keys.SendDown(key)
		_ = keys.SendUp(key)
		_ = keys.SendUp(link.Key)
	case LinkAfter:
		_ = keys.Send(key)
		_ = keys.Send(link.Key)
	default:
		_ = keys.Send(key)
	}
}
