package player

import (
	"github.com/behold-mycode/komari/core"
	"github.com/behold-mycode/komari/game"
)

// updateIdle picks up queued actions. Actions with a position kick off a
// movement; the coordinator hands control back to the action on arrival.
func updateIdle(ctx *core.Context, state *State) Player {
	curPos := *state.LastKnownPos
	return onAction(state, func(action Action) (Player, bool, bool) {
		switch action := action.(type) {
		case MoveAction:
			return moveToward(ctx, state, curPos, action.Position.Point(), action.Position.AllowAdjusting, false), false, true

		case KeyAction:
			if action.Position != nil {
				return moveToward(ctx, state, curPos, action.Position.Point(), action.Position.AllowAdjusting, false), false, true
			}
			if action.With == WithDoubleJump &&
				(action.Direction == DirectionAny || action.Direction == state.LastKnownDirection) {
				return DoubleJumping{
					Moving: newMoving(curPos, curPos, false, Intermediates{}),
					Forced: true,
				}, false, true
			}
			return newUseKeyFromKeyAction(ctx, action), false, true

		case AutoMobAction:
			dest := action.Position.Point()
			xDistance := game.AbsInt(dest.X - curPos.X)
			yDistance := game.AbsInt(dest.Y - curPos.Y)
			if next, terminal, handled := onAutoMobUseKeyAction(ctx, action, xDistance, yDistance); handled {
				return next, terminal, true
			}
			return moveToward(ctx, state, curPos, dest, false, true), false, true

		case SolveRuneAction:
			if idle := ctx.Minimap.Idle; idle != nil && idle.RunePos != nil {
				runePos := *idle.RunePos
				if game.AbsInt(runePos.X-curPos.X) > adjustingMediumThreshold ||
					game.AbsInt(runePos.Y-curPos.Y) > jumpThreshold {
					return moveToward(ctx, state, curPos, runePos, true, false), false, true
				}
			}
			return SolvingRune{}, false, true

		case PingPongAction:
			if action.Direction == PingPongLeft {
				state.LastKnownDirection = DirectionLeft
			} else {
				state.LastKnownDirection = DirectionRight
			}
			if !action.Bound.Contains(curPos) {
				return moveToward(ctx, state, curPos, action.Bound.Center(), false, false), false, true
			}
			return DoubleJumping{
				Moving: newMoving(curPos, curPos, false, Intermediates{}),
				Forced: true,
			}, false, true

		case FamiliarsSwapAction:
			return FamiliarsSwapping{Swappable: action}, false, true

		case PanicAction:
			return newPanicking(action.To), false, true

		default:
			return nil, false, false
		}
	}, func() Player {
		return Idle{}
	})
}

// moveToward starts a movement to dest, routed over detected platforms when
// the action allows platform pathing.
func moveToward(ctx *core.Context, state *State, cur, dest game.Point, exact bool, allowPathing bool) Player {
	if allowPathing && state.Config.AutoMobPlatformsPathing {
		if idle := ctx.Minimap.Idle; idle != nil && len(idle.Platforms) > 0 {
			intermediates := findIntermediatePoints(state, idle.Platforms, cur, dest, exact, true)
			if first, ok := intermediates.first(); ok {
				return MoveTo{Dest: first.Point, Exact: first.Exact, Intermediates: intermediates}
			}
		}
	}
	return MoveTo{Dest: dest, Exact: exact}
}
