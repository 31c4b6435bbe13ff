package player

import (
	"github.com/behold-mycode/komari/core"
)

const (
	// Upward distance coverable by a plain jump.
	jumpThreshold = 7

	jumpTimeout = 8
)

// updateJumping hops onto a platform slightly above.
func updateJumping(ctx *core.Context, state *State, j Jumping) Player {
	curPos := *state.LastKnownPos
	moving, phase := nextMoving(j.Moving, curPos, jumpTimeout, AxisVertical)
	j.Moving = moving

	switch phase {
	case LifecycleStarted:
		state.setLastMovement(movementJumping)
		_ = ctx.Keys.Send(state.Config.JumpKey)
	case LifecycleEnded:
		return MoveTo{Dest: moving.Dest, Exact: moving.Exact, Intermediates: moving.Intermediates}
	}
	return j
}
