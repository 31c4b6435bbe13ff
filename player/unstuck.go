package player

import (
	"github.com/sirupsen/logrus"

	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/core"
)

const (
	unstuckTimeout = moveTimeout

	// Screen-space distance from the minimap bottom inside which the player
	// is probably standing at a map edge, where walking blindly makes it
	// worse.
	unstuckYIgnoreThreshold = 18
)

// updateUnstucking frees a player that stopped making progress: it closes a
// dialog that may have swallowed input, walks toward the map's center and
// jumps. In gamba mode the position cannot be trusted, so the direction is
// random.
func updateUnstucking(ctx *core.Context, state *State, u Unstucking) Player {
	idle := ctx.Minimap.Idle
	if idle == nil {
		return Detecting{}
	}

	gamba := u.GambaMode || state.LastKnownPos == nil
	// The unstuck heuristics care how close the player is to the minimap's
	// bottom edge, so flip the y-up position.
	flippedY := 0
	if state.LastKnownPos != nil {
		flippedY = idle.BBox.Height - state.LastKnownPos.Y
	}

	timeout, phase := nextTimeout(u.Timeout, unstuckTimeout)
	u.Timeout = timeout

	switch phase {
	case LifecycleStarted:
		logrus.WithField("gamba", gamba).Debug("player attempting to unstuck")
		if !gamba && u.HasSettings == nil {
			has := ctx.DetectorMust().DetectESCSettings()
			u.HasSettings = &has
		}
		if (u.HasSettings != nil && *u.HasSettings) || (gamba && ctx.RNG.Bool(0.5)) {
			_ = ctx.Keys.Send(bridge.KeyEsc)
		}

		var toRight bool
		switch {
		case gamba:
			toRight = ctx.RNG.Bool(0.5)
		case flippedY <= unstuckYIgnoreThreshold:
			// Probably wedged at the map edge; jumping alone is safer.
			return u
		default:
			toRight = state.LastKnownPos.X <= idle.BBox.Width/2
		}
		if toRight {
			_ = ctx.Keys.SendDown(bridge.KeyRight)
			state.LastKnownDirection = DirectionRight
		} else {
			_ = ctx.Keys.SendDown(bridge.KeyLeft)
			state.LastKnownDirection = DirectionLeft
		}

	case LifecycleEnded:
		_ = ctx.Keys.SendUp(bridge.KeyRight)
		_ = ctx.Keys.SendUp(bridge.KeyLeft)
		return Detecting{}

	case LifecycleUpdated:
		if gamba || flippedY > unstuckYIgnoreThreshold {
			_ = ctx.Keys.Send(state.Config.JumpKey)
		}
	}
	return u
}
