package player

import (
	"github.com/sirupsen/logrus"

	"github.com/behold-mycode/komari/core"
	"github.com/behold-mycode/komari/detect"
)

const (
	// Detection retries before giving up on the rune entirely.
	solveRuneMaxRetry = 3

	// Ticks the arrow region has to show up after interacting with the rune.
	runeFindRegionTimeout = 35
	// Ticks between retries; the minigame needs a moment before it can be
	// interacted with again.
	runeFindRegionCooldown = 125

	// Ticks the full arrow sequence has to calibrate.
	runeSolvingTimeout = 150

	// Ticks between the four arrow presses.
	runePressInterval = 8

	// Window after solving during which the rune buff should appear.
	runeValidateTimeoutTicks = 300
)

// SolvingRuneStage is the phase of the rune minigame.
type SolvingRuneStage int

const (
	// RunePrecondition waits for the player to settle with no keys held.
	RunePrecondition SolvingRuneStage = iota
	// RuneFindRegion interacts with the rune and locates the arrow region.
	RuneFindRegion
	// RuneSolving calibrates the arrows until all four are recognized.
	RuneSolving
	// RunePressKeys presses the recognized arrows one by one.
	RunePressKeys
)

// updateSolvingRune runs the rune minigame: interact, recognize the four
// arrows, press them. Failed recognitions retry a bounded number of times.
func updateSolvingRune(ctx *core.Context, state *State, r SolvingRune) Player {
	if _, ok := state.activeAction().(SolveRuneAction); !ok {
		return Idle{}
	}

	switch r.Stage {
	case RunePrecondition:
		if !state.IsStationary || !ctx.Keys.AllKeysCleared() {
			return r
		}
		r.Stage = RuneFindRegion
		r.Timeout = Timeout{}
		state.useImmediateControlFlow = true
		return r

	case RuneFindRegion:
		if r.Cooldown != nil {
			timeout, phase := nextTimeout(*r.Cooldown, runeFindRegionCooldown)
			if phase == LifecycleEnded {
				r.Cooldown = nil
				r.Timeout = Timeout{}
			} else {
				r.Cooldown = &timeout
			}
			return r
		}
		timeout, phase := nextTimeout(r.Timeout, runeFindRegionTimeout)
		r.Timeout = timeout
		switch phase {
		case LifecycleStarted:
			_ = ctx.Keys.Send(state.Config.InteractKey)
		case LifecycleEnded:
			result, err := ctx.DetectorMust().DetectRuneArrows(r.Calibrating)
			if err != nil {
				return r.retryOrComplete(state)
			}
			r.Calibrating = result.Calibrating
			r.Timeout = Timeout{}
			if result.Complete {
				r.Keys = result.Keys
				r.Stage = RunePressKeys
			} else {
				r.Stage = RuneSolving
			}
		}
		return r

	case RuneSolving:
		timeout, phase := nextTimeout(r.Timeout, runeSolvingTimeout)
		r.Timeout = timeout
		if phase == LifecycleEnded {
			return r.retryOrComplete(state)
		}
		result, err := ctx.DetectorMust().DetectRuneArrows(r.Calibrating)
		if err != nil {
			return r.retryOrComplete(state)
		}
		r.Calibrating = result.Calibrating
		if result.Complete {
			r.Keys = result.Keys
			r.Stage = RunePressKeys
			r.Timeout = Timeout{}
		}
		return r

	case RunePressKeys:
		timeout, phase := nextTimeout(r.Timeout, runePressInterval)
		r.Timeout = timeout
		if phase != LifecycleEnded {
			return r
		}
		_ = ctx.Keys.Send(r.Keys[r.KeyIndex])
		r.KeyIndex++
		r.Timeout = Timeout{}
		if r.KeyIndex < len(r.Keys) {
			return r
		}
		logrus.WithField("keys", r.Keys).Info("rune arrows pressed")
		state.SetRuneValidateTimeout()
		return solvingRuneTerminal(state)

	default:
		return Idle{}
	}
}

// retryOrComplete restarts recognition with a cooldown, or abandons the rune
// once out of retries.
func (r SolvingRune) retryOrComplete(state *State) Player {
	r.RetryCount++
	if r.RetryCount >= solveRuneMaxRetry {
		logrus.WithField("retries", r.RetryCount).Warn("rune could not be solved, giving up")
		return solvingRuneTerminal(state)
	}
	cooldown := Timeout{}
	r.Cooldown = &cooldown
	r.Timeout = Timeout{}
	r.Calibrating = detect.ArrowsCalibrating{}
	r.Stage = RuneFindRegion
	return r
}

func solvingRuneTerminal(state *State) Player {
	return onAction(state, func(action Action) (Player, bool, bool) {
		if _, ok := action.(SolveRuneAction); ok {
			return Idle{}, true, true
		}
		return nil, false, false
	}, func() Player {
		return Idle{}
	})
}
