package player

import (
	"github.com/behold-mycode/komari/core"
)

// updateStalling waits out its timeout and then resumes a queued follow-up
// state, or reports a move action terminal.
func updateStalling(ctx *core.Context, state *State, s Stalling) Player {
	maxTimeout := s.MaxTimeout
	if maxTimeout == 0 {
		maxTimeout = 1
	}
	timeout, phase := nextTimeout(s.Timeout, maxTimeout)
	s.Timeout = timeout
	if phase != LifecycleEnded {
		return s
	}

	if resume := state.stallingTimeoutState; resume != nil {
		state.stallingTimeoutState = nil
		state.useImmediateControlFlow = true
		return resume
	}

	return onAction(state, func(action Action) (Player, bool, bool) {
		if _, ok := action.(MoveAction); ok {
			return Idle{}, true, true
		}
		return nil, false, false
	}, func() Player {
		return Idle{}
	})
}
