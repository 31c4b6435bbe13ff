package player

import (
	"github.com/sirupsen/logrus"

	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/core"
)

// PanicStage is the phase of a panic escape.
type PanicStage int

const (
	// PanicChangingChannel navigates the channel menu to another channel.
	PanicChangingChannel PanicStage = iota
	// PanicGoingToTown uses the town guide to leave the map.
	PanicGoingToTown
	// PanicCompleting waits for the destination to load and verifies the
	// escape worked.
	PanicCompleting
)

const (
	panicMaxRetry = 4

	// Channel menu pacing: the menu takes a while to open the first time,
	// retries are quicker.
	panicChannelTimeout      = 220
	panicChannelRightAt      = 170
	panicChannelEnterAt      = 200
	panicChannelRetryTimeout = 50
	panicChannelRetryRightAt = 15
	panicChannelRetryEnterAt = 30

	// Town guide pacing.
	panicTownTimeout     = 50
	panicTownMenuCheckAt = 30

	// Ticks the channel load screen gets before checking the result.
	panicCompletingTimeout = 245
)

func newPanicking(to PanicTo) Panicking {
	stage := PanicGoingToTown
	if to == PanicToChannel {
		stage = PanicChangingChannel
	}
	return Panicking{Stage: stage, To: to}
}

// updatePanicking escapes the current map when something is off, either to
// town or to another channel. Changing channel re-runs until no other player
// shares the map.
func updatePanicking(ctx *core.Context, state *State, p Panicking) Player {
	if _, ok := state.activeAction().(PanicAction); !ok {
		return Idle{}
	}

	switch p.Stage {
	case PanicChangingChannel:
		maxTimeout := uint32(panicChannelTimeout)
		rightAt := uint32(panicChannelRightAt)
		enterAt := uint32(panicChannelEnterAt)
		if p.RetryCount > 0 {
			maxTimeout = panicChannelRetryTimeout
			rightAt = panicChannelRetryRightAt
			enterAt = panicChannelRetryEnterAt
		}
		timeout, phase := nextTimeout(p.Timeout, maxTimeout)
		p.Timeout = timeout
		switch phase {
		case LifecycleStarted:
			if ctx.Detector == nil || !ctx.Detector.DetectChangeChannelMenu() {
				_ = ctx.Keys.Send(state.Config.ChangeChannelKey)
			}
		case LifecycleUpdated:
			if timeout.Current == rightAt {
				_ = ctx.Keys.Send(bridge.KeyRight)
			}
			if timeout.Current == enterAt {
				_ = ctx.Keys.Send(bridge.KeyEnter)
			}
		case LifecycleEnded:
			if ctx.Minimap.Idle != nil {
				// Still on the same map; the menu probably never opened.
				p.RetryCount++
				if p.RetryCount >= panicMaxRetry {
					logrus.Warn("changing channel failed, giving up")
					p.Stage = PanicCompleting
					p.Completed = true
				}
				p.Timeout = Timeout{}
			} else {
				p.Stage = PanicCompleting
				p.Timeout = Timeout{}
			}
		}
		return p

	case PanicGoingToTown:
		timeout, phase := nextTimeout(p.Timeout, panicTownTimeout)
		p.Timeout = timeout
		switch phase {
		case LifecycleStarted:
			if ctx.Minimap.Idle == nil {
				// Already loading somewhere else.
				p.Stage = PanicCompleting
				p.Timeout = Timeout{}
				return p
			}
			if !ctx.DetectorMust().DetectGuideMenu() {
				_ = ctx.Keys.Send(state.Config.MapleGuideKey)
			}
		case LifecycleUpdated:
			if timeout.Current == panicTownMenuCheckAt && !ctx.DetectorMust().DetectGuideMenu() {
				_ = ctx.Keys.Send(state.Config.MapleGuideKey)
			}
		case LifecycleEnded:
			if ctx.DetectorMust().DetectGuideMenu() {
				towns := ctx.DetectorMust().DetectGuideTowns()
				if i := ctx.RNG.ChooseIndex(len(towns)); i >= 0 {
					center := towns[i].Center()
					_ = ctx.Keys.SendMouse(center.X, center.Y, bridge.MouseClick)
					_ = ctx.Keys.Send(bridge.KeyEnter)
				}
				p.Stage = PanicCompleting
				p.Completed = true
				p.Timeout = Timeout{}
			} else {
				p.RetryCount++
				if p.RetryCount >= panicMaxRetry {
					p.Stage = PanicCompleting
					p.Completed = true
				}
				p.Timeout = Timeout{}
			}
		}
		return p

	case PanicCompleting:
		if p.To == PanicToTown || p.Completed {
			return panickingTerminal(state)
		}
		timeout, phase := nextTimeout(p.Timeout, panicCompletingTimeout)
		p.Timeout = timeout
		if phase != LifecycleEnded {
			return p
		}
		if idle := ctx.Minimap.Idle; idle != nil {
			if idle.HasOtherPlayer() {
				// Someone followed to this channel; hop again.
				return Panicking{Stage: PanicChangingChannel, To: p.To}
			}
			p.Completed = true
			return p
		}
		p.Timeout = Timeout{}
		return p

	default:
		return Idle{}
	}
}

func panickingTerminal(state *State) Player {
	return onAction(state, func(action Action) (Player, bool, bool) {
		if _, ok := action.(PanicAction); ok {
			return Idle{}, true, true
		}
		return nil, false, false
	}, func() Player {
		return Idle{}
	})
}
