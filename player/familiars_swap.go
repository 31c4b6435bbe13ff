package player

import (
	"github.com/sirupsen/logrus"

	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/core"
	"github.com/behold-mycode/komari/detect"
)

// FamiliarsSwappingStage is the phase of a familiar swap.
type FamiliarsSwappingStage int

const (
	// FamiliarsOpening presses the familiar key until the menu shows.
	FamiliarsOpening FamiliarsSwappingStage = iota
	// FamiliarsFreeingSlots releases fully leveled familiars from the
	// swappable setup slots.
	FamiliarsFreeingSlots
	// FamiliarsSelectingCards fills the freed slots with fresh cards.
	FamiliarsSelectingCards
	// FamiliarsSaving saves the setup and closes the menu.
	FamiliarsSaving
)

const (
	// Ticks between menu interactions; the UI animates between clicks.
	familiarsClickInterval = 8

	// Ticks before an opening/saving attempt is retried or abandoned.
	familiarsOpenTimeout = 60
)

// updateFamiliarsSwapping swaps fully leveled familiars out of the setup for
// fresh ones so their passives keep leveling.
func updateFamiliarsSwapping(ctx *core.Context, state *State, f FamiliarsSwapping) Player {
	detector := ctx.Detector
	if detector == nil {
		return familiarsTerminal(state)
	}

	switch f.Stage {
	case FamiliarsOpening:
		if detector.DetectFamiliarMenu() {
			f.Stage = FamiliarsFreeingSlots
			f.Timeout = Timeout{}
			return f
		}
		timeout, phase := nextTimeout(f.Timeout, familiarsOpenTimeout)
		f.Timeout = timeout
		switch {
		case phase == LifecycleStarted:
			_ = ctx.Keys.Send(state.Config.FamiliarKey)
		case phase == LifecycleEnded:
			logrus.Warn("familiar menu did not open, aborting swap")
			return familiarsTerminal(state)
		}
		return f

	case FamiliarsFreeingSlots:
		timeout, phase := nextTimeout(f.Timeout, familiarsClickInterval)
		f.Timeout = timeout
		if phase != LifecycleEnded {
			return f
		}
		f.Timeout = Timeout{}
		slots := swappableSlots(detector.DetectFamiliarSlots(), f.Swappable.SwappableSlots)
		for _, slot := range slots {
			if !slot.Leveled {
				continue
			}
			center := slot.BBox.Center()
			_ = ctx.Keys.SendMouse(center.X, center.Y, bridge.MouseClick)
			f.Freed++
			return f
		}
		f.Stage = FamiliarsSelectingCards
		return f

	case FamiliarsSelectingCards:
		if f.Freed == 0 {
			f.Stage = FamiliarsSaving
			f.Timeout = Timeout{}
			return f
		}
		timeout, phase := nextTimeout(f.Timeout, familiarsClickInterval)
		f.Timeout = timeout
		if phase != LifecycleEnded {
			return f
		}
		f.Timeout = Timeout{}
		for ; f.RarityIndex < len(f.Swappable.SwappableRarities); f.RarityIndex++ {
			cards := detector.DetectFamiliarCards(f.Swappable.SwappableRarities[f.RarityIndex])
			if len(cards) == 0 {
				continue
			}
			center := cards[0].Center()
			_ = ctx.Keys.SendMouse(center.X, center.Y, bridge.MouseClick)
			f.Freed--
			return f
		}
		// Out of cards before filling every slot; save what we have.
		f.Stage = FamiliarsSaving
		return f

	case FamiliarsSaving:
		timeout, phase := nextTimeout(f.Timeout, familiarsClickInterval)
		f.Timeout = timeout
		if phase != LifecycleEnded {
			return f
		}
		f.Timeout = Timeout{}
		if save, ok := detector.DetectFamiliarSaveButton(); ok {
			center := save.Center()
			_ = ctx.Keys.SendMouse(center.X, center.Y, bridge.MouseClick)
			_ = ctx.Keys.Send(bridge.KeyEnter)
		}
		_ = ctx.Keys.Send(bridge.KeyEsc)
		if !detector.DetectFamiliarMenu() {
			return familiarsTerminal(state)
		}
		return f

	default:
		return familiarsTerminal(state)
	}
}

// swappableSlots filters the detected setup slots down to the ones the
// action allows swapping.
func swappableSlots(slots []detect.FamiliarSlot, allowed detect.SwappableFamiliars) []detect.FamiliarSlot {
	switch allowed {
	case detect.SwapLast:
		if len(slots) == 0 {
			return nil
		}
		return slots[len(slots)-1:]
	case detect.SwapSecondAndLast:
		if len(slots) < 2 {
			return slots
		}
		return slots[1:]
	default:
		return slots
	}
}

func familiarsTerminal(state *State) Player {
	return onAction(state, func(action Action) (Player, bool, bool) {
		if _, ok := action.(FamiliarsSwapAction); ok {
			return Idle{}, true, true
		}
		return nil, false, false
	}, func() Player {
		return Idle{}
	})
}
