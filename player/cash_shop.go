package player

import (
	"github.com/sirupsen/logrus"

	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/core"
)

// CashShopStage is the phase of the cash shop round trip.
type CashShopStage int

const (
	// CashShopEntering presses the cash shop key until the shop UI shows.
	CashShopEntering CashShopStage = iota
	// CashShopEntered idles inside the shop long enough for the map to
	// reset.
	CashShopEntered
	// CashShopExitting clicks back into the frame and escapes out.
	CashShopExitting
	// CashShopExitted waits for the player to be tracked again.
	CashShopExitted
	// CashShopStalling lets the map settle before resuming.
	CashShopStalling
)

const (
	// Ticks between repeated entering/exitting attempts.
	cashShopRetryTimeout = 10

	// Ticks spent inside the shop.
	cashShopInsideTimeout = 305

	// Ticks to settle after leaving.
	cashShopExitStallTimeout = 90
)

// updateCashShop performs a full cash shop round trip, which reloads the map
// and despawns a rune that refuses to be solved. failed is true on ticks
// where the player position is unknown, which is expected through most of
// the trip.
func updateCashShop(ctx *core.Context, state *State, c CashShopThenExit, failed bool) Player {
	switch c.Stage {
	case CashShopEntering:
		if ctx.DetectorMust().DetectPlayerInCashShop() {
			logrus.Debug("player entered cash shop")
			c.Stage = CashShopEntered
			c.Timeout = Timeout{}
			return c
		}
		timeout, phase := nextTimeout(c.Timeout, cashShopRetryTimeout)
		c.Timeout = timeout
		switch phase {
		case LifecycleStarted:
			_ = ctx.Keys.Send(state.Config.CashShopKey)
		case LifecycleEnded:
			c.Timeout = Timeout{}
		}
		return c

	case CashShopEntered:
		timeout, phase := nextTimeout(c.Timeout, cashShopInsideTimeout)
		c.Timeout = timeout
		if phase == LifecycleEnded {
			c.Stage = CashShopExitting
			c.Timeout = Timeout{}
		}
		return c

	case CashShopExitting:
		if !ctx.DetectorMust().DetectPlayerInCashShop() {
			c.Stage = CashShopExitted
			c.Timeout = Timeout{}
			return c
		}
		timeout, phase := nextTimeout(c.Timeout, cashShopRetryTimeout)
		c.Timeout = timeout
		switch phase {
		case LifecycleStarted:
			// Focus the client before escaping out of the shop.
			width, height := ctx.DetectorMust().FrameSize()
			_ = ctx.Keys.SendMouse(width/2, height/2, bridge.MouseClick)
			_ = ctx.Keys.Send(bridge.KeyEsc)
			_ = ctx.Keys.Send(bridge.KeyEnter)
		case LifecycleEnded:
			c.Timeout = Timeout{}
		}
		return c

	case CashShopExitted:
		if failed {
			return c
		}
		c.Stage = CashShopStalling
		c.Timeout = Timeout{}
		return c

	case CashShopStalling:
		timeout, phase := nextTimeout(c.Timeout, cashShopExitStallTimeout)
		c.Timeout = timeout
		if phase == LifecycleEnded {
			logrus.Debug("cash shop round trip finished")
			return Idle{}
		}
		return c

	default:
		return Idle{}
	}
}
