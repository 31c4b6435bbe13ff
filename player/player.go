// Package player implements the character control loop: a contextual state
// machine ticked at a fixed rate, together with the persistent state and the
// action queue it works through.
package player

import (
	"fmt"

	"github.com/behold-mycode/komari/assert"
	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/core"
	"github.com/behold-mycode/komari/detect"
	"github.com/behold-mycode/komari/game"
)

// Immediate transitions allowed within a single tick; a chain longer than
// this indicates a dispatch bug.
const maxImmediateTransitions = 16

// Horizontal distance below which a queued action is not worth interrupting
// an in-flight movement for.
const overridableDistance = doubleJumpThreshold / 2

// Player is the player's contextual state for one tick. Exactly one variant
// is active at a time; handlers return the next variant.
type Player interface {
	fmt.Stringer
	isPlayer()
}

// Detecting waits for the minimap and player position to become known.
type Detecting struct{}

func (Detecting) isPlayer()      {}
func (Detecting) String() string { return "detecting" }

// Idle performs no movement and picks up queued actions.
type Idle struct{}

func (Idle) isPlayer()      {}
func (Idle) String() string { return "idle" }

// MoveTo is the movement coordinator state: it decomposes the distance to
// Dest into movement primitives until the player arrives.
type MoveTo struct {
	Dest          game.Point
	Exact         bool
	Intermediates Intermediates
}

func (MoveTo) isPlayer()      {}
func (MoveTo) String() string { return "moving" }

// Adjusting walks small horizontal distances, with single-pixel nudges when
// the destination is exact.
type Adjusting struct {
	Moving Moving
	// AdjustTimeout cycles the nudge presses of an exact adjustment.
	AdjustTimeout Timeout
}

func (Adjusting) isPlayer()      {}
func (Adjusting) String() string { return "adjusting" }

// DoubleJumping covers large horizontal distances, optionally pressing an
// action key mid-flight.
type DoubleJumping struct {
	Moving Moving
	// Forced double jumps ignore the distance checks and jump in the faced
	// direction, used by double-jump-combined key actions.
	Forced bool
	// RequireNearStationary delays the jump until the player slows down.
	RequireNearStationary bool
	// CooldownTimeout spaces out repeated jump presses mid-flight.
	CooldownTimeout Timeout
}

func (DoubleJumping) isPlayer()      {}
func (DoubleJumping) String() string { return "double jumping" }

// Grappling climbs large upward distances with the grappling skill.
type Grappling struct {
	Moving Moving
}

func (Grappling) isPlayer()      {}
func (Grappling) String() string { return "grappling" }

// Jumping hops small upward distances.
type Jumping struct {
	Moving Moving
}

func (Jumping) isPlayer()      {}
func (Jumping) String() string { return "jumping" }

// UpJumping climbs medium upward distances with the class up jump.
type UpJumping struct {
	Moving Moving
	// SpamDelay is the jump-spam delay picked when the state started, from
	// the gap height at that moment.
	SpamDelay uint32
}

func (UpJumping) isPlayer()      {}
func (UpJumping) String() string { return "up jumping" }

// Falling drops below the current platform. Anchor is the position when the
// fall started; the fall counts as done once the player is below it.
type Falling struct {
	Moving Moving
	Anchor game.Point
	// TimeoutOnComplete ends the state as soon as the fall completes instead
	// of letting the timeout run out, used by composite fall-then-jump
	// movements.
	TimeoutOnComplete bool
}

func (Falling) isPlayer()      {}
func (Falling) String() string { return "falling" }

// UseKey presses an action's key, preparing direction and stance first.
type UseKey struct {
	Key       bridge.KeyKind
	Link      LinkKey
	Count     uint32
	Direction ActionKeyDirection
	With      ActionKeyWith
	// WaitBeforeTicks and WaitAfterTicks are fully resolved waits; any
	// random part was drawn when the action started.
	WaitBeforeTicks uint32
	WaitAfterTicks  uint32
	Position        *Position

	Stage        useKeyStage
	CurrentCount uint32
	Timeout      Timeout
}

func (UseKey) isPlayer()      {}
func (UseKey) String() string { return "using key" }

// Unstucking tries to free a player that stopped making progress, by walking
// off whatever it is stuck on and closing any dialog that swallowed input.
type Unstucking struct {
	Timeout Timeout
	// HasSettings caches the settings-dialog detection for this attempt.
	HasSettings *bool
	// GambaMode randomizes the escape direction when the position cannot be
	// trusted at all.
	GambaMode bool
}

func (Unstucking) isPlayer()      {}
func (Unstucking) String() string { return "unstucking" }

// Stalling waits out a timeout, then resumes a queued follow-up state or
// reports the active action terminal.
type Stalling struct {
	Timeout    Timeout
	MaxTimeout uint32
}

func (Stalling) isPlayer()      {}
func (Stalling) String() string { return "stalling" }

// SolvingRune locates the rune minigame arrows and presses them.
type SolvingRune struct {
	Stage       SolvingRuneStage
	Timeout     Timeout
	Calibrating detect.ArrowsCalibrating
	Keys        [4]bridge.KeyKind
	KeyIndex    int
	RetryCount  int
	// Cooldown spaces out retries after a failed detection.
	Cooldown *Timeout
}

func (SolvingRune) isPlayer()      {}
func (SolvingRune) String() string { return "solving rune" }

// CashShopThenExit enters the cash shop, idles there and leaves, which fully
// resets the map including a stuck rune.
type CashShopThenExit struct {
	Timeout Timeout
	Stage   CashShopStage
}

func (CashShopThenExit) isPlayer()      {}
func (CashShopThenExit) String() string { return "cash shop" }

// FamiliarsSwapping swaps leveled familiars out of the setup slots.
type FamiliarsSwapping struct {
	Stage     FamiliarsSwappingStage
	Swappable FamiliarsSwapAction
	Timeout   Timeout
	// Freed counts the slots released and not yet refilled.
	Freed       int
	RarityIndex int
}

func (FamiliarsSwapping) isPlayer()      {}
func (FamiliarsSwapping) String() string { return "familiars swapping" }

// Panicking escapes the current map to town or to another channel.
type Panicking struct {
	Stage      PanicStage
	To         PanicTo
	Timeout    Timeout
	RetryCount int
	Completed  bool
}

func (Panicking) isPlayer()      {}
func (Panicking) String() string { return "panicking" }

// CanActionOverride reports whether a new action may replace the player's
// current activity without corrupting an in-flight movement. Idle-ish states
// always allow it; movements allow it once their work is essentially done or
// the remaining distance is large enough that redirecting is cheap.
func CanActionOverride(p Player, state *State) bool {
	farEnough := func(dest game.Point) bool {
		if state.LastKnownPos == nil {
			return true
		}
		return game.AbsInt(dest.X-state.LastKnownPos.X) >= overridableDistance
	}
	switch s := p.(type) {
	case Detecting, Idle:
		return true
	case MoveTo:
		return farEnough(s.Dest)
	case DoubleJumping:
		return !s.Forced && farEnough(s.Moving.Dest)
	case Adjusting:
		return farEnough(s.Moving.Dest)
	case Grappling:
		return s.Moving.Completed
	case Jumping:
		return s.Moving.Completed
	case UpJumping:
		return s.Moving.Completed
	case Falling:
		return s.Moving.Completed
	default:
		return false
	}
}

// Update runs one tick of the state machine, following immediate transitions
// within the same tick so coordinator decisions do not cost extra ticks.
func Update(ctx *core.Context, state *State, p Player) Player {
	for i := 0; i < maxImmediateTransitions; i++ {
		next, flow := updateContext(ctx, state, p)
		p = next
		if flow == core.FlowNext {
			return p
		}
	}
	assert.IsTrue(false, "immediate transition chain exceeded %d states", maxImmediateTransitions)
	return p
}

func updateContext(ctx *core.Context, state *State, p Player) (Player, core.Flow) {
	if state.RuneCashShop {
		releaseAllMovementKeys(ctx.Keys)
		state.RuneCashShop = false
		state.ResetToIdleNextUpdate = false
		state.runeValidateTimeout = nil
		return CashShopThenExit{}, core.FlowNext
	}

	hasPosition := state.UpdateState(ctx)
	var next Player
	if !hasPosition {
		if n, handled := updateNonPositional(ctx, state, p, true); handled {
			next = n
		} else if idle := ctx.Minimap.Idle; !ctx.Halting && idle != nil && !idle.PartiallyOverlapping {
			// The minimap tracks fine but the player marker is gone, most
			// likely covered by a dialog. Try to unstuck.
			state.LastKnownDirection = DirectionAny
			next = Unstucking{GambaMode: state.trackUnstuckingTransitioned()}
		} else {
			next = Detecting{}
		}
	} else {
		cur := p
		if state.ResetToIdleNextUpdate {
			cur = Idle{}
		}
		if n, handled := updateNonPositional(ctx, state, cur, false); handled {
			next = n
		} else {
			next = updatePositional(ctx, state, cur)
		}
	}

	flow := core.FlowNext
	if state.useImmediateControlFlow {
		flow = core.FlowImmediate
	}
	state.ResetToIdleNextUpdate = false
	// An immediate re-dispatch happens within the same frame, so the next
	// position read would be identical and must not feed velocity tracking
	// twice.
	state.ignorePosUpdate = state.useImmediateControlFlow
	state.useImmediateControlFlow = false
	return next, flow
}

// updateNonPositional dispatches states that can run without a tracked
// position. When failed is true the position is unknown this tick and states
// that need occasional position reads are skipped.
func updateNonPositional(ctx *core.Context, state *State, p Player, failed bool) (Player, bool) {
	switch s := p.(type) {
	case UseKey:
		if failed {
			return nil, false
		}
		return updateUseKey(ctx, state, s), true
	case FamiliarsSwapping:
		return updateFamiliarsSwapping(ctx, state, s), true
	case Unstucking:
		return updateUnstucking(ctx, state, s), true
	case Stalling:
		if failed {
			return nil, false
		}
		return updateStalling(ctx, state, s), true
	case SolvingRune:
		if failed {
			return nil, false
		}
		return updateSolvingRune(ctx, state, s), true
	case CashShopThenExit:
		return updateCashShop(ctx, state, s, failed), true
	case Panicking:
		return updatePanicking(ctx, state, s), true
	default:
		return nil, false
	}
}

func updatePositional(ctx *core.Context, state *State, p Player) Player {
	curPos := *state.LastKnownPos
	switch s := p.(type) {
	case Detecting:
		state.clearUnstucking(true)
		return Idle{}
	case Idle:
		return updateIdle(ctx, state)
	case MoveTo:
		return updateMoveTo(ctx, state, curPos, s.Dest, s.Exact, s.Intermediates)
	case Adjusting:
		return updateAdjusting(ctx, state, s)
	case DoubleJumping:
		return updateDoubleJumping(ctx, state, s)
	case Grappling:
		return updateGrappling(ctx, state, s)
	case UpJumping:
		return updateUpJumping(ctx, state, s)
	case Jumping:
		return updateJumping(ctx, state, s)
	case Falling:
		return updateFalling(ctx, state, s)
	default:
		assert.IsTrue(false, "state %s dispatched as positional", p)
		return Idle{}
	}
}
