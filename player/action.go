package player

import (
	"fmt"

	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/core"
	"github.com/behold-mycode/komari/detect"
	"github.com/behold-mycode/komari/game"
)

const (
	// Proximity to an auto mob target inside which the key can already be
	// used without finishing the movement.
	autoMobUseKeyXThreshold = 16
	autoMobUseKeyYThreshold = 8
)

// ActionKeyDirection is the direction the player should face when performing
// a key action.
type ActionKeyDirection int

const (
	DirectionAny ActionKeyDirection = iota
	DirectionLeft
	DirectionRight
)

func (d ActionKeyDirection) String() string {
	switch d {
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return "any"
	}
}

// ActionKeyWith is the movement the key action should be combined with.
type ActionKeyWith int

const (
	// WithAny performs the key press regardless of the current movement.
	WithAny ActionKeyWith = iota
	// WithStationary waits until the player stands still before pressing.
	WithStationary
	// WithDoubleJump presses the key mid double jump.
	WithDoubleJump
)

func (w ActionKeyWith) String() string {
	switch w {
	case WithStationary:
		return "stationary"
	case WithDoubleJump:
		return "double jump"
	default:
		return "any"
	}
}

// LinkKeyKind is the ordering of a link key relative to the main key.
type LinkKeyKind int

const (
	LinkNone LinkKeyKind = iota
	LinkBefore
	LinkAtTheSame
	LinkAfter
)

// LinkKey is an optional secondary key combined with the main action key,
// e.g. a weapon-swap before a burst skill.
type LinkKey struct {
	Kind LinkKeyKind
	Key  bridge.KeyKind
}

// Position is an action's target position on the minimap.
type Position struct {
	X int
	Y int
	// AllowAdjusting permits fine walk adjustments down to single pixels so
	// the action runs at the exact x.
	AllowAdjusting bool
}

// Point converts the position to a map point.
func (p Position) Point() game.Point {
	return game.Point{X: p.X, Y: p.Y}
}

// PanicTo selects where a panic action escapes to.
type PanicTo int

const (
	PanicToTown PanicTo = iota
	PanicToChannel
)

// PingPongDirection is the initial travel direction of a ping pong action.
type PingPongDirection int

const (
	PingPongLeft PingPongDirection = iota
	PingPongRight
)

// Action is something the rotator asked the player to carry out. It stays
// queued in its slot until a handler reports it terminal.
type Action interface {
	fmt.Stringer
	isAction()
}

// KeyAction presses a key a number of times, optionally at a position and
// facing a direction.
type KeyAction struct {
	Key       bridge.KeyKind
	Link      LinkKey
	Count     uint32
	Position  *Position
	Direction ActionKeyDirection
	With      ActionKeyWith
	// Wait ticks before and after the presses. The random parts are upper
	// bounds for an extra uniform draw resolved when the action starts.
	WaitBeforeTicks       uint32
	WaitBeforeRandomTicks uint32
	WaitAfterTicks        uint32
	WaitAfterRandomTicks  uint32
}

func (KeyAction) isAction()        {}
func (a KeyAction) String() string { return fmt.Sprintf("key %s", a.Key) }

// MoveAction moves the player to a position.
type MoveAction struct {
	Position           Position
	WaitAfterMoveTicks uint32
}

func (MoveAction) isAction()        {}
func (a MoveAction) String() string { return fmt.Sprintf("move to %s", a.Position.Point()) }

// AutoMobAction moves toward a detected mob position and presses a key once
// close enough. Unlike KeyAction the position is advisory: the movement may
// be cut short when the mob is already in range.
type AutoMobAction struct {
	Key             bridge.KeyKind
	Link            LinkKey
	Count           uint32
	With            ActionKeyWith
	WaitBeforeTicks uint32
	WaitAfterTicks  uint32
	Position        Position
}

func (AutoMobAction) isAction()        {}
func (a AutoMobAction) String() string { return fmt.Sprintf("auto mob at %s", a.Position.Point()) }

// PingPongAction bounces the player between the edges of a bound while
// pressing a key mid double jump.
type PingPongAction struct {
	Key             bridge.KeyKind
	Link            LinkKey
	Count           uint32
	With            ActionKeyWith
	WaitBeforeTicks uint32
	WaitAfterTicks  uint32
	Bound           game.Rect
	Direction       PingPongDirection
}

func (PingPongAction) isAction()        {}
func (a PingPongAction) String() string { return "ping pong" }

// SolveRuneAction navigates to and solves the currently spawned rune.
type SolveRuneAction struct{}

func (SolveRuneAction) isAction()      {}
func (SolveRuneAction) String() string { return "solve rune" }

// FamiliarsSwapAction opens the familiar menu and swaps out leveled
// familiars.
type FamiliarsSwapAction struct {
	SwappableSlots    detect.SwappableFamiliars
	SwappableRarities []detect.FamiliarRarity
}

func (FamiliarsSwapAction) isAction()      {}
func (FamiliarsSwapAction) String() string { return "familiars swap" }

// PanicAction leaves the current map or channel when something is off, e.g.
// another player lingering nearby.
type PanicAction struct {
	To PanicTo
}

func (PanicAction) isAction() {}
func (a PanicAction) String() string {
	if a.To == PanicToTown {
		return "panic to town"
	}
	return "panic to channel"
}

// onAction arbitrates the player's queued actions. The priority slot wins
// over the normal slot. onUpdate receives the active action and reports the
// next state, whether the action terminated, and whether it handled the
// action at all; unhandled actions (and an empty queue) fall through to
// onDefault. A terminal action is cleared from its slot, and for action kinds
// that complete a full traversal the unstuck tracking is reset as well.
func onAction(
	state *State,
	onUpdate func(action Action) (Player, bool, bool),
	onDefault func() Player,
) Player {
	action := state.activeAction()
	if action == nil {
		return onDefault()
	}
	next, terminal, handled := onUpdate(action)
	if !handled {
		return onDefault()
	}
	if terminal {
		switch a := action.(type) {
		case SolveRuneAction, PingPongAction, MoveAction:
			state.clearUnstucking(false)
		case KeyAction:
			if a.Position != nil {
				state.clearUnstucking(false)
			}
		}
		state.clearActionCompleted()
	}
	return next
}

// onAutoMobUseKeyAction short-circuits an auto mob movement into UseKey when
// the current destination is already within range. Returns handled=false when
// still too far.
func onAutoMobUseKeyAction(
	ctx *core.Context,
	action AutoMobAction,
	xDistance, yDistance int,
) (Player, bool, bool) {
	if xDistance <= autoMobUseKeyXThreshold && yDistance <= autoMobUseKeyYThreshold {
		releaseAllMovementKeys(ctx.Keys)
		return newUseKeyFromAutoMobAction(ctx, action), false, true
	}
	return nil, false, false
}

// onPingPongDoubleJumpAction decides the follow-up of a completed ping pong
// double jump: terminal once the bound's edge is hit, otherwise keep
// traveling toward the far side of the map.
func onPingPongDoubleJumpAction(
	ctx *core.Context,
	curPos game.Point,
	bound game.Rect,
	direction PingPongDirection,
) (Player, bool) {
	hitEdge := (direction == PingPongLeft && curPos.X <= bound.X) ||
		(direction == PingPongRight && curPos.X >= bound.X+bound.Width)
	if hitEdge {
		return Idle{}, true
	}
	releaseAllMovementKeys(ctx.Keys)
	x := 0
	if direction == PingPongRight {
		if idle := ctx.Minimap.Idle; idle != nil {
			x = idle.BBox.Width
		}
	}
	return MoveTo{Dest: game.Point{X: x, Y: curPos.Y}}, false
}

func releaseDirectionKeys(keys bridge.KeySender) {
	_ = keys.SendUp(bridge.KeyLeft)
	_ = keys.SendUp(bridge.KeyRight)
}

func releaseAllMovementKeys(keys bridge.KeySender) {
	_ = keys.SendUp(bridge.KeyUp)
	_ = keys.SendUp(bridge.KeyDown)
	_ = keys.SendUp(bridge.KeyLeft)
	_ = keys.SendUp(bridge.KeyRight)
}
