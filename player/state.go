package player

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/behold-mycode/komari/core"
	"github.com/behold-mycode/komari/game"
)

const (
	// Coordinator passes without completing a leg before forcing an unstuck
	// attempt.
	unstuckCounterThreshold = 30
	// Consecutive unstuck attempts before assuming position tracking itself
	// is broken and falling back to randomized unstucking.
	unstuckGambaThreshold = 3

	// Identical movement entries toward an unchanged destination from an
	// unchanged position before the movement is aborted.
	movementRepeatLimit = 5
	// Position jitter tolerated when deciding the player has not moved
	// between repeated entries.
	movementRepeatPosJitter = 2

	// Remembered x neighborhoods of aborted auto mob targets.
	autoMobIgnoreXsCap   = 8
	autoMobIgnoreXsRange = autoMobUseKeyXThreshold

	// Velocity smoothing factor per tick.
	velocitySmoothing = 0.5
)

// lastMovement is the movement primitive most recently started.
type lastMovement int

const (
	movementNone lastMovement = iota
	movementAdjusting
	movementDoubleJumping
	movementGrappling
	movementJumping
	movementUpJumping
	movementFalling
)

func (m lastMovement) String() string {
	switch m {
	case movementAdjusting:
		return "adjusting"
	case movementDoubleJumping:
		return "double jumping"
	case movementGrappling:
		return "grappling"
	case movementJumping:
		return "jumping"
	case movementUpJumping:
		return "up jumping"
	case movementFalling:
		return "falling"
	default:
		return "none"
	}
}

type movementRepeatSample struct {
	kind  lastMovement
	dest  game.Point
	pos   game.Point
	count int
}

type ignoreXRange struct {
	min int
	max int
}

// State is the player's persistent state, surviving across contextual state
// transitions and ticks. Contextual states carry only per-state data; every
// longer-lived fact lives here.
type State struct {
	// Config is the active character configuration.
	Config Config

	// LastKnownPos is the most recent detected position.
	LastKnownPos *game.Point
	// Velocity is the smoothed per-tick position change magnitude.
	Velocity mgl32.Vec2
	// IsStationary is set once the position stops changing for a while.
	IsStationary bool
	// IsDead is set by the perception layer when the tomb dialog shows.
	IsDead bool
	// LastKnownDirection is the direction the player is assumed to face,
	// updated whenever a handler holds a horizontal key.
	LastKnownDirection ActionKeyDirection

	// PriorityAction preempts NormalAction; both stay queued until a handler
	// reports them terminal.
	PriorityAction Action
	NormalAction   Action

	// ResetToIdleNextUpdate forces the next update to dispatch from Idle.
	ResetToIdleNextUpdate bool
	// RuneCashShop requests a cash shop round trip on the next update, used
	// to reset a rune that repeatedly fails to solve.
	RuneCashShop bool

	lastMovement         lastMovement
	movementRepeat       movementRepeatSample
	stallingTimeoutState Player

	useImmediateControlFlow bool
	ignorePosUpdate         bool

	unstuckCounter     int
	unstuckConsecutive int

	runeValidateTimeout *Timeout

	autoMobIgnoreXs []ignoreXRange

	stationaryPos     game.Point
	stationaryTimeout uint32
}

// UpdateState refreshes position, velocity and stationary tracking from the
// current frame. It reports whether a position is known this tick.
func (s *State) UpdateState(ctx *core.Context) bool {
	// An immediate re-dispatch runs on the same frame; feeding the identical
	// position through velocity and stationary tracking again would skew both.
	if s.ignorePosUpdate {
		return s.LastKnownPos != nil
	}
	idle := ctx.Minimap.Idle
	if idle == nil {
		return false
	}
	pos, ok := ctx.DetectorMust().DetectPlayer(idle.BBox)
	if !ok {
		return false
	}

	if last := s.LastKnownPos; last != nil {
		dx := float32(game.AbsInt(pos.X - last.X))
		dy := float32(game.AbsInt(pos.Y - last.Y))
		s.Velocity = s.Velocity.Mul(1 - velocitySmoothing).
			Add(mgl32.Vec2{dx, dy}.Mul(velocitySmoothing))
	} else {
		s.stationaryPos = pos
	}

	if pos != s.stationaryPos {
		s.stationaryPos = pos
		s.stationaryTimeout = 0
		s.IsStationary = false
	} else if s.stationaryTimeout < moveTimeout {
		s.stationaryTimeout++
		if s.stationaryTimeout >= moveTimeout {
			s.IsStationary = true
		}
	}

	p := pos
	s.LastKnownPos = &p

	if t := s.runeValidateTimeout; t != nil {
		next, phase := nextTimeout(*t, runeValidateTimeoutTicks)
		if phase == LifecycleEnded {
			s.runeValidateTimeout = nil
		} else {
			s.runeValidateTimeout = &next
		}
	}
	return true
}

// activeAction is the action the player should currently work on.
func (s *State) activeAction() Action {
	if s.PriorityAction != nil {
		return s.PriorityAction
	}
	return s.NormalAction
}

// HasPriorityAction reports whether a priority action is queued.
func (s *State) HasPriorityAction() bool { return s.PriorityAction != nil }

// HasNormalAction reports whether a normal action is queued.
func (s *State) HasNormalAction() bool { return s.NormalAction != nil }

func (s *State) hasAutoMobActionOnly() bool {
	if s.PriorityAction != nil {
		return false
	}
	_, ok := s.NormalAction.(AutoMobAction)
	return ok
}

func (s *State) hasPingPongActionOnly() bool {
	if s.PriorityAction != nil {
		return false
	}
	_, ok := s.NormalAction.(PingPongAction)
	return ok
}

// clearActionCompleted clears the slot the active action came from.
func (s *State) clearActionCompleted() {
	if s.PriorityAction != nil {
		s.PriorityAction = nil
		return
	}
	s.NormalAction = nil
}

// doubleJumpThreshold is the horizontal distance from which a double jump is
// preferred over walking. Auto mob movement and intermediate waypoints use a
// tighter threshold to land closer.
func (s *State) doubleJumpThreshold(isIntermediate bool) int {
	if s.hasAutoMobActionOnly() || isIntermediate {
		return doubleJumpAutoMobThreshold
	}
	return doubleJumpThreshold
}

// fallingThreshold is the downward distance from which dropping off the
// platform is preferred over arriving slightly above the destination.
func (s *State) fallingThreshold(isIntermediate bool) int {
	if s.hasAutoMobActionOnly() || isIntermediate {
		return fallingThreshold
	}
	return fallingNormalThreshold
}

// shouldDisableGrappling reports whether grappling must not be used: either
// no key is bound, or the auto mob platform pathing is restricted to up
// jumps.
func (s *State) shouldDisableGrappling() bool {
	if !s.Config.hasGrapplingKey() {
		return true
	}
	return s.hasAutoMobActionOnly() &&
		s.Config.AutoMobPlatformsPathing &&
		s.Config.AutoMobPlatformsPathingUpJumpOnly
}

func (s *State) setLastMovement(m lastMovement) {
	s.lastMovement = m
}

func (s *State) clearLastMovement() {
	s.lastMovement = movementNone
	s.movementRepeat = movementRepeatSample{}
}

// trackLastMovementRepeated records one more entry into a movement toward
// dest from pos and reports whether the same movement kind has been entered
// movementRepeatLimit times without either changing.
func (s *State) trackLastMovementRepeated(dest, pos game.Point) bool {
	if s.lastMovement == movementNone {
		return false
	}
	sample := &s.movementRepeat
	samePlace := sample.dest == dest &&
		game.AbsInt(sample.pos.X-pos.X) <= movementRepeatPosJitter &&
		game.AbsInt(sample.pos.Y-pos.Y) <= movementRepeatPosJitter
	if sample.kind == s.lastMovement && samePlace {
		sample.count++
	} else {
		*sample = movementRepeatSample{kind: s.lastMovement, dest: dest, pos: pos, count: 1}
	}
	if sample.count >= movementRepeatLimit {
		s.movementRepeat = movementRepeatSample{}
		return true
	}
	return false
}

// trackUnstucking counts a coordinator pass and reports whether enough
// passed without completing a leg that an unstuck attempt is due.
func (s *State) trackUnstucking() bool {
	s.unstuckCounter++
	if s.unstuckCounter < unstuckCounterThreshold {
		return false
	}
	s.unstuckCounter = 0
	return true
}

// trackUnstuckingTransitioned counts an actual transition into Unstucking
// and reports whether so many happened back to back that only randomized
// unstucking is left to try.
func (s *State) trackUnstuckingTransitioned() bool {
	s.unstuckConsecutive++
	return s.unstuckConsecutive >= unstuckGambaThreshold
}

// clearUnstucking resets the unstuck pass counter, and the consecutive
// transition counter as well when the player provably made progress.
func (s *State) clearUnstucking(alsoConsecutive bool) {
	s.unstuckCounter = 0
	if alsoConsecutive {
		s.unstuckConsecutive = 0
	}
}

// autoMobTrackIgnoreXs remembers the x neighborhood of an aborted auto mob
// destination so the rotator stops picking mobs there.
func (s *State) autoMobTrackIgnoreXs(x int) {
	r := ignoreXRange{min: x - autoMobIgnoreXsRange, max: x + autoMobIgnoreXsRange}
	s.autoMobIgnoreXs = append(s.autoMobIgnoreXs, r)
	if len(s.autoMobIgnoreXs) > autoMobIgnoreXsCap {
		s.autoMobIgnoreXs = s.autoMobIgnoreXs[1:]
	}
}

// AutoMobIgnoreX reports whether x falls into a remembered unreachable
// neighborhood.
func (s *State) AutoMobIgnoreX(x int) bool {
	for _, r := range s.autoMobIgnoreXs {
		if x >= r.min && x <= r.max {
			return true
		}
	}
	return false
}

// ClearAutoMobIgnoreXs forgets remembered unreachable neighborhoods, called
// on map change.
func (s *State) ClearAutoMobIgnoreXs() {
	s.autoMobIgnoreXs = nil
}

// SetRuneValidateTimeout arms the post-solve validation window.
func (s *State) SetRuneValidateTimeout() {
	s.runeValidateTimeout = &Timeout{}
}

// RuneValidating reports whether a solved rune is still within its
// validation window.
func (s *State) RuneValidating() bool {
	return s.runeValidateTimeout != nil
}
