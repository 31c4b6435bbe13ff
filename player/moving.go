package player

import (
	"github.com/sirupsen/logrus"

	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/core"
	"github.com/behold-mycode/komari/game"
	"github.com/behold-mycode/komari/pathing"
)

const (
	// Ticks without an observed position change before a movement state
	// decides it is stuck.
	moveTimeout = 5

	// Minimum vertical distance covered by an up jump.
	upJumpThreshold = 10

	// Ticks a walk-and-jump hop holds the directional key before the queued
	// jump resumes.
	walkAndJumpStallTimeout = 3
)

// IntermediatePoint is one waypoint of a platform path.
type IntermediatePoint struct {
	Point game.Point
	Hint  pathing.MovementHint
	// Exact requires fine adjustment at this waypoint. Only ever set on the
	// final point.
	Exact bool
}

// Intermediates walks a precomputed waypoint list. It is a value type: copies
// advance independently, the backing list is shared and read-only.
type Intermediates struct {
	current int
	inner   []IntermediatePoint
}

// NewIntermediates wraps a computed path, marking the final point exact when
// the overall destination requires it. The first point is considered already
// consumed by the Moving that carries it.
func NewIntermediates(points []pathing.PointWithHint, exact bool) Intermediates {
	if len(points) == 0 {
		return Intermediates{}
	}
	inner := make([]IntermediatePoint, len(points))
	for i, p := range points {
		inner[i] = IntermediatePoint{Point: p.Point, Hint: p.Hint}
	}
	inner[len(inner)-1].Exact = exact
	return Intermediates{current: 1, inner: inner}
}

// first returns the first waypoint of the path, which the initial Moving leg
// targets directly.
func (i Intermediates) first() (IntermediatePoint, bool) {
	if len(i.inner) == 0 {
		return IntermediatePoint{}, false
	}
	return i.inner[0], true
}

// hasNext reports whether another waypoint remains after the current one.
func (i Intermediates) hasNext() bool {
	return i.current < len(i.inner)
}

// next consumes and returns the next waypoint.
func (i Intermediates) next() (IntermediatePoint, Intermediates, bool) {
	if !i.hasNext() {
		return IntermediatePoint{}, i, false
	}
	point := i.inner[i.current]
	i.current++
	return point, i, true
}

// last returns the final waypoint of the path.
func (i Intermediates) last() (IntermediatePoint, bool) {
	if len(i.inner) == 0 {
		return IntermediatePoint{}, false
	}
	return i.inner[len(i.inner)-1], true
}

// Moving tracks a movement in progress: the last observed position, the
// destination, and a timeout guarding against making no progress. It is
// embedded by every movement state and carried across their transitions.
type Moving struct {
	// Pos is the last tracked player position.
	Pos game.Point
	// Dest is the destination of the current leg.
	Dest game.Point
	// Exact requires adjusting down to the exact destination x.
	Exact bool
	// Completed marks the movement's specific work done; the state keeps
	// ticking only to settle or to chain an action.
	Completed bool
	// Timeout guards the movement against making no progress.
	Timeout Timeout
	// Intermediates are the remaining waypoints when this leg is part of a
	// platform path.
	Intermediates Intermediates
}

func newMoving(pos, dest game.Point, exact bool, intermediates Intermediates) Moving {
	return Moving{Pos: pos, Dest: dest, Exact: exact, Intermediates: intermediates}
}

func (m Moving) withCompleted(completed bool) Moving {
	m.Completed = completed
	return m
}

func (m Moving) withTimeout(timeout Timeout) Moving {
	m.Timeout = timeout
	return m
}

func (m Moving) withTimeoutCurrent(current uint32) Moving {
	m.Timeout.Current = current
	return m
}

func (m Moving) withTimeoutStarted(started bool) Moving {
	m.Timeout.Started = started
	return m
}

// isDestinationIntermediate reports whether the current leg ends at a
// waypoint rather than the final destination.
func (m Moving) isDestinationIntermediate() bool {
	return m.Intermediates.hasNext()
}

// lastDestination is the final point of the whole movement, skipping over any
// remaining waypoints.
func (m Moving) lastDestination() game.Point {
	if last, ok := m.Intermediates.last(); ok && m.Intermediates.hasNext() {
		return last.Point
	}
	return m.Dest
}

// xDistanceDirection returns the horizontal distance and signed direction
// from curPos to the current leg's destination, or to the final destination
// when currentDestination is false.
func (m Moving) xDistanceDirection(currentDestination bool, curPos game.Point) (int, int) {
	dest := m.Dest
	if !currentDestination {
		dest = m.lastDestination()
	}
	direction := dest.X - curPos.X
	return game.AbsInt(direction), direction
}

// yDistanceDirection is the vertical counterpart of xDistanceDirection.
func (m Moving) yDistanceDirection(currentDestination bool, curPos game.Point) (int, int) {
	dest := m.Dest
	if !currentDestination {
		dest = m.lastDestination()
	}
	direction := dest.Y - curPos.Y
	return game.AbsInt(direction), direction
}

// autoMobCanSkipCurrentDestination reports whether an auto mob movement may
// abandon the current waypoint because it is already within reach:
// horizontally within a double jump and vertically either close enough to
// jump or already covered by the last drop or up jump.
func (m Moving) autoMobCanSkipCurrentDestination(state *State) bool {
	if !state.hasAutoMobActionOnly() || !m.Intermediates.hasNext() {
		return false
	}
	xDistance, _ := m.xDistanceDirection(true, m.Pos)
	if xDistance >= doubleJumpThreshold {
		return false
	}
	yDistance, yDirection := m.yDistanceDirection(true, m.Pos)
	didFallDown := state.lastMovement == movementFalling && yDirection >= 0
	didUpJump := state.lastMovement == movementUpJumping && yDirection <= 0
	return didFallDown || didUpJump || yDistance < jumpThreshold
}

// updateMoveTo is the movement coordinator. Each pass it measures the
// distances to the current leg's destination and picks the single movement
// primitive that closes the largest remaining gap, in a fixed priority
// order. Arrival advances to the next waypoint or hands control to the
// queued action.
func updateMoveTo(ctx *core.Context, state *State, curPos game.Point, dest game.Point, exact bool, intermediates Intermediates) Player {
	state.useImmediateControlFlow = true
	if state.trackUnstucking() {
		state.LastKnownDirection = DirectionAny
		return Unstucking{GambaMode: state.trackUnstuckingTransitioned()}
	}

	moving := newMoving(curPos, dest, exact, intermediates)
	isIntermediate := moving.isDestinationIntermediate()
	xDistance, _ := moving.xDistanceDirection(true, curPos)
	yDistance, yDirection := moving.yDistanceDirection(true, curPos)
	skip := moving.autoMobCanSkipCurrentDestination(state)

	if !skip {
		switch {
		case xDistance >= state.doubleJumpThreshold(isIntermediate):
			requireStationary := state.hasPingPongActionOnly() &&
				state.lastMovement != movementGrappling &&
				state.lastMovement != movementUpJumping
			return abortOnMovementRepeat(state, moving, DoubleJumping{
				Moving:                moving,
				RequireNearStationary: requireStationary,
			})

		case (!state.Config.DisableAdjusting && xDistance >= adjustingMediumThreshold) ||
			(exact && xDistance >= adjustingShortThreshold):
			return abortOnMovementRepeat(state, moving, Adjusting{Moving: moving})

		case yDirection > 0 && yDistance >= grapplingThreshold && !state.shouldDisableGrappling():
			return abortOnMovementRepeat(state, moving, Grappling{Moving: moving})

		case yDirection > 0 && yDistance >= upJumpThreshold:
			// A platform path restricted to up jumps cannot climb a gap this
			// tall in one hop; going up anyway would strand the player.
			if state.hasAutoMobActionOnly() &&
				state.Config.AutoMobPlatformsPathing &&
				state.Config.AutoMobPlatformsPathingUpJumpOnly &&
				!isIntermediate && yDistance >= grapplingThreshold {
				state.clearActionCompleted()
				return Idle{}
			}
			return abortOnMovementRepeat(state, moving, UpJumping{Moving: moving})

		case yDirection > 0 && yDistance < jumpThreshold:
			return abortOnMovementRepeat(state, moving, Jumping{Moving: moving})

		case yDirection < 0 && yDistance >= state.fallingThreshold(isIntermediate):
			return abortOnMovementRepeat(state, moving, Falling{Moving: moving, Anchor: curPos})
		}
	}

	// Arrived at the current leg's destination.
	if point, rest, ok := intermediates.next(); ok {
		state.clearUnstucking(false)
		state.clearLastMovement()
		if point.Hint == pathing.HintWalkAndJump {
			state.stallingTimeoutState = Jumping{Moving: newMoving(curPos, point.Point, point.Exact, rest)}
			if point.Point.X > curPos.X {
				_ = ctx.Keys.SendDown(bridge.KeyRight)
			} else {
				_ = ctx.Keys.SendDown(bridge.KeyLeft)
			}
			return Stalling{MaxTimeout: walkAndJumpStallTimeout}
		}
		return MoveTo{Dest: point.Point, Exact: point.Exact, Intermediates: rest}
	}

	return onAction(state, func(action Action) (Player, bool, bool) {
		switch action := action.(type) {
		case MoveAction:
			logrus.WithFields(logrus.Fields{"destination": dest, "position": curPos}).
				Debug("player arrived at move destination")
			if action.WaitAfterMoveTicks > 0 {
				return Stalling{MaxTimeout: action.WaitAfterMoveTicks}, false, true
			}
			return Idle{}, true, true
		case KeyAction:
			switch action.With {
			case WithDoubleJump:
				if action.Direction == DirectionAny || action.Direction == state.LastKnownDirection {
					return DoubleJumping{
						Moving: newMoving(curPos, curPos, false, Intermediates{}),
						Forced: true,
					}, false, true
				}
				return newUseKeyFromKeyAction(ctx, action), false, true
			default:
				return newUseKeyFromKeyAction(ctx, action), false, true
			}
		case AutoMobAction:
			return newUseKeyFromAutoMobAction(ctx, action), false, true
		case SolveRuneAction:
			return SolvingRune{}, false, true
		case PingPongAction:
			return Idle{}, true, true
		default:
			return nil, false, false
		}
	}, func() Player {
		return Idle{}
	})
}

// abortOnMovementRepeat bails out of a movement that keeps being re-entered
// toward the same destination without the position changing. For auto mob
// actions the destination's x neighborhood is remembered and avoided for a
// while.
func abortOnMovementRepeat(state *State, moving Moving, next Player) Player {
	if !state.trackLastMovementRepeated(moving.Dest, moving.Pos) {
		return next
	}
	logrus.WithFields(logrus.Fields{"destination": moving.Dest, "position": moving.Pos}).
		Warn("aborting movement repeated too many times")
	if state.hasAutoMobActionOnly() {
		state.autoMobTrackIgnoreXs(moving.Dest.X)
	}
	state.clearActionCompleted()
	return Idle{}
}

// findIntermediatePoints computes platform-path waypoints from cur to dest,
// or an empty Intermediates when pathing is disabled or no path exists.
func findIntermediatePoints(state *State, platforms []pathing.Platform, cur, dest game.Point, exact bool, enableHint bool) Intermediates {
	verticalThreshold := grapplingMaxThreshold
	if state.Config.AutoMobPlatformsPathingUpJumpOnly {
		verticalThreshold = grapplingThreshold
	}
	points := pathing.FindPoints(platforms, cur, dest, enableHint, doubleJumpThreshold, jumpThreshold, verticalThreshold)
	if len(points) == 0 {
		return Intermediates{}
	}
	return NewIntermediates(points, exact)
}
