package player

import (
	"testing"

	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/game"
	"github.com/behold-mycode/komari/pathing"
)

func TestIntermediatesWalk(t *testing.T) {
	points := []pathing.PointWithHint{
		{Point: game.Point{X: 10, Y: 0}},
		{Point: game.Point{X: 20, Y: 5}},
		{Point: game.Point{X: 30, Y: 5}},
	}
	intermediates := NewIntermediates(points, true)

	first, ok := intermediates.first()
	if !ok || first.Point != (game.Point{X: 10, Y: 0}) {
		t.Fatalf("unexpected first point: %+v", first)
	}
	if first.Exact {
		t.Fatal("only the final point may be exact")
	}

	point, rest, ok := intermediates.next()
	if !ok || point.Point != (game.Point{X: 20, Y: 5}) {
		t.Fatalf("unexpected second point: %+v", point)
	}
	point, rest, ok = rest.next()
	if !ok || point.Point != (game.Point{X: 30, Y: 5}) {
		t.Fatalf("unexpected final point: %+v", point)
	}
	if !point.Exact {
		t.Fatal("final point must carry the exact flag")
	}
	if rest.hasNext() {
		t.Fatal("path must be exhausted")
	}
	if _, _, ok := rest.next(); ok {
		t.Fatal("next on an exhausted path must fail")
	}
}

func TestMovingDistanceDirection(t *testing.T) {
	moving := newMoving(game.Point{X: 10, Y: 10}, game.Point{X: 40, Y: 4}, false, Intermediates{})
	cur := game.Point{X: 10, Y: 10}

	xDistance, xDirection := moving.xDistanceDirection(true, cur)
	if xDistance != 30 || xDirection != 30 {
		t.Fatalf("unexpected x distance %d direction %d", xDistance, xDirection)
	}
	yDistance, yDirection := moving.yDistanceDirection(true, cur)
	if yDistance != 6 || yDirection != -6 {
		t.Fatalf("unexpected y distance %d direction %d", yDistance, yDirection)
	}
}

func TestMovingLastDestinationSkipsWaypoints(t *testing.T) {
	points := []pathing.PointWithHint{
		{Point: game.Point{X: 10, Y: 0}},
		{Point: game.Point{X: 50, Y: 20}},
	}
	intermediates := NewIntermediates(points, false)
	moving := newMoving(game.Point{}, game.Point{X: 10, Y: 0}, false, intermediates)
	if moving.lastDestination() != (game.Point{X: 50, Y: 20}) {
		t.Fatalf("unexpected last destination %v", moving.lastDestination())
	}
	if !moving.isDestinationIntermediate() {
		t.Fatal("leg toward a waypoint must be intermediate")
	}
}

func TestMoveToPicksDoubleJumpForWideGaps(t *testing.T) {
	ctx, _ := testContext(nil)
	state := &State{Config: testConfig()}

	next := updateMoveTo(ctx, state, game.Point{}, game.Point{X: 30, Y: 0}, false, Intermediates{})
	if _, ok := next.(DoubleJumping); !ok {
		t.Fatalf("expected double jumping, got %s", next)
	}
}

func TestMoveToPicksAdjustingForShortGaps(t *testing.T) {
	ctx, _ := testContext(nil)
	state := &State{Config: testConfig()}

	next := updateMoveTo(ctx, state, game.Point{}, game.Point{X: 5, Y: 0}, false, Intermediates{})
	if _, ok := next.(Adjusting); !ok {
		t.Fatalf("expected adjusting, got %s", next)
	}

	// With adjusting disabled and no exactness required, a short gap counts
	// as arrival.
	state = &State{Config: testConfig()}
	state.Config.DisableAdjusting = true
	next = updateMoveTo(ctx, state, game.Point{}, game.Point{X: 5, Y: 0}, false, Intermediates{})
	if _, ok := next.(Idle); !ok {
		t.Fatalf("expected idle, got %s", next)
	}
}

func TestMoveToPicksGrapplingForTallClimbs(t *testing.T) {
	ctx, _ := testContext(nil)
	state := &State{Config: testConfig()}
	state.Config.GrapplingKey = bridge.KeyE

	next := updateMoveTo(ctx, state, game.Point{}, game.Point{X: 0, Y: 30}, false, Intermediates{})
	if _, ok := next.(Grappling); !ok {
		t.Fatalf("expected grappling, got %s", next)
	}

	// Without the key the same climb routes through an up jump.
	state = &State{Config: testConfig()}
	next = updateMoveTo(ctx, state, game.Point{}, game.Point{X: 0, Y: 30}, false, Intermediates{})
	if _, ok := next.(UpJumping); !ok {
		t.Fatalf("expected up jumping, got %s", next)
	}
}

func TestMoveToPicksUpJumpForMediumClimbs(t *testing.T) {
	ctx, _ := testContext(nil)
	state := &State{Config: testConfig()}

	next := updateMoveTo(ctx, state, game.Point{}, game.Point{X: 0, Y: 15}, false, Intermediates{})
	if _, ok := next.(UpJumping); !ok {
		t.Fatalf("expected up jumping, got %s", next)
	}
}

func TestMoveToPicksJumpForSmallClimbs(t *testing.T) {
	ctx, _ := testContext(nil)
	state := &State{Config: testConfig()}

	next := updateMoveTo(ctx, state, game.Point{X: 100, Y: 100}, game.Point{X: 100, Y: 106}, false, Intermediates{})
	if _, ok := next.(Jumping); !ok {
		t.Fatalf("expected jumping, got %s", next)
	}
}

func TestMoveToPicksFallingForDrops(t *testing.T) {
	ctx, _ := testContext(nil)
	state := &State{Config: testConfig()}

	next := updateMoveTo(ctx, state, game.Point{X: 100, Y: 100}, game.Point{X: 100, Y: 92}, false, Intermediates{})
	falling, ok := next.(Falling)
	if !ok {
		t.Fatalf("expected falling, got %s", next)
	}
	if falling.Anchor != (game.Point{X: 100, Y: 100}) {
		t.Fatalf("fall must anchor at the start position, got %v", falling.Anchor)
	}

	// A shallower drop is not worth falling for without an auto mob target.
	next = updateMoveTo(ctx, state, game.Point{X: 100, Y: 100}, game.Point{X: 100, Y: 95}, false, Intermediates{})
	if _, ok := next.(Idle); !ok {
		t.Fatalf("expected idle, got %s", next)
	}
}

func TestMoveToAutoMobTightensThresholds(t *testing.T) {
	ctx, _ := testContext(nil)
	state := &State{Config: testConfig()}
	state.NormalAction = AutoMobAction{Key: bridge.KeyA, Position: Position{X: 16, Y: 0}}

	next := updateMoveTo(ctx, state, game.Point{}, game.Point{X: 16, Y: 0}, false, Intermediates{})
	if _, ok := next.(DoubleJumping); !ok {
		t.Fatalf("expected double jumping at the tighter threshold, got %s", next)
	}

	state = &State{Config: testConfig()}
	state.NormalAction = MoveAction{Position: Position{X: 16, Y: 0}}
	next = updateMoveTo(ctx, state, game.Point{}, game.Point{X: 16, Y: 0}, false, Intermediates{})
	if _, ok := next.(Adjusting); !ok {
		t.Fatalf("expected adjusting at the normal threshold, got %s", next)
	}
}

func TestMoveToArrivalAdvancesWaypoints(t *testing.T) {
	ctx, _ := testContext(nil)
	state := &State{Config: testConfig()}
	points := []pathing.PointWithHint{
		{Point: game.Point{X: 10, Y: 0}},
		{Point: game.Point{X: 12, Y: 0}},
	}
	intermediates := NewIntermediates(points, false)

	next := updateMoveTo(ctx, state, game.Point{X: 10, Y: 0}, game.Point{X: 10, Y: 0}, false, intermediates)
	moveTo, ok := next.(MoveTo)
	if !ok {
		t.Fatalf("expected the next leg, got %s", next)
	}
	if moveTo.Dest != (game.Point{X: 12, Y: 0}) {
		t.Fatalf("unexpected next destination %v", moveTo.Dest)
	}
}

func TestMoveToArrivalWalkAndJumpStalls(t *testing.T) {
	ctx, keys := testContext(nil)
	state := &State{Config: testConfig()}
	points := []pathing.PointWithHint{
		{Point: game.Point{X: 10, Y: 0}},
		{Point: game.Point{X: 14, Y: 5}, Hint: pathing.HintWalkAndJump},
	}
	intermediates := NewIntermediates(points, false)

	next := updateMoveTo(ctx, state, game.Point{X: 10, Y: 0}, game.Point{X: 10, Y: 0}, false, intermediates)
	stalling, ok := next.(Stalling)
	if !ok {
		t.Fatalf("expected stalling, got %s", next)
	}
	if stalling.MaxTimeout != walkAndJumpStallTimeout {
		t.Fatalf("unexpected stall timeout %d", stalling.MaxTimeout)
	}
	if !keys.Pressed(bridge.KeyRight) {
		t.Fatal("walk and jump must hold the travel direction")
	}
	if _, ok := state.stallingTimeoutState.(Jumping); !ok {
		t.Fatalf("queued resume state must be the jump, got %v", state.stallingTimeoutState)
	}
}

func TestMoveToUnstucksAfterNoProgress(t *testing.T) {
	ctx, _ := testContext(nil)
	state := &State{Config: testConfig()}

	var next Player
	for i := 0; i < unstuckCounterThreshold; i++ {
		next = updateMoveTo(ctx, state, game.Point{}, game.Point{X: 30, Y: 0}, false, Intermediates{})
	}
	if _, ok := next.(Unstucking); !ok {
		t.Fatalf("expected unstucking after %d passes, got %s", unstuckCounterThreshold, next)
	}
}

func TestAbortOnMovementRepeat(t *testing.T) {
	ctx, _ := testContext(nil)
	state := &State{Config: testConfig()}
	state.NormalAction = AutoMobAction{Key: bridge.KeyA, Position: Position{X: 30, Y: 0}}
	state.setLastMovement(movementDoubleJumping)

	var next Player
	for i := 0; i < movementRepeatLimit; i++ {
		next = updateMoveTo(ctx, state, game.Point{}, game.Point{X: 30, Y: 0}, false, Intermediates{})
	}
	if _, ok := next.(Idle); !ok {
		t.Fatalf("expected abort to idle, got %s", next)
	}
	if state.NormalAction != nil {
		t.Fatal("aborted action not cleared")
	}
	if !state.AutoMobIgnoreX(30) {
		t.Fatal("aborted auto mob x must be remembered")
	}
	if state.AutoMobIgnoreX(30 + autoMobIgnoreXsRange + 1) {
		t.Fatal("ignore neighborhood too wide")
	}
}

func TestStallingResumesQueuedState(t *testing.T) {
	ctx, _ := testContext(nil)
	state := &State{Config: testConfig()}
	state.stallingTimeoutState = Jumping{Moving: newMoving(game.Point{}, game.Point{X: 5, Y: 5}, false, Intermediates{})}

	p := Player(Stalling{MaxTimeout: 2})
	for i := 0; i < 10; i++ {
		stalling, ok := p.(Stalling)
		if !ok {
			break
		}
		p = updateStalling(ctx, state, stalling)
	}
	if _, ok := p.(Jumping); !ok {
		t.Fatalf("expected the queued jump to resume, got %s", p)
	}
	if state.stallingTimeoutState != nil {
		t.Fatal("resume state must be consumed")
	}
}

func TestAutoMobSkipMeasuresCurrentWaypoint(t *testing.T) {
	state := &State{Config: testConfig()}
	state.NormalAction = AutoMobAction{Key: bridge.KeyA, Position: Position{X: 100, Y: 50}}

	points := []pathing.PointWithHint{
		{Point: game.Point{X: 10, Y: 3}},
		{Point: game.Point{X: 100, Y: 50}},
	}
	moving := newMoving(game.Point{}, game.Point{X: 10, Y: 3}, false, NewIntermediates(points, false))
	// The current waypoint is within jump reach even though the final
	// destination is still a full double jump and climb away.
	if !moving.autoMobCanSkipCurrentDestination(state) {
		t.Fatal("a waypoint already within reach must be skippable")
	}

	far := newMoving(game.Point{}, game.Point{X: 60, Y: 3}, false, NewIntermediates(points, false))
	if far.autoMobCanSkipCurrentDestination(state) {
		t.Fatal("a waypoint a double jump away must not be skipped")
	}
}
