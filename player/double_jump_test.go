package player

import (
	"testing"

	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/game"
)

func TestDoubleJumpingPressesTowardDestination(t *testing.T) {
	ctx, keys := testContext(nil)
	pos := game.Point{X: 0, Y: 0}
	state := &State{Config: testConfig(), LastKnownPos: &pos}

	p := Player(DoubleJumping{Moving: newMoving(pos, game.Point{X: 60, Y: 0}, false, Intermediates{})})
	var sawMoveTo bool
	for i := 0; i < 20; i++ {
		jumping, ok := p.(DoubleJumping)
		if !ok {
			_, sawMoveTo = p.(MoveTo)
			break
		}
		p = updateDoubleJumping(ctx, state, jumping)
	}
	if !sawMoveTo {
		t.Fatalf("stalled double jump must hand back to the coordinator, got %s", p)
	}
	if !keys.Pressed(bridge.KeyRight) {
		t.Fatal("must hold the travel direction")
	}
	if keys.Sent(testConfig().JumpKey) == 0 {
		t.Fatal("must press the jump key")
	}
	if state.LastKnownDirection != DirectionRight {
		t.Fatalf("direction not tracked, got %v", state.LastKnownDirection)
	}
	if !keys.Released(bridge.KeyRight) {
		t.Fatal("handing back must release direction keys")
	}
}

func TestDoubleJumpingChainsIntoGrappling(t *testing.T) {
	ctx, _ := testContext(nil)
	pos := game.Point{X: 0, Y: 0}
	state := &State{Config: testConfig(), LastKnownPos: &pos}
	state.Config.GrapplingKey = bridge.KeyE

	d := DoubleJumping{Moving: Moving{
		Pos:       pos,
		Dest:      game.Point{X: 2, Y: 30},
		Completed: true,
		Timeout:   Timeout{Started: true},
	}}
	next := updateDoubleJumping(ctx, state, d)
	grappling, ok := next.(Grappling)
	if !ok {
		t.Fatalf("expected chain into grappling, got %s", next)
	}
	if grappling.Moving.Completed {
		t.Fatal("chained grapple must restart the movement")
	}
	if grappling.Moving.Timeout.Started {
		t.Fatal("chained grapple must restart the timeout")
	}
}

func TestDoubleJumpingForcedWaitsForNearStationary(t *testing.T) {
	ctx, keys := testContext(nil)
	pos := game.Point{X: 10, Y: 10}
	state := &State{Config: testConfig(), LastKnownPos: &pos}
	state.Velocity[0] = 3

	d := DoubleJumping{
		Moving:                newMoving(pos, pos, false, Intermediates{}),
		Forced:                true,
		RequireNearStationary: true,
	}
	next := updateDoubleJumping(ctx, state, d)
	if _, ok := next.(DoubleJumping); !ok {
		t.Fatalf("expected to keep waiting, got %s", next)
	}
	if len(keys.Commands) != 0 {
		t.Fatalf("must not send input while waiting, got %+v", keys.Commands)
	}
}

func TestDoubleJumpingForcedDoesNotSteer(t *testing.T) {
	ctx, keys := testContext(nil)
	pos := game.Point{X: 10, Y: 10}
	state := &State{Config: testConfig(), LastKnownPos: &pos}

	d := DoubleJumping{
		Moving: Moving{Pos: pos, Dest: game.Point{X: 40, Y: 10}, Timeout: Timeout{Started: true}},
		Forced: true,
	}
	next := updateDoubleJumping(ctx, state, d)
	if _, ok := next.(DoubleJumping); !ok {
		t.Fatalf("expected to keep jumping, got %s", next)
	}
	if keys.Pressed(bridge.KeyLeft) || keys.Pressed(bridge.KeyRight) {
		t.Fatal("a forced jump without a teleport key must go wherever the player faces")
	}
	if keys.Sent(testConfig().JumpKey) != 1 {
		t.Fatalf("expected one jump press, got %d", keys.Sent(testConfig().JumpKey))
	}
}

func TestDoubleJumpingReleasesOppositeDirection(t *testing.T) {
	ctx, keys := testContext(nil)
	pos := game.Point{X: 0, Y: 0}
	state := &State{Config: testConfig(), LastKnownPos: &pos}

	d := DoubleJumping{Moving: Moving{
		Pos:     pos,
		Dest:    game.Point{X: 60, Y: 0},
		Timeout: Timeout{Started: true},
	}}
	next := updateDoubleJumping(ctx, state, d)
	if _, ok := next.(DoubleJumping); !ok {
		t.Fatalf("expected to keep jumping, got %s", next)
	}
	if !keys.Pressed(bridge.KeyRight) {
		t.Fatal("must hold the travel direction")
	}
	if !keys.Released(bridge.KeyLeft) {
		t.Fatal("must release a possibly held opposite direction")
	}
}

func TestDoubleJumpingStartTickDefersActions(t *testing.T) {
	ctx, _ := testContext(nil)
	pos := game.Point{X: 120, Y: 50}
	state := &State{Config: testConfig(), LastKnownPos: &pos}
	// Already past the bound's right edge, which would terminate the action
	// once the state is running.
	state.NormalAction = PingPongAction{
		Key:       bridge.KeyA,
		Bound:     game.Rect{X: 0, Y: 40, Width: 100, Height: 20},
		Direction: PingPongRight,
	}

	d := DoubleJumping{Moving: newMoving(pos, pos, false, Intermediates{}), Forced: true}
	next := updateDoubleJumping(ctx, state, d)
	if _, ok := next.(DoubleJumping); !ok {
		t.Fatalf("the start tick must only press the entry keys, got %s", next)
	}
	if state.NormalAction == nil {
		t.Fatal("the start tick must not consume the queued action")
	}
}

func TestDoubleJumpingPingPongReentersBound(t *testing.T) {
	ctx, _ := testContext(nil)
	bound := game.Rect{X: 0, Y: 50, Width: 100, Height: 30}
	action := PingPongAction{Key: bridge.KeyA, Bound: bound, Direction: PingPongRight}
	state := &State{Config: testConfig()}
	state.Config.GrapplingKey = bridge.KeyE

	below := game.Point{X: 40, Y: 20}
	moving := newMoving(below, below, false, Intermediates{}).withCompleted(true)
	next, terminal, handled := onPingPongUseKeyAfterDoubleJump(ctx, state, moving, below, action)
	if !handled || terminal {
		t.Fatalf("expected a handled, non-terminal follow-up, got terminal=%v handled=%v", terminal, handled)
	}
	grappling, ok := next.(Grappling)
	if !ok {
		t.Fatalf("a player below the bound must climb back in, got %s", next)
	}
	if grappling.Moving.Dest.Y != bound.Y+bound.Height {
		t.Fatalf("climb must target the bound's top, got %v", grappling.Moving.Dest)
	}

	state.Config.GrapplingKey = bridge.KeyNone
	next, _, _ = onPingPongUseKeyAfterDoubleJump(ctx, state, moving, below, action)
	if _, ok := next.(UpJumping); !ok {
		t.Fatalf("without a grapple key the climb up jumps, got %s", next)
	}

	above := game.Point{X: 40, Y: 95}
	moving = newMoving(above, above, false, Intermediates{}).withCompleted(true)
	next, _, _ = onPingPongUseKeyAfterDoubleJump(ctx, state, moving, above, action)
	falling, ok := next.(Falling)
	if !ok {
		t.Fatalf("a player above the bound must fall back in, got %s", next)
	}
	if falling.Moving.Dest.Y != bound.Y {
		t.Fatalf("fall must target the bound's bottom, got %v", falling.Moving.Dest)
	}
}

func TestDoubleJumpingPingPongRandomizeBias(t *testing.T) {
	ctx, _ := testContext(nil)
	bound := game.Rect{X: 0, Y: 20, Width: 200, Height: 60}
	action := PingPongAction{Key: bridge.KeyA, Bound: bound, Direction: PingPongRight}
	state := &State{Config: testConfig()}
	state.Config.GrapplingKey = bridge.KeyE

	// Inside the bound below the middle the detour only ever goes up; above
	// the middle only ever down.
	for x := 0; x < 150; x++ {
		ctx.Tick++
		low := game.Point{X: x, Y: bound.Y + 5}
		moving := newMoving(low, low, false, Intermediates{}).withCompleted(true)
		next, _, _ := onPingPongUseKeyAfterDoubleJump(ctx, state, moving, low, action)
		if _, ok := next.(Falling); ok {
			t.Fatalf("a player in the lower half must never detour down, x=%d", x)
		}

		high := game.Point{X: x, Y: bound.Y + bound.Height - 5}
		moving = newMoving(high, high, false, Intermediates{}).withCompleted(true)
		next, _, _ = onPingPongUseKeyAfterDoubleJump(ctx, state, moving, high, action)
		switch next.(type) {
		case Grappling, UpJumping:
			t.Fatalf("a player in the upper half must never detour up, x=%d", x)
		}
	}

	// Near the middle the follow-up always attacks in place.
	mid := game.Point{X: 50, Y: bound.Center().Y}
	moving := newMoving(mid, mid, false, Intermediates{}).withCompleted(true)
	next, _, _ := onPingPongUseKeyAfterDoubleJump(ctx, state, moving, mid, action)
	if _, ok := next.(UseKey); !ok {
		t.Fatalf("near the middle the key fires without detours, got %s", next)
	}
}

func TestDoubleJumpingKeyActionFiresWhenCompleted(t *testing.T) {
	ctx, _ := testContext(nil)
	pos := game.Point{X: 50, Y: 20}
	state := &State{Config: testConfig(), LastKnownPos: &pos}
	state.NormalAction = KeyAction{Key: bridge.KeyA, With: WithDoubleJump}

	d := DoubleJumping{
		Moving: Moving{
			Pos:       pos,
			Dest:      pos,
			Completed: true,
			Timeout:   Timeout{Started: true},
		},
		Forced: true,
	}
	next := updateDoubleJumping(ctx, state, d)
	useKey, ok := next.(UseKey)
	if !ok {
		t.Fatalf("expected use key, got %s", next)
	}
	if useKey.Key != bridge.KeyA {
		t.Fatalf("unexpected key %v", useKey.Key)
	}
}
