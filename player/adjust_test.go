package player

import (
	"testing"

	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/game"
)

func TestAdjustingWalksMediumDistances(t *testing.T) {
	ctx, keys := testContext(nil)
	pos := game.Point{X: 0, Y: 0}
	state := &State{Config: testConfig(), LastKnownPos: &pos}

	p := Player(Adjusting{Moving: newMoving(pos, game.Point{X: 5, Y: 0}, false, Intermediates{})})
	for i := 0; i < 3; i++ {
		adjusting, ok := p.(Adjusting)
		if !ok {
			t.Fatalf("left adjusting early: %s", p)
		}
		p = updateAdjusting(ctx, state, adjusting)
	}
	if !keys.Pressed(bridge.KeyRight) {
		t.Fatal("medium adjustment must hold the direction key")
	}
	if state.LastKnownDirection != DirectionRight {
		t.Fatalf("direction not tracked, got %v", state.LastKnownDirection)
	}

	// Arrived: the walk completes, then the forced timeout hands back.
	pos = game.Point{X: 5, Y: 0}
	state.LastKnownPos = &pos
	for i := 0; i < 5; i++ {
		adjusting, ok := p.(Adjusting)
		if !ok {
			break
		}
		p = updateAdjusting(ctx, state, adjusting)
	}
	if _, ok := p.(MoveTo); !ok {
		t.Fatalf("expected hand back to the coordinator, got %s", p)
	}
	if !keys.Released(bridge.KeyRight) {
		t.Fatal("arrival must release direction keys")
	}
}

func TestAdjustingNudgesExactDestinations(t *testing.T) {
	ctx, keys := testContext(nil)
	pos := game.Point{X: 0, Y: 0}
	state := &State{Config: testConfig(), LastKnownPos: &pos}

	p := Player(Adjusting{Moving: newMoving(pos, game.Point{X: 2, Y: 0}, true, Intermediates{})})
	for i := 0; i < 2; i++ {
		adjusting, ok := p.(Adjusting)
		if !ok {
			t.Fatalf("left adjusting early: %s", p)
		}
		p = updateAdjusting(ctx, state, adjusting)
	}
	if got := keys.Sent(bridge.KeyRight); got != 1 {
		t.Fatalf("expected a single nudge tap, got %d", got)
	}
	if keys.Pressed(bridge.KeyRight) {
		t.Fatal("a nudge must tap, not hold")
	}
}

func TestAdjustingFallsFirstWhenBelow(t *testing.T) {
	ctx, _ := testContext(nil)
	pos := game.Point{X: 0, Y: 20}
	state := &State{Config: testConfig(), LastKnownPos: &pos, IsStationary: true}

	next := updateAdjusting(ctx, state, Adjusting{
		Moving: newMoving(pos, game.Point{X: 5, Y: 10}, false, Intermediates{}),
	})
	falling, ok := next.(Falling)
	if !ok {
		t.Fatalf("expected fall first, got %s", next)
	}
	if !falling.TimeoutOnComplete {
		t.Fatal("composite fall must end as soon as it completes")
	}
}

func TestFallingReleasesDownKeyEarly(t *testing.T) {
	ctx, keys := testContext(nil)
	pos := game.Point{X: 10, Y: 20}
	state := &State{Config: testConfig(), LastKnownPos: &pos, IsStationary: true}

	p := Player(Falling{
		Moving: newMoving(pos, game.Point{X: 10, Y: 10}, false, Intermediates{}),
		Anchor: pos,
	})
	falling := p.(Falling)
	p = updateFalling(ctx, state, falling) // starts, presses down plus jump
	if !keys.Pressed(bridge.KeyDown) {
		t.Fatal("fall must hold down")
	}
	if keys.Sent(testConfig().JumpKey) != 1 {
		t.Fatal("fall must press jump")
	}
	for i := 0; i < fallingStopDownKeyTick; i++ {
		falling, ok := p.(Falling)
		if !ok {
			t.Fatalf("left falling early: %s", p)
		}
		p = updateFalling(ctx, state, falling)
	}
	if !keys.Released(bridge.KeyDown) {
		t.Fatal("down key must release after a few ticks")
	}
}

func TestFallingCompletesBelowAnchor(t *testing.T) {
	ctx, _ := testContext(nil)
	pos := game.Point{X: 10, Y: 20}
	state := &State{Config: testConfig(), LastKnownPos: &pos, IsStationary: true}

	p := Player(Falling{
		Moving: newMoving(pos, game.Point{X: 10, Y: 10}, false, Intermediates{}),
		Anchor: pos,
	})
	p = updateFalling(ctx, state, p.(Falling))

	dropped := game.Point{X: 10, Y: 12}
	state.LastKnownPos = &dropped
	p = updateFalling(ctx, state, p.(Falling))
	falling, ok := p.(Falling)
	if !ok {
		t.Fatalf("expected to keep settling, got %s", p)
	}
	if !falling.Moving.Completed {
		t.Fatal("fall below the anchor must count as complete")
	}
	if state.lastMovement != movementFalling {
		t.Fatalf("last movement not tracked, got %v", state.lastMovement)
	}
}
