package player

import (
	"testing"

	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/core"
	"github.com/behold-mycode/komari/detect"
	"github.com/behold-mycode/komari/game"
	"github.com/behold-mycode/komari/minimap"
	"github.com/behold-mycode/komari/rng"
)

// mockDetector answers perception queries from fixed test data.
type mockDetector struct {
	playerPos   game.Point
	playerFound bool

	arrowsErr    error
	arrowsResult detect.ArrowsResult

	escSettings   bool
	inCashShop    bool
	channelMenu   bool
	guideMenu     bool
	familiarMenu  bool
	guideTowns    []game.Rect
	familiarSlots []detect.FamiliarSlot
	familiarCards []game.Rect
	saveButton    game.Rect
	hasSaveButton bool
	frameW        int
	frameH        int
}

func (m *mockDetector) DetectPlayer(game.Rect) (game.Point, bool) {
	return m.playerPos, m.playerFound
}

func (m *mockDetector) DetectRuneArrows(detect.ArrowsCalibrating) (detect.ArrowsResult, error) {
	return m.arrowsResult, m.arrowsErr
}

func (m *mockDetector) DetectESCSettings() bool        { return m.escSettings }
func (m *mockDetector) DetectPlayerInCashShop() bool   { return m.inCashShop }
func (m *mockDetector) DetectChangeChannelMenu() bool  { return m.channelMenu }
func (m *mockDetector) DetectGuideMenu() bool          { return m.guideMenu }
func (m *mockDetector) DetectGuideTowns() []game.Rect  { return m.guideTowns }
func (m *mockDetector) DetectFamiliarMenu() bool       { return m.familiarMenu }
func (m *mockDetector) DetectFamiliarSlots() []detect.FamiliarSlot {
	return m.familiarSlots
}
func (m *mockDetector) DetectFamiliarCards(detect.FamiliarRarity) []game.Rect {
	return m.familiarCards
}
func (m *mockDetector) DetectFamiliarSaveButton() (game.Rect, bool) {
	return m.saveButton, m.hasSaveButton
}
func (m *mockDetector) FrameSize() (int, int) { return m.frameW, m.frameH }

func testConfig() Config {
	return Config{
		JumpKey:          bridge.KeySpace,
		InteractKey:      bridge.KeyY,
		CashShopKey:      bridge.KeyTilde,
		ChangeChannelKey: bridge.KeyO,
		MapleGuideKey:    bridge.KeyU,
	}
}

func testContext(detector *mockDetector) (*core.Context, *bridge.Recorder) {
	keys := bridge.NewRecorder()
	ctx := &core.Context{
		Keys: keys,
		RNG:  rng.New(1),
		Minimap: minimap.Minimap{Idle: &minimap.Idle{
			BBox: game.Rect{Width: 200, Height: 100},
		}},
	}
	if detector != nil {
		ctx.Detector = detector
	}
	return ctx, keys
}

func TestUpdateDetectingBecomesIdle(t *testing.T) {
	detector := &mockDetector{playerPos: game.Point{X: 50, Y: 20}, playerFound: true}
	ctx, _ := testContext(detector)
	state := &State{Config: testConfig()}

	next := Update(ctx, state, Detecting{})
	if _, ok := next.(Idle); !ok {
		t.Fatalf("expected idle, got %s", next)
	}
	if state.LastKnownPos == nil || *state.LastKnownPos != (game.Point{X: 50, Y: 20}) {
		t.Fatalf("position not tracked: %v", state.LastKnownPos)
	}
}

func TestUpdateStaysDetectingWithoutMinimap(t *testing.T) {
	ctx, _ := testContext(&mockDetector{})
	ctx.Minimap = minimap.Detecting()
	state := &State{Config: testConfig()}

	next := Update(ctx, state, Idle{})
	if _, ok := next.(Detecting); !ok {
		t.Fatalf("expected detecting, got %s", next)
	}
}

func TestUpdateUnstucksWhenMarkerLost(t *testing.T) {
	// Minimap tracks fine but the player marker is gone: a dialog most likely
	// covers it, so the machine tries to unstuck instead of re-detecting.
	detector := &mockDetector{playerFound: false}
	ctx, _ := testContext(detector)
	state := &State{Config: testConfig()}

	next := Update(ctx, state, Idle{})
	if _, ok := next.(Unstucking); !ok {
		t.Fatalf("expected unstucking, got %s", next)
	}
}

func TestUpdateMoveActionRunsToCompletion(t *testing.T) {
	detector := &mockDetector{playerPos: game.Point{X: 50, Y: 20}, playerFound: true}
	ctx, _ := testContext(detector)
	state := &State{Config: testConfig()}
	state.NormalAction = MoveAction{Position: Position{X: 52, Y: 20}}

	next := Update(ctx, state, Idle{})
	if _, ok := next.(MoveTo); !ok {
		t.Fatalf("expected moving, got %s", next)
	}
	// Already within every movement threshold, so the next tick arrives and
	// hands control back to the action, which completes.
	next = Update(ctx, state, next)
	if _, ok := next.(Idle); !ok {
		t.Fatalf("expected idle after arrival, got %s", next)
	}
	if state.NormalAction != nil {
		t.Fatalf("completed action not cleared: %v", state.NormalAction)
	}
}

func TestUpdateResetToIdle(t *testing.T) {
	detector := &mockDetector{playerPos: game.Point{X: 50, Y: 20}, playerFound: true}
	ctx, _ := testContext(detector)
	state := &State{Config: testConfig()}
	state.ResetToIdleNextUpdate = true

	next := Update(ctx, state, MoveTo{Dest: game.Point{X: 120, Y: 20}})
	if _, ok := next.(Idle); !ok {
		t.Fatalf("expected idle after reset, got %s", next)
	}
	if state.ResetToIdleNextUpdate {
		t.Fatal("reset flag must clear after one update")
	}
}

func TestCanActionOverride(t *testing.T) {
	pos := game.Point{X: 100, Y: 50}
	state := &State{Config: testConfig(), LastKnownPos: &pos}

	if !CanActionOverride(Idle{}, state) || !CanActionOverride(Detecting{}, state) {
		t.Fatal("idle states must always be overridable")
	}
	near := MoveTo{Dest: game.Point{X: 105, Y: 50}}
	if CanActionOverride(near, state) {
		t.Fatal("a nearly finished movement must not be overridable")
	}
	far := MoveTo{Dest: game.Point{X: 160, Y: 50}}
	if !CanActionOverride(far, state) {
		t.Fatal("a distant movement must be overridable")
	}
	forced := DoubleJumping{Forced: true}
	if CanActionOverride(forced, state) {
		t.Fatal("a forced double jump must not be overridable")
	}
	if CanActionOverride(Grappling{}, state) {
		t.Fatal("an in-flight grapple must not be overridable")
	}
	done := Grappling{Moving: Moving{Completed: true}}
	if !CanActionOverride(done, state) {
		t.Fatal("a completed grapple must be overridable")
	}
	if CanActionOverride(SolvingRune{}, state) {
		t.Fatal("non-movement states must not be overridable")
	}
}

func TestOnActionPriorityWinsAndClears(t *testing.T) {
	state := &State{Config: testConfig()}
	state.NormalAction = MoveAction{Position: Position{X: 10}}
	state.PriorityAction = SolveRuneAction{}

	var seen Action
	next := onAction(state, func(action Action) (Player, bool, bool) {
		seen = action
		return Idle{}, true, true
	}, func() Player {
		t.Fatal("onDefault must not run with an action queued")
		return nil
	})
	if _, ok := seen.(SolveRuneAction); !ok {
		t.Fatalf("priority action must win, saw %v", seen)
	}
	if _, ok := next.(Idle); !ok {
		t.Fatalf("expected idle, got %s", next)
	}
	if state.PriorityAction != nil {
		t.Fatal("terminal priority action not cleared")
	}
	if state.NormalAction == nil {
		t.Fatal("normal action must stay queued")
	}
}

func TestOnActionUnhandledFallsThrough(t *testing.T) {
	state := &State{Config: testConfig()}
	state.NormalAction = PanicAction{To: PanicToTown}

	next := onAction(state, func(Action) (Player, bool, bool) {
		return nil, false, false
	}, func() Player {
		return Idle{}
	})
	if _, ok := next.(Idle); !ok {
		t.Fatalf("expected fallthrough to default, got %s", next)
	}
	if state.NormalAction == nil {
		t.Fatal("unhandled action must stay queued")
	}
}

func TestAutoMobUseKeyReleasesAllMovementKeys(t *testing.T) {
	ctx, keys := testContext(nil)
	action := AutoMobAction{Key: bridge.KeyA}

	next, terminal, handled := onAutoMobUseKeyAction(ctx, action, 5, 3)
	if !handled || terminal {
		t.Fatalf("expected a handled, non-terminal transition, got terminal=%v handled=%v", terminal, handled)
	}
	if _, ok := next.(UseKey); !ok {
		t.Fatalf("expected use key, got %s", next)
	}
	for _, key := range []bridge.KeyKind{bridge.KeyUp, bridge.KeyDown, bridge.KeyLeft, bridge.KeyRight} {
		if !keys.Released(key) {
			t.Fatalf("%s must be released before the attack", key)
		}
	}
}
