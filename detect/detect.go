// Package detect defines the perception contract of the control loop. The
// computer-vision pipeline implementing it is an external collaborator; the
// loop only sees the latest cached frame's answers.
package detect

import (
	"github.com/behold-mycode/komari/bridge"
	"github.com/behold-mycode/komari/game"
)

// ArrowsCalibrating carries the in-progress calibration of the rune arrow
// region between detection calls. Zero value starts a fresh calibration.
type ArrowsCalibrating struct {
	// Region is the located arrow region, once found.
	Region game.Rect
	// Samples is how many frames contributed to the calibration so far.
	Samples int
}

// ArrowsResult is the outcome of one rune-arrow detection call.
type ArrowsResult struct {
	// Calibrating is the updated calibration when not yet complete.
	Calibrating ArrowsCalibrating
	// Keys holds the four arrow keys to press once Complete is true.
	Keys [4]bridge.KeyKind
	// Complete is true when Keys is valid.
	Complete bool
}

// Detector answers perception queries against the latest captured frame. All
// calls are synchronous and read cached data; they never block on capture.
type Detector interface {
	// DetectPlayer locates the player marker inside the minimap bounding
	// box, returning its map-coordinate position.
	DetectPlayer(minimapBBox game.Rect) (game.Point, bool)
	// DetectRuneArrows advances rune arrow calibration/solving.
	DetectRuneArrows(calibrating ArrowsCalibrating) (ArrowsResult, error)
	// DetectESCSettings reports whether the settings dialog is open.
	DetectESCSettings() bool
	// DetectPlayerInCashShop reports whether the cash shop UI is visible.
	DetectPlayerInCashShop() bool
	// DetectChangeChannelMenu reports whether the channel menu is open.
	DetectChangeChannelMenu() bool
	// DetectGuideMenu reports whether the town guide menu is open.
	DetectGuideMenu() bool
	// DetectGuideTowns returns clickable town entries of the guide menu.
	DetectGuideTowns() []game.Rect
	// DetectFamiliarMenu reports whether the familiar setup menu is open.
	DetectFamiliarMenu() bool
	// DetectFamiliarSlots returns the occupied setup slot boxes, paired
	// with whether each slot's familiar is fully leveled.
	DetectFamiliarSlots() []FamiliarSlot
	// DetectFamiliarCards returns selectable card boxes by rarity.
	DetectFamiliarCards(rarity FamiliarRarity) []game.Rect
	// DetectFamiliarSaveButton locates the setup save button.
	DetectFamiliarSaveButton() (game.Rect, bool)
	// FrameSize returns the captured client frame dimensions.
	FrameSize() (width, height int)
}

// FamiliarRarity classifies familiar cards for swapping.
type FamiliarRarity int

const (
	FamiliarRare FamiliarRarity = iota
	FamiliarEpic
)

// SwappableFamiliars selects which setup slots may be swapped out.
type SwappableFamiliars int

const (
	SwapAll SwappableFamiliars = iota
	SwapLast
	SwapSecondAndLast
)

// FamiliarSlot is one occupied familiar setup slot.
type FamiliarSlot struct {
	BBox    game.Rect
	Leveled bool
}
