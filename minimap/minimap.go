// Package minimap holds the latest minimap classification consumed by the
// player control loop. The detection pipeline producing it lives outside this
// module; only the data contract is defined here.
package minimap

import (
	"github.com/behold-mycode/komari/game"
	"github.com/behold-mycode/komari/pathing"
)

// Minimap is the per-tick minimap state: either still detecting, or idle with
// known geometry.
type Minimap struct {
	// Idle is non-nil once the minimap bounding box has been located and its
	// geometry extracted.
	Idle *Idle
}

// Detecting returns a minimap with no known geometry.
func Detecting() Minimap {
	return Minimap{}
}

// Idle is the minimap geometry while tracking is stable.
type Idle struct {
	// BBox is the minimap bounding box in client coordinates. Width and
	// Height double as the map's coordinate bounds for the player position.
	BBox game.Rect
	// PartiallyOverlapping is set when another UI covers part of the
	// minimap, making position reads unreliable near the edges.
	PartiallyOverlapping bool
	// Portals are the detected portal bounding boxes in map coordinates.
	Portals []game.Rect
	// Platforms are the detected walkable segments, when platform pathing
	// is enabled for the current character.
	Platforms []pathing.Platform
	// RunePos is the detected rune position, if a rune is present.
	RunePos *game.Point
	// OtherPlayers is how many other players are visible on the minimap.
	OtherPlayers int
}

// IsPositionInsidePortal reports whether pos is inside any detected portal.
func (i *Idle) IsPositionInsidePortal(pos game.Point) bool {
	for _, portal := range i.Portals {
		if portal.Contains(pos) {
			return true
		}
	}
	return false
}

// HasOtherPlayer reports whether any other player shares the map.
func (i *Idle) HasOtherPlayer() bool {
	return i.OtherPlayers > 0
}
