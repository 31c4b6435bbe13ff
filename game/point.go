package game

import "fmt"

// Point is a position on the minimap in pixel coordinates. The y axis points
// up: a larger y means the player is higher up on the map.
type Point struct {
	X int
	Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Add returns the component-wise sum of p and q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Rect is an axis-aligned rectangle anchored at its bottom-left corner.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether pt lies inside r, borders included.
func (r Rect) Contains(pt Point) bool {
	return pt.X >= r.X && pt.X <= r.X+r.Width && pt.Y >= r.Y && pt.Y <= r.Y+r.Height
}

// Center returns the middle point of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}
