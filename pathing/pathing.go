// Package pathing computes intermediate waypoints over detected platform
// geometry. Only the output contract matters to the control loop: an ordered,
// bounded sequence of points with per-hop movement hints, ending at the
// destination.
package pathing

import (
	"github.com/behold-mycode/komari/game"
)

// MaxPlatforms bounds how many platforms a single map may contribute.
const MaxPlatforms = 128

// MaxPoints bounds the length of a returned path.
const MaxPoints = 16

// MovementHint tells the movement coordinator how to travel a hop.
type MovementHint int

const (
	// HintInfer lets the coordinator derive the movement from distances.
	HintInfer MovementHint = iota
	// HintWalkAndJump asks for a held directional key followed by a jump,
	// used for hops onto a platform edge slightly above and ahead.
	HintWalkAndJump
)

// Platform is one walkable segment: a horizontal span at a fixed y.
type Platform struct {
	XStart int
	XEnd   int
	Y      int
}

// Contains reports whether x lies on the platform's span.
func (p Platform) Contains(x int) bool {
	return x >= p.XStart && x <= p.XEnd
}

// PointWithHint is one hop of a computed path.
type PointWithHint struct {
	Point game.Point
	Hint  MovementHint
}

// FindPoints returns waypoints from cur to dest over the given platforms, or
// nil when no path exists. Adjacent platforms are connected when a double
// jump covers the horizontal gap and a jump/up-jump or drop covers the
// vertical one, with verticalThreshold bounding upward hops. The final entry
// is always dest's platform-projected point followed by dest itself when they
// differ.
func FindPoints(
	platforms []Platform,
	cur, dest game.Point,
	enableHint bool,
	doubleJumpThreshold, jumpThreshold, verticalThreshold int,
) []PointWithHint {
	if len(platforms) == 0 || len(platforms) > MaxPlatforms {
		return nil
	}

	from := platformIndexAt(platforms, cur)
	to := platformIndexAt(platforms, dest)
	if from < 0 || to < 0 {
		return nil
	}
	if from == to {
		return []PointWithHint{{Point: dest, Hint: HintInfer}}
	}

	// BFS over platform connectivity. Platform counts are small, so the
	// quadratic neighbor scan is fine.
	prev := make([]int, len(platforms))
	for i := range prev {
		prev[i] = -1
	}
	prev[from] = from
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			break
		}
		for next := range platforms {
			if prev[next] != -1 || !connected(platforms[cur], platforms[next], doubleJumpThreshold, verticalThreshold) {
				continue
			}
			prev[next] = cur
			queue = append(queue, next)
		}
	}
	if prev[to] == -1 {
		return nil
	}

	var chain []int
	for i := to; i != from; i = prev[i] {
		chain = append(chain, i)
	}
	if len(chain)+1 > MaxPoints {
		return nil
	}

	points := make([]PointWithHint, 0, len(chain)+1)
	at := cur
	for i := len(chain) - 1; i >= 0; i-- {
		p := platforms[chain[i]]
		hop := hopPoint(at, p)
		hint := HintInfer
		if enableHint && shouldWalkAndJump(at, hop, jumpThreshold) {
			hint = HintWalkAndJump
		}
		points = append(points, PointWithHint{Point: hop, Hint: hint})
		at = hop
	}
	if last := points[len(points)-1].Point; last != dest {
		points[len(points)-1].Point = dest
	}
	return points
}

func platformIndexAt(platforms []Platform, pos game.Point) int {
	best := -1
	bestGap := int(^uint(0) >> 1)
	for i, p := range platforms {
		if !p.Contains(pos.X) {
			continue
		}
		gap := game.AbsInt(pos.Y - p.Y)
		if gap < bestGap {
			best = i
			bestGap = gap
		}
	}
	return best
}

func connected(from, to Platform, doubleJumpThreshold, verticalThreshold int) bool {
	gapX := 0
	if to.XStart > from.XEnd {
		gapX = to.XStart - from.XEnd
	} else if from.XStart > to.XEnd {
		gapX = from.XStart - to.XEnd
	}
	if gapX >= doubleJumpThreshold {
		return false
	}
	if to.Y > from.Y && to.Y-from.Y > verticalThreshold {
		return false
	}
	return true
}

// hopPoint projects a landing point on the target platform: the overlapped x
// clamped into the platform span, at the platform's y.
func hopPoint(from game.Point, to Platform) game.Point {
	x := from.X
	if x < to.XStart {
		x = to.XStart
	} else if x > to.XEnd {
		x = to.XEnd
	}
	return game.Point{X: x, Y: to.Y}
}

func shouldWalkAndJump(from, to game.Point, jumpThreshold int) bool {
	dy := to.Y - from.Y
	return dy > 0 && dy < jumpThreshold
}
