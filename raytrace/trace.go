// Package raytrace rasterizes a line segment onto an integer grid
// (Amanatides-Woo style DDA) with a per-cell visitor that can terminate the
// walk early. spec.md §4.B. Adapted from the teacher's
// pkg/core/math/grid.RayCast convention of pre-computing ray direction and
// stepping through bounds-checked cells with a closure callback, replacing
// its float-distance stepping with an exact integer DDA as the design notes
// in spec.md §9 ask for ("tight integer loop").
package raytrace

import "github.com/chewxy/math32"

// Point is a world-space coordinate.
type Point struct {
	X, Y float32
}

// VisitFunc is called once per cell the segment enters, in order from the
// start toward the end. remaining is the number of cells still to be
// visited after the current one. Returning true stops the walk early.
type VisitFunc func(cx, cy int32, remaining int) (stop bool)

// Trace walks every grid cell the segment from->to enters and calls visit
// for each, in order. A zero-length segment still visits the starting cell
// once. Purely horizontal or vertical segments use an infinite "next
// crossing" distance on the degenerate axis so only the other axis steps.
func Trace(from, to Point, visit VisitFunc) {
	startX := int32(math32.Floor(from.X))
	startY := int32(math32.Floor(from.Y))
	endX := int32(math32.Floor(to.X))
	endY := int32(math32.Floor(to.Y))

	dx := to.X - from.X
	dy := to.Y - from.Y

	stepX, tMaxX, tDeltaX := axisStep(dx, from.X, startX)
	stepY, tMaxY, tDeltaY := axisStep(dy, from.Y, startY)

	nx := absInt32(endX - startX)
	ny := absInt32(endY - startY)
	total := int(nx) + int(ny)

	cx, cy := startX, startY
	remaining := total

	for {
		if visit(cx, cy, remaining) {
			return
		}
		if cx == endX && cy == endY {
			return
		}

		if tMaxX < tMaxY {
			cx += stepX
			tMaxX += tDeltaX
		} else if tMaxY < tMaxX {
			cy += stepY
			tMaxY += tDeltaY
		} else {
			// Tie at a cell corner: step the x axis so the running
			// remaining-cell count (nx+ny) stays exact, the y axis catches
			// up on a following iteration.
			cx += stepX
			tMaxX += tDeltaX
		}
		remaining--
	}
}

// axisStep computes the step direction, the parametric distance to the
// first crossing, and the per-cell crossing increment along one axis. A
// zero delta (degenerate axis) yields an infinite crossing distance so the
// other axis always wins ties.
func axisStep(delta, from float32, startCell int32) (step int32, tMax, tDelta float32) {
	switch {
	case delta > 0:
		step = 1
		tDelta = 1 / delta
		tMax = (float32(startCell+1) - from) * tDelta
	case delta < 0:
		step = -1
		tDelta = 1 / -delta
		tMax = (from - float32(startCell)) * tDelta
	default:
		step = 0
		tDelta = math32.Inf(1)
		tMax = math32.Inf(1)
	}
	return
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
