// Package pose implements the 2-D pose algebra shared by the motion model,
// sensor model, and ancestry tree: value-type poses, component-wise
// addition, Euclidean distance over (x,y), and polar-to-pose conversion.
// spec.md §3/§4.A.
package pose

import "github.com/chewxy/math32"

// Pose is a continuous 2-D position and heading. Poses are value objects:
// every operation here returns a freshly computed Pose rather than mutating
// a receiver, and equality is the built-in bit-exact struct comparison.
type Pose struct {
	X, Y, Theta float32
}

// Control is a pair of consecutive odometry poses.
type Control struct {
	Current, Last Pose
}

// Still reports whether the control carries no motion at all.
func (c Control) Still() bool {
	return c.Current == c.Last
}

// Add combines two poses component-wise, including the heading.
func Add(a, b Pose) Pose {
	return Pose{X: a.X + b.X, Y: a.Y + b.Y, Theta: a.Theta + b.Theta}
}

// Polar builds a pose from a radius and heading: (x,y) = (r cosθ, r sinθ),
// heading stored as θ.
func Polar(r, theta float32) Pose {
	return Pose{X: r * math32.Cos(theta), Y: r * math32.Sin(theta), Theta: theta}
}

// Advance rotates p's heading by dheading and then moves forward dist along
// the new heading, returning a freshly computed pose. This is the "advance
// in polar form" step of the odometry motion model: the displacement is
// Polar(dist, newHeading), added positionally onto p.
func Advance(p Pose, dist, dheading float32) Pose {
	heading := p.Theta + dheading
	delta := Polar(dist, heading)
	return Pose{X: p.X + delta.X, Y: p.Y + delta.Y, Theta: heading}
}

// Rotate adds a pure rotation to p's heading, leaving position unchanged.
func Rotate(p Pose, dheading float32) Pose {
	return Pose{X: p.X, Y: p.Y, Theta: p.Theta + dheading}
}

// Distance is the Euclidean distance between two poses over (x,y) only.
func Distance(a, b Pose) float32 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math32.Sqrt(dx*dx + dy*dy)
}

// Cell is an integer grid-cell coordinate reached by flooring world
// coordinates; map cells are unit-sized.
type Cell struct {
	X, Y int32
}

// CellOf floors world coordinates (x,y) into a unit-sized grid cell.
func CellOf(x, y float32) Cell {
	return Cell{X: int32(math32.Floor(x)), Y: int32(math32.Floor(y))}
}
