// Package declutter nudges overlapping circles apart while pulling each back
// toward its true coordinate.
//
// The solver follows the usual force-layout scheme: a decaying alpha scales
// a positional spring toward (X0, Y0), pairwise collisions are resolved on
// predicted positions, and velocities decay every tick. There is no random
// jitter; coincident points are split along a direction derived from their
// indices, so identical input always yields identical output.
package declutter

import "math"

// DefaultTicks is the number of integration steps used when ticks <= 0.
const DefaultTicks = 100

const (
	alphaMin      = 0.001
	velocityDecay = 0.4
	springForce   = 0.1
	collideForce  = 1.0
)

var alphaDecay = 1 - math.Pow(alphaMin, 1.0/300)

// Node is a placed point. X and Y are the adjusted coordinates.
type Node[T any] struct {
	Data   T
	X0, Y0 float64
	R      float64
	X, Y   float64

	vx, vy float64
}

// Repel places items at (x, y) with radius r and runs ticks steps of the
// simulation. The returned nodes are in input order.
func Repel[T any](items []T, x, y, r func(T) float64, ticks int) []Node[T] {
	nodes := make([]Node[T], len(items))
	for i, it := range items {
		x0, y0 := x(it), y(it)
		nodes[i] = Node[T]{Data: it, X0: x0, Y0: y0, R: r(it), X: x0, Y: y0}
	}
	Simulate(nodes, ticks)
	return nodes
}

// Simulate advances nodes in place.
func Simulate[T any](nodes []Node[T], ticks int) {
	if ticks <= 0 {
		ticks = DefaultTicks
	}
	alpha := 1.0
	for t := 0; t < ticks; t++ {
		alpha += (0 - alpha) * alphaDecay
		for i := range nodes {
			n := &nodes[i]
			n.vx += (n.X0 - n.X) * springForce * alpha
			n.vy += (n.Y0 - n.Y) * springForce * alpha
		}
		collide(nodes)
		for i := range nodes {
			n := &nodes[i]
			n.vx *= 1 - velocityDecay
			n.vy *= 1 - velocityDecay
			n.X += n.vx
			n.Y += n.vy
		}
	}
}

func collide[T any](nodes []Node[T]) {
	for i := range nodes {
		a := &nodes[i]
		ax, ay := a.X+a.vx, a.Y+a.vy
		ra2 := a.R * a.R
		for j := i + 1; j < len(nodes); j++ {
			b := &nodes[j]
			dx := ax - (b.X + b.vx)
			dy := ay - (b.Y + b.vy)
			r := a.R + b.R
			l := dx*dx + dy*dy
			if l >= r*r {
				continue
			}
			if dx == 0 {
				dx = jiggle(i, j)
				l += dx * dx
			}
			if dy == 0 {
				dy = jiggle(j, i)
				l += dy * dy
			}
			l = math.Sqrt(l)
			l = (r - l) / l * collideForce
			dx *= l
			dy *= l
			rb2 := b.R * b.R
			w := rb2 / (ra2 + rb2)
			if ra2+rb2 == 0 {
				w = 0.5
			}
			a.vx += dx * w
			a.vy += dy * w
			b.vx -= dx * (1 - w)
			b.vy -= dy * (1 - w)
		}
	}
}

// jiggle returns a tiny nonzero offset that depends only on the pair.
func jiggle(i, j int) float64 {
	return (float64((i*31+j*17)%7) - 2.5) * 1e-6
}
