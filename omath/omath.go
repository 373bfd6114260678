package omath

import (
	"iter"

	"github.com/df-mc/dragonfly/server/block/cube"
)

// Spiral yields horizontal offsets in a square spiral around the origin, ring by ring, up to and including
// the ring at the radius passed. The origin is yielded first, followed by the 8*r offsets of every ring r.
func Spiral(radius int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		if !yield(0, 0) {
			return
		}
		for r := 1; r <= radius; r++ {
			for x := -r; x <= r; x++ {
				if !yield(x, -r) {
					return
				}
			}
			for z := -r + 1; z <= r; z++ {
				if !yield(r, z) {
					return
				}
			}
			for x := r - 1; x >= -r; x-- {
				if !yield(x, r) {
					return
				}
			}
			for z := r - 1; z > -r; z-- {
				if !yield(-r, z) {
					return
				}
			}
		}
	}
}

// Alternating yields 0, 1, -1, 2, -2 and so on until n and -n have been yielded.
func Alternating(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if !yield(0) {
			return
		}
		for i := 1; i <= n; i++ {
			if !yield(i) || !yield(-i) {
				return
			}
		}
	}
}

// DistanceSquared returns the squared euclidean distance between two block positions.
func DistanceSquared(a, b cube.Pos) int {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return dx*dx + dy*dy + dz*dz
}

// WithinSquare returns true if b lies within the horizontal square of the radius passed centred on a.
func WithinSquare(a, b cube.Pos, radius int) bool {
	return AbsInt(a[0]-b[0]) <= radius && AbsInt(a[2]-b[2]) <= radius
}

// AbsInt will return the absolute value of an int.
func AbsInt(a int) int {
	if a < 0 {
		a = -a
	}
	return a
}
