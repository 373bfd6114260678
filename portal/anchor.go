package portal

import (
	"encoding/binary"
	"iter"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oomph-ac/portals/assert"
	"github.com/zeebo/xxh3"
)

// Anchor is a registered portal frame in a dimension that entities can be teleported to.
type Anchor struct {
	// ID identifies the anchor. It is derived from the dimension, entry point and axis of the anchor, so that
	// the same portal always has the same ID.
	ID uint64
	// Dimension is the name of the dimension the portal is in.
	Dimension string
	// Min and Max are the inclusive corners of the region occupied by the portal frame.
	Min, Max cube.Pos
	// Axis is the horizontal axis the portal frame extends along. It is either cube.X or cube.Z.
	Axis cube.Axis
	// Entry is the block an entity arriving through the portal is placed at. It is the bottom interior block
	// of the frame closest to Min.
	Entry cube.Pos
}

// NewAnchor returns an anchor for a portal in dim with its bottom interior corner at entry. The interior of
// the portal spans width blocks along axis and height blocks upwards, and is surrounded by a one block
// thick frame.
func NewAnchor(dim string, entry cube.Pos, axis cube.Axis, width, height int) Anchor {
	assert.IsTrue(axis == cube.X || axis == cube.Z, "portal axis must be horizontal, got %v", axis)
	assert.IsTrue(width > 0 && height > 0, "portal interior must not be empty, got %dx%d", width, height)

	u := axisUnit(axis)
	a := Anchor{
		Dimension: dim,
		Min:       cube.Pos{entry[0] - u[0], entry[1] - 1, entry[2] - u[2]},
		Max:       cube.Pos{entry[0] + u[0]*width, entry[1] + height, entry[2] + u[2]*width},
		Axis:      axis,
		Entry:     entry,
	}
	a.ID = a.hash()
	return a
}

// BBox returns the region of the anchor as a bounding box that covers every block of the frame.
func (a Anchor) BBox() cube.BBox {
	return cube.Box(
		float64(a.Min[0]), float64(a.Min[1]), float64(a.Min[2]),
		float64(a.Max[0]+1), float64(a.Max[1]+1), float64(a.Max[2]+1),
	)
}

// Overlaps returns true if the regions of both anchors share at least one block in the same dimension.
func (a Anchor) Overlaps(o Anchor) bool {
	return a.Dimension == o.Dimension && a.BBox().IntersectsWith(o.BBox())
}

// Region returns the corners of the region of the anchor.
func (a Anchor) Region() [2]cube.Pos {
	return [2]cube.Pos{a.Min, a.Max}
}

// Interior yields every block position inside the frame of the anchor.
func (a Anchor) Interior() iter.Seq[cube.Pos] {
	return func(yield func(cube.Pos) bool) {
		u := axisUnit(a.Axis)
		for y := a.Min[1] + 1; y < a.Max[1]; y++ {
			for p := a.Min.Add(u); p[0] <= a.Max[0]-u[0] && p[2] <= a.Max[2]-u[2]; p = p.Add(u) {
				if !yield(cube.Pos{p[0], y, p[2]}) {
					return
				}
			}
		}
	}
}

// Frame yields every block position of the frame surrounding the interior of the anchor.
func (a Anchor) Frame() iter.Seq[cube.Pos] {
	return func(yield func(cube.Pos) bool) {
		u := axisUnit(a.Axis)
		for y := a.Min[1]; y <= a.Max[1]; y++ {
			edgeY := y == a.Min[1] || y == a.Max[1]
			for p := a.Min; p[0] <= a.Max[0] && p[2] <= a.Max[2]; p = p.Add(u) {
				edge := edgeY || p == cube.Pos{a.Min[0], p[1], a.Min[2]} || p == cube.Pos{a.Max[0], p[1], a.Max[2]}
				if edge && !yield(cube.Pos{p[0], y, p[2]}) {
					return
				}
			}
		}
	}
}

// hash derives the ID of the anchor from its dimension, entry point and axis.
func (a Anchor) hash() uint64 {
	buf := make([]byte, 0, len(a.Dimension)+8*4)
	buf = append(buf, a.Dimension...)
	for _, v := range a.Entry {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(v))
	}
	buf = binary.LittleEndian.AppendUint64(buf, uint64(a.Axis))
	return xxh3.Hash(buf)
}

// axisUnit returns the unit step along the horizontal axis passed.
func axisUnit(axis cube.Axis) cube.Pos {
	if axis == cube.Z {
		return cube.Pos{0, 0, 1}
	}
	return cube.Pos{1, 0, 0}
}
