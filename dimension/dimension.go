package dimension

import (
	"fmt"
	"strings"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	// Overworld is the unit-scale dimension every other scale is relative to.
	Overworld = FromWorld(world.Overworld, 1)
	// Nether is the dimension in which one block covers eight overworld blocks.
	Nether = FromWorld(world.Nether, 8)
	// End is the unit-scale end dimension.
	End = FromWorld(world.End, 1)
)

// Dimension is an independent simulation space that portals can link. Dimensions are compared by Name.
type Dimension struct {
	// Name uniquely identifies the dimension. It is also the key used to order lock acquisition.
	Name string
	// Scale is the coordinate scale of the dimension relative to a unit-scale dimension. A scale of 8 means
	// that one block in this dimension corresponds to eight blocks of a unit-scale dimension.
	Scale float64
	// Range is the vertical range of blocks in the dimension.
	Range cube.Range
}

// FromWorld returns a Dimension for a dragonfly world.Dimension, using the lower-cased dimension name and the
// scale passed.
func FromWorld(dim world.Dimension, scale float64) Dimension {
	return Dimension{Name: strings.ToLower(fmt.Sprint(dim)), Scale: scale, Range: dim.Range()}
}

// Same returns true if both dimensions share a name.
func (d Dimension) Same(o Dimension) bool {
	return d.Name == o.Name
}

// Ratio returns the factor horizontal coordinates in from are multiplied with to obtain coordinates in to.
func Ratio(from, to Dimension) float64 {
	return scaleOf(from) / scaleOf(to)
}

// Translate converts an entity position in from into the block position it corresponds to in to. Horizontal
// coordinates are scaled and floored, the vertical coordinate is kept and clamped into the range of to.
func Translate(pos mgl64.Vec3, from, to Dimension) cube.Pos {
	r := Ratio(from, to)
	return to.Clamp(cube.PosFromVec3(mgl64.Vec3{pos.X() * r, pos.Y(), pos.Z() * r}))
}

// Clamp clamps the Y coordinate of the position passed into the range of the dimension.
func (d Dimension) Clamp(pos cube.Pos) cube.Pos {
	if d.Range == (cube.Range{}) {
		return pos
	}
	pos[1] = max(d.Range.Min(), min(d.Range.Max(), pos[1]))
	return pos
}

// Contains returns true if the Y coordinate of the position passed lies within the range of the dimension.
func (d Dimension) Contains(pos cube.Pos) bool {
	if d.Range == (cube.Range{}) {
		return true
	}
	return !pos.OutOfBounds(d.Range)
}

func (d Dimension) String() string {
	return d.Name
}

func scaleOf(d Dimension) float64 {
	if d.Scale <= 0 {
		return 1
	}
	return d.Scale
}
