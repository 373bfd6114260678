package portal

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/portals/dimension"
)

// Locator searches a destination dimension for an existing portal close to where an entity would arrive.
type Locator struct {
	// Radius is the search radius in blocks when the destination dimension has the same scale as the source,
	// or a larger one. Transfers into a dimension with a smaller scale search a proportionally smaller area.
	Radius int
}

// SearchRadius returns the radius in blocks searched in to for an entity coming from from.
func (l Locator) SearchRadius(from, to dimension.Dimension) int {
	return max(1, int(float64(l.Radius)*min(1, dimension.Ratio(from, to))))
}

// FindPortal looks for a portal in to near the position in to that corresponds with pos in from. Absence of
// a portal is a normal result and is reported through the second return value.
func (l Locator) FindPortal(s Store, from, to dimension.Dimension, pos mgl64.Vec3) (Anchor, bool) {
	return s.Lookup(to.Name, dimension.Translate(pos, from, to), l.SearchRadius(from, to))
}
