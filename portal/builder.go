package portal

import (
	"errors"
	"log/slog"

	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/oomph-ac/portals/dimension"
	"github.com/oomph-ac/portals/oerror"
	"github.com/oomph-ac/portals/omath"
	"github.com/sasha-s/go-deadlock"
)

// BlockSource bridges the block storage of a dimension, used to check if a site is clear.
type BlockSource interface {
	Block(pos cube.Pos) world.Block
}

// BlockWriter is a BlockSource that may also be written to. If the source of a dimension implements it,
// the Builder places the frame of every portal it creates.
type BlockWriter interface {
	BlockSource
	SetBlock(pos cube.Pos, b world.Block, opts *world.SetOpts)
}

// BuilderConfig holds the settings of a Builder.
type BuilderConfig struct {
	// Width and Height are the size of the interior of a built portal. They default to 2 and 3.
	Width, Height int
	// Radius is the horizontal radius of the spiral searched around the requested position. It defaults to 16.
	Radius int
	// VerticalSearch is the maximum vertical offset tried in every column. It defaults to 16, a negative value
	// disables vertical searching.
	VerticalSearch int
	// Budget is the maximum amount of candidate sites checked before giving up. It defaults to 4096.
	Budget int
	// Axes are the portal axes tried for every candidate site, in order. They default to cube.X and cube.Z.
	Axes []cube.Axis
	// Log is the logger used by the Builder. Nothing is logged if nil.
	Log *slog.Logger
}

// New creates a Builder using the settings of the BuilderConfig.
func (conf BuilderConfig) New() *Builder {
	if conf.Width <= 0 {
		conf.Width = 2
	}
	if conf.Height <= 0 {
		conf.Height = 3
	}
	if conf.Radius <= 0 {
		conf.Radius = 16
	}
	if conf.VerticalSearch < 0 {
		conf.VerticalSearch = 0
	} else if conf.VerticalSearch == 0 {
		conf.VerticalSearch = 16
	}
	if conf.Budget <= 0 {
		conf.Budget = 4096
	}
	if len(conf.Axes) == 0 {
		conf.Axes = []cube.Axis{cube.X, cube.Z}
	}
	if conf.Log == nil {
		conf.Log = slog.New(slog.DiscardHandler)
	}
	return &Builder{conf: conf, sources: make(map[string]BlockSource)}
}

// Builder creates new portals in a dimension when no existing portal could be found.
type Builder struct {
	conf BuilderConfig

	mu      deadlock.RWMutex
	sources map[string]BlockSource
}

// Radius returns the horizontal radius around the requested position that built portals may end up in.
func (b *Builder) Radius() int {
	return b.conf.Radius
}

// SetSource sets the block source used to check sites in the dimension passed. Dimensions without a source
// are treated as empty.
func (b *Builder) SetSource(dim string, src BlockSource) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if src == nil {
		delete(b.sources, dim)
		return
	}
	b.sources[dim] = src
}

// CreatePortal selects the first clear site near approx in to, inserts an anchor for it into the store and
// returns it. Sites are visited in a spiral around approx, and every column is searched up and down
// alternately. The search stops after the configured budget of candidates, returning a
// *oerror.NoValidSiteError.
func (b *Builder) CreatePortal(s Store, to dimension.Dimension, approx cube.Pos) (Anchor, error) {
	b.mu.RLock()
	src := b.sources[to.Name]
	b.mu.RUnlock()

	attempts := 0
	for dx, dz := range omath.Spiral(b.conf.Radius) {
		for dy := range omath.Alternating(b.conf.VerticalSearch) {
			for _, axis := range b.conf.Axes {
				if attempts >= b.conf.Budget {
					return Anchor{}, b.noSite(to, approx, attempts)
				}
				attempts++

				a := NewAnchor(to.Name, approx.Add(cube.Pos{dx, dy, dz}), axis, b.conf.Width, b.conf.Height)
				if !siteClear(to, src, a) {
					continue
				}
				if err := s.Insert(a); err != nil {
					if errors.Is(err, oerror.ErrConflict) {
						continue
					}
					return Anchor{}, err
				}
				placeFrame(src, a)

				b.conf.Log.Debug("built portal", "dimension", to.Name, "entry", a.Entry, "axis", a.Axis, "attempts", attempts)
				return a, nil
			}
		}
	}
	return Anchor{}, b.noSite(to, approx, attempts)
}

func (b *Builder) noSite(to dimension.Dimension, approx cube.Pos, attempts int) error {
	b.conf.Log.Debug("no portal site found", "dimension", to.Name, "near", approx, "attempts", attempts)
	return &oerror.NoValidSiteError{Dimension: to.Name, Near: approx, Attempts: attempts}
}

// siteClear returns true if the whole frame of the anchor lies within the range of the dimension and every
// interior block of it is air.
func siteClear(dim dimension.Dimension, src BlockSource, a Anchor) bool {
	if !dim.Contains(a.Min) || !dim.Contains(a.Max) {
		return false
	}
	if src == nil {
		return true
	}
	for pos := range a.Interior() {
		if _, air := src.Block(pos).(block.Air); !air {
			return false
		}
	}
	return true
}

// placeFrame writes the frame of the anchor as obsidian and clears its interior, if src can be written to.
func placeFrame(src BlockSource, a Anchor) {
	w, ok := src.(BlockWriter)
	if !ok {
		return
	}
	for pos := range a.Frame() {
		w.SetBlock(pos, block.Obsidian{}, nil)
	}
	for pos := range a.Interior() {
		w.SetBlock(pos, block.Air{}, nil)
	}
}
