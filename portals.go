package portals

import (
	"fmt"
	"log/slog"

	"github.com/oomph-ac/portals/dimension"
	"github.com/oomph-ac/portals/entity"
	"github.com/oomph-ac/portals/portal"
	"github.com/oomph-ac/portals/settings"
	"github.com/oomph-ac/portals/transfer"
	"github.com/oomph-ac/portals/world"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// Service resolves transfers of entities between the dimensions configured in its settings.
type Service struct {
	log *slog.Logger

	dimensions map[string]dimension.Dimension
	builder    *portal.Builder
	resolver   *transfer.Resolver
}

// New returns a new Service using the settings passed. If log is nil, nothing is logged. If metrics is nil,
// no metrics are collected.
func New(s settings.Settings, log *slog.Logger, metrics transfer.MetricsCollector) (*Service, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	srv := &Service{log: log, dimensions: make(map[string]dimension.Dimension, len(s.Dimensions))}
	for _, d := range s.Dimensions {
		srv.dimensions[d.Name] = d.Dimension()
	}

	policy := transfer.Policy{
		PreserveOrientation: s.Placement.PreserveOrientation,
		PreserveVelocity:    s.Placement.PreserveVelocity,
	}
	srv.builder = portal.BuilderConfig{
		Width:          s.Build.Width,
		Height:         s.Build.Height,
		Radius:         s.Build.Radius,
		VerticalSearch: s.Build.VerticalSearch,
		Budget:         s.Build.Budget,
		Log:            log,
	}.New()
	srv.resolver = transfer.Config{
		Teleporter: &transfer.Vanilla{
			Locator: portal.Locator{Radius: s.Search.Radius},
			Builder: srv.builder,
			Policy:  policy,
		},
		Policy:  policy,
		Log:     log,
		Metrics: metrics,
	}.New()
	return srv, nil
}

// Dimension looks up a configured dimension by its name.
func (srv *Service) Dimension(name string) (dimension.Dimension, bool) {
	d, ok := srv.dimensions[name]
	return d, ok
}

// Request creates a transfer request for the entity passed between two configured dimensions.
func (srv *Service) Request(e entity.Location, from, to string) (transfer.Request, error) {
	src, ok := srv.Dimension(from)
	if !ok {
		return transfer.Request{}, fmt.Errorf("unknown dimension %q", from)
	}
	dst, ok := srv.Dimension(to)
	if !ok {
		return transfer.Request{}, fmt.Errorf("unknown dimension %q", to)
	}
	return transfer.Request{Entity: e, From: src, To: dst}, nil
}

// Resolve resolves the pose of an entity after its transfer using the vanilla teleporter.
func (srv *Service) Resolve(req transfer.Request) (transfer.Pose, error) {
	return srv.resolver.Resolve(req)
}

// ResolveWith resolves the pose of an entity after its transfer using a custom teleporter.
func (srv *Service) ResolveWith(t transfer.Teleporter, req transfer.Request) (transfer.Pose, error) {
	return srv.resolver.ResolveWith(t, req)
}

// Register adds a portal the host already knows about, for example one loaded from a saved world.
func (srv *Service) Register(a portal.Anchor) error {
	if _, ok := srv.dimensions[a.Dimension]; !ok {
		return fmt.Errorf("unknown dimension %q", a.Dimension)
	}
	return srv.resolver.Index().Insert(a)
}

// Invalidate forgets every portal with any block of its frame in the chunk passed. It returns the amount of
// portals removed.
func (srv *Service) Invalidate(dim string, pos protocol.ChunkPos) int {
	n := srv.resolver.Index().RemoveChunk(dim, pos)
	if n > 0 {
		srv.log.Debug("invalidated portals", "dim", dim, "chunk", pos, "count", n)
	}
	return n
}

// SetSource sets the blocks the builder checks for clear sites in the dimension passed.
func (srv *Service) SetSource(dim string, src portal.BlockSource) {
	srv.builder.SetSource(dim, src)
}

// Attach uses the world passed as the block source of its dimension. Portals in chunks unloaded from the
// world are invalidated.
func (srv *Service) Attach(w *world.World) error {
	dim := w.Dimension().Name
	if _, ok := srv.dimensions[dim]; !ok {
		return fmt.Errorf("unknown dimension %q", dim)
	}
	srv.SetSource(dim, w)
	w.HandleUnload(func(pos protocol.ChunkPos) {
		srv.Invalidate(dim, pos)
	})
	return nil
}

// Anchors returns every portal known in the dimension passed.
func (srv *Service) Anchors(dim string) []portal.Anchor {
	return srv.resolver.Index().Anchors(dim)
}
