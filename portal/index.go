package portal

import (
	"slices"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/portals/assert"
	"github.com/oomph-ac/portals/oerror"
	"github.com/oomph-ac/portals/omath"
	"github.com/oomph-ac/portals/util"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sasha-s/go-deadlock"
)

// Store is the set of index operations the locator and builder need. Both *Index and *Tx implement it.
type Store interface {
	// Lookup returns the anchor in the dimension closest to pos whose entry lies within the horizontal
	// square of the radius passed. At most one anchor is returned.
	Lookup(dim string, pos cube.Pos, radius int) (Anchor, bool)
	// Insert adds an anchor to its dimension. It returns a *oerror.ConflictError if the region of the
	// anchor overlaps the region of an anchor already present, or if an anchor with the same ID is present.
	Insert(a Anchor) error
	// Remove removes an anchor from its dimension and reports if it was present.
	Remove(a Anchor) bool
}

// Index keeps track of every known portal anchor, sharded by dimension. Every shard has its own lock, so
// that transfers between unrelated dimensions never contend.
type Index struct {
	mu     deadlock.Mutex
	shards map[string]*shard
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{shards: make(map[string]*shard)}
}

// Begin locks the shards of the dimensions passed and returns a transaction that operates on them. Shards
// are always locked in lexicographic order of dimension names, so two transactions over the same
// dimensions can never deadlock regardless of the order the dimensions were passed in. Duplicate names are
// locked once. The transaction must be released with Tx.Release.
func (i *Index) Begin(dims ...string) *Tx {
	names := slices.Clone(dims)
	slices.Sort(names)
	names = slices.Compact(names)

	tx := &Tx{held: make(map[string]*shard, len(names)), order: make([]*shard, 0, len(names))}
	for _, name := range names {
		s := i.shard(name)
		s.Lock()
		tx.held[name] = s
		tx.order = append(tx.order, s)
	}
	return tx
}

// Lookup ...
func (i *Index) Lookup(dim string, pos cube.Pos, radius int) (Anchor, bool) {
	tx := i.Begin(dim)
	defer tx.Release()
	return tx.Lookup(dim, pos, radius)
}

// Insert ...
func (i *Index) Insert(a Anchor) error {
	tx := i.Begin(a.Dimension)
	defer tx.Release()
	return tx.Insert(a)
}

// Remove ...
func (i *Index) Remove(a Anchor) bool {
	tx := i.Begin(a.Dimension)
	defer tx.Release()
	return tx.Remove(a)
}

// RemoveChunk removes every anchor in dim with any block of its region in the chunk passed, for example
// because the chunk was unloaded. It returns the amount of anchors removed.
func (i *Index) RemoveChunk(dim string, pos protocol.ChunkPos) int {
	tx := i.Begin(dim)
	defer tx.Release()
	return tx.RemoveChunk(dim, pos)
}

// Anchors returns every anchor in dim in the order they were inserted.
func (i *Index) Anchors(dim string) []Anchor {
	tx := i.Begin(dim)
	defer tx.Release()
	return tx.Anchors(dim)
}

// Len returns the total amount of anchors over all dimensions.
func (i *Index) Len() int {
	i.mu.Lock()
	shards := make([]*shard, 0, len(i.shards))
	for _, s := range i.shards {
		shards = append(shards, s)
	}
	i.mu.Unlock()

	n := 0
	for _, s := range shards {
		s.Lock()
		n += s.anchors.Len()
		s.Unlock()
	}
	return n
}

// shard returns the shard of dim, creating it if it does not yet exist.
func (i *Index) shard(dim string) *shard {
	i.mu.Lock()
	defer i.mu.Unlock()

	s, ok := i.shards[dim]
	if !ok {
		s = newShard()
		i.shards[dim] = s
	}
	return s
}

// Tx is a scoped lock over the shards of one or more dimensions. Its methods may only be used for the
// dimensions passed to Index.Begin; using any other dimension is a programming error and panics.
type Tx struct {
	held  map[string]*shard
	order []*shard
}

// Release unlocks the shards held by the transaction in reverse acquisition order. Releasing a transaction
// more than once is a no-op.
func (tx *Tx) Release() {
	for i := len(tx.order) - 1; i >= 0; i-- {
		tx.order[i].Unlock()
	}
	tx.order = nil
	clear(tx.held)
}

// Lookup ...
func (tx *Tx) Lookup(dim string, pos cube.Pos, radius int) (Anchor, bool) {
	return tx.shard(dim).lookup(pos, radius)
}

// Insert ...
func (tx *Tx) Insert(a Anchor) error {
	if a.ID == 0 {
		a.ID = a.hash()
	}
	return tx.shard(a.Dimension).insert(a)
}

// Remove ...
func (tx *Tx) Remove(a Anchor) bool {
	if a.ID == 0 {
		a.ID = a.hash()
	}
	return tx.shard(a.Dimension).remove(a.ID)
}

// RemoveChunk ...
func (tx *Tx) RemoveChunk(dim string, pos protocol.ChunkPos) int {
	s := tx.shard(dim)
	x, z := int(pos[0])<<4, int(pos[1])<<4

	var ids []uint64
	for _, c := range util.ChunksBetween(cube.Pos{x - s.span, 0, z - s.span}, cube.Pos{x + 15 + s.span, 0, z + 15 + s.span}) {
		for _, id := range s.chunks[c] {
			if e, ok := s.anchors.Get(id); ok && e.touches(pos) {
				ids = append(ids, id)
			}
		}
	}
	for _, id := range ids {
		s.remove(id)
	}
	return len(ids)
}

// Anchors ...
func (tx *Tx) Anchors(dim string) []Anchor {
	s := tx.shard(dim)
	anchors := make([]Anchor, 0, s.anchors.Len())
	for el := s.anchors.Front(); el != nil; el = el.Next() {
		anchors = append(anchors, el.Value.Anchor)
	}
	return anchors
}

func (tx *Tx) shard(dim string) *shard {
	s, ok := tx.held[dim]
	assert.IsTrue(ok, "dimension %q is not held by the transaction", dim)
	return s
}

// entry is an anchor stored in a shard together with its insertion sequence.
type entry struct {
	Anchor
	seq uint64
}

// touches returns true if any block of the region of the anchor lies in the chunk passed.
func (a Anchor) touches(pos protocol.ChunkPos) bool {
	lo, hi := util.ChunkPos(a.Min), util.ChunkPos(a.Max)
	return pos[0] >= lo[0] && pos[0] <= hi[0] && pos[1] >= lo[1] && pos[1] <= hi[1]
}

// shard holds the anchors of a single dimension.
type shard struct {
	deadlock.Mutex

	anchors *orderedmap.OrderedMap[uint64, entry]
	chunks  map[protocol.ChunkPos][]uint64
	seq     uint64
	// span is the largest horizontal distance between the entry and a corner of any anchor ever inserted.
	span int
}

func newShard() *shard {
	return &shard{
		anchors: orderedmap.NewOrderedMap[uint64, entry](),
		chunks:  make(map[protocol.ChunkPos][]uint64),
	}
}

func (s *shard) lookup(pos cube.Pos, radius int) (Anchor, bool) {
	var (
		best  entry
		found bool
		dist  int
	)
	consider := func(e entry) {
		if !omath.WithinSquare(pos, e.Entry, radius) {
			return
		}
		d := omath.DistanceSquared(pos, e.Entry)
		if !found || d < dist || (d == dist && e.seq < best.seq) {
			best, dist, found = e, d, true
		}
	}

	if util.ChunkCount(pos, radius) > s.anchors.Len() {
		for el := s.anchors.Front(); el != nil; el = el.Next() {
			consider(el.Value)
		}
	} else {
		for _, c := range util.ChunksWithin(pos, radius) {
			for _, id := range s.chunks[c] {
				if e, ok := s.anchors.Get(id); ok {
					consider(e)
				}
			}
		}
	}
	return best.Anchor, found
}

func (s *shard) insert(a Anchor) error {
	if existing, ok := s.anchors.Get(a.ID); ok {
		return &oerror.ConflictError{Dimension: a.Dimension, Existing: existing.Region(), Candidate: a.Region()}
	}
	lo := cube.Pos{a.Min[0] - s.span, a.Min[1], a.Min[2] - s.span}
	hi := cube.Pos{a.Max[0] + s.span, a.Max[1], a.Max[2] + s.span}
	for _, c := range util.ChunksBetween(lo, hi) {
		for _, id := range s.chunks[c] {
			existing, ok := s.anchors.Get(id)
			if ok && existing.Overlaps(a) {
				return &oerror.ConflictError{Dimension: a.Dimension, Existing: existing.Region(), Candidate: a.Region()}
			}
		}
	}

	s.seq++
	s.anchors.Set(a.ID, entry{Anchor: a, seq: s.seq})
	c := util.ChunkPos(a.Entry)
	s.chunks[c] = append(s.chunks[c], a.ID)
	s.span = max(s.span,
		omath.AbsInt(a.Entry[0]-a.Min[0]), omath.AbsInt(a.Max[0]-a.Entry[0]),
		omath.AbsInt(a.Entry[2]-a.Min[2]), omath.AbsInt(a.Max[2]-a.Entry[2]),
	)
	return nil
}

func (s *shard) remove(id uint64) bool {
	e, ok := s.anchors.Get(id)
	if !ok {
		return false
	}
	s.anchors.Delete(id)

	c := util.ChunkPos(e.Entry)
	ids := slices.DeleteFunc(s.chunks[c], func(v uint64) bool { return v == id })
	if len(ids) == 0 {
		delete(s.chunks, c)
	} else {
		s.chunks[c] = ids
	}
	return true
}
