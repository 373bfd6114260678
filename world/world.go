package world

import (
	"log/slog"

	"github.com/chewxy/math32"
	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/oomph-ac/portals/dimension"
	"github.com/oomph-ac/portals/util"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sasha-s/go-deadlock"
)

// World is an in-memory block store for a single dimension. Blocks that were never set are air. It
// implements portal.BlockWriter, so portals built in it get their frame placed.
type World struct {
	dim dimension.Dimension

	chunks   map[protocol.ChunkPos]map[cube.Pos]world.Block
	unloaded []func(pos protocol.ChunkPos)

	log *slog.Logger

	deadlock.RWMutex
}

// New returns an empty World for the dimension passed. If log is nil, nothing is logged.
func New(dim dimension.Dimension, log *slog.Logger) *World {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &World{
		dim:    dim,
		chunks: make(map[protocol.ChunkPos]map[cube.Pos]world.Block),
		log:    log,
	}
}

// Dimension returns the dimension the world holds the blocks of.
func (w *World) Dimension() dimension.Dimension {
	return w.dim
}

// HandleUnload adds a function that is called with the position of every chunk unloaded by CleanChunks or
// PurgeChunks. It is called without the world being locked.
func (w *World) HandleUnload(f func(pos protocol.ChunkPos)) {
	w.Lock()
	defer w.Unlock()
	w.unloaded = append(w.unloaded, f)
}

// Block returns the block at the position passed.
func (w *World) Block(pos cube.Pos) world.Block {
	if !w.dim.Contains(pos) {
		return block.Air{}
	}

	w.RLock()
	defer w.RUnlock()
	if b, ok := w.chunks[util.ChunkPos(pos)][pos]; ok {
		return b
	}
	return block.Air{}
}

// SetBlock sets the block at the position passed. Positions outside the range of the dimension are ignored.
func (w *World) SetBlock(pos cube.Pos, b world.Block, _ *world.SetOpts) {
	if !w.dim.Contains(pos) {
		return
	}
	chunkPos := util.ChunkPos(pos)

	w.Lock()
	defer w.Unlock()

	if _, air := b.(block.Air); air {
		delete(w.chunks[chunkPos], pos)
		return
	}
	if w.chunks[chunkPos] == nil {
		w.chunks[chunkPos] = make(map[cube.Pos]world.Block)
	}
	w.chunks[chunkPos][pos] = b
}

// Fill sets every block in the box between lo and hi inclusive to b.
func (w *World) Fill(lo, hi cube.Pos, b world.Block) {
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				w.SetBlock(cube.Pos{x, y, z}, b, nil)
			}
		}
	}
}

// CleanChunks unloads every chunk further than radius chunks away from the chunk position passed.
func (w *World) CleanChunks(radius int32, pos protocol.ChunkPos) {
	w.Lock()
	var removed []protocol.ChunkPos
	for chunkPos := range w.chunks {
		if !chunkInRange(radius, chunkPos, pos) {
			delete(w.chunks, chunkPos)
			removed = append(removed, chunkPos)
		}
	}
	w.Unlock()

	if len(removed) > 0 {
		w.log.Debug("removed chunks out of range", "dimension", w.dim.Name, "count", len(removed), "radius", radius, "pos", pos)
	}
	w.notify(removed)
}

// PurgeChunks removes all chunks from the world.
func (w *World) PurgeChunks() {
	w.Lock()
	removed := make([]protocol.ChunkPos, 0, len(w.chunks))
	for chunkPos := range w.chunks {
		removed = append(removed, chunkPos)
	}
	clear(w.chunks)
	w.Unlock()

	w.notify(removed)
}

func (w *World) notify(removed []protocol.ChunkPos) {
	w.RLock()
	handlers := w.unloaded
	w.RUnlock()

	for _, pos := range removed {
		for _, f := range handlers {
			f(pos)
		}
	}
}

// chunkInRange returns true if the chunk position is within the given radius of the chunk position.
func chunkInRange(radius int32, chunkPos, pos protocol.ChunkPos) bool {
	diffX, diffZ := pos[0]-chunkPos[0], pos[1]-chunkPos[1]
	dist := math32.Sqrt(float32(diffX*diffX) + float32(diffZ*diffZ))

	return int32(dist) <= radius
}
