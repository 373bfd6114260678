package util

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

// ChunkPos returns the position of the chunk the block position passed lies in.
func ChunkPos(pos cube.Pos) protocol.ChunkPos {
	return protocol.ChunkPos{int32(pos[0] >> 4), int32(pos[2] >> 4)}
}

// ChunksWithin returns the chunk positions of every chunk that intersects the horizontal square of the
// radius passed centred on pos.
func ChunksWithin(pos cube.Pos, radius int) []protocol.ChunkPos {
	return ChunksBetween(cube.Pos{pos[0] - radius, pos[1], pos[2] - radius}, cube.Pos{pos[0] + radius, pos[1], pos[2] + radius})
}

// ChunksBetween returns the chunk positions of every chunk that intersects the horizontal area spanned by
// the two corners passed. lo must not be greater than hi on either horizontal axis.
func ChunksBetween(lo, hi cube.Pos) []protocol.ChunkPos {
	minX, minZ := lo[0]>>4, lo[2]>>4
	maxX, maxZ := hi[0]>>4, hi[2]>>4

	chunks := make([]protocol.ChunkPos, 0, (maxX-minX+1)*(maxZ-minZ+1))
	for x := minX; x <= maxX; x++ {
		for z := minZ; z <= maxZ; z++ {
			chunks = append(chunks, protocol.ChunkPos{int32(x), int32(z)})
		}
	}
	return chunks
}

// ChunkCount returns the amount of chunks ChunksWithin would return for the same radius.
func ChunkCount(pos cube.Pos, radius int) int {
	w := ((pos[0]+radius)>>4 - (pos[0]-radius)>>4) + 1
	l := ((pos[2]+radius)>>4 - (pos[2]-radius)>>4) + 1
	return w * l
}
