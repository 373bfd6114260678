package world

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oomph-ac/portals/dimension"
	"github.com/oomph-ac/portals/portal"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/stretchr/testify/require"
)

var _ portal.BlockWriter = (*World)(nil)

func TestWorldSetBlock(t *testing.T) {
	w := New(dimension.Nether, nil)
	pos := cube.Pos{3, 10, -7}

	require.Equal(t, block.Air{}, w.Block(pos))
	w.SetBlock(pos, block.Stone{}, nil)
	require.Equal(t, block.Stone{}, w.Block(pos))

	w.SetBlock(pos, block.Air{}, nil)
	require.Equal(t, block.Air{}, w.Block(pos))
}

func TestWorldIgnoresBlocksOutOfRange(t *testing.T) {
	w := New(dimension.Nether, nil)
	pos := cube.Pos{0, 200, 0}
	w.SetBlock(pos, block.Stone{}, nil)
	require.Equal(t, block.Air{}, w.Block(pos))
}

func TestWorldCleanChunksNotifiesUnload(t *testing.T) {
	w := New(dimension.Overworld, nil)
	w.SetBlock(cube.Pos{0, 64, 0}, block.Stone{}, nil)
	w.SetBlock(cube.Pos{160, 64, 0}, block.Stone{}, nil)

	var unloaded []protocol.ChunkPos
	w.HandleUnload(func(pos protocol.ChunkPos) {
		unloaded = append(unloaded, pos)
	})
	w.CleanChunks(4, protocol.ChunkPos{})

	require.Equal(t, []protocol.ChunkPos{{10, 0}}, unloaded)
	require.Equal(t, block.Stone{}, w.Block(cube.Pos{0, 64, 0}))
	require.Equal(t, block.Air{}, w.Block(cube.Pos{160, 64, 0}))

	w.PurgeChunks()
	require.Len(t, unloaded, 2)
}

func TestBuilderPlacesFrameInWorld(t *testing.T) {
	w := New(dimension.Overworld, nil)
	b := portal.BuilderConfig{}.New()
	b.SetSource(dimension.Overworld.Name, w)

	w.Fill(cube.Pos{0, 64, 0}, cube.Pos{0, 66, 0}, block.Stone{})
	a, err := b.CreatePortal(portal.NewIndex(), dimension.Overworld, cube.Pos{0, 64, 0})
	require.NoError(t, err)
	require.NotEqual(t, cube.Pos{0, 64, 0}, a.Entry)

	for pos := range a.Frame() {
		require.Equal(t, block.Obsidian{}, w.Block(pos))
	}
	for pos := range a.Interior() {
		require.Equal(t, block.Air{}, w.Block(pos))
	}
}
