package portal

import (
	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
)

// mockWorld is a block source in which every block is air unless set otherwise.
type mockWorld struct {
	blocks map[cube.Pos]world.Block
}

func newMockWorld() *mockWorld {
	return &mockWorld{blocks: make(map[cube.Pos]world.Block)}
}

func (w *mockWorld) Block(pos cube.Pos) world.Block {
	if b, ok := w.blocks[pos]; ok {
		return b
	}
	return block.Air{}
}

func (w *mockWorld) SetBlock(pos cube.Pos, b world.Block, _ *world.SetOpts) {
	w.blocks[pos] = b
}

// solidWorld is a read-only block source filled with stone.
type solidWorld struct{}

func (solidWorld) Block(cube.Pos) world.Block {
	return block.Stone{}
}
