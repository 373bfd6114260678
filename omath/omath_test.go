package omath

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/stretchr/testify/require"
)

func TestSpiralVisitsEveryOffsetOnce(t *testing.T) {
	const radius = 4
	seen := make(map[[2]int]struct{})
	first := true
	for dx, dz := range Spiral(radius) {
		if first {
			require.Equal(t, [2]int{0, 0}, [2]int{dx, dz})
			first = false
		}
		require.LessOrEqual(t, AbsInt(dx), radius)
		require.LessOrEqual(t, AbsInt(dz), radius)
		_, dup := seen[[2]int{dx, dz}]
		require.False(t, dup, "offset %d,%d yielded twice", dx, dz)
		seen[[2]int{dx, dz}] = struct{}{}
	}
	require.Len(t, seen, (2*radius+1)*(2*radius+1))
}

func TestSpiralRingsAreOrdered(t *testing.T) {
	ring := 0
	for dx, dz := range Spiral(3) {
		r := max(AbsInt(dx), AbsInt(dz))
		require.GreaterOrEqual(t, r, ring)
		ring = r
	}
}

func TestSpiralStopsEarly(t *testing.T) {
	n := 0
	for range Spiral(100) {
		n++
		if n == 5 {
			break
		}
	}
	require.Equal(t, 5, n)
}

func TestAlternating(t *testing.T) {
	var got []int
	for v := range Alternating(2) {
		got = append(got, v)
	}
	require.Equal(t, []int{0, 1, -1, 2, -2}, got)
}

func TestWithinSquare(t *testing.T) {
	require.True(t, WithinSquare(cube.Pos{0, 0, 0}, cube.Pos{16, 200, -16}, 16))
	require.False(t, WithinSquare(cube.Pos{0, 0, 0}, cube.Pos{17, 0, 0}, 16))
	require.Equal(t, 14, DistanceSquared(cube.Pos{1, 2, 3}, cube.Pos{0, 0, 0}))
}
