package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirection(t *testing.T) {
	l := Location{}
	dir := l.Direction()
	require.InDelta(t, 0, dir.X(), 1e-6)
	require.InDelta(t, 0, dir.Y(), 1e-6)
	require.InDelta(t, 1, dir.Z(), 1e-6)

	l.Pitch = 90
	require.InDelta(t, -1, l.Direction().Y(), 1e-6)

	l = Location{Yaw: 90}
	require.InDelta(t, -1, l.Direction().X(), 1e-6)
}

