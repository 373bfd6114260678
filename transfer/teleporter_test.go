package transfer

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/portals/dimension"
	"github.com/oomph-ac/portals/entity"
	"github.com/oomph-ac/portals/oerror"
	"github.com/oomph-ac/portals/portal"
	"github.com/stretchr/testify/require"
)

// fixedTeleporter always sends entities to the same portal, which it registers on first use.
type fixedTeleporter struct {
	Defaults
	anchor portal.Anchor
}

func (f *fixedTeleporter) FindPortal(s portal.Store, _, to dimension.Dimension, _ entity.Location) (portal.Anchor, bool) {
	return s.Lookup(to.Name, f.anchor.Entry, 0)
}

func (f *fixedTeleporter) CreateAndGetPortal(s portal.Store, _, _ dimension.Dimension, _ entity.Location) (portal.Anchor, error) {
	return f.anchor, s.Insert(f.anchor)
}

// directTeleporter places entities without a portal.
type directTeleporter struct {
	fixedTeleporter
}

func (directTeleporter) PlaceEntity(_ entity.Location, _, _ dimension.Dimension, _ float32, reposition Reposition) (Pose, error) {
	return reposition(false)
}

func TestDefaultsZeroOrientation(t *testing.T) {
	tp := &fixedTeleporter{anchor: portal.NewAnchor("b", cube.Pos{0, 80, 0}, cube.X, 2, 3)}
	require.Equal(t, KindCustom, tp.Kind())

	r := Config{}.New()
	pose, err := r.ResolveWith(tp, Request{
		Entity: entity.Location{Position: mgl64.Vec3{5000, 64, 5000}, Yaw: 45, Pitch: 45, Velocity: mgl64.Vec3{1, 1, 1}},
		From:   dimA,
		To:     dimB,
	})
	require.NoError(t, err)
	require.Equal(t, mgl64.Vec3{0, 80, 0}, pose.Position)
	require.Zero(t, pose.Yaw)
	require.Zero(t, pose.Pitch)
	require.Equal(t, mgl64.Vec3{}, pose.Velocity)
	require.Equal(t, tp.anchor.ID, pose.Anchor.ID)

	// The default teleporter of the resolver is not affected by the custom one.
	require.Equal(t, KindVanilla, r.Teleporter().Kind())
}

func TestRepositionWithoutPortal(t *testing.T) {
	r := Config{Policy: Policy{PreserveOrientation: true}}.New()
	pose, err := r.ResolveWith(&directTeleporter{}, Request{
		Entity: entity.Location{Position: mgl64.Vec3{-100, 64, 16}, Yaw: 10},
		From:   dimA,
		To:     dimB,
	})
	require.NoError(t, err)
	require.Equal(t, mgl64.Vec3{-13, 64, 2}, pose.Position)
	require.Equal(t, float32(10), pose.Yaw)
	require.Nil(t, pose.Anchor)
	require.Zero(t, r.Index().Len())
}

func TestCustomTeleporterErrorsBecomeTransferFailures(t *testing.T) {
	existing := portal.NewAnchor("b", cube.Pos{0, 80, 0}, cube.X, 2, 3)
	r := Config{}.New()
	require.NoError(t, r.Index().Insert(portal.NewAnchor("b", cube.Pos{1, 81, 0}, cube.X, 2, 3)))

	_, err := r.ResolveWith(&fixedTeleporter{anchor: existing}, Request{From: dimA, To: dimB})
	require.ErrorIs(t, err, oerror.ErrTransferFailed)
	require.ErrorIs(t, err, oerror.ErrConflict)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "vanilla", KindVanilla.String())
	require.Equal(t, "custom", KindCustom.String())
	require.Equal(t, "built", OutcomeBuilt.String())
}
