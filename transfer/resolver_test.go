package transfer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/portals/dimension"
	"github.com/oomph-ac/portals/entity"
	"github.com/oomph-ac/portals/oerror"
	"github.com/oomph-ac/portals/portal"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var (
	dimA = dimension.Dimension{Name: "a", Scale: 1, Range: cube.Range{-64, 319}}
	dimB = dimension.Dimension{Name: "b", Scale: 8, Range: cube.Range{0, 127}}
)

// countingTeleporter wraps a Vanilla teleporter and counts how often a portal is built.
type countingTeleporter struct {
	*Vanilla
	built int
}

func (c *countingTeleporter) CreateAndGetPortal(s portal.Store, from, to dimension.Dimension, e entity.Location) (portal.Anchor, error) {
	c.built++
	return c.Vanilla.CreateAndGetPortal(s, from, to, e)
}

func newCounting(policy Policy, b *portal.Builder) *countingTeleporter {
	if b == nil {
		b = portal.BuilderConfig{}.New()
	}
	return &countingTeleporter{Vanilla: &Vanilla{Locator: portal.Locator{Radius: 128}, Builder: b, Policy: policy}}
}

type solidWorld struct{}

func (solidWorld) Block(cube.Pos) world.Block { return block.Stone{} }

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (m *recordingMetrics) RecordTransfer(o Outcome, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, o)
}

func TestResolveBuildsPortalAtScaledPosition(t *testing.T) {
	tp := newCounting(Policy{}, nil)
	r := Config{Teleporter: tp}.New()

	pose, err := r.Resolve(Request{
		Entity: entity.Location{Position: mgl64.Vec3{100, 64, 0}, Yaw: 90, Pitch: 30},
		From:   dimA,
		To:     dimB,
	})
	require.NoError(t, err)
	require.Equal(t, mgl64.Vec3{12, 64, 0}, pose.Position)
	require.Zero(t, pose.Yaw)
	require.Zero(t, pose.Pitch)
	require.False(t, pose.VelocityPreserved)
	require.NotNil(t, pose.Anchor)
	require.Equal(t, "b", pose.Anchor.Dimension)
	require.Equal(t, 1, tp.built)
}

func TestResolveIsIdempotent(t *testing.T) {
	tp := newCounting(Policy{}, nil)
	r := Config{Teleporter: tp}.New()
	req := Request{Entity: entity.Location{Position: mgl64.Vec3{100, 64, 0}}, From: dimA, To: dimB}

	first, err := r.Resolve(req)
	require.NoError(t, err)
	second, err := r.Resolve(req)
	require.NoError(t, err)

	require.Equal(t, first.Anchor.ID, second.Anchor.ID)
	require.Equal(t, first.Position, second.Position)
	require.Equal(t, 1, tp.built)
	require.Len(t, r.Index().Anchors("b"), 1)
}

func TestResolveUsesExistingPortalWithoutBuilding(t *testing.T) {
	tp := newCounting(Policy{}, nil)
	r := Config{Teleporter: tp}.New()
	existing := portal.NewAnchor("b", cube.Pos{20, 70, 5}, cube.Z, 2, 3)
	require.NoError(t, r.Index().Insert(existing))

	pose, err := r.Resolve(Request{Entity: entity.Location{Position: mgl64.Vec3{100, 64, 0}}, From: dimA, To: dimB})
	require.NoError(t, err)
	require.Equal(t, existing.Entry.Vec3(), pose.Position)
	require.Equal(t, existing.ID, pose.Anchor.ID)
	require.Zero(t, tp.built)
}

func TestResolveSameDimensionIsIdentity(t *testing.T) {
	tp := newCounting(Policy{}, nil)
	r := Config{Teleporter: tp}.New()
	e := entity.Location{Position: mgl64.Vec3{1.5, 70, -3.25}, Velocity: mgl64.Vec3{0.1, 0, 0}, Yaw: 123, Pitch: -45}

	pose, err := r.Resolve(Request{Entity: e, From: dimA, To: dimA})
	require.NoError(t, err)
	require.Equal(t, e, pose.Location())
	require.Nil(t, pose.Anchor)
	require.Zero(t, tp.built)
	require.Zero(t, r.Index().Len())
}

func TestResolvePreservesOrientationWhenConfigured(t *testing.T) {
	r := Config{Teleporter: newCounting(Policy{PreserveOrientation: true, PreserveVelocity: true}, nil)}.New()
	e := entity.Location{Position: mgl64.Vec3{100, 64, 0}, Velocity: mgl64.Vec3{0, -0.5, 1}, Yaw: 370, Pitch: 12.5}

	pose, err := r.Resolve(Request{Entity: e, From: dimA, To: dimB})
	require.NoError(t, err)
	require.Equal(t, float32(370), pose.Yaw)
	require.Equal(t, float32(12.5), pose.Pitch)
	require.True(t, pose.VelocityPreserved)
	require.Equal(t, e.Velocity, pose.Velocity)
}

func TestResolveFailsWithoutValidSite(t *testing.T) {
	b := portal.BuilderConfig{Budget: 64}.New()
	b.SetSource("b", solidWorld{})
	metrics := &recordingMetrics{}
	r := Config{Teleporter: newCounting(Policy{}, b), Metrics: metrics}.New()

	done := make(chan error, 1)
	go func() {
		_, err := r.Resolve(Request{Entity: entity.Location{Position: mgl64.Vec3{100, 64, 0}}, From: dimA, To: dimB})
		done <- err
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, oerror.ErrTransferFailed)
		require.ErrorIs(t, err, oerror.ErrNoValidSite)

		var failed *oerror.TransferFailedError
		require.True(t, errors.As(err, &failed))
		require.Equal(t, "a", failed.From)
		require.Equal(t, "b", failed.To)
	case <-time.After(10 * time.Second):
		t.Fatal("resolve did not terminate")
	}
	require.Zero(t, r.Index().Len())
	require.Equal(t, []Outcome{OutcomeFailed}, metrics.outcomes)
}

func TestResolveRecordsOutcomes(t *testing.T) {
	metrics := &recordingMetrics{}
	r := Config{Metrics: metrics}.New()
	req := Request{Entity: entity.Location{Position: mgl64.Vec3{100, 64, 0}}, From: dimA, To: dimB}

	_, err := r.Resolve(req)
	require.NoError(t, err)
	_, err = r.Resolve(req)
	require.NoError(t, err)
	_, err = r.Resolve(Request{From: dimA, To: dimA})
	require.NoError(t, err)

	require.Equal(t, []Outcome{OutcomeBuilt, OutcomeFound, OutcomeIdentity}, metrics.outcomes)
	require.Equal(t, KindVanilla, r.Teleporter().Kind())
}

func TestResolveConcurrentOppositeTransfers(t *testing.T) {
	r := Config{}.New()
	var g errgroup.Group
	for i := range 64 {
		g.Go(func() error {
			req := Request{Entity: entity.Location{Position: mgl64.Vec3{float64(i % 4 * 200), 64, 0}}, From: dimA, To: dimB}
			if i%2 == 1 {
				req.From, req.To = dimB, dimA
			}
			_, err := r.Resolve(req)
			return err
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(20 * time.Second):
		t.Fatal("concurrent transfers deadlocked")
	}

	for _, dim := range []string{"a", "b"} {
		anchors := r.Index().Anchors(dim)
		for i, a := range anchors {
			for _, o := range anchors[i+1:] {
				require.False(t, a.Overlaps(o))
			}
		}
	}
}
