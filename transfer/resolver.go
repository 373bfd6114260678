package transfer

import (
	"errors"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/portals/dimension"
	"github.com/oomph-ac/portals/entity"
	"github.com/oomph-ac/portals/oerror"
	"github.com/oomph-ac/portals/portal"
)

// Request is a request to transfer an entity from one dimension to another.
type Request struct {
	// Entity is the location of the entity in From.
	Entity entity.Location
	// From and To are the source and destination dimensions.
	From, To dimension.Dimension
}

// Config holds the settings of a Resolver.
type Config struct {
	// Index holds the portals of every dimension. A new Index is created if nil.
	Index *portal.Index
	// Teleporter is the teleporter used by Resolve. If nil, a Vanilla teleporter with default settings and
	// the Policy below is used.
	Teleporter Teleporter
	// Policy is used when an entity is placed without a portal.
	Policy Policy
	// Log is the logger used for transfer events. Nothing is logged if nil.
	Log *slog.Logger
	// Metrics receives an entry for every resolved transfer. NopMetrics is used if nil.
	Metrics MetricsCollector
}

// New creates a Resolver using the settings of the Config.
func (conf Config) New() *Resolver {
	if conf.Index == nil {
		conf.Index = portal.NewIndex()
	}
	if conf.Log == nil {
		conf.Log = slog.New(slog.DiscardHandler)
	}
	if conf.Teleporter == nil {
		conf.Teleporter = &Vanilla{
			Locator: portal.Locator{Radius: 128},
			Builder: portal.BuilderConfig{Log: conf.Log}.New(),
			Policy:  conf.Policy,
		}
	}
	if conf.Metrics == nil {
		conf.Metrics = NopMetrics{}
	}
	return &Resolver{conf: conf}
}

// Resolver resolves the arrival pose of entities transferring between dimensions. It holds no state of its
// own across calls; everything persistent lives in the portal index.
type Resolver struct {
	conf Config
}

// Index returns the portal index used by the resolver.
func (r *Resolver) Index() *portal.Index {
	return r.conf.Index
}

// Teleporter returns the teleporter used by Resolve.
func (r *Resolver) Teleporter() Teleporter {
	return r.conf.Teleporter
}

// Resolve resolves the pose of the entity in the request after its transfer, using the default teleporter
// of the resolver.
func (r *Resolver) Resolve(req Request) (Pose, error) {
	return r.ResolveWith(r.conf.Teleporter, req)
}

// ResolveWith resolves the pose of the entity in the request after its transfer, using the teleporter
// passed. A transfer within a single dimension returns the entity location unchanged. Otherwise the
// locks of both dimensions are held while the teleporter finds or builds the destination portal. If no
// portal could be found or built, a *oerror.TransferFailedError is returned and the entity should stay
// where it is.
func (r *Resolver) ResolveWith(t Teleporter, req Request) (pose Pose, err error) {
	start := time.Now()
	outcome := OutcomeFailed
	defer func() {
		r.conf.Metrics.RecordTransfer(outcome, time.Since(start))
	}()

	e, from, to := req.Entity, req.From, req.To
	if from.Same(to) {
		outcome = OutcomeIdentity
		return identityPose(e), nil
	}

	tx := r.conf.Index.Begin(from.Name, to.Name)
	defer tx.Release()

	reposition := func(spawnPortal bool) (Pose, error) {
		if !spawnPortal {
			outcome = OutcomeDirect
			return r.conf.Policy.Place(dimension.Translate(e.Position, from, to).Vec3(), e, nil), nil
		}
		a, ok := t.FindPortal(tx, from, to, e)
		if ok {
			outcome = OutcomeFound
			r.conf.Log.Debug("found portal", "from", from.Name, "to", to.Name, "entry", a.Entry)
		} else {
			var err error
			if a, err = t.CreateAndGetPortal(tx, from, to, e); err != nil {
				return Pose{}, err
			}
			outcome = OutcomeBuilt
			r.conf.Log.Info("built portal", "from", from.Name, "to", to.Name, "entry", a.Entry, "axis", a.Axis, "teleporter", t.Kind())
		}
		return t.PortalInfo(a, e), nil
	}

	// Teleporters that never call reposition place the entity themselves.
	outcome = OutcomeDirect
	pose, err = t.PlaceEntity(e, from, to, e.Yaw, reposition)
	if err != nil {
		outcome = OutcomeFailed
		return Pose{}, r.fail(from, to, e, err)
	}
	return pose, nil
}

// fail wraps the error passed into a *oerror.TransferFailedError if it is not one yet, and reports it.
func (r *Resolver) fail(from, to dimension.Dimension, e entity.Location, err error) error {
	var failed *oerror.TransferFailedError
	if !errors.As(err, &failed) {
		failed = &oerror.TransferFailedError{From: from.Name, To: to.Name, Err: err}
	}
	r.conf.Log.Warn("transfer failed", "from", from.Name, "to", to.Name, "pos", e.Position, "err", err)
	sentry.CaptureException(failed)
	return failed
}
