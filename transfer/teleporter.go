package transfer

import (
	"github.com/oomph-ac/portals/dimension"
	"github.com/oomph-ac/portals/entity"
	"github.com/oomph-ac/portals/portal"
)

// Kind tags a Teleporter as the built-in implementation or a custom one.
type Kind uint8

const (
	// KindCustom is reported by every teleporter that is not the built-in one.
	KindCustom Kind = iota
	// KindVanilla is reported by the built-in, locator and builder backed teleporter.
	KindVanilla
)

func (k Kind) String() string {
	if k == KindVanilla {
		return "vanilla"
	}
	return "custom"
}

// Reposition finds or creates the destination portal and returns the pose of the entity at it. If
// spawnPortal is false, no portal is searched for or created and the entity is placed directly at the
// position in the destination dimension corresponding with its current position.
type Reposition func(spawnPortal bool) (Pose, error)

// Teleporter customises how an entity is placed when it changes dimension. Implementations that only
// need to change some of the behaviour should embed Defaults.
//
// The portal.Store passed holds the locks of both the source and the destination dimension for the
// duration of the transfer.
type Teleporter interface {
	// Kind reports if the teleporter is the built-in implementation.
	Kind() Kind
	// FindPortal finds a portal in to that the entity can be teleported to. The second return value is
	// false if no portal was found.
	FindPortal(s portal.Store, from, to dimension.Dimension, e entity.Location) (portal.Anchor, bool)
	// CreateAndGetPortal creates a portal in to for the entity and returns it. It is only called if
	// FindPortal did not find a portal.
	CreateAndGetPortal(s portal.Store, from, to dimension.Dimension, e entity.Location) (portal.Anchor, error)
	// PortalInfo returns the pose of the entity when arriving through the anchor passed.
	PortalInfo(a portal.Anchor, e entity.Location) Pose
	// PlaceEntity places the entity in the destination dimension. yaw is the yaw of the entity before the
	// transfer. Implementations call reposition to run the portal search.
	PlaceEntity(e entity.Location, from, to dimension.Dimension, yaw float32, reposition Reposition) (Pose, error)
}

// Defaults implements the optional parts of a Teleporter. It reports itself as a custom teleporter, places
// entities at the entry of the portal with zero orientation and velocity, and always runs the portal search.
type Defaults struct{}

// Kind ...
func (Defaults) Kind() Kind { return KindCustom }

// PortalInfo ...
func (Defaults) PortalInfo(a portal.Anchor, _ entity.Location) Pose {
	return Pose{Position: a.Entry.Vec3(), Anchor: &a}
}

// PlaceEntity ...
func (Defaults) PlaceEntity(_ entity.Location, _, _ dimension.Dimension, _ float32, reposition Reposition) (Pose, error) {
	return reposition(true)
}

// Vanilla is the built-in Teleporter. It searches the destination dimension using a portal.Locator, builds a
// new portal using a portal.Builder if none was found, and places the entity at the entry of the portal
// according to its Policy.
type Vanilla struct {
	Defaults

	Locator portal.Locator
	Builder *portal.Builder
	Policy  Policy
}

// Kind ...
func (*Vanilla) Kind() Kind { return KindVanilla }

// FindPortal searches at least as far as the builder may have placed a portal for the same position, so
// that a portal built for a transfer is found again by the next one.
func (v *Vanilla) FindPortal(s portal.Store, from, to dimension.Dimension, e entity.Location) (portal.Anchor, bool) {
	l := v.Locator
	if v.Builder != nil && l.SearchRadius(from, to) < v.Builder.Radius() {
		return s.Lookup(to.Name, dimension.Translate(e.Position, from, to), v.Builder.Radius())
	}
	return l.FindPortal(s, from, to, e.Position)
}

// CreateAndGetPortal builds a portal as close as possible to the position in to corresponding with the
// position of the entity.
func (v *Vanilla) CreateAndGetPortal(s portal.Store, from, to dimension.Dimension, e entity.Location) (portal.Anchor, error) {
	return v.Builder.CreatePortal(s, to, dimension.Translate(e.Position, from, to))
}

// PortalInfo places the entity at the entry of the portal, carrying over orientation and velocity as
// configured by the policy of the teleporter.
func (v *Vanilla) PortalInfo(a portal.Anchor, e entity.Location) Pose {
	return v.Policy.Place(a.Entry.Vec3(), e, &a)
}
