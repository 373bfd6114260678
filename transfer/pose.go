package transfer

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/portals/entity"
	"github.com/oomph-ac/portals/portal"
)

// Pose is the position and orientation an entity receives after being transferred to another dimension.
type Pose struct {
	// Position is the position of the entity in the destination dimension.
	Position mgl64.Vec3
	// Yaw and Pitch are the rotation of the entity after the transfer.
	Yaw, Pitch float32
	// Velocity is the velocity of the entity after the transfer. It is zero unless VelocityPreserved is true.
	Velocity mgl64.Vec3
	// VelocityPreserved is true if Velocity was carried over from the entity before the transfer.
	VelocityPreserved bool
	// Anchor is the portal the entity arrived through. It is nil if the entity was placed without a portal.
	Anchor *portal.Anchor
}

// Location returns the entity location described by the pose.
func (p Pose) Location() entity.Location {
	return entity.Location{Position: p.Position, Velocity: p.Velocity, Yaw: p.Yaw, Pitch: p.Pitch}
}

// identityPose returns the pose of an entity that does not move at all.
func identityPose(e entity.Location) Pose {
	return Pose{Position: e.Position, Yaw: e.Yaw, Pitch: e.Pitch, Velocity: e.Velocity, VelocityPreserved: true}
}

// Policy controls what is carried over from an entity when it is placed in the destination dimension.
type Policy struct {
	// PreserveOrientation carries yaw and pitch through unchanged. If false, both are zero on arrival.
	PreserveOrientation bool
	// PreserveVelocity carries the velocity of the entity through unchanged. If false, the entity arrives
	// without velocity.
	PreserveVelocity bool
}

// Place returns the pose of the entity passed when placed at pos, arriving through the anchor passed.
func (p Policy) Place(pos mgl64.Vec3, e entity.Location, a *portal.Anchor) Pose {
	pose := Pose{Position: pos, Anchor: a}
	if p.PreserveOrientation {
		pose.Yaw, pose.Pitch = e.Yaw, e.Pitch
	}
	if p.PreserveVelocity {
		pose.Velocity, pose.VelocityPreserved = e.Velocity, true
	}
	return pose
}
