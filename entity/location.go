package entity

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Location represents the location of an entity that is about to pass through a portal.
type Location struct {
	// Position is the position of the entity in its current dimension.
	Position mgl64.Vec3
	// Velocity is the velocity of the entity at the moment it entered the portal.
	Velocity mgl64.Vec3
	// Yaw and Pitch are the rotation of the entity in degrees.
	Yaw, Pitch float32
}

// Direction returns the unit vector the entity is looking towards.
func (l Location) Direction() mgl32.Vec3 {
	yawRad, pitchRad := mgl32.DegToRad(l.Yaw), mgl32.DegToRad(l.Pitch)
	m := math32.Cos(pitchRad)

	return mgl32.Vec3{
		-m * math32.Sin(yawRad),
		-math32.Sin(pitchRad),
		m * math32.Cos(yawRad),
	}
}
