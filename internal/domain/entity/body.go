package entity

import "github.com/go-gl/mathgl/mgl64"

// Attachment is a ride-along relation to another entity.
// The parent is referenced by id only; the body never owns it.
type Attachment struct {
	Parent EntityID
	Offset mgl64.Vec3 // body position relative to the parent
}

// Body represents the physical body of a character.
// Position and velocity are in world units (y up); the host's integrator
// moves the body, the movement controller only changes velocity and flags.
type Body struct {
	ID       EntityID
	Position mgl64.Vec3
	Velocity mgl64.Vec3

	GravityEnabled bool
	FacingLeft     bool // visual facing, updated by the controller

	Attachment Attachment
	// Half extents of the collision box used by the integrator
	HalfWidth, HalfHeight float64
}

// NewBody creates a body at pos with gravity enabled, facing right.
func NewBody(id EntityID, pos mgl64.Vec3, halfWidth, halfHeight float64) *Body {
	return &Body{
		ID:             id,
		Position:       pos,
		GravityEnabled: true,
		HalfWidth:      halfWidth,
		HalfHeight:     halfHeight,
	}
}

// AttachTo makes the body ride along with the contact's entity,
// keeping the current offset to it.
func (b *Body) AttachTo(c Contact) {
	b.Attachment = Attachment{
		Parent: c.ID,
		Offset: b.Position.Sub(c.Position),
	}
}

// Detach clears any ride-along relation.
func (b *Body) Detach() {
	b.Attachment = Attachment{}
}

// IsAttached reports whether the body currently rides another entity.
func (b *Body) IsAttached() bool {
	return b.Attachment.Parent != NoEntity
}

// AttachedTo reports whether the body rides the given entity.
func (b *Body) AttachedTo(id EntityID) bool {
	return id != NoEntity && b.Attachment.Parent == id
}

// Bounds returns the body's collision box at its current position.
func (b *Body) Bounds() Rect {
	return b.BoundsAt(b.Position)
}

// BoundsAt returns the body's collision box as if it were at pos.
func (b *Body) BoundsAt(pos mgl64.Vec3) Rect {
	return Rect{
		X: pos.X() - b.HalfWidth,
		Y: pos.Y() - b.HalfHeight,
		W: b.HalfWidth * 2,
		H: b.HalfHeight * 2,
	}
}
