package entity

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// FarPast is the default for timestamps that have never been recorded.
var FarPast = math.Inf(-1)

// MovementState holds the flags and timers a character controller carries
// from one tick to the next.
type MovementState struct {
	Grounded         bool
	TimeLeftGrounded float64

	HasJumped       bool
	HasDoubleJumped bool
	HasDashed       bool

	Dashing         bool
	TimeDashStarted float64
	DashDirection   mgl64.Vec3

	Grabbing           bool
	WallSliding        bool
	SlideWall          EntityID // wall the body attached to when the slide started
	TimeLastWallJumped float64

	// Sticky: only flips on explicit horizontal input.
	FacingLeft bool

	// Recomputed every tick.
	AgainstLeftWall, AgainstRightWall bool
	PushingLeftWall, PushingRightWall bool
	LeftWall, RightWall               Contact

	// Rate (units/s) at which velocity approaches the walk target.
	MovementLerp float64
}

// NewMovementState returns the state of a freshly spawned character.
func NewMovementState(movementLerp float64) MovementState {
	return MovementState{
		TimeLeftGrounded:   FarPast,
		TimeDashStarted:    FarPast,
		TimeLastWallJumped: FarPast,
		MovementLerp:       movementLerp,
	}
}

// AgainstWall reports whether either wall sensor touches geometry.
func (s *MovementState) AgainstWall() bool {
	return s.AgainstLeftWall || s.AgainstRightWall
}
