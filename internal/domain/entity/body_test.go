package entity

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBody(t *testing.T) {
	body := NewBody(7, mgl64.Vec3{3, 4, 0}, 0.4, 0.9)

	require.NotNil(t, body)
	assert.Equal(t, EntityID(7), body.ID)
	assert.Equal(t, mgl64.Vec3{3, 4, 0}, body.Position)
	assert.Equal(t, mgl64.Vec3{}, body.Velocity)
	assert.True(t, body.GravityEnabled)
	assert.False(t, body.FacingLeft)
	assert.False(t, body.IsAttached())
}

func TestBody_AttachTo(t *testing.T) {
	body := NewBody(1, mgl64.Vec3{2, 5, 0}, 0.4, 0.9)

	body.AttachTo(Contact{ID: 9, Position: mgl64.Vec3{1, 3, 0}})

	assert.True(t, body.IsAttached())
	assert.True(t, body.AttachedTo(9))
	assert.False(t, body.AttachedTo(8))
	assert.Equal(t, mgl64.Vec3{1, 2, 0}, body.Attachment.Offset)

	body.Detach()

	assert.False(t, body.IsAttached())
	assert.False(t, body.AttachedTo(9))
	assert.False(t, body.AttachedTo(NoEntity), "NoEntity is never a parent")
}

func TestBody_Bounds(t *testing.T) {
	tests := []struct {
		name string
		pos  mgl64.Vec3
		want Rect
	}{
		{
			name: "origin",
			pos:  mgl64.Vec3{0, 0, 0},
			want: Rect{X: -0.5, Y: -1, W: 1, H: 2},
		},
		{
			name: "offset",
			pos:  mgl64.Vec3{10, 4, 0},
			want: Rect{X: 9.5, Y: 3, W: 1, H: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := NewBody(1, tt.pos, 0.5, 1)
			got := body.Bounds()
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.W, got.W, 1e-9)
			assert.InDelta(t, tt.want.H, got.H, 1e-9)
		})
	}
}

func TestNewMovementState(t *testing.T) {
	s := NewMovementState(100)

	assert.Equal(t, 100.0, s.MovementLerp)
	assert.Equal(t, FarPast, s.TimeLeftGrounded)
	assert.Equal(t, FarPast, s.TimeLastWallJumped)
	assert.False(t, s.Grounded)
	assert.False(t, s.HasJumped)
	assert.False(t, s.HasDashed)
	assert.False(t, s.AgainstWall())

	s.AgainstRightWall = true
	assert.True(t, s.AgainstWall())
}
