package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/younwookim/mgdk/internal/domain/entity"
)

// gatherInput stores this tick's input sample and resolves facing.
// Facing is sticky: only a positive raw X turns the character right,
// and it is frozen while grabbing a wall.
func (c *Controller) gatherInput(body *entity.Body, in entity.FrameInput) {
	c.frame = in

	if c.state.Grabbing {
		return
	}
	c.state.FacingLeft = in.RawX != 1 && (in.RawX == -1 || c.state.FacingLeft)
	body.FacingLeft = c.state.FacingLeft
}

// handleWalking accelerates the horizontal input toward the held direction
// and moves the body's velocity toward the resulting walk target.
func (c *Controller) handleWalking(body *entity.Body, dt float64) {
	if c.state.Dashing {
		return // dash owns velocity
	}

	acceleration := c.cfg.Movement.Acceleration
	if !c.state.Grounded {
		acceleration *= 0.5
	}

	switch {
	case c.frame.Left:
		if body.Velocity.X() > 0 {
			c.frame.X = 0 // immediate stop and turn
		}
		c.frame.X = moveTowards(c.frame.X, -1, acceleration*dt)
	case c.frame.Right:
		if body.Velocity.X() < 0 {
			c.frame.X = 0
		}
		c.frame.X = moveTowards(c.frame.X, 1, acceleration*dt)
	default:
		c.frame.X = moveTowards(c.frame.X, 0, acceleration*2*dt)
	}

	ideal := mgl64.Vec3{c.frame.X * c.cfg.Movement.WalkSpeed, body.Velocity.Y(), 0}
	body.Velocity = moveTowardsVec(body.Velocity, ideal, c.state.MovementLerp*dt)
}
