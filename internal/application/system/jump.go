package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/younwookim/mgdk/internal/domain/entity"
)

// handleJumping resolves a jump press into a wall, ground, coyote or double
// jump, then shapes the fall for variable jump height.
func (c *Controller) handleJumping(body *entity.Body, env Environment, dt float64) {
	if c.state.Dashing {
		return
	}

	s := &c.state
	jump := c.cfg.Jump
	now := env.Now()

	if c.frame.JumpDown {
		switch {
		case s.Grabbing || !s.Grounded && s.AgainstWall():
			c.wallJump(body, now)
		case s.Grounded || now < s.TimeLeftGrounded+jump.CoyoteTime || jump.EnableDoubleJump && !s.HasDoubleJumped:
			if !s.HasJumped {
				c.executeJump(body, mgl64.Vec3{body.Velocity.X(), jump.Force, 0}, false)
			} else if !s.HasDoubleJumped && jump.EnableDoubleJump {
				c.executeJump(body, mgl64.Vec3{body.Velocity.X(), jump.Force, 0}, true)
			}
		}
	}

	// Fall faster, and cut the ascent short once jump is released
	vy := body.Velocity.Y()
	if vy < jump.VelocityFalloff || vy > 0 && !c.frame.JumpHeld {
		body.Velocity[1] += jump.FallMultiplier * env.Gravity().Y() * dt
	}
}

// wallJump launches the body up and away from the touched wall.
// It consumes the double jump and slows movement control for a while.
func (c *Controller) wallJump(body *entity.Body, now float64) {
	force := c.cfg.Jump.Force
	vx := -force
	if c.state.AgainstLeftWall {
		vx = force
	}

	c.state.TimeLastWallJumped = now
	c.state.MovementLerp = c.cfg.Wall.JumpMovementLerp
	c.executeJump(body, mgl64.Vec3{vx, force, 0}, true)
	c.log.Debug("wall jump", "entity", body.ID, "left_wall", c.state.AgainstLeftWall)
}

func (c *Controller) executeJump(body *entity.Body, velocity mgl64.Vec3, doubleJump bool) {
	body.Velocity = velocity
	c.state.HasDoubleJumped = doubleJump
	c.state.HasJumped = true
	c.log.Debug("jump", "entity", body.ID, "double", doubleJump)
}
