package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/younwookim/mgdk/internal/domain/entity"
)

// handleWallSlide attaches the body to a wall it is pushing into and slows
// a downward slide. Attach and detach only happen on slide edges.
func (c *Controller) handleWallSlide(body *entity.Body) {
	s := &c.state
	sliding := s.PushingLeftWall || s.PushingRightWall

	if sliding && !s.WallSliding {
		wall := s.RightWall
		if s.PushingLeftWall {
			wall = s.LeftWall
		}
		body.AttachTo(wall)
		s.SlideWall = wall.ID
		s.WallSliding = true
		if body.Velocity.Y() < 0 {
			body.Velocity = mgl64.Vec3{0, -c.cfg.Wall.SlideSpeed, 0}
		}
	} else if !sliding && s.WallSliding && !s.Grabbing {
		if body.AttachedTo(s.SlideWall) {
			body.Detach()
		}
		s.SlideWall = entity.NoEntity
		s.WallSliding = false
	}
}

// handleWallGrab holds the body on a wall while grab is held, outside the
// lockout that follows a wall jump. Climbing up is slower than sliding down.
func (c *Controller) handleWallGrab(body *entity.Body, env Environment) {
	s := &c.state
	wall := c.cfg.Wall
	grabbing := s.AgainstWall() && c.frame.GrabHeld && env.Now() > s.TimeLastWallJumped+wall.JumpLock

	if grabbing && !s.Grabbing {
		s.Grabbing = true
		body.FacingLeft = s.AgainstLeftWall // face the wall
		c.log.Debug("wall grab", "entity", body.ID, "left_wall", s.AgainstLeftWall)
	} else if !grabbing && s.Grabbing {
		s.Grabbing = false
	}

	if s.Grabbing {
		rawY := float64(c.frame.RawY)
		scale := wall.ClimbUpScale
		if rawY < 0 {
			scale = 1
		}
		body.Velocity = mgl64.Vec3{0, rawY * wall.ClimbSpeed * scale, 0}
	}
}
