package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/younwookim/mgdk/internal/domain/entity"
)

// handleGrounding checks below and beside the body and handles
// landing / leaving-ground transitions.
func (c *Controller) handleGrounding(body *entity.Body, env Environment) {
	det := c.cfg.Detection
	mask := entity.LayerMask(det.GroundMask)
	s := &c.state

	ground, grounded := env.Overlap(body.Position.Add(mgl64.Vec3{0, det.GrounderOffset, 0}), det.GrounderRadius, mask)

	if !s.Grounded && grounded {
		s.Grounded = true
		s.HasDashed = false
		s.HasJumped = false
		s.HasDoubleJumped = false
		s.MovementLerp = c.cfg.Movement.MovementLerp
		body.AttachTo(ground)
		c.log.Debug("landed", "entity", body.ID, "ground", ground.ID)
	} else if s.Grounded && !grounded {
		s.Grounded = false
		s.TimeLeftGrounded = env.Now()
		body.Detach()
		c.log.Debug("left ground", "entity", body.ID, "at", s.TimeLeftGrounded)
	}

	s.LeftWall, s.AgainstLeftWall = env.Overlap(body.Position.Add(mgl64.Vec3{-det.WallCheckOffset, 0, 0}), det.WallCheckRadius, mask)
	s.RightWall, s.AgainstRightWall = env.Overlap(body.Position.Add(mgl64.Vec3{det.WallCheckOffset, 0, 0}), det.WallCheckRadius, mask)
	s.PushingLeftWall = s.AgainstLeftWall && c.frame.X < 0
	s.PushingRightWall = s.AgainstRightWall && c.frame.X > 0
}
