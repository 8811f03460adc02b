package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/younwookim/mgdk/internal/domain/entity"
)

// handleDashing starts a dash on press when one is available and forces the
// dash velocity until the dash duration has elapsed.
func (c *Controller) handleDashing(body *entity.Body, env Environment) {
	s := &c.state
	dash := c.cfg.Dash
	now := env.Now()

	if c.frame.DashDown && !s.HasDashed {
		s.DashDirection = c.dashDirection()
		s.Dashing = true
		s.HasDashed = true
		s.TimeDashStarted = now
		body.GravityEnabled = false
		c.log.Debug("dash", "entity", body.ID, "direction", s.DashDirection)
	}

	if !s.Dashing {
		return
	}

	body.Velocity = s.DashDirection.Mul(dash.Speed)

	if now >= s.TimeDashStarted+dash.Duration {
		s.Dashing = false
		// Cap the exit speed so a dash cannot be chained into a launch
		if body.Velocity.Y() > dash.ExitMaxVerticalSpeed {
			body.Velocity[1] = dash.ExitMaxVerticalSpeed
		}
		body.GravityEnabled = true
		c.log.Debug("dash ended", "entity", body.ID)
	}
}

// dashDirection is the normalized raw input direction, or the facing
// direction when there is no directional input.
func (c *Controller) dashDirection() mgl64.Vec3 {
	dir := mgl64.Vec3{float64(c.frame.RawX), float64(c.frame.RawY), 0}
	if dir.Len() == 0 {
		if c.state.FacingLeft {
			return mgl64.Vec3{-1, 0, 0}
		}
		return mgl64.Vec3{1, 0, 0}
	}
	return dir.Normalize()
}
