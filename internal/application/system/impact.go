package system

import "github.com/younwookim/mgdk/internal/domain/entity"

// OnCollision reports a physical collision with the given relative speed.
// It returns true when the impact is hard enough to warrant feedback,
// which only happens while grounded.
func (c *Controller) OnCollision(body *entity.Body, impactSpeed float64) bool {
	if body == nil || c.removed {
		return false
	}
	if impactSpeed <= c.cfg.Collision.MinImpactForce || !c.state.Grounded {
		return false
	}
	if c.onImpact != nil {
		c.onImpact(body, impactSpeed)
	}
	return true
}

// OnTriggerEnter reacts to the body entering a trigger region. Any trigger
// grants a fresh dash; a death trigger removes the character.
func (c *Controller) OnTriggerEnter(body *entity.Body, trigger entity.Trigger, env Environment) {
	if body == nil || c.removed {
		return
	}

	if trigger.Kind == entity.TriggerDeath {
		c.removed = true
		if env != nil {
			env.Remove(body.ID)
		}
		c.log.Info("character died", "entity", body.ID, "trigger", trigger.ID)
	}

	c.state.HasDashed = false
}
