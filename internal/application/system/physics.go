package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/younwookim/mgdk/internal/domain/entity"
)

// Space is the collision world bodies are integrated through.
type Space interface {
	// Solid returns the first solid collider overlapping r.
	Solid(r entity.Rect) (entity.Contact, bool)
	// Triggers returns every trigger region overlapping r.
	Triggers(r entity.Rect) []entity.Trigger
	// EntityPosition returns the current position of a collider entity.
	EntityPosition(id entity.EntityID) (mgl64.Vec3, bool)
	Gravity() mgl64.Vec3
}

// Collision is a blocked move against a solid collider.
type Collision struct {
	Other entity.EntityID
	Axis  int     // 0 = x, 1 = y
	Speed float64 // speed along Axis that was cancelled
}

// StepResult lists what happened to a body during one integration step.
type StepResult struct {
	Collisions []Collision
	Entered    []entity.Trigger
}

// PhysicsSystem integrates bodies: gravity, ride-along and axis-separated
// movement with substep collision against solid colliders.
type PhysicsSystem struct {
	space    Space
	substeps int
	inside   map[entity.EntityID]map[entity.EntityID]struct{} // body -> overlapped triggers
}

// NewPhysicsSystem creates a new physics system
func NewPhysicsSystem(space Space, substeps int) *PhysicsSystem {
	if substeps <= 0 {
		substeps = 1
	}
	return &PhysicsSystem{
		space:    space,
		substeps: substeps,
		inside:   make(map[entity.EntityID]map[entity.EntityID]struct{}),
	}
}

// Step integrates body by dt seconds.
func (s *PhysicsSystem) Step(body *entity.Body, dt float64) StepResult {
	var result StepResult
	if body == nil || dt <= 0 {
		return result
	}

	// Follow the parent before moving so the body rides along
	s.followParent(body)

	if body.GravityEnabled {
		body.Velocity = body.Velocity.Add(s.space.Gravity().Mul(dt))
	}

	delta := body.Velocity.Mul(dt)
	if c, hit := s.moveAxis(body, 0, delta.X()); hit {
		result.Collisions = append(result.Collisions, c)
	}
	if c, hit := s.moveAxis(body, 1, delta.Y()); hit {
		result.Collisions = append(result.Collisions, c)
	}
	body.Position[2] += delta.Z()

	// Keep the ride-along offset in sync with our own movement
	if body.IsAttached() {
		if parentPos, ok := s.space.EntityPosition(body.Attachment.Parent); ok {
			body.Attachment.Offset = body.Position.Sub(parentPos)
		}
	}

	result.Entered = s.updateTriggers(body)
	return result
}

// Forget drops trigger bookkeeping for a removed body.
func (s *PhysicsSystem) Forget(id entity.EntityID) {
	delete(s.inside, id)
}

func (s *PhysicsSystem) followParent(body *entity.Body) {
	if !body.IsAttached() {
		return
	}
	parentPos, ok := s.space.EntityPosition(body.Attachment.Parent)
	if !ok {
		// Parent is gone; the relation is weak, so just drop it
		body.Detach()
		return
	}
	body.Position = parentPos.Add(body.Attachment.Offset)
}

// moveAxis moves the body along one axis in substeps and stops at the first
// substep that would overlap a solid collider.
func (s *PhysicsSystem) moveAxis(body *entity.Body, axis int, d float64) (Collision, bool) {
	if d == 0 {
		return Collision{}, false
	}

	step := d / float64(s.substeps)
	for i := 0; i < s.substeps; i++ {
		next := body.Position
		next[axis] += step
		if contact, hit := s.space.Solid(body.BoundsAt(next)); hit {
			c := Collision{Other: contact.ID, Axis: axis, Speed: absFloat(body.Velocity[axis])}
			body.Velocity[axis] = 0
			return c, true
		}
		body.Position = next
	}
	return Collision{}, false
}

// updateTriggers returns the triggers the body overlaps now but did not
// overlap after the previous step.
func (s *PhysicsSystem) updateTriggers(body *entity.Body) []entity.Trigger {
	prev := s.inside[body.ID]
	current := make(map[entity.EntityID]struct{})

	var entered []entity.Trigger
	for _, trig := range s.space.Triggers(body.Bounds()) {
		current[trig.ID] = struct{}{}
		if _, was := prev[trig.ID]; !was {
			entered = append(entered, trig)
		}
	}
	s.inside[body.ID] = current
	return entered
}
