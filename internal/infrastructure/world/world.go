// Package world hosts the simulation a character controller runs in: the
// collision space, the simulation clock and the stage's moving parts.
package world

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"

	"github.com/younwookim/mgdk/internal/domain/entity"
)

type colliderKind int

const (
	colliderSolid colliderKind = iota
	colliderTrigger
)

type collider struct {
	id      entity.EntityID
	kind    colliderKind
	trigger entity.TriggerKind
	shape   *cp.Shape
	body    *cp.Body // nil for shapes on the static body
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the world's logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// World is a chipmunk space used for spatial queries. Characters are
// integrated by the caller; stepping the space only moves the kinematic
// platforms and reindexes their shapes.
type World struct {
	space   *cp.Space
	gravity mgl64.Vec3
	clock   Clock
	log     *slog.Logger

	nextID    entity.EntityID
	colliders map[entity.EntityID]*collider
	platforms []*platform
	removed   map[entity.EntityID]struct{}
}

// New creates an empty world with the given constant gravity.
func New(gravity mgl64.Vec3, opts ...Option) *World {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: gravity.X(), Y: gravity.Y()})

	w := &World{
		space:     space,
		gravity:   gravity,
		log:       slog.Default(),
		colliders: make(map[entity.EntityID]*collider),
		removed:   make(map[entity.EntityID]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewEntityID allocates an id no collider in this world uses.
func (w *World) NewEntityID() entity.EntityID {
	w.nextID++
	return w.nextID
}

// Now returns the simulation time in seconds.
func (w *World) Now() float64 {
	return w.clock.Now()
}

// Clock returns the world's simulation clock.
func (w *World) Clock() *Clock {
	return &w.clock
}

// Gravity returns the world's constant gravity.
func (w *World) Gravity() mgl64.Vec3 {
	return w.gravity
}

// AddSolid adds a static solid box on the ground layer.
func (w *World) AddSolid(r entity.Rect) entity.EntityID {
	shape := cp.NewBox2(w.space.StaticBody, rectToBB(r), 0)
	return w.addCollider(shape, nil, colliderSolid, 0)
}

// AddTrigger adds a static trigger region.
func (w *World) AddTrigger(r entity.Rect, kind entity.TriggerKind) entity.EntityID {
	shape := cp.NewBox2(w.space.StaticBody, rectToBB(r), 0)
	shape.SetSensor(true)
	return w.addCollider(shape, nil, colliderTrigger, kind)
}

func (w *World) addCollider(shape *cp.Shape, body *cp.Body, kind colliderKind, trigger entity.TriggerKind) entity.EntityID {
	id := w.NewEntityID()
	layer := entity.LayerGround
	if kind == colliderTrigger {
		layer = entity.LayerTrigger
	}
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, uint(layer), cp.ALL_CATEGORIES))
	shape.UserData = id
	w.space.AddShape(shape)

	w.colliders[id] = &collider{id: id, kind: kind, trigger: trigger, shape: shape, body: body}
	return id
}

// Overlap returns the first collider on mask within radius of center.
func (w *World) Overlap(center mgl64.Vec3, radius float64, mask entity.LayerMask) (entity.Contact, bool) {
	filter := cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, uint(mask))
	info := w.space.PointQueryNearest(cp.Vector{X: center.X(), Y: center.Y()}, radius, filter)
	if info == nil || info.Shape == nil {
		return entity.Contact{}, false
	}
	c, ok := w.colliderFor(info.Shape)
	if !ok {
		return entity.Contact{}, false
	}
	return entity.Contact{ID: c.id, Position: w.colliderPosition(c)}, true
}

// Solid returns the first solid collider strictly overlapping r.
// Touching edges do not count.
func (w *World) Solid(r entity.Rect) (entity.Contact, bool) {
	var (
		hit   *collider
		found bool
	)
	filter := cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, uint(entity.LayerGround))
	w.space.BBQuery(rectToBB(r), filter, func(shape *cp.Shape, _ interface{}) {
		if found || !strictOverlap(shape.BB(), r) {
			return
		}
		if c, ok := w.colliderFor(shape); ok && c.kind == colliderSolid {
			hit, found = c, true
		}
	}, nil)
	if !found {
		return entity.Contact{}, false
	}
	return entity.Contact{ID: hit.id, Position: w.colliderPosition(hit)}, true
}

// Triggers returns every trigger region overlapping r.
func (w *World) Triggers(r entity.Rect) []entity.Trigger {
	var out []entity.Trigger
	filter := cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, uint(entity.LayerTrigger))
	w.space.BBQuery(rectToBB(r), filter, func(shape *cp.Shape, _ interface{}) {
		if !strictOverlap(shape.BB(), r) {
			return
		}
		if c, ok := w.colliderFor(shape); ok && c.kind == colliderTrigger {
			out = append(out, entity.Trigger{ID: c.id, Kind: c.trigger})
		}
	}, nil)
	return out
}

// EntityPosition returns the position of a collider's body.
// Static colliders report the origin; only moving platforms move.
func (w *World) EntityPosition(id entity.EntityID) (mgl64.Vec3, bool) {
	c, ok := w.colliders[id]
	if !ok {
		return mgl64.Vec3{}, false
	}
	return w.colliderPosition(c), true
}

// Remove takes an entity out of the simulation. Colliders are dropped from
// the space; anything else is only marked removed.
func (w *World) Remove(id entity.EntityID) {
	if c, ok := w.colliders[id]; ok {
		w.space.RemoveShape(c.shape)
		if c.body != nil {
			w.space.RemoveBody(c.body)
			w.removePlatform(id)
		}
		delete(w.colliders, id)
	}
	w.removed[id] = struct{}{}
	w.log.Debug("entity removed", "entity", id)
}

// Removed reports whether Remove was called for id.
func (w *World) Removed(id entity.EntityID) bool {
	_, ok := w.removed[id]
	return ok
}

// Step advances the clock and moves the platforms by dt seconds.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.clock.Advance(dt)
	for _, p := range w.platforms {
		p.body.SetVelocityVector(p.plan(dt))
	}
	w.space.Step(dt)
}

func (w *World) colliderFor(shape *cp.Shape) (*collider, bool) {
	id, ok := shape.UserData.(entity.EntityID)
	if !ok {
		return nil, false
	}
	c, ok := w.colliders[id]
	return c, ok
}

func (w *World) colliderPosition(c *collider) mgl64.Vec3 {
	if c.body == nil {
		return mgl64.Vec3{}
	}
	p := c.body.Position()
	return mgl64.Vec3{p.X, p.Y, 0}
}

func rectToBB(r entity.Rect) cp.BB {
	return cp.BB{L: r.X, B: r.Y, R: r.X + r.W, T: r.Y + r.H}
}

func strictOverlap(bb cp.BB, r entity.Rect) bool {
	return bb.L < r.X+r.W && r.X < bb.R && bb.B < r.Y+r.H && r.Y < bb.T
}
