package world

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"

	"github.com/younwookim/mgdk/internal/domain/entity"
)

// platform is a kinematic box shuttling between two centers.
type platform struct {
	id       entity.EntityID
	body     *cp.Body
	from, to mgl64.Vec3
	speed    float64
}

// AddPlatform adds a solid moving platform on the ground layer.
func (w *World) AddPlatform(path entity.PlatformPath) entity.EntityID {
	r := path.Rect
	center := r.Center()

	body := cp.NewKinematicBody()
	body.SetPosition(cp.Vector{X: center.X(), Y: center.Y()})
	w.space.AddBody(body)

	half := cp.BB{L: -r.W / 2, B: -r.H / 2, R: r.W / 2, T: r.H / 2}
	shape := cp.NewBox2(body, half, 0)
	id := w.addCollider(shape, body, colliderSolid, 0)

	offset := path.To.Sub(mgl64.Vec3{r.X, r.Y, 0})
	w.platforms = append(w.platforms, &platform{
		id:    id,
		body:  body,
		from:  center,
		to:    center.Add(offset),
		speed: path.Speed,
	})
	return id
}

func (w *World) removePlatform(id entity.EntityID) {
	for i, p := range w.platforms {
		if p.id == id {
			w.platforms = append(w.platforms[:i], w.platforms[i+1:]...)
			return
		}
	}
}

// plan returns the velocity that carries the platform to where it should be
// after dt seconds, turning around at either end of its path.
func (p *platform) plan(dt float64) cp.Vector {
	pos := p.body.Position()
	start := mgl64.Vec3{pos.X, pos.Y, 0}
	current := start
	remaining := p.speed * dt

	for remaining > 0 {
		diff := p.to.Sub(current)
		dist := diff.Len()
		if dist > remaining {
			current = current.Add(diff.Mul(remaining / dist))
			break
		}
		current = p.to
		remaining -= dist
		p.from, p.to = p.to, p.from
		if p.from.ApproxEqual(p.to) {
			break
		}
	}

	v := current.Sub(start).Mul(1 / dt)
	return cp.Vector{X: v.X(), Y: v.Y()}
}

// PlatformRects returns the current bounds of every moving platform.
func (w *World) PlatformRects() []entity.Rect {
	rects := make([]entity.Rect, 0, len(w.platforms))
	for _, p := range w.platforms {
		bb := w.colliders[p.id].shape.BB()
		rects = append(rects, entity.Rect{X: bb.L, Y: bb.B, W: bb.R - bb.L, H: bb.T - bb.B})
	}
	return rects
}
