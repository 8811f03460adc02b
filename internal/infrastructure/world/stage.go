package world

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/younwookim/mgdk/internal/domain/entity"
)

// NewFromStage builds a world holding the stage's tiles, platforms and triggers.
func NewFromStage(stage *entity.Stage, gravity mgl64.Vec3, opts ...Option) *World {
	w := New(gravity, opts...)
	w.buildTiles(stage)

	for _, p := range stage.Platforms {
		w.AddPlatform(p)
	}
	for _, t := range stage.Triggers {
		w.AddTrigger(t.Rect, t.Kind)
	}

	w.log.Info("world built",
		"tiles", stage.Width*stage.Height,
		"colliders", len(w.colliders),
		"platforms", len(w.platforms),
	)
	return w
}

// buildTiles merges contiguous tiles of the same type into rectangles so the
// space holds a few large boxes instead of one per tile.
func (w *World) buildTiles(stage *entity.Stage) {
	processed := make([][]bool, stage.Height)
	for y := range processed {
		processed[y] = make([]bool, stage.Width)
	}

	for y := 0; y < stage.Height; y++ {
		for x := 0; x < stage.Width; x++ {
			if processed[y][x] {
				continue
			}
			tileType := stage.Tiles[y][x].Type
			if tileType == entity.TileEmpty {
				processed[y][x] = true
				continue
			}

			same := func(tx, ty int) bool {
				return !processed[ty][tx] && stage.Tiles[ty][tx].Type == tileType
			}

			// Expand width first, then height
			rw := 1
			for x+rw < stage.Width && same(x+rw, y) {
				rw++
			}
			rh := 1
		heightLoop:
			for y+rh < stage.Height {
				for xi := x; xi < x+rw; xi++ {
					if !same(xi, y+rh) {
						break heightLoop
					}
				}
				rh++
			}

			for yy := y; yy < y+rh; yy++ {
				for xx := x; xx < x+rw; xx++ {
					processed[yy][xx] = true
				}
			}

			// Row y+rh-1 is the lowest row of the block
			bottomLeft := stage.TileRect(x, y+rh-1)
			r := entity.Rect{
				X: bottomLeft.X,
				Y: bottomLeft.Y,
				W: float64(rw) * stage.TileSize,
				H: float64(rh) * stage.TileSize,
			}

			switch tileType {
			case entity.TileSolid:
				w.AddSolid(r)
			case entity.TileDeath:
				w.AddTrigger(r, entity.TriggerDeath)
			case entity.TileReset:
				w.AddTrigger(r, entity.TriggerReset)
			}
		}
	}
}
