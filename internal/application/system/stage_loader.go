package system

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/younwookim/mgdk/internal/domain/entity"
	"github.com/younwookim/mgdk/internal/infrastructure/config"
)

// LoadStage converts a StageConfig into a Stage entity.
// Config coordinates are in tiles counted from the top-left corner;
// the Stage is in world units with y pointing up.
func LoadStage(cfg *config.StageConfig) *entity.Stage {
	tileHeight := len(cfg.Layers.Collision)
	tileWidth := 0
	for _, row := range cfg.Layers.Collision {
		if len(row) > tileWidth {
			tileWidth = len(row)
		}
	}

	tiles := make([][]entity.Tile, tileHeight)
	for y, row := range cfg.Layers.Collision {
		tiles[y] = make([]entity.Tile, tileWidth)
		for x, char := range row {
			if x >= tileWidth {
				break
			}
			mapping, ok := cfg.TileMapping[string(char)]
			if !ok {
				continue
			}
			tiles[y][x] = entity.Tile{Type: parseTileType(mapping.Type)}
		}
	}

	stage := &entity.Stage{
		Width:    tileWidth,
		Height:   tileHeight,
		TileSize: cfg.TileSize,
		Tiles:    tiles,
	}
	stage.Spawn = stagePoint(stage, cfg.PlayerSpawn.X+0.5, cfg.PlayerSpawn.Y+0.5)

	for _, p := range cfg.Platforms {
		rect := stageRect(stage, p.Rect)
		to := stagePoint(stage, p.To.X, p.To.Y+p.Rect.H)
		stage.Platforms = append(stage.Platforms, entity.PlatformPath{
			Rect:  rect,
			To:    to,
			Speed: p.Speed,
		})
	}

	for _, tr := range cfg.Triggers {
		stage.Triggers = append(stage.Triggers, entity.TriggerRegion{
			Rect: stageRect(stage, tr.Rect),
			Kind: parseTriggerKind(tr.Type),
		})
	}

	return stage
}

func parseTileType(s string) entity.TileType {
	switch s {
	case "solid", "wall":
		return entity.TileSolid
	case "death", "spike":
		return entity.TileDeath
	case "reset":
		return entity.TileReset
	default:
		return entity.TileEmpty
	}
}

func parseTriggerKind(s string) entity.TriggerKind {
	switch s {
	case "death":
		return entity.TriggerDeath
	case "reset":
		return entity.TriggerReset
	default:
		return entity.TriggerPickup
	}
}

// stagePoint converts a tile-space point (y down from the top) to world space.
func stagePoint(stage *entity.Stage, tx, ty float64) mgl64.Vec3 {
	return mgl64.Vec3{
		tx * stage.TileSize,
		(float64(stage.Height) - ty) * stage.TileSize,
		0,
	}
}

func stageRect(stage *entity.Stage, r config.RectConfig) entity.Rect {
	bottomLeft := stagePoint(stage, r.X, r.Y+r.H)
	return entity.Rect{
		X: bottomLeft.X(),
		Y: bottomLeft.Y(),
		W: r.W * stage.TileSize,
		H: r.H * stage.TileSize,
	}
}
