package entity

import "github.com/go-gl/mathgl/mgl64"

// EntityID is a unique identifier for an entity
type EntityID uint32

// NoEntity is the zero EntityID; it never names a live entity.
const NoEntity EntityID = 0

// LayerMask is a bit set of collision layers
type LayerMask uint

const (
	// LayerGround holds solid geometry: floors, walls and platforms.
	LayerGround LayerMask = 1 << iota
	// LayerTrigger holds non-solid regions that react when entered.
	LayerTrigger
)

// Has reports whether every layer in other is also set in m.
func (m LayerMask) Has(other LayerMask) bool {
	return m&other == other && other != 0
}

// Contact is the first collider found by an overlap query.
type Contact struct {
	ID       EntityID
	Position mgl64.Vec3
}

// TriggerKind classifies a trigger region
type TriggerKind int

const (
	TriggerPickup TriggerKind = iota
	TriggerReset
	TriggerDeath
)

// String returns the string representation of the trigger kind
func (k TriggerKind) String() string {
	switch k {
	case TriggerPickup:
		return "pickup"
	case TriggerReset:
		return "reset"
	case TriggerDeath:
		return "death"
	default:
		return "unknown"
	}
}

// Trigger is a trigger region the body has just entered
type Trigger struct {
	ID   EntityID
	Kind TriggerKind
}

// TileType represents the type of a tile
type TileType int

const (
	TileEmpty TileType = iota
	TileSolid
	TileDeath
	TileReset
)

// Tile represents a single tile in the stage
type Tile struct {
	Type TileType
}

// Solid reports whether the tile blocks movement.
func (t Tile) Solid() bool {
	return t.Type == TileSolid
}

// Rect is an axis-aligned rectangle in world units (y grows upward).
type Rect struct {
	X, Y float64 // bottom-left corner
	W, H float64
}

// Center returns the rectangle's center point.
func (r Rect) Center() mgl64.Vec3 {
	return mgl64.Vec3{r.X + r.W/2, r.Y + r.H/2, 0}
}

// PlatformPath is a moving platform travelling back and forth between
// Rect's position and To (both bottom-left corners).
type PlatformPath struct {
	Rect  Rect
	To    mgl64.Vec3
	Speed float64
}

// TriggerRegion is a trigger area placed in the stage.
type TriggerRegion struct {
	Rect Rect
	Kind TriggerKind
}

// Stage represents the current stage's tile data.
// Row 0 of Tiles is the top row; world space has y pointing up.
type Stage struct {
	Width    int
	Height   int
	TileSize float64
	Tiles    [][]Tile
	Spawn    mgl64.Vec3

	Platforms []PlatformPath
	Triggers  []TriggerRegion
}

// GetTile returns the tile at the given tile coordinates
func (s *Stage) GetTile(tx, ty int) Tile {
	if tx < 0 || tx >= s.Width || ty < 0 || ty >= s.Height {
		return Tile{Type: TileSolid}
	}
	return s.Tiles[ty][tx]
}

// TileRect returns the world-space rectangle covered by the tile at (tx, ty).
func (s *Stage) TileRect(tx, ty int) Rect {
	return Rect{
		X: float64(tx) * s.TileSize,
		Y: float64(s.Height-1-ty) * s.TileSize,
		W: s.TileSize,
		H: s.TileSize,
	}
}

// Bounds returns the world-space rectangle covered by the whole stage.
func (s *Stage) Bounds() Rect {
	return Rect{W: float64(s.Width) * s.TileSize, H: float64(s.Height) * s.TileSize}
}
