package config

// StageConfig is the root config for stage YAML files
type StageConfig struct {
	ID          string                       `yaml:"id"`
	Name        string                       `yaml:"name"`
	TileSize    float64                      `yaml:"tileSize"`
	PlayerSpawn PositionConfig               `yaml:"playerSpawn"`
	Layers      LayersConfig                 `yaml:"layers"`
	TileMapping map[string]TileMappingConfig `yaml:"tileMapping"`
	Platforms   []PlatformConfig             `yaml:"platforms"`
	Triggers    []TriggerConfig              `yaml:"triggers"`
}

// PositionConfig is a point in tile coordinates (column, row from the top).
type PositionConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type LayersConfig struct {
	Collision []string `yaml:"collision"`
}

type TileMappingConfig struct {
	Type string `yaml:"type"` // solid, death, reset
}

// PlatformConfig is a kinematic platform moving back and forth between two points.
type PlatformConfig struct {
	Rect  RectConfig     `yaml:"rect"`
	To    PositionConfig `yaml:"to"`
	Speed float64        `yaml:"speed"`
}

type TriggerConfig struct {
	Type string     `yaml:"type"` // death, reset, pickup
	Rect RectConfig `yaml:"rect"`
}

// RectConfig is a rectangle in tile coordinates, X/Y naming its top-left tile.
type RectConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}
