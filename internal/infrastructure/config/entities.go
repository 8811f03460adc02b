package config

import "fmt"

// CharacterConfig describes the character's collision box.
type CharacterConfig struct {
	HalfWidth  float64 `yaml:"halfWidth"`
	HalfHeight float64 `yaml:"halfHeight"`
}

// DefaultCharacterConfig returns a box that fits the default sensor offsets:
// the grounder reaches just below the feet, the wall checks just past the sides.
func DefaultCharacterConfig() CharacterConfig {
	return CharacterConfig{
		HalfWidth:  0.45,
		HalfHeight: 0.9,
	}
}

// Validate rejects degenerate boxes.
func (c *CharacterConfig) Validate() error {
	if !(c.HalfWidth > 0) || !(c.HalfHeight > 0) {
		return fmt.Errorf("character box must have positive extents, got %vx%v", c.HalfWidth, c.HalfHeight)
	}
	return nil
}
