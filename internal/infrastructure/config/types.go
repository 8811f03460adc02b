package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned for configuration values that cannot drive a simulation.
var ErrInvalidConfig = errors.New("invalid config")

// ControllerConfig is the root config for controller.yaml.
// Every tunable of the character movement controller lives here.
type ControllerConfig struct {
	Movement  MovementConfig  `yaml:"movement"`
	Jump      JumpConfig      `yaml:"jump"`
	Wall      WallConfig      `yaml:"wall"`
	Dash      DashConfig      `yaml:"dash"`
	Detection DetectionConfig `yaml:"detection"`
	Collision CollisionConfig `yaml:"collision"`
}

type MovementConfig struct {
	WalkSpeed    float64 `yaml:"walkSpeed"`
	Acceleration float64 `yaml:"acceleration"`
	// Rate at which velocity approaches the walk target; restored on landing
	MovementLerp float64 `yaml:"movementLerp"`
}

type JumpConfig struct {
	Force          float64 `yaml:"force"`
	FallMultiplier float64 `yaml:"fallMultiplier"`
	// Vertical speed below which fall shaping kicks in
	VelocityFalloff  float64 `yaml:"velocityFalloff"`
	CoyoteTime       float64 `yaml:"coyoteTime"`
	EnableDoubleJump bool    `yaml:"enableDoubleJump"`
}

type WallConfig struct {
	JumpLock         float64 `yaml:"jumpLock"`         // seconds before grabbing again after a wall jump
	JumpMovementLerp float64 `yaml:"jumpMovementLerp"` // movement lerp right after a wall jump
	SlideSpeed       float64 `yaml:"slideSpeed"`
	ClimbSpeed       float64 `yaml:"climbSpeed"`
	ClimbUpScale     float64 `yaml:"climbUpScale"`
}

type DashConfig struct {
	Speed                float64 `yaml:"speed"`
	Duration             float64 `yaml:"duration"`
	ExitMaxVerticalSpeed float64 `yaml:"exitMaxVerticalSpeed"`
}

type DetectionConfig struct {
	GrounderOffset  float64 `yaml:"grounderOffset"`
	GrounderRadius  float64 `yaml:"grounderRadius"`
	WallCheckOffset float64 `yaml:"wallCheckOffset"`
	WallCheckRadius float64 `yaml:"wallCheckRadius"`
	// Layer bits tested for ground and walls (default: ground layer)
	GroundMask uint `yaml:"groundMask"`
}

type CollisionConfig struct {
	MinImpactForce float64 `yaml:"minImpactForce"`
}

// DefaultControllerConfig returns the stock tuning.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		Movement: MovementConfig{
			WalkSpeed:    4,
			Acceleration: 2,
			MovementLerp: 100,
		},
		Jump: JumpConfig{
			Force:            15,
			FallMultiplier:   7,
			VelocityFalloff:  8,
			CoyoteTime:       0.2,
			EnableDoubleJump: true,
		},
		Wall: WallConfig{
			JumpLock:         0.25,
			JumpMovementLerp: 5,
			SlideSpeed:       1,
			ClimbSpeed:       1,
			ClimbUpScale:     0.8,
		},
		Dash: DashConfig{
			Speed:                15,
			Duration:             1,
			ExitMaxVerticalSpeed: 3,
		},
		Detection: DetectionConfig{
			GrounderOffset:  -1,
			GrounderRadius:  0.2,
			WallCheckOffset: 0.5,
			WallCheckRadius: 0.05,
			GroundMask:      1,
		},
		Collision: CollisionConfig{
			MinImpactForce: 2,
		},
	}
}

// Validate rejects values that would make the controller misbehave at runtime.
func (c *ControllerConfig) Validate() error {
	var errs []error
	// Negated comparisons so NaN is rejected too
	positive := func(name string, v float64) {
		if !(v > 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}
	nonNegative := func(name string, v float64) {
		if !(v >= 0) {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", name, v))
		}
	}

	positive("movement.walkSpeed", c.Movement.WalkSpeed)
	positive("movement.acceleration", c.Movement.Acceleration)
	positive("movement.movementLerp", c.Movement.MovementLerp)
	positive("jump.force", c.Jump.Force)
	nonNegative("jump.fallMultiplier", c.Jump.FallMultiplier)
	nonNegative("jump.coyoteTime", c.Jump.CoyoteTime)
	nonNegative("wall.jumpLock", c.Wall.JumpLock)
	positive("wall.jumpMovementLerp", c.Wall.JumpMovementLerp)
	nonNegative("wall.slideSpeed", c.Wall.SlideSpeed)
	nonNegative("wall.climbSpeed", c.Wall.ClimbSpeed)
	nonNegative("wall.climbUpScale", c.Wall.ClimbUpScale)
	positive("dash.speed", c.Dash.Speed)
	positive("dash.duration", c.Dash.Duration)
	nonNegative("dash.exitMaxVerticalSpeed", c.Dash.ExitMaxVerticalSpeed)
	positive("detection.grounderRadius", c.Detection.GrounderRadius)
	positive("detection.wallCheckRadius", c.Detection.WallCheckRadius)
	positive("detection.wallCheckOffset", c.Detection.WallCheckOffset)
	nonNegative("collision.minImpactForce", c.Collision.MinImpactForce)
	if math.IsNaN(c.Detection.GrounderOffset) || math.IsInf(c.Detection.GrounderOffset, 0) {
		errs = append(errs, fmt.Errorf("detection.grounderOffset must be finite, got %v", c.Detection.GrounderOffset))
	}
	if c.Detection.GroundMask == 0 {
		errs = append(errs, errors.New("detection.groundMask must select at least one layer"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// GameConfig is the root config for game.yaml
type GameConfig struct {
	Display   DisplayConfig   `yaml:"display"`
	Physics   PhysicsSettings `yaml:"physics"`
	Character CharacterConfig `yaml:"character"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type DisplayConfig struct {
	ScreenWidth   int     `yaml:"screenWidth"`
	ScreenHeight  int     `yaml:"screenHeight"`
	PixelsPerUnit float64 `yaml:"pixelsPerUnit"`
	Framerate     int     `yaml:"framerate"`
}

type PhysicsSettings struct {
	Gravity  float64 `yaml:"gravity"` // vertical component, negative is down
	Substeps int     `yaml:"substeps"`
	// Height below which the character is removed as out of bounds
	KillPlane float64 `yaml:"killPlane"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultGameConfig returns the settings used when game.yaml omits a section.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Display: DisplayConfig{
			ScreenWidth:   640,
			ScreenHeight:  360,
			PixelsPerUnit: 16,
			Framerate:     60,
		},
		Physics: PhysicsSettings{
			Gravity:   -9.81,
			Substeps:  8,
			KillPlane: -20,
		},
		Character: DefaultCharacterConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate rejects host settings the simulation cannot run with.
func (c *GameConfig) Validate() error {
	var errs []error
	if c.Display.Framerate <= 0 {
		errs = append(errs, fmt.Errorf("display.framerate must be positive, got %d", c.Display.Framerate))
	}
	if !(c.Display.PixelsPerUnit > 0) {
		errs = append(errs, fmt.Errorf("display.pixelsPerUnit must be positive, got %v", c.Display.PixelsPerUnit))
	}
	if c.Physics.Substeps <= 0 {
		errs = append(errs, fmt.Errorf("physics.substeps must be positive, got %d", c.Physics.Substeps))
	}
	if math.IsNaN(c.Physics.Gravity) || math.IsInf(c.Physics.Gravity, 0) {
		errs = append(errs, fmt.Errorf("physics.gravity must be finite, got %v", c.Physics.Gravity))
	}
	if math.IsNaN(c.Physics.KillPlane) {
		errs = append(errs, errors.New("physics.killPlane must be a number"))
	}
	if err := c.Character.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
