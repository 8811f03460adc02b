package system

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/younwookim/mgdk/internal/domain/entity"
	"github.com/younwookim/mgdk/internal/infrastructure/config"
)

// Environment is everything the host simulation supplies to a controller tick.
type Environment interface {
	// Now returns the monotonic simulation time in seconds.
	Now() float64
	// Gravity returns the constant gravity vector.
	Gravity() mgl64.Vec3
	// Overlap returns the first collider on mask touching the sphere at center.
	// A miss is a normal outcome, not an error.
	Overlap(center mgl64.Vec3, radius float64, mask entity.LayerMask) (entity.Contact, bool)
	// Remove takes the entity out of the simulation.
	Remove(id entity.EntityID)
}

// ImpactHandler receives impacts that passed the minimum impact force while grounded.
type ImpactHandler func(body *entity.Body, speed float64)

// ControllerOption configures optional collaborators of a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger used for state transitions.
func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithImpactHandler sets the callback for hard landings and bumps.
func WithImpactHandler(h ImpactHandler) ControllerOption {
	return func(c *Controller) {
		c.onImpact = h
	}
}

// Controller is the platformer character movement controller.
// It owns the character's MovementState and mutates a Body once per tick;
// it is not safe for concurrent use.
type Controller struct {
	cfg   config.ControllerConfig
	state entity.MovementState
	frame entity.FrameInput

	log      *slog.Logger
	onImpact ImpactHandler

	removed bool
	warned  bool
}

// NewController creates a controller after validating cfg.
func NewController(cfg config.ControllerConfig, opts ...ControllerOption) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}

	c := &Controller{
		cfg:   cfg,
		state: entity.NewMovementState(cfg.Movement.MovementLerp),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Reconfigure swaps in a new tuning between ticks. The movement state is kept.
func (c *Controller) Reconfigure(cfg config.ControllerConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("failed to reconfigure controller: %w", err)
	}
	c.cfg = cfg
	return nil
}

// Config returns the active tuning.
func (c *Controller) Config() config.ControllerConfig {
	return c.cfg
}

// IsGrounded reports whether the ground sensor touched ground on the last tick.
func (c *Controller) IsGrounded() bool {
	return c.state.Grounded
}

// State returns a copy of the current movement state.
func (c *Controller) State() entity.MovementState {
	return c.state
}

// Removed reports whether the character was taken out of the simulation.
func (c *Controller) Removed() bool {
	return c.removed
}

// Tick advances the controller by one simulation step of dt seconds.
// A missing body or environment makes the tick a no-op.
func (c *Controller) Tick(body *entity.Body, in entity.FrameInput, env Environment, dt float64) {
	if body == nil || env == nil {
		if !c.warned {
			c.warned = true
			c.log.Warn("movement controller has no body or environment bound, skipping ticks")
		}
		return
	}
	if c.removed || dt < 0 {
		return
	}

	c.gatherInput(body, in)
	c.handleGrounding(body, env)
	c.handleWalking(body, dt)
	c.handleJumping(body, env, dt)
	c.handleWallSlide(body)
	c.handleWallGrab(body, env)
	c.handleDashing(body, env)

	// Grab and dash both own the vertical axis
	body.GravityEnabled = !c.state.Grabbing && !c.state.Dashing
}
