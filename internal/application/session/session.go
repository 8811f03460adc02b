// Package session runs one character on one stage: it owns the world, the
// integrator and the movement controller and steps them in a fixed order.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/younwookim/mgdk/internal/application/system"
	"github.com/younwookim/mgdk/internal/domain/entity"
	"github.com/younwookim/mgdk/internal/infrastructure/config"
	"github.com/younwookim/mgdk/internal/infrastructure/world"
)

// ErrNoStage is returned when a session is created without a stage.
var ErrNoStage = errors.New("session needs a stage")

// Events is what happened during one Step.
type Events struct {
	// Collisions the controller reported as hard impacts
	Impacts []system.Collision
	Entered []entity.Trigger
	Died    bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger handed to the world and the controller.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithImpactHandler forwards hard impacts to h.
func WithImpactHandler(h system.ImpactHandler) Option {
	return func(s *Session) {
		s.onImpact = h
	}
}

// Session is a single playthrough of a stage. It is not safe for concurrent use.
type Session struct {
	game  config.GameConfig
	stage *entity.Stage

	world      *world.World
	physics    *system.PhysicsSystem
	controller *system.Controller
	body       *entity.Body

	log      *slog.Logger
	onImpact system.ImpactHandler

	frames int
}

// New builds the world for stage and spawns the character at the stage's spawn point.
func New(cfg *config.Config, stage *entity.Stage, opts ...Option) (*Session, error) {
	if stage == nil {
		return nil, ErrNoStage
	}
	if cfg == nil || cfg.Game == nil || cfg.Controller == nil {
		return nil, fmt.Errorf("%w: session needs game and controller settings", config.ErrInvalidConfig)
	}

	s := &Session{
		game:  *cfg.Game,
		stage: stage,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	gravity := mgl64.Vec3{0, s.game.Physics.Gravity, 0}
	s.world = world.NewFromStage(stage, gravity, world.WithLogger(s.log))
	s.physics = system.NewPhysicsSystem(s.world, s.game.Physics.Substeps)

	if err := s.spawn(*cfg.Controller); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) spawn(tuning config.ControllerConfig) error {
	controller, err := system.NewController(tuning,
		system.WithLogger(s.log),
		system.WithImpactHandler(s.onImpact),
	)
	if err != nil {
		return err
	}

	char := s.game.Character
	s.body = entity.NewBody(s.world.NewEntityID(), s.stage.Spawn, char.HalfWidth, char.HalfHeight)
	s.controller = controller
	s.log.Debug("character spawned", "entity", s.body.ID, "x", s.body.Position.X(), "y", s.body.Position.Y())
	return nil
}

// Step advances the session by dt seconds: controller, integrator, contact
// callbacks, kill plane, then the world's clock and platforms.
func (s *Session) Step(in entity.FrameInput, dt float64) Events {
	var ev Events
	if dt <= 0 {
		return ev
	}
	s.frames++

	if !s.controller.Removed() {
		s.controller.Tick(s.body, in, s.world, dt)
		result := s.physics.Step(s.body, dt)

		for _, c := range result.Collisions {
			if s.controller.OnCollision(s.body, c.Speed) {
				ev.Impacts = append(ev.Impacts, c)
			}
		}
		for _, t := range result.Entered {
			s.controller.OnTriggerEnter(s.body, t, s.world)
			ev.Entered = append(ev.Entered, t)
		}

		if !s.controller.Removed() && s.body.Position.Y() < s.game.Physics.KillPlane {
			s.log.Info("character fell out of the stage", "entity", s.body.ID, "y", s.body.Position.Y())
			s.controller.OnTriggerEnter(s.body, entity.Trigger{Kind: entity.TriggerDeath}, s.world)
		}
		ev.Died = s.controller.Removed()
	}

	s.world.Step(dt)
	return ev
}

// Respawn replaces a dead (or live) character with a fresh one at the spawn point.
// The world keeps running; tuning carries over.
func (s *Session) Respawn() error {
	old := s.body.ID
	if err := s.spawn(s.controller.Config()); err != nil {
		return err
	}
	s.physics.Forget(old)
	s.log.Info("character respawned", "entity", s.body.ID, "previous", old)
	return nil
}

// Reconfigure swaps the controller's tuning without resetting its state.
func (s *Session) Reconfigure(tuning config.ControllerConfig) error {
	if err := s.controller.Reconfigure(tuning); err != nil {
		return err
	}
	s.log.Info("controller tuning reloaded")
	return nil
}

// Dead reports whether the character has been removed.
func (s *Session) Dead() bool {
	return s.controller.Removed()
}

// Frames returns the number of steps taken.
func (s *Session) Frames() int {
	return s.frames
}

// Body returns the current character. Respawn replaces it.
func (s *Session) Body() *entity.Body {
	return s.body
}

// Controller returns the movement controller driving the current character.
func (s *Session) Controller() *system.Controller {
	return s.controller
}

// World returns the spatial world the session steps.
func (s *Session) World() *world.World {
	return s.world
}

// Stage returns the stage the world was built from.
func (s *Session) Stage() *entity.Stage {
	return s.stage
}
