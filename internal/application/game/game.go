// Package game provides the main game loop manager that handles Scene transitions.
package game

import (
	"fmt"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/mgdk/internal/application/scene"
)

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the logger used for scene transitions.
func WithLogger(l *slog.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.log = l
		}
	}
}

// WithFramerate derives the fixed update step from the target framerate.
func WithFramerate(fps int) Option {
	return func(g *Game) {
		if fps > 0 {
			g.dt = 1.0 / float64(fps)
		}
	}
}

// Game implements ebiten.Game and manages Scene transitions.
type Game struct {
	current scene.Scene
	screenW int
	screenH int
	dt      float64
	log     *slog.Logger
}

// New creates a new Game with the given initial scene.
// The initial scene's OnEnter is called immediately.
func New(initialScene scene.Scene, screenW, screenH int, opts ...Option) *Game {
	g := &Game{
		current: initialScene,
		screenW: screenW,
		screenH: screenH,
		dt:      1.0 / 60.0, // Default to 60 FPS
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.current.OnEnter()
	g.log.Debug("scene entered", "scene", sceneName(g.current))
	return g
}

// Update updates the current scene and handles scene transitions.
// Implements ebiten.Game interface.
func (g *Game) Update() error {
	next, err := g.current.Update(g.dt)
	if err != nil {
		return err
	}

	// Handle scene transition
	if next != nil {
		g.log.Info("scene transition", "from", sceneName(g.current), "to", sceneName(next))
		g.current.OnExit()
		g.current = next
		g.current.OnEnter()
	}

	return nil
}

// Draw renders the current scene.
// Implements ebiten.Game interface.
func (g *Game) Draw(screen *ebiten.Image) {
	g.current.Draw(screen)
}

// Layout returns the game's logical screen dimensions.
// Implements ebiten.Game interface.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.screenW, g.screenH
}

// Current returns the active scene.
func (g *Game) Current() scene.Scene {
	return g.current
}

// DT returns the fixed update step in seconds.
func (g *Game) DT() float64 {
	return g.dt
}

// SetDT sets the delta time used for updates.
// Useful for testing or custom frame rates.
func (g *Game) SetDT(dt float64) {
	g.dt = dt
}

func sceneName(s scene.Scene) string {
	if n, ok := s.(fmt.Stringer); ok {
		return n.String()
	}
	return fmt.Sprintf("%T", s)
}
