// Package menu provides the title menu scene.
package menu

import (
	"context"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/younwookim/mgdk/internal/application/bootstrap"
	"github.com/younwookim/mgdk/internal/application/scene"
	"github.com/younwookim/mgdk/internal/application/state"
	"github.com/younwookim/mgdk/internal/application/system"
)

var (
	colorBG       = color.RGBA{26, 26, 46, 255}
	colorSelected = color.RGBA{100, 200, 100, 255}
)

// Item is a menu entry.
type Item int

const (
	ItemPlay Item = iota
	ItemQuit
)

var items = []Item{ItemPlay, ItemQuit}

func (i Item) String() string {
	switch i {
	case ItemPlay:
		return "Play"
	case ItemQuit:
		return "Quit"
	default:
		return "?"
	}
}

// PlayFunc builds the gameplay scene once bootstrapping has finished.
type PlayFunc func() (scene.Scene, error)

// Option configures a Menu.
type Option func(*Menu)

// WithKeys replaces the keyboard source, for tests.
func WithKeys(keys system.KeyReader) Option {
	return func(m *Menu) {
		m.keys = keys
	}
}

// WithLogger sets the menu's logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Menu) {
		if l != nil {
			m.log = l
		}
	}
}

// WithScreen sets the logical screen size used for layout.
func WithScreen(w, h int) Option {
	return func(m *Menu) {
		m.screenW, m.screenH = w, h
	}
}

// Menu is the title scene. Play runs the game bootstrap in the background
// and switches to the gameplay scene when it succeeds; Quit ends the game.
type Menu struct {
	initiator bootstrap.Initiator
	play      PlayFunc
	keys      system.KeyReader
	log       *slog.Logger
	state     *state.Machine

	selected int
	pending  <-chan error
	cancel   context.CancelFunc
	failure  string

	screenW, screenH int
}

// New creates a menu that bootstraps with initiator and then calls play.
func New(initiator bootstrap.Initiator, play PlayFunc, opts ...Option) *Menu {
	m := &Menu{
		initiator: initiator,
		play:      play,
		keys:      system.EbitenKeys(),
		log:       slog.Default(),
		state:     state.NewMachine(state.StateMenu),
		screenW:   640,
		screenH:   360,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Selected returns the highlighted entry.
func (m *Menu) Selected() Item {
	return items[m.selected]
}

// Loading reports whether a bootstrap is in flight.
func (m *Menu) Loading() bool {
	return m.state.Is(state.StateLoading)
}

// Update implements scene.Scene.
func (m *Menu) Update(_ float64) (scene.Scene, error) {
	if m.Loading() {
		return m.poll()
	}

	switch {
	case m.keys.IsJustPressed(ebiten.KeyEscape):
		return nil, ebiten.Termination
	case m.keys.IsJustPressed(ebiten.KeyArrowUp), m.keys.IsJustPressed(ebiten.KeyW):
		m.selected = (m.selected + len(items) - 1) % len(items)
	case m.keys.IsJustPressed(ebiten.KeyArrowDown), m.keys.IsJustPressed(ebiten.KeyS):
		m.selected = (m.selected + 1) % len(items)
	case m.keys.IsJustPressed(ebiten.KeyEnter), m.keys.IsJustPressed(ebiten.KeySpace):
		return m.activate()
	}
	return nil, nil
}

func (m *Menu) activate() (scene.Scene, error) {
	switch m.Selected() {
	case ItemQuit:
		m.log.Info("quit selected")
		return nil, ebiten.Termination
	case ItemPlay:
		if err := m.state.Transition(state.StateLoading); err != nil {
			return nil, err
		}
		m.failure = ""
		ctx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel
		m.pending = bootstrap.Start(ctx, m.initiator, m.log)
	}
	return nil, nil
}

// poll checks the running bootstrap without blocking the frame.
func (m *Menu) poll() (scene.Scene, error) {
	select {
	case err := <-m.pending:
		m.stopLoading()
		if err != nil {
			m.log.Error("failed to start game", "error", err)
			m.failure = err.Error()
			_ = m.state.Transition(state.StateMenu)
			return nil, nil
		}

		next, err := m.play()
		if err != nil {
			m.log.Error("failed to create gameplay scene", "error", err)
			m.failure = err.Error()
			_ = m.state.Transition(state.StateMenu)
			return nil, nil
		}
		_ = m.state.Transition(state.StatePlaying)
		return next, nil
	default:
		return nil, nil
	}
}

func (m *Menu) stopLoading() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.pending = nil
}

// Draw implements scene.Scene.
func (m *Menu) Draw(screen *ebiten.Image) {
	screen.Fill(colorBG)

	x := m.screenW/2 - 30
	y := m.screenH/2 - 20
	ebitenutil.DebugPrintAt(screen, "MGDK", x, y-30)

	if m.Loading() {
		ebitenutil.DebugPrintAt(screen, "Loading...", x, y)
		return
	}
	for i, item := range items {
		if i == m.selected {
			ebitenutil.DrawRect(screen, float64(x-12), float64(y+i*16+4), 6, 6, colorSelected)
		}
		ebitenutil.DebugPrintAt(screen, item.String(), x, y+i*16)
	}
	if m.failure != "" {
		ebitenutil.DebugPrintAt(screen, m.failure, 10, m.screenH-20)
	}
}

// OnEnter implements scene.Scene. Returning to the menu resets it.
func (m *Menu) OnEnter() {
	m.state = state.NewMachine(state.StateMenu)
	m.selected = 0
}

// OnExit implements scene.Scene and abandons a bootstrap still in flight.
func (m *Menu) OnExit() {
	m.stopLoading()
}

// String names the scene in logs.
func (m *Menu) String() string {
	return "menu"
}
