// Package playing provides the main gameplay scene.
package playing

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/younwookim/mgdk/internal/application/replay"
	"github.com/younwookim/mgdk/internal/application/scene"
	"github.com/younwookim/mgdk/internal/application/session"
	"github.com/younwookim/mgdk/internal/application/state"
	"github.com/younwookim/mgdk/internal/application/system"
	"github.com/younwookim/mgdk/internal/domain/entity"
	"github.com/younwookim/mgdk/internal/infrastructure/audio"
	"github.com/younwookim/mgdk/internal/infrastructure/config"
)

// volumeStep is how much one Left/Right press changes a channel's volume.
const volumeStep = 0.1

// Colors for rendering
var (
	colorWall     = color.RGBA{80, 80, 100, 255}
	colorSpike    = color.RGBA{200, 50, 50, 255}
	colorReset    = color.RGBA{80, 160, 200, 255}
	colorPlatform = color.RGBA{140, 110, 70, 255}
	colorPickup   = color.RGBA{255, 215, 0, 96}
	colorDeath    = color.RGBA{200, 50, 50, 96}
	colorPlayer   = color.RGBA{100, 200, 100, 255}
	colorDashing  = color.RGBA{255, 255, 255, 255}
	colorGrabbing = color.RGBA{200, 200, 100, 255}
	colorBG       = color.RGBA{26, 26, 46, 255}
)

// Mixer is the per-channel volume control offered on the pause screen.
type Mixer interface {
	Volume(c audio.Channel) float64
	SetVolume(c audio.Channel, linear float64) error
}

// Option configures a Playing scene.
type Option func(*Playing)

// WithKeys replaces the keyboard source, for tests.
func WithKeys(keys system.KeyReader) Option {
	return func(p *Playing) {
		p.keys = keys
	}
}

// WithRecording records every tick's input and saves it to path on exit.
// An empty path saves under a generated name.
func WithRecording(path string) Option {
	return func(p *Playing) {
		p.recording = true
		p.recordFilename = path
	}
}

// WithLogger sets the scene's logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Playing) {
		if l != nil {
			p.log = l
		}
	}
}

// WithQuit sets the scene to go to when quitting from the pause screen.
func WithQuit(next func() scene.Scene) Option {
	return func(p *Playing) {
		p.quit = next
	}
}

// WithTuning applies controller tunings received on ch between ticks.
func WithTuning(ch <-chan config.ControllerConfig) Option {
	return func(p *Playing) {
		p.tuning = ch
	}
}

// WithMixer enables the volume controls on the pause screen.
func WithMixer(m Mixer) Option {
	return func(p *Playing) {
		p.mixer = m
	}
}

// Playing is the main gameplay scene
type Playing struct {
	session   *session.Session
	stageName string
	state     *state.Machine
	keys      system.KeyReader
	input     *system.InputSystem
	log       *slog.Logger
	quit      func() scene.Scene
	tuning    <-chan config.ControllerConfig

	mixer   Mixer
	channel int // index into audio.Channels

	screenW int
	screenH int
	ppu     float64

	// Input recording
	recording      bool
	recorder       *replay.Recorder
	recordFilename string
	dt             float64
}

// New creates a new Playing scene over a running session.
func New(cfg *config.GameConfig, sess *session.Session, stageName string, opts ...Option) *Playing {
	p := &Playing{
		session:   sess,
		stageName: stageName,
		state:     state.NewMachine(state.StatePlaying),
		keys:      system.EbitenKeys(),
		log:       slog.Default(),
		screenW:   cfg.Display.ScreenWidth,
		screenH:   cfg.Display.ScreenHeight,
		ppu:       cfg.Display.PixelsPerUnit,
		dt:        1.0 / float64(cfg.Display.Framerate),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.input = system.NewInputSystemWithReader(p.keys, system.DefaultBindings())

	if p.recording {
		p.recorder = replay.NewRecorder(stageName, p.dt)
		p.log.Info("recording enabled", "path", p.recordFilename, "stage", stageName)
	}
	return p
}

// State returns the scene's current game state.
func (p *Playing) State() state.GameState {
	return p.state.Current()
}

// Session returns the simulation the scene drives.
func (p *Playing) Session() *session.Session {
	return p.session
}

// Update proceeds the game state (implements scene.Scene)
func (p *Playing) Update(dt float64) (scene.Scene, error) {
	switch p.state.Current() {
	case state.StatePlaying:
		p.updatePlaying(dt)
	case state.StatePaused:
		if p.keys.IsJustPressed(ebiten.KeyEscape) {
			p.transition(state.StatePlaying)
		} else if p.keys.IsJustPressed(ebiten.KeyQ) && p.quit != nil {
			p.transition(state.StateMenu)
			return p.quit(), nil
		}
		p.updateVolume()
	case state.StateGameOver:
		if p.keys.IsJustPressed(ebiten.KeyEnter) || p.keys.IsJustPressed(ebiten.KeyR) {
			p.restart()
		}
	}

	return nil, nil // nil = stay on this scene
}

func (p *Playing) updatePlaying(dt float64) {
	// Check for pause
	if p.keys.IsJustPressed(ebiten.KeyEscape) {
		p.transition(state.StatePaused)
		return
	}

	// F5: Save recording manually
	if p.keys.IsJustPressed(ebiten.KeyF5) && p.recorder != nil {
		p.saveRecording()
	}

	p.applyTuning()

	in := p.input.Sample(dt)
	if p.recorder != nil {
		p.recorder.RecordFrame(in)
	}

	ev := p.session.Step(in, dt)
	if ev.Died {
		p.transition(state.StateGameOver)
	}
}

// updateVolume handles the pause screen's volume controls: Up/Down pick a
// channel, Left/Right change it.
func (p *Playing) updateVolume() {
	if p.mixer == nil {
		return
	}

	n := len(audio.Channels)
	switch {
	case p.keys.IsJustPressed(ebiten.KeyArrowUp):
		p.channel = (p.channel + n - 1) % n
	case p.keys.IsJustPressed(ebiten.KeyArrowDown):
		p.channel = (p.channel + 1) % n
	case p.keys.IsJustPressed(ebiten.KeyArrowLeft):
		p.changeVolume(-volumeStep)
	case p.keys.IsJustPressed(ebiten.KeyArrowRight):
		p.changeVolume(volumeStep)
	}
}

func (p *Playing) changeVolume(delta float64) {
	c := audio.Channels[p.channel]
	// Snap to the step grid so repeated presses land on round values
	v := math.Round((p.mixer.Volume(c)+delta)/volumeStep) * volumeStep
	v = math.Min(math.Max(v, 0), 1)
	if err := p.mixer.SetVolume(c, v); err != nil {
		p.log.Warn("failed to change volume", "channel", c, "error", err)
	}
}

// applyTuning applies every pending tuning in arrival order.
func (p *Playing) applyTuning() {
	for {
		select {
		case cfg := <-p.tuning:
			if err := p.session.Reconfigure(cfg); err != nil {
				p.log.Warn("rejected controller tuning", "error", err)
			}
		default:
			return
		}
	}
}

func (p *Playing) transition(to state.GameState) {
	from := p.state.Current()
	if err := p.state.Transition(to); err != nil {
		p.log.Warn("ignored state change", "error", err)
		return
	}
	p.log.Debug("game state", "from", from, "to", to)
}

func (p *Playing) restart() {
	if err := p.session.Respawn(); err != nil {
		p.log.Error("failed to respawn", "error", err)
		return
	}
	p.input.Reset()
	p.transition(state.StatePlaying)

	// A recording covers a single life
	if p.recording {
		p.saveRecording()
		p.recorder = replay.NewRecorder(p.stageName, p.dt)
		p.log.Info("recording restarted")
	}
}

// saveRecording saves the current recording to file and ends it.
func (p *Playing) saveRecording() {
	if p.recorder == nil {
		return
	}

	filename := p.recordFilename
	if filename == "" {
		filename = replay.GenerateFilename()
	}

	p.recorder.Finish(replay.Capture(p.session))
	if err := p.recorder.Save(filename); err != nil {
		p.log.Error("failed to save recording", "path", filename, "error", err)
		return
	}
	p.log.Info("recording saved", "path", filename, "frames", p.recorder.FrameCount())
	p.recorder = nil
}

// Draw renders the game screen
func (p *Playing) Draw(screen *ebiten.Image) {
	// Fill background
	screen.Fill(colorBG)

	camX, camY := p.camera()

	p.drawTiles(screen, camX, camY)
	p.drawTriggers(screen, camX, camY)
	p.drawPlatforms(screen, camX, camY)
	p.drawPlayer(screen, camX, camY)
	p.drawUI(screen)

	// Draw state overlays
	switch p.state.Current() {
	case state.StatePaused:
		p.drawPauseOverlay(screen)
	case state.StateGameOver:
		p.drawGameOverOverlay(screen)
	}
}

// camera returns the world position shown at the bottom-left of the screen,
// centered on the body and clamped to the stage.
func (p *Playing) camera() (float64, float64) {
	viewW := float64(p.screenW) / p.ppu
	viewH := float64(p.screenH) / p.ppu
	pos := p.session.Body().Position
	bounds := p.session.Stage().Bounds()

	camX := clampView(pos.X()-viewW/2, bounds.W-viewW)
	camY := clampView(pos.Y()-viewH/2, bounds.H-viewH)
	return camX, camY
}

func clampView(v, maxV float64) float64 {
	if maxV < 0 {
		return maxV / 2
	}
	if v > maxV {
		v = maxV
	}
	if v < 0 {
		v = 0
	}
	return v
}

// drawRect draws a world-space rectangle; world y points up, screen y down.
func (p *Playing) drawRect(screen *ebiten.Image, r entity.Rect, camX, camY float64, c color.Color) {
	x := (r.X - camX) * p.ppu
	y := float64(p.screenH) - (r.Y+r.H-camY)*p.ppu
	ebitenutil.DrawRect(screen, x, y, r.W*p.ppu, r.H*p.ppu, c)
}

func (p *Playing) drawTiles(screen *ebiten.Image, camX, camY float64) {
	stage := p.session.Stage()
	for ty := 0; ty < stage.Height; ty++ {
		for tx := 0; tx < stage.Width; tx++ {
			var c color.Color
			switch stage.GetTile(tx, ty).Type {
			case entity.TileSolid:
				c = colorWall
			case entity.TileDeath:
				c = colorSpike
			case entity.TileReset:
				c = colorReset
			default:
				continue
			}
			p.drawRect(screen, stage.TileRect(tx, ty), camX, camY, c)
		}
	}
}

func (p *Playing) drawTriggers(screen *ebiten.Image, camX, camY float64) {
	for _, t := range p.session.Stage().Triggers {
		c := colorPickup
		if t.Kind == entity.TriggerDeath {
			c = colorDeath
		}
		p.drawRect(screen, t.Rect, camX, camY, c)
	}
}

func (p *Playing) drawPlatforms(screen *ebiten.Image, camX, camY float64) {
	for _, r := range p.session.World().PlatformRects() {
		p.drawRect(screen, r, camX, camY, colorPlatform)
	}
}

func (p *Playing) drawPlayer(screen *ebiten.Image, camX, camY float64) {
	if p.session.Dead() {
		return
	}
	st := p.session.Controller().State()
	c := colorPlayer
	switch {
	case st.Dashing:
		c = colorDashing
	case st.Grabbing:
		c = colorGrabbing
	}

	body := p.session.Body()
	p.drawRect(screen, body.Bounds(), camX, camY, c)

	// Facing marker
	b := body.Bounds()
	eye := entity.Rect{X: b.X + b.W - 0.2, Y: b.Y + b.H*0.7, W: 0.15, H: 0.15}
	if body.FacingLeft {
		eye.X = b.X + 0.05
	}
	p.drawRect(screen, eye, camX, camY, colorBG)
}

func (p *Playing) drawUI(screen *ebiten.Image) {
	st := p.session.Controller().State()
	body := p.session.Body()

	status := fmt.Sprintf("pos %.2f,%.2f  vel %.2f,%.2f\ngrounded:%t jumped:%t double:%t dash:%t slide:%t grab:%t",
		body.Position.X(), body.Position.Y(), body.Velocity.X(), body.Velocity.Y(),
		st.Grounded, st.HasJumped, st.HasDoubleJumped, st.Dashing, st.WallSliding, st.Grabbing)
	ebitenutil.DebugPrintAt(screen, status, 10, p.screenH-40)

	// Controls
	debugText := "Arrows/WASD: Move | C: Jump | X: Dash | Z: Grab | ESC: Pause"
	if p.recorder != nil {
		debugText += " | F5: Save replay"
	}
	ebitenutil.DebugPrint(screen, debugText)
}

func (p *Playing) drawPauseOverlay(screen *ebiten.Image) {
	// Semi-transparent overlay
	overlay := color.RGBA{0, 0, 0, 128}
	ebitenutil.DrawRect(screen, 0, 0, float64(p.screenW), float64(p.screenH), overlay)

	text := "PAUSED\n\nPress ESC to resume"
	if p.quit != nil {
		text += "\nPress Q to quit"
	}
	if p.mixer != nil {
		text += "\n\nVolume (Up/Down, Left/Right)"
		for i, c := range audio.Channels {
			marker := "  "
			if i == p.channel {
				marker = "> "
			}
			text += fmt.Sprintf("\n%s%-9s %3.0f%%", marker, c, p.mixer.Volume(c)*100)
		}
	}
	ebitenutil.DebugPrintAt(screen, text, p.screenW/2-50, p.screenH/2-60)
}

func (p *Playing) drawGameOverOverlay(screen *ebiten.Image) {
	overlay := color.RGBA{100, 0, 0, 180}
	ebitenutil.DrawRect(screen, 0, 0, float64(p.screenW), float64(p.screenH), overlay)

	text := fmt.Sprintf("GAME OVER\n\nSurvived %d frames\n\nPress R to respawn", p.session.Frames())
	ebitenutil.DebugPrintAt(screen, text, p.screenW/2-60, p.screenH/2-30)
}

// OnEnter is called when entering this scene
func (p *Playing) OnEnter() {
	p.log.Info("stage started", "stage", p.stageName)
}

// OnExit is called when leaving this scene
func (p *Playing) OnExit() {
	p.saveRecording()
}

// String names the scene in logs.
func (p *Playing) String() string {
	return "playing"
}
