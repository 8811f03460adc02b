package playing

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/mgdk/internal/application/replay"
	"github.com/younwookim/mgdk/internal/application/scene"
	"github.com/younwookim/mgdk/internal/application/session"
	"github.com/younwookim/mgdk/internal/application/state"
	"github.com/younwookim/mgdk/internal/domain/entity"
	"github.com/younwookim/mgdk/internal/infrastructure/audio"
	"github.com/younwookim/mgdk/internal/infrastructure/config"
)

const dt = 1.0 / 60

type fakeKeys struct {
	pressed     map[ebiten.Key]bool
	justPressed map[ebiten.Key]bool
}

func newFakeKeys() *fakeKeys {
	return &fakeKeys{
		pressed:     make(map[ebiten.Key]bool),
		justPressed: make(map[ebiten.Key]bool),
	}
}

func (k *fakeKeys) IsPressed(key ebiten.Key) bool     { return k.pressed[key] }
func (k *fakeKeys) IsJustPressed(key ebiten.Key) bool { return k.justPressed[key] }

// tap presses and releases key within a single frame.
func (k *fakeKeys) tap(key ebiten.Key) {
	k.justPressed[key] = true
}

func (k *fakeKeys) nextFrame() {
	clear(k.justPressed)
}

// createTestStage creates a 12x8 stage; floor is optional.
func createTestStage(floor bool) *entity.Stage {
	const w, h = 12, 8
	tiles := make([][]entity.Tile, h)
	for y := range tiles {
		tiles[y] = make([]entity.Tile, w)
		if floor && y == h-1 {
			for x := range tiles[y] {
				tiles[y][x] = entity.Tile{Type: entity.TileSolid}
			}
		}
	}
	return &entity.Stage{
		Width:    w,
		Height:   h,
		TileSize: 1,
		Tiles:    tiles,
		Spawn:    mgl64.Vec3{3, 2.5, 0},
		Triggers: []entity.TriggerRegion{
			{Rect: entity.Rect{X: 8, Y: 1, W: 1, H: 1}, Kind: entity.TriggerPickup},
		},
	}
}

func createTestConfig() *config.Config {
	game := config.DefaultGameConfig()
	game.Physics.KillPlane = -2
	tuning := config.DefaultControllerConfig()
	return &config.Config{Game: &game, Controller: &tuning}
}

func newPlaying(t *testing.T, floor bool, opts ...Option) (*Playing, *fakeKeys) {
	t.Helper()
	cfg := createTestConfig()
	sess, err := session.New(cfg, createTestStage(floor))
	require.NoError(t, err)

	keys := newFakeKeys()
	opts = append([]Option{WithKeys(keys)}, opts...)
	return New(cfg.Game, sess, "test", opts...), keys
}

// run updates the scene for n frames, clearing just-pressed keys after each.
func run(t *testing.T, p *Playing, keys *fakeKeys, n int) scene.Scene {
	t.Helper()
	for i := 0; i < n; i++ {
		next, err := p.Update(dt)
		require.NoError(t, err)
		keys.nextFrame()
		if next != nil {
			return next
		}
	}
	return nil
}

func TestPlaying_ImplementsScene(t *testing.T) {
	// Compile-time check that Playing implements scene.Scene
	var _ scene.Scene = (*Playing)(nil)
}

func TestNewPlaying(t *testing.T) {
	p, _ := newPlaying(t, true)

	assert.NotNil(t, p)
	assert.Equal(t, state.StatePlaying, p.State())
	assert.Nil(t, p.recorder)
	assert.Equal(t, "playing", p.String())
}

func TestPlaying_Update_ReturnsNilWhenPlaying(t *testing.T) {
	p, keys := newPlaying(t, true)

	// Normal update should return nil (stay on same scene)
	next := run(t, p, keys, 1)

	assert.Nil(t, next, "Should return nil when continuing to play")
	assert.Equal(t, 1, p.Session().Frames())
}

func TestPlaying_MovesWithInput(t *testing.T) {
	p, keys := newPlaying(t, true)
	run(t, p, keys, 30)
	startX := p.Session().Body().Position.X()

	keys.pressed[ebiten.KeyArrowRight] = true
	run(t, p, keys, 30)

	assert.Greater(t, p.Session().Body().Position.X(), startX+0.5)
	assert.False(t, p.Session().Body().FacingLeft)
}

func TestPlaying_Pause(t *testing.T) {
	p, keys := newPlaying(t, true)
	run(t, p, keys, 5)

	keys.tap(ebiten.KeyEscape)
	run(t, p, keys, 1)
	assert.Equal(t, state.StatePaused, p.State())

	frames := p.Session().Frames()
	run(t, p, keys, 10)
	assert.Equal(t, frames, p.Session().Frames(), "paused sessions do not step")

	keys.tap(ebiten.KeyEscape)
	run(t, p, keys, 1)
	assert.Equal(t, state.StatePlaying, p.State())

	run(t, p, keys, 1)
	assert.Equal(t, frames+1, p.Session().Frames())
}

func TestPlaying_QuitFromPause(t *testing.T) {
	menu := &stubScene{}
	p, keys := newPlaying(t, true, WithQuit(func() scene.Scene { return menu }))

	keys.tap(ebiten.KeyQ)
	assert.Nil(t, run(t, p, keys, 1), "quit only works while paused")

	keys.tap(ebiten.KeyEscape)
	run(t, p, keys, 1)
	keys.tap(ebiten.KeyQ)
	next := run(t, p, keys, 1)

	assert.Same(t, menu, next)
	assert.Equal(t, state.StateMenu, p.State())
}

type fakeMixer struct {
	volumes map[audio.Channel]float64
	err     error
}

func (m *fakeMixer) Volume(c audio.Channel) float64 {
	if v, ok := m.volumes[c]; ok {
		return v
	}
	return 1
}

func (m *fakeMixer) SetVolume(c audio.Channel, v float64) error {
	m.volumes[c] = v
	return m.err
}

func pause(t *testing.T, p *Playing, keys *fakeKeys) {
	t.Helper()
	keys.tap(ebiten.KeyEscape)
	run(t, p, keys, 1)
	require.Equal(t, state.StatePaused, p.State())
}

func TestPlaying_PauseVolume(t *testing.T) {
	mixer := &fakeMixer{volumes: make(map[audio.Channel]float64)}
	p, keys := newPlaying(t, true, WithMixer(mixer))
	pause(t, p, keys)

	// Master is selected first
	keys.tap(ebiten.KeyArrowLeft)
	run(t, p, keys, 1)
	keys.tap(ebiten.KeyArrowLeft)
	run(t, p, keys, 1)
	assert.InDelta(t, 0.8, mixer.volumes[audio.Master], 1e-9)

	keys.tap(ebiten.KeyArrowDown)
	run(t, p, keys, 1)
	keys.tap(ebiten.KeyArrowDown)
	run(t, p, keys, 1)
	keys.tap(ebiten.KeyArrowRight)
	run(t, p, keys, 1)
	assert.InDelta(t, 1.0, mixer.volumes[audio.Effects], 1e-9, "volume stays within 0..1")

	keys.tap(ebiten.KeyArrowUp)
	run(t, p, keys, 1)
	keys.tap(ebiten.KeyArrowUp)
	run(t, p, keys, 1)
	keys.tap(ebiten.KeyArrowUp)
	run(t, p, keys, 1)
	assert.Equal(t, len(audio.Channels)-1, p.channel, "selection wraps around")

	img := ebiten.NewImage(640, 360)
	assert.NotPanics(t, func() { p.Draw(img) })
}

func TestPlaying_PauseVolumePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings", "volume.yaml")
	mixer := audio.NewMixer(audio.NewStore(path), nopBackend{}, nil)
	p, keys := newPlaying(t, true, WithMixer(mixer))
	pause(t, p, keys)

	for i := 0; i < 3; i++ {
		keys.tap(ebiten.KeyArrowLeft)
		run(t, p, keys, 1)
	}

	store, err := audio.LoadStore(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, store.Get(audio.Master), 1e-9)
	assert.Equal(t, audio.DefaultVolume, store.Get(audio.Music))
}

func TestPlaying_VolumeIgnoredWhilePlaying(t *testing.T) {
	mixer := &fakeMixer{volumes: make(map[audio.Channel]float64)}
	p, keys := newPlaying(t, true, WithMixer(mixer))

	keys.tap(ebiten.KeyArrowLeft)
	run(t, p, keys, 1)

	assert.Empty(t, mixer.volumes)
}

type nopBackend struct{}

func (nopBackend) SetChannelDB(audio.Channel, float64) {}

func TestPlaying_GameOverAndRespawn(t *testing.T) {
	p, keys := newPlaying(t, false)

	run(t, p, keys, 240)
	require.Equal(t, state.StateGameOver, p.State(), "falling past the kill plane ends the run")
	assert.True(t, p.Session().Dead())

	run(t, p, keys, 10)
	assert.Equal(t, state.StateGameOver, p.State())

	keys.tap(ebiten.KeyR)
	run(t, p, keys, 1)

	assert.Equal(t, state.StatePlaying, p.State())
	assert.False(t, p.Session().Dead())
	assert.Equal(t, p.Session().Stage().Spawn, p.Session().Body().Position)
}

func TestPlaying_WithRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	p, keys := newPlaying(t, true, WithRecording(path))
	require.NotNil(t, p.recorder)

	keys.pressed[ebiten.KeyArrowLeft] = true
	run(t, p, keys, 3)
	assert.Equal(t, 3, p.recorder.FrameCount())

	p.OnExit()
	assert.Nil(t, p.recorder)

	data, err := replay.LoadReplay(path)
	require.NoError(t, err)
	assert.Equal(t, "test", data.Stage)
	require.Len(t, data.Frames, 3)
	assert.True(t, data.Frames[0].L)
	assert.Equal(t, -1, data.Frames[2].RX)
	require.NotNil(t, data.Final)
	assert.InDelta(t, p.Session().Body().Position.X(), data.Final.X, 1e-12)
}

func TestPlaying_RecordingReplays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	p, keys := newPlaying(t, true, WithRecording(path))

	keys.pressed[ebiten.KeyArrowRight] = true
	run(t, p, keys, 20)
	keys.tap(ebiten.KeyC)
	keys.pressed[ebiten.KeyC] = true
	run(t, p, keys, 25)
	delete(keys.pressed, ebiten.KeyC)
	keys.tap(ebiten.KeyX)
	run(t, p, keys, 40)
	p.OnExit()

	data, err := replay.LoadReplay(path)
	require.NoError(t, err)

	cfg := createTestConfig()
	sess, err := session.New(cfg, createTestStage(true))
	require.NoError(t, err)
	r := replay.NewReplayer(*data)
	for in, ok := r.NextInput(); ok; in, ok = r.NextInput() {
		sess.Step(in, r.DT())
	}

	final, _ := r.Final()
	assert.Equal(t, final.X, sess.Body().Position.X())
	assert.Equal(t, final.Y, sess.Body().Position.Y())
}

func TestPlaying_Tuning(t *testing.T) {
	tuning := make(chan config.ControllerConfig, 2)
	p, keys := newPlaying(t, true, WithTuning(tuning))

	bad := config.DefaultControllerConfig()
	bad.Jump.Force = -1
	good := config.DefaultControllerConfig()
	good.Movement.WalkSpeed = 9
	tuning <- good
	tuning <- bad
	run(t, p, keys, 1)

	assert.Equal(t, 9.0, p.Session().Controller().Config().Movement.WalkSpeed, "invalid tuning is skipped")
	assert.Empty(t, tuning)
}

func TestPlaying_Draw(t *testing.T) {
	p, keys := newPlaying(t, true)
	run(t, p, keys, 3)
	img := ebiten.NewImage(640, 360)

	assert.NotPanics(t, func() { p.Draw(img) })

	keys.tap(ebiten.KeyEscape)
	run(t, p, keys, 1)
	assert.NotPanics(t, func() { p.Draw(img) })
}

func TestPlaying_OnEnterOnExit(t *testing.T) {
	p, _ := newPlaying(t, true)

	assert.NotPanics(t, func() {
		p.OnEnter()
		p.OnExit()
	})
}

func TestClampView(t *testing.T) {
	tests := []struct {
		name    string
		v, maxV float64
		want    float64
	}{
		{"inside", 3, 10, 3},
		{"below", -2, 10, 0},
		{"above", 12, 10, 10},
		{"stage smaller than view", 5, -4, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampView(tt.v, tt.maxV))
		})
	}
}

type stubScene struct{}

func (*stubScene) Update(float64) (scene.Scene, error) { return nil, nil }
func (*stubScene) Draw(*ebiten.Image)                  {}
func (*stubScene) OnEnter()                            {}
func (*stubScene) OnExit()                             {}
