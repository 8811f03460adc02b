package system

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/younwookim/mgdk/internal/domain/entity"
)

// KeyReader reads keyboard state. The default reads ebiten's global state.
type KeyReader interface {
	IsPressed(k ebiten.Key) bool
	IsJustPressed(k ebiten.Key) bool
}

type ebitenKeys struct{}

func (ebitenKeys) IsPressed(k ebiten.Key) bool     { return ebiten.IsKeyPressed(k) }
func (ebitenKeys) IsJustPressed(k ebiten.Key) bool { return inpututil.IsKeyJustPressed(k) }

// EbitenKeys returns a KeyReader over ebiten's keyboard state.
func EbitenKeys() KeyReader {
	return ebitenKeys{}
}

// Bindings maps actions to keys. Any key of an action triggers it.
type Bindings struct {
	Left, Right, Up, Down []ebiten.Key
	Jump, Dash, Grab      []ebiten.Key
}

// DefaultBindings returns arrow/WASD movement, C to jump, X to dash, Z to grab.
func DefaultBindings() Bindings {
	return Bindings{
		Left:  []ebiten.Key{ebiten.KeyArrowLeft, ebiten.KeyA},
		Right: []ebiten.Key{ebiten.KeyArrowRight, ebiten.KeyD},
		Up:    []ebiten.Key{ebiten.KeyArrowUp, ebiten.KeyW},
		Down:  []ebiten.Key{ebiten.KeyArrowDown, ebiten.KeyS},
		Jump:  []ebiten.Key{ebiten.KeyC, ebiten.KeySpace},
		Dash:  []ebiten.Key{ebiten.KeyX, ebiten.KeyShiftLeft},
		Grab:  []ebiten.Key{ebiten.KeyZ},
	}
}

// Axis smoothing: how fast the continuous axes follow a held direction
// and fall back to zero once released.
const (
	axisSensitivity = 3.0
	axisGravity     = 3.0
)

// InputSystem samples the keyboard into a FrameInput each tick.
// It keeps the smoothed continuous axes between ticks.
type InputSystem struct {
	keys     KeyReader
	bindings Bindings
	axisX    float64
	axisY    float64
}

// NewInputSystem creates an input system reading ebiten's keyboard state
func NewInputSystem(bindings Bindings) *InputSystem {
	return NewInputSystemWithReader(EbitenKeys(), bindings)
}

// NewInputSystemWithReader creates an input system over an arbitrary key source.
func NewInputSystemWithReader(keys KeyReader, bindings Bindings) *InputSystem {
	return &InputSystem{keys: keys, bindings: bindings}
}

// Sample reads the current input state, advancing axis smoothing by dt.
func (s *InputSystem) Sample(dt float64) entity.FrameInput {
	left := s.anyPressed(s.bindings.Left)
	right := s.anyPressed(s.bindings.Right)
	up := s.anyPressed(s.bindings.Up)
	down := s.anyPressed(s.bindings.Down)

	rawX := rawAxis(left, right)
	rawY := rawAxis(down, up)
	s.axisX = smoothAxis(s.axisX, rawX, dt)
	s.axisY = smoothAxis(s.axisY, rawY, dt)

	return entity.FrameInput{
		X:        s.axisX,
		Y:        s.axisY,
		RawX:     rawX,
		RawY:     rawY,
		Left:     left,
		Right:    right,
		JumpDown: s.anyJustPressed(s.bindings.Jump),
		JumpHeld: s.anyPressed(s.bindings.Jump),
		DashDown: s.anyJustPressed(s.bindings.Dash),
		GrabHeld: s.anyPressed(s.bindings.Grab),
	}
}

// Reset clears the smoothed axes, e.g. on respawn.
func (s *InputSystem) Reset() {
	s.axisX, s.axisY = 0, 0
}

func (s *InputSystem) anyPressed(keys []ebiten.Key) bool {
	for _, k := range keys {
		if s.keys.IsPressed(k) {
			return true
		}
	}
	return false
}

func (s *InputSystem) anyJustPressed(keys []ebiten.Key) bool {
	for _, k := range keys {
		if s.keys.IsJustPressed(k) {
			return true
		}
	}
	return false
}

// rawAxis returns -1, 0 or 1. Opposing keys cancel out.
func rawAxis(negative, positive bool) int {
	v := 0
	if negative {
		v--
	}
	if positive {
		v++
	}
	return v
}

// smoothAxis moves value toward raw. Reversing direction snaps through zero first.
func smoothAxis(value float64, raw int, dt float64) float64 {
	if raw == 0 {
		return moveTowards(value, 0, axisGravity*dt)
	}
	target := float64(raw)
	if value != 0 && sign(value) != target {
		value = 0
	}
	return moveTowards(value, target, axisSensitivity*dt)
}
