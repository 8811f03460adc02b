package entity

// FrameInput is the input sample for a single simulation tick.
type FrameInput struct {
	// Continuous axes in -1..1, smoothed by the input source.
	X, Y float64
	// Discrete axes in {-1, 0, 1}.
	RawX, RawY int

	// Held directional buttons.
	Left, Right bool

	JumpDown bool // pressed this tick
	JumpHeld bool
	DashDown bool // pressed this tick
	GrabHeld bool
}
