// Package replay records per-frame controller input and plays it back.
package replay

import (
	"github.com/younwookim/mgdk/internal/application/session"
	"github.com/younwookim/mgdk/internal/domain/entity"
)

// Version is written into every recording.
const Version = "2.0"

// FrameInput records input state for a single frame
type FrameInput struct {
	F  int     `json:"f"`            // Frame number
	X  float64 `json:"x,omitempty"`  // Smoothed horizontal axis
	Y  float64 `json:"y,omitempty"`  // Smoothed vertical axis
	RX int     `json:"rx,omitempty"` // Raw horizontal axis
	RY int     `json:"ry,omitempty"` // Raw vertical axis
	L  bool    `json:"l,omitempty"`  // Left held
	R  bool    `json:"r,omitempty"`  // Right held
	JD bool    `json:"jd,omitempty"` // Jump pressed this frame
	JH bool    `json:"jh,omitempty"` // Jump held
	DD bool    `json:"dd,omitempty"` // Dash pressed this frame
	GH bool    `json:"gh,omitempty"` // Grab held
}

// NewFrameInput packs a controller input sample for frame f.
func NewFrameInput(f int, in entity.FrameInput) FrameInput {
	return FrameInput{
		F:  f,
		X:  in.X,
		Y:  in.Y,
		RX: in.RawX,
		RY: in.RawY,
		L:  in.Left,
		R:  in.Right,
		JD: in.JumpDown,
		JH: in.JumpHeld,
		DD: in.DashDown,
		GH: in.GrabHeld,
	}
}

// Input unpacks the recorded sample.
func (fi FrameInput) Input() entity.FrameInput {
	return entity.FrameInput{
		X:        fi.X,
		Y:        fi.Y,
		RawX:     fi.RX,
		RawY:     fi.RY,
		Left:     fi.L,
		Right:    fi.R,
		JumpDown: fi.JD,
		JumpHeld: fi.JH,
		DashDown: fi.DD,
		GrabHeld: fi.GH,
	}
}

// Snapshot is the character's state at the end of a recording. Playback
// compares against it to detect divergence.
type Snapshot struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Grounded bool    `json:"grounded"`
	Removed  bool    `json:"removed"`
}

// ReplayData contains all data needed to replay a game session
type ReplayData struct {
	Version   string       `json:"version"`
	Stage     string       `json:"stage"`
	StartTime string       `json:"startTime"`
	DT        float64      `json:"dt"`
	Frames    []FrameInput `json:"frames"`
	Final     *Snapshot    `json:"final,omitempty"`
}

// Capture takes the end-of-recording snapshot of a running session.
func Capture(s *session.Session) Snapshot {
	body := s.Body()
	return Snapshot{
		X:        body.Position.X(),
		Y:        body.Position.Y(),
		Grounded: s.Controller().IsGrounded(),
		Removed:  s.Dead(),
	}
}
