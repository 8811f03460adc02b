package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/younwookim/mgdk/internal/domain/entity"
)

// Replayer handles input playback from recorded data
type Replayer struct {
	data  ReplayData
	frame int
}

// NewReplayer creates a new replayer from replay data
func NewReplayer(data ReplayData) *Replayer {
	return &Replayer{data: data}
}

// LoadReplay loads replay data from a file
func LoadReplay(filename string) (*ReplayData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var data ReplayData
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}
	if data.DT <= 0 {
		return nil, fmt.Errorf("replay %s has no frame step", filename)
	}

	return &data, nil
}

// NextInput returns the input for the current frame and advances
func (r *Replayer) NextInput() (entity.FrameInput, bool) {
	if r.frame >= len(r.data.Frames) {
		return entity.FrameInput{}, false
	}

	fi := r.data.Frames[r.frame]
	r.frame++
	return fi.Input(), true
}

// CurrentFrame returns the current frame number
func (r *Replayer) CurrentFrame() int {
	return r.frame
}

// TotalFrames returns the total number of frames
func (r *Replayer) TotalFrames() int {
	return len(r.data.Frames)
}

// DT returns the fixed step the recording was made with.
func (r *Replayer) DT() float64 {
	return r.data.DT
}

// Stage returns the recorded stage name.
func (r *Replayer) Stage() string {
	return r.data.Stage
}

// Final returns the recorded end state, if any.
func (r *Replayer) Final() (Snapshot, bool) {
	if r.data.Final == nil {
		return Snapshot{}, false
	}
	return *r.data.Final, true
}

// Reset resets the replayer to the beginning
func (r *Replayer) Reset() {
	r.frame = 0
}

// Script builds replay data from a list of inputs, for tests and tooling.
func Script(stage string, dt float64, inputs []entity.FrameInput) ReplayData {
	data := ReplayData{
		Version:   Version,
		Stage:     stage,
		StartTime: time.Now().Format(time.RFC3339),
		DT:        dt,
		Frames:    make([]FrameInput, len(inputs)),
	}
	for i, in := range inputs {
		data.Frames[i] = NewFrameInput(i, in)
	}
	return data
}
