package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

type bus struct {
	mixer  *beep.Mixer
	volume *effects.Volume
}

// BeepBackend routes streamers through one volume-controlled bus per channel
// into a master bus.
type BeepBackend struct {
	mu      sync.Mutex
	buses   map[Channel]*bus
	master  *effects.Volume
	started bool
}

// NewBeepBackend builds the bus graph. Nothing plays until Start.
func NewBeepBackend() *BeepBackend {
	b := &BeepBackend{buses: make(map[Channel]*bus)}
	root := &beep.Mixer{}
	for _, c := range Channels {
		if c == Master {
			continue
		}
		m := &beep.Mixer{}
		v := &effects.Volume{Streamer: m, Base: 10}
		b.buses[c] = &bus{mixer: m, volume: v}
		root.Add(v)
	}
	b.master = &effects.Volume{Streamer: root, Base: 10}
	return b
}

// Start opens the speaker and plays the master bus.
func (b *BeepBackend) Start(sampleRate int, buffer time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return nil
	}

	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(buffer)); err != nil {
		return fmt.Errorf("failed to init speaker: %w", err)
	}
	speaker.Play(b.master)
	b.started = true
	return nil
}

// Close stops playback.
func (b *BeepBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return
	}
	speaker.Clear()
	speaker.Close()
	b.started = false
}

// Streamer returns the master output, for playing without the speaker.
func (b *BeepBackend) Streamer() beep.Streamer {
	return b.master
}

// SetChannelDB sets a bus gain. Levels at or below MinDB mute the bus.
func (b *BeepBackend) SetChannelDB(c Channel, db float64) {
	target := b.master
	if c != Master {
		bs, ok := b.buses[c]
		if !ok {
			return
		}
		target = bs.volume
	}

	b.locked(func() {
		target.Volume = db / 20
		target.Silent = db <= MinDB
	})
}

// Play queues s on the channel's bus.
func (b *BeepBackend) Play(c Channel, s beep.Streamer) {
	bs, ok := b.buses[c]
	if !ok {
		bs = b.buses[Effects]
	}
	b.locked(func() {
		bs.mixer.Add(s)
	})
}

// locked runs fn under the speaker lock once playback has started.
func (b *BeepBackend) locked(fn func()) {
	b.mu.Lock()
	started := b.started
	b.mu.Unlock()

	if started {
		speaker.Lock()
		defer speaker.Unlock()
	}
	fn()
}
