package audio

import (
	"fmt"
	"log/slog"
)

// Backend applies channel levels in decibels.
type Backend interface {
	SetChannelDB(c Channel, db float64)
}

// Mixer is the volume settings front end: it persists levels in a Store and
// pushes them to the Backend.
type Mixer struct {
	store   *Store
	backend Backend
	log     *slog.Logger
}

// NewMixer creates a mixer and applies every stored level to backend.
func NewMixer(store *Store, backend Backend, log *slog.Logger) *Mixer {
	if log == nil {
		log = slog.Default()
	}
	m := &Mixer{store: store, backend: backend, log: log}
	m.Apply()
	return m
}

// Apply pushes every channel's stored level to the backend.
func (m *Mixer) Apply() {
	for _, c := range Channels {
		m.backend.SetChannelDB(c, DB(m.store.Get(c)))
	}
}

// Volume returns the channel's linear volume.
func (m *Mixer) Volume(c Channel) float64 {
	return m.store.Get(c)
}

// SetVolume stores, applies and persists a channel's linear volume.
func (m *Mixer) SetVolume(c Channel, linear float64) error {
	v := m.store.Set(c, linear)
	db := DB(v)
	m.backend.SetChannelDB(c, db)
	m.log.Debug("volume changed", "channel", c, "linear", v, "db", db)

	if err := m.store.Save(); err != nil {
		return fmt.Errorf("failed to persist %s volume: %w", c, err)
	}
	return nil
}
