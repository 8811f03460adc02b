// Package audio persists per-channel volume settings and applies them to an
// audio backend as decibel levels.
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Channel is a mixer bus with its own volume.
type Channel int

const (
	Master Channel = iota
	Music
	Effects
	Ambience
	Dialogue
)

// Channels lists every channel in display order.
var Channels = []Channel{Master, Music, Effects, Ambience, Dialogue}

// ErrUnknownChannel is returned when a channel name is not recognized.
var ErrUnknownChannel = errors.New("unknown audio channel")

func (c Channel) String() string {
	switch c {
	case Master:
		return "master"
	case Music:
		return "music"
	case Effects:
		return "effects"
	case Ambience:
		return "ambience"
	case Dialogue:
		return "dialogue"
	default:
		return "unknown"
	}
}

// ParseChannel maps a channel name to a Channel.
func ParseChannel(s string) (Channel, error) {
	for _, c := range Channels {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, s)
}

// MinDB is the level applied for silence; 20·log10(0) has no finite value.
const MinDB = -80.0

// DB converts a linear 0..1 volume to decibels.
func DB(linear float64) float64 {
	if linear <= 0 {
		return MinDB
	}
	return math.Max(20*math.Log10(linear), MinDB)
}

// DefaultVolume is the unity gain used for channels never set.
const DefaultVolume = 1.0

type storeFile struct {
	Volumes map[string]float64 `yaml:"volumes"`
}

// Store keeps linear volumes per channel and persists them to a YAML file.
type Store struct {
	mu      sync.RWMutex
	path    string
	volumes map[Channel]float64
}

// NewStore creates an empty store that saves to path.
func NewStore(path string) *Store {
	return &Store{path: path, volumes: make(map[Channel]float64)}
}

// LoadStore reads the settings at path. A missing file yields an empty store.
func LoadStore(path string) (*Store, error) {
	s := NewStore(path)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read volume settings %s: %w", path, err)
	}

	var f storeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse volume settings %s: %w", path, err)
	}
	for name, v := range f.Volumes {
		c, err := ParseChannel(name)
		if err != nil {
			return nil, fmt.Errorf("volume settings %s: %w", path, err)
		}
		s.volumes[c] = clamp01(v)
	}
	return s, nil
}

// Get returns the channel's linear volume, DefaultVolume when unset.
func (s *Store) Get(c Channel) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.volumes[c]; ok {
		return v
	}
	return DefaultVolume
}

// Set stores the channel's linear volume, clamped to 0..1, and returns it.
func (s *Store) Set(c Channel, v float64) float64 {
	v = clamp01(v)
	s.mu.Lock()
	s.volumes[c] = v
	s.mu.Unlock()
	return v
}

// Save writes the settings file, creating its directory as needed.
func (s *Store) Save() error {
	s.mu.RLock()
	f := storeFile{Volumes: make(map[string]float64, len(s.volumes))}
	for c, v := range s.volumes {
		f.Volumes[c.String()] = v
	}
	s.mu.RUnlock()

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("failed to encode volume settings: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write volume settings %s: %w", s.path, err)
	}
	return nil
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}
