package config

import (
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	ControllerFile = "controller.yaml"
	GameFile       = "game.yaml"
	AudioFile      = "audio.yaml"
)

// Config holds all loaded configurations
type Config struct {
	Game       *GameConfig
	Controller *ControllerConfig
	Audio      *AudioConfig
}

// AudioConfig is the root config for audio.yaml
type AudioConfig struct {
	// File the per-channel volume settings are persisted to
	SettingsPath string `yaml:"settingsPath"`
	SampleRate   int    `yaml:"sampleRate"`
	BufferMillis int    `yaml:"bufferMillis"`
}

// DefaultAudioConfig returns the audio settings used when audio.yaml is absent.
func DefaultAudioConfig() AudioConfig {
	return AudioConfig{
		SettingsPath: "volume.yaml",
		SampleRate:   48000,
		BufferMillis: 100,
	}
}

// Loader loads game configuration from YAML files using fs.FS interface
type Loader struct {
	fsys     fs.FS
	basePath string
}

// NewLoader creates a new config loader from filesystem path
func NewLoader(basePath string) *Loader {
	return &Loader{
		fsys:     os.DirFS(basePath),
		basePath: basePath,
	}
}

// NewFSLoader creates a new config loader from fs.FS
func NewFSLoader(fsys fs.FS, basePath string) *Loader {
	return &Loader{
		fsys:     fsys,
		basePath: basePath,
	}
}

// BasePath returns the directory the loader reads from.
func (l *Loader) BasePath() string {
	return l.basePath
}

// LoadController loads controller.yaml on top of the default tuning
// and validates the result.
func (l *Loader) LoadController() (*ControllerConfig, error) {
	cfg := DefaultControllerConfig()
	if err := l.decode(ControllerFile, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate %s: %w", ControllerFile, err)
	}
	return &cfg, nil
}

// LoadGame loads game.yaml on top of the default host settings.
func (l *Loader) LoadGame() (*GameConfig, error) {
	cfg := DefaultGameConfig()
	if err := l.decode(GameFile, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate %s: %w", GameFile, err)
	}
	return &cfg, nil
}

// LoadAudio loads audio.yaml. A missing file yields the defaults.
func (l *Loader) LoadAudio() (*AudioConfig, error) {
	cfg := DefaultAudioConfig()
	if _, err := fs.Stat(l.fsys, AudioFile); err != nil {
		return &cfg, nil
	}
	if err := l.decode(AudioFile, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadStage loads a stage YAML file
func (l *Loader) LoadStage(name string) (*StageConfig, error) {
	path := "stages/" + name + ".yaml"
	data, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stage %s: %w", name, err)
	}

	var cfg StageConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse stage %s: %w", name, err)
	}
	if cfg.TileSize <= 0 {
		return nil, fmt.Errorf("stage %s: %w: tileSize must be positive", name, ErrInvalidConfig)
	}

	return &cfg, nil
}

// LoadAll loads all base configurations (game, controller, audio)
func (l *Loader) LoadAll() (*Config, error) {
	game, err := l.LoadGame()
	if err != nil {
		return nil, err
	}

	controller, err := l.LoadController()
	if err != nil {
		return nil, err
	}

	audio, err := l.LoadAudio()
	if err != nil {
		return nil, err
	}

	return &Config{
		Game:       game,
		Controller: controller,
		Audio:      audio,
	}, nil
}

func (l *Loader) decode(name string, out any) error {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}
