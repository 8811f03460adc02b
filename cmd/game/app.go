package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gopxl/beep"

	"github.com/younwookim/mgdk/internal/application/scene"
	"github.com/younwookim/mgdk/internal/application/scene/playing"
	"github.com/younwookim/mgdk/internal/application/session"
	"github.com/younwookim/mgdk/internal/application/system"
	"github.com/younwookim/mgdk/internal/domain/entity"
	"github.com/younwookim/mgdk/internal/infrastructure/audio"
	"github.com/younwookim/mgdk/internal/infrastructure/config"
)

// app is the game's bootstrap: each phase builds one layer of the running game.
type app struct {
	loader    *config.Loader
	stageName string
	record    string
	watchDir  string
	log       *slog.Logger

	cfg   *config.Config
	stage *entity.Stage
	sess  *session.Session

	backend    *audio.BeepBackend
	mixer      *audio.Mixer
	sampleRate beep.SampleRate
	audioOn    bool

	watcher *config.Watcher
	tuning  chan config.ControllerConfig

	menu func() scene.Scene
}

// Bind loads the configuration files.
func (a *app) Bind(context.Context) error {
	cfg, err := a.loader.LoadAll()
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// Initialize brings up audio. A missing audio device is not fatal.
func (a *app) Initialize(context.Context) error {
	if a.mixer != nil {
		return nil
	}

	store, err := audio.LoadStore(settingsPath(a.cfg.Audio.SettingsPath))
	if err != nil {
		return err
	}
	a.backend = audio.NewBeepBackend()
	a.mixer = audio.NewMixer(store, a.backend, a.log)
	a.sampleRate = beep.SampleRate(a.cfg.Audio.SampleRate)

	buffer := time.Duration(a.cfg.Audio.BufferMillis) * time.Millisecond
	if err := a.backend.Start(a.cfg.Audio.SampleRate, buffer); err != nil {
		a.log.Warn("audio disabled", "error", err)
		return nil
	}
	a.audioOn = true
	a.log.Info("audio started", "sample_rate", a.cfg.Audio.SampleRate, "master", a.mixer.Volume(audio.Master))
	return nil
}

// Create loads the stage and spawns the character.
func (a *app) Create(context.Context) error {
	stageCfg, err := a.loader.LoadStage(a.stageName)
	if err != nil {
		return err
	}
	a.stage = system.LoadStage(stageCfg)

	sess, err := session.New(a.cfg, a.stage,
		session.WithLogger(a.log),
		session.WithImpactHandler(a.onImpact),
	)
	if err != nil {
		return err
	}
	a.sess = sess
	return nil
}

// Prepare starts the config watcher when hot reload is enabled.
func (a *app) Prepare(context.Context) error {
	if a.watchDir == "" {
		return nil
	}
	if a.watcher != nil {
		_ = a.watcher.Close()
	}

	w, err := config.NewWatcher(a.watchDir)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", a.watchDir, err)
	}
	a.watcher = w
	a.tuning = make(chan config.ControllerConfig, 1)
	go a.watch(w, a.tuning)
	a.log.Info("watching configs", "dir", a.watchDir)
	return nil
}

// Begin reports the game ready.
func (a *app) Begin(context.Context) error {
	a.log.Info("game ready", "stage", a.stageName, "spawn", a.stage.Spawn)
	return nil
}

// playScene builds the gameplay scene over the bootstrapped session.
func (a *app) playScene() (scene.Scene, error) {
	if a.sess == nil {
		return nil, fmt.Errorf("no session for stage %s", a.stageName)
	}
	opts := []playing.Option{playing.WithLogger(a.log)}
	if a.record != "" {
		opts = append(opts, playing.WithRecording(a.record))
	}
	if a.tuning != nil {
		opts = append(opts, playing.WithTuning(a.tuning))
	}
	if a.menu != nil {
		opts = append(opts, playing.WithQuit(a.menu))
	}
	if a.mixer != nil {
		opts = append(opts, playing.WithMixer(a.mixer))
	}
	return playing.New(a.cfg.Game, a.sess, a.stageName, opts...), nil
}

func (a *app) onImpact(_ *entity.Body, speed float64) {
	if !a.audioOn {
		return
	}
	a.backend.Play(audio.Effects, audio.Thump(a.sampleRate, speed))
}

// watch reloads controller.yaml on change and hands the result to the game loop.
func (a *app) watch(w *config.Watcher, out chan config.ControllerConfig) {
	for {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(name) != config.ControllerFile {
				continue
			}
			tuning, err := a.loader.LoadController()
			if err != nil {
				a.log.Warn("ignoring controller config change", "error", err)
				continue
			}
			publishLatest(out, *tuning, a.log)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			a.log.Warn("config watcher error", "error", err)
		}
	}
}

// publishLatest hands tuning to the game loop, replacing a reload the loop
// has not picked up yet so the newest file contents always win.
func publishLatest(out chan config.ControllerConfig, tuning config.ControllerConfig, log *slog.Logger) {
	for {
		select {
		case out <- tuning:
			return
		default:
		}
		select {
		case <-out:
			log.Debug("replacing pending controller reload")
		default:
		}
	}
}

// Close releases the watcher and the audio device.
func (a *app) Close() {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	if a.audioOn {
		a.backend.Close()
	}
}

// settingsPath resolves a relative settings file under the user config directory.
func settingsPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return p
	}
	return filepath.Join(dir, "mgdk", p)
}
