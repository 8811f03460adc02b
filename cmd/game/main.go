package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/mgdk/internal/application/game"
	"github.com/younwookim/mgdk/internal/application/scene"
	"github.com/younwookim/mgdk/internal/application/scene/menu"
	"github.com/younwookim/mgdk/internal/infrastructure/config"
	"github.com/younwookim/mgdk/internal/infrastructure/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("game exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse command line flags
	configDir := flag.String("config", "", "Config directory (default: built-in configs)")
	stageName := flag.String("stage", "demo", "Stage to play")
	recordFlag := flag.String("record", "", "Record input to file (e.g., -record replay.json)")
	replayFlag := flag.String("replay", "", "Replay a recording and verify its end state")
	headless := flag.Bool("headless", false, "Run without a window (requires -replay)")
	watch := flag.Bool("watch", false, "Reload controller.yaml on change (requires -config)")
	logLevel := flag.String("log-level", "", "Override the configured log level")
	flag.Parse()

	loader, err := newLoader(*configDir)
	if err != nil {
		return err
	}
	gameCfg, err := loader.LoadGame()
	if err != nil {
		return err
	}

	logCfg := logger.Config{Level: gameCfg.Logging.Level, Format: gameCfg.Logging.Format}
	if *logLevel != "" {
		logCfg.Level = *logLevel
	}
	log := logger.Init(logCfg)

	if *replayFlag != "" {
		return runReplayFile(loader, *replayFlag, *stageName, log)
	}
	if *headless {
		return errors.New("-headless requires -replay")
	}
	if *watch && *configDir == "" {
		return errors.New("-watch requires -config")
	}

	a := &app{
		loader:    loader,
		stageName: *stageName,
		record:    *recordFlag,
		log:       log,
	}
	if *watch {
		a.watchDir = *configDir
	}
	defer a.Close()

	var title *menu.Menu
	title = menu.New(a, a.playScene,
		menu.WithLogger(log),
		menu.WithScreen(gameCfg.Display.ScreenWidth, gameCfg.Display.ScreenHeight),
	)
	a.menu = func() scene.Scene { return title }

	g := game.New(title, gameCfg.Display.ScreenWidth, gameCfg.Display.ScreenHeight,
		game.WithLogger(log),
		game.WithFramerate(gameCfg.Display.Framerate),
	)

	// Set up ebiten
	ebiten.SetWindowSize(gameCfg.Display.ScreenWidth*2, gameCfg.Display.ScreenHeight*2)
	ebiten.SetWindowTitle("MGDK Platformer")
	ebiten.SetTPS(gameCfg.Display.Framerate)

	err = ebiten.RunGame(g)
	// Let the last scene save what it holds (e.g. a recording)
	g.Current().OnExit()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// newLoader reads configs from dir, or from the built-in set when dir is empty.
func newLoader(dir string) (*config.Loader, error) {
	if dir != "" {
		return config.NewLoader(dir), nil
	}
	fsys, err := fs.Sub(configFS, "configs")
	if err != nil {
		return nil, fmt.Errorf("failed to open built-in configs: %w", err)
	}
	return config.NewFSLoader(fsys, "configs"), nil
}

