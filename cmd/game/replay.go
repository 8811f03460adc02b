package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/younwookim/mgdk/internal/application/replay"
	"github.com/younwookim/mgdk/internal/application/session"
	"github.com/younwookim/mgdk/internal/application/system"
	"github.com/younwookim/mgdk/internal/domain/entity"
	"github.com/younwookim/mgdk/internal/infrastructure/config"
)

var errReplayDiverged = errors.New("replay diverged from its recording")

// SimulationResult contains the results of a replay simulation
type SimulationResult struct {
	VYValues   []float64
	VXValues   []float64
	Positions  []struct{ X, Y float64 }
	FinalFrame int
	Final      replay.Snapshot
	Expected   *replay.Snapshot
}

// Diverged reports whether the end state differs from the recorded one.
func (r SimulationResult) Diverged() bool {
	return r.Expected != nil && *r.Expected != r.Final
}

// simulateWithReplay runs a session on stage using replayed inputs
func simulateWithReplay(cfg *config.Config, stage *entity.Stage, data replay.ReplayData, log *slog.Logger) (SimulationResult, error) {
	sess, err := session.New(cfg, stage, session.WithLogger(log))
	if err != nil {
		return SimulationResult{}, err
	}
	replayer := replay.NewReplayer(data)

	result := SimulationResult{
		VYValues:  make([]float64, 0, replayer.TotalFrames()),
		VXValues:  make([]float64, 0, replayer.TotalFrames()),
		Positions: make([]struct{ X, Y float64 }, 0, replayer.TotalFrames()),
	}

	for {
		input, ok := replayer.NextInput()
		if !ok {
			break
		}

		sess.Step(input, replayer.DT())

		body := sess.Body()
		result.VYValues = append(result.VYValues, body.Velocity.Y())
		result.VXValues = append(result.VXValues, body.Velocity.X())
		result.Positions = append(result.Positions, struct{ X, Y float64 }{body.Position.X(), body.Position.Y()})
		result.FinalFrame = replayer.CurrentFrame()
	}

	result.Final = replay.Capture(sess)
	if want, ok := replayer.Final(); ok {
		result.Expected = &want
	}
	return result, nil
}

// runReplayFile replays a recording headlessly and checks its end state.
// The recording's stage wins over fallbackStage.
func runReplayFile(loader *config.Loader, path, fallbackStage string, log *slog.Logger) error {
	data, err := replay.LoadReplay(path)
	if err != nil {
		return err
	}
	cfg, err := loader.LoadAll()
	if err != nil {
		return err
	}

	stageName := data.Stage
	if stageName == "" {
		stageName = fallbackStage
	}
	stageCfg, err := loader.LoadStage(stageName)
	if err != nil {
		return err
	}

	result, err := simulateWithReplay(cfg, system.LoadStage(stageCfg), *data, log)
	if err != nil {
		return err
	}

	log.Info("replay finished",
		"path", path,
		"stage", stageName,
		"frames", result.FinalFrame,
		"x", result.Final.X,
		"y", result.Final.Y,
		"grounded", result.Final.Grounded,
		"removed", result.Final.Removed,
	)
	if result.Diverged() {
		return fmt.Errorf("%w: want %+v, got %+v", errReplayDiverged, *result.Expected, result.Final)
	}
	return nil
}
