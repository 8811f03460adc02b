// Package bootstrap runs the ordered startup phases that take a scene from
// loaded references to running gameplay.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrPhaseFailed wraps the error of the phase that aborted a Run.
var ErrPhaseFailed = errors.New("bootstrap phase failed")

// Phase names one bootstrap step.
type Phase int

const (
	PhaseBind Phase = iota
	PhaseInitialize
	PhaseCreate
	PhasePrepare
	PhaseBegin
)

// Phases lists the phases in execution order.
var Phases = []Phase{PhaseBind, PhaseInitialize, PhaseCreate, PhasePrepare, PhaseBegin}

func (p Phase) String() string {
	switch p {
	case PhaseBind:
		return "bind"
	case PhaseInitialize:
		return "initialize"
	case PhaseCreate:
		return "create"
	case PhasePrepare:
		return "prepare"
	case PhaseBegin:
		return "begin"
	default:
		return "unknown"
	}
}

// Initiator is started by Run one phase at a time:
// Bind references, Initialize services, Create heavy assets,
// Prepare and position objects, then Begin gameplay.
type Initiator interface {
	Bind(ctx context.Context) error
	Initialize(ctx context.Context) error
	Create(ctx context.Context) error
	Prepare(ctx context.Context) error
	Begin(ctx context.Context) error
}

// PhaseError reports which phase failed.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPhaseFailed, e.Phase, e.Err)
}

// Unwrap exposes both ErrPhaseFailed and the phase's own error.
func (e *PhaseError) Unwrap() []error {
	return []error{ErrPhaseFailed, e.Err}
}

// Run executes every phase in order. Each phase finishes before the next
// starts; the first error or a cancelled ctx stops the sequence.
func Run(ctx context.Context, in Initiator, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	steps := map[Phase]func(context.Context) error{
		PhaseBind:       in.Bind,
		PhaseInitialize: in.Initialize,
		PhaseCreate:     in.Create,
		PhasePrepare:    in.Prepare,
		PhaseBegin:      in.Begin,
	}

	for _, phase := range Phases {
		if err := ctx.Err(); err != nil {
			return &PhaseError{Phase: phase, Err: err}
		}

		start := time.Now()
		if err := steps[phase](ctx); err != nil {
			log.Error("bootstrap phase failed", "phase", phase, "error", err)
			return &PhaseError{Phase: phase, Err: err}
		}
		log.Debug("bootstrap phase done", "phase", phase, "took", time.Since(start))
	}
	return nil
}

// Start runs the phases on a separate goroutine. The returned channel
// yields the result of Run once and is then closed.
func Start(ctx context.Context, in Initiator, log *slog.Logger) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- Run(ctx, in, log)
	}()
	return done
}

// Funcs adapts plain functions to an Initiator. Nil phases succeed.
type Funcs struct {
	BindFunc       func(context.Context) error
	InitializeFunc func(context.Context) error
	CreateFunc     func(context.Context) error
	PrepareFunc    func(context.Context) error
	BeginFunc      func(context.Context) error
}

func call(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (f Funcs) Bind(ctx context.Context) error       { return call(ctx, f.BindFunc) }
func (f Funcs) Initialize(ctx context.Context) error { return call(ctx, f.InitializeFunc) }
func (f Funcs) Create(ctx context.Context) error     { return call(ctx, f.CreateFunc) }
func (f Funcs) Prepare(ctx context.Context) error    { return call(ctx, f.PrepareFunc) }
func (f Funcs) Begin(ctx context.Context) error      { return call(ctx, f.BeginFunc) }
