// Package controller runs the heating controller: the temperature,
// pressure and decision tasks, wired together by the shared control state
// and the message channels.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/dyluth/hearth/internal/channel"
	"github.com/dyluth/hearth/internal/config"
	"github.com/dyluth/hearth/internal/message"
	"github.com/dyluth/hearth/internal/model"
	"github.com/dyluth/hearth/internal/printer"
	"github.com/dyluth/hearth/internal/state"
)

// ErrGraceExpired is returned by Run when the tasks did not all stop within
// the configured shutdown grace period. The tasks are abandoned.
var ErrGraceExpired = errors.New("tasks did not stop within the shutdown grace period")

// Noise stream identifiers, one per task, so a fixed seed reproduces every
// task's sequence independently of scheduling.
const (
	temperatureStream uint64 = iota + 1
	pressureStream
)

// Engine owns the controller tasks and the resources they share.
//
// The engine supervises three periodic goroutines:
//   - Temperature task: simulates the thermocouples
//   - Pressure task: simulates the circuit and its relief valve
//   - Decision task: applies operator events, runs the control law, prints status
//
// Operator events enter through Events(). The operator itself is not owned
// by the engine because its blocking read cannot be interrupted.
type Engine struct {
	cfg     config.Config
	clock   clock.Clock
	console *printer.Console
	runID   string
	seed    uint64

	control      *state.Control
	events       *channel.Bounded[message.Event]
	temperatures *channel.Latest[message.TemperatureSample]
	pressures    *channel.Latest[message.PressureReading]
	commands     *channel.Latest[message.AutomaticPowerCommand]

	health      *health
	temperature *temperatureTask
	pressure    *pressureTask
	decision    *decisionTask
}

// New creates an engine ready to run. cfg must already be validated.
func New(cfg config.Config, clk clock.Clock, console *printer.Console) (*Engine, error) {
	events, err := channel.NewBounded[message.Event](cfg.EventCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create event channel: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	e := &Engine{
		cfg:          cfg,
		clock:        clk,
		console:      console,
		runID:        uuid.New().String(),
		seed:         seed,
		control:      state.NewControl(cfg.InitialManualPower),
		events:       events,
		temperatures: channel.NewLatest[message.TemperatureSample](),
		pressures:    channel.NewLatest[message.PressureReading](),
		commands:     channel.NewLatest[message.AutomaticPowerCommand](),
	}

	journal := &eventLog{runID: e.runID, clock: clk}
	e.health = newHealth(clk)

	e.temperature = &temperatureTask{
		cfg:     cfg,
		clock:   clk,
		control: e.control,
		out:     e.temperatures,
		model:   model.NewThermal(cfg.AmbientTemperature, cfg.MaxHeatingDelta, cfg.TemperatureAlpha, cfg.TemperatureNoise),
		noise:   rand.New(rand.NewPCG(seed, temperatureStream)),
		beat:    e.health.register("temperature", cfg.TemperaturePeriod),
	}

	e.pressure = &pressureTask{
		cfg:      cfg,
		clock:    clk,
		control:  e.control,
		commands: e.commands,
		out:      e.pressures,
		model:    model.NewPressure(cfg.ReferencePressure, cfg.MaxSafePressure, cfg.PressureNoise),
		noise:    rand.New(rand.NewPCG(seed, pressureStream)),
		journal:  journal,
		beat:     e.health.register("pressure", cfg.PressurePeriod),
	}

	e.decision = newDecisionTask(decisionDeps{
		cfg:          cfg,
		clock:        clk,
		console:      console,
		control:      e.control,
		events:       e.events,
		temperatures: e.temperatures,
		pressures:    e.pressures,
		commands:     e.commands,
		journal:      journal,
		health:       e.health,
	})

	return e, nil
}

// Events returns the operator event channel.
func (e *Engine) Events() *channel.Bounded[message.Event] {
	return e.events
}

// Control returns the shared control state.
func (e *Engine) Control() *state.Control {
	return e.control
}

// RunID identifies this engine in structured log events.
func (e *Engine) RunID() string {
	return e.runID
}

// Healthy reports whether every task has completed a cycle recently.
func (e *Engine) Healthy() bool {
	return len(e.health.stale()) == 0
}

// Run starts the tasks and blocks until ctx is cancelled or a Shutdown
// event is processed, then waits up to the shutdown grace period for the
// tasks to stop.
//
// Returns nil on a clean stop, ErrGraceExpired if a task was still running
// when the grace period ended, or the first task error.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.decision.cancel = cancel

	log.Printf("[INFO] Controller starting run_id=%s seed=%d thermocouples=%d", e.runID, e.seed, e.cfg.Thermocouples)
	e.health.start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.temperature.run(gctx) })
	g.Go(func() error { return e.pressure.run(gctx) })
	g.Go(func() error { return e.decision.run(gctx) })

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		// Tasks only return on their own when something is wrong
		if err != nil {
			log.Printf("[ERROR] Controller task failed: %v", err)
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("[INFO] Shutdown signal received, waiting up to %s for tasks to stop", e.cfg.ShutdownGrace)

	timer := e.clock.NewTimer(e.cfg.ShutdownGrace)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return err
		}
		log.Printf("[INFO] All tasks exited, shutdown complete")
		return nil
	case <-timer.C():
		log.Printf("[WARN] Shutdown grace period of %s expired, abandoning tasks", e.cfg.ShutdownGrace)
		return ErrGraceExpired
	}
}
