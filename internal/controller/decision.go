package controller

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"k8s.io/utils/clock"

	"github.com/dyluth/hearth/internal/channel"
	"github.com/dyluth/hearth/internal/config"
	"github.com/dyluth/hearth/internal/message"
	"github.com/dyluth/hearth/internal/model"
	"github.com/dyluth/hearth/internal/printer"
	"github.com/dyluth/hearth/internal/schedule"
	"github.com/dyluth/hearth/internal/state"
)

type decisionDeps struct {
	cfg          config.Config
	clock        clock.Clock
	console      *printer.Console
	control      *state.Control
	events       *channel.Bounded[message.Event]
	temperatures *channel.Latest[message.TemperatureSample]
	pressures    *channel.Latest[message.PressureReading]
	commands     *channel.Latest[message.AutomaticPowerCommand]
	journal      *eventLog
	health       *health
}

// decisionTask is the supervisory loop. Each cycle, in order:
//  1. Apply every pending operator event
//  2. Collect the freshest temperature and pressure readings
//  3. Compute and publish the automatic power, or apply the manual setpoint
//  4. Print the status line when the display period has elapsed
//
// It is the only writer of the mode and the only producer of automatic
// power commands.
type decisionTask struct {
	decisionDeps
	beat   *heartbeat
	cancel context.CancelFunc

	mean        float64
	comfort     model.Comfort
	haveSample  bool
	pressure    float64
	valve       float64
	nextDisplay time.Time
}

func newDecisionTask(deps decisionDeps) *decisionTask {
	// A cycle may block for the whole sample wait, so that bounds its period
	period := deps.cfg.DecisionPeriod
	if deps.cfg.SampleWait > period {
		period = deps.cfg.SampleWait
	}

	return &decisionTask{
		decisionDeps: deps,
		beat:         deps.health.register("decision", period),
		cancel:       func() {},
		mean:         math.NaN(),
		comfort:      model.ComfortUnknown,
		pressure:     math.NaN(),
		valve:        math.NaN(),
		nextDisplay:  deps.clock.Now(),
	}
}

func (d *decisionTask) run(ctx context.Context) error {
	log.Printf("[DEBUG] Decision task starting (period %s, display every %s)", d.cfg.DecisionPeriod, d.cfg.DisplayPeriod)
	defer log.Printf("[DEBUG] Decision task exited cleanly")

	if err := schedule.Run(ctx, d.clock, d.cfg.DecisionPeriod, d.step); err != nil {
		return fmt.Errorf("decision task: %w", err)
	}
	return nil
}

func (d *decisionTask) step(ctx context.Context) {
	if stop := d.applyEvents(); stop {
		return
	}

	d.collect(ctx)
	d.actuate()
	d.beat.record(d.clock.Now())
	d.display()
}

// applyEvents drains the operator queue. Returns true when a Shutdown was
// processed; events queued behind it are left unapplied.
func (d *decisionTask) applyEvents() bool {
	for {
		ev, ok := d.events.TryReceive()
		if !ok {
			return false
		}

		switch ev := ev.(type) {
		case message.Shutdown:
			d.journal.logEvent("decision", "shutdown_requested", map[string]interface{}{
				"pending_events": d.events.Len(),
			})
			d.cancel()
			return true

		case message.SetMode:
			previous, err := d.control.SetMode(ev.Mode)
			if err != nil {
				log.Printf("[WARN] Ignoring operator event %s: %v", ev, err)
				continue
			}
			if previous == ev.Mode {
				continue
			}
			data := map[string]interface{}{
				"from": string(previous),
				"to":   string(ev.Mode),
			}
			// The pressure task only purges on the transitions it observes,
			// so a command published between two of its cycles is purged here.
			if ev.Mode == state.ModeManual {
				data["purged_commands"] = d.commands.Drain()
			}
			d.journal.logEvent("decision", "mode_changed", data)

		case message.SetManualPower:
			stored := d.control.SetManualPower(ev.Power)
			d.journal.logEvent("decision", "manual_power_set", map[string]interface{}{
				"requested": ev.Power,
				"stored":    stored,
			})

		default:
			log.Printf("[WARN] Unknown operator event %T", ev)
		}
	}
}

// collect takes the freshest readings. The temperature wait is the only
// place the loop blocks outside its periodic release.
func (d *decisionTask) collect(ctx context.Context) {
	if sample, ok := d.temperatures.TakeBlocking(ctx, d.cfg.SampleWait); ok {
		if mean, ok := sample.Mean(); ok {
			d.mean = mean
			d.comfort = model.Classify(mean, d.cfg.ReferenceTemperature, d.cfg.ComfortBand)
			d.haveSample = true
		}
	}

	if reading, ok := d.pressures.TakeLatest(); ok {
		d.pressure = reading.Pressure
		d.valve = reading.ValveAction
	}
}

// actuate sets the current power for this cycle. In automatic mode with a
// known temperature the control law decides and the result is sent to the
// pressure task. Otherwise the manual setpoint applies and nothing is sent.
func (d *decisionTask) actuate() {
	if d.haveSample {
		power := state.ClampPower(model.AutomaticPower(d.mean, d.cfg.ReferenceTemperature, d.cfg.AutomaticGain, d.cfg.BasePower))

		// ApplyAutomatic re-checks the mode under the lock, so a command is
		// never published for a cycle that ran in manual mode.
		if d.control.ApplyAutomatic(power) {
			d.commands.Publish(message.AutomaticPowerCommand{
				Timestamp: d.clock.Now(),
				Power:     power,
			})
			return
		}
	}

	d.control.ApplyManual()
}

// display prints the status line at most once per display period.
func (d *decisionTask) display() {
	now := d.clock.Now()
	if now.Before(d.nextDisplay) {
		return
	}
	d.nextDisplay = now.Add(d.cfg.DisplayPeriod)

	snap := d.control.Snapshot()
	d.console.Status(printer.Status{
		Mode:     snap.Mode,
		Mean:     d.mean,
		Comfort:  d.comfort,
		Pressure: d.pressure,
		Power:    snap.CurrentPower,
		Valve:    d.valve,
	})

	if stalled := d.health.stale(); len(stalled) > 0 {
		log.Printf("[WARN] Tasks not keeping up: %s", strings.Join(stalled, ", "))
	}
}
