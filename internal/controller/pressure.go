package controller

import (
	"context"
	"fmt"
	"log"

	"k8s.io/utils/clock"

	"github.com/dyluth/hearth/internal/channel"
	"github.com/dyluth/hearth/internal/config"
	"github.com/dyluth/hearth/internal/message"
	"github.com/dyluth/hearth/internal/model"
	"github.com/dyluth/hearth/internal/schedule"
	"github.com/dyluth/hearth/internal/state"
)

// pressureTask simulates the heating circuit pressure and its relief valve.
//
// In automatic mode the freshest command from the decision task overrides
// the shared power for one cycle. On entering manual mode any command still
// queued is discarded, so nothing computed before the switch is applied
// after it.
type pressureTask struct {
	cfg      config.Config
	clock    clock.Clock
	control  *state.Control
	commands *channel.Latest[message.AutomaticPowerCommand]
	out      *channel.Latest[message.PressureReading]
	model    *model.Pressure
	noise    model.Noise
	journal  *eventLog
	beat     *heartbeat

	wasManual bool
}

func (p *pressureTask) run(ctx context.Context) error {
	log.Printf("[DEBUG] Pressure task starting (period %s)", p.cfg.PressurePeriod)
	defer log.Printf("[DEBUG] Pressure task exited cleanly")

	if err := schedule.Run(ctx, p.clock, p.cfg.PressurePeriod, p.step); err != nil {
		return fmt.Errorf("pressure task: %w", err)
	}
	return nil
}

func (p *pressureTask) step(ctx context.Context) {
	snap := p.control.Snapshot()
	power := snap.CurrentPower

	if snap.Mode == state.ModeManual {
		if !p.wasManual {
			if n := p.commands.Drain(); n > 0 {
				p.journal.logEvent("pressure", "stale_commands_purged", map[string]interface{}{
					"count": n,
				})
			}
		}
		p.wasManual = true
	} else {
		p.wasManual = false
		if cmd, ok := p.commands.TakeLatest(); ok {
			power = cmd.Power
		}
	}

	pressure, valve := p.model.Step(power, p.noise)

	now := p.clock.Now()
	p.out.Publish(message.PressureReading{
		Timestamp:   now,
		Pressure:    pressure,
		ValveAction: valve,
	})
	p.beat.record(now)
}
