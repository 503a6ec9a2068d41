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

// temperatureTask simulates the thermocouples. Each cycle it reads the
// current heating power, advances the thermal model and publishes one
// sample batch.
type temperatureTask struct {
	cfg     config.Config
	clock   clock.Clock
	control *state.Control
	out     *channel.Latest[message.TemperatureSample]
	model   *model.Thermal
	noise   model.Noise
	beat    *heartbeat
}

func (t *temperatureTask) run(ctx context.Context) error {
	log.Printf("[DEBUG] Temperature task starting (period %s)", t.cfg.TemperaturePeriod)
	defer log.Printf("[DEBUG] Temperature task exited cleanly")

	if err := schedule.Run(ctx, t.clock, t.cfg.TemperaturePeriod, t.step); err != nil {
		return fmt.Errorf("temperature task: %w", err)
	}
	return nil
}

func (t *temperatureTask) step(ctx context.Context) {
	power := t.control.CurrentPower()
	readings := t.model.Step(power, t.cfg.Thermocouples, t.noise)

	now := t.clock.Now()
	t.out.Publish(message.TemperatureSample{
		Timestamp:    now,
		Temperatures: readings,
	})
	t.beat.record(now)
}
