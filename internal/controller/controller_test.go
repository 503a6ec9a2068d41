package controller

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/dyluth/hearth/internal/config"
	"github.com/dyluth/hearth/internal/message"
	"github.com/dyluth/hearth/internal/model"
	"github.com/dyluth/hearth/internal/printer"
	"github.com/dyluth/hearth/internal/state"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// zeroNoise maps every draw to zero noise.
type zeroNoise struct{}

func (zeroNoise) Float64() float64 { return 0.5 }

type testRig struct {
	engine *Engine
	clock  *testingclock.FakeClock
	out    *bytes.Buffer
}

func newTestRig(t *testing.T, mutate ...func(*config.Config)) *testRig {
	t.Helper()

	cfg := config.Default()
	cfg.SampleWait = 0
	cfg.Seed = 1
	for _, m := range mutate {
		m(&cfg)
	}
	require.NoError(t, cfg.Validate())

	fc := testingclock.NewFakeClock(epoch)
	out := &bytes.Buffer{}
	e, err := New(cfg, fc, printer.NewConsole(out))
	require.NoError(t, err)

	e.temperature.noise = zeroNoise{}
	e.pressure.noise = zeroNoise{}
	return &testRig{engine: e, clock: fc, out: out}
}

func (r *testRig) send(t *testing.T, events ...message.Event) {
	t.Helper()
	for _, ev := range events {
		require.True(t, r.engine.events.TrySend(ev), "event queue full")
	}
}

func (r *testRig) publishMean(mean float64) {
	r.engine.temperatures.Publish(message.TemperatureSample{
		Timestamp:    r.clock.Now(),
		Temperatures: []float64{mean, mean, mean, mean},
	})
}

func TestDecision_AutomaticPowerFromMean(t *testing.T) {
	rig := newTestRig(t)
	rig.publishMean(18.0)

	rig.engine.decision.step(context.Background())

	assert.InDelta(t, 78.0, rig.engine.control.CurrentPower(), 1e-9)
	cmd, ok := rig.engine.commands.TakeLatest()
	require.True(t, ok, "automatic mode must publish a command")
	assert.InDelta(t, 78.0, cmd.Power, 1e-9)
	assert.Equal(t, epoch, cmd.Timestamp)
}

func TestDecision_AutomaticPowerIsClamped(t *testing.T) {
	rig := newTestRig(t)
	rig.publishMean(5.0)

	rig.engine.decision.step(context.Background())

	assert.Equal(t, 100.0, rig.engine.control.CurrentPower())
}

func TestDecision_ComfortClassification(t *testing.T) {
	tests := []struct {
		mean float64
		want model.Comfort
	}{
		{20.9, model.ComfortCold},
		{21.0, model.ComfortComfortable},
		{23.0, model.ComfortComfortable},
		{23.1, model.ComfortHot},
	}

	for _, tt := range tests {
		rig := newTestRig(t)
		rig.publishMean(tt.mean)
		rig.engine.decision.step(context.Background())
		assert.Equal(t, tt.want, rig.engine.decision.comfort, "mean=%v", tt.mean)
	}
}

func TestDecision_NoSampleAppliesManualPower(t *testing.T) {
	rig := newTestRig(t)

	rig.engine.decision.step(context.Background())

	assert.Equal(t, model.ComfortUnknown, rig.engine.decision.comfort)
	assert.Equal(t, 30.0, rig.engine.control.CurrentPower())
	assert.False(t, rig.engine.commands.Pending())
}

func TestDecision_ManualModeSuppressesCommands(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	rig.publishMean(18.0)
	rig.engine.decision.step(ctx)
	require.True(t, rig.engine.commands.Pending())
	rig.engine.commands.Drain()

	rig.send(t, message.SetMode{Mode: state.ModeManual}, message.SetManualPower{Power: 55})
	for i := 0; i < 5; i++ {
		rig.publishMean(18.0)
		rig.engine.decision.step(ctx)
		assert.False(t, rig.engine.commands.Pending(), "cycle %d published a command in manual mode", i)
		assert.Equal(t, 55.0, rig.engine.control.CurrentPower())
	}

	rig.send(t, message.SetMode{Mode: state.ModeAutomatic})
	rig.engine.decision.step(ctx)

	cmd, ok := rig.engine.commands.TakeLatest()
	require.True(t, ok, "returning to automatic resumes commands")
	assert.InDelta(t, 78.0, cmd.Power, 1e-9)
}

func TestDecision_ManualPowerIsClamped(t *testing.T) {
	rig := newTestRig(t)

	rig.send(t, message.SetMode{Mode: state.ModeManual}, message.SetManualPower{Power: 150})
	rig.engine.decision.step(context.Background())

	snap := rig.engine.control.Snapshot()
	assert.Equal(t, 100.0, snap.ManualPower)
	assert.Equal(t, 100.0, snap.CurrentPower)
}

func TestDecision_ManualReentryBetweenPressureCyclesPurges(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	rig.send(t, message.SetMode{Mode: state.ModeManual})
	rig.engine.decision.step(ctx)
	rig.engine.pressure.step(ctx)
	require.True(t, rig.engine.pressure.wasManual)

	rig.send(t, message.SetMode{Mode: state.ModeAutomatic})
	rig.publishMean(18.0)
	rig.engine.decision.step(ctx)
	require.True(t, rig.engine.commands.Pending(), "automatic cycle publishes a command")

	rig.send(t, message.SetMode{Mode: state.ModeManual})
	rig.engine.decision.step(ctx)
	assert.False(t, rig.engine.commands.Pending(), "switching to manual discards the queued command")

	rig.engine.pressure.step(ctx)
	assert.False(t, rig.engine.commands.Pending())
	reading, ok := rig.engine.pressures.TakeLatest()
	require.True(t, ok)
	// Two manual cycles at 30% from the reference pressure, no command applied
	assert.Less(t, reading.Pressure, 3.0+2*0.08*0.3+1e-9)
}

func TestDecision_ShutdownAbandonsCycle(t *testing.T) {
	rig := newTestRig(t)
	cancelled := false
	rig.engine.decision.cancel = func() { cancelled = true }

	rig.publishMean(18.0)
	rig.send(t, message.Shutdown{}, message.SetMode{Mode: state.ModeManual})
	rig.engine.decision.step(context.Background())

	assert.True(t, cancelled)
	assert.Equal(t, state.ModeAutomatic, rig.engine.control.Snapshot().Mode, "events after shutdown are not applied")
	assert.Equal(t, 1, rig.engine.events.Len())
	assert.False(t, rig.engine.commands.Pending(), "abandoned cycle publishes nothing")
	assert.True(t, rig.engine.temperatures.Pending(), "abandoned cycle reads nothing")
}

func TestDecision_DisplayCadence(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()
	lines := func() int { return strings.Count(rig.out.String(), "[S] ") }

	rig.engine.decision.step(ctx)
	assert.Equal(t, 1, lines())

	rig.clock.Step(500 * time.Millisecond)
	rig.engine.decision.step(ctx)
	assert.Equal(t, 1, lines(), "no second line within the display period")

	rig.clock.Step(500 * time.Millisecond)
	rig.engine.decision.step(ctx)
	assert.Equal(t, 2, lines())
	assert.Contains(t, rig.out.String(), "T_mean=  NaN C")
}

func TestPressure_PurgesStaleCommandsOnManualEntry(t *testing.T) {
	rig := newTestRig(t, func(c *config.Config) { c.InitialManualPower = 0 })
	ctx := context.Background()

	rig.engine.commands.Publish(message.AutomaticPowerCommand{Timestamp: epoch, Power: 100})
	_, err := rig.engine.control.SetMode(state.ModeManual)
	require.NoError(t, err)

	rig.engine.pressure.step(ctx)

	assert.False(t, rig.engine.commands.Pending())
	reading, ok := rig.engine.pressures.TakeLatest()
	require.True(t, ok)
	assert.InDelta(t, 3.0, reading.Pressure, 1e-12, "stale full-power command must not be applied")
	assert.Equal(t, model.ValveClosed, reading.ValveAction)
}

func TestPressure_AutomaticUsesLatestCommand(t *testing.T) {
	rig := newTestRig(t)

	rig.engine.commands.Publish(message.AutomaticPowerCommand{Timestamp: epoch, Power: 10})
	rig.engine.commands.Publish(message.AutomaticPowerCommand{Timestamp: epoch, Power: 100})
	rig.engine.pressure.step(context.Background())

	reading, ok := rig.engine.pressures.TakeLatest()
	require.True(t, ok)
	// 3.0 + 0.08*100/100 + 0.01*(3.0-3.0)
	assert.InDelta(t, 3.08, reading.Pressure, 1e-9)
	assert.False(t, rig.engine.commands.Pending())
}

func TestPressure_WithoutCommandUsesSharedPower(t *testing.T) {
	rig := newTestRig(t)
	require.True(t, rig.engine.control.ApplyAutomatic(50))

	rig.engine.pressure.step(context.Background())

	reading, ok := rig.engine.pressures.TakeLatest()
	require.True(t, ok)
	assert.InDelta(t, 3.04, reading.Pressure, 1e-9)
}

func TestTemperature_FollowsCurrentPower(t *testing.T) {
	rig := newTestRig(t)
	require.True(t, rig.engine.control.ApplyAutomatic(100))

	rig.engine.temperature.step(context.Background())

	sample, ok := rig.engine.temperatures.TakeLatest()
	require.True(t, ok)
	require.Len(t, sample.Temperatures, 4)
	for _, v := range sample.Temperatures {
		assert.InDelta(t, 18.8, v, 1e-9)
	}
	assert.Equal(t, epoch, sample.Timestamp)
}

func TestHealth_Stale(t *testing.T) {
	fc := testingclock.NewFakeClock(epoch)
	h := newHealth(fc)
	fast := h.register("fast", 100*time.Millisecond)
	h.register("slow", time.Second)
	h.start()

	assert.Empty(t, h.stale())

	fc.Step(400 * time.Millisecond)
	assert.Equal(t, []string{"fast"}, h.stale())

	fast.record(fc.Now())
	assert.Empty(t, h.stale())
}

func TestEngine_ShutdownEventStopsRun(t *testing.T) {
	rig := newTestRig(t)
	rig.send(t, message.Shutdown{})

	done := make(chan error, 1)
	go func() { done <- rig.engine.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop after a shutdown event")
	}
}
