package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// floatFlags maps flag names to the float field they override.
func (c *Config) floatFlags() map[string]*float64 {
	return map[string]*float64{
		"reference-temperature": &c.ReferenceTemperature,
		"comfort-band":          &c.ComfortBand,
		"ambient-temperature":   &c.AmbientTemperature,
		"max-heating-delta":     &c.MaxHeatingDelta,
		"temperature-alpha":     &c.TemperatureAlpha,
		"temperature-noise":     &c.TemperatureNoise,
		"reference-pressure":    &c.ReferencePressure,
		"max-safe-pressure":     &c.MaxSafePressure,
		"pressure-noise":        &c.PressureNoise,
		"automatic-gain":        &c.AutomaticGain,
		"base-power":            &c.BasePower,
		"manual-power":          &c.InitialManualPower,
	}
}

// RegisterFlags adds one override flag per configuration field to fs.
// Flag defaults are the stock values; only flags the user actually sets
// are applied by ApplyFlags.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()

	fs.Float64("reference-temperature", d.ReferenceTemperature, "Target temperature (°C)")
	fs.Float64("comfort-band", d.ComfortBand, "Comfort tolerance around the reference (°C)")
	fs.Float64("ambient-temperature", d.AmbientTemperature, "Temperature with heating off (°C)")
	fs.Float64("max-heating-delta", d.MaxHeatingDelta, "Temperature rise at 100% power (°C)")
	fs.Float64("temperature-alpha", d.TemperatureAlpha, "Temperature response rate per cycle")
	fs.Float64("temperature-noise", d.TemperatureNoise, "Thermocouple noise half-width (°C)")
	fs.Int("thermocouples", d.Thermocouples, "Number of thermocouples")
	fs.Float64("reference-pressure", d.ReferencePressure, "Reference pressure")
	fs.Float64("max-safe-pressure", d.MaxSafePressure, "Pressure that opens the relief valve fully")
	fs.Float64("pressure-noise", d.PressureNoise, "Pressure noise half-width")
	fs.Float64("automatic-gain", d.AutomaticGain, "Automatic mode gain (% per °C)")
	fs.Float64("base-power", d.BasePower, "Automatic mode base power (%)")
	fs.Float64("manual-power", d.InitialManualPower, "Manual power setpoint at startup (%)")
	fs.Duration("temperature-period", d.TemperaturePeriod, "Temperature task period")
	fs.Duration("pressure-period", d.PressurePeriod, "Pressure task period")
	fs.Duration("decision-period", d.DecisionPeriod, "Decision loop idle granularity")
	fs.Duration("display-period", d.DisplayPeriod, "Status line period")
	fs.Duration("sample-wait", d.SampleWait, "Decision loop wait for a temperature batch")
	fs.Duration("shutdown-grace", d.ShutdownGrace, "Time allowed for tasks to stop")
	fs.Int("event-capacity", d.EventCapacity, "Operator event queue depth")
	fs.Uint64("seed", d.Seed, "Noise seed (0 = random)")
}

// ApplyFlags copies every flag the user set on fs into c and revalidates.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	for name, field := range c.floatFlags() {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetFloat64(name)
		if err != nil {
			return fmt.Errorf("failed to read --%s: %w", name, err)
		}
		*field = v
	}

	durations := map[string]*time.Duration{
		"temperature-period": &c.TemperaturePeriod,
		"pressure-period":    &c.PressurePeriod,
		"decision-period":    &c.DecisionPeriod,
		"display-period":     &c.DisplayPeriod,
		"sample-wait":        &c.SampleWait,
		"shutdown-grace":     &c.ShutdownGrace,
	}
	for name, field := range durations {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetDuration(name)
		if err != nil {
			return fmt.Errorf("failed to read --%s: %w", name, err)
		}
		*field = v
	}

	ints := map[string]*int{
		"thermocouples":  &c.Thermocouples,
		"event-capacity": &c.EventCapacity,
	}
	for name, field := range ints {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetInt(name)
		if err != nil {
			return fmt.Errorf("failed to read --%s: %w", name, err)
		}
		*field = v
	}

	if fs.Changed("seed") {
		v, err := fs.GetUint64("seed")
		if err != nil {
			return fmt.Errorf("failed to read --seed: %w", err)
		}
		c.Seed = v
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Resolve builds the effective configuration: defaults, then the YAML file
// at path (if non-empty), then command-line overrides. The result is
// validated once, after the overrides, so a flag may correct a file value.
func Resolve(path string, fs *pflag.FlagSet) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyFlags(fs); err != nil {
		return nil, err
	}
	return &cfg, nil
}
