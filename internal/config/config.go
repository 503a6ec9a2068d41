// Package config loads and validates the simulation parameters.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/hearth/internal/channel"
	"github.com/dyluth/hearth/internal/model"
)

// Config holds every tunable of the simulation. It is built once at
// startup and passed by value afterwards, so tasks share it without locking.
type Config struct {
	// Comfort
	ReferenceTemperature float64 `yaml:"reference_temperature"` // Target temperature (°C)
	ComfortBand          float64 `yaml:"comfort_band"`          // ± tolerance around the reference (°C)

	// Temperature model
	AmbientTemperature float64 `yaml:"ambient_temperature"` // Temperature with heating off (°C)
	MaxHeatingDelta    float64 `yaml:"max_heating_delta"`   // Rise above ambient at 100% power (°C)
	TemperatureAlpha   float64 `yaml:"temperature_alpha"`   // Fraction of the gap to target closed per cycle
	TemperatureNoise   float64 `yaml:"temperature_noise"`   // Half-width of thermocouple noise (°C)
	Thermocouples      int     `yaml:"thermocouples"`       // Sensors per temperature batch

	// Pressure model
	ReferencePressure float64 `yaml:"reference_pressure"`
	MaxSafePressure   float64 `yaml:"max_safe_pressure"` // Above this the relief valve opens fully
	PressureNoise     float64 `yaml:"pressure_noise"`

	// Control law
	AutomaticGain      float64 `yaml:"automatic_gain"`       // Power per °C of error
	BasePower          float64 `yaml:"base_power"`           // Power at zero error (%)
	InitialManualPower float64 `yaml:"initial_manual_power"` // Manual setpoint at startup (%)

	// Scheduling
	TemperaturePeriod time.Duration `yaml:"temperature_period"`
	PressurePeriod    time.Duration `yaml:"pressure_period"`
	DecisionPeriod    time.Duration `yaml:"decision_period"` // Idle granularity of the decision loop
	DisplayPeriod     time.Duration `yaml:"display_period"`  // Status line cadence
	SampleWait        time.Duration `yaml:"sample_wait"`     // How long the decision loop waits for a temperature batch
	ShutdownGrace     time.Duration `yaml:"shutdown_grace"`

	EventCapacity int    `yaml:"event_capacity"` // Operator event queue depth
	Seed          uint64 `yaml:"seed"`           // Noise seed, 0 picks one from the clock
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		ReferenceTemperature: 22.0,
		ComfortBand:          1.0,
		AmbientTemperature:   18.0,
		MaxHeatingDelta:      10.0,
		TemperatureAlpha:     0.08,
		TemperatureNoise:     0.15,
		Thermocouples:        4,
		ReferencePressure:    3.0,
		MaxSafePressure:      4.0,
		PressureNoise:        0.01,
		AutomaticGain:        model.DefaultGain,
		BasePower:            model.DefaultBasePower,
		InitialManualPower:   30.0,
		TemperaturePeriod:    500 * time.Millisecond,
		PressurePeriod:       200 * time.Millisecond,
		DecisionPeriod:       20 * time.Millisecond,
		DisplayPeriod:        time.Second,
		SampleWait:           100 * time.Millisecond,
		ShutdownGrace:        time.Second,
		EventCapacity:        channel.DefaultEventCapacity,
	}
}

// Validate performs strict validation on the configuration
func (c *Config) Validate() error {
	if c.ComfortBand < 0 {
		return fmt.Errorf("comfort_band must be >= 0, got %v", c.ComfortBand)
	}

	if c.MaxHeatingDelta < 0 {
		return fmt.Errorf("max_heating_delta must be >= 0, got %v", c.MaxHeatingDelta)
	}

	// Alpha outside (0,1] either never moves or overshoots the target
	if c.TemperatureAlpha <= 0 || c.TemperatureAlpha > 1 {
		return fmt.Errorf("temperature_alpha must be in (0, 1], got %v", c.TemperatureAlpha)
	}

	if c.TemperatureNoise < 0 || c.PressureNoise < 0 {
		return fmt.Errorf("noise amplitudes must be >= 0")
	}

	if c.Thermocouples < 1 {
		return fmt.Errorf("thermocouples must be >= 1, got %d", c.Thermocouples)
	}

	if c.MaxSafePressure <= c.ReferencePressure {
		return fmt.Errorf("max_safe_pressure (%v) must be greater than reference_pressure (%v)",
			c.MaxSafePressure, c.ReferencePressure)
	}

	if c.InitialManualPower < 0 || c.InitialManualPower > 100 {
		return fmt.Errorf("initial_manual_power must be in [0, 100], got %v", c.InitialManualPower)
	}

	periods := []struct {
		name  string
		value time.Duration
	}{
		{"temperature_period", c.TemperaturePeriod},
		{"pressure_period", c.PressurePeriod},
		{"decision_period", c.DecisionPeriod},
		{"display_period", c.DisplayPeriod},
		{"shutdown_grace", c.ShutdownGrace},
	}
	for _, p := range periods {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %v", p.name, p.value)
		}
	}

	if c.SampleWait < 0 {
		return fmt.Errorf("sample_wait must be >= 0, got %v", c.SampleWait)
	}

	if c.EventCapacity < 1 {
		return fmt.Errorf("event_capacity must be >= 1, got %d", c.EventCapacity)
	}

	return nil
}

// Load reads a YAML file on top of the defaults and validates the result.
// Keys missing from the file keep their default value; unknown keys are an
// error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.decodeFile(path); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// decodeFile overlays the YAML file at path onto c without validating.
func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
