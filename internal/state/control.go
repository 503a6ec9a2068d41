// Package state holds the controller's shared mutable state.
//
// Control is the only resource written by one task and read by others.
// Every accessor follows the same discipline: take the lock, copy or
// mutate, release. No pointer into the protected fields ever escapes.
package state

import (
	"fmt"
	"math"
	"sync"
)

// Power limits in percent.
const (
	MinPower = 0.0
	MaxPower = 100.0
)

// Mode is the controller operating mode.
type Mode string

const (
	// ModeAutomatic lets the decision task compute the heating power.
	ModeAutomatic Mode = "automatic"

	// ModeManual applies the operator's power setpoint directly.
	ModeManual Mode = "manual"
)

// Validate checks that m is a known mode.
func (m Mode) Validate() error {
	switch m {
	case ModeAutomatic, ModeManual:
		return nil
	default:
		return fmt.Errorf("invalid mode: %q (must be %q or %q)", string(m), ModeAutomatic, ModeManual)
	}
}

// Clamp limits v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPower limits a power value to [MinPower, MaxPower].
func ClampPower(v float64) float64 {
	return Clamp(v, MinPower, MaxPower)
}

// Snapshot is a copy of the control state taken under the lock.
type Snapshot struct {
	Mode         Mode
	ManualPower  float64
	CurrentPower float64
}

// Control is the mutex-guarded record of mode and power.
type Control struct {
	mu           sync.Mutex
	mode         Mode
	manualPower  float64
	currentPower float64
}

// NewControl returns the initial state: automatic mode, the given manual
// setpoint, and zero effective power.
func NewControl(initialManualPower float64) *Control {
	return &Control{
		mode:        ModeAutomatic,
		manualPower: ClampPower(initialManualPower),
	}
}

// Snapshot copies all fields out in one critical section.
func (c *Control) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Mode:         c.mode,
		ManualPower:  c.manualPower,
		CurrentPower: c.currentPower,
	}
}

// CurrentPower returns the effective heating power.
func (c *Control) CurrentPower() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPower
}

// SetMode switches the operating mode. Entering manual mode copies the
// manual setpoint into the effective power at once, so manual control
// takes effect without waiting for the next decision cycle.
// Returns the previous mode.
func (c *Control) SetMode(m Mode) (Mode, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	previous := c.mode
	c.mode = m
	if m == ModeManual {
		c.currentPower = c.manualPower
	}
	return previous, nil
}

// SetManualPower clamps and stores the manual setpoint. In manual mode the
// effective power follows immediately. Returns the stored value.
func (c *Control) SetManualPower(v float64) float64 {
	v = ClampPower(v)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.manualPower = v
	if c.mode == ModeManual {
		c.currentPower = v
	}
	return v
}

// ApplyAutomatic stores power as the effective power, but only while the
// controller is in automatic mode. The mode check and the write share one
// critical section. Returns false, leaving the state untouched, in manual
// mode.
func (c *Control) ApplyAutomatic(power float64) bool {
	power = ClampPower(power)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModeAutomatic {
		return false
	}
	c.currentPower = power
	return true
}

// ApplyManual sets the effective power to the manual setpoint and returns it.
func (c *Control) ApplyManual() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentPower = c.manualPower
	return c.currentPower
}
