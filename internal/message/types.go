// Package message defines the values exchanged between controller tasks.
//
// Sensor and command messages are plain immutable structs, copied through
// latest-value channels. Operator events form a closed set: the Event
// interface has an unexported marker method, so only the kinds declared
// here can exist and consumers can switch over them exhaustively.
package message

import (
	"fmt"
	"time"

	"github.com/dyluth/hearth/internal/state"
)

// TemperatureSample is one batch of thermocouple readings.
type TemperatureSample struct {
	Timestamp    time.Time `json:"timestamp"`
	Temperatures []float64 `json:"temperatures"` // One entry per thermocouple, in sensor order
}

// Mean returns the average of the batch. Returns false for an empty batch.
func (s TemperatureSample) Mean() (float64, bool) {
	if len(s.Temperatures) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, t := range s.Temperatures {
		sum += t
	}
	return sum / float64(len(s.Temperatures)), true
}

// PressureReading is the pressure loop's output for one cycle.
type PressureReading struct {
	Timestamp   time.Time `json:"timestamp"`
	Pressure    float64   `json:"pressure"`
	ValveAction float64   `json:"valve_action"` // 0.0, 0.6 or 1.0
}

// AutomaticPowerCommand carries the power computed by the decision task in
// automatic mode. Never produced in manual mode.
type AutomaticPowerCommand struct {
	Timestamp time.Time `json:"timestamp"`
	Power     float64   `json:"power"`
}

// Event is an operator request. The concrete kinds are SetMode,
// SetManualPower and Shutdown.
type Event interface {
	fmt.Stringer
	operatorEvent()
}

// SetMode asks the controller to switch operating mode.
type SetMode struct {
	Mode state.Mode
}

// SetManualPower sets the operator's power setpoint.
// Out-of-range values are clamped by the receiver.
type SetManualPower struct {
	Power float64
}

// Shutdown asks every task to stop.
type Shutdown struct{}

func (SetMode) operatorEvent()        {}
func (SetManualPower) operatorEvent() {}
func (Shutdown) operatorEvent()       {}

func (e SetMode) String() string        { return fmt.Sprintf("set_mode(%s)", e.Mode) }
func (e SetManualPower) String() string { return fmt.Sprintf("set_power(%.1f)", e.Power) }
func (Shutdown) String() string         { return "shutdown" }
