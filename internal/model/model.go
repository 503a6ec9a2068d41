// Package model contains the numeric plant models and control laws used by
// the simulation.
//
// Models are not safe for concurrent use. Each one is owned by exactly one
// task goroutine.
package model

// Noise is a source of uniform values in [0, 1). *rand.Rand from
// math/rand/v2 satisfies it.
type Noise interface {
	Float64() float64
}

// Uniform returns a value drawn uniformly from [-amplitude, amplitude).
func Uniform(src Noise, amplitude float64) float64 {
	return (src.Float64()*2 - 1) * amplitude
}

// Comfort classifies a mean temperature against the reference band.
type Comfort string

const (
	ComfortCold        Comfort = "cold"
	ComfortComfortable Comfort = "comfortable"
	ComfortHot         Comfort = "hot"
	ComfortUnknown     Comfort = "unknown" // no temperature sample yet
)

// Classify returns cold below ref-band, hot above ref+band, and comfortable
// otherwise. Both bounds are inclusive on the comfortable side.
func Classify(mean, ref, band float64) Comfort {
	if mean < ref-band {
		return ComfortCold
	}
	if mean > ref+band {
		return ComfortHot
	}
	return ComfortComfortable
}

// Defaults for the automatic control law.
const (
	DefaultGain      = 12.0
	DefaultBasePower = 30.0
)

// AutomaticPower is the proportional control law: base power plus gain
// times the temperature error. The result is not clamped.
func AutomaticPower(mean, ref, gain, basePower float64) float64 {
	return gain*(ref-mean) + basePower
}
