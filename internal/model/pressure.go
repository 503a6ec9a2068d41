package model

// Pressure loop coefficients.
const (
	pressureGrowth  = 0.08 // rise per cycle at 100% power
	pressureDamping = 0.01 // pull toward the reference per cycle
	valveRelief     = 0.08 // drop per cycle at full valve opening
	valveHighMargin = 0.3  // margin above reference that opens the valve partly
)

// Valve openings.
const (
	ValveClosed  = 0.0
	ValvePartial = 0.6
	ValveFull    = 1.0
)

// ValveAction selects the relief valve opening for a pressure value.
func ValveAction(pressure, reference, maxSafe float64) float64 {
	switch {
	case pressure > maxSafe:
		return ValveFull
	case pressure > reference+valveHighMargin:
		return ValvePartial
	default:
		return ValveClosed
	}
}

// Pressure models the circuit pressure and its relief valve.
type Pressure struct {
	reference      float64
	maxSafe        float64
	noiseAmplitude float64
	pressure       float64
}

// NewPressure creates a pressure model starting at the reference pressure.
func NewPressure(reference, maxSafe, noiseAmplitude float64) *Pressure {
	return &Pressure{
		reference:      reference,
		maxSafe:        maxSafe,
		noiseAmplitude: noiseAmplitude,
		pressure:       reference,
	}
}

// Step advances one cycle at the given power and returns the new pressure
// and the valve opening applied during the cycle.
//
// The order is fixed: heating rise and damping (both from the previous
// pressure), valve selection on the result, valve relief, then noise.
// Reordering changes the steady state.
func (p *Pressure) Step(power float64, src Noise) (pressure, valve float64) {
	growth := pressureGrowth * (power / 100.0)
	damping := pressureDamping * (p.reference - p.pressure)
	p.pressure += growth + damping

	valve = ValveAction(p.pressure, p.reference, p.maxSafe)
	p.pressure -= valveRelief * valve
	p.pressure += Uniform(src, p.noiseAmplitude)

	return p.pressure, valve
}

// Value returns the current pressure.
func (p *Pressure) Value() float64 {
	return p.pressure
}
