package model

// Thermal is a first-order lag model of the heated space. The base
// temperature relaxes toward a target set by the heating power, and each
// thermocouple reads the base plus independent noise.
type Thermal struct {
	ambient        float64
	maxDelta       float64
	alpha          float64
	noiseAmplitude float64
	base           float64
}

// NewThermal creates a thermal model starting at ambient temperature.
//
//   - ambient: temperature with heating off
//   - maxDelta: rise above ambient at 100% power
//   - alpha: fraction of the gap to target closed per step
//   - noiseAmplitude: half-width of the per-sensor noise band
func NewThermal(ambient, maxDelta, alpha, noiseAmplitude float64) *Thermal {
	return &Thermal{
		ambient:        ambient,
		maxDelta:       maxDelta,
		alpha:          alpha,
		noiseAmplitude: noiseAmplitude,
		base:           ambient,
	}
}

// Target returns the steady-state temperature for power (percent).
func (th *Thermal) Target(power float64) float64 {
	return th.ambient + th.maxDelta*(power/100.0)
}

// Step advances the model one cycle at the given power and returns one
// reading per sensor.
func (th *Thermal) Step(power float64, sensors int, src Noise) []float64 {
	th.base += th.alpha * (th.Target(power) - th.base)

	readings := make([]float64, sensors)
	for i := range readings {
		readings[i] = th.base + Uniform(src, th.noiseAmplitude)
	}
	return readings
}

// Base returns the noise-free temperature.
func (th *Thermal) Base() float64 {
	return th.base
}
