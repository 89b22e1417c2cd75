package lights

import (
	"math"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

// powered is implemented by lights that can report their total emitted
// power for importance weighting
type powered interface {
	Power() float64
}

// PowerSampler selects lights proportionally to their emitted power.
// Lights that cannot report power get unit weight.
type PowerSampler struct {
	lights  []core.Light
	dist    *core.Distribution1D
	indices map[core.Light]int
}

// NewPowerSampler creates a power-weighted light sampler
func NewPowerSampler(lightList []core.Light) *PowerSampler {
	weights := make([]float64, len(lightList))
	indices := make(map[core.Light]int, len(lightList))
	for i, light := range lightList {
		weight := 1.0
		if p, ok := light.(powered); ok {
			weight = p.Power()
		}
		if weight <= 0 || math.IsInf(weight, 0) || math.IsNaN(weight) {
			weight = 1.0
		}
		weights[i] = weight
		indices[light] = i
	}

	return &PowerSampler{
		lights:  lightList,
		dist:    core.NewDistribution1D(weights),
		indices: indices,
	}
}

// SampleEmission implements the LightSampler interface, picking a light
// for emission sampling with probability proportional to its power
func (ps *PowerSampler) SampleEmission(u float64) (core.Light, float64) {
	if len(ps.lights) == 0 {
		return nil, 0
	}
	idx, pdf := ps.dist.SampleDiscrete(u)
	return ps.lights[idx], pdf
}

// SelectionPDF implements the LightSampler interface
func (ps *PowerSampler) SelectionPDF(light core.Light) float64 {
	idx, ok := ps.indices[light]
	if !ok {
		return 0
	}
	return ps.dist.DiscretePDF(idx)
}

// Count implements the LightSampler interface
func (ps *PowerSampler) Count() int {
	return len(ps.lights)
}
