package material

import (
	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

// Emissive represents a light-emitting material
type Emissive struct {
	Emission core.Vec3 // Emitted light color/intensity
}

// NewEmissive creates a new emissive material
func NewEmissive(emission core.Vec3) *Emissive {
	return &Emissive{Emission: emission}
}

// Scatter implements the Material interface for emissive materials.
// Emissive materials don't scatter rays, they only emit light.
func (e *Emissive) Scatter(rayIn core.Ray, hit core.SurfaceInteraction, mode core.TransportMode, sampler core.Sampler) (core.ScatterResult, bool) {
	return core.ScatterResult{}, false
}

// Emit returns the emitted light for this material
func (e *Emissive) Emit(rayIn core.Ray) core.Vec3 {
	return e.Emission
}

// EvaluateBRDF evaluates the BRDF for specific incoming/outgoing directions
func (e *Emissive) EvaluateBRDF(wo, wi core.Vec3, hit *core.SurfaceInteraction, mode core.TransportMode) core.Vec3 {
	// Lights don't reflect, they only emit
	return core.Vec3{}
}

// PDF calculates the probability density for specific directions
func (e *Emissive) PDF(wo, wi core.Vec3, hit *core.SurfaceInteraction) (float64, bool) {
	return 0.0, false
}
