package material

import (
	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

// Mirror represents a perfectly specular reflector
type Mirror struct {
	Albedo core.Vec3 // Reflectance tint
}

// NewMirror creates a new mirror material
func NewMirror(albedo core.Vec3) *Mirror {
	return &Mirror{Albedo: albedo}
}

// Scatter implements the Material interface for specular reflection
func (m *Mirror) Scatter(rayIn core.Ray, hit core.SurfaceInteraction, mode core.TransportMode, sampler core.Sampler) (core.ScatterResult, bool) {
	reflected := reflect(rayIn.Direction.Normalize(), hit.Normal)
	scattered := core.Ray{Origin: hit.Point, Direction: reflected}

	// Specular scattering carries the full throughput factor and has no
	// meaningful density, so PDF stays 0 and the cosine is folded in
	// by the caller being skipped.
	return core.ScatterResult{
		Scattered:   scattered,
		Attenuation: m.Albedo,
		PDF:         0,
	}, reflected.Dot(hit.Normal) > 0
}

// EvaluateBRDF returns zero because a delta distribution never
// contributes to connections between independently sampled vertices
func (m *Mirror) EvaluateBRDF(wo, wi core.Vec3, hit *core.SurfaceInteraction, mode core.TransportMode) core.Vec3 {
	return core.Vec3{}
}

// PDF reports a delta distribution
func (m *Mirror) PDF(wo, wi core.Vec3, hit *core.SurfaceInteraction) (float64, bool) {
	return 0.0, true
}

// reflect calculates the reflection of a vector v off a surface with normal n
func reflect(v, n core.Vec3) core.Vec3 {
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
