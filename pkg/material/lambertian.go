package material

import (
	"math"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Vec3 // Base color/reflectance
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Scatter implements the Material interface for lambertian scattering
func (l *Lambertian) Scatter(rayIn core.Ray, hit core.SurfaceInteraction, mode core.TransportMode, sampler core.Sampler) (core.ScatterResult, bool) {
	// Cosine-weighted direction in the hemisphere around the normal
	scatterDirection := core.SampleCosineHemisphere(hit.Normal, sampler.Get2D())
	scattered := core.Ray{Origin: hit.Point, Direction: scatterDirection}

	cosTheta := scatterDirection.Dot(hit.Normal)
	if cosTheta < 0 {
		cosTheta = 0
	}
	pdf := cosTheta / math.Pi

	wo := rayIn.Direction.Multiply(-1).Normalize()
	attenuation := l.Albedo.Multiply(1.0 / math.Pi)
	attenuation = attenuation.Multiply(shadingNormalCorrection(&hit, wo, scatterDirection, mode))

	return core.ScatterResult{
		Scattered:   scattered,
		Attenuation: attenuation,
		PDF:         pdf,
	}, true
}

// EvaluateBRDF evaluates the BRDF for specific incoming/outgoing directions
func (l *Lambertian) EvaluateBRDF(wo, wi core.Vec3, hit *core.SurfaceInteraction, mode core.TransportMode) core.Vec3 {
	// Both directions must be on the outside of the surface
	if wo.Dot(hit.Normal) <= 0 || wi.Dot(hit.Normal) <= 0 {
		return core.Vec3{}
	}

	f := l.Albedo.Multiply(1.0 / math.Pi)
	return f.Multiply(shadingNormalCorrection(hit, wo, wi, mode))
}

// PDF calculates the probability density for specific directions
func (l *Lambertian) PDF(wo, wi core.Vec3, hit *core.SurfaceInteraction) (float64, bool) {
	// Cosine-weighted hemisphere sampling: cos(θ) / π
	cosTheta := wi.Dot(hit.Normal)
	if cosTheta <= 0 {
		return 0.0, false
	}
	return cosTheta / math.Pi, false
}

// shadingNormalCorrection compensates for the asymmetry that shading
// normals introduce between radiance and importance transport. When the
// shading normal equals the geometric normal the factor is 1.
func shadingNormalCorrection(hit *core.SurfaceInteraction, wo, wi core.Vec3, mode core.TransportMode) float64 {
	if mode != core.Importance {
		return 1.0
	}
	num := math.Abs(wi.Dot(hit.ShadingNormal)) * math.Abs(wo.Dot(hit.Normal))
	denom := math.Abs(wi.Dot(hit.Normal)) * math.Abs(wo.Dot(hit.ShadingNormal))
	if denom == 0 {
		return 0
	}
	return num / denom
}
