package lights

import (
	"math"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

// PointLight is a delta light emitting intensity I uniformly in all
// directions. It has no surface, so it can only be reached through
// explicit sampling, never by ray intersection.
type PointLight struct {
	Position  core.Vec3
	Intensity core.Vec3 // Radiant intensity (power per solid angle)
}

// NewPointLight creates a new point light
func NewPointLight(position, intensity core.Vec3) *PointLight {
	return &PointLight{Position: position, Intensity: intensity}
}

// Type implements the Light interface
func (pl *PointLight) Type() core.LightType {
	return core.LightTypePoint
}

// Sample implements the Light interface. The position is fixed, so the
// connection is deterministic and the discrete density is 1; the
// emission carries the 1/distance² falloff.
func (pl *PointLight) Sample(point core.Vec3, sample core.Vec2) core.LightSample {
	toLight := pl.Position.Subtract(point)
	distance := toLight.Length()
	direction := toLight.Multiply(1.0 / distance)

	return core.LightSample{
		Point:     pl.Position,
		Normal:    direction.Multiply(-1),
		Direction: direction,
		Distance:  distance,
		Emission:  pl.Intensity.Multiply(1.0 / (distance * distance)),
		PDF:       1.0,
	}
}

// PDF implements the Light interface. A delta position can never be hit
// by an independently sampled direction.
func (pl *PointLight) PDF(point core.Vec3, direction core.Vec3) float64 {
	return 0.0
}

// SampleEmission implements the Light interface, sampling a uniform
// direction on the full sphere
func (pl *PointLight) SampleEmission(samplePoint core.Vec2, sampleDirection core.Vec2) core.EmissionSample {
	direction := core.SampleUniformSphere(sampleDirection)

	return core.EmissionSample{
		Point:        pl.Position,
		Normal:       direction,
		Direction:    direction,
		Emission:     pl.Intensity,
		AreaPDF:      1.0,
		DirectionPDF: core.UniformSpherePDF(),
	}
}

// EmissionPDF implements the Light interface. The positional density is
// 0 because no area-measure process produces the delta position.
func (pl *PointLight) EmissionPDF(point core.Vec3, direction core.Vec3) (pdfPos, pdfDir float64) {
	return 0.0, core.UniformSpherePDF()
}

// Emit implements the Light interface. Point lights have no surface to
// evaluate emission on.
func (pl *PointLight) Emit(point core.Vec3, normal core.Vec3, direction core.Vec3) core.Vec3 {
	return core.Vec3{}
}

// Power returns the total emitted power, used for light selection weights
func (pl *PointLight) Power() float64 {
	return 4 * math.Pi * pl.Intensity.Luminance()
}
