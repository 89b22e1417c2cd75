package lights

import (
	"math"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
	"github.com/df07/go-bidirectional-tracer/pkg/geometry"
)

// QuadLight represents a rectangular area light
type QuadLight struct {
	*geometry.Quad         // Embed quad for hit testing
	SurfaceArea    float64 // Cached area for PDF calculations
	Emission       core.Vec3
}

// NewQuadLight creates a new quad light. The material must be emissive
// so that BSDF-sampled hits on the light pick up its radiance.
func NewQuadLight(corner, u, v core.Vec3, material core.Material, emission core.Vec3) *QuadLight {
	quad := geometry.NewQuad(corner, u, v, material)

	return &QuadLight{
		Quad:        quad,
		SurfaceArea: u.Cross(v).Length(),
		Emission:    emission,
	}
}

// Type implements the Light interface
func (ql *QuadLight) Type() core.LightType {
	return core.LightTypeArea
}

// Sample implements the Light interface, sampling a point on the quad
// for a direct connection from the given shading point
func (ql *QuadLight) Sample(point core.Vec3, sample core.Vec2) core.LightSample {
	// Uniform barycentric coordinates on the quad surface
	samplePoint := ql.Corner.Add(ql.U.Multiply(sample.X)).Add(ql.V.Multiply(sample.Y))

	toLight := samplePoint.Subtract(point)
	distance := toLight.Length()
	direction := toLight.Multiply(1.0 / distance)

	// Convert the uniform area density to solid angle:
	// pdf_sa = pdf_area * distance² / |cos(θ)|
	cosTheta := math.Abs(ql.Normal.Dot(direction.Multiply(-1)))
	if cosTheta < 1e-8 {
		// Light is edge-on, no contribution
		return core.LightSample{
			Point:     samplePoint,
			Normal:    ql.Normal,
			Direction: direction,
			Distance:  distance,
			PDF:       0,
		}
	}

	areaPDF := 1.0 / ql.SurfaceArea
	solidAnglePDF := areaPDF * distance * distance / cosTheta

	return core.LightSample{
		Point:     samplePoint,
		Normal:    ql.Normal,
		Direction: direction,
		Distance:  distance,
		Emission:  ql.Emit(samplePoint, ql.Normal, direction.Multiply(-1)),
		PDF:       solidAnglePDF,
	}
}

// PDF implements the Light interface, returning the solid-angle density
// of sampling the given direction from point via Sample
func (ql *QuadLight) PDF(point core.Vec3, direction core.Vec3) float64 {
	ray := core.NewRay(point, direction)
	hit, isHit := ql.Quad.Hit(ray, 0.001, math.Inf(1))
	if !isHit {
		return 0.0
	}

	distance := hit.T
	cosTheta := math.Abs(ql.Normal.Dot(direction.Multiply(-1)))
	if cosTheta < 1e-8 {
		return 0.0
	}

	areaPDF := 1.0 / ql.SurfaceArea
	return areaPDF * distance * distance / cosTheta
}

// SampleEmission implements the Light interface, sampling a point and
// cosine-weighted outgoing direction on the emitting side of the quad
func (ql *QuadLight) SampleEmission(samplePoint core.Vec2, sampleDirection core.Vec2) core.EmissionSample {
	point := ql.Corner.Add(ql.U.Multiply(samplePoint.X)).Add(ql.V.Multiply(samplePoint.Y))

	direction := core.SampleCosineHemisphere(ql.Normal, sampleDirection)
	cosTheta := direction.Dot(ql.Normal)
	if cosTheta < 0 {
		cosTheta = 0
	}

	return core.EmissionSample{
		Point:        point,
		Normal:       ql.Normal,
		Direction:    direction,
		Emission:     ql.Emission,
		AreaPDF:      1.0 / ql.SurfaceArea,
		DirectionPDF: cosTheta / math.Pi,
	}
}

// EmissionPDF implements the Light interface
func (ql *QuadLight) EmissionPDF(point core.Vec3, direction core.Vec3) (pdfPos, pdfDir float64) {
	if !ql.containsPoint(point) {
		return 0, 0
	}

	pdfPos = 1.0 / ql.SurfaceArea

	cosTheta := direction.Dot(ql.Normal)
	if cosTheta > 0 {
		pdfDir = cosTheta / math.Pi
	}
	return pdfPos, pdfDir
}

// Emit implements the Light interface. The quad emits only from its
// front side.
func (ql *QuadLight) Emit(point core.Vec3, normal core.Vec3, direction core.Vec3) core.Vec3 {
	if direction.Dot(normal) <= 0 {
		return core.Vec3{}
	}
	return ql.Emission
}

// Power returns the total emitted power, used for light selection weights
func (ql *QuadLight) Power() float64 {
	return ql.Emission.Luminance() * ql.SurfaceArea * math.Pi
}

// containsPoint checks whether point lies on the quad surface by solving
// point = corner + alpha*u + beta*v
func (ql *QuadLight) containsPoint(point core.Vec3) bool {
	toPoint := point.Subtract(ql.Corner)

	uDotU := ql.U.Dot(ql.U)
	vDotV := ql.V.Dot(ql.V)
	uDotV := ql.U.Dot(ql.V)

	det := uDotU*vDotV - uDotV*uDotV
	if math.Abs(det) < 1e-8 {
		return false
	}

	toDotU := toPoint.Dot(ql.U)
	toDotV := toPoint.Dot(ql.V)

	alpha := (vDotV*toDotU - uDotV*toDotV) / det
	beta := (uDotU*toDotV - uDotV*toDotU) / det

	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return false
	}

	reconstructed := ql.Corner.Add(ql.U.Multiply(alpha)).Add(ql.V.Multiply(beta))
	return reconstructed.Subtract(point).Length() <= 0.001
}
