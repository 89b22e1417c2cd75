package integrator

import (
	"math"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

// Vertex represents a single vertex in a light transport path
type Vertex struct {
	Point    core.Vec3          // 3D position
	Normal   core.Vec3          // Surface normal (geometric)
	Light    core.Light         // Light at this vertex
	Material core.Material      // Material at this vertex
	Camera   core.Camera        // Camera at this vertex
	Phase    core.PhaseFunction // Phase function for medium scattering events

	IncomingDirection core.Vec3 // Unit direction back toward the previous vertex

	// Densities in area measure (solid angle for infinite lights)
	AreaPdfForward float64 // Density of generating this vertex along the subpath
	AreaPdfReverse float64 // Density of generating it from the opposite direction

	IsLight         bool // On a light source
	IsCamera        bool // On the camera
	IsSpecular      bool // Delta interaction
	IsInfiniteLight bool // Escaped ray treated as an environment vertex

	Beta         core.Vec3 // Accumulated throughput from the subpath start
	EmittedLight core.Vec3 // Radiance emitted from this vertex
}

// IsOnSurface reports whether the vertex has a geometric normal, which
// determines whether density conversion picks up a cosine factor.
// Light subpath origins carry a normal but no material, so the material
// alone cannot decide this.
func (v *Vertex) IsOnSurface() bool {
	return !v.Normal.IsZero()
}

// InMedium reports whether the vertex is a medium scattering event
func (v *Vertex) InMedium() bool {
	return v.Phase != nil
}

// IsDeltaLight reports whether the vertex sits on a light whose position
// cannot be reached by area sampling
func (v *Vertex) IsDeltaLight() bool {
	return v.Light != nil && v.Light.Type() == core.LightTypePoint
}

// IsConnectible reports whether a deterministic connection can be made
// to this vertex. Delta interactions and delta lights are excluded.
func (v *Vertex) IsConnectible() bool {
	if v.IsSpecular {
		return false
	}
	if v.IsLight {
		return !v.IsDeltaLight()
	}
	return true
}

// ConvertDensity converts a solid-angle density at this vertex into an
// area density at next. Infinite lights keep the solid-angle measure
// because there is no finite area to convert to.
func (v *Vertex) ConvertDensity(next *Vertex, pdfDir float64) float64 {
	if next.IsInfiniteLight {
		return pdfDir
	}

	direction := next.Point.Subtract(v.Point)
	distanceSquared := direction.LengthSquared()
	if distanceSquared == 0 {
		return 0.0
	}
	invDist2 := 1.0 / distanceSquared

	pdf := pdfDir
	if next.IsOnSurface() {
		cosTheta := direction.Multiply(math.Sqrt(invDist2)).Dot(next.Normal)
		pdf *= math.Abs(cosTheta)
	}

	return pdf * invDist2
}

// scatterPDF returns the solid-angle density of scattering from this
// vertex toward wi, having arrived from wo. Zero for delta interactions
// and for endpoints that have no scattering distribution.
func (v *Vertex) scatterPDF(wo, wi core.Vec3) float64 {
	if v.InMedium() {
		return v.Phase.P(wo, wi)
	}
	if v.Material != nil {
		hit := core.SurfaceInteraction{
			Point:         v.Point,
			Normal:        v.Normal,
			ShadingNormal: v.Normal,
			Material:      v.Material,
		}
		pdf, isDelta := v.Material.PDF(wo, wi, &hit)
		if isDelta {
			return 0
		}
		return pdf
	}
	return 0
}

// evaluateBSDF evaluates the scattering distribution at this vertex for
// a connection toward wi. Light endpoints have no BSDF; their emission
// is carried in the subpath throughput, so they contribute identity.
func (v *Vertex) evaluateBSDF(wi core.Vec3, mode core.TransportMode) core.Vec3 {
	if v.InMedium() {
		p := v.Phase.P(v.IncomingDirection, wi)
		return core.NewVec3(p, p, p)
	}
	if v.IsLight && v.Material == nil {
		return core.NewVec3(1, 1, 1)
	}
	if v.Material == nil {
		return core.Vec3{}
	}
	hit := core.SurfaceInteraction{
		Point:         v.Point,
		Normal:        v.Normal,
		ShadingNormal: v.Normal,
		Material:      v.Material,
	}
	return v.Material.EvaluateBRDF(v.IncomingDirection, wi, &hit, mode)
}
