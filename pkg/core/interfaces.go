package core

// Logger interface for renderer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// TransportMode distinguishes radiance transport (camera paths) from
// importance transport (light paths). BSDF evaluation and the
// shading-normal correction depend on it.
type TransportMode int

const (
	Radiance TransportMode = iota
	Importance
)

// SurfaceInteraction contains information about a ray-surface intersection
type SurfaceInteraction struct {
	Point         Vec3     // Point of intersection
	Normal        Vec3     // Geometric normal at intersection (front-facing)
	ShadingNormal Vec3     // Interpolated shading normal (equals Normal for analytic shapes)
	T             float64  // Parameter t along the ray
	FrontFace     bool     // Whether ray hit the front face
	Material      Material // Material of the hit object
}

// SetFaceNormal sets the normal vector and determines front/back face
func (si *SurfaceInteraction) SetFaceNormal(ray Ray, outwardNormal Vec3) {
	si.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if si.FrontFace {
		si.Normal = outwardNormal
	} else {
		si.Normal = outwardNormal.Multiply(-1)
	}
	si.ShadingNormal = si.Normal
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   Ray     // The scattered ray
	Attenuation Vec3    // BSDF value (specular: full throughput factor)
	PDF         float64 // Solid-angle density of the sampled direction (0 for specular)
}

// IsSpecular returns true if this is delta (specular) scattering
func (s ScatterResult) IsSpecular() bool {
	return s.PDF <= 0
}

// Material interface for objects that can scatter rays
type Material interface {
	// Scatter samples an outgoing direction for the given incoming ray
	Scatter(rayIn Ray, hit SurfaceInteraction, mode TransportMode, sampler Sampler) (ScatterResult, bool)

	// EvaluateBRDF evaluates the BSDF for specific directions.
	// wo points back toward the previous vertex, wi toward the next.
	EvaluateBRDF(wo, wi Vec3, hit *SurfaceInteraction, mode TransportMode) Vec3

	// PDF returns the solid-angle density of sampling wi given wo,
	// and whether the material is a delta distribution.
	PDF(wo, wi Vec3, hit *SurfaceInteraction) (pdf float64, isDelta bool)
}

// Emitter interface for materials that emit light
type Emitter interface {
	Emit(rayIn Ray) Vec3
}

// LightType classifies lights; delta lights cannot be hit or connected to
// by ordinary BSDF sampling.
type LightType string

const (
	LightTypeArea  LightType = "area"
	LightTypePoint LightType = "point"
)

// LightSample contains information about a sampled point on a light,
// produced when connecting a camera subpath vertex to a fresh light point
type LightSample struct {
	Point     Vec3    // Point on the light source
	Normal    Vec3    // Normal at the light sample point
	Direction Vec3    // Direction from shading point to light
	Distance  float64 // Distance to light
	Emission  Vec3    // Emitted radiance toward the shading point
	PDF       float64 // Solid-angle density of this sample (1 for delta lights)
}

// EmissionSample contains a sampled emission ray for light subpath generation
type EmissionSample struct {
	Point        Vec3    // Point on the light surface
	Normal       Vec3    // Surface normal at the emission point
	Direction    Vec3    // Emission direction from the surface
	Emission     Vec3    // Emitted radiance
	AreaPDF      float64 // Density per unit area (1 for delta positions)
	DirectionPDF float64 // Density per unit solid angle
}

// Light interface for objects that can be sampled during path construction
type Light interface {
	Type() LightType

	// Sample samples the light toward a specific point for direct connection
	Sample(point Vec3, sample Vec2) LightSample

	// PDF returns the solid-angle density of sampling the direction from
	// point toward the light via Sample (0 for delta lights)
	PDF(point Vec3, direction Vec3) float64

	// SampleEmission samples a point and outgoing direction on the light
	SampleEmission(samplePoint Vec2, sampleDirection Vec2) EmissionSample

	// EmissionPDF returns the positional and directional densities of
	// emitting from point in direction (pdfPos is per unit area)
	EmissionPDF(point Vec3, direction Vec3) (pdfPos, pdfDir float64)

	// Emit evaluates emission from point toward direction; zero for
	// lights without an emitting surface
	Emit(point Vec3, normal Vec3, direction Vec3) Vec3
}

// LightSampler selects lights by importance
type LightSampler interface {
	// SampleEmission picks a light for emission sampling
	SampleEmission(u float64) (Light, float64)

	// SelectionPDF returns the discrete probability of picking the light
	SelectionPDF(light Light) float64

	// Count returns the number of lights
	Count() int
}

// CameraWiSample is the result of importance-resampling the camera from a
// scene point (the t=1 connection strategy)
type CameraWiSample struct {
	We     Vec3    // Importance carried toward the scene point
	Wi     Vec3    // Direction from the scene point to the camera
	Point  Vec3    // Sampled point on the lens
	Pdf    float64 // Solid-angle density of the sample
	Raster Vec2    // Raster position the connection contributes to
}

// Camera generates primary rays and exposes the densities needed to treat
// the camera as a path endpoint
type Camera interface {
	// GenerateRay returns a ray through the given raster position;
	// u supplies the lens sample for depth of field
	GenerateRay(raster Vec2, u Vec2) Ray

	// PdfWe returns positional and directional densities for a camera ray
	PdfWe(ray Ray) (pdfPos, pdfDir float64)

	// SampleWi importance-samples a camera connection from ref,
	// returning false if ref is outside the camera frustum
	SampleWi(ref Vec3, u Vec2) (CameraWiSample, bool)

	// MapRayToPixel inverts GenerateRay, returning the raster position a
	// ray from the camera origin corresponds to
	MapRayToPixel(ray Ray) (Vec2, bool)

	// Forward returns the camera viewing direction
	Forward() Vec3
}

// PhaseFunction describes scattering inside participating media
type PhaseFunction interface {
	// P evaluates the phase function for a pair of directions
	P(wo, wi Vec3) float64

	// SampleP samples an incident direction; the value equals the density
	// for physically normalized phase functions
	SampleP(wo Vec3, u Vec2) (wi Vec3, pdf float64)
}

// MediumInteraction records a scattering event inside a medium
type MediumInteraction struct {
	Point Vec3          // Scattering location
	Wo    Vec3          // Direction back toward the previous vertex
	Phase PhaseFunction // Phase function at the event
}

// Medium represents a participating medium along a ray segment
type Medium interface {
	// Sample samples a medium interaction along ray up to tMax. Returns
	// the transmittance-weighted throughput factor and, if a medium
	// event was sampled before tMax, the interaction.
	Sample(ray Ray, tMax float64, sampler Sampler) (Vec3, *MediumInteraction)
}

// Scene exposes intersection and sampling collaborators to the integrators
type Scene interface {
	// Intersect finds the nearest surface hit in (tMin, tMax)
	Intersect(ray Ray, tMin, tMax float64) (*SurfaceInteraction, bool)

	// Occluded reports whether any surface blocks ray within (tMin, tMax)
	Occluded(ray Ray, tMin, tMax float64) bool

	Lights() []Light
	LightSampler() LightSampler
	Camera() Camera

	// Medium returns the global participating medium, or nil
	Medium() Medium

	// Background evaluates environment emission for an escaped ray
	Background(ray Ray) Vec3

	// WorldBounds returns the scene bounding sphere
	WorldBounds() (center Vec3, radius float64)
}
