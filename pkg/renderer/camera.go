package renderer

import (
	"math"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

// CameraConfig holds the parameters for a perspective camera
type CameraConfig struct {
	Center        core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera looks at
	Up            core.Vec3 // Up direction
	VFov          float64   // Vertical field of view in degrees
	Width, Height int       // Image dimensions in pixels
}

// Camera is a pinhole perspective camera. Besides generating primary
// rays it exposes the importance densities that let the integrators
// treat it as a path endpoint.
type Camera struct {
	center        core.Vec3
	u, v, w       core.Vec3 // Orthonormal basis; w points opposite the view direction
	upperLeft     core.Vec3 // Viewport corner relative to center, at unit distance
	pixelDeltaU   core.Vec3
	pixelDeltaV   core.Vec3
	width, height int
	viewportArea  float64 // Viewport area at unit distance, the importance normalization
}

// NewCamera creates a perspective camera from the config
func NewCamera(config CameraConfig) *Camera {
	if config.Up.IsZero() {
		config.Up = core.NewVec3(0, 1, 0)
	}
	if config.VFov <= 0 {
		config.VFov = 40
	}

	theta := config.VFov * math.Pi / 180
	viewportHeight := 2 * math.Tan(theta/2)
	aspect := float64(config.Width) / float64(config.Height)
	viewportWidth := viewportHeight * aspect

	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Multiply(viewportWidth)
	vertical := v.Multiply(-viewportHeight) // Raster y grows downward
	upperLeft := w.Multiply(-1).
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5))

	return &Camera{
		center:       config.Center,
		u:            u,
		v:            v,
		w:            w,
		upperLeft:    upperLeft,
		pixelDeltaU:  horizontal.Multiply(1.0 / float64(config.Width)),
		pixelDeltaV:  vertical.Multiply(1.0 / float64(config.Height)),
		width:        config.Width,
		height:       config.Height,
		viewportArea: viewportWidth * viewportHeight,
	}
}

// Forward returns the viewing direction
func (c *Camera) Forward() core.Vec3 {
	return c.w.Multiply(-1)
}

// GenerateRay returns a ray through the given raster position. The lens
// sample is unused for a pinhole aperture.
func (c *Camera) GenerateRay(raster core.Vec2, u core.Vec2) core.Ray {
	direction := c.upperLeft.
		Add(c.pixelDeltaU.Multiply(raster.X)).
		Add(c.pixelDeltaV.Multiply(raster.Y))
	return core.NewRay(c.center, direction.Normalize())
}

// MapRayToPixel inverts GenerateRay, projecting a ray from the camera
// origin onto the viewport plane. Returns false when the ray points
// outside the frustum.
func (c *Camera) MapRayToPixel(ray core.Ray) (core.Vec2, bool) {
	direction := ray.Direction.Normalize()
	cosTheta := direction.Dot(c.Forward())
	if cosTheta <= 1e-9 {
		return core.Vec2{}, false
	}

	// Scale to the viewport plane at unit distance along the view axis
	onPlane := direction.Multiply(1.0 / cosTheta)
	offset := onPlane.Subtract(c.upperLeft)

	x := offset.Dot(c.u) / c.pixelDeltaU.Length()
	y := offset.Dot(c.v.Multiply(-1)) / c.pixelDeltaV.Length()

	if x < 0 || x >= float64(c.width) || y < 0 || y >= float64(c.height) {
		return core.Vec2{}, false
	}
	return core.NewVec2(x, y), true
}

// PdfWe returns positional and directional densities of generating the
// given camera ray. The pinhole position is deterministic, so the
// positional density is 1; the directional density follows from uniform
// raster sampling over the viewport.
func (c *Camera) PdfWe(ray core.Ray) (pdfPos, pdfDir float64) {
	if _, ok := c.MapRayToPixel(ray); !ok {
		return 0, 0
	}
	cosTheta := ray.Direction.Normalize().Dot(c.Forward())
	return 1.0, 1.0 / (c.viewportArea * cosTheta * cosTheta * cosTheta)
}

// SampleWi importance-samples a connection from ref to the camera,
// returning false when ref lies outside the frustum
func (c *Camera) SampleWi(ref core.Vec3, u core.Vec2) (core.CameraWiSample, bool) {
	toCamera := c.center.Subtract(ref)
	distance := toCamera.Length()
	if distance < 1e-9 {
		return core.CameraWiSample{}, false
	}
	wi := toCamera.Multiply(1.0 / distance)

	raster, ok := c.MapRayToPixel(core.NewRay(c.center, wi.Multiply(-1)))
	if !ok {
		return core.CameraWiSample{}, false
	}

	cosTheta := wi.Multiply(-1).Dot(c.Forward())
	if cosTheta <= 0 {
		return core.CameraWiSample{}, false
	}

	// Deterministic lens point: solid-angle density dist²/cosθ, and
	// importance We = 1 / (A cos⁴θ) integrates to one over the film.
	we := 1.0 / (c.viewportArea * cosTheta * cosTheta * cosTheta * cosTheta)

	return core.CameraWiSample{
		We:     core.NewVec3(we, we, we),
		Wi:     wi,
		Point:  c.center,
		Pdf:    distance * distance / cosTheta,
		Raster: raster,
	}, true
}
