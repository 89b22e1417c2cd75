package integrator

import (
	"math"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

// ConnectStrategy joins the first s light vertices with the first t
// camera vertices into a complete transport path and returns its MIS
// weighted contribution. t=1 strategies land on the camera lens rather
// than the pixel being rendered; for those isSplat is true and raster
// holds the position the contribution belongs to.
func ConnectStrategy(scene core.Scene, cameraPath, lightPath *Path, s, t int, sampler core.Sampler, metrics *core.Metrics) (contribution core.Vec3, raster core.Vec2, isSplat bool) {
	// A camera subpath that already ended on a light can only be
	// completed by the pure path tracing strategy; connecting light
	// vertices onto it would count the same paths a second time.
	if t > 1 && s != 0 && cameraPath.Vertices[t-1].IsLight {
		return core.Vec3{}, raster, false
	}

	var radiance core.Vec3
	var sampled *Vertex

	switch {
	case s == 0:
		// The camera subpath alone: counts only if it ended on a light
		pt := &cameraPath.Vertices[t-1]
		if pt.IsLight {
			radiance = pt.EmittedLight.MultiplyVec(pt.Beta)
		}

	case t == 1:
		// Connect the light subpath directly to the camera lens
		qs := &lightPath.Vertices[s-1]
		if !qs.IsConnectible() {
			break
		}
		wiSample, ok := scene.Camera().SampleWi(qs.Point, sampler.Get2D())
		if !ok || wiSample.Pdf <= 0 || wiSample.We.IsZero() {
			break
		}
		if occludedBetween(scene, qs.Point, wiSample.Point) {
			break
		}

		isSplat = true
		raster = wiSample.Raster

		cameraBeta := wiSample.We.Multiply(1.0 / wiSample.Pdf)
		sampled = &Vertex{
			Point:          wiSample.Point,
			Normal:         scene.Camera().Forward(),
			Camera:         scene.Camera(),
			IsCamera:       true,
			AreaPdfForward: 1.0,
			Beta:           cameraBeta,
		}

		radiance = qs.Beta.MultiplyVec(qs.evaluateBSDF(wiSample.Wi, core.Importance)).MultiplyVec(cameraBeta)
		if qs.IsOnSurface() {
			radiance = radiance.Multiply(math.Abs(wiSample.Wi.Dot(qs.Normal)))
		}

	case s == 1:
		// Sample a fresh point on a light and connect the camera subpath
		pt := &cameraPath.Vertices[t-1]
		if !pt.IsConnectible() {
			break
		}
		light, selectionPdf := scene.LightSampler().SampleEmission(sampler.Get1D())
		if light == nil || selectionPdf <= 0 {
			break
		}
		lightSample := light.Sample(pt.Point, sampler.Get2D())
		if lightSample.PDF <= 0 || lightSample.Emission.IsZero() {
			break
		}
		shadowRay := core.NewRay(pt.Point, lightSample.Direction)
		if scene.Occluded(shadowRay, 0.001, lightSample.Distance-0.001) {
			break
		}

		lightBeta := lightSample.Emission.Multiply(1.0 / (lightSample.PDF * selectionPdf))
		sampled = &Vertex{
			Point:        lightSample.Point,
			Normal:       lightSample.Normal,
			Light:        light,
			IsLight:      true,
			Beta:         lightBeta,
			EmittedLight: lightSample.Emission,
		}
		sampled.AreaPdfForward = lightOriginPdf(scene, sampled, pt)

		radiance = pt.Beta.MultiplyVec(pt.evaluateBSDF(lightSample.Direction, core.Radiance)).MultiplyVec(lightBeta)
		if pt.IsOnSurface() {
			radiance = radiance.Multiply(math.Abs(lightSample.Direction.Dot(pt.Normal)))
		}

	default:
		// Deterministic connection between interior vertices
		qs := &lightPath.Vertices[s-1]
		pt := &cameraPath.Vertices[t-1]
		if !qs.IsConnectible() || !pt.IsConnectible() {
			break
		}

		direction := qs.Point.Subtract(pt.Point)
		distance := direction.Length()
		if distance < 1e-6 {
			break
		}
		direction = direction.Multiply(1.0 / distance)

		cameraBSDF := pt.evaluateBSDF(direction, core.Radiance)
		lightBSDF := qs.evaluateBSDF(direction.Multiply(-1), core.Importance)
		if cameraBSDF.IsZero() || lightBSDF.IsZero() {
			break
		}

		g := geometryTerm(scene, pt, qs)
		radiance = qs.Beta.MultiplyVec(lightBSDF).MultiplyVec(cameraBSDF).MultiplyVec(pt.Beta).Multiply(g)
	}

	if metrics != nil {
		metrics.TotalPaths.Inc()
		if radiance.IsZero() {
			metrics.ZeroRadiancePaths.Inc()
			return core.Vec3{}, raster, isSplat
		}
		metrics.PathLength.Observe(float64(s + t))
	} else if radiance.IsZero() {
		return core.Vec3{}, raster, isSplat
	}

	weight := MISWeight(scene, cameraPath, lightPath, sampled, s, t)
	return radiance.Multiply(weight), raster, isSplat
}

// geometryTerm evaluates the symmetric throughput factor of a
// deterministic connection, including visibility. Cosines apply only at
// surface vertices; medium vertices have none.
func geometryTerm(scene core.Scene, v0, v1 *Vertex) float64 {
	direction := v1.Point.Subtract(v0.Point)
	dist2 := direction.LengthSquared()
	if dist2 == 0 {
		return 0
	}
	distance := math.Sqrt(dist2)
	direction = direction.Multiply(1.0 / distance)

	g := 1.0 / dist2
	if v0.IsOnSurface() {
		g *= math.Abs(direction.Dot(v0.Normal))
	}
	if v1.IsOnSurface() {
		g *= math.Abs(direction.Dot(v1.Normal))
	}
	if g == 0 {
		return 0
	}

	shadowRay := core.NewRay(v0.Point, direction)
	if scene.Occluded(shadowRay, 0.001, distance-0.001) {
		return 0
	}
	return g
}

func occludedBetween(scene core.Scene, from, to core.Vec3) bool {
	direction := to.Subtract(from)
	distance := direction.Length()
	if distance < 1e-6 {
		return false
	}
	ray := core.NewRay(from, direction.Multiply(1.0/distance))
	return scene.Occluded(ray, 0.001, distance-0.001)
}
