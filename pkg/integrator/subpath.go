package integrator

import (
	"math"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

// Path represents a sequence of vertices in a light transport subpath
type Path struct {
	Vertices []Vertex
	Length   int
}

// NewPath creates a path with room for maxVertices vertices
func NewPath(maxVertices int) Path {
	return Path{Vertices: make([]Vertex, 0, maxVertices)}
}

// Reset clears the path for reuse without releasing its storage
func (p *Path) Reset() {
	p.Vertices = p.Vertices[:0]
	p.Length = 0
}

func (p *Path) append(v Vertex) {
	p.Vertices = append(p.Vertices, v)
	p.Length++
}

// GenerateCameraSubpath builds a camera subpath of up to maxVertices
// vertices starting at the given raster position. The camera vertex
// itself counts toward the limit.
func GenerateCameraSubpath(scene core.Scene, raster core.Vec2, sampler core.Sampler, maxVertices int) Path {
	path := NewPath(maxVertices)
	FillCameraSubpath(&path, scene, raster, sampler, maxVertices)
	return path
}

// FillCameraSubpath regenerates a camera subpath in place, reusing the
// vertex storage of a previous sample
func FillCameraSubpath(path *Path, scene core.Scene, raster core.Vec2, sampler core.Sampler, maxVertices int) {
	path.Reset()
	if maxVertices == 0 {
		return
	}

	camera := scene.Camera()
	ray := camera.GenerateRay(raster, sampler.Get2D())
	_, directionPDF := camera.PdfWe(ray)

	cameraVertex := Vertex{
		Point:          ray.Origin,
		Normal:         camera.Forward(),
		Camera:         camera,
		AreaPdfForward: 1.0, // Lens position density, degenerate for a pinhole
		Beta:           core.NewVec3(1, 1, 1),
	}
	cameraVertex.IsCamera = true
	path.append(cameraVertex)

	extendPath(path, scene, ray, core.NewVec3(1, 1, 1), directionPDF, sampler, maxVertices-1, core.Radiance)
}

// GenerateLightSubpath builds a light subpath of up to maxVertices
// vertices, starting from a power-weighted emission sample
func GenerateLightSubpath(scene core.Scene, sampler core.Sampler, maxVertices int) Path {
	path := NewPath(maxVertices)
	FillLightSubpath(&path, scene, sampler, maxVertices)
	return path
}

// FillLightSubpath regenerates a light subpath in place, reusing the
// vertex storage of a previous sample
func FillLightSubpath(path *Path, scene core.Scene, sampler core.Sampler, maxVertices int) {
	path.Reset()
	if maxVertices == 0 {
		return
	}

	light, selectionPdf := scene.LightSampler().SampleEmission(sampler.Get1D())
	if light == nil || selectionPdf <= 0 {
		return
	}

	emission := light.SampleEmission(sampler.Get2D(), sampler.Get2D())
	if emission.AreaPDF <= 0 || emission.DirectionPDF <= 0 {
		return
	}

	lightVertex := Vertex{
		Point:             emission.Point,
		Normal:            emission.Normal,
		Light:             light,
		IncomingDirection: core.Vec3{},
		AreaPdfForward:    emission.AreaPDF * selectionPdf,
		IsLight:           true,
		Beta:              emission.Emission,
		EmittedLight:      emission.Emission,
	}
	path.append(lightVertex)

	// beta = Le * |cos θ| / (selectPdf * pdfPos * pdfDir)
	cosTheta := math.Abs(emission.Direction.Dot(emission.Normal))
	throughput := emission.Emission.Multiply(cosTheta / (selectionPdf * emission.AreaPDF * emission.DirectionPDF))

	ray := core.NewRay(emission.Point, emission.Direction)
	extendPath(path, scene, ray, throughput, emission.DirectionPDF, sampler, maxVertices-1, core.Importance)
}

// extendPath traces a ray through the scene, appending a vertex per
// scattering event and tracking forward and reverse densities for every
// vertex pair. Shared by camera and light subpath generation.
func extendPath(path *Path, scene core.Scene, currentRay core.Ray, beta core.Vec3, pdfDir float64, sampler core.Sampler, maxBounces int, mode core.TransportMode) {
	medium := scene.Medium()

	for bounces := 0; bounces < maxBounces; bounces++ {
		prev := &path.Vertices[path.Length-1]

		hit, isHit := scene.Intersect(currentRay, 0.001, math.Inf(1))

		// A participating medium may scatter the ray before it reaches
		// the surface (or the background).
		if medium != nil {
			tMax := math.Inf(1)
			if isHit {
				tMax = hit.T
			}
			factor, mi := medium.Sample(currentRay, tMax, sampler)
			beta = beta.MultiplyVec(factor)
			if beta.IsZero() {
				break
			}
			if mi != nil {
				vertex := Vertex{
					Point:             mi.Point,
					Phase:             mi.Phase,
					IncomingDirection: mi.Wo,
					Beta:              beta,
				}
				vertex.AreaPdfForward = prev.ConvertDensity(&vertex, pdfDir)
				path.append(vertex)
				appended := &path.Vertices[path.Length-1]

				wi, phasePdf := mi.Phase.SampleP(mi.Wo, sampler.Get2D())
				if phasePdf <= 0 {
					break
				}
				pdfDir = phasePdf
				prev = &path.Vertices[path.Length-2]
				prev.AreaPdfReverse = appended.ConvertDensity(prev, mi.Phase.P(wi, mi.Wo))

				currentRay = core.NewRay(mi.Point, wi)
				continue
			}
		}

		if !isHit {
			if mode != core.Radiance {
				break
			}
			// Escaped camera ray: record an environment vertex so the
			// path tracing strategy can pick up background emission.
			bgColor := scene.Background(currentRay)
			vertex := Vertex{
				Point:             currentRay.Origin.Add(currentRay.Direction.Multiply(1000.0)),
				Normal:            currentRay.Direction.Multiply(-1),
				IncomingDirection: currentRay.Direction.Multiply(-1),
				AreaPdfForward:    pdfDir, // Solid angle measure for infinite lights
				IsLight:           bgColor.Luminance() > 0,
				IsInfiniteLight:   true,
				Beta:              beta,
				EmittedLight:      bgColor,
			}
			path.append(vertex)
			break
		}

		var emittedLight core.Vec3
		if emitter, ok := hit.Material.(core.Emitter); ok && hit.FrontFace {
			emittedLight = emitter.Emit(currentRay)
		}

		vertex := Vertex{
			Point:             hit.Point,
			Normal:            hit.Normal,
			Material:          hit.Material,
			IncomingDirection: currentRay.Direction.Normalize().Multiply(-1),
			IsLight:           emittedLight.Luminance() > 0,
			Beta:              beta,
			EmittedLight:      emittedLight,
		}
		vertex.AreaPdfForward = prev.ConvertDensity(&vertex, pdfDir)

		scatter, didScatter := hit.Material.Scatter(currentRay, *hit, mode, sampler)
		if !didScatter {
			path.append(vertex)
			break
		}

		vertex.IsSpecular = scatter.IsSpecular()
		pdfDir = scatter.PDF

		cosTheta := scatter.Scattered.Direction.Normalize().AbsDot(hit.Normal)
		if scatter.IsSpecular() {
			// Deterministic scattering carries the full throughput factor
			beta = beta.MultiplyVec(scatter.Attenuation)
		} else {
			beta = beta.MultiplyVec(scatter.Attenuation).Multiply(cosTheta / pdfDir)
		}

		pdfRev, isReverseDelta := hit.Material.PDF(scatter.Scattered.Direction.Normalize(), vertex.IncomingDirection, hit)
		if isReverseDelta {
			vertex.IsSpecular = true
			pdfRev = 0.0
			pdfDir = 0.0
		}
		prev.AreaPdfReverse = vertex.ConvertDensity(prev, pdfRev)

		path.append(vertex)

		if beta.IsZero() {
			break
		}
		currentRay = scatter.Scattered
	}
}
