package integrator

import (
	"math"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

// misView presents the two subpaths as they would look for a particular
// connection strategy: the sampled endpoint substituted in, the
// connection vertices treated as non-delta, and the handful of reverse
// densities that depend on the connection recomputed. All of it lives
// in this struct, so the underlying subpaths are never mutated and can
// be shared across every strategy evaluated from them.
type misView struct {
	cameraPath *Path
	lightPath  *Path
	sampled    *Vertex
	s, t       int

	ptPdfRev      float64
	ptMinusPdfRev float64
	qsPdfRev      float64
	qsMinusPdfRev float64
}

// cameraVertex resolves camera subpath vertex i through the overlay
func (mv *misView) cameraVertex(i int) *Vertex {
	if mv.sampled != nil && mv.t == 1 && i == mv.t-1 {
		return mv.sampled
	}
	return &mv.cameraPath.Vertices[i]
}

// lightVertex resolves light subpath vertex i through the overlay
func (mv *misView) lightVertex(i int) *Vertex {
	if mv.sampled != nil && mv.s == 1 && i == mv.s-1 {
		return mv.sampled
	}
	return &mv.lightPath.Vertices[i]
}

func (mv *misView) cameraPdfRev(i int) float64 {
	switch i {
	case mv.t - 1:
		return mv.ptPdfRev
	case mv.t - 2:
		return mv.ptMinusPdfRev
	}
	return mv.cameraPath.Vertices[i].AreaPdfReverse
}

func (mv *misView) lightPdfRev(i int) float64 {
	switch i {
	case mv.s - 1:
		return mv.qsPdfRev
	case mv.s - 2:
		return mv.qsMinusPdfRev
	}
	return mv.lightPath.Vertices[i].AreaPdfReverse
}

// Connection endpoints are treated as non-delta: the strategy under
// evaluation did connect there, so a density comparison is meaningful.
func (mv *misView) cameraDelta(i int) bool {
	if i == mv.t-1 {
		return false
	}
	return mv.cameraVertex(i).IsSpecular
}

func (mv *misView) lightDelta(i int) bool {
	if i == mv.s-1 {
		return false
	}
	return mv.lightVertex(i).IsSpecular
}

// remap0 maps zero densities to one so that ratios stay finite across
// delta segments; the corresponding strategies are excluded from the
// sum separately.
func remap0(f float64) float64 {
	if f != 0 {
		return f
	}
	return 1.0
}

// MISWeight computes the balance-heuristic weight of the (s,t) strategy
// against every other strategy that could have produced the same path.
// sampled carries the resampled endpoint of s=1 and t=1 strategies.
func MISWeight(scene core.Scene, cameraPath, lightPath *Path, sampled *Vertex, s, t int) float64 {
	if s+t == 2 {
		return 1.0
	}

	// A path that escapes to the environment can only be produced by
	// extending the camera subpath, so no competing strategy exists.
	if s == 0 && t > 1 && cameraPath.Vertices[t-1].IsInfiniteLight {
		return 1.0
	}

	mv := &misView{
		cameraPath: cameraPath,
		lightPath:  lightPath,
		sampled:    sampled,
		s:          s,
		t:          t,
	}

	var qs, pt, qsMinus, ptMinus *Vertex
	if s > 0 {
		qs = mv.lightVertex(s - 1)
	}
	if t > 0 {
		pt = mv.cameraVertex(t - 1)
	}
	if s > 1 {
		qsMinus = mv.lightVertex(s - 2)
	}
	if t > 1 {
		ptMinus = mv.cameraVertex(t - 2)
	}

	// Recompute the reverse densities that the connection changes.
	if pt != nil {
		if s > 0 {
			mv.ptPdfRev = vertexPdf(scene, qs, qsMinus, pt)
		} else {
			mv.ptPdfRev = lightOriginPdf(scene, pt, ptMinus)
		}
	}
	if ptMinus != nil {
		if s > 0 {
			mv.ptMinusPdfRev = vertexPdf(scene, pt, qs, ptMinus)
		} else {
			mv.ptMinusPdfRev = lightPdf(scene, pt, ptMinus)
		}
	}
	if qs != nil && pt != nil {
		mv.qsPdfRev = vertexPdf(scene, pt, ptMinus, qs)
	}
	if qsMinus != nil {
		mv.qsMinusPdfRev = vertexPdf(scene, qs, pt, qsMinus)
	}

	sumRi := 0.0

	// Hypothetical strategies that shorten the camera subpath
	ri := 1.0
	for i := t - 1; i > 0; i-- {
		ri *= remap0(mv.cameraPdfRev(i)) / remap0(mv.cameraVertex(i).AreaPdfForward)
		if !mv.cameraDelta(i) && !mv.cameraDelta(i-1) {
			sumRi += ri
		}
	}

	// Hypothetical strategies that shorten the light subpath
	ri = 1.0
	for i := s - 1; i >= 0; i-- {
		ri *= remap0(mv.lightPdfRev(i)) / remap0(mv.lightVertex(i).AreaPdfForward)

		var deltaLightVertex bool
		if i > 0 {
			deltaLightVertex = mv.lightDelta(i - 1)
		} else {
			deltaLightVertex = mv.lightVertex(0).IsDeltaLight()
		}
		if !mv.lightDelta(i) && !deltaLightVertex {
			sumRi += ri
		}
	}

	return 1.0 / (1.0 + sumRi)
}

// vertexPdf returns the area density at next of scattering from curr,
// having arrived at curr from prev. prev is nil only for endpoints.
func vertexPdf(scene core.Scene, curr, prev, next *Vertex) float64 {
	if curr.IsLight {
		return lightPdf(scene, curr, next)
	}

	wn := next.Point.Subtract(curr.Point)
	if wn.LengthSquared() == 0 {
		return 0
	}
	wn = wn.Normalize()

	var wp core.Vec3
	if prev != nil {
		wp = prev.Point.Subtract(curr.Point)
		if wp.LengthSquared() == 0 {
			return 0
		}
		wp = wp.Normalize()
	} else if !curr.IsCamera {
		return 0
	}

	var pdf float64
	if curr.IsCamera {
		if curr.Camera == nil {
			return 0
		}
		ray := core.NewRay(curr.Point, wn)
		_, pdf = curr.Camera.PdfWe(ray)
		if pdf == 0 {
			return 0
		}
	} else {
		pdf = curr.scatterPDF(wp, wn)
		if pdf == 0 {
			return 0
		}
	}

	return curr.ConvertDensity(next, pdf)
}

// lightPdf returns the area density at to of the light at curr emitting
// toward it, the density a light subpath extension would have used
func lightPdf(scene core.Scene, curr, to *Vertex) float64 {
	w := to.Point.Subtract(curr.Point)
	dist2 := w.LengthSquared()
	if dist2 == 0 {
		return 0
	}
	invDist2 := 1.0 / dist2
	w = w.Multiply(math.Sqrt(invDist2))

	var pdf float64
	if curr.IsInfiniteLight {
		// Emission origins for environment light are distributed over a
		// disk of the scene's bounding sphere radius.
		_, worldRadius := scene.WorldBounds()
		pdf = 1.0 / (math.Pi * worldRadius * worldRadius)
	} else {
		light := sceneLightAt(scene, curr)
		if light == nil {
			return 0
		}
		_, pdfDir := light.EmissionPDF(curr.Point, w)
		pdf = pdfDir * invDist2
	}

	if to.IsOnSurface() {
		pdf *= math.Abs(to.Normal.Dot(w))
	}
	return pdf
}

// lightOriginPdf returns the area density of sampling the light vertex
// as a light subpath origin, including the light selection probability
func lightOriginPdf(scene core.Scene, lightVertex, to *Vertex) float64 {
	w := to.Point.Subtract(lightVertex.Point)
	if w.LengthSquared() == 0 {
		return 0
	}
	w = w.Normalize()

	if lightVertex.IsInfiniteLight {
		return core.UniformSpherePDF()
	}

	light := sceneLightAt(scene, lightVertex)
	if light == nil {
		return 0
	}

	selectionPdf := scene.LightSampler().SelectionPDF(light)
	pdfPos, _ := light.EmissionPDF(lightVertex.Point, w)
	return pdfPos * selectionPdf
}

// sceneLightAt resolves which scene light a vertex sits on. Vertices
// created by explicit light sampling carry the reference; vertices hit
// by a random walk are matched by position.
func sceneLightAt(scene core.Scene, v *Vertex) core.Light {
	if v.Light != nil {
		return v.Light
	}
	for _, light := range scene.Lights() {
		if pdfPos, _ := light.EmissionPDF(v.Point, v.Normal); pdfPos > 0 {
			return light
		}
	}
	return nil
}
