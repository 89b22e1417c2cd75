package integrator_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
	"github.com/df07/go-bidirectional-tracer/pkg/geometry"
	"github.com/df07/go-bidirectional-tracer/pkg/integrator"
	"github.com/df07/go-bidirectional-tracer/pkg/lights"
	"github.com/df07/go-bidirectional-tracer/pkg/material"
	"github.com/df07/go-bidirectional-tracer/pkg/renderer"
	"github.com/df07/go-bidirectional-tracer/pkg/scene"
)

// pathDensities snapshots the numeric per-vertex state that weight
// computation depends on
type pathDensities struct {
	Forward []float64
	Reverse []float64
	Delta   []bool
}

func snapshotDensities(p integrator.Path) pathDensities {
	d := pathDensities{}
	for i := 0; i < p.Length; i++ {
		v := p.Vertices[i]
		d.Forward = append(d.Forward, v.AreaPdfForward)
		d.Reverse = append(d.Reverse, v.AreaPdfReverse)
		d.Delta = append(d.Delta, v.IsSpecular)
	}
	return d
}

func TestMISWeight_DirectHitIsUnity(t *testing.T) {
	sc := scene.NewCornellScene(64, 64)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(1)))

	// Find a camera subpath of at least two vertices
	var cameraPath integrator.Path
	for i := 0; i < 100; i++ {
		cameraPath = integrator.GenerateCameraSubpath(sc, core.NewVec2(32, 32), sampler, 4)
		if cameraPath.Length >= 2 {
			break
		}
	}
	if cameraPath.Length < 2 {
		t.Fatal("could not generate a camera subpath with two vertices")
	}
	lightPath := integrator.GenerateLightSubpath(sc, sampler, 0)

	if w := integrator.MISWeight(sc, &cameraPath, &lightPath, nil, 0, 2); w != 1.0 {
		t.Errorf("MISWeight(s=0, t=2) = %v, want 1.0", w)
	}
}

func TestMISWeight_InUnitInterval(t *testing.T) {
	sc := scene.NewCornellScene(64, 64)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(7)))

	for trial := 0; trial < 50; trial++ {
		cameraPath := integrator.GenerateCameraSubpath(sc, core.NewVec2(32, 32), sampler, 6)
		lightPath := integrator.GenerateLightSubpath(sc, sampler, 5)

		for s := 0; s <= lightPath.Length; s++ {
			for t2 := 2; t2 <= cameraPath.Length; t2++ {
				w := integrator.MISWeight(sc, &cameraPath, &lightPath, nil, s, t2)
				if w < 0 || w > 1 {
					t.Fatalf("MISWeight(s=%d, t=%d) = %v, want value in [0,1]", s, t2, w)
				}
			}
		}
	}
}

// TestMISWeight_StrategiesForOnePathSumToOne builds one concrete
// camera-floor-light path and every (s,t) decomposition of it by hand,
// with consistent generation densities on both sides. The balance
// heuristic weights of the decompositions must then sum to one.
func TestMISWeight_StrategiesForOnePathSumToOne(t *testing.T) {
	cam := renderer.NewCamera(renderer.CameraConfig{
		Center: core.NewVec3(0, 2, 0),
		LookAt: core.NewVec3(0, 0, 0),
		Up:     core.NewVec3(0, 0, -1),
		VFov:   60,
		Width:  100,
		Height: 100,
	})
	floorMat := material.NewLambertian(core.NewVec3(0.7, 0.7, 0.7))
	floorNormal := core.NewVec3(0, 1, 0)
	floor := geometry.NewQuad(core.NewVec3(-5, 0, -5), core.NewVec3(0, 0, 10), core.NewVec3(10, 0, 0), floorMat)

	emission := core.NewVec3(12, 12, 12)
	emissiveMat := material.NewEmissive(emission)
	light := lights.NewQuadLight(core.NewVec3(0, 4, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1),
		emissiveMat, emission)
	lightNormal := core.NewVec3(0, -1, 0)

	sc := scene.NewScene(cam, []geometry.Shape{floor, light.Quad}, []core.Light{light})

	p0 := core.NewVec3(0, 2, 0)     // camera
	p1 := core.NewVec3(0, 0, 0)     // diffuse floor
	p2 := core.NewVec3(0.3, 4, 0.6) // area light

	camVertex := integrator.Vertex{
		Point:          p0,
		Normal:         cam.Forward(),
		Camera:         cam,
		IsCamera:       true,
		AreaPdfForward: 1,
		Beta:           core.NewVec3(1, 1, 1),
	}

	// Camera side densities along p0 -> p1 -> p2
	dir01 := p1.Subtract(p0).Normalize()
	_, pdfDirCam := cam.PdfWe(core.NewRay(p0, dir01))
	if pdfDirCam <= 0 {
		t.Fatal("fixture path leaves the camera frustum")
	}
	surfVertex := integrator.Vertex{
		Point:             p1,
		Normal:            floorNormal,
		Material:          floorMat,
		IncomingDirection: dir01.Multiply(-1),
	}
	surfVertex.AreaPdfForward = camVertex.ConvertDensity(&surfVertex, pdfDirCam)

	dir12 := p2.Subtract(p1).Normalize()
	hit := core.SurfaceInteraction{Point: p1, Normal: floorNormal, ShadingNormal: floorNormal, Material: floorMat}
	pdfScatter, _ := floorMat.PDF(dir01.Multiply(-1), dir12, &hit)
	if pdfScatter <= 0 {
		t.Fatal("fixture scattering direction has zero density")
	}
	lightHitVertex := integrator.Vertex{
		Point:             p2,
		Normal:            lightNormal,
		Material:          emissiveMat,
		IncomingDirection: dir12.Multiply(-1),
		IsLight:           true,
		EmittedLight:      emission,
	}
	lightHitVertex.AreaPdfForward = surfVertex.ConvertDensity(&lightHitVertex, pdfScatter)

	// Light side densities for the same path traversed p2 -> p1
	selectionPdf := sc.LightSampler().SelectionPDF(light)
	pdfPos, pdfDirLight := light.EmissionPDF(p2, dir12.Multiply(-1))
	if selectionPdf <= 0 || pdfPos <= 0 || pdfDirLight <= 0 {
		t.Fatal("fixture emission densities are zero")
	}
	lightOrigin := integrator.Vertex{
		Point:          p2,
		Normal:         lightNormal,
		Light:          light,
		IsLight:        true,
		AreaPdfForward: pdfPos * selectionPdf,
		Beta:           emission,
		EmittedLight:   emission,
	}
	lightSurf := integrator.Vertex{
		Point:             p1,
		Normal:            floorNormal,
		Material:          floorMat,
		IncomingDirection: dir12,
	}
	lightSurf.AreaPdfForward = lightOrigin.ConvertDensity(&lightSurf, pdfDirLight)

	fullCamera := integrator.Path{Vertices: []integrator.Vertex{camVertex, surfVertex, lightHitVertex}, Length: 3}
	emptyLight := integrator.Path{}
	camTwo := integrator.Path{Vertices: []integrator.Vertex{camVertex, surfVertex}, Length: 2}
	lightOne := integrator.Path{Vertices: []integrator.Vertex{lightOrigin}, Length: 1}
	camOne := integrator.Path{Vertices: []integrator.Vertex{camVertex}, Length: 1}
	lightTwo := integrator.Path{Vertices: []integrator.Vertex{lightOrigin, lightSurf}, Length: 2}

	weights := map[string]float64{
		"s=0 t=3": integrator.MISWeight(sc, &fullCamera, &emptyLight, nil, 0, 3),
		"s=1 t=2": integrator.MISWeight(sc, &camTwo, &lightOne, nil, 1, 2),
		"s=2 t=1": integrator.MISWeight(sc, &camOne, &lightTwo, nil, 2, 1),
	}

	sum := 0.0
	for name, w := range weights {
		if w <= 0 || w >= 1 {
			t.Errorf("weight %s = %v, want value in (0,1)", name, w)
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("strategy weights sum to %v, want 1 (weights %v)", sum, weights)
	}
}

func TestMISWeight_DoesNotMutateSubpaths(t *testing.T) {
	sc := scene.NewCornellScene(64, 64)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(3)))

	cameraPath := integrator.GenerateCameraSubpath(sc, core.NewVec2(20, 40), sampler, 6)
	lightPath := integrator.GenerateLightSubpath(sc, sampler, 5)

	cameraBefore := snapshotDensities(cameraPath)
	lightBefore := snapshotDensities(lightPath)

	for s := 0; s <= lightPath.Length; s++ {
		for t2 := 1; t2 <= cameraPath.Length; t2++ {
			if s+t2 < 2 {
				continue
			}
			integrator.MISWeight(sc, &cameraPath, &lightPath, nil, s, t2)
		}
	}

	if diff := cmp.Diff(cameraBefore, snapshotDensities(cameraPath)); diff != "" {
		t.Errorf("camera subpath densities changed (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(lightBefore, snapshotDensities(lightPath)); diff != "" {
		t.Errorf("light subpath densities changed (-before +after):\n%s", diff)
	}
}

func TestConnectStrategy_DoesNotMutateSubpaths(t *testing.T) {
	sc := scene.NewCornellScene(64, 64)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(9)))

	cameraPath := integrator.GenerateCameraSubpath(sc, core.NewVec2(32, 32), sampler, 6)
	lightPath := integrator.GenerateLightSubpath(sc, sampler, 5)

	cameraBefore := snapshotDensities(cameraPath)
	lightBefore := snapshotDensities(lightPath)

	for s := 0; s <= lightPath.Length; s++ {
		for t2 := 1; t2 <= cameraPath.Length; t2++ {
			if s == 1 && t2 == 1 {
				continue
			}
			integrator.ConnectStrategy(sc, &cameraPath, &lightPath, s, t2, sampler, nil)
		}
	}

	if diff := cmp.Diff(cameraBefore, snapshotDensities(cameraPath)); diff != "" {
		t.Errorf("camera subpath densities changed (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(lightBefore, snapshotDensities(lightPath)); diff != "" {
		t.Errorf("light subpath densities changed (-before +after):\n%s", diff)
	}
}
