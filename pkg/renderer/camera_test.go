package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

func testCamera(width, height int) *Camera {
	return NewCamera(CameraConfig{
		Center: core.NewVec3(278, 278, -800),
		LookAt: core.NewVec3(278, 278, 0),
		Up:     core.NewVec3(0, 1, 0),
		VFov:   40.0,
		Width:  width,
		Height: height,
	})
}

func TestCamera_MapRayToPixelInvertsGenerateRay(t *testing.T) {
	camera := testCamera(400, 300)

	tests := []struct {
		name   string
		raster core.Vec2
	}{
		{"center", core.NewVec2(200, 150)},
		{"top left", core.NewVec2(0.5, 0.5)},
		{"bottom right", core.NewVec2(399.5, 299.5)},
		{"off center", core.NewVec2(123.25, 77.75)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := camera.GenerateRay(tt.raster, core.NewVec2(0.5, 0.5))
			got, ok := camera.MapRayToPixel(ray)
			if !ok {
				t.Fatalf("MapRayToPixel returned false for raster %v", tt.raster)
			}
			if math.Abs(got.X-tt.raster.X) > 1e-6 || math.Abs(got.Y-tt.raster.Y) > 1e-6 {
				t.Errorf("MapRayToPixel = %v, want %v", got, tt.raster)
			}
		})
	}
}

func TestCamera_MapRayToPixelRejectsBackwardRay(t *testing.T) {
	camera := testCamera(400, 300)

	backward := core.NewRay(camera.center, camera.Forward().Multiply(-1))
	if _, ok := camera.MapRayToPixel(backward); ok {
		t.Error("MapRayToPixel accepted a ray pointing away from the viewport")
	}
}

func TestCamera_PdfWe(t *testing.T) {
	camera := testCamera(400, 400)

	ray := camera.GenerateRay(core.NewVec2(200, 200), core.NewVec2(0.5, 0.5))
	pdfPos, pdfDir := camera.PdfWe(ray)
	if pdfPos != 1.0 {
		t.Errorf("pdfPos = %v, want 1 for a pinhole", pdfPos)
	}
	if pdfDir <= 0 {
		t.Errorf("pdfDir = %v, want > 0 inside the frustum", pdfDir)
	}

	// The central ray is parallel to the view axis, so the density is
	// exactly 1/viewportArea.
	want := 1.0 / camera.viewportArea
	if math.Abs(pdfDir-want) > 1e-9 {
		t.Errorf("central pdfDir = %v, want %v", pdfDir, want)
	}

	backward := core.NewRay(camera.center, camera.Forward().Multiply(-1))
	if pdfPos, pdfDir := camera.PdfWe(backward); pdfPos != 0 || pdfDir != 0 {
		t.Errorf("PdfWe outside frustum = (%v, %v), want (0, 0)", pdfPos, pdfDir)
	}
}

func TestCamera_SampleWi(t *testing.T) {
	camera := testCamera(400, 400)

	// A point straight ahead of the camera inside the box
	ref := core.NewVec3(278, 278, 0)
	sample, ok := camera.SampleWi(ref, core.NewVec2(0.5, 0.5))
	if !ok {
		t.Fatal("SampleWi returned false for a point in front of the camera")
	}
	if sample.Point != camera.center {
		t.Errorf("lens point = %v, want camera center %v", sample.Point, camera.center)
	}

	// wi must point from ref to the camera
	wantWi := camera.center.Subtract(ref).Normalize()
	if sample.Wi.Subtract(wantWi).Length() > 1e-9 {
		t.Errorf("wi = %v, want %v", sample.Wi, wantWi)
	}

	// Central point: pdf = dist² / cosθ with cosθ = 1
	dist := camera.center.Subtract(ref).Length()
	if math.Abs(sample.Pdf-dist*dist) > 1e-6 {
		t.Errorf("pdf = %v, want %v", sample.Pdf, dist*dist)
	}

	// The raster position must agree with tracing a ray at ref
	ray := core.NewRay(camera.center, ref.Subtract(camera.center).Normalize())
	wantRaster, ok := camera.MapRayToPixel(ray)
	if !ok {
		t.Fatal("MapRayToPixel failed for the reverse ray")
	}
	if math.Abs(sample.Raster.X-wantRaster.X) > 1e-6 || math.Abs(sample.Raster.Y-wantRaster.Y) > 1e-6 {
		t.Errorf("raster = %v, want %v", sample.Raster, wantRaster)
	}

	// A point behind the camera is outside the frustum
	behind := core.NewVec3(278, 278, -1600)
	if _, ok := camera.SampleWi(behind, core.NewVec2(0.5, 0.5)); ok {
		t.Error("SampleWi accepted a point behind the camera")
	}
}
