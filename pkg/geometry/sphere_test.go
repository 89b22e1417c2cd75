package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
	"github.com/df07/go-bidirectional-tracer/pkg/material"
)

func TestSphere_Hit(t *testing.T) {
	mat := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	sphere := NewSphere(core.NewVec3(0, 0, -5), 1, mat)

	tests := []struct {
		name    string
		ray     core.Ray
		wantHit bool
		wantT   float64
	}{
		{
			name:    "head on",
			ray:     core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)),
			wantHit: true,
			wantT:   4,
		},
		{
			name:    "miss",
			ray:     core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)),
			wantHit: false,
		},
		{
			name:    "from inside",
			ray:     core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, -1)),
			wantHit: true,
			wantT:   1,
		},
		{
			name:    "behind origin",
			ray:     core.NewRay(core.NewVec3(0, 0, -10), core.NewVec3(0, 0, -1)),
			wantHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := sphere.Hit(tt.ray, 0.001, math.Inf(1))
			if isHit != tt.wantHit {
				t.Fatalf("Hit = %v, want %v", isHit, tt.wantHit)
			}
			if !isHit {
				return
			}
			if math.Abs(hit.T-tt.wantT) > 1e-9 {
				t.Errorf("t = %v, want %v", hit.T, tt.wantT)
			}
			if math.Abs(hit.Normal.Length()-1.0) > 1e-9 {
				t.Errorf("normal %v is not normalized", hit.Normal)
			}
			// Normal must oppose the ray
			if hit.Normal.Dot(tt.ray.Direction) >= 0 {
				t.Errorf("normal %v does not face the ray", hit.Normal)
			}
		})
	}
}

func TestSphere_HitFrontFace(t *testing.T) {
	mat := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	sphere := NewSphere(core.NewVec3(0, 0, -5), 1, mat)

	outside, _ := sphere.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), 0.001, math.Inf(1))
	if !outside.FrontFace {
		t.Error("hit from outside should be a front face hit")
	}

	inside, _ := sphere.Hit(core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, -1)), 0.001, math.Inf(1))
	if inside.FrontFace {
		t.Error("hit from inside should be a back face hit")
	}
}

func TestQuad_Hit(t *testing.T) {
	mat := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	// Unit quad in the XY plane at z=-2
	quad := NewQuad(core.NewVec3(0, 0, -2), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), mat)

	tests := []struct {
		name    string
		ray     core.Ray
		wantHit bool
	}{
		{"center", core.NewRay(core.NewVec3(0.5, 0.5, 0), core.NewVec3(0, 0, -1)), true},
		{"corner", core.NewRay(core.NewVec3(0.01, 0.01, 0), core.NewVec3(0, 0, -1)), true},
		{"outside quad plane region", core.NewRay(core.NewVec3(1.5, 0.5, 0), core.NewVec3(0, 0, -1)), false},
		{"parallel", core.NewRay(core.NewVec3(0.5, 0.5, 0), core.NewVec3(1, 0, 0)), false},
		{"away from plane", core.NewRay(core.NewVec3(0.5, 0.5, 0), core.NewVec3(0, 0, 1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := quad.Hit(tt.ray, 0.001, math.Inf(1))
			if isHit != tt.wantHit {
				t.Fatalf("Hit = %v, want %v", isHit, tt.wantHit)
			}
			if isHit && math.Abs(hit.T-2) > 1e-9 {
				t.Errorf("t = %v, want 2", hit.T)
			}
		})
	}
}

func TestQuad_Area(t *testing.T) {
	mat := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 3, 0), mat)

	if got, want := quad.Area(), 6.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("Area = %v, want %v", got, want)
	}
}
