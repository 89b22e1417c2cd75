package scene

import (
	"github.com/df07/go-bidirectional-tracer/pkg/core"
	"github.com/df07/go-bidirectional-tracer/pkg/geometry"
	"github.com/df07/go-bidirectional-tracer/pkg/lights"
)

// Scene holds the geometry, lights, camera and optional medium that the
// integrators sample from. Construction builds the BVH and the
// power-weighted light sampler once; rendering only reads.
type Scene struct {
	bvh          *geometry.BVH
	lights       []core.Light
	lightSampler core.LightSampler
	camera       core.Camera
	medium       core.Medium

	topColor    core.Vec3
	bottomColor core.Vec3

	worldCenter core.Vec3
	worldRadius float64
}

// Option configures optional scene features
type Option func(*Scene)

// WithBackground sets a vertical gradient background
func WithBackground(top, bottom core.Vec3) Option {
	return func(s *Scene) {
		s.topColor = top
		s.bottomColor = bottom
	}
}

// WithMedium fills the scene with a participating medium
func WithMedium(medium core.Medium) Option {
	return func(s *Scene) {
		s.medium = medium
	}
}

// NewScene builds a scene from shapes and lights
func NewScene(camera core.Camera, shapes []geometry.Shape, sceneLights []core.Light, opts ...Option) *Scene {
	s := &Scene{
		bvh:          geometry.NewBVH(shapes),
		lights:       sceneLights,
		lightSampler: lights.NewPowerSampler(sceneLights),
		camera:       camera,
	}
	s.worldCenter, s.worldRadius = s.bvh.WorldBounds().BoundingSphere()

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Intersect finds the nearest surface hit in (tMin, tMax)
func (s *Scene) Intersect(ray core.Ray, tMin, tMax float64) (*core.SurfaceInteraction, bool) {
	return s.bvh.Hit(ray, tMin, tMax)
}

// Occluded reports whether any surface blocks ray within (tMin, tMax)
func (s *Scene) Occluded(ray core.Ray, tMin, tMax float64) bool {
	return s.bvh.Occluded(ray, tMin, tMax)
}

// Lights returns the scene's light sources
func (s *Scene) Lights() []core.Light {
	return s.lights
}

// LightSampler returns the power-weighted light sampler
func (s *Scene) LightSampler() core.LightSampler {
	return s.lightSampler
}

// Camera returns the scene camera
func (s *Scene) Camera() core.Camera {
	return s.camera
}

// Medium returns the global participating medium, or nil
func (s *Scene) Medium() core.Medium {
	return s.medium
}

// Background evaluates the environment emission for an escaped ray
func (s *Scene) Background(ray core.Ray) core.Vec3 {
	if s.topColor.IsZero() && s.bottomColor.IsZero() {
		return core.Vec3{}
	}
	t := 0.5 * (ray.Direction.Normalize().Y + 1.0)
	return s.bottomColor.Multiply(1 - t).Add(s.topColor.Multiply(t))
}

// WorldBounds returns the scene bounding sphere
func (s *Scene) WorldBounds() (core.Vec3, float64) {
	return s.worldCenter, s.worldRadius
}
