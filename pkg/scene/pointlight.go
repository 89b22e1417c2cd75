package scene

import (
	"github.com/df07/go-bidirectional-tracer/pkg/core"
	"github.com/df07/go-bidirectional-tracer/pkg/geometry"
	"github.com/df07/go-bidirectional-tracer/pkg/lights"
	"github.com/df07/go-bidirectional-tracer/pkg/material"
	"github.com/df07/go-bidirectional-tracer/pkg/renderer"
)

// NewPointLightScene creates a minimal scene with a single point light
// above a diffuse floor plane. Direct lighting here has a closed form,
// which makes the scene useful as a correctness reference.
func NewPointLightScene(width, height int) *Scene {
	camera := renderer.NewCamera(renderer.CameraConfig{
		Center: core.NewVec3(0, 2, 5),
		LookAt: core.NewVec3(0, 0.5, 0),
		Up:     core.NewVec3(0, 1, 0),
		VFov:   45.0,
		Width:  width,
		Height: height,
	})

	gray := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	floor := geometry.NewQuad(
		core.NewVec3(-10, 0, -10),
		core.NewVec3(20, 0, 0),
		core.NewVec3(0, 0, 20),
		gray,
	)
	sphere := geometry.NewSphere(
		core.NewVec3(0, 0.7, 0),
		0.7,
		material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3)),
	)

	light := lights.NewPointLight(
		core.NewVec3(0, 4, 1),
		core.NewVec3(20, 20, 20),
	)

	shapes := []geometry.Shape{floor, sphere}
	return NewScene(camera, shapes, []core.Light{light})
}
