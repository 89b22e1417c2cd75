package scene

import (
	"github.com/df07/go-bidirectional-tracer/pkg/core"
	"github.com/df07/go-bidirectional-tracer/pkg/geometry"
	"github.com/df07/go-bidirectional-tracer/pkg/lights"
	"github.com/df07/go-bidirectional-tracer/pkg/material"
	"github.com/df07/go-bidirectional-tracer/pkg/renderer"
)

// NewCornellScene creates a classic Cornell box with quad walls, a
// ceiling area light, a mirror sphere and a diffuse sphere
func NewCornellScene(width, height int) *Scene {
	camera := renderer.NewCamera(renderer.CameraConfig{
		Center: core.NewVec3(278, 278, -800),
		LookAt: core.NewVec3(278, 278, 0),
		Up:     core.NewVec3(0, 1, 0),
		VFov:   40.0,
		Width:  width,
		Height: height,
	})

	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))

	// Cornell box dimensions (standard 555x555x555 units)
	boxSize := 555.0

	floor := geometry.NewQuad(
		core.NewVec3(0, 0, 0),
		core.NewVec3(boxSize, 0, 0),
		core.NewVec3(0, 0, boxSize),
		white,
	)
	ceiling := geometry.NewQuad(
		core.NewVec3(0, boxSize, 0),
		core.NewVec3(boxSize, 0, 0),
		core.NewVec3(0, 0, boxSize),
		white,
	)
	backWall := geometry.NewQuad(
		core.NewVec3(0, 0, boxSize),
		core.NewVec3(boxSize, 0, 0),
		core.NewVec3(0, boxSize, 0),
		white,
	)
	leftWall := geometry.NewQuad(
		core.NewVec3(0, 0, 0),
		core.NewVec3(0, 0, boxSize),
		core.NewVec3(0, boxSize, 0),
		red,
	)
	rightWall := geometry.NewQuad(
		core.NewVec3(boxSize, 0, 0),
		core.NewVec3(0, boxSize, 0),
		core.NewVec3(0, 0, boxSize),
		green,
	)

	// Ceiling light, a smaller quad just below the ceiling facing down
	lightSize := 130.0
	lightOffset := (boxSize - lightSize) / 2.0
	emission := core.NewVec3(15.0, 15.0, 15.0)
	ceilingLight := lights.NewQuadLight(
		core.NewVec3(lightOffset, boxSize-1, lightOffset),
		core.NewVec3(lightSize, 0, 0),
		core.NewVec3(0, 0, lightSize),
		material.NewEmissive(emission),
		emission,
	)

	mirrorSphere := geometry.NewSphere(
		core.NewVec3(185, 82.5, 169),
		82.5,
		material.NewMirror(core.NewVec3(0.8, 0.8, 0.9)),
	)
	diffuseSphere := geometry.NewSphere(
		core.NewVec3(370, 90, 351),
		90,
		material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73)),
	)

	shapes := []geometry.Shape{
		floor, ceiling, backWall, leftWall, rightWall,
		ceilingLight.Quad,
		mirrorSphere, diffuseSphere,
	}

	return NewScene(camera, shapes, []core.Light{ceilingLight})
}
