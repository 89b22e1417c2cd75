package core

// Splat is a radiance contribution landing at an arbitrary raster
// position, produced by strategies that connect to the camera lens
// rather than tracing through a fixed pixel
type Splat struct {
	Raster Vec2
	Color  Vec3
}
