package integrator

import (
	"sync"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

// BDPTIntegrator renders by connecting independently generated camera
// and light subpaths at every interior pair, combining the strategies
// with multiple importance sampling
type BDPTIntegrator struct {
	maxDepth int
	metrics  *core.Metrics
	paths    sync.Pool
}

// NewBDPTIntegrator creates a bidirectional integrator with the given
// maximum path depth (number of segments in a complete path)
func NewBDPTIntegrator(maxDepth int, metrics *core.Metrics) *BDPTIntegrator {
	bdpt := &BDPTIntegrator{maxDepth: maxDepth, metrics: metrics}
	bdpt.paths.New = func() any {
		path := NewPath(maxDepth + 2)
		return &path
	}
	return bdpt
}

// RenderPixelSample computes one sample of the radiance arriving at the
// given raster position, plus any splat contributions produced by
// strategies that land elsewhere on the film
func (bdpt *BDPTIntegrator) RenderPixelSample(scene core.Scene, raster core.Vec2, sampler core.Sampler) (core.Vec3, []core.Splat) {
	cameraPath := bdpt.paths.Get().(*Path)
	lightPath := bdpt.paths.Get().(*Path)
	defer bdpt.paths.Put(cameraPath)
	defer bdpt.paths.Put(lightPath)

	FillCameraSubpath(cameraPath, scene, raster, sampler, bdpt.maxDepth+2)
	FillLightSubpath(lightPath, scene, sampler, bdpt.maxDepth+1)

	var pixelRadiance core.Vec3
	var splats []core.Splat

	for t := 1; t <= cameraPath.Length; t++ {
		for s := 0; s <= lightPath.Length; s++ {
			depth := s + t - 2
			if (s == 1 && t == 1) || depth < 0 || depth > bdpt.maxDepth {
				continue
			}

			contribution, splatRaster, isSplat := ConnectStrategy(scene, cameraPath, lightPath, s, t, sampler, bdpt.metrics)
			if contribution.IsZero() {
				continue
			}

			if isSplat {
				splats = append(splats, core.Splat{Raster: splatRaster, Color: contribution})
				if bdpt.metrics != nil {
					bdpt.metrics.Splats.Inc()
				}
			} else {
				pixelRadiance = pixelRadiance.Add(contribution)
			}
		}
	}

	return pixelRadiance, splats
}
