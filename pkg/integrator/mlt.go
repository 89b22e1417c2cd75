package integrator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

// SplatFilm receives radiance splats at arbitrary raster positions.
// Implementations must be safe for concurrent use.
type SplatFilm interface {
	AddSplat(raster core.Vec2, color core.Vec3)
	Width() int
	Height() int
}

// MLTConfig holds the Metropolis light transport parameters
type MLTConfig struct {
	MaxDepth             int     // Maximum path depth (segments per path)
	MutationsPerPixel    int     // Average mutations budgeted per pixel
	BootstrapPaths       int     // Bootstrap paths per depth level
	Chains               int     // Number of independent Markov chains
	Sigma                float64 // Small step perturbation size
	LargeStepProbability float64 // Probability of a large step per mutation
	Workers              int     // Concurrent workers for both phases
}

// MLTIntegrator renders with Metropolis sampling in primary sample
// space: bootstrap paths estimate the total image brightness and seed
// Markov chains, which then mutate paths and splat every state visited.
type MLTIntegrator struct {
	config  MLTConfig
	metrics *core.Metrics
}

// Number of mutations between shared progress counter updates
const progressInterval = 256

// Validate rejects configurations that cannot produce a valid render.
// Zero values are legal; they are replaced by defaults at construction.
func (c MLTConfig) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("mlt: max depth %d is negative", c.MaxDepth)
	}
	if c.MutationsPerPixel < 0 || c.BootstrapPaths < 0 || c.Chains < 0 || c.Workers < 0 {
		return fmt.Errorf("mlt: negative sample budget")
	}
	if c.Sigma < 0 {
		return fmt.Errorf("mlt: sigma %g is negative", c.Sigma)
	}
	if c.LargeStepProbability < 0 || c.LargeStepProbability > 1 {
		return fmt.Errorf("mlt: large step probability %g outside [0,1]", c.LargeStepProbability)
	}
	return nil
}

// NewMLTIntegrator creates a Metropolis integrator, filling in defaults
// for unset config fields
func NewMLTIntegrator(config MLTConfig, metrics *core.Metrics) *MLTIntegrator {
	if config.MaxDepth == 0 {
		config.MaxDepth = 5
	}
	if config.MutationsPerPixel == 0 {
		config.MutationsPerPixel = 100
	}
	if config.BootstrapPaths == 0 {
		config.BootstrapPaths = 100000
	}
	if config.Chains == 0 {
		config.Chains = 1000
	}
	if config.Sigma == 0 {
		config.Sigma = 0.01
	}
	if config.LargeStepProbability == 0 {
		config.LargeStepProbability = 0.3
	}
	if config.Workers == 0 {
		config.Workers = 4
	}
	return &MLTIntegrator{config: config, metrics: metrics}
}

// EvaluatePath runs a single bidirectional strategy driven by the
// sampler's three streams. The strategy split (s,t) for the given depth
// is chosen from the first camera stream coordinate, so it mutates
// along with the rest of the path.
func (m *MLTIntegrator) EvaluatePath(scene core.Scene, sampler *MLTSampler, depth, width, height int) (core.Vec3, core.Vec2) {
	sampler.StartStream(cameraStream)

	var s, t, nStrategies int
	if depth == 0 {
		nStrategies, s, t = 1, 0, 2
	} else {
		nStrategies = depth + 2
		s = min(int(sampler.Get1D()*float64(nStrategies)), nStrategies-1)
		t = nStrategies - s
	}

	u := sampler.Get2D()
	raster := core.NewVec2(u.X*float64(width), u.Y*float64(height))

	cameraPath := GenerateCameraSubpath(scene, raster, sampler, t)
	if cameraPath.Length != t {
		return core.Vec3{}, raster
	}

	sampler.StartStream(lightStream)
	lightPath := GenerateLightSubpath(scene, sampler, s)
	if lightPath.Length != s {
		return core.Vec3{}, raster
	}

	sampler.StartStream(connectionStream)
	contribution, splatRaster, isSplat := ConnectStrategy(scene, &cameraPath, &lightPath, s, t, sampler, m.metrics)
	if isSplat {
		raster = splatRaster
	}

	// One strategy stands in for all nStrategies splits of this depth
	return contribution.Multiply(float64(nStrategies)), raster
}

// Render runs the full Metropolis estimator, splatting into film. The
// returned brightness b is the image scale numerator: the final image
// is the splat accumulation times b / MutationsPerPixel.
//
// The context is honored between phases and between chains; a running
// chain is never interrupted, since a partial chain biases the
// estimate.
func (m *MLTIntegrator) Render(ctx context.Context, scene core.Scene, film SplatFilm) (float64, error) {
	if err := m.config.Validate(); err != nil {
		return 0, err
	}

	width, height := film.Width(), film.Height()
	depthLevels := m.config.MaxDepth + 1

	// Phase 1: bootstrap paths, one luminance weight per (path, depth)
	nBootstrapSamples := m.config.BootstrapPaths * depthLevels
	bootstrapWeights := make([]float64, nBootstrapSamples)

	glog.Infof("mlt: bootstrapping %d paths across %d depth levels", m.config.BootstrapPaths, depthLevels)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(m.config.Workers)
	const bootstrapChunk = 4096
	for start := 0; start < nBootstrapSamples; start += bootstrapChunk {
		start := start
		end := min(start+bootstrapChunk, nBootstrapSamples)
		g.Go(func() error {
			for i := start; i < end; i++ {
				depth := i % depthLevels
				sampler := NewMLTSampler(int64(i), m.config.Sigma, m.config.LargeStepProbability, sampleStreams)
				radiance, _ := m.EvaluatePath(scene, sampler, depth, width, height)
				bootstrapWeights[i] = radiance.Luminance()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	bootstrap := core.NewDistribution1D(bootstrapWeights)
	b := bootstrap.FuncInt() * float64(depthLevels)
	if b <= 0 {
		return 0, fmt.Errorf("mlt: no light carrying path found during bootstrap")
	}
	glog.Infof("mlt: image brightness estimate b=%g", b)

	// Phase 2: Markov chains
	nTotalMutations := int64(m.config.MutationsPerPixel) * int64(width*height)
	nChains := m.config.Chains
	var mutationsDone int64

	glog.Infof("mlt: running %d chains, %d total mutations", nChains, nTotalMutations)

	cg, _ := errgroup.WithContext(ctx)
	cg.SetLimit(m.config.Workers)
	for chainIndex := 0; chainIndex < nChains; chainIndex++ {
		chainIndex := chainIndex
		cg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			nChainMutations := min(int64(chainIndex+1)*nTotalMutations/int64(nChains), nTotalMutations) -
				int64(chainIndex)*nTotalMutations/int64(nChains)

			// Chain-local randomness for seeding and acceptance tests
			rng := rand.New(rand.NewSource(int64(chainIndex)))

			// Reconstruct the bootstrap path this chain starts from by
			// replaying its sampler seed.
			bootstrapIndex, _ := bootstrap.SampleDiscrete(rng.Float64())
			depth := bootstrapIndex % depthLevels
			sampler := NewMLTSampler(int64(bootstrapIndex), m.config.Sigma, m.config.LargeStepProbability, sampleStreams)
			radianceCurrent, rasterCurrent := m.EvaluatePath(scene, sampler, depth, width, height)

			for j := int64(0); j < nChainMutations; j++ {
				sampler.StartIteration()
				radianceProposed, rasterProposed := m.EvaluatePath(scene, sampler, depth, width, height)

				accept := 1.0
				if radianceCurrent.Luminance() > 0 {
					accept = math.Min(1, radianceProposed.Luminance()/radianceCurrent.Luminance())
				} else if radianceProposed.Luminance() <= 0 {
					accept = 0.0
				}

				// Both states contribute, weighted by the acceptance
				// probability and normalized by their luminance.
				if radianceProposed.Luminance() > 0 {
					film.AddSplat(rasterProposed, radianceProposed.Multiply(accept/radianceProposed.Luminance()))
				}
				if radianceCurrent.Luminance() > 0 && accept < 1 {
					film.AddSplat(rasterCurrent, radianceCurrent.Multiply((1-accept)/radianceCurrent.Luminance()))
				}

				if m.metrics != nil {
					m.metrics.TotalMutations.Inc()
				}
				if rng.Float64() < accept {
					radianceCurrent, rasterCurrent = radianceProposed, rasterProposed
					sampler.Accept()
					if m.metrics != nil {
						m.metrics.AcceptedMutations.Inc()
					}
				} else {
					sampler.Reject()
				}

				if (j+1)%progressInterval == 0 {
					done := atomic.AddInt64(&mutationsDone, progressInterval)
					if glog.V(2) {
						glog.Infof("mlt: %d/%d mutations", done, nTotalMutations)
					}
				}
			}
			atomic.AddInt64(&mutationsDone, nChainMutations%progressInterval)
			return nil
		})
	}
	if err := cg.Wait(); err != nil {
		return 0, err
	}

	glog.Infof("mlt: finished %d mutations", atomic.LoadInt64(&mutationsDone))
	return b, nil
}

// SplatScale returns the factor that converts accumulated splats into
// image radiance for the given brightness estimate
func (m *MLTIntegrator) SplatScale(b float64) float64 {
	return b / float64(m.config.MutationsPerPixel)
}
