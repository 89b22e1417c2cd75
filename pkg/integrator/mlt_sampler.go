package integrator

import (
	"math"
	"math/rand"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

// Stream indices for the three independent sample streams a Metropolis
// proposal consumes. Interleaving them keeps a coordinate's meaning
// stable when subpath lengths change between iterations.
const (
	cameraStream     = 0
	lightStream      = 1
	connectionStream = 2
	sampleStreams    = 3
)

// primarySample is one lazily mutated coordinate of the primary sample
// space vector. The iteration stamp records when the value was last
// brought up to date, so a coordinate untouched for many iterations can
// be advanced in one step instead of replaying every small mutation.
type primarySample struct {
	value                     float64
	lastModificationIteration int64
	valueBackup               float64
	modifyBackup              int64
}

func (ps *primarySample) backup() {
	ps.valueBackup = ps.value
	ps.modifyBackup = ps.lastModificationIteration
}

func (ps *primarySample) restore() {
	ps.value = ps.valueBackup
	ps.lastModificationIteration = ps.modifyBackup
}

// MLTSampler drives path construction from a lazily grown vector of
// primary sample space coordinates that it perturbs between iterations.
// Large steps replace coordinates with fresh uniforms; small steps
// apply a Gaussian perturbation wrapped around [0,1).
type MLTSampler struct {
	rng                  *rand.Rand
	sigma                float64
	largeStepProbability float64
	streamCount          int

	x []primarySample

	currentIteration       int64
	largeStep              bool
	lastLargeStepIteration int64

	streamIndex int
	sampleIndex int
}

// NewMLTSampler creates a sampler seeded so that replaying from the
// same seed reproduces the exact coordinate sequence. The first
// iteration acts as a large step, so every coordinate starts uniform.
func NewMLTSampler(seed int64, sigma, largeStepProbability float64, streamCount int) *MLTSampler {
	return &MLTSampler{
		rng:                  rand.New(rand.NewSource(seed)),
		sigma:                sigma,
		largeStepProbability: largeStepProbability,
		streamCount:          streamCount,
		largeStep:            true,
	}
}

// StartIteration begins a new proposal, choosing between a large and a
// small step
func (s *MLTSampler) StartIteration() {
	s.currentIteration++
	s.largeStep = s.rng.Float64() < s.largeStepProbability
}

// Accept commits the current proposal
func (s *MLTSampler) Accept() {
	if s.largeStep {
		s.lastLargeStepIteration = s.currentIteration
	}
}

// Reject rolls back every coordinate touched by the current proposal
// and rewinds the iteration counter
func (s *MLTSampler) Reject() {
	for i := range s.x {
		if s.x[i].lastModificationIteration == s.currentIteration {
			s.x[i].restore()
		}
	}
	s.currentIteration--
}

// StartStream switches to one of the interleaved sample streams
func (s *MLTSampler) StartStream(index int) {
	if index < 0 || index >= s.streamCount {
		panic("mlt: stream index out of range")
	}
	s.streamIndex = index
	s.sampleIndex = 0
}

// Get1D returns the current value of the next coordinate in the active
// stream, mutating it first if this iteration has not touched it yet
func (s *MLTSampler) Get1D() float64 {
	index := s.nextIndex()
	s.ensureReady(index)
	return s.x[index].value
}

// Get2D returns two consecutive coordinates
func (s *MLTSampler) Get2D() core.Vec2 {
	return core.NewVec2(s.Get1D(), s.Get1D())
}

func (s *MLTSampler) nextIndex() int {
	index := s.streamIndex + s.streamCount*s.sampleIndex
	s.sampleIndex++
	return index
}

func (s *MLTSampler) ensureReady(index int) {
	for index >= len(s.x) {
		s.x = append(s.x, primarySample{})
	}
	xi := &s.x[index]

	// A coordinate that predates the last accepted large step would
	// have been replaced by a fresh uniform then; give it that value
	// before perturbing from it.
	if xi.lastModificationIteration < s.lastLargeStepIteration {
		xi.value = s.rng.Float64()
		xi.lastModificationIteration = s.lastLargeStepIteration
	}

	xi.backup()
	if s.largeStep {
		xi.value = s.rng.Float64()
	} else {
		nSmall := s.currentIteration - xi.lastModificationIteration

		// Accumulated N(0, sigma²) steps collapse into a single
		// N(0, nSmall·sigma²) step.
		normalSample := math.Sqrt2 * math.Erfinv(2*s.rng.Float64()-1)
		effSigma := s.sigma * math.Sqrt(float64(nSmall))
		xi.value += normalSample * effSigma
		xi.value -= math.Floor(xi.value)
	}
	xi.lastModificationIteration = s.currentIteration
}
