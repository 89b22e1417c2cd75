package media

import (
	"math"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

// HomogeneousMedium fills the scene with a constant absorption and
// scattering coefficient. Distance sampling uses the average scattering
// coefficient across channels.
type HomogeneousMedium struct {
	SigmaA core.Vec3 // Absorption coefficient
	SigmaS core.Vec3 // Scattering coefficient
	Phase  core.PhaseFunction
}

// NewHomogeneousMedium creates a new homogeneous medium
func NewHomogeneousMedium(sigmaA, sigmaS core.Vec3, g float64) *HomogeneousMedium {
	return &HomogeneousMedium{
		SigmaA: sigmaA,
		SigmaS: sigmaS,
		Phase:  &HenyeyGreenstein{G: g},
	}
}

// Sample implements the Medium interface. It samples an exponential
// free-flight distance along the ray; if it falls before tMax a medium
// interaction is returned together with the transmittance-weighted
// throughput, otherwise the throughput accounts for surviving to tMax.
func (m *HomogeneousMedium) Sample(ray core.Ray, tMax float64, sampler core.Sampler) (core.Vec3, *core.MediumInteraction) {
	sigmaT := m.SigmaA.Add(m.SigmaS)
	sigmaBar := (sigmaT.X + sigmaT.Y + sigmaT.Z) / 3.0
	if sigmaBar <= 0 {
		return core.NewVec3(1, 1, 1), nil
	}

	dirLength := ray.Direction.Length()
	dist := -math.Log(1-sampler.Get1D()) / sigmaBar
	t := dist / dirLength

	if t < tMax {
		point := ray.At(t)
		tr := transmittance(sigmaT, dist)
		// Divide out the distance density sigmaBar*exp(-sigmaBar*d)
		// and apply the scattering albedo at the event.
		pdf := sigmaBar * math.Exp(-sigmaBar*dist)
		throughput := tr.MultiplyVec(m.SigmaS).Multiply(1.0 / pdf)
		return throughput, &core.MediumInteraction{
			Point: point,
			Wo:    ray.Direction.Normalize().Multiply(-1),
			Phase: m.Phase,
		}
	}

	// Survived to the surface: weight by Tr / P(survive)
	surfDist := tMax * dirLength
	tr := transmittance(sigmaT, surfDist)
	pSurvive := math.Exp(-sigmaBar * surfDist)
	if pSurvive <= 0 {
		return core.Vec3{}, nil
	}
	return tr.Multiply(1.0 / pSurvive), nil
}

func transmittance(sigmaT core.Vec3, dist float64) core.Vec3 {
	return core.NewVec3(
		math.Exp(-sigmaT.X*dist),
		math.Exp(-sigmaT.Y*dist),
		math.Exp(-sigmaT.Z*dist),
	)
}

// HenyeyGreenstein is the standard single-parameter phase function.
// G near 0 is close to isotropic, positive G scatters forward.
type HenyeyGreenstein struct {
	G float64
}

// P evaluates the phase function for a pair of directions
func (hg *HenyeyGreenstein) P(wo, wi core.Vec3) float64 {
	cosTheta := wo.Dot(wi)
	return phaseHG(cosTheta, hg.G)
}

// SampleP samples an incident direction distributed according to the
// phase function. The returned pdf equals the phase value because the
// function is normalized over the sphere.
func (hg *HenyeyGreenstein) SampleP(wo core.Vec3, u core.Vec2) (core.Vec3, float64) {
	var cosTheta float64
	if math.Abs(hg.G) < 1e-3 {
		cosTheta = 1 - 2*u.X
	} else {
		sqr := (1 - hg.G*hg.G) / (1 + hg.G - 2*hg.G*u.X)
		cosTheta = -(1 + hg.G*hg.G - sqr*sqr) / (2 * hg.G)
	}

	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u.Y

	// Build an orthonormal frame around wo
	v1, v2 := coordinateSystem(wo)
	wi := v1.Multiply(sinTheta * math.Cos(phi)).
		Add(v2.Multiply(sinTheta * math.Sin(phi))).
		Add(wo.Multiply(cosTheta))

	return wi, phaseHG(cosTheta, hg.G)
}

func phaseHG(cosTheta, g float64) float64 {
	denom := 1 + g*g + 2*g*cosTheta
	return (1 - g*g) / (4 * math.Pi * denom * math.Sqrt(denom))
}

func coordinateSystem(w core.Vec3) (core.Vec3, core.Vec3) {
	var v1 core.Vec3
	if math.Abs(w.X) > math.Abs(w.Y) {
		v1 = core.NewVec3(-w.Z, 0, w.X).Multiply(1 / math.Sqrt(w.X*w.X+w.Z*w.Z))
	} else {
		v1 = core.NewVec3(0, w.Z, -w.Y).Multiply(1 / math.Sqrt(w.Y*w.Y+w.Z*w.Z))
	}
	return v1, w.Cross(v1)
}
