package core

import "sort"

// Distribution1D is a piecewise-constant discrete distribution over a set of
// non-negative weights. It backs bootstrap seed selection for Markov chains
// and power-weighted light selection.
type Distribution1D struct {
	weights []float64
	cdf     []float64
	funcInt float64
}

// NewDistribution1D builds a distribution from the given weights.
// Weights must be non-negative; an all-zero input yields a distribution
// whose FuncInt is zero and which samples index 0.
func NewDistribution1D(weights []float64) *Distribution1D {
	d := &Distribution1D{
		weights: append([]float64(nil), weights...),
		cdf:     make([]float64, len(weights)+1),
	}

	n := float64(len(weights))
	for i, w := range weights {
		d.cdf[i+1] = d.cdf[i] + w/n
	}
	d.funcInt = d.cdf[len(weights)]

	if d.funcInt == 0 {
		for i := 1; i < len(d.cdf); i++ {
			d.cdf[i] = float64(i) / n
		}
	} else {
		for i := 1; i < len(d.cdf); i++ {
			d.cdf[i] /= d.funcInt
		}
	}
	return d
}

// FuncInt returns the average of the weights (the integral of the
// piecewise-constant function over [0,1]).
func (d *Distribution1D) FuncInt() float64 {
	return d.funcInt
}

// Count returns the number of weights
func (d *Distribution1D) Count() int {
	return len(d.weights)
}

// SampleDiscrete maps a uniform sample u in [0,1) to an index drawn
// proportionally to the weights, returning the index and its probability.
func (d *Distribution1D) SampleDiscrete(u float64) (int, float64) {
	// Largest index whose cdf entry does not exceed u.
	idx := sort.Search(len(d.cdf), func(i int) bool { return d.cdf[i] > u }) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(d.weights)-1 {
		idx = len(d.weights) - 1
	}
	return idx, d.DiscretePDF(idx)
}

// DiscretePDF returns the probability of SampleDiscrete returning index i
func (d *Distribution1D) DiscretePDF(i int) float64 {
	if i < 0 || i >= len(d.weights) || d.funcInt == 0 {
		return 0
	}
	return d.weights[i] / (d.funcInt * float64(len(d.weights)))
}
