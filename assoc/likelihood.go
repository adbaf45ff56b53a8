package assoc

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// LikelihoodProvider supplies log p(z_obs | h) for every observation and association hypothesis.
// For Existing hypotheses h.Target is the index of the target prediction.
type LikelihoodProvider interface {
	LogLikelihood(obs int, h Hypothesis) float64
}

// shapedProvider is implemented by providers built for a fixed number of observations and targets
type shapedProvider interface {
	Dims() (observations, targets int)
}

// LikelihoodTable stores log-likelihoods in a dense [M][N+2] table.
// Column 0 is clutter, columns 1..N are targets and column N+1 is newborn.
type LikelihoodTable struct {
	values     [][]float64
	numTargets int
}

// NewLikelihoodTable creates table for M observations and N targets filled with -Inf
func NewLikelihoodTable(numObservations, numTargets int) *LikelihoodTable {
	values := make([][]float64, numObservations)
	for m := range values {
		values[m] = make([]float64, numTargets+2)
		for i := range values[m] {
			values[m][i] = math.Inf(-1)
		}
	}
	return &LikelihoodTable{
		values:     values,
		numTargets: numTargets,
	}
}

// TabulateLikelihood evaluates provider once for every observation and hypothesis
func TabulateLikelihood(provider LikelihoodProvider, numObservations, numTargets int) *LikelihoodTable {
	table := NewLikelihoodTable(numObservations, numTargets)
	for m := 0; m < numObservations; m++ {
		table.values[m][0] = provider.LogLikelihood(m, ClutterHypothesis())
		for n := 0; n < numTargets; n++ {
			table.values[m][n+1] = provider.LogLikelihood(m, ExistingHypothesis(n))
		}
		table.values[m][numTargets+1] = provider.LogLikelihood(m, NewbornHypothesis())
	}
	return table
}

// Set stores log-likelihood of observation under hypothesis
func (table *LikelihoodTable) Set(obs int, h Hypothesis, logLikelihood float64) {
	table.values[obs][table.column(h)] = logLikelihood
}

// LogLikelihood implements LikelihoodProvider
func (table *LikelihoodTable) LogLikelihood(obs int, h Hypothesis) float64 {
	return table.values[obs][table.column(h)]
}

// Dims returns number of observations and targets the table was built for
func (table *LikelihoodTable) Dims() (int, int) {
	return len(table.values), table.numTargets
}

// row returns raw row [clutter, targets..., newborn] of given observation
func (table *LikelihoodTable) row(obs int) []float64 {
	return table.values[obs]
}

func (table *LikelihoodTable) column(h Hypothesis) int {
	switch h.Kind {
	case Clutter:
		return 0
	case Existing:
		return h.Target + 1
	default:
		return table.numTargets + 1
	}
}

// GaussianLikelihood models target observations as N(z; target mean, Σ) and clutter as well as
// newborn observations as uniformly distributed over a region of given area (volume).
type GaussianLikelihood struct {
	observations ObservationSet
	targets      []*distmv.Normal
	logClutter   float64
	logNewborn   float64
}

// NewGaussianLikelihood creates isotropic Gaussian likelihood with standard deviation sigma.
// area is the size of the observed region, it defines the uniform clutter and newborn density.
func NewGaussianLikelihood(observations ObservationSet, targets []Target, sigma, area float64) (*GaussianLikelihood, error) {
	if sigma <= 0 || area <= 0 {
		return nil, errors.Errorf("sigma and area must be positive, got sigma=%v area=%v", sigma, area)
	}
	if err := observations.validate(); err != nil {
		return nil, errors.Wrap(err, "can't build gaussian likelihood")
	}
	gl := &GaussianLikelihood{
		observations: observations,
		targets:      make([]*distmv.Normal, len(targets)),
		logClutter:   -math.Log(area),
		logNewborn:   -math.Log(area),
	}
	for n, target := range targets {
		dim := len(target.Mean)
		if observations.Len() > 0 && dim != len(observations.Observations[0].Position) {
			return nil, errors.Wrapf(ErrDimensionMismatch, "target %d has dimension %d", target.ID, dim)
		}
		cov := mat.NewSymDense(dim, nil)
		for i := 0; i < dim; i++ {
			cov.SetSym(i, i, sigma*sigma)
		}
		normal, ok := distmv.NewNormal(target.Mean, cov, nil)
		if !ok {
			return nil, errors.Errorf("covariance of target %d is not positive definite", target.ID)
		}
		gl.targets[n] = normal
	}
	return gl, nil
}

// LogLikelihood implements LikelihoodProvider
func (gl *GaussianLikelihood) LogLikelihood(obs int, h Hypothesis) float64 {
	switch h.Kind {
	case Clutter:
		return gl.logClutter
	case Existing:
		return gl.targets[h.Target].LogProb(gl.observations.Observations[obs].Position)
	default:
		return gl.logNewborn
	}
}

// Dims returns number of observations and targets
func (gl *GaussianLikelihood) Dims() (int, int) {
	return gl.observations.Len(), len(gl.targets)
}
