package assoc

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// CountDistribution is a probability mass function over non-negative counts, evaluated in log domain
type CountDistribution interface {
	LogProb(n int) float64
}

// boundedCount is implemented by count distributions defined over finite range [0, MaxCount()] only
type boundedCount interface {
	MaxCount() int
}

// PoissonCount is Poisson distributed number of clutter or newborn observations
type PoissonCount struct {
	dist distuv.Poisson
}

// NewPoissonCount creates Poisson count distribution with given mean. Zero rate puts all mass at zero.
func NewPoissonCount(rate float64) CountDistribution {
	if rate <= 0 {
		return FixedCount(0)
	}
	return PoissonCount{
		dist: distuv.Poisson{Lambda: rate},
	}
}

// LogProb returns log p(n)
func (pc PoissonCount) LogProb(n int) float64 {
	if n < 0 {
		return math.Inf(-1)
	}
	return pc.dist.LogProb(float64(n))
}

// Rate returns mean of the distribution
func (pc PoissonCount) Rate() float64 {
	return pc.dist.Lambda
}

// FixedCount places all probability mass at a single count
type FixedCount int

// LogProb returns 0 at the fixed count and -Inf elsewhere
func (fc FixedCount) LogProb(n int) float64 {
	if n == int(fc) {
		return 0
	}
	return math.Inf(-1)
}

// TableCount is a count distribution given by explicit log probabilities for counts [0, len-1]
type TableCount []float64

// LogProb returns tabulated value or -Inf outside of the table
func (tc TableCount) LogProb(n int) float64 {
	if n < 0 || n >= len(tc) {
		return math.Inf(-1)
	}
	return tc[n]
}

// MaxCount returns largest tabulated count
func (tc TableCount) MaxCount() int {
	return len(tc) - 1
}

// AssociationModel is the generative model of one time step: every existing target is detected
// with probability DetectionProb, ClutterCount clutter and NewbornCount newborn observations appear.
type AssociationModel struct {
	// mu
	ClutterCount CountDistribution
	// nu
	NewbornCount CountDistribution
	// P_D
	DetectionProb float64
}

// NewAssociationModel creates model with Poisson distributed clutter and newborn counts
func NewAssociationModel(detectionProb, clutterRate, newbornRate float64) AssociationModel {
	return AssociationModel{
		ClutterCount:  NewPoissonCount(clutterRate),
		NewbornCount:  NewPoissonCount(newbornRate),
		DetectionProb: detectionProb,
	}
}

// Validate checks model parameters against the largest number of observations it has to explain
func (model AssociationModel) Validate(maxObservations int) error {
	if model.ClutterCount == nil || model.NewbornCount == nil {
		return errors.Wrap(ErrMissingComponent, "count distributions must be set")
	}
	if math.IsNaN(model.DetectionProb) || model.DetectionProb < 0 || model.DetectionProb > 1 {
		return errors.Wrapf(ErrDetectionProbability, "got %v", model.DetectionProb)
	}
	if bounded, ok := model.ClutterCount.(boundedCount); ok && bounded.MaxCount() < maxObservations {
		return errors.Wrapf(ErrModelSize, "clutter distribution defined up to %d, need %d", bounded.MaxCount(), maxObservations)
	}
	if bounded, ok := model.NewbornCount.(boundedCount); ok && bounded.MaxCount() < maxObservations {
		return errors.Wrapf(ErrModelSize, "newborn distribution defined up to %d, need %d", bounded.MaxCount(), maxObservations)
	}
	return nil
}

// tabulate evaluates count distribution for counts [0, n]
func tabulate(dist CountDistribution, n int) []float64 {
	values := make([]float64, n+1)
	for i := range values {
		values[i] = dist.LogProb(i)
	}
	return values
}

// logBinomialTable returns log Binomial(k; n, p) for k in [0, kmax]
func logBinomialTable(n, kmax int, p float64) []float64 {
	table := make([]float64, kmax+1)
	switch {
	case p <= 0:
		for k := range table {
			table[k] = math.Inf(-1)
		}
		table[0] = 0
	case p >= 1:
		for k := range table {
			table[k] = math.Inf(-1)
		}
		if n <= kmax {
			table[n] = 0
		}
	default:
		dist := distuv.Binomial{N: float64(n), P: p}
		for k := range table {
			table[k] = dist.LogProb(float64(k))
		}
	}
	return table
}
