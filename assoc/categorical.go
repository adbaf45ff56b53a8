package assoc

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// RandSource is the random generator consumed by samplers.
// Both *math/rand.Rand and *math/rand/v2.Rand satisfy it.
type RandSource interface {
	Float64() float64
}

// Categorical is a discrete distribution over indices 0..n-1 built from log weights.
// Weights may be -Inf for infeasible outcomes.
type Categorical struct {
	logPMF []float64
	logCDF []float64
}

// NewCategorical normalizes given log weights into categorical distribution
func NewCategorical(logWeights []float64) (*Categorical, error) {
	c := &Categorical{}
	if err := c.reset(logWeights); err != nil {
		return nil, err
	}
	return c, nil
}

// reset refills the distribution in place, reusing buffers of matching size
func (c *Categorical) reset(logWeights []float64) error {
	if len(logWeights) == 0 {
		return errors.Wrap(ErrDegenerateDistribution, "no outcomes")
	}
	if cap(c.logPMF) < len(logWeights) {
		c.logPMF = make([]float64, len(logWeights))
		c.logCDF = make([]float64, len(logWeights))
	}
	c.logPMF = c.logPMF[:len(logWeights)]
	c.logCDF = c.logCDF[:len(logWeights)]

	total := math.Inf(-1)
	for i, w := range logWeights {
		if math.IsNaN(w) {
			return errors.Wrapf(ErrDegenerateDistribution, "weight %d is NaN", i)
		}
		total = LogSumP(total, w)
		c.logCDF[i] = total
	}
	if math.IsInf(total, 0) {
		return errors.Wrapf(ErrDegenerateDistribution, "total log weight is %v", total)
	}
	for i, w := range logWeights {
		c.logPMF[i] = w - total
		c.logCDF[i] -= total
	}
	return nil
}

// Len returns number of outcomes
func (c *Categorical) Len() int {
	return len(c.logPMF)
}

// LogProb returns normalized log probability of outcome i
func (c *Categorical) LogProb(i int) float64 {
	if i < 0 || i >= len(c.logPMF) {
		return math.Inf(-1)
	}
	return c.logPMF[i]
}

// Prob returns normalized probability of outcome i
func (c *Categorical) Prob(i int) float64 {
	return math.Exp(c.LogProb(i))
}

// Draw samples an outcome by inverting the cumulative distribution.
// Exactly one value is consumed from the random source.
func (c *Categorical) Draw(rnd RandSource) int {
	u := math.Log(rnd.Float64())
	for i, cdf := range c.logCDF {
		if u < cdf {
			return i
		}
	}
	// Rounding may leave the last cumulative value slightly below zero
	for i := len(c.logPMF) - 1; i >= 0; i-- {
		if !math.IsInf(c.logPMF[i], -1) {
			return i
		}
	}
	return len(c.logPMF) - 1
}

// String formats the probabilities as "p(0)=... p(1)=..."
func (c *Categorical) String() string {
	var sb strings.Builder
	for i := range c.logPMF {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "p(%d)=%g", i, c.Prob(i))
	}
	return sb.String()
}
