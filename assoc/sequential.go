package assoc

import (
	"github.com/pkg/errors"
)

// SequentialSampler samples association variables observation by observation. The prior of each
// hypothesis is the exact marginal over all completions of the not yet associated observations
// under the model: targets detected with probability P_D, clutter and newborn counts distributed
// by mu and nu. Only the likelihood of the current observation is taken into account.
//
// SequentialSampler is not safe for concurrent use. Use one instance per particle.
type SequentialSampler struct {
	*core
}

// NewSequentialSampler creates sampler for given observations and target predictions
func NewSequentialSampler(rnd RandSource, model AssociationModel, observations ObservationSet, targets []Target, likelihood LikelihoodProvider, opts ...Option) (*SequentialSampler, error) {
	c, err := newCore("sequential", rnd, model, opts)
	if err != nil {
		return nil, errors.Wrap(err, "Can't create sequential sampler")
	}
	c.strategy = newImmediatePriors(c)
	if err := c.SetObservations(observations, targets, likelihood); err != nil {
		return nil, errors.Wrap(err, "Can't create sequential sampler")
	}
	return &SequentialSampler{core: c}, nil
}
