package assoc

import (
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// NeighborLookaheadSampler is a SequentialSampler that does not judge the current observation in
// isolation: before sampling it marginalizes over the associations of the spatially nearest not yet
// associated observations, including their likelihoods under every assignment of the still
// unclaimed targets. The number of such assignments grows factorially with the window size, so keep
// MaxNeighbors small.
//
// With an empty window the per-observation distribution equals the one of SequentialSampler.
// NeighborLookaheadSampler is not safe for concurrent use.
type NeighborLookaheadSampler struct {
	*core
	priors *lookaheadPriors
}

// NewNeighborLookaheadSampler creates sampler with lookahead bounded by cfg
func NewNeighborLookaheadSampler(rnd RandSource, model AssociationModel, observations ObservationSet, targets []Target, likelihood LikelihoodProvider, cfg LookaheadConfig, opts ...Option) (*NeighborLookaheadSampler, error) {
	c, err := newCore("lookahead", rnd, model, opts)
	if err != nil {
		return nil, errors.Wrap(err, "Can't create lookahead sampler")
	}
	priors, err := newLookaheadPriors(c, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "Can't create lookahead sampler")
	}
	c.strategy = priors
	if err := c.SetObservations(observations, targets, likelihood); err != nil {
		return nil, errors.Wrap(err, "Can't create lookahead sampler")
	}
	return &NeighborLookaheadSampler{
		core:   c,
		priors: priors,
	}, nil
}

// Lookahead returns configured window bounds
func (s *NeighborLookaheadSampler) Lookahead() LookaheadConfig {
	return s.priors.cfg
}

// Window returns observations considered jointly with observation m, nearest first
func (s *NeighborLookaheadSampler) Window(m int) []int {
	return append([]int(nil), s.priors.windows[m]...)
}

type priorKey struct {
	length int
	k      int
	b      int
}

// lookaheadPriors computes class priors from a probability tree rooted at the committed prefix
type lookaheadPriors struct {
	c       *core
	cfg     LookaheadConfig
	windows [][]int
	tree    probTree
	// joint priors by prefix counts, valid until observations change
	cache *lru.Cache[priorKey, float64]
	joint func(length, k, b int) float64
}

func newLookaheadPriors(c *core, cfg LookaheadConfig) (*lookaheadPriors, error) {
	cache, err := lru.New[priorKey, float64](c.opts.priorCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "Can't create prior cache")
	}
	lp := &lookaheadPriors{
		c:     c,
		cfg:   cfg,
		cache: cache,
	}
	lp.joint = lp.cachedJoint
	return lp, nil
}

func (lp *lookaheadPriors) cachedJoint(length, k, b int) float64 {
	key := priorKey{length: length, k: k, b: b}
	if value, ok := lp.cache.Get(key); ok {
		return value
	}
	value := lp.c.jointPrior(length, k, b)
	lp.cache.Add(key, value)
	return value
}

func (lp *lookaheadPriors) rebuild() {
	lp.cache.Purge()
	lp.tree.reset()
	lp.windows = lookaheadWindows(lp.c.observations, lp.cfg)
	largest := 0
	for _, window := range lp.windows {
		largest = maxInt(largest, len(window))
	}
	lp.c.log.WithFields(logrus.Fields{
		"max_neighbors": lp.cfg.MaxNeighbors,
		"max_distance":  lp.cfg.MaxDistance,
		"largest":       largest,
	}).Debug("lookahead windows rebuilt")
}

func (lp *lookaheadPriors) begin(st *drawState) {
	lp.tree.reset()
	lp.tree.root = lp.tree.alloc(probNode{
		joint: lp.c.logPMN,
		kind:  Clutter,
	})
}

func (lp *lookaheadPriors) priors(st *drawState, m int) (float64, float64, float64) {
	tree := &lp.tree
	tree.expand(tree.root, len(lp.windows[m])+1, lp.c.numObs, lp.c.numTargets, lp.joint)
	priors := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for kind := range priors {
		if child := tree.child(tree.root, HypothesisKind(kind)); child != noNode {
			priors[kind] = tree.conditional(tree.root, child)
		}
	}
	return priors[Clutter], priors[Existing], priors[Newborn]
}

func (lp *lookaheadPriors) lookahead(st *drawState, m int, h Hypothesis) float64 {
	window := lp.windows[m]
	if len(window) == 0 {
		return 0
	}
	child := lp.tree.child(lp.tree.root, h.Kind)
	if child == noNode {
		return 0
	}
	available := st.available
	if h.Kind == Existing {
		idx := -1
		for i, t := range available {
			if t == h.Target {
				idx = i
				break
			}
		}
		full := available
		last := len(full) - 1
		full[idx], full[last] = full[last], full[idx]
		defer func() {
			full[idx], full[last] = full[last], full[idx]
		}()
		available = available[:last]
	}
	return lp.windowLogLikelihood(child, window, available)
}

// windowLogLikelihood returns log of the sum over all associations of window observations of
// prior times likelihood, conditioned on the prefix represented by node
func (lp *lookaheadPriors) windowLogLikelihood(node int32, window []int, available []int) float64 {
	tree := &lp.tree
	if len(window) == 0 || !tree.nodes[node].expanded {
		return 0
	}
	row := lp.c.likelihood.row(window[0])
	rest := window[1:]
	sum := math.Inf(-1)

	if child := tree.child(node, Clutter); child != noNode {
		if prior := tree.conditional(node, child); !math.IsInf(prior, -1) {
			sum = LogSumP(sum, row[0]+prior+lp.windowLogLikelihood(child, rest, available))
		}
	}
	if child := tree.child(node, Newborn); child != noNode {
		if prior := tree.conditional(node, child); !math.IsInf(prior, -1) {
			sum = LogSumP(sum, row[lp.c.numTargets+1]+prior+lp.windowLogLikelihood(child, rest, available))
		}
	}
	if child := tree.child(node, Existing); child != noNode {
		if prior := tree.conditional(node, child); !math.IsInf(prior, -1) {
			last := len(available) - 1
			for i := range available {
				target := available[i]
				available[i], available[last] = available[last], available[i]
				sum = LogSumP(sum, row[target+1]+prior+lp.windowLogLikelihood(child, rest, available[:last]))
				available[i], available[last] = available[last], available[i]
			}
		}
	}
	return sum
}

func (lp *lookaheadPriors) commit(st *drawState, m int, kind HypothesisKind) {
	lp.tree.advance(kind)
}
