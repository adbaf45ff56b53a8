package assoc

import (
	"io"
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Sampler draws data associations for the observations of one time step
type Sampler interface {
	DrawSample() (*DataAssociation, error)
	DrawSampleDebug(reference *DataAssociation, sink io.Writer) (*DataAssociation, error)
	P(x *DataAssociation) float64
	LogP(x *DataAssociation) float64
	SetNewbornIDStart(id int) error
	SetObservations(observations ObservationSet, targets []Target, likelihood LikelihoodProvider) error
}

// branchPriors computes the association prior of every hypothesis class at a step.
// Implementations own whatever caches they need between steps of one draw.
type branchPriors interface {
	// rebuild is called whenever observations, targets or likelihoods were replaced
	rebuild()
	// begin prepares a new draw
	begin(st *drawState)
	// priors returns conditional log priors p(c_m | c_{0:m-1}) of clutter, one specific
	// unclaimed target and newborn for observation m
	priors(st *drawState, m int) (clutter, existing, newborn float64)
	// lookahead returns log-likelihood term contributed by observations considered jointly
	// with observation m under hypothesis h
	lookahead(st *drawState, m int, h Hypothesis) float64
	// commit records sampled hypothesis class before st is updated
	commit(st *drawState, m int, kind HypothesisKind)
}

// drawState holds counts committed so far within one draw
type drawState struct {
	// number of claimed existing targets
	k int
	// number of minted newborn targets
	b       int
	claimed []bool
	// unclaimed target indices
	available []int
}

func (st *drawState) reset(numTargets int) {
	st.k = 0
	st.b = 0
	if cap(st.claimed) < numTargets {
		st.claimed = make([]bool, numTargets)
		st.available = make([]int, numTargets)
	}
	st.claimed = st.claimed[:numTargets]
	st.available = st.available[:numTargets]
	for n := 0; n < numTargets; n++ {
		st.claimed[n] = false
		st.available[n] = n
	}
}

func (st *drawState) claim(n int) {
	st.claimed[n] = true
	st.k++
	for i, t := range st.available {
		if t == n {
			st.available = append(st.available[:i], st.available[i+1:]...)
			break
		}
	}
}

// core is the sequential draw skeleton shared by all samplers
type core struct {
	id       uuid.UUID
	rnd      RandSource
	model    AssociationModel
	opts     options
	log      logrus.FieldLogger
	strategy branchPriors

	observations ObservationSet
	targets      []Target
	likelihood   *LikelihoodTable
	numObs       int
	numTargets   int
	minMN        int

	// log mu(c) and log nu(b) for counts [0, max(M, maxObservations)]
	logMu []float64
	logNu []float64
	// log Binomial(k; N, P_D) for k in [0, min(M, N)]
	logBinom []float64
	// log p(M | N)
	logPMN float64
	logFac *LogFactorialCache

	newbornIDStart int
	newbornIDFixed bool

	state      drawState
	weights    []float64
	dist       Categorical
	lastSample *DataAssociation
	lastLogP   float64

	// trace is invoked after every categorical draw. Used by tests
	trace func(m int, dist *Categorical, choice int)
}

func newCore(kind string, rnd RandSource, model AssociationModel, opts []Option) (*core, error) {
	if rnd == nil {
		return nil, errors.Wrap(ErrMissingComponent, "random source must be set")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := model.Validate(o.maxObservations); err != nil {
		return nil, errors.Wrap(err, "invalid association model")
	}
	id := uuid.New()
	c := &core{
		id:             id,
		rnd:            rnd,
		model:          model,
		opts:           o,
		log:            o.logger.WithFields(logrus.Fields{"sampler": id.String(), "kind": kind}),
		numObs:         -1,
		numTargets:     -1,
		logPMN:         math.NaN(),
		logFac:         NewLogFactorialCache(maxInt(o.maxObservations, 0)),
		newbornIDStart: o.newbornIDStart,
		newbornIDFixed: o.newbornIDFixed,
		lastLogP:       math.NaN(),
	}
	if o.maxObservations >= 0 {
		c.logMu = tabulate(model.ClutterCount, o.maxObservations)
		c.logNu = tabulate(model.NewbornCount, o.maxObservations)
	}
	return c, nil
}

// ID returns identifier of sampler instance used in log fields
func (c *core) ID() uuid.UUID {
	return c.id
}

// NumObservations returns number of observations of the current set
func (c *core) NumObservations() int {
	return c.numObs
}

// NumTargets returns number of target predictions of the current set
func (c *core) NumTargets() int {
	return c.numTargets
}

// SetNewbornIDStart sets the ID minted for the first newborn target of every following draw.
// It fails with ErrDuplicateTarget when id is not above every current target ID.
func (c *core) SetNewbornIDStart(id int) error {
	if err := validateTargets(c.targets, id); err != nil {
		return errors.Wrap(err, "invalid newborn start ID")
	}
	c.newbornIDStart = id
	c.newbornIDFixed = true
	return nil
}

// NewbornIDStart returns the ID minted for the first newborn target of a draw
func (c *core) NewbornIDStart() int {
	return c.newbornIDStart
}

// SetObservations replaces observations, target predictions and likelihood.
// All cached state (tables, lookahead windows, probability tree) is rebuilt.
func (c *core) SetObservations(observations ObservationSet, targets []Target, likelihood LikelihoodProvider) error {
	if err := c.load(observations, targets, likelihood); err != nil {
		return err
	}
	c.strategy.rebuild()
	return nil
}

func (c *core) load(observations ObservationSet, targets []Target, likelihood LikelihoodProvider) error {
	if likelihood == nil {
		return errors.Wrap(ErrMissingComponent, "likelihood provider must be set")
	}
	if err := observations.validate(); err != nil {
		return errors.Wrap(err, "invalid observations")
	}
	newbornIDStart := c.newbornIDStart
	if !c.newbornIDFixed {
		newbornIDStart = defaultNewbornIDStart
		for _, target := range targets {
			newbornIDStart = maxInt(newbornIDStart, target.ID+1)
		}
	}
	if err := validateTargets(targets, newbornIDStart); err != nil {
		return errors.Wrap(err, "invalid targets")
	}
	numObs, numTargets := observations.Len(), len(targets)
	if shaped, ok := likelihood.(shapedProvider); ok {
		m, n := shaped.Dims()
		if m != numObs || n != numTargets {
			return errors.Wrapf(ErrLikelihoodShape, "provider has %d observations and %d targets, got %d and %d", m, n, numObs, numTargets)
		}
	}
	if err := c.model.Validate(numObs); err != nil {
		return errors.Wrap(err, "association model can't explain observations")
	}

	sizeChanged := numObs != c.numObs || numTargets != c.numTargets
	c.newbornIDStart = newbornIDStart
	c.observations = observations
	c.targets = targets
	c.numObs = numObs
	c.numTargets = numTargets
	c.minMN = minInt(numObs, numTargets)
	c.likelihood = TabulateLikelihood(likelihood, numObs, numTargets)
	c.lastSample = nil
	c.lastLogP = math.NaN()

	if len(c.logMu) <= numObs {
		c.logMu = tabulate(c.model.ClutterCount, numObs)
		c.logNu = tabulate(c.model.NewbornCount, numObs)
	}
	c.logFac.grow(maxInt(numObs, numTargets))
	if cap(c.weights) < numTargets+2 {
		c.weights = make([]float64, numTargets+2)
	}
	c.weights = c.weights[:numTargets+2]

	if sizeChanged || math.IsNaN(c.logPMN) {
		c.logBinom = logBinomialTable(numTargets, c.minMN, c.model.DetectionProb)
		c.logPMN = c.jointPrior(0, 0, 0)
	}
	if math.IsInf(c.logPMN, -1) {
		c.log.WithFields(logrus.Fields{"observations": numObs, "targets": numTargets}).Warn("model assigns zero probability to number of observations")
	}
	c.log.WithFields(logrus.Fields{
		"observations": numObs,
		"targets":      numTargets,
		"log_p_mn":     c.logPMN,
	}).Debug("observations loaded")
	return nil
}

// prefixFactor returns log((M-m)!/M!) + log((N-k)!/N!): the share of one specific labelled
// prefix of length m with k claimed targets among all equally likely arrangements
func (c *core) prefixFactor(m, k int) float64 {
	return c.logFac.Ratio(c.numObs-m, c.numObs) + c.logFac.Ratio(c.numTargets-k, c.numTargets)
}

// jointPrior returns log p(c_{0:m-1}, M | N) for any association prefix of length m with k
// claimed targets and b newborns: marginal over every completion of the remaining observations.
func (c *core) jointPrior(m, k, b int) float64 {
	r := m - k - b
	if k > c.numTargets || r < 0 || b < 0 || m > c.numObs {
		return math.Inf(-1)
	}
	sum := math.Inf(-1)
	kmax := minInt(c.numTargets, c.numObs-b-r)
	for K := k; K <= kmax; K++ {
		fk := c.logBinom[K] + c.logFac.Ratio(K, K-k)
		if math.IsInf(fk, -1) {
			continue
		}
		for B := b; B <= c.numObs-K-r; B++ {
			C := c.numObs - K - B
			term := fk + c.logNu[B] + c.logFac.Ratio(B, B-b) + c.logMu[C] + c.logFac.Ratio(C, C-r)
			sum = LogSumP(sum, term)
		}
	}
	if math.IsInf(sum, -1) {
		return sum
	}
	return sum + c.prefixFactor(m, k)
}

// conditionalPrior returns log of child prior given parent prior
func conditionalPrior(parentJoint, childJoint float64) float64 {
	if math.IsInf(childJoint, -1) {
		return childJoint
	}
	return childJoint - parentJoint
}

// DrawSample samples association of every observation
func (c *core) DrawSample() (*DataAssociation, error) {
	return c.DrawSampleDebug(nil, nil)
}

// DrawSampleDebug samples exactly like DrawSample. If both reference and sink are given, one line
// is written to sink for every observation whose sampled association disagrees with reference.
func (c *core) DrawSampleDebug(reference *DataAssociation, sink io.Writer) (*DataAssociation, error) {
	c.lastSample = nil
	c.lastLogP = math.NaN()

	st := &c.state
	st.reset(c.numTargets)
	c.strategy.begin(st)

	association := NewDataAssociation()
	nextID := c.newbornIDStart
	logPath := 0.0
	negInf := math.Inf(-1)
	for m := 0; m < c.numObs; m++ {
		priorClutter, priorExisting, priorNewborn := c.strategy.priors(st, m)
		row := c.likelihood.row(m)

		c.weights[0] = row[0] + priorClutter + c.strategy.lookahead(st, m, ClutterHypothesis())
		for n := 0; n < c.numTargets; n++ {
			if st.claimed[n] || math.IsInf(priorExisting, -1) {
				c.weights[n+1] = negInf
				continue
			}
			c.weights[n+1] = row[n+1] + priorExisting + c.strategy.lookahead(st, m, ExistingHypothesis(n))
		}
		c.weights[c.numTargets+1] = row[c.numTargets+1] + priorNewborn + c.strategy.lookahead(st, m, NewbornHypothesis())

		if err := c.dist.reset(c.weights); err != nil {
			c.log.WithError(err).WithField("observation", m).Warn("can't build association distribution")
			return nil, errors.Wrapf(err, "observation %d", m)
		}
		choice := c.dist.Draw(c.rnd)
		h := hypothesisAt(choice, c.numTargets)

		if reference != nil && sink != nil {
			c.reportMismatch(sink, reference, m, h, nextID)
		}
		if c.trace != nil {
			c.trace(m, &c.dist, choice)
		}
		logPath += c.dist.LogProb(choice)

		c.strategy.commit(st, m, h.Kind)
		switch h.Kind {
		case Existing:
			if err := association.Set(c.targets[h.Target].ID, m); err != nil {
				return nil, errors.Wrap(err, "sampled target twice")
			}
			st.claim(h.Target)
		case Newborn:
			if err := association.Set(nextID, m); err != nil {
				return nil, errors.Wrap(err, "newborn ID collides with target ID")
			}
			nextID++
			st.b++
		}
	}

	c.lastSample = association
	c.lastLogP = logPath
	return association, nil
}

// P returns probability of the association path. It is only valid for the association returned by
// the latest draw; for any other value it returns -1.
func (c *core) P(x *DataAssociation) float64 {
	if c.lastSample == nil || x != c.lastSample {
		return -1
	}
	return math.Exp(c.lastLogP)
}

// LogP returns log probability of the association path. It is only valid for the association
// returned by the latest draw; for any other value it returns NaN.
func (c *core) LogP(x *DataAssociation) float64 {
	if c.lastSample == nil || x != c.lastSample {
		return math.NaN()
	}
	return c.lastLogP
}
