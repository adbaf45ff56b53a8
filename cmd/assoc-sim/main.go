package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"sort"

	"github.com/LdDl/mot-assoc/assoc"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	configFile = flag.String("config", "", "Path to YAML configuration. Defaults are used when empty")
	numTargets = flag.Int("targets", 4, "Number of simulated targets")
	numSteps   = flag.Int("steps", 5, "Number of simulated time steps")
	numDraws   = flag.Int("draws", 1000, "Number of association samples per time step")
	seed       = flag.Uint64("seed", 1, "Random seed")
	lookahead  = flag.Bool("lookahead", false, "Use neighbor lookahead sampler")
	debug      = flag.Bool("debug", false, "Write mismatches against true association to stderr")
	logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
)

const (
	maxMisses = 3
	topK      = 5
)

type worldTarget struct {
	id       int
	position assoc.Point
	velocity assoc.Point
}

type frequency struct {
	key         string
	count       int
	association *assoc.DataAssociation
}

func main() {
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.WithError(err).Fatal("bad log level")
	}
	logger.SetLevel(level)

	cfg := assoc.DefaultConfig()
	if *configFile != "" {
		cfg, err = assoc.LoadConfig(*configFile)
		if err != nil {
			logger.WithError(err).Fatal("can't load configuration")
		}
	}
	if *numDraws < 1 {
		logger.Fatal("number of draws must be positive")
	}
	if *numTargets >= cfg.NewbornIDStart {
		logger.Fatalf("number of targets must be below newborn_id_start=%d", cfg.NewbornIDStart)
	}
	model, err := cfg.Model()
	if err != nil {
		logger.WithError(err).Fatal("can't build association model")
	}

	runID := uuid.New()
	log := logger.WithField("run", runID.String())
	log.WithFields(logrus.Fields{
		"targets":   *numTargets,
		"steps":     *numSteps,
		"draws":     *numDraws,
		"seed":      *seed,
		"lookahead": *lookahead,
	}).Info("simulation started")

	rnd := rand.New(rand.NewPCG(*seed, *seed))
	side := math.Sqrt(cfg.Likelihood.Area)

	world := make([]*worldTarget, *numTargets)
	tracked := make([]*assoc.KalmanTarget, *numTargets)
	for i := range world {
		world[i] = &worldTarget{
			id:       i + 1,
			position: assoc.NewPoint(side*rnd.Float64(), side*rnd.Float64()),
			velocity: assoc.NewPoint(rnd.NormFloat64(), rnd.NormFloat64()),
		}
		tracked[i] = assoc.NewKalmanTarget(world[i].id, world[i].position)
	}
	nextTrackID := *numTargets + 1

	clutterCount := countSampler(cfg.Clutter, rnd)
	newbornCount := countSampler(cfg.Newborn, rnd)

	for step := 0; step < *numSteps; step++ {
		stepLog := log.WithField("step", step)
		for _, target := range world {
			target.position = assoc.NewPoint(target.position.X+target.velocity.X, target.position.Y+target.velocity.Y)
		}
		predictions := assoc.PredictTargets(tracked)

		observations, truth, err := simulateObservations(rnd, world, cfg, side, clutterCount(), newbornCount())
		if err != nil {
			stepLog.WithError(err).Fatal("can't simulate observations")
		}
		likelihood, err := assoc.NewGaussianLikelihood(observations, predictions, cfg.Likelihood.Sigma, cfg.Likelihood.Area)
		if err != nil {
			stepLog.WithError(err).Fatal("can't build likelihood")
		}
		sampler, err := newSampler(rnd, model, observations, predictions, likelihood, cfg, logger)
		if err != nil {
			stepLog.WithError(err).Fatal("can't create sampler")
		}

		counts := make(map[string]*frequency)
		meanLogP := 0.0
		for i := 0; i < *numDraws; i++ {
			var sample *assoc.DataAssociation
			if *debug {
				sample, err = sampler.DrawSampleDebug(truth, os.Stderr)
			} else {
				sample, err = sampler.DrawSample()
			}
			if err != nil {
				stepLog.WithError(err).Fatal("can't draw association")
			}
			meanLogP += sampler.LogP(sample) / float64(*numDraws)
			key := sample.String()
			if f, ok := counts[key]; ok {
				f.count++
			} else {
				counts[key] = &frequency{key: key, count: 1, association: sample}
			}
		}

		top := sortFrequencies(counts)
		reference, err := assoc.ReferenceAssociation(likelihood, observations.Len(), predictions, cfg.NewbornIDStart)
		if err != nil {
			stepLog.WithError(err).Fatal("can't build reference association")
		}
		fmt.Printf("step %d: %d observations, %d targets, %d distinct associations, mean log p %.4f\n",
			step, observations.Len(), len(predictions), len(top), meanLogP)
		fmt.Printf("  truth:     %s\n", truth)
		fmt.Printf("  reference: %s\n", reference)
		for i := 0; i < len(top) && i < topK; i++ {
			fmt.Printf("  %6.2f%% %s\n", 100*float64(top[i].count)/float64(*numDraws), top[i].key)
		}

		best := top[0].association
		if err := assoc.ApplyAssociation(tracked, observations, best); err != nil {
			stepLog.WithError(err).Fatal("can't update targets")
		}
		tracked, nextTrackID = spawnAndPrune(tracked, observations, best, cfg.NewbornIDStart, nextTrackID)
		stepLog.WithFields(logrus.Fields{
			"tracked": len(tracked),
			"agree":   best.Equal(truth),
		}).Debug("targets updated")
	}
	log.Info("simulation finished")
}

func newSampler(rnd assoc.RandSource, model assoc.AssociationModel, observations assoc.ObservationSet, targets []assoc.Target, likelihood assoc.LikelihoodProvider, cfg assoc.Config, logger logrus.FieldLogger) (assoc.Sampler, error) {
	if *lookahead {
		sampler, err := assoc.NewNeighborLookaheadSampler(rnd, model, observations, targets, likelihood, cfg.Lookahead, cfg.Options(logger)...)
		if err != nil {
			return nil, err
		}
		return sampler, nil
	}
	sampler, err := assoc.NewSequentialSampler(rnd, model, observations, targets, likelihood, cfg.Options(logger)...)
	if err != nil {
		return nil, err
	}
	return sampler, nil
}

// countSampler returns generator of clutter or newborn counts
func countSampler(cc assoc.CountConfig, rnd *rand.Rand) func() int {
	if cc.Distribution == "fixed" {
		return func() int {
			return cc.Count
		}
	}
	if cc.Rate <= 0 {
		return func() int {
			return 0
		}
	}
	poisson := distuv.Poisson{Lambda: cc.Rate, Src: rnd}
	return func() int {
		return int(poisson.Rand())
	}
}

// simulateObservations detects world targets, adds clutter and newborn observations, shuffles them
// and returns the true association. Newborn IDs follow observation order.
func simulateObservations(rnd *rand.Rand, world []*worldTarget, cfg assoc.Config, side float64, clutter, newborn int) (assoc.ObservationSet, *assoc.DataAssociation, error) {
	type labelled struct {
		observation assoc.Observation
		id          int
	}
	noise := cfg.Likelihood.Sigma
	items := make([]labelled, 0, len(world)+clutter+newborn)
	for _, target := range world {
		if rnd.Float64() >= cfg.DetectionProbability {
			continue
		}
		point := assoc.NewPoint(target.position.X+noise*rnd.NormFloat64(), target.position.Y+noise*rnd.NormFloat64())
		items = append(items, labelled{observation: assoc.NewObservation(point), id: target.id})
	}
	for i := 0; i < clutter; i++ {
		point := assoc.NewPoint(side*rnd.Float64(), side*rnd.Float64())
		items = append(items, labelled{observation: assoc.Observation{Position: point.Vector(), Tag: "clutter"}, id: 0})
	}
	for i := 0; i < newborn; i++ {
		point := assoc.NewPoint(side*rnd.Float64(), side*rnd.Float64())
		items = append(items, labelled{observation: assoc.Observation{Position: point.Vector(), Tag: "newborn"}, id: -1})
	}
	rnd.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})

	observations := make([]assoc.Observation, len(items))
	truth := assoc.NewDataAssociation()
	nextID := cfg.NewbornIDStart
	for m, item := range items {
		observations[m] = item.observation
		id := item.id
		if id < 0 {
			id = nextID
			nextID++
		}
		if id == 0 {
			continue
		}
		if err := truth.Set(id, m); err != nil {
			return assoc.ObservationSet{}, nil, errors.Wrap(err, "Can't build true association")
		}
	}
	return assoc.NewObservationSet(observations...), truth, nil
}

// spawnAndPrune starts tracking newborn observations and drops targets missed too often
func spawnAndPrune(tracked []*assoc.KalmanTarget, observations assoc.ObservationSet, association *assoc.DataAssociation, newbornIDStart, nextTrackID int) ([]*assoc.KalmanTarget, int) {
	kept := tracked[:0]
	for _, target := range tracked {
		if target.NoMatchTimes() <= maxMisses {
			kept = append(kept, target)
		}
	}
	for _, id := range association.IDs() {
		if id < newbornIDStart || nextTrackID >= newbornIDStart {
			continue
		}
		obs, _ := association.Observation(id)
		pos := observations.Observations[obs].Position
		kept = append(kept, assoc.NewKalmanTarget(nextTrackID, assoc.NewPoint(pos[0], pos[1])))
		nextTrackID++
	}
	return kept, nextTrackID
}

func sortFrequencies(counts map[string]*frequency) []*frequency {
	out := make([]*frequency, 0, len(counts))
	for _, f := range counts {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count == out[j].count {
			return out[i].key < out[j].key
		}
		return out[i].count > out[j].count
	})
	return out
}
