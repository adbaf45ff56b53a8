package assoc

import (
	"math"
	"math/rand/v2"
)

func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// flatLikelihood gives every observation equal likelihood under any hypothesis
type flatLikelihood struct{}

func (flatLikelihood) LogLikelihood(obs int, h Hypothesis) float64 {
	return 0
}

func randomTable(rnd *rand.Rand, numObs, numTargets int) *LikelihoodTable {
	table := NewLikelihoodTable(numObs, numTargets)
	for m := 0; m < numObs; m++ {
		for i := range table.values[m] {
			table.values[m][i] = -5 * rnd.Float64()
		}
	}
	return table
}

func lineObservations(xs ...float64) ObservationSet {
	observations := make([]Observation, len(xs))
	for i, x := range xs {
		observations[i] = Observation{Position: []float64{x}}
	}
	return NewObservationSet(observations...)
}

func sequentialTargets(n int) []Target {
	targets := make([]Target, n)
	for i := range targets {
		targets[i] = NewTarget(i+1, float64(i))
	}
	return targets
}

func logChoose(n, k int) float64 {
	a, _ := math.Lgamma(float64(n + 1))
	b, _ := math.Lgamma(float64(k + 1))
	c, _ := math.Lgamma(float64(n - k + 1))
	return a - b - c
}

func logFactorial(n int) float64 {
	v, _ := math.Lgamma(float64(n + 1))
	return v
}

// analyticLogPrior returns log p(c | M, N) of one complete labelled association with k detected
// targets and b newborns
func analyticLogPrior(model AssociationModel, numObs, numTargets, k, b int) float64 {
	logBinomial := func(k int) float64 {
		return logChoose(numTargets, k) + float64(k)*math.Log(model.DetectionProb) + float64(numTargets-k)*math.Log(1-model.DetectionProb)
	}
	logPMN := math.Inf(-1)
	for K := 0; K <= numTargets && K <= numObs; K++ {
		for B := 0; B <= numObs-K; B++ {
			logPMN = LogSumP(logPMN, logBinomial(K)+model.NewbornCount.LogProb(B)+model.ClutterCount.LogProb(numObs-K-B))
		}
	}
	r := numObs - k - b
	specific := logBinomial(k) + model.NewbornCount.LogProb(b) + model.ClutterCount.LogProb(r) +
		logFactorial(numTargets-k) - logFactorial(numTargets) +
		logFactorial(k) + logFactorial(b) + logFactorial(r) - logFactorial(numObs)
	return specific - logPMN
}

// labelledAssociation is one complete association with its unnormalized log posterior
type labelledAssociation struct {
	association *DataAssociation
	k           int
	b           int
	logLik      float64
}

// enumerateAssociations lists every complete association of numObs observations to targets.
// Newborn IDs are minted in observation order starting from newbornIDStart.
func enumerateAssociations(numObs int, targets []Target, newbornIDStart int, table *LikelihoodTable) []labelledAssociation {
	var out []labelledAssociation
	claimed := make([]bool, len(targets))
	type pair struct{ id, obs int }
	var pairs []pair
	var walk func(m, k, b int, logLik float64)
	walk = func(m, k, b int, logLik float64) {
		if m == numObs {
			association := NewDataAssociation()
			for _, p := range pairs {
				association.Set(p.id, p.obs)
			}
			out = append(out, labelledAssociation{association: association, k: k, b: b, logLik: logLik})
			return
		}
		row := table.row(m)
		walk(m+1, k, b, logLik+row[0])
		for n := range targets {
			if claimed[n] {
				continue
			}
			claimed[n] = true
			pairs = append(pairs, pair{targets[n].ID, m})
			walk(m+1, k+1, b, logLik+row[n+1])
			pairs = pairs[:len(pairs)-1]
			claimed[n] = false
		}
		pairs = append(pairs, pair{newbornIDStart + b, m})
		walk(m+1, k, b+1, logLik+row[len(targets)+1])
		pairs = pairs[:len(pairs)-1]
	}
	walk(0, 0, 0, 0)
	return out
}

// exactPosterior returns log p(c | z) keyed by association String()
func exactPosterior(model AssociationModel, numObs int, targets []Target, newbornIDStart int, table *LikelihoodTable) map[string]float64 {
	all := enumerateAssociations(numObs, targets, newbornIDStart, table)
	logJoint := make([]float64, len(all))
	for i, a := range all {
		logJoint[i] = analyticLogPrior(model, numObs, len(targets), a.k, a.b) + a.logLik
	}
	total := LogSumPSlice(logJoint)
	posterior := make(map[string]float64, len(all))
	for i, a := range all {
		posterior[a.association.String()] = logJoint[i] - total
	}
	return posterior
}
