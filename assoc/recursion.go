package assoc

import "math"

// factorTables is a double buffer of one factor of the association prior.
// For a committed count j and every candidate total count i:
//
//	cur[i]  = base[i] + log(i!/(i-j)!)
//	next[i] = base[i] + log(i!/(i-j-1)!)
//
// Committing one more association swaps buffers and refreshes the spare one in place.
type factorTables struct {
	cur   []float64
	next  []float64
	count int
}

func (ft *factorTables) resize(n int) {
	if cap(ft.cur) < n {
		ft.cur = make([]float64, n)
		ft.next = make([]float64, n)
	}
	ft.cur = ft.cur[:n]
	ft.next = ft.next[:n]
}

// init resets tables to committed count 0 for given base log pmf
func (ft *factorTables) init(base []float64) {
	ft.count = 0
	copy(ft.cur, base[:len(ft.cur)])
	ft.refreshNext()
}

// advance commits one more association of this kind
func (ft *factorTables) advance() {
	ft.count++
	ft.cur, ft.next = ft.next, ft.cur
	ft.refreshNext()
}

func (ft *factorTables) refreshNext() {
	for i := range ft.next {
		if i <= ft.count {
			ft.next[i] = math.Inf(-1)
			continue
		}
		ft.next[i] = ft.cur[i] + math.Log(float64(i-ft.count))
	}
}

// immediatePriors computes class priors of the current observation only, maintaining factor
// tables for detections (f, over K), newborns (g, over B) and clutter (h, over C) incrementally.
type immediatePriors struct {
	c *core
	f factorTables
	g factorTables
	h factorTables
	// joint prior of committed prefix
	joint float64
	// joint priors of candidate prefixes of the current step
	jointClutter  float64
	jointExisting float64
	jointNewborn  float64
}

func newImmediatePriors(c *core) *immediatePriors {
	return &immediatePriors{c: c}
}

func (ip *immediatePriors) rebuild() {
	ip.f.resize(ip.c.minMN + 1)
	ip.g.resize(ip.c.numObs + 1)
	ip.h.resize(ip.c.numObs + 1)
}

func (ip *immediatePriors) begin(st *drawState) {
	ip.f.init(ip.c.logBinom)
	ip.g.init(ip.c.logNu)
	ip.h.init(ip.c.logMu)
	ip.joint = ip.c.logPMN
}

// sum returns log of sum over K, B of F[K] + G[B] + H[M-K-B] restricted to K >= k, B >= b, M-K-B >= r
func (ip *immediatePriors) sum(F, G, H []float64, k, b, r int) float64 {
	numObs := ip.c.numObs
	total := math.Inf(-1)
	kmax := minInt(ip.c.numTargets, numObs-b-r)
	for K := k; K <= kmax; K++ {
		if math.IsInf(F[K], -1) {
			continue
		}
		for B := b; B <= numObs-K-r; B++ {
			total = LogSumP(total, F[K]+G[B]+H[numObs-K-B])
		}
	}
	return total
}

func (ip *immediatePriors) candidate(m, k int, sum float64) float64 {
	if math.IsInf(sum, -1) {
		return sum
	}
	return sum + ip.c.prefixFactor(m, k)
}

func (ip *immediatePriors) priors(st *drawState, m int) (float64, float64, float64) {
	// prefix length after committing observation m
	length := m + 1
	k, b := st.k, st.b
	r := m - k - b

	ip.jointClutter = ip.candidate(length, k, ip.sum(ip.f.cur, ip.g.cur, ip.h.next, k, b, r+1))
	ip.jointNewborn = ip.candidate(length, k, ip.sum(ip.f.cur, ip.g.next, ip.h.cur, k, b+1, r))
	ip.jointExisting = math.Inf(-1)
	if k < ip.c.numTargets {
		ip.jointExisting = ip.candidate(length, k+1, ip.sum(ip.f.next, ip.g.cur, ip.h.cur, k+1, b, r))
	}
	return conditionalPrior(ip.joint, ip.jointClutter),
		conditionalPrior(ip.joint, ip.jointExisting),
		conditionalPrior(ip.joint, ip.jointNewborn)
}

func (ip *immediatePriors) lookahead(st *drawState, m int, h Hypothesis) float64 {
	return 0
}

func (ip *immediatePriors) commit(st *drawState, m int, kind HypothesisKind) {
	switch kind {
	case Clutter:
		ip.h.advance()
		ip.joint = ip.jointClutter
	case Existing:
		ip.f.advance()
		ip.joint = ip.jointExisting
	case Newborn:
		ip.g.advance()
		ip.joint = ip.jointNewborn
	}
}
