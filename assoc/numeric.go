package assoc

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// LogSumP returns log(exp(a) + exp(b)) without leaving the log domain.
// Negative infinity (probability zero) is the identity element.
func LogSumP(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	if a > b {
		return a + math.Log1p(math.Exp(b-a))
	}
	return b + math.Log1p(math.Exp(a-b))
}

// LogSumPSlice returns log(sum(exp(xs))). An empty slice sums to probability zero
func LogSumPSlice(xs []float64) float64 {
	if len(xs) == 0 {
		return math.Inf(-1)
	}
	return floats.LogSumExp(xs)
}

// LogFactorialCache memoizes log(n!) for non-negative n.
// It grows lazily when a larger argument is requested.
type LogFactorialCache struct {
	values []float64
}

// NewLogFactorialCache creates cache pre-sized for arguments up to maxN
func NewLogFactorialCache(maxN int) *LogFactorialCache {
	cache := &LogFactorialCache{
		values: make([]float64, 1, maxInt(maxN, 0)+1),
	}
	cache.grow(maxN)
	return cache
}

func (cache *LogFactorialCache) grow(n int) {
	for i := len(cache.values); i <= n; i++ {
		cache.values = append(cache.values, cache.values[i-1]+math.Log(float64(i)))
	}
}

// Size returns the largest argument currently stored
func (cache *LogFactorialCache) Size() int {
	return len(cache.values) - 1
}

// LogFactorial returns log(n!). For negative n it returns -Inf, i.e. 1/(n!) is treated as zero.
func (cache *LogFactorialCache) LogFactorial(n int) float64 {
	if n < 0 {
		return math.Inf(-1)
	}
	if n >= len(cache.values) {
		cache.grow(n)
	}
	return cache.values[n]
}

// Ratio returns log(n!/k!).
// A negative k yields -Inf: the ratio stands for n!/(n-j)! terms that vanish when j > n.
func (cache *LogFactorialCache) Ratio(n, k int) float64 {
	if n < 0 || k < 0 {
		return math.Inf(-1)
	}
	return cache.LogFactorial(n) - cache.LogFactorial(k)
}
