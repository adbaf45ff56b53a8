package assoc

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

type fixedRand float64

func (r fixedRand) Float64() float64 {
	return float64(r)
}

func TestCategoricalNormalization(t *testing.T) {
	dist, err := NewCategorical([]float64{math.Log(2), math.Inf(-1), math.Log(6)})
	if err != nil {
		t.Fatal(err)
	}
	expected := []float64{0.25, 0, 0.75}
	for i, p := range expected {
		if math.Abs(dist.Prob(i)-p) > eps {
			t.Errorf("p(%d) = %v, expected %v", i, dist.Prob(i), p)
		}
	}
	if dist.Len() != 3 {
		t.Errorf("Expected 3 outcomes, got %d", dist.Len())
	}
	if !math.IsInf(dist.LogProb(7), -1) {
		t.Errorf("Outcome out of range must have zero probability")
	}
	certain, err := NewCategorical([]float64{0, math.Inf(-1)})
	if err != nil {
		t.Fatal(err)
	}
	if s := certain.String(); s != "p(0)=1 p(1)=0" {
		t.Errorf("Unexpected string: %s", s)
	}
}

func TestCategoricalDraw(t *testing.T) {
	dist, err := NewCategorical([]float64{math.Log(0.25), math.Inf(-1), math.Log(0.75)})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		u        float64
		expected int
	}{
		{0.0, 0},
		{0.1, 0},
		{0.2499, 0},
		{0.2501, 2},
		{0.99, 2},
		{1.0, 2},
	}
	for _, test := range tests {
		if answer := dist.Draw(fixedRand(test.u)); answer != test.expected {
			t.Errorf("Draw(%v) = %d, expected %d", test.u, answer, test.expected)
		}
	}
	// Infeasible outcome is never drawn
	rnd := newTestRand(30)
	for i := 0; i < 1000; i++ {
		if dist.Draw(rnd) == 1 {
			t.Fatal("Drew outcome with zero probability")
		}
	}
}

func TestCategoricalDegenerate(t *testing.T) {
	negInf := math.Inf(-1)
	if _, err := NewCategorical([]float64{negInf, negInf}); !errors.Is(err, ErrDegenerateDistribution) {
		t.Errorf("Expected degenerate distribution error, got %v", err)
	}
	if _, err := NewCategorical(nil); !errors.Is(err, ErrDegenerateDistribution) {
		t.Errorf("Expected degenerate distribution error, got %v", err)
	}
	if _, err := NewCategorical([]float64{0, math.NaN()}); !errors.Is(err, ErrDegenerateDistribution) {
		t.Errorf("Expected degenerate distribution error, got %v", err)
	}
}
