package assoc

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Point is a 2D position
type Point struct {
	X float64
	Y float64
}

// NewPoint creates new point
func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

// Vector returns point as position vector
func (p Point) Vector() []float64 {
	return []float64{p.X, p.Y}
}

// Observation is a single detection at the current time step
type Observation struct {
	// Continuous position vector (any dimension, equal for all observations of one set)
	Position []float64
	// Optional free-form label (e.g. segment name)
	Tag string
}

// NewObservation creates observation at given 2D point
func NewObservation(p Point) Observation {
	return Observation{
		Position: p.Vector(),
	}
}

// ObservationSet is the set of observations of one time step
type ObservationSet struct {
	Observations []Observation
	// Optional precomputed symmetric matrix of pairwise distances. Euclidean distance is used when nil
	Distances [][]float64
}

// NewObservationSet wraps observations without precomputed distances
func NewObservationSet(observations ...Observation) ObservationSet {
	return ObservationSet{
		Observations: observations,
	}
}

// Len returns number of observations
func (set ObservationSet) Len() int {
	return len(set.Observations)
}

// Distance returns distance between observations i and j
func (set ObservationSet) Distance(i, j int) float64 {
	if set.Distances != nil {
		return set.Distances[i][j]
	}
	return euclideanDistance(set.Observations[i].Position, set.Observations[j].Position)
}

// validate checks that positions share one dimension and the distance matrix is square
func (set ObservationSet) validate() error {
	for i := 1; i < len(set.Observations); i++ {
		if len(set.Observations[i].Position) != len(set.Observations[0].Position) {
			return errors.Wrapf(ErrDimensionMismatch, "observation %d has dimension %d, observation 0 has %d",
				i, len(set.Observations[i].Position), len(set.Observations[0].Position))
		}
	}
	if set.Distances == nil {
		return nil
	}
	if len(set.Distances) != len(set.Observations) {
		return errors.Wrapf(ErrDimensionMismatch, "distance matrix has %d rows for %d observations", len(set.Distances), len(set.Observations))
	}
	for i, row := range set.Distances {
		if len(row) != len(set.Observations) {
			return errors.Wrapf(ErrDimensionMismatch, "distance matrix row %d has %d columns for %d observations", i, len(row), len(set.Observations))
		}
	}
	return nil
}

func euclideanDistance(p1, p2 []float64) float64 {
	return floats.Distance(p1, p2, 2)
}
