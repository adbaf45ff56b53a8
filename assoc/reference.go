package assoc

import (
	"math"

	"github.com/arthurkushman/go-hungarian"
	"github.com/pkg/errors"
)

// ReferenceAssociation computes a one-to-one maximum likelihood association of observations to
// targets with the Hungarian algorithm. Every observation may fall back to a slack column,
// which stands for clutter or newborn (whichever is more likely). Priors are ignored.
//
// The result is meant as reference for DrawSampleDebug when no ground truth is known.
func ReferenceAssociation(likelihood LikelihoodProvider, numObservations int, targets []Target, newbornIDStart int) (*DataAssociation, error) {
	association := NewDataAssociation()
	numTargets := len(targets)
	if numObservations == 0 {
		return association, nil
	}
	table := TabulateLikelihood(likelihood, numObservations, numTargets)

	// Shift log-likelihoods to positive scores, infeasible pairs score zero
	lowest := math.Inf(1)
	for m := 0; m < numObservations; m++ {
		for _, value := range table.row(m) {
			if !math.IsInf(value, 0) && !math.IsNaN(value) {
				lowest = minFloat64(lowest, value)
			}
		}
	}
	if math.IsInf(lowest, 1) {
		return association, nil
	}
	score := func(value float64) float64 {
		if math.IsInf(value, 0) || math.IsNaN(value) {
			return 0
		}
		return value - lowest + 1
	}

	// Columns: targets followed by one slack column per observation. Slack columns are
	// interchangeable, so every observation scores the same in each of them.
	size := numTargets + numObservations
	matrix := make([][]float64, size)
	for i := range matrix {
		matrix[i] = make([]float64, size)
	}
	for m := 0; m < numObservations; m++ {
		row := table.row(m)
		for n := 0; n < numTargets; n++ {
			matrix[m][n] = score(row[n+1])
		}
		slack := score(maxFloat64(row[0], row[numTargets+1]))
		for j := numTargets; j < size; j++ {
			matrix[m][j] = slack
		}
	}

	nextID := newbornIDStart
	assignmentsMap := hungarian.SolveMax(matrix)
	for m := 0; m < numObservations; m++ {
		rowMap, ok := assignmentsMap[m]
		if !ok || len(rowMap) == 0 {
			continue
		}
		column := -1
		for col := range rowMap {
			column = col
			break
		}
		row := table.row(m)
		switch {
		case column >= 0 && column < numTargets:
			if math.IsInf(row[column+1], -1) {
				continue
			}
			if err := association.Set(targets[column].ID, m); err != nil {
				return nil, errors.Wrap(err, "Can't build reference association")
			}
		case column >= numTargets:
			if row[numTargets+1] <= row[0] {
				continue
			}
			if err := association.Set(nextID, m); err != nil {
				return nil, errors.Wrap(err, "Can't build reference association")
			}
			nextID++
		}
	}
	return association, nil
}
