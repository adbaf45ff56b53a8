package assoc

import (
	"github.com/pkg/errors"
)

// Target is the prediction of an existing target for the current time step
type Target struct {
	// Stable identifier of the target across time steps
	ID int
	// Predicted mean state. Only used for diagnostics, the association prior does not depend on it
	Mean []float64
}

// NewTarget creates target prediction
func NewTarget(id int, mean ...float64) Target {
	return Target{
		ID:   id,
		Mean: mean,
	}
}

// validateTargets checks that IDs are unique and can't be confused with newborn IDs
func validateTargets(targets []Target, newbornIDStart int) error {
	seen := make(map[int]struct{}, len(targets))
	for _, target := range targets {
		if _, ok := seen[target.ID]; ok {
			return errors.Wrapf(ErrDuplicateTarget, "target ID %d is used twice", target.ID)
		}
		if target.ID >= newbornIDStart {
			return errors.Wrapf(ErrDuplicateTarget, "target ID %d collides with newborn IDs starting from %d", target.ID, newbornIDStart)
		}
		seen[target.ID] = struct{}{}
	}
	return nil
}

// targetIndex returns index of target with given ID or -1
func targetIndex(targets []Target, id int) int {
	for i := range targets {
		if targets[i].ID == id {
			return i
		}
	}
	return -1
}
