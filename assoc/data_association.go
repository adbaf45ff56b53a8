package assoc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// DataAssociation maps target IDs (existing or newborn) to observation indices.
// Association is exclusive: every ID claims at most one observation and vice versa.
// Clutter observations are absent from the mapping.
type DataAssociation struct {
	observationByID map[int]int
	idByObservation map[int]int
}

// NewDataAssociation creates empty association
func NewDataAssociation() *DataAssociation {
	return &DataAssociation{
		observationByID: make(map[int]int),
		idByObservation: make(map[int]int),
	}
}

// Set associates target ID with observation index
func (da *DataAssociation) Set(id, observation int) error {
	if obs, ok := da.observationByID[id]; ok {
		return errors.Wrapf(ErrAlreadyAssociated, "target %d is associated with observation %d", id, obs)
	}
	if other, ok := da.idByObservation[observation]; ok {
		return errors.Wrapf(ErrAlreadyAssociated, "observation %d is associated with target %d", observation, other)
	}
	da.observationByID[id] = observation
	da.idByObservation[observation] = id
	return nil
}

// Unset removes association between target ID and observation if it exists
func (da *DataAssociation) Unset(id, observation int) bool {
	if obs, ok := da.observationByID[id]; !ok || obs != observation {
		return false
	}
	delete(da.observationByID, id)
	delete(da.idByObservation, observation)
	return true
}

// Observation returns observation index associated with target ID
func (da *DataAssociation) Observation(id int) (int, bool) {
	obs, ok := da.observationByID[id]
	return obs, ok
}

// TargetOf returns target ID associated with observation index. ok is false for clutter.
func (da *DataAssociation) TargetOf(observation int) (int, bool) {
	id, ok := da.idByObservation[observation]
	return id, ok
}

// AreAssociated reports whether target ID and observation index are associated
func (da *DataAssociation) AreAssociated(id, observation int) bool {
	obs, ok := da.observationByID[id]
	return ok && obs == observation
}

// Len returns number of associated observations
func (da *DataAssociation) Len() int {
	return len(da.observationByID)
}

// IDs returns associated target IDs in increasing order
func (da *DataAssociation) IDs() []int {
	ids := make([]int, 0, len(da.observationByID))
	for id := range da.observationByID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// MaxID returns largest associated target ID or -1 for empty association
func (da *DataAssociation) MaxID() int {
	maxID := -1
	for id := range da.observationByID {
		maxID = maxInt(maxID, id)
	}
	return maxID
}

// Map returns a copy of ID -> observation mapping
func (da *DataAssociation) Map() map[int]int {
	out := make(map[int]int, len(da.observationByID))
	for id, obs := range da.observationByID {
		out[id] = obs
	}
	return out
}

// Equal reports whether both associations hold identical pairs
func (da *DataAssociation) Equal(other *DataAssociation) bool {
	if da == other {
		return true
	}
	if da == nil || other == nil || len(da.observationByID) != len(other.observationByID) {
		return false
	}
	for id, obs := range da.observationByID {
		if otherObs, ok := other.observationByID[id]; !ok || otherObs != obs {
			return false
		}
	}
	return true
}

// String formats association as "Obs->Target: 0->3 2->5"
func (da *DataAssociation) String() string {
	observations := make([]int, 0, len(da.idByObservation))
	for obs := range da.idByObservation {
		observations = append(observations, obs)
	}
	sort.Ints(observations)
	parts := make([]string, len(observations))
	for i, obs := range observations {
		parts[i] = fmt.Sprintf("%d->%d", obs, da.idByObservation[obs])
	}
	return "Obs->Target: " + strings.Join(parts, " ")
}
