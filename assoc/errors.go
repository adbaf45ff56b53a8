package assoc

import "github.com/pkg/errors"

var (
	// ErrDetectionProbability is returned when P_D lies outside [0, 1]
	ErrDetectionProbability = errors.New("detection probability must be in range [0, 1]")
	// ErrModelSize is returned when a count distribution does not cover every possible count of observations
	ErrModelSize = errors.New("count distribution does not cover number of observations")
	// ErrLikelihoodShape is returned when a likelihood provider was built for another number of observations or targets
	ErrLikelihoodShape = errors.New("likelihood provider shape does not match observations and targets")
	// ErrDimensionMismatch is returned when observation positions have different dimensions
	ErrDimensionMismatch = errors.New("observation dimensions mismatch")
	// ErrDuplicateTarget is returned when two targets share one ID or a target ID collides with newborn IDs
	ErrDuplicateTarget = errors.New("target identifiers must be unique and below newborn start ID")
	// ErrMissingComponent is returned when a required constructor argument is nil
	ErrMissingComponent = errors.New("required component is nil")
	// ErrDegenerateDistribution is returned when a categorical distribution has no outcome with positive probability
	ErrDegenerateDistribution = errors.New("categorical distribution has zero total mass")
	// ErrAlreadyAssociated is returned when an ID or observation is associated twice
	ErrAlreadyAssociated = errors.New("already associated")
)
