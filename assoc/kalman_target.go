package assoc

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// KalmanTarget is a tracked target using 2D Kalman filter for its center position.
// It produces the Target predictions consumed by the samplers.
type KalmanTarget struct {
	id        int
	center    Point
	predicted Point
	track     []Point
	maxTrack  int
	noMatch   int
	tracker   *kalman_filter.Kalman2D
}

// NewKalmanTargetWithTime creates target at given center with time step dt between frames
func NewKalmanTargetWithTime(id int, center Point, dt float64) *KalmanTarget {
	/* Kalman filter props */
	ux := 1.0
	uy := 1.0
	stdDevA := 2.0
	stdDevMx := 0.1
	stdDevMy := 0.1
	kf := kalman_filter.NewKalman2D(dt, ux, uy, stdDevA, stdDevMx, stdDevMy, kalman_filter.WithState2D(center.X, center.Y))
	target := KalmanTarget{
		id:        id,
		center:    center,
		predicted: center,
		track:     make([]Point, 0, 150),
		maxTrack:  150,
		tracker:   kf,
	}
	target.track = append(target.track, center)
	return &target
}

// NewKalmanTarget creates target with default time step of 1.0
func NewKalmanTarget(id int, center Point) *KalmanTarget {
	return NewKalmanTargetWithTime(id, center, 1.0)
}

// ID returns target's identifier
func (target *KalmanTarget) ID() int {
	return target.id
}

// Center returns target's current (filtered) center
func (target *KalmanTarget) Center() Point {
	return target.center
}

// Predicted returns center predicted by the last call of PredictNextPosition
func (target *KalmanTarget) Predicted() Point {
	return target.predicted
}

// Track returns target's history. Be careful: this is not copy of track, but reference to it
func (target *KalmanTarget) Track() []Point {
	return target.track
}

// NoMatchTimes returns number of consecutive steps without confirming observation
func (target *KalmanTarget) NoMatchTimes() int {
	return target.noMatch
}

// PredictNextPosition executes Kalman filter's prediction step
func (target *KalmanTarget) PredictNextPosition() {
	target.tracker.Predict()
	stateX, stateY := target.tracker.GetState()
	target.predicted.X = stateX
	target.predicted.Y = stateY
}

// Prediction returns predicted state as sampler input
func (target *KalmanTarget) Prediction() Target {
	return NewTarget(target.id, target.predicted.X, target.predicted.Y)
}

// Update corrects target state with confirming observation
func (target *KalmanTarget) Update(observation Point) error {
	err := target.tracker.Update(observation.X, observation.Y)
	if err != nil {
		return errors.Wrapf(err, "Can't update target %d", target.id)
	}
	stateX, stateY := target.tracker.GetState()
	target.center = NewPoint(stateX, stateY)
	target.noMatch = 0
	target.track = append(target.track, target.center)
	if len(target.track) > target.maxTrack {
		target.track = target.track[1:]
	}
	return nil
}

// Miss registers a time step in which target was not detected
func (target *KalmanTarget) Miss() {
	target.noMatch++
	target.center = target.predicted
}

// PredictTargets runs prediction step for all targets and returns their predictions
func PredictTargets(targets []*KalmanTarget) []Target {
	predictions := make([]Target, len(targets))
	for i, target := range targets {
		target.PredictNextPosition()
		predictions[i] = target.Prediction()
	}
	return predictions
}

// ApplyAssociation updates every target confirmed by the association and registers misses for the rest
func ApplyAssociation(targets []*KalmanTarget, observations ObservationSet, association *DataAssociation) error {
	for _, target := range targets {
		obs, ok := association.Observation(target.id)
		if !ok {
			target.Miss()
			continue
		}
		pos := observations.Observations[obs].Position
		if len(pos) < 2 {
			return errors.Errorf("observation %d is not two-dimensional", obs)
		}
		if err := target.Update(NewPoint(pos[0], pos[1])); err != nil {
			return err
		}
	}
	return nil
}
