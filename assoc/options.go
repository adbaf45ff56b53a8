package assoc

import (
	"io"

	"github.com/sirupsen/logrus"
)

const (
	defaultNewbornIDStart = 1
	defaultPriorCacheSize = 4096
)

type options struct {
	maxObservations int
	newbornIDStart  int
	// newborn start was set explicitly and is not derived from target IDs
	newbornIDFixed bool
	priorCacheSize int
	logger         logrus.FieldLogger
}

func defaultOptions() options {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return options{
		maxObservations: -1,
		newbornIDStart:  defaultNewbornIDStart,
		priorCacheSize:  defaultPriorCacheSize,
		logger:          logger,
	}
}

// Option configures a sampler
type Option func(*options)

// WithMaxObservations sets expected maximum number of observations per time step.
// Count distributions are tabulated once for [0, n] instead of after every change of observations.
func WithMaxObservations(n int) Option {
	return func(o *options) {
		o.maxObservations = n
	}
}

// WithNewbornIDStart sets the first ID minted for newborn targets. By default newborn IDs start
// right after the largest target ID (and never below 1).
func WithNewbornIDStart(id int) Option {
	return func(o *options) {
		o.newbornIDStart = id
		o.newbornIDFixed = true
	}
}

// WithPriorCacheSize bounds number of memoized joint priors of the lookahead sampler
func WithPriorCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.priorCacheSize = n
		}
	}
}

// WithLogger sets logger for diagnostics. Default logger discards everything.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
