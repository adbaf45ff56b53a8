package assoc

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	countPoisson = "poisson"
	countFixed   = "fixed"
)

// CountConfig describes clutter or newborn count distribution
type CountConfig struct {
	// "poisson" or "fixed"
	Distribution string `yaml:"distribution"`
	// Mean of Poisson distribution
	Rate float64 `yaml:"rate"`
	// Count of fixed distribution
	Count int `yaml:"count"`
}

// Build creates count distribution
func (cc CountConfig) Build() (CountDistribution, error) {
	switch cc.Distribution {
	case countPoisson, "":
		if cc.Rate < 0 {
			return nil, errors.Errorf("poisson rate must be non-negative, got %v", cc.Rate)
		}
		return NewPoissonCount(cc.Rate), nil
	case countFixed:
		if cc.Count < 0 {
			return nil, errors.Errorf("fixed count must be non-negative, got %d", cc.Count)
		}
		return FixedCount(cc.Count), nil
	default:
		return nil, errors.Errorf("unknown count distribution '%s'", cc.Distribution)
	}
}

// LikelihoodConfig holds parameters of GaussianLikelihood
type LikelihoodConfig struct {
	Sigma float64 `yaml:"sigma"`
	Area  float64 `yaml:"area"`
}

// Config is the YAML configuration of samplers
type Config struct {
	DetectionProbability float64          `yaml:"detection_probability"`
	Clutter              CountConfig      `yaml:"clutter"`
	Newborn              CountConfig      `yaml:"newborn"`
	MaxObservations      int              `yaml:"max_observations"`
	NewbornIDStart       int              `yaml:"newborn_id_start"`
	Lookahead            LookaheadConfig  `yaml:"lookahead"`
	Likelihood           LikelihoodConfig `yaml:"likelihood"`
}

// DefaultConfig returns configuration used when no file is given
func DefaultConfig() Config {
	return Config{
		DetectionProbability: 0.9,
		Clutter:              CountConfig{Distribution: countPoisson, Rate: 0.1},
		Newborn:              CountConfig{Distribution: countPoisson, Rate: 0.05},
		MaxObservations:      64,
		NewbornIDStart:       100,
		Lookahead:            LookaheadConfig{MaxNeighbors: 2, MaxDistance: 25},
		Likelihood:           LikelihoodConfig{Sigma: 2.0, Area: 10000},
	}
}

// LoadConfig reads configuration from YAML file. Missing fields keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "Can't read config '%s'", path)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "Can't load config '%s'", path)
	}
	return cfg, nil
}

// ParseConfig decodes YAML configuration on top of DefaultConfig and validates it
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
		return Config{}, errors.Wrap(err, "Can't decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (cfg Config) Validate() error {
	if _, err := cfg.Model(); err != nil {
		return err
	}
	if cfg.Likelihood.Sigma <= 0 || cfg.Likelihood.Area <= 0 {
		return errors.Errorf("likelihood sigma and area must be positive, got sigma=%v area=%v", cfg.Likelihood.Sigma, cfg.Likelihood.Area)
	}
	return nil
}

// Model builds association model
func (cfg Config) Model() (AssociationModel, error) {
	clutter, err := cfg.Clutter.Build()
	if err != nil {
		return AssociationModel{}, errors.Wrap(err, "clutter")
	}
	newborn, err := cfg.Newborn.Build()
	if err != nil {
		return AssociationModel{}, errors.Wrap(err, "newborn")
	}
	model := AssociationModel{
		ClutterCount:  clutter,
		NewbornCount:  newborn,
		DetectionProb: cfg.DetectionProbability,
	}
	if err := model.Validate(0); err != nil {
		return AssociationModel{}, err
	}
	return model, nil
}

// Options converts configuration into sampler options
func (cfg Config) Options(logger logrus.FieldLogger) []Option {
	opts := []Option{
		WithNewbornIDStart(cfg.NewbornIDStart),
		WithLogger(logger),
	}
	if cfg.MaxObservations > 0 {
		opts = append(opts, WithMaxObservations(cfg.MaxObservations))
	}
	return opts
}
