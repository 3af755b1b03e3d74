// Package config loads the library configuration: which estimator variant
// new models use, the log level, and the hyperparameters of each variant.
//
// Configuration is read from a YAML file named by LINREG_CONFIG, then
// individual keys can be overridden with LINREG_ESTIMATOR and
// LINREG_LOG_LEVEL. Anything left unset keeps its Default value.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/linbridge/pkg/errors"
	"github.com/YuminosukeSato/linbridge/pkg/log"
)

// Environment variables consulted by FromEnv.
const (
	EnvConfigPath = "LINREG_CONFIG"
	EnvEstimator  = "LINREG_ESTIMATOR"
	EnvLogLevel   = "LINREG_LOG_LEVEL"
)

// Estimator variant names.
const (
	KindOLS = "ols"
	KindSGD = "sgd"
)

// Learning rate schedules understood by the SGD variant.
const (
	LearningRateConstant   = "constant"
	LearningRateInvScaling = "invscaling"
)

// Config is the root configuration document.
type Config struct {
	// Estimator is the variant created by new_model ("ols" or "sgd").
	Estimator string `yaml:"estimator"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	OLS OLSConfig `yaml:"ols"`
	SGD SGDConfig `yaml:"sgd"`
}

// OLSConfig holds least-squares hyperparameters.
type OLSConfig struct {
	FitIntercept bool `yaml:"fit_intercept"`
	// Rcond is the relative cutoff below which singular values are treated as zero.
	Rcond float64 `yaml:"rcond"`
	// ParallelThreshold is the row count above which row loops fan out.
	ParallelThreshold int `yaml:"parallel_threshold"`
}

// SGDConfig holds stochastic gradient descent hyperparameters.
type SGDConfig struct {
	FitIntercept  bool    `yaml:"fit_intercept"`
	Alpha         float64 `yaml:"alpha"`
	LearningRate  string  `yaml:"learning_rate"`
	Eta0          float64 `yaml:"eta0"`
	PowerT        float64 `yaml:"power_t"`
	MaxIter       int     `yaml:"max_iter"`
	Tol           float64 `yaml:"tol"`
	NIterNoChange int     `yaml:"n_iter_no_change"`
	Shuffle       bool    `yaml:"shuffle"`
	RandomState   uint64  `yaml:"random_state"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Estimator: KindOLS,
		LogLevel:  "info",
		OLS: OLSConfig{
			FitIntercept:      true,
			Rcond:             1e-12,
			ParallelThreshold: 1000,
		},
		SGD: SGDConfig{
			FitIntercept:  true,
			Alpha:         1e-4,
			LearningRate:  LearningRateInvScaling,
			Eta0:          0.01,
			PowerT:        0.25,
			MaxIter:       10000,
			Tol:           1e-3,
			NIterNoChange: 5,
			Shuffle:       true,
		},
	}
}

// Parse decodes a YAML document on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "config: parse yaml")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}
	return Parse(data)
}

// FromEnv builds the configuration from the process environment.
func FromEnv() (Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigPath); path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return Config{}, err
		}
	}
	if kind := os.Getenv(EnvEstimator); kind != "" {
		cfg.Estimator = strings.ToLower(strings.TrimSpace(kind))
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = level
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Estimator {
	case KindOLS, KindSGD:
	default:
		return invalid("estimator", fmt.Sprintf("unknown estimator %q (want %q or %q)", c.Estimator, KindOLS, KindSGD))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.OLS.Rcond < 0 {
		return invalid("ols.rcond", "must be non-negative")
	}

	s := c.SGD
	switch {
	case s.Alpha < 0:
		return invalid("sgd.alpha", "must be non-negative")
	case s.Eta0 <= 0:
		return invalid("sgd.eta0", "must be positive")
	case s.MaxIter < 1:
		return invalid("sgd.max_iter", "must be at least 1")
	case s.NIterNoChange < 1:
		return invalid("sgd.n_iter_no_change", "must be at least 1")
	}
	switch s.LearningRate {
	case LearningRateConstant, LearningRateInvScaling:
	default:
		return invalid("sgd.learning_rate", fmt.Sprintf("unknown schedule %q", s.LearningRate))
	}
	return nil
}

func invalid(key, msg string) error {
	return errors.NewValueError("config."+key, msg)
}
