package risk

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// SamplingMethod names how the extremes sample was built. Exceedance
// probabilities from the two methods are not comparable.
type SamplingMethod string

const (
	MethodBlockMaxima SamplingMethod = "BLOCK_MAXIMA"
	MethodRaw         SamplingMethod = "RAW"
)

const (
	blockSpanS   = 10.0
	minBlockSize = 5
	// MinBlocks is the number of full blocks needed for block maxima.
	MinBlocks = 8
	// DefaultReturnPeriod is the return period, in blocks, of ReturnLevel.
	DefaultReturnPeriod = 50.0
)

// BlockSize returns max(round(10/dt), 5) samples. Halves round to even.
func BlockSize(dt float64) int {
	n := int(math.RoundToEven(blockSpanS / dt))
	if n < minBlockSize {
		return minBlockSize
	}
	return n
}

// Extremes returns per-block maxima when at least MinBlocks full blocks
// exist, otherwise a copy of the raw series. A trailing partial block is dropped.
func Extremes(s Series) (SamplingMethod, int, []float64) {
	size := BlockSize(s.DT)
	blocks := len(s.Samples) / size
	if blocks < MinBlocks {
		return MethodRaw, size, append([]float64(nil), s.Samples...)
	}
	maxima := make([]float64, blocks)
	for b := 0; b < blocks; b++ {
		m := s.Samples[b*size]
		for _, v := range s.Samples[b*size+1 : (b+1)*size] {
			if v > m {
				m = v
			}
		}
		maxima[b] = m
	}
	return MethodBlockMaxima, size, maxima
}

// Interval is a bootstrap percentile interval of the exceedance probability.
type Interval struct {
	Low   float64 `json:"low" yaml:"low"`
	High  float64 `json:"high" yaml:"high"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Draws int     `json:"draws" yaml:"draws"`
}

// EVTFit is the outcome of one extreme value estimation.
type EVTFit struct {
	Method               SamplingMethod `json:"method" yaml:"method"`
	BlockSize            int            `json:"block_size" yaml:"block_size"`
	SampleSize           int            `json:"sample_size" yaml:"sample_size"`
	Params               GEV            `json:"params" yaml:"params"`
	Baseline             float64        `json:"baseline_a" yaml:"baseline_a"`
	ExceedProb           float64        `json:"exceed_prob" yaml:"exceed_prob"`
	CI                   *Interval      `json:"ci,omitempty" yaml:"ci,omitempty"`
	ObservedExceedSeries float64        `json:"observed_exceed_series" yaml:"observed_exceed_series"`
	ObservedExceedSample float64        `json:"observed_exceed_sample" yaml:"observed_exceed_sample"`
	ReturnPeriod         float64        `json:"return_period" yaml:"return_period"`
	ReturnLevel          *float64       `json:"return_level_a,omitempty" yaml:"return_level_a,omitempty"`
}

// EstimatorConfig tunes the estimator. Zero values select the defaults.
type EstimatorConfig struct {
	BootstrapDraws int     `mapstructure:"draws"`
	Workers        int     `mapstructure:"workers"`
	Seed           SeedKey `mapstructure:"seed"`
	ReturnPeriod   float64 `mapstructure:"return_period"`
	// SkipBootstrap disables the confidence interval.
	SkipBootstrap bool `mapstructure:"skip"`
}

// DefaultEstimatorConfig returns 200 draws, seed 2025 and a 50-block return period.
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		BootstrapDraws: DefaultBootstrapDraws,
		Seed:           DefaultSeed,
		ReturnPeriod:   DefaultReturnPeriod,
	}
}

// Estimator fits GEV models to load series. Safe for concurrent use.
type Estimator struct {
	cfg EstimatorConfig
	log logrus.FieldLogger
}

// NewEstimator creates an estimator. A nil log uses the standard logger.
func NewEstimator(cfg EstimatorConfig, log logrus.FieldLogger) *Estimator {
	if cfg.BootstrapDraws <= 0 {
		cfg.BootstrapDraws = DefaultBootstrapDraws
	}
	if !(cfg.ReturnPeriod > 1) {
		cfg.ReturnPeriod = DefaultReturnPeriod
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Estimator{cfg: cfg, log: log}
}

// Config returns the effective configuration.
func (e *Estimator) Config() EstimatorConfig { return e.cfg }

// Estimate fits the extremes of s and evaluates exceedance of baseline.
func (e *Estimator) Estimate(s Series, baseline float64) (EVTFit, error) {
	if math.IsNaN(baseline) || math.IsInf(baseline, 0) {
		return EVTFit{}, fmt.Errorf("baseline must be finite, got %v", baseline)
	}
	if len(s.Samples) == 0 || !(s.DT > 0) {
		return EVTFit{}, fmt.Errorf("%w: use NewSeries", ErrInvalidSeries)
	}
	method, size, sample := Extremes(s)
	fit := EVTFit{
		Method:               method,
		BlockSize:            size,
		SampleSize:           len(sample),
		Baseline:             baseline,
		ObservedExceedSeries: exceedFraction(s.Samples, baseline),
		ObservedExceedSample: exceedFraction(sample, baseline),
		ReturnPeriod:         e.cfg.ReturnPeriod,
	}

	params, err := FitGEV(sample)
	if err != nil {
		return fit, fmt.Errorf("fit %s sample (n=%d): %w", method, len(sample), err)
	}
	fit.Params = params
	fit.ExceedProb = params.ExceedProb(baseline)
	if rl, err := params.ReturnLevel(e.cfg.ReturnPeriod); err == nil && !math.IsInf(rl, 0) && !math.IsNaN(rl) {
		fit.ReturnLevel = &rl
	}

	if !e.cfg.SkipBootstrap {
		fit.CI = e.bootstrap(sample, baseline)
	}
	e.log.WithFields(logrus.Fields{
		"method":      method,
		"n":           len(sample),
		"shape":       params.Shape,
		"exceed_prob": fit.ExceedProb,
		"ci":          fit.CI != nil,
	}).Debug("gev fit complete")
	return fit, nil
}

// exceedFraction is the fraction of values strictly above threshold.
func exceedFraction(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	n := 0
	for _, v := range values {
		if v > threshold {
			n++
		}
	}
	return float64(n) / float64(len(values))
}
