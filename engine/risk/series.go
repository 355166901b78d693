package risk

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrInvalidSeries is returned for empty series, non-finite samples or dt <= 0.
var ErrInvalidSeries = errors.New("invalid load series")

// Series is an ordered sequence of current samples (A) at a fixed interval DT (s).
type Series struct {
	Samples []float64 `json:"samples" yaml:"samples"`
	DT      float64   `json:"dt_s" yaml:"dt_s"`
}

// NewSeries validates and copies samples. DT must be finite and > 0.
func NewSeries(samples []float64, dt float64) (Series, error) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return Series{}, fmt.Errorf("%w: dt must be > 0 s, got %v", ErrInvalidSeries, dt)
	}
	if len(samples) == 0 {
		return Series{}, fmt.Errorf("%w: no samples", ErrInvalidSeries)
	}
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Series{}, fmt.Errorf("%w: sample %d is not finite", ErrInvalidSeries, i)
		}
	}
	out := make([]float64, len(samples))
	copy(out, samples)
	return Series{Samples: out, DT: dt}, nil
}

// Len returns the number of samples.
func (s Series) Len() int { return len(s.Samples) }

// Mean returns the arithmetic mean of the samples.
func (s Series) Mean() float64 { return stat.Mean(s.Samples, nil) }

// Max returns the largest sample.
func (s Series) Max() float64 { return floats.Max(s.Samples) }

// Duration returns the covered time span in seconds.
func (s Series) Duration() float64 { return float64(len(s.Samples)) * s.DT }
