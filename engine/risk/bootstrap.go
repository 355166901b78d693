package risk

import (
	"math"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultBootstrapDraws is the number of resamples.
	DefaultBootstrapDraws = 200
	// MinBootstrapSample is the smallest extremes sample that gets an interval.
	MinBootstrapSample = 8
	// MinBootstrapSuccesses is the number of successful refits an interval needs.
	MinBootstrapSuccesses = 20
)

// bootstrap resamples the extremes with replacement, refits each draw and
// returns the 2.5/97.5 percentile interval of the exceedance probability.
// Draws run concurrently; draw i always uses the seed of SubsystemDraw(i),
// so the interval depends on the seed only.
func (e *Estimator) bootstrap(sample []float64, baseline float64) *Interval {
	if len(sample) < MinBootstrapSample {
		return nil
	}
	draws := e.cfg.BootstrapDraws
	rng := NewPartitionedRNG(e.cfg.Seed)
	seeds := make([]int64, draws)
	for i := range seeds {
		seeds[i] = rng.SeedFor(SubsystemDraw(i))
	}

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	probs := make([]float64, draws)
	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < draws; i++ {
		g.Go(func() error {
			probs[i] = math.NaN()
			r := rand.New(rand.NewSource(seeds[i]))
			resample := make([]float64, len(sample))
			for j := range resample {
				resample[j] = sample[r.Intn(len(sample))]
			}
			params, err := FitGEV(resample)
			if err != nil {
				return nil // a failed refit only lowers the success count
			}
			probs[i] = params.ExceedProb(baseline)
			return nil
		})
	}
	_ = g.Wait()

	ok := probs[:0]
	for _, p := range probs {
		if !math.IsNaN(p) {
			ok = append(ok, p)
		}
	}
	if len(ok) < MinBootstrapSuccesses {
		e.log.WithField("successes", len(ok)).Debug("bootstrap interval unavailable")
		return nil
	}
	sort.Float64s(ok)
	return &Interval{
		Low:   stat.Quantile(0.025, stat.LinInterp, ok, nil),
		High:  stat.Quantile(0.975, stat.LinInterp, ok, nil),
		Mean:  stat.Mean(ok, nil),
		Draws: len(ok),
	}
}
