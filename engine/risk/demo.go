package risk

const (
	// DefaultDemoSamples is the demo series length.
	DefaultDemoSamples = 300
	demoSpread         = 0.05
	demoFallbackBaseA  = 100.0
)

// DemoSeries synthesizes n samples of N(base, (0.05*base)^2) at dt = 1 s for
// runs without measured data. base <= 0 uses 100 A; n <= 0 uses
// DefaultDemoSamples. Results built on it must be scored as advisory.
func DemoSeries(base float64, n int, seed SeedKey) Series {
	if !(base > 0) {
		base = demoFallbackBaseA
	}
	if n <= 0 {
		n = DefaultDemoSamples
	}
	rng := NewPartitionedRNG(seed).ForSubsystem(SubsystemDemo)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = base + rng.NormFloat64()*base*demoSpread
	}
	return Series{Samples: samples, DT: 1.0}
}
