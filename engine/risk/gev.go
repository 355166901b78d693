package risk

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

const (
	// ScaleFloor is the smallest scale used in any density or CDF evaluation.
	ScaleFloor = 1e-6

	// gumbelTol is the |shape| below which the Gumbel limit is used.
	gumbelTol = 1e-6
	// maxAbsShape bounds the shape search to the region where the MLE is regular.
	maxAbsShape = 1.0
	// infeasiblePenalty replaces the likelihood outside the support.
	infeasiblePenalty = 1e10
	eulerGamma        = 0.5772156649015329
)

// ErrFit is returned when a GEV fit cannot be produced.
var ErrFit = errors.New("gev fit failed")

// GEV is a generalized extreme value distribution with
// F(x) = exp(-(1 + Shape*z)^(-1/Shape)), z = (x - Location)/Scale.
// Shape > 0 is the heavy (Frechet) tail, Shape < 0 the bounded (Weibull) tail.
type GEV struct {
	Shape    float64 `json:"shape" yaml:"shape"`
	Location float64 `json:"location" yaml:"location"`
	Scale    float64 `json:"scale" yaml:"scale"`
}

func (g GEV) scale() float64 {
	if math.IsNaN(g.Scale) || g.Scale < ScaleFloor {
		return ScaleFloor
	}
	return g.Scale
}

// CDF returns P(X <= x), always within [0, 1] for finite x.
func (g GEV) CDF(x float64) float64 {
	z := (x - g.Location) / g.scale()
	if math.Abs(g.Shape) < gumbelTol {
		return math.Exp(-math.Exp(-z))
	}
	t := 1 + g.Shape*z
	if t <= 0 {
		if g.Shape > 0 {
			return 0 // below the lower endpoint
		}
		return 1 // above the upper endpoint
	}
	return math.Exp(-math.Pow(t, -1/g.Shape))
}

// ExceedProb returns clamp(1 - CDF(x), 0, 1).
func (g GEV) ExceedProb(x float64) float64 {
	p := 1 - g.CDF(x)
	if math.IsNaN(p) {
		return 0
	}
	return math.Max(0, math.Min(1, p))
}

// Quantile returns x with CDF(x) = p for p in (0, 1).
func (g GEV) Quantile(p float64) (float64, error) {
	if !(p > 0 && p < 1) {
		return 0, fmt.Errorf("quantile probability must be in (0, 1), got %v", p)
	}
	y := -math.Log(p)
	if math.Abs(g.Shape) < gumbelTol {
		return g.Location - g.scale()*math.Log(y), nil
	}
	return g.Location + g.scale()/g.Shape*(math.Pow(y, -g.Shape)-1), nil
}

// ReturnLevel is the level exceeded on average once per period blocks.
func (g GEV) ReturnLevel(period float64) (float64, error) {
	if !(period > 1) {
		return 0, fmt.Errorf("return period must be > 1, got %v", period)
	}
	return g.Quantile(1 - 1/period)
}

// negLogLik is the GEV negative log-likelihood over x = (location, log scale, shape).
func negLogLik(x, data []float64) float64 {
	mu, xi := x[0], x[2]
	sigma := math.Max(math.Exp(x[1]), ScaleFloor)
	if math.IsNaN(mu) || math.IsNaN(xi) || math.Abs(xi) >= maxAbsShape {
		return infeasiblePenalty
	}
	n := float64(len(data))
	nll := n * math.Log(sigma)
	if math.Abs(xi) < gumbelTol {
		for _, v := range data {
			z := (v - mu) / sigma
			nll += z + math.Exp(-z)
		}
	} else {
		for _, v := range data {
			t := 1 + xi*(v-mu)/sigma
			if t <= 0 {
				return infeasiblePenalty
			}
			lt := math.Log(t)
			nll += (1+1/xi)*lt + math.Exp(-lt/xi)
		}
	}
	if math.IsNaN(nll) || math.IsInf(nll, 0) {
		return infeasiblePenalty
	}
	return nll
}

// gumbelMoments returns the method-of-moments Gumbel estimate used as the
// optimizer start point.
func gumbelMoments(data []float64) GEV {
	mean, sd := stat.MeanStdDev(data, nil)
	scale := math.Max(sd*math.Sqrt(6)/math.Pi, ScaleFloor)
	return GEV{Shape: 0, Location: mean - eulerGamma*scale, Scale: scale}
}

// FitGEV fits a GEV to data by maximum likelihood with Nelder-Mead over
// (location, log scale, shape), started from the Gumbel moment estimate.
// A constant sample yields a degenerate fit at the floor scale.
func FitGEV(data []float64) (GEV, error) {
	if len(data) < 2 {
		return GEV{}, fmt.Errorf("%w: need at least 2 points, got %d", ErrFit, len(data))
	}
	mean, sd := stat.MeanStdDev(data, nil)
	if math.IsNaN(sd) || sd*math.Sqrt(6)/math.Pi <= ScaleFloor {
		return GEV{Location: mean, Scale: ScaleFloor}, nil
	}

	// Fit on standardized data so the simplex steps are O(1) for any current range.
	std := make([]float64, len(data))
	for i, v := range data {
		std[i] = (v - mean) / sd
	}
	start := gumbelMoments(std)
	x0 := []float64{start.Location, math.Log(start.Scale), 0}
	problem := optimize.Problem{
		Func: func(x []float64) float64 { return negLogLik(x, std) },
	}
	settings := &optimize.Settings{MajorIterations: 4000, FuncEvaluations: 20000}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})

	best := start
	bestNLL := negLogLik(x0, std)
	if result != nil && len(result.X) == 3 && result.F < bestNLL {
		best = GEV{Location: result.X[0], Scale: math.Exp(result.X[1]), Shape: result.X[2]}
		bestNLL = result.F
	}
	if bestNLL >= infeasiblePenalty {
		return GEV{}, fmt.Errorf("%w: no feasible parameters (optimizer: %v)", ErrFit, err)
	}

	fit := GEV{
		Shape:    best.Shape,
		Location: mean + sd*best.Location,
		Scale:    math.Max(sd*best.Scale, ScaleFloor),
	}
	if math.IsNaN(fit.Location) || math.IsNaN(fit.Scale) || math.IsNaN(fit.Shape) {
		return GEV{}, fmt.Errorf("%w: non-finite parameters", ErrFit)
	}
	return fit, nil
}
