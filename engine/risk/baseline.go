package risk

import "fmt"

// BaselineKind selects the threshold for exceedance and peak durations.
type BaselineKind string

const (
	BaselineDesign   BaselineKind = "DESIGN"
	BaselineLoad     BaselineKind = "LOAD"
	BaselineAllow30C BaselineKind = "ALLOW_30C"
	// BaselineMean is only ever a fallback, never a request.
	BaselineMean BaselineKind = "MEAN"
)

// ParseBaselineKind accepts "" (default selection) and the three requestable kinds.
func ParseBaselineKind(s string) (BaselineKind, error) {
	switch k := BaselineKind(s); k {
	case "", BaselineDesign, BaselineLoad, BaselineAllow30C:
		return k, nil
	default:
		return "", fmt.Errorf("unknown baseline %q (want DESIGN, LOAD or ALLOW_30C)", s)
	}
}

// BaselineCandidates are the currents a baseline can be chosen from.
type BaselineCandidates struct {
	DesignA   *float64
	LoadA     *float64
	Allow30CA *float64
}

// Baseline is the selected threshold. Fallback is set when Used differs
// from Requested.
type Baseline struct {
	Requested BaselineKind `json:"requested" yaml:"requested"`
	Used      BaselineKind `json:"used" yaml:"used"`
	ValueA    float64      `json:"value_a" yaml:"value_a"`
	Fallback  bool         `json:"fallback" yaml:"fallback"`
}

// SelectBaseline resolves kind against the candidates. An empty kind means
// DESIGN when a design current exists, else LOAD. A missing choice falls back
// to LOAD, then to the series mean.
func SelectBaseline(kind BaselineKind, c BaselineCandidates, s Series) Baseline {
	if kind == "" {
		kind = BaselineLoad
		if c.DesignA != nil {
			kind = BaselineDesign
		}
	}
	b := Baseline{Requested: kind}
	var chosen *float64
	switch kind {
	case BaselineDesign:
		chosen = c.DesignA
	case BaselineLoad:
		chosen = c.LoadA
	case BaselineAllow30C:
		chosen = c.Allow30CA
	}
	switch {
	case chosen != nil:
		b.Used, b.ValueA = kind, *chosen
	case c.LoadA != nil:
		b.Used, b.ValueA = BaselineLoad, *c.LoadA
	default:
		b.Used, b.ValueA = BaselineMean, s.Mean()
	}
	b.Fallback = b.Used != kind
	return b
}
