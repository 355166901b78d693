package engine

import (
	"fmt"
	"math"

	"github.com/powercalc/powercalc/engine/catalog"
)

// AssetSpec is the transformer nameplate and the applicable standard tag.
type AssetSpec struct {
	VoltageKV    float64 `json:"voltage_kv" yaml:"voltage_kv"`
	CapacityKVA  float64 `json:"capacity_kva" yaml:"capacity_kva"`
	ImpedancePct float64 `json:"impedance_pct" yaml:"impedance_pct"`
	Standard     string  `json:"standard" yaml:"standard"`
}

// ElectricalResult holds the derived currents of one assessment.
type ElectricalResult struct {
	RatedA        float64 `json:"rated_a" yaml:"rated_a"`
	ShortCircuitA float64 `json:"short_circuit_a" yaml:"short_circuit_a"`
	DesignA       float64 `json:"design_a" yaml:"design_a"`
}

// RatedCurrent returns In = S*1000 / (sqrt(3) * V*1000) in amperes.
func RatedCurrent(vKV, sKVA float64) (float64, error) {
	if !finite(vKV) || vKV <= 0 {
		return 0, fmt.Errorf("%w: voltage must be > 0 kV, got %v", ErrInvalidInput, vKV)
	}
	if !finite(sKVA) || sKVA <= 0 {
		return 0, fmt.Errorf("%w: capacity must be > 0 kVA, got %v", ErrInvalidInput, sKVA)
	}
	return (sKVA * 1000.0) / (math.Sqrt(3) * vKV * 1000.0), nil
}

// ShortCircuitCurrent returns Isc = In * 100 / Z% in amperes.
func ShortCircuitCurrent(vKV, sKVA, zPct float64) (float64, error) {
	in, err := RatedCurrent(vKV, sKVA)
	if err != nil {
		return 0, err
	}
	if !finite(zPct) || zPct <= 0 {
		return 0, fmt.Errorf("%w: impedance must be > 0 %%, got %v", ErrInvalidInput, zPct)
	}
	return in * 100.0 / zPct, nil
}

// BreakerJudgement is the outcome of the breaking-capacity check.
type BreakerJudgement struct {
	Status    Status   `json:"status" yaml:"status"`
	IscA      float64  `json:"isc_a" yaml:"isc_a"`
	IcuA      *float64 `json:"icu_a,omitempty" yaml:"icu_a,omitempty"`
	Margin    float64  `json:"margin" yaml:"margin"`
	RequiredA float64  `json:"required_a" yaml:"required_a"`
	Reason    Reason   `json:"reason" yaml:"reason"`
}

// Adequate reports whether the breaker check ran and passed.
func (b BreakerJudgement) Adequate() bool { return b.Status == StatusAdequate }

// JudgeBreaker is ADEQUATE iff Icu*1000 >= Isc*margin. The boundary is inclusive.
func JudgeBreaker(iscA float64, icuKA *float64, standard string, margins catalog.BreakerMargins) BreakerJudgement {
	margin := margins.For(standard)
	j := BreakerJudgement{IscA: iscA, Margin: margin, RequiredA: iscA * margin}
	if icuKA == nil {
		j.Status = StatusIndeterminate
		j.Reason = missing("icu_ka")
		return j
	}
	if !finite(*icuKA) || *icuKA <= 0 {
		j.Status = StatusIndeterminate
		j.Reason = invalid("icu_ka", "breaking capacity must be > 0 kA, got %v", *icuKA)
		return j
	}
	if !finite(iscA) || iscA <= 0 {
		j.Status = StatusIndeterminate
		j.Reason = invalid("isc_a", "short-circuit current must be > 0 A, got %v", iscA)
		return j
	}
	icuA := *icuKA * 1000.0
	j.IcuA = &icuA
	detail := fmt.Sprintf("Icu=%.0f A, Isc*margin=%.0f A (margin %.2f)", icuA, j.RequiredA, margin)
	if icuA >= j.RequiredA {
		j.Status = StatusAdequate
		j.Reason = Reason{Code: ReasonCriterionMet, Detail: detail}
	} else {
		j.Status = StatusInadequate
		j.Reason = Reason{Code: ReasonCriterionNotMet, Detail: detail}
	}
	return j
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
