package engine

import (
	"fmt"
	"math"

	"github.com/powercalc/powercalc/engine/catalog"
)

// BreakerSpec is the breaker nameplate plus optional protection settings.
type BreakerSpec struct {
	IcuKA   *float64 `json:"icu_ka,omitempty" yaml:"icu_ka,omitempty"`
	PickupA *float64 `json:"pickup_a,omitempty" yaml:"pickup_a,omitempty"`
	TMS     *float64 `json:"tms,omitempty" yaml:"tms,omitempty"`
}

// Protection heuristic constants used when settings are not supplied.
const (
	heuristicPickupFactor  = 1.25
	heuristicTMS           = 0.10
	heuristicMinLoadRatio  = 0.8
	heuristicRaiseFactor   = 1.10
	heuristicIscCeilFactor = 0.3
)

// Curve evaluates an inverse-time characteristic t = TMS*K / ((I/Ip)^Alpha - 1).
type Curve struct {
	catalog.Curve
}

// NewCurve wraps catalog curve constants.
func NewCurve(c catalog.Curve) Curve { return Curve{Curve: c} }

// TripTime returns the operating time in seconds. It is only defined for
// currentA > pickupA.
func (c Curve) TripTime(currentA, pickupA, tms float64) (float64, error) {
	if !finite(pickupA) || pickupA <= 0 || !finite(tms) || tms <= 0 {
		return 0, fmt.Errorf("%w: pickup and TMS must be > 0 (pickup=%v, tms=%v)", ErrInvalidInput, pickupA, tms)
	}
	if !finite(currentA) || currentA <= pickupA {
		return 0, fmt.Errorf("%w: current %v A does not exceed pickup %v A", ErrInvalidInput, currentA, pickupA)
	}
	return tms * c.K / (math.Pow(currentA/pickupA, c.Alpha) - 1), nil
}

// Margin returns the protection margin in [0, 1], 1 meaning no exposure.
// A peak at or below pickup gives 1; a peak lasting at least the trip time gives 0.
func (c Curve) Margin(peakA, durationS, pickupA, tms float64) (float64, error) {
	if !finite(durationS) || durationS < 0 {
		return 0, fmt.Errorf("%w: peak duration must be >= 0 s, got %v", ErrInvalidInput, durationS)
	}
	if !finite(pickupA) || pickupA <= 0 || !finite(tms) || tms <= 0 {
		return 0, fmt.Errorf("%w: pickup and TMS must be > 0 (pickup=%v, tms=%v)", ErrInvalidInput, pickupA, tms)
	}
	if peakA <= pickupA {
		return 1.0, nil
	}
	tTrip, err := c.TripTime(peakA, pickupA, tms)
	if err != nil {
		return 0, err
	}
	if durationS >= tTrip {
		return 0.0, nil
	}
	return clamp01(1.0 - durationS/tTrip), nil
}

// CurvePoint is one sample of a tabulated characteristic.
type CurvePoint struct {
	CurrentA float64 `json:"current_a" yaml:"current_a"`
	TimeS    float64 `json:"time_s" yaml:"time_s"`
}

// Points tabulates n log-spaced points from 1.05x pickup to maxA.
func (c Curve) Points(pickupA, tms, maxA float64, n int) ([]CurvePoint, error) {
	lo := pickupA * 1.05
	if n < 2 || !(maxA > lo) {
		return nil, fmt.Errorf("%w: need n >= 2 and max current above 1.05x pickup", ErrInvalidInput)
	}
	step := (math.Log10(maxA) - math.Log10(lo)) / float64(n-1)
	points := make([]CurvePoint, 0, n)
	for i := 0; i < n; i++ {
		current := math.Pow(10, math.Log10(lo)+step*float64(i))
		t, err := c.TripTime(current, pickupA, tms)
		if err != nil {
			return nil, err
		}
		points = append(points, CurvePoint{CurrentA: current, TimeS: t})
	}
	return points, nil
}

// ProtectionSettings are the pickup and TMS used for the margin. Heuristic
// is true when any value was derived rather than supplied; such values are
// not regulatory settings.
type ProtectionSettings struct {
	PickupA   float64  `json:"pickup_a" yaml:"pickup_a"`
	TMS       float64  `json:"tms" yaml:"tms"`
	Heuristic bool     `json:"heuristic" yaml:"heuristic"`
	Notes     []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// DeriveSettings fills missing pickup/TMS: pickup = 1.25 x base (rated
// current when known, else load), TMS = 0.10, pickup raised to 1.10 x load
// when below 0.8 x load, and lowered to 0.3 x Isc when at or above Isc.
func DeriveSettings(b BreakerSpec, ratedA *float64, loadA, iscA float64) ProtectionSettings {
	var s ProtectionSettings
	if b.PickupA != nil && *b.PickupA > 0 {
		s.PickupA = *b.PickupA
	} else {
		base, label := loadA, "load"
		if ratedA != nil && *ratedA > 0 {
			base, label = *ratedA, "rated"
		}
		s.PickupA = heuristicPickupFactor * base
		s.Heuristic = true
		s.Notes = append(s.Notes, fmt.Sprintf("pickup derived as %.2f x %s current", heuristicPickupFactor, label))
		if s.PickupA < heuristicMinLoadRatio*loadA {
			s.PickupA = heuristicRaiseFactor * loadA
			s.Notes = append(s.Notes, fmt.Sprintf("pickup raised to %.2f x load current", heuristicRaiseFactor))
		}
		if iscA > 0 && s.PickupA >= iscA {
			s.PickupA = heuristicIscCeilFactor * iscA
			s.Notes = append(s.Notes, fmt.Sprintf("pickup lowered to %.1f x Isc", heuristicIscCeilFactor))
		}
	}
	if b.TMS != nil && *b.TMS > 0 {
		s.TMS = *b.TMS
	} else {
		s.TMS = heuristicTMS
		s.Heuristic = true
		s.Notes = append(s.Notes, fmt.Sprintf("TMS defaulted to %.2f", heuristicTMS))
	}
	return s
}

// ClearingPolicy records how the clearing time for the thermal check was chosen.
type ClearingPolicy string

const (
	PolicyMax       ClearingPolicy = "MAX"
	PolicyTCCOnly   ClearingPolicy = "TCC_ONLY"
	PolicyInputOnly ClearingPolicy = "INPUT_ONLY"
	PolicyNone      ClearingPolicy = "NONE"
)

// ClearingTime is the selected t_used and the policy that produced it.
type ClearingTime struct {
	TUsedS *float64       `json:"t_used_s,omitempty" yaml:"t_used_s,omitempty"`
	Policy ClearingPolicy `json:"policy" yaml:"policy"`
}

// SelectClearingTime takes the larger of the user and estimated times when
// both exist, otherwise whichever exists. Non-positive values count as absent.
func SelectClearingTime(inputS, estimatedS *float64) ClearingTime {
	in, est := positive(inputS), positive(estimatedS)
	switch {
	case in != nil && est != nil:
		t := math.Max(*in, *est)
		return ClearingTime{TUsedS: &t, Policy: PolicyMax}
	case est != nil:
		t := *est
		return ClearingTime{TUsedS: &t, Policy: PolicyTCCOnly}
	case in != nil:
		t := *in
		return ClearingTime{TUsedS: &t, Policy: PolicyInputOnly}
	default:
		return ClearingTime{Policy: PolicyNone}
	}
}

func positive(v *float64) *float64 {
	if v == nil || !finite(*v) || *v <= 0 {
		return nil
	}
	return v
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
