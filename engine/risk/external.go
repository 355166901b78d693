package risk

import "math"

const maxExternalScore = 20.0

// ExternalScore rates weather stress on a 0..20 scale: +5 at >= 35 C
// (else +2 at >= 30 C) and +2 at >= 80 % relative humidity. Missing
// observations add nothing. The score is advisory and never feeds the hard verdict.
func ExternalScore(tempC, humidityPct *float64) float64 {
	score := 0.0
	if tempC != nil {
		switch {
		case *tempC >= 35:
			score += 5
		case *tempC >= 30:
			score += 2
		}
	}
	if humidityPct != nil && *humidityPct >= 80 {
		score += 2
	}
	return math.Max(0, math.Min(maxExternalScore, score))
}
