package risk

// Durations are the lengths, in seconds, of contiguous runs at or above a
// baseline, in order of occurrence.
type Durations []float64

// PeakDurations scans s and records every run with samples >= baseline,
// including a run still open at the end of the series.
func PeakDurations(s Series, baseline float64) Durations {
	out := Durations{}
	run := 0
	for _, v := range s.Samples {
		if v >= baseline {
			run++
			continue
		}
		if run > 0 {
			out = append(out, float64(run)*s.DT)
			run = 0
		}
	}
	if run > 0 {
		out = append(out, float64(run)*s.DT)
	}
	return out
}

// Max returns the longest duration, or 0 for an empty set.
func (d Durations) Max() float64 {
	m := 0.0
	for _, v := range d {
		if v > m {
			m = v
		}
	}
	return m
}

// CountOver returns how many durations strictly exceed limit.
func (d Durations) CountOver(limit float64) int {
	n := 0
	for _, v := range d {
		if v > limit {
			n++
		}
	}
	return n
}
