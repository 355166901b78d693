package risk

import (
	"fmt"
	"sort"
)

// Level is the qualitative risk band of a total score.
type Level string

const (
	LevelVeryHigh Level = "VERY_HIGH"
	LevelHigh     Level = "HIGH"
	LevelModerate Level = "MODERATE"
	LevelLow      Level = "LOW"
	LevelVeryLow  Level = "VERY_LOW"
	// LevelAdvisory marks an NA total; it is never a numeric band.
	LevelAdvisory Level = "ADVISORY"
)

// Threshold maps totals >= Min to Level.
type Threshold struct {
	Min   float64 `json:"min" yaml:"min"`
	Level Level   `json:"level" yaml:"level"`
}

// LevelTable is ordered by descending Min. Totals below every Min are VERY_LOW.
type LevelTable []Threshold

// LevelThresholds are the four cut points of a LevelTable.
type LevelThresholds struct {
	VeryHigh float64 `mapstructure:"very_high"`
	High     float64 `mapstructure:"high"`
	Moderate float64 `mapstructure:"moderate"`
	Low      float64 `mapstructure:"low"`
}

// DefaultLevelThresholds are the 80/60/40/20 cut points.
func DefaultLevelThresholds() LevelThresholds {
	return LevelThresholds{VeryHigh: 80, High: 60, Moderate: 40, Low: 20}
}

// DefaultLevelTable returns the 80/60/40/20 table.
func DefaultLevelTable() LevelTable {
	t, _ := NewLevelTable(DefaultLevelThresholds())
	return t
}

// NewLevelTable validates that cut points are strictly decreasing within [0, 100].
func NewLevelTable(th LevelThresholds) (LevelTable, error) {
	t := LevelTable{
		{Min: th.VeryHigh, Level: LevelVeryHigh},
		{Min: th.High, Level: LevelHigh},
		{Min: th.Moderate, Level: LevelModerate},
		{Min: th.Low, Level: LevelLow},
	}
	for i, row := range t {
		if row.Min < 0 || row.Min > 100 {
			return nil, fmt.Errorf("level threshold %s=%v outside [0, 100]", row.Level, row.Min)
		}
		if i > 0 && !(row.Min < t[i-1].Min) {
			return nil, fmt.Errorf("level thresholds must strictly decrease: %s=%v, %s=%v", t[i-1].Level, t[i-1].Min, row.Level, row.Min)
		}
	}
	return t, nil
}

// Level maps a total to its band. A nil total is LevelAdvisory.
func (t LevelTable) Level(total *float64) Level {
	if total == nil {
		return LevelAdvisory
	}
	rows := append(LevelTable(nil), t...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Min > rows[j].Min })
	for _, row := range rows {
		if *total >= row.Min {
			return row.Level
		}
	}
	return LevelVeryLow
}
