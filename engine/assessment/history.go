package assessment

import (
	"context"
	"math"
	"time"

	"github.com/powercalc/powercalc/engine"
	"github.com/powercalc/powercalc/engine/risk"
)

// HistoryRecord is the persisted summary of one assessment.
type HistoryRecord struct {
	ID             int64                `json:"id" yaml:"id"`
	AssetID        int64                `json:"asset_id" yaml:"asset_id"`
	AssessmentID   string               `json:"assessment_id" yaml:"assessment_id"`
	RunAt          time.Time            `json:"run_at" yaml:"run_at"`
	RatedA         *float64             `json:"rated_a,omitempty" yaml:"rated_a,omitempty"`
	IscKA          *float64             `json:"isc_ka,omitempty" yaml:"isc_ka,omitempty"`
	BreakerOK      *bool                `json:"breaker_ok,omitempty" yaml:"breaker_ok,omitempty"`
	HardStatus     engine.VerdictStatus `json:"hard_status" yaml:"hard_status"`
	RiskInternal   *float64             `json:"risk_internal" yaml:"risk_internal"`
	RiskExternal   *float64             `json:"risk_external" yaml:"risk_external"`
	RiskFinal      *float64             `json:"risk_final" yaml:"risk_final"`
	EVTMethod      risk.SamplingMethod  `json:"evt_method,omitempty" yaml:"evt_method,omitempty"`
	EVTExceedProb  *float64             `json:"evt_exceed_prob,omitempty" yaml:"evt_exceed_prob,omitempty"`
	ObservedExceed *float64             `json:"observed_exceed,omitempty" yaml:"observed_exceed,omitempty"`
	DurationMaxS   float64              `json:"duration_max_s" yaml:"duration_max_s"`
	DTS            float64              `json:"dt_s" yaml:"dt_s"`
	TCCAvailable   bool                 `json:"tcc_available" yaml:"tcc_available"`
	TCCMargin      *float64             `json:"tcc_margin,omitempty" yaml:"tcc_margin,omitempty"`
	TClearUsedS    *float64             `json:"t_clear_used_s,omitempty" yaml:"t_clear_used_s,omitempty"`
	Note           string               `json:"note,omitempty" yaml:"note,omitempty"`
}

// HistoryStore persists assessment summaries per asset.
type HistoryStore interface {
	Append(ctx context.Context, rec HistoryRecord) (int64, error)
	// LastTwo returns at most two records for the asset, newest first.
	LastTwo(ctx context.Context, assetID int64) ([]HistoryRecord, error)
}

// AssetRegistry resolves a nameplate to a persistent asset id.
type AssetRegistry interface {
	EnsureAsset(ctx context.Context, site string, asset engine.AssetSpec) (int64, error)
}

// Trend is the direction of the final risk between two assessments.
type Trend string

const (
	TrendUp      Trend = "UP"
	TrendDown    Trend = "DOWN"
	TrendFlat    Trend = "FLAT"
	TrendUnknown Trend = "UNKNOWN"
)

// flatEpsilon is the largest risk delta still reported as FLAT.
const flatEpsilon = 1e-9

// Comparison contrasts the newest assessment of an asset with the previous one.
type Comparison struct {
	Available    bool                 `json:"available" yaml:"available"`
	Current      *HistoryRecord       `json:"current,omitempty" yaml:"current,omitempty"`
	Previous     *HistoryRecord       `json:"previous,omitempty" yaml:"previous,omitempty"`
	HardChanged  bool                 `json:"hard_changed" yaml:"hard_changed"`
	PreviousHard engine.VerdictStatus `json:"previous_hard,omitempty" yaml:"previous_hard,omitempty"`
	CurrentHard  engine.VerdictStatus `json:"current_hard,omitempty" yaml:"current_hard,omitempty"`
	RiskDelta    *float64             `json:"risk_delta,omitempty" yaml:"risk_delta,omitempty"`
	Trend        Trend                `json:"trend" yaml:"trend"`
}

// Compare takes records newest first (as LastTwo returns them). Fewer than
// two records gives an unavailable comparison. The trend is UNKNOWN when
// either final risk is NA.
func Compare(records []HistoryRecord) Comparison {
	if len(records) < 2 {
		c := Comparison{Trend: TrendUnknown}
		if len(records) == 1 {
			cur := records[0]
			c.Current, c.CurrentHard = &cur, cur.HardStatus
		}
		return c
	}
	cur, prev := records[0], records[1]
	c := Comparison{
		Available:    true,
		Current:      &cur,
		Previous:     &prev,
		CurrentHard:  cur.HardStatus,
		PreviousHard: prev.HardStatus,
		HardChanged:  cur.HardStatus != prev.HardStatus,
		Trend:        TrendUnknown,
	}
	if cur.RiskFinal == nil || prev.RiskFinal == nil {
		return c
	}
	delta := *cur.RiskFinal - *prev.RiskFinal
	c.RiskDelta = &delta
	switch {
	case math.Abs(delta) <= flatEpsilon:
		c.Trend = TrendFlat
	case delta > 0:
		c.Trend = TrendUp
	default:
		c.Trend = TrendDown
	}
	return c
}
