package assessment

import (
	"time"

	"github.com/powercalc/powercalc/engine"
	"github.com/powercalc/powercalc/engine/risk"
	"github.com/powercalc/powercalc/engine/trace"
)

// Report is the structured result of one assessment.
type Report struct {
	ID        string    `json:"id" yaml:"id"`
	Site      string    `json:"site,omitempty" yaml:"site,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Electrical is nil when the nameplate is invalid; ElectricalError says why.
	Electrical      *engine.ElectricalResult `json:"electrical,omitempty" yaml:"electrical,omitempty"`
	ElectricalError string                   `json:"electrical_error,omitempty" yaml:"electrical_error,omitempty"`

	Breaker  engine.BreakerJudgement `json:"breaker" yaml:"breaker"`
	Cable    engine.CableEvaluation  `json:"cable" yaml:"cable"`
	Clearing engine.ClearingTime     `json:"clearing" yaml:"clearing"`
	Thermal  engine.ThermalJudgement `json:"thermal" yaml:"thermal"`
	Verdict  engine.HardVerdict      `json:"verdict" yaml:"verdict"`

	Risk RiskSection `json:"risk" yaml:"risk"`

	Trace        *trace.AssessmentTrace `json:"trace,omitempty" yaml:"trace,omitempty"`
	TraceSummary *trace.TraceSummary    `json:"trace_summary,omitempty" yaml:"trace_summary,omitempty"`
}

// SeriesSummary describes the load series the risk section was computed on.
type SeriesSummary struct {
	Samples   int     `json:"samples" yaml:"samples"`
	DT        float64 `json:"dt_s" yaml:"dt_s"`
	MeanA     float64 `json:"mean_a" yaml:"mean_a"`
	MaxA      float64 `json:"max_a" yaml:"max_a"`
	DurationS float64 `json:"duration_s" yaml:"duration_s"`
	Demo      bool    `json:"demo" yaml:"demo"`
}

// ProtectionSection is the advisory TCC evaluation.
type ProtectionSection struct {
	Settings       *engine.ProtectionSettings `json:"settings,omitempty" yaml:"settings,omitempty"`
	EstimatedTripS *float64                   `json:"estimated_trip_s,omitempty" yaml:"estimated_trip_s,omitempty"`
	Margin         *float64                   `json:"margin,omitempty" yaml:"margin,omitempty"`
	Error          string                     `json:"error,omitempty" yaml:"error,omitempty"`
}

// RiskSection is the operational (advisory) part of the report.
type RiskSection struct {
	Series         SeriesSummary     `json:"series" yaml:"series"`
	Baseline       risk.Baseline     `json:"baseline" yaml:"baseline"`
	EVT            *risk.EVTFit      `json:"evt,omitempty" yaml:"evt,omitempty"`
	EVTError       string            `json:"evt_error,omitempty" yaml:"evt_error,omitempty"`
	Durations      risk.Durations    `json:"durations_s" yaml:"durations_s"`
	MaxDurationS   float64           `json:"max_duration_s" yaml:"max_duration_s"`
	DurationLimitS float64           `json:"duration_limit_s" yaml:"duration_limit_s"`
	OverLimitCount int               `json:"over_limit_count" yaml:"over_limit_count"`
	Protection     ProtectionSection `json:"protection" yaml:"protection"`
	Score          risk.Score        `json:"score" yaml:"score"`
	// External is the weather risk term; it never affects the hard verdict.
	External *float64 `json:"external,omitempty" yaml:"external,omitempty"`
}

// HistoryRecord builds the persisted summary of r for an asset.
func (r *Report) HistoryRecord(assetID int64) HistoryRecord {
	rec := HistoryRecord{
		AssetID:      assetID,
		AssessmentID: r.ID,
		RunAt:        r.CreatedAt,
		HardStatus:   r.Verdict.Status,
		RiskInternal: r.Risk.Score.Total,
		RiskExternal: r.Risk.External,
		DurationMaxS: r.Risk.MaxDurationS,
		DTS:          r.Risk.Series.DT,
		TCCMargin:    r.Risk.Protection.Margin,
		TClearUsedS:  r.Clearing.TUsedS,
		TCCAvailable: r.Risk.Protection.Margin != nil,
	}
	if r.Electrical != nil {
		rated, iscKA := r.Electrical.RatedA, r.Electrical.ShortCircuitA/1000
		rec.RatedA, rec.IscKA = &rated, &iscKA
	}
	if r.Breaker.Status != engine.StatusIndeterminate {
		ok := r.Breaker.Adequate()
		rec.BreakerOK = &ok
	}
	if r.Risk.EVT != nil {
		rec.EVTMethod = r.Risk.EVT.Method
		prob, observed := r.Risk.EVT.ExceedProb, r.Risk.EVT.ObservedExceedSeries
		rec.EVTExceedProb, rec.ObservedExceed = &prob, &observed
	}
	rec.RiskFinal = FinalRisk(rec.RiskInternal, rec.RiskExternal)
	if r.Risk.Series.Demo {
		rec.Note = "demo series"
	}
	return rec
}

// FinalRisk is internal + external. It is nil when internal is nil; a nil
// external counts as 0.
func FinalRisk(internal, external *float64) *float64 {
	if internal == nil {
		return nil
	}
	total := *internal
	if external != nil {
		total += *external
	}
	return &total
}
