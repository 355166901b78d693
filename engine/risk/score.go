package risk

import (
	"math"

	"github.com/powercalc/powercalc/engine"
)

// DefaultDurationLimitS replaces any duration limit <= 0.
const DefaultDurationLimitS = 5.0

const (
	evtWeight        = 40.0
	timeWeight       = 40.0
	protectionWeight = 20.0
)

// ProtectionNote explains why the protection term is NA or how it was scored.
type ProtectionNote string

const (
	NoteHardNotPass       ProtectionNote = "HARD_VERDICT_NOT_PASS"
	NoteBreakerInadequate ProtectionNote = "BREAKER_NOT_ADEQUATE"
	NoteMarginUnavailable ProtectionNote = "MARGIN_UNAVAILABLE"
	NoteScoredOnShortfall ProtectionNote = "SCORED_ON_MARGIN_SHORTFALL"
)

// ScoreInput are the operational risk inputs of one assessment.
type ScoreInput struct {
	ExceedProb       float64
	MaxDurationS     float64
	DurationLimitS   float64
	ProtectionMargin *float64
	BreakerAdequate  bool
	HardStatus       engine.VerdictStatus
	// Advisory marks demo or otherwise non-binding data; it forces an NA total.
	Advisory bool
}

// Score is the composite risk score. Nil pointers are NA.
type Score struct {
	EVT            float64        `json:"evt_score" yaml:"evt_score"`
	Time           float64        `json:"time_score" yaml:"time_score"`
	Protection     *float64       `json:"protection_score" yaml:"protection_score"`
	Total          *float64       `json:"total" yaml:"total"`
	Level          Level          `json:"level" yaml:"level"`
	ProtectionNote ProtectionNote `json:"protection_note" yaml:"protection_note"`
	Advisory       bool           `json:"advisory" yaml:"advisory"`
}

// Scorer combines the risk terms and maps the total to a level.
type Scorer struct {
	levels LevelTable
}

// NewScorer creates a scorer. An empty table uses DefaultLevelTable.
func NewScorer(levels LevelTable) *Scorer {
	if len(levels) == 0 {
		levels = DefaultLevelTable()
	}
	return &Scorer{levels: levels}
}

// Score computes evt (0..40), time (0..40) and protection (0..20 or NA)
// terms. Protection is NA unless the hard verdict is PASS, the breaker is
// adequate and a margin exists; the pass check is made even though a PASS
// verdict implies an adequate breaker.
func (s *Scorer) Score(in ScoreInput) Score {
	limit := in.DurationLimitS
	if !(limit > 0) || math.IsInf(limit, 0) {
		limit = DefaultDurationLimitS
	}
	out := Score{
		EVT:      clampUnit(in.ExceedProb) * evtWeight,
		Time:     clampUnit(in.MaxDurationS/limit) * timeWeight,
		Advisory: in.Advisory,
	}

	switch {
	case in.HardStatus != engine.VerdictPass:
		out.ProtectionNote = NoteHardNotPass
	case !in.BreakerAdequate:
		out.ProtectionNote = NoteBreakerInadequate
	case in.ProtectionMargin == nil || math.IsNaN(*in.ProtectionMargin):
		out.ProtectionNote = NoteMarginUnavailable
	default:
		p := (1 - clampUnit(*in.ProtectionMargin)) * protectionWeight
		out.Protection = &p
		out.ProtectionNote = NoteScoredOnShortfall
	}

	if !in.Advisory {
		total := out.EVT + out.Time
		if out.Protection != nil {
			total += *out.Protection
		}
		total = math.Max(0, math.Min(100, total))
		out.Total = &total
	}
	out.Level = s.levels.Level(out.Total)
	return out
}

// clampUnit clamps x to [0, 1]; NaN counts as 0.
func clampUnit(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
