package engine

// VerdictStatus is the combined hard engineering outcome.
type VerdictStatus string

const (
	VerdictFail     VerdictStatus = "FAIL"
	VerdictNeedMore VerdictStatus = "NEED_MORE"
	VerdictPass     VerdictStatus = "PASS"
)

// Cause tags explain a non-PASS verdict.
type Cause string

const (
	CauseBreakerUndersized        Cause = "BREAKER_UNDERSIZED"
	CauseCableUndersized          Cause = "CABLE_UNDERSIZED"
	CauseThermalWithstandExceeded Cause = "THERMAL_WITHSTAND_EXCEEDED"
	CauseBreakerInputMissing      Cause = "BREAKER_INPUT_MISSING"
	CauseCableInputMissing        Cause = "CABLE_INPUT_MISSING"
	CauseThermalInputMissing      Cause = "THERMAL_INPUT_MISSING"
)

// HardVerdict is the PASS/FAIL/NEED_MORE classification with ordered causes.
type HardVerdict struct {
	Status VerdictStatus `json:"status" yaml:"status"`
	Causes []Cause       `json:"causes,omitempty" yaml:"causes,omitempty"`
}

// Classify combines the three hard checks. Precedence, highest first:
// breaker INADEQUATE; cable or thermal INADEQUATE; any INDETERMINATE; PASS.
func Classify(breaker, cable, thermal Status) HardVerdict {
	if breaker == StatusInadequate {
		return HardVerdict{Status: VerdictFail, Causes: []Cause{CauseBreakerUndersized}}
	}

	var causes []Cause
	if cable == StatusInadequate {
		causes = append(causes, CauseCableUndersized)
	}
	if thermal == StatusInadequate {
		causes = append(causes, CauseThermalWithstandExceeded)
	}
	if len(causes) > 0 {
		return HardVerdict{Status: VerdictFail, Causes: causes}
	}

	if breaker != StatusAdequate {
		causes = append(causes, CauseBreakerInputMissing)
	}
	if cable != StatusAdequate {
		causes = append(causes, CauseCableInputMissing)
	}
	if thermal != StatusAdequate {
		causes = append(causes, CauseThermalInputMissing)
	}
	if len(causes) > 0 {
		return HardVerdict{Status: VerdictNeedMore, Causes: causes}
	}
	return HardVerdict{Status: VerdictPass}
}
