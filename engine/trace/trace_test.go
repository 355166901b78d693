package trace

import (
	"testing"
)

func TestAssessmentTrace_RecordCheck_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for checks
	at := NewAssessmentTrace(TraceConfig{Level: TraceLevelChecks})

	// WHEN a check record is recorded
	at.RecordCheck(CheckRecord{Check: "breaker", Status: "ADEQUATE", Code: "CRITERION_MET"})

	// THEN the trace contains one record with correct data
	if len(at.Checks) != 1 {
		t.Fatalf("expected 1 check, got %d", len(at.Checks))
	}
	if at.Checks[0].Check != "breaker" {
		t.Errorf("expected check breaker, got %s", at.Checks[0].Check)
	}
}

func TestAssessmentTrace_LevelNone_RecordsNothing(t *testing.T) {
	// GIVEN a disabled trace
	at := NewAssessmentTrace(TraceConfig{Level: TraceLevelNone})

	// WHEN records are added
	at.RecordCheck(CheckRecord{Check: "cable"})
	at.RecordAdvisory(AdvisoryRecord{Step: "baseline", Detail: "fallback"})

	// THEN nothing is kept
	if len(at.Checks) != 0 || len(at.Advisories) != 0 {
		t.Errorf("expected empty trace, got %d checks and %d advisories", len(at.Checks), len(at.Advisories))
	}
}

func TestAssessmentTrace_NilIsSafe(t *testing.T) {
	var at *AssessmentTrace
	at.RecordCheck(CheckRecord{Check: "thermal"})
	if at.Enabled() {
		t.Error("nil trace must report disabled")
	}
}

func TestAssessmentTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	at := NewAssessmentTrace(TraceConfig{Level: TraceLevelChecks})
	at.RecordCheck(CheckRecord{Check: "breaker"})
	at.RecordCheck(CheckRecord{Check: "cable"})
	at.RecordCheck(CheckRecord{Check: "thermal"})

	if at.Checks[0].Check != "breaker" || at.Checks[1].Check != "cable" || at.Checks[2].Check != "thermal" {
		t.Error("check order not preserved")
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"checks", true},
		{"", true}, // empty defaults to none
		{"decisions", false},
		{"CHECKS", false}, // case-sensitive
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := IsValidTraceLevel(tt.level); got != tt.valid {
				t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
			}
		})
	}
}
