package trace

import "testing"

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	at := NewAssessmentTrace(TraceConfig{Level: TraceLevelChecks})

	// WHEN summarized
	summary := Summarize(at)

	// THEN all counts are zero
	if summary.TotalChecks != 0 || summary.AdvisoryCount != 0 {
		t.Errorf("expected zero counts, got %+v", summary)
	}
	if len(summary.CodeDistribution) != 0 {
		t.Error("expected empty code distribution")
	}
}

func TestSummarize_NilTrace(t *testing.T) {
	if s := Summarize(nil); s.TotalChecks != 0 || s.CodeDistribution == nil {
		t.Errorf("unexpected summary for nil trace: %+v", s)
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with one check per outcome
	at := NewAssessmentTrace(TraceConfig{Level: TraceLevelChecks})
	at.RecordCheck(CheckRecord{Check: "breaker", Status: "ADEQUATE", Code: "CRITERION_MET"})
	at.RecordCheck(CheckRecord{Check: "cable", Status: "INADEQUATE", Code: "CRITERION_NOT_MET"})
	at.RecordCheck(CheckRecord{Check: "thermal", Status: "INDETERMINATE", Code: "MISSING_INPUT"})
	at.RecordAdvisory(AdvisoryRecord{Step: "operational_cable", Detail: "ADEQUATE at 35 C"})

	// WHEN summarized
	summary := Summarize(at)

	// THEN counts match
	if summary.TotalChecks != 3 {
		t.Errorf("expected 3 checks, got %d", summary.TotalChecks)
	}
	if summary.AdequateCount != 1 || summary.InadequateCount != 1 || summary.IndeterminateCount != 1 {
		t.Errorf("unexpected status counts: %+v", summary)
	}
	if len(summary.FailedChecks) != 1 || summary.FailedChecks[0] != "cable" {
		t.Errorf("expected failed checks [cable], got %v", summary.FailedChecks)
	}
	if summary.CodeDistribution["MISSING_INPUT"] != 1 {
		t.Errorf("expected 1 MISSING_INPUT, got %d", summary.CodeDistribution["MISSING_INPUT"])
	}
	if summary.AdvisoryCount != 1 {
		t.Errorf("expected 1 advisory, got %d", summary.AdvisoryCount)
	}
}
