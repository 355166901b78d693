package trace

// TraceSummary aggregates statistics from an AssessmentTrace.
type TraceSummary struct {
	TotalChecks        int            `json:"total_checks" yaml:"total_checks"`
	AdequateCount      int            `json:"adequate" yaml:"adequate"`
	InadequateCount    int            `json:"inadequate" yaml:"inadequate"`
	IndeterminateCount int            `json:"indeterminate" yaml:"indeterminate"`
	FailedChecks       []string       `json:"failed_checks,omitempty" yaml:"failed_checks,omitempty"`
	CodeDistribution   map[string]int `json:"code_distribution" yaml:"code_distribution"` // reason code -> count
	AdvisoryCount      int            `json:"advisory_count" yaml:"advisory_count"`
}

// Summarize computes aggregate statistics from an AssessmentTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(at *AssessmentTrace) *TraceSummary {
	summary := &TraceSummary{
		CodeDistribution: make(map[string]int),
	}
	if at == nil {
		return summary
	}

	summary.TotalChecks = len(at.Checks)
	for _, c := range at.Checks {
		switch c.Status {
		case "ADEQUATE":
			summary.AdequateCount++
		case "INADEQUATE":
			summary.InadequateCount++
			summary.FailedChecks = append(summary.FailedChecks, c.Check)
		default:
			summary.IndeterminateCount++
		}
		summary.CodeDistribution[c.Code]++
	}
	summary.AdvisoryCount = len(at.Advisories)

	return summary
}
