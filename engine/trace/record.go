// Package trace provides per-assessment decision-trace recording.
// This package has no dependencies on engine/ or its sub-packages; it stores pure data types.
package trace

// CheckRecord captures the outcome of a single hard check.
type CheckRecord struct {
	Check  string   `json:"check" yaml:"check"`
	Status string   `json:"status" yaml:"status"`
	Code   string   `json:"code" yaml:"code"`
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`
	Detail string   `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// AdvisoryRecord captures a non-binding step such as the operational cable
// evaluation or a baseline fallback.
type AdvisoryRecord struct {
	Step   string `json:"step" yaml:"step"`
	Detail string `json:"detail" yaml:"detail"`
}
