package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/powercalc/powercalc/engine/catalog"
)

// Status is the tri-state outcome of a single hard check.
type Status string

const (
	// StatusIndeterminate means the check could not run; more input fixes it.
	StatusIndeterminate Status = "INDETERMINATE"
	// StatusInadequate means the check ran and the criterion was not met.
	StatusInadequate Status = "INADEQUATE"
	// StatusAdequate means the check ran and the criterion was met.
	StatusAdequate Status = "ADEQUATE"
)

// ReasonCode classifies why a judgement has its status.
type ReasonCode string

const (
	ReasonMissingInput       ReasonCode = "MISSING_INPUT"
	ReasonInvalidInput       ReasonCode = "INVALID_INPUT"
	ReasonConfigurationError ReasonCode = "CONFIGURATION_ERROR"
	ReasonCriterionMet       ReasonCode = "CRITERION_MET"
	ReasonCriterionNotMet    ReasonCode = "CRITERION_NOT_MET"
)

var (
	// ErrInvalidInput marks malformed or out-of-range numeric input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfiguration marks missing reference data, such as an unmapped
	// material/insulation pair. It indicates a catalog gap, not a user error.
	ErrConfiguration = errors.New("configuration error")
)

// Reason is the structured explanation attached to every judgement.
// Detail is a machine-oriented message; locale text is rendered elsewhere.
type Reason struct {
	Code   ReasonCode `json:"code" yaml:"code"`
	Fields []string   `json:"fields,omitempty" yaml:"fields,omitempty"`
	Detail string     `json:"detail,omitempty" yaml:"detail,omitempty"`
}

func (r Reason) String() string {
	var b strings.Builder
	b.WriteString(string(r.Code))
	if len(r.Fields) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(r.Fields, ", "))
	}
	if r.Detail != "" {
		b.WriteString(": ")
		b.WriteString(r.Detail)
	}
	return b.String()
}

func missing(fields ...string) Reason {
	return Reason{Code: ReasonMissingInput, Fields: fields}
}

func invalid(field, format string, args ...any) Reason {
	return Reason{Code: ReasonInvalidInput, Fields: []string{field}, Detail: fmt.Sprintf(format, args...)}
}

// reasonFromError maps a wrapped sentinel to its reason code.
func reasonFromError(err error) Reason {
	switch {
	case errors.Is(err, ErrConfiguration), errors.Is(err, catalog.ErrMissingEntry):
		return Reason{Code: ReasonConfigurationError, Detail: err.Error()}
	default:
		return Reason{Code: ReasonInvalidInput, Detail: err.Error()}
	}
}

// configErr lifts a catalog lookup failure into ErrConfiguration.
func configErr(err error) error {
	return fmt.Errorf("%w: %w", ErrConfiguration, err)
}
