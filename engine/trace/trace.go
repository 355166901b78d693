package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelChecks captures every hard check and advisory step.
	TraceLevelChecks TraceLevel = "checks"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelChecks: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel `json:"level" yaml:"level"`
}

// AssessmentTrace collects decision records during one assessment.
type AssessmentTrace struct {
	Config     TraceConfig      `json:"config" yaml:"config"`
	Checks     []CheckRecord    `json:"checks" yaml:"checks"`
	Advisories []AdvisoryRecord `json:"advisories" yaml:"advisories"`
}

// NewAssessmentTrace creates an AssessmentTrace ready for recording.
func NewAssessmentTrace(config TraceConfig) *AssessmentTrace {
	return &AssessmentTrace{
		Config:     config,
		Checks:     make([]CheckRecord, 0),
		Advisories: make([]AdvisoryRecord, 0),
	}
}

// Enabled reports whether records are kept. Safe on a nil trace.
func (at *AssessmentTrace) Enabled() bool {
	return at != nil && at.Config.Level == TraceLevelChecks
}

// RecordCheck appends a check record. No-op when tracing is disabled.
func (at *AssessmentTrace) RecordCheck(record CheckRecord) {
	if !at.Enabled() {
		return
	}
	at.Checks = append(at.Checks, record)
}

// RecordAdvisory appends an advisory record. No-op when tracing is disabled.
func (at *AssessmentTrace) RecordAdvisory(record AdvisoryRecord) {
	if !at.Enabled() {
		return
	}
	at.Advisories = append(at.Advisories, record)
}
