package assessment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/powercalc/powercalc/engine"
	"github.com/powercalc/powercalc/engine/risk"
	"github.com/powercalc/powercalc/engine/trace"
)

// Request is one assessment input. All external data (series, ambient,
// humidity) is materialized before Assess is called.
type Request struct {
	// ID is the correlation id; a UUID is generated when empty.
	ID      string             `json:"id,omitempty" yaml:"id,omitempty"`
	Site    string             `json:"site,omitempty" yaml:"site,omitempty"`
	Asset   engine.AssetSpec   `json:"asset" yaml:"asset"`
	Breaker engine.BreakerSpec `json:"breaker" yaml:"breaker"`
	Cable   engine.CableSpec   `json:"cable" yaml:"cable"`
	LoadA   float64            `json:"load_a" yaml:"load_a"`
	// TClearS is the user clearing time for the thermal check.
	TClearS *float64 `json:"t_clear_s,omitempty" yaml:"t_clear_s,omitempty"`
	// OperationalAmbientC overrides Cable.AmbientC for the advisory cable run.
	OperationalAmbientC *float64          `json:"operational_ambient_c,omitempty" yaml:"operational_ambient_c,omitempty"`
	HumidityPct         *float64          `json:"humidity_pct,omitempty" yaml:"humidity_pct,omitempty"`
	Series              *risk.Series      `json:"series,omitempty" yaml:"series,omitempty"`
	Baseline            risk.BaselineKind `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	DurationLimitS      float64           `json:"duration_limit_s,omitempty" yaml:"duration_limit_s,omitempty"`
	Trace               trace.TraceLevel  `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// Validate rejects request-level errors. Missing engineering inputs are not
// errors; they surface as INDETERMINATE judgements.
func (r *Request) Validate() error {
	if !trace.IsValidTraceLevel(string(r.Trace)) {
		return fmt.Errorf("unknown trace level %q; valid: none, checks", r.Trace)
	}
	if _, err := risk.ParseBaselineKind(string(r.Baseline)); err != nil {
		return err
	}
	if r.Series != nil {
		if _, err := risk.NewSeries(r.Series.Samples, r.Series.DT); err != nil {
			return fmt.Errorf("series: %w", err)
		}
	}
	return nil
}

// DecodeRequest parses a request strictly: unknown fields are errors.
// format is "json" or "yaml".
func DecodeRequest(data []byte, format string) (*Request, error) {
	var req Request
	switch format {
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			return nil, fmt.Errorf("parsing request JSON: %w", err)
		}
	case "yaml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&req); err != nil {
			return nil, fmt.Errorf("parsing request YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown request format %q; valid: json, yaml", format)
	}
	return &req, nil
}

// LoadRequest reads a request file. Files ending in .json are JSON; anything
// else is YAML.
func LoadRequest(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading request: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	return DecodeRequest(data, format)
}
