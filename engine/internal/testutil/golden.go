// Package testutil provides shared test infrastructure for the engine
// packages: the golden scenario dataset and float assertion helpers.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// ScenarioDataset represents the structure of testdata/scenarios.json.
type ScenarioDataset struct {
	Scenarios []Scenario `json:"scenarios"`
}

// Scenario is one end-to-end hard-check case with its expected outcome.
type Scenario struct {
	Name         string   `json:"name"`
	VoltageKV    float64  `json:"voltage_kv"`
	CapacityKVA  float64  `json:"capacity_kva"`
	ImpedancePct float64  `json:"impedance_pct"`
	Standard     string   `json:"standard"`
	IcuKA        *float64 `json:"icu_ka"`
	LoadA        float64  `json:"load_a"`
	Material     string   `json:"material"`
	Insulation   string   `json:"insulation"`
	Install      string   `json:"install"`
	AmbientC     *float64 `json:"ambient_c"`
	Parallel     *int     `json:"parallel"`
	Mode         string   `json:"mode"`
	ManualMM2    *float64 `json:"manual_section_mm2"`
	DesignMargin float64  `json:"design_margin"`
	TClearS      *float64 `json:"t_clear_s"`
	Expected     Expected `json:"expected"`
}

// Expected holds the asserted outputs of a scenario. Zero floats are not checked.
type Expected struct {
	RatedA        float64  `json:"rated_a"`
	IscA          float64  `json:"isc_a"`
	BreakerStatus string   `json:"breaker_status"`
	CableStatus   string   `json:"cable_status"`
	SectionMM2    float64  `json:"section_mm2"`
	IAllowTotalA  float64  `json:"i_allow_total_a"`
	ThermalStatus string   `json:"thermal_status"`
	Verdict       string   `json:"verdict"`
	Causes        []string `json:"causes"`
}

// LoadScenarios loads the scenario dataset from the repository testdata directory.
// The path is resolved relative to this source file: engine/internal/testutil/ -> testdata/.
func LoadScenarios(t *testing.T) *ScenarioDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "scenarios.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read scenario dataset: %v", err)
	}

	var dataset ScenarioDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse scenario dataset: %v", err)
	}
	if len(dataset.Scenarios) == 0 {
		t.Fatal("scenario dataset is empty")
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertInUnitInterval fails when p is NaN or outside [0, 1].
func AssertInUnitInterval(t *testing.T, name string, p float64) {
	t.Helper()
	if math.IsNaN(p) || p < 0 || p > 1 {
		t.Errorf("%s: got %v, want a value in [0, 1]", name, p)
	}
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
