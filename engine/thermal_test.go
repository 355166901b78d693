package engine

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/powercalc/powercalc/engine/catalog"
	"github.com/powercalc/powercalc/engine/internal/testutil"
)

func newTestThermal(t *testing.T) (*ThermalChecker, *logtest.Hook) {
	t.Helper()
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return NewThermalChecker(catalog.Default(), log), hook
}

func TestCheckThermal_Example_185mm2_Adequate(t *testing.T) {
	c, _ := newTestThermal(t)

	j := c.Check(ThermalInput{
		IscA:       36085,
		TUsedS:     testutil.Float64Ptr(0.2),
		Policy:     PolicyInputOnly,
		SectionMM2: testutil.Float64Ptr(185),
		Material:   MaterialCu,
		Insulation: InsulationXLPE,
	})

	assert.Equal(t, StatusAdequate, j.Status)
	assert.Equal(t, 143.0, j.K)
	testutil.AssertFloat64Equal(t, "lhs", 36085*math.Sqrt(0.2), j.LHS, 1e-12)
	assert.InDelta(t, 16137, j.LHS, 1)
	assert.Equal(t, 26455.0, j.RHS)
	assert.Equal(t, PolicyInputOnly, j.Policy)
}

func TestCheckThermal_BoundaryInclusive(t *testing.T) {
	c, _ := newTestThermal(t)
	in := ThermalInput{
		IscA:       143 * 185,
		TUsedS:     testutil.Float64Ptr(1),
		SectionMM2: testutil.Float64Ptr(185),
		Material:   MaterialCu,
		Insulation: InsulationXLPE,
	}

	// lhs == rhs
	assert.Equal(t, StatusAdequate, c.Check(in).Status)

	// lhs > rhs
	in.IscA++
	assert.Equal(t, StatusInadequate, c.Check(in).Status)
}

func TestCheckThermal_MissingAndInvalid(t *testing.T) {
	c, _ := newTestThermal(t)
	valid := ThermalInput{
		IscA:       36085,
		TUsedS:     testutil.Float64Ptr(0.2),
		SectionMM2: testutil.Float64Ptr(185),
		Material:   MaterialCu,
		Insulation: InsulationXLPE,
	}
	tests := []struct {
		name   string
		mutate func(*ThermalInput)
		code   ReasonCode
	}{
		{"no clearing time", func(in *ThermalInput) { in.TUsedS = nil }, ReasonMissingInput},
		{"no section", func(in *ThermalInput) { in.SectionMM2 = nil }, ReasonMissingInput},
		{"no insulation", func(in *ThermalInput) { in.Insulation = "" }, ReasonMissingInput},
		{"zero clearing time", func(in *ThermalInput) { in.TUsedS = testutil.Float64Ptr(0) }, ReasonInvalidInput},
		{"negative section", func(in *ThermalInput) { in.SectionMM2 = testutil.Float64Ptr(-1) }, ReasonInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			j := c.Check(in)
			assert.Equal(t, StatusIndeterminate, j.Status)
			assert.Equal(t, tc.code, j.Reason.Code)
		})
	}
}

// cuOnlyConstants is a k table with copper rows only.
type cuOnlyConstants struct{}

func (cuOnlyConstants) ThermalConstant(material, insulation string) (float64, error) {
	if material == string(MaterialCu) && insulation == string(InsulationXLPE) {
		return 143, nil
	}
	return 0, catalog.ErrMissingEntry
}

func TestCheckThermal_UnmappedPair_ConfigurationErrorLoggedAtError(t *testing.T) {
	// GIVEN a k table without the Al/XLPE pair
	log, hook := logtest.NewNullLogger()
	c := NewThermalChecker(cuOnlyConstants{}, log)

	// WHEN checked
	j := c.Check(ThermalInput{
		IscA:       36085,
		TUsedS:     testutil.Float64Ptr(0.2),
		SectionMM2: testutil.Float64Ptr(185),
		Material:   MaterialAl,
		Insulation: InsulationXLPE,
	})

	// THEN the result is a configuration gap, logged distinctly at error level
	assert.Equal(t, StatusIndeterminate, j.Status)
	assert.Equal(t, ReasonConfigurationError, j.Reason.Code)
	if assert.NotNil(t, hook.LastEntry()) {
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	}
}

func TestCheckThermal_UnknownInsulation_InvalidInput(t *testing.T) {
	c, hook := newTestThermal(t)

	// GIVEN an insulation the engine does not know
	j := c.Check(ThermalInput{
		IscA:       36085,
		TUsedS:     testutil.Float64Ptr(0.2),
		SectionMM2: testutil.Float64Ptr(185),
		Material:   MaterialCu,
		Insulation: "EPR",
	})

	// THEN it is rejected as input before any catalog lookup
	assert.Equal(t, StatusIndeterminate, j.Status)
	assert.Equal(t, ReasonInvalidInput, j.Reason.Code)
	assert.Equal(t, []string{"insulation"}, j.Reason.Fields)
	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, logrus.ErrorLevel, e.Level)
	}
}

func TestCheckThermal_MissingInputLoggedBelowError(t *testing.T) {
	c, hook := newTestThermal(t)
	c.Check(ThermalInput{IscA: 1000})
	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, logrus.ErrorLevel, e.Level)
	}
}
