package engine

import (
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powercalc/powercalc/engine/catalog"
	"github.com/powercalc/powercalc/engine/internal/testutil"
)

func newTestResolver(t *testing.T) (*CableResolver, *logtest.Hook) {
	t.Helper()
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	c := catalog.Default()
	return NewCableResolver(c, c.Factors, log), hook
}

func baseCable() CableSpec {
	return CableSpec{
		Material:     MaterialCu,
		Insulation:   InsulationXLPE,
		Install:      InstallTray,
		AmbientC:     testutil.Float64Ptr(30),
		Parallel:     testutil.IntPtr(1),
		Mode:         ModeAuto,
		DesignMargin: 1.25,
	}
}

func TestResolve_Auto_KESC_300A_Picks185(t *testing.T) {
	r, _ := newTestResolver(t)

	// GIVEN I_load=300 A, margin 1.25 against KESC_DEFAULT with unit factors
	j := r.Resolve(baseCable(), 300, "KESC")

	// THEN 150 mm2 (340 A) fails and 185 mm2 (385 A) is chosen
	assert.Equal(t, StatusAdequate, j.Status)
	assert.Equal(t, catalog.ProfileKESCDefault, j.ProfileUsed)
	require.NotNil(t, j.SectionUsedMM2)
	assert.Equal(t, 185.0, *j.SectionUsedMM2)
	testutil.AssertFloat64Equal(t, "I_design", 375, j.IDesignA, 1e-12)
	testutil.AssertFloat64Equal(t, "I_allow_total", 385, j.IAllowTotalA, 1e-12)
	assert.Equal(t, 1.0, j.Factors.Single()*j.Factors.Group)
}

func TestResolve_Auto_ChoosesMinimumQualifyingSection(t *testing.T) {
	r, _ := newTestResolver(t)
	entries, err := catalog.Default().Table(catalog.ProfileIECRealistic1C)
	require.NoError(t, err)

	for load := 10.0; load <= 900; load += 7 {
		spec := baseCable()
		spec.Profile = catalog.ProfileIECRealistic1C
		spec.Install = InstallDuct
		spec.AmbientC = testutil.Float64Ptr(42)
		spec.Parallel = testutil.IntPtr(2)

		j := r.Resolve(spec, load, "IEC")
		if j.Status != StatusAdequate {
			continue
		}
		chosen := *j.SectionUsedMM2
		single := j.Factors.Single()
		for _, e := range entries {
			if e.SectionMM2 >= chosen {
				break
			}
			total := e.BaseAmpacityA * single * 2 * j.Factors.Group
			if total >= j.IDesignA {
				t.Fatalf("load=%v: smaller section %v qualifies (%.1f A >= %.1f A) but %v was chosen",
					load, e.SectionMM2, total, j.IDesignA, chosen)
			}
		}
		if j.IAllowTotalA < j.IDesignA {
			t.Fatalf("load=%v: chosen section does not meet I_design", load)
		}
	}
}

func TestResolve_Auto_UnsortedCustomTable_SameAsSorted(t *testing.T) {
	r, _ := newTestResolver(t)
	sorted := []catalog.Entry{{SectionMM2: 50, BaseAmpacityA: 170}, {SectionMM2: 95, BaseAmpacityA: 260}, {SectionMM2: 150, BaseAmpacityA: 340}, {SectionMM2: 240, BaseAmpacityA: 450}}
	unsorted := []catalog.Entry{sorted[3], sorted[0], sorted[2], sorted[1]}

	a, b := baseCable(), baseCable()
	a.Table, b.Table = sorted, unsorted
	// GIVEN I_design = 240 A x 1.25 = 300 A: 95 mm2 (260 A) fails, 150 mm2 (340 A) passes
	ja := r.Resolve(a, 240, "")
	jb := r.Resolve(b, 240, "")

	assert.Equal(t, catalog.ProfileCustom, jb.ProfileUsed)
	assert.Equal(t, ja.Status, jb.Status)
	assert.Equal(t, *ja.SectionUsedMM2, *jb.SectionUsedMM2)
	assert.Equal(t, 150.0, *jb.SectionUsedMM2)
	assert.Equal(t, 95.0, unsorted[3].SectionMM2, "caller table must not be reordered")
}

func TestResolve_Auto_NoneQualifies_LargestInadequate(t *testing.T) {
	r, _ := newTestResolver(t)
	j := r.Resolve(baseCable(), 700, "KESC")
	assert.Equal(t, StatusInadequate, j.Status)
	assert.Equal(t, 630.0, *j.SectionUsedMM2)
	assert.Equal(t, ReasonCriterionNotMet, j.Reason.Code)
}

func TestResolve_Manual_MapsToNextLargerSection(t *testing.T) {
	r, _ := newTestResolver(t)
	tests := []struct {
		name      string
		section   float64
		wantTable float64
		wantTotal float64
	}{
		{"exact entry", 120, 120, 300},
		{"between entries", 100, 120, 300},
		{"above table max", 800, 630, 800},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := baseCable()
			spec.Mode = ModeManual
			spec.ManualSectionMM2 = testutil.Float64Ptr(tc.section)
			j := r.Resolve(spec, 200, "KESC")
			assert.Equal(t, StatusAdequate, j.Status)
			assert.Equal(t, tc.section, *j.SectionUsedMM2)
			assert.Equal(t, tc.wantTable, *j.TableSectionMM2)
			testutil.AssertFloat64Equal(t, "I_allow_total", tc.wantTotal, j.IAllowTotalA, 1e-12)
		})
	}
}

func TestResolve_Manual_Inadequate(t *testing.T) {
	r, _ := newTestResolver(t)
	spec := baseCable()
	spec.Mode = ModeManual
	spec.ManualSectionMM2 = testutil.Float64Ptr(50)
	j := r.Resolve(spec, 300, "KESC")
	assert.Equal(t, StatusInadequate, j.Status)
}

func TestResolve_MissingFields_Indeterminate(t *testing.T) {
	r, hook := newTestResolver(t)
	spec := baseCable()
	spec.Material = ""
	spec.AmbientC = nil
	spec.Parallel = nil

	j := r.Resolve(spec, 300, "KESC")

	assert.Equal(t, StatusIndeterminate, j.Status)
	assert.Equal(t, ReasonMissingInput, j.Reason.Code)
	assert.Equal(t, []string{"material", "ambient_c", "parallel"}, j.Reason.Fields)
	assert.Nil(t, j.SectionUsedMM2)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}

func TestResolve_InvalidInputs(t *testing.T) {
	r, _ := newTestResolver(t)
	tests := []struct {
		name   string
		mutate func(*CableSpec)
		field  string
	}{
		{"ambient too hot", func(s *CableSpec) { s.AmbientC = testutil.Float64Ptr(150) }, "ambient_c"},
		{"ambient too cold", func(s *CableSpec) { s.AmbientC = testutil.Float64Ptr(-60) }, "ambient_c"},
		{"unknown mode", func(s *CableSpec) { s.Mode = "SEMI" }, "mode"},
		{"manual without section", func(s *CableSpec) { s.Mode = ModeManual }, "manual_section_mm2"},
		{"manual zero section", func(s *CableSpec) { s.Mode = ModeManual; s.ManualSectionMM2 = testutil.Float64Ptr(0) }, "manual_section_mm2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := baseCable()
			tc.mutate(&spec)
			j := r.Resolve(spec, 300, "KESC")
			assert.Equal(t, StatusIndeterminate, j.Status)
			assert.Equal(t, []string{tc.field}, j.Reason.Fields)
		})
	}
}

func TestResolve_ParallelClampedAndMarginReset(t *testing.T) {
	r, _ := newTestResolver(t)
	spec := baseCable()
	spec.Parallel = testutil.IntPtr(0)
	spec.DesignMargin = -2

	j := r.Resolve(spec, 300, "KESC")

	assert.Equal(t, 1, j.Parallel)
	assert.Equal(t, DefaultDesignMargin, j.DesignMargin)
	testutil.AssertFloat64Equal(t, "I_design", 375, j.IDesignA, 1e-12)
	assert.Len(t, j.Notes, 2)
}

func TestResolve_UnknownEnumValues_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*CableSpec)
		field string
	}{
		{"material typo", func(s *CableSpec) { s.Material = "copper" }, "material"},
		{"insulation typo", func(s *CableSpec) { s.Insulation = "xlpe" }, "insulation"},
		{"install typo", func(s *CableSpec) { s.Install = "ladder" }, "install"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, hook := newTestResolver(t)
			spec := baseCable()
			tc.edit(&spec)

			j := r.Resolve(spec, 300, "KESC")

			// THEN a user typo is invalid input, never a catalog gap
			assert.Equal(t, StatusIndeterminate, j.Status)
			assert.Equal(t, ReasonInvalidInput, j.Reason.Code)
			assert.Equal(t, []string{tc.field}, j.Reason.Fields)
			for _, e := range hook.AllEntries() {
				assert.NotEqual(t, logrus.ErrorLevel, e.Level)
			}
		})
	}
}

func TestResolve_CatalogMissingFactorRow_ConfigurationError(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	c := catalog.Default()

	// GIVEN a catalog whose material factors lack the Al row
	factors := c.Factors
	factors.Material = map[string]float64{string(MaterialCu): 1.0}
	r := NewCableResolver(c, factors, log)

	spec := baseCable()
	spec.Material = MaterialAl
	j := r.Resolve(spec, 300, "KESC")

	// THEN the gap is reported as configuration, logged at error level
	assert.Equal(t, StatusIndeterminate, j.Status)
	assert.Equal(t, ReasonConfigurationError, j.Reason.Code)
	if assert.NotNil(t, hook.LastEntry()) {
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	}
}

func TestResolveTable_Selection(t *testing.T) {
	r, hook := newTestResolver(t)
	tests := []struct {
		name     string
		profile  string
		standard string
		want     string
	}{
		{"KESC standard forces KESC table", catalog.ProfileIECRealistic1C, "KESC", catalog.ProfileKESCDefault},
		{"default is conservative", "", "IEC", catalog.ProfileIECConservative},
		{"realistic on request", catalog.ProfileIECRealistic1C, "IEC", catalog.ProfileIECRealistic1C},
		{"conservative on request", catalog.ProfileIECConservative, "IEC", catalog.ProfileIECConservative},
		{"KESC table under IEC tag is not selectable", catalog.ProfileKESCDefault, "IEC", catalog.ProfileIECConservative},
		{"unknown profile falls back", "MYSTERY", "IEC", catalog.ProfileIECConservative},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := baseCable()
			spec.Profile = tc.profile
			_, got, err := r.ResolveTable(spec, tc.standard)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestResolveTable_InvalidCustomTable(t *testing.T) {
	r, _ := newTestResolver(t)
	spec := baseCable()
	spec.Table = []catalog.Entry{{SectionMM2: 50, BaseAmpacityA: 0}}
	j := r.Resolve(spec, 100, "")
	assert.Equal(t, StatusIndeterminate, j.Status)
	assert.Equal(t, ReasonInvalidInput, j.Reason.Code)
}

func TestResolveHardAndOperational_OperationalNeverAltersHard(t *testing.T) {
	r, _ := newTestResolver(t)

	// GIVEN a cable that passes at 30 C but not at 55 C
	spec := baseCable()
	spec.AmbientC = testutil.Float64Ptr(55)

	// WHEN evaluated with an operational ambient of 55 C
	eval := r.ResolveHardAndOperational(spec, 300, "KESC", testutil.Float64Ptr(55))

	// THEN the hard result uses 30 C and the advisory one uses 55 C
	assert.Equal(t, StatusAdequate, eval.Hard.Status)
	assert.Equal(t, HardAmbientC, *eval.Hard.AmbientC)
	assert.Equal(t, 185.0, *eval.Hard.SectionUsedMM2)
	require.NotNil(t, eval.Operational)
	assert.Equal(t, 55.0, *eval.Operational.AmbientC)
	assert.InDelta(t, 0.75, eval.Operational.Factors.Temp, 1e-12)
	assert.Greater(t, *eval.Operational.SectionUsedMM2, *eval.Hard.SectionUsedMM2)

	// AND the hard result equals a standalone run at 30 C
	hardOnly := baseCable()
	assert.Equal(t, r.Resolve(hardOnly, 300, "KESC").IAllowTotalA, eval.Hard.IAllowTotalA)
}

func TestResolveHardAndOperational_NoAmbient_NoAdvisory(t *testing.T) {
	r, _ := newTestResolver(t)
	spec := baseCable()
	spec.AmbientC = nil

	eval := r.ResolveHardAndOperational(spec, 300, "KESC", nil)

	assert.Equal(t, StatusAdequate, eval.Hard.Status)
	assert.Nil(t, eval.Operational)
}
