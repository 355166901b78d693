package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/powercalc/powercalc/engine/catalog"
)

// Material is the conductor material.
type Material string

const (
	MaterialCu Material = "Cu"
	MaterialAl Material = "Al"
)

// Insulation is the cable insulation type.
type Insulation string

const (
	InsulationXLPE Insulation = "XLPE"
	InsulationPVC  Insulation = "PVC"
)

// InstallMethod is the cable installation method.
type InstallMethod string

const (
	InstallTray   InstallMethod = "tray"
	InstallDuct   InstallMethod = "duct"
	InstallBuried InstallMethod = "buried"
)

// Valid reports whether m is a known conductor material.
func (m Material) Valid() bool { return m == MaterialCu || m == MaterialAl }

// Valid reports whether i is a known insulation type.
func (i Insulation) Valid() bool { return i == InsulationXLPE || i == InsulationPVC }

// Valid reports whether m is a known installation method.
func (m InstallMethod) Valid() bool {
	return m == InstallTray || m == InstallDuct || m == InstallBuried
}

// SizingMode selects automatic or manual cross-section handling.
type SizingMode string

const (
	// ModeAuto picks the smallest qualifying table section.
	ModeAuto SizingMode = "AUTO"
	// ModeManual checks a user-fixed section.
	ModeManual SizingMode = "MANUAL"
)

const (
	// DefaultDesignMargin replaces any design margin <= 0.
	DefaultDesignMargin = 1.25
	// HardAmbientC is the regulatory reference ambient for the hard cable check.
	HardAmbientC = 30.0

	minAmbientC = -50.0
	maxAmbientC = 100.0
)

// CableSpec describes the feeder cable. Empty strings and nil pointers are
// treated as missing input.
type CableSpec struct {
	Material         Material        `json:"material" yaml:"material"`
	Insulation       Insulation      `json:"insulation" yaml:"insulation"`
	Install          InstallMethod   `json:"install" yaml:"install"`
	AmbientC         *float64        `json:"ambient_c,omitempty" yaml:"ambient_c,omitempty"`
	Parallel         *int            `json:"parallel,omitempty" yaml:"parallel,omitempty"`
	Mode             SizingMode      `json:"mode,omitempty" yaml:"mode,omitempty"`
	ManualSectionMM2 *float64        `json:"manual_section_mm2,omitempty" yaml:"manual_section_mm2,omitempty"`
	Profile          string          `json:"profile,omitempty" yaml:"profile,omitempty"`
	Table            []catalog.Entry `json:"table,omitempty" yaml:"table,omitempty"`
	DesignMargin     float64         `json:"design_margin,omitempty" yaml:"design_margin,omitempty"`
}

// CorrectionFactors are the multiplicative factors applied to base ampacity.
type CorrectionFactors struct {
	Material   float64 `json:"k_material" yaml:"k_material"`
	Insulation float64 `json:"k_insulation" yaml:"k_insulation"`
	Install    float64 `json:"k_install" yaml:"k_install"`
	Temp       float64 `json:"k_temp" yaml:"k_temp"`
	Group      float64 `json:"k_group" yaml:"k_group"`
}

// Single is the factor product for one circuit, excluding grouping.
func (f CorrectionFactors) Single() float64 {
	return f.Material * f.Insulation * f.Install * f.Temp
}

// CableJudgement is the result of one resolver run.
// SectionUsedMM2 is the cross-section carried into the thermal check;
// TableSectionMM2 is the table row whose ampacity was used.
type CableJudgement struct {
	Status          Status            `json:"status" yaml:"status"`
	Mode            SizingMode        `json:"mode" yaml:"mode"`
	SectionUsedMM2  *float64          `json:"section_used_mm2,omitempty" yaml:"section_used_mm2,omitempty"`
	TableSectionMM2 *float64          `json:"table_section_mm2,omitempty" yaml:"table_section_mm2,omitempty"`
	IAllowSingleA   float64           `json:"i_allow_single_a" yaml:"i_allow_single_a"`
	IAllowTotalA    float64           `json:"i_allow_total_a" yaml:"i_allow_total_a"`
	ILoadA          float64           `json:"i_load_a" yaml:"i_load_a"`
	IDesignA        float64           `json:"i_design_a" yaml:"i_design_a"`
	DesignMargin    float64           `json:"design_margin" yaml:"design_margin"`
	Parallel        int               `json:"parallel" yaml:"parallel"`
	Factors         CorrectionFactors `json:"factors" yaml:"factors"`
	ProfileUsed     string            `json:"profile_used,omitempty" yaml:"profile_used,omitempty"`
	AmbientC        *float64          `json:"ambient_c,omitempty" yaml:"ambient_c,omitempty"`
	Notes           []string          `json:"notes,omitempty" yaml:"notes,omitempty"`
	Reason          Reason            `json:"reason" yaml:"reason"`
}

// CableEvaluation pairs the binding hard judgement with the advisory
// operational one. Operational is nil when no operational ambient exists.
type CableEvaluation struct {
	Hard        CableJudgement  `json:"hard" yaml:"hard"`
	Operational *CableJudgement `json:"operational,omitempty" yaml:"operational,omitempty"`
}

// CableResolver sizes cables against a design current.
// It holds only read-only reference data and is safe for concurrent use.
type CableResolver struct {
	tables  catalog.Provider
	factors catalog.Factors
	log     logrus.FieldLogger
}

// NewCableResolver creates a resolver. A nil log uses the standard logger.
func NewCableResolver(tables catalog.Provider, factors catalog.Factors, log logrus.FieldLogger) *CableResolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CableResolver{tables: tables, factors: factors, log: log}
}

// ResolveTable picks the ampacity table for a spec. An explicit table wins
// (profile CUSTOM); standard "KESC" forces KESC_DEFAULT; otherwise
// IEC_CONSERVATIVE unless IEC_REALISTIC_1C is requested. Any other requested
// profile is ignored with a warning.
// The returned entries are sorted ascending by section.
func (r *CableResolver) ResolveTable(spec CableSpec, standard string) ([]catalog.Entry, string, error) {
	if len(spec.Table) > 0 {
		if err := catalog.ValidateEntries(spec.Table); err != nil {
			return nil, "", fmt.Errorf("%w: custom table: %v", ErrInvalidInput, err)
		}
		return catalog.SortEntries(spec.Table), catalog.ProfileCustom, nil
	}
	profile := catalog.ProfileIECConservative
	switch {
	case standard == "KESC":
		profile = catalog.ProfileKESCDefault
	case spec.Profile == catalog.ProfileIECRealistic1C:
		profile = catalog.ProfileIECRealistic1C
	case spec.Profile != "" && spec.Profile != catalog.ProfileIECConservative:
		r.log.WithField("profile", spec.Profile).Warnf("ampacity profile not selectable, using %s", profile)
	}
	entries, err := r.tables.Table(profile)
	if err != nil {
		return nil, "", configErr(err)
	}
	return entries, profile, nil
}

// Factors computes the correction factors for a spec at the given ambient
// and (already clamped) parallel count.
func (r *CableResolver) Factors(spec CableSpec, ambientC float64, parallel int) (CorrectionFactors, error) {
	kMat, err := r.factors.KMaterial(string(spec.Material))
	if err != nil {
		return CorrectionFactors{}, configErr(err)
	}
	kIns, err := r.factors.KInsulation(string(spec.Insulation))
	if err != nil {
		return CorrectionFactors{}, configErr(err)
	}
	kInst, err := r.factors.KInstall(string(spec.Install))
	if err != nil {
		return CorrectionFactors{}, configErr(err)
	}
	return CorrectionFactors{
		Material:   kMat,
		Insulation: kIns,
		Install:    kInst,
		Temp:       r.factors.KTemp(ambientC),
		Group:      r.factors.KGroup(parallel),
	}, nil
}

// Resolve runs the cable ampacity check for a load current.
func (r *CableResolver) Resolve(spec CableSpec, loadA float64, standard string) CableJudgement {
	j := CableJudgement{Mode: spec.Mode, ILoadA: loadA, AmbientC: spec.AmbientC, DesignMargin: spec.DesignMargin}
	if j.Mode == "" {
		j.Mode = ModeAuto
	}
	indeterminate := func(reason Reason) CableJudgement {
		j.Status = StatusIndeterminate
		j.Reason = reason
		return j
	}

	var absent []string
	if spec.Material == "" {
		absent = append(absent, "material")
	}
	if spec.Insulation == "" {
		absent = append(absent, "insulation")
	}
	if spec.Install == "" {
		absent = append(absent, "install")
	}
	if spec.AmbientC == nil {
		absent = append(absent, "ambient_c")
	}
	if spec.Parallel == nil {
		absent = append(absent, "parallel")
	}
	if len(absent) > 0 {
		r.log.WithField("fields", absent).Debug("cable check skipped: missing input")
		return indeterminate(missing(absent...))
	}
	if j.Mode != ModeAuto && j.Mode != ModeManual {
		return indeterminate(invalid("mode", "unknown sizing mode %q", spec.Mode))
	}
	if !spec.Material.Valid() {
		return indeterminate(invalid("material", "unknown conductor material %q", spec.Material))
	}
	if !spec.Insulation.Valid() {
		return indeterminate(invalid("insulation", "unknown insulation %q", spec.Insulation))
	}
	if !spec.Install.Valid() {
		return indeterminate(invalid("install", "unknown install method %q", spec.Install))
	}
	if !finite(loadA) || loadA < 0 {
		return indeterminate(invalid("i_load_a", "load current must be >= 0 A, got %v", loadA))
	}
	ambient := *spec.AmbientC
	if !finite(ambient) || ambient < minAmbientC || ambient > maxAmbientC {
		return indeterminate(invalid("ambient_c", "ambient must be within [%g, %g] C, got %v", minAmbientC, maxAmbientC, ambient))
	}

	j.Parallel = *spec.Parallel
	if j.Parallel <= 0 {
		j.Notes = append(j.Notes, fmt.Sprintf("parallel %d clamped to 1", j.Parallel))
		j.Parallel = 1
	}
	if !(j.DesignMargin > 0) || math.IsInf(j.DesignMargin, 0) {
		if j.DesignMargin != 0 {
			j.Notes = append(j.Notes, fmt.Sprintf("design margin %v reset to %v", j.DesignMargin, DefaultDesignMargin))
		}
		j.DesignMargin = DefaultDesignMargin
	}
	j.IDesignA = loadA * j.DesignMargin

	var manualS float64
	if j.Mode == ModeManual {
		if spec.ManualSectionMM2 == nil {
			return indeterminate(missing("manual_section_mm2"))
		}
		manualS = *spec.ManualSectionMM2
		if !finite(manualS) || manualS <= 0 {
			return indeterminate(invalid("manual_section_mm2", "section must be > 0 mm2, got %v", manualS))
		}
	}

	table, profile, err := r.ResolveTable(spec, standard)
	if err != nil {
		return indeterminate(r.errorReason(err))
	}
	j.ProfileUsed = profile

	factors, err := r.Factors(spec, ambient, j.Parallel)
	if err != nil {
		return indeterminate(r.errorReason(err))
	}
	j.Factors = factors

	total := func(e catalog.Entry) (float64, float64) {
		single := e.BaseAmpacityA * factors.Single()
		return single, single * float64(j.Parallel) * factors.Group
	}
	pick := func(e catalog.Entry, used float64) {
		j.IAllowSingleA, j.IAllowTotalA = total(e)
		tableS := e.SectionMM2
		j.TableSectionMM2 = &tableS
		j.SectionUsedMM2 = &used
	}

	if j.Mode == ModeManual {
		row := table[len(table)-1]
		for _, e := range table {
			if manualS <= e.SectionMM2 {
				row = e
				break
			}
		}
		pick(row, manualS)
	} else {
		row := table[len(table)-1]
		for _, e := range table {
			if _, t := total(e); t >= j.IDesignA {
				row = e
				break
			}
		}
		pick(row, row.SectionMM2)
	}

	detail := fmt.Sprintf("I_allow_total=%.1f A, I_design=%.1f A, S=%g mm2 (%s)", j.IAllowTotalA, j.IDesignA, *j.SectionUsedMM2, profile)
	if j.IDesignA <= j.IAllowTotalA {
		j.Status = StatusAdequate
		j.Reason = Reason{Code: ReasonCriterionMet, Detail: detail}
	} else {
		j.Status = StatusInadequate
		j.Reason = Reason{Code: ReasonCriterionNotMet, Detail: detail}
	}
	return j
}

// ResolveHardAndOperational runs the binding check at HardAmbientC and, when
// an operational ambient is known (operationalAmbient, else spec.AmbientC),
// an advisory check at that ambient. The advisory result never changes Hard.
func (r *CableResolver) ResolveHardAndOperational(spec CableSpec, loadA float64, standard string, operationalAmbient *float64) CableEvaluation {
	hardSpec := spec
	hardAmbient := HardAmbientC
	hardSpec.AmbientC = &hardAmbient
	eval := CableEvaluation{Hard: r.Resolve(hardSpec, loadA, standard)}

	opAmbient := operationalAmbient
	if opAmbient == nil {
		opAmbient = spec.AmbientC
	}
	if opAmbient != nil {
		opSpec := spec
		v := *opAmbient
		opSpec.AmbientC = &v
		op := r.Resolve(opSpec, loadA, standard)
		eval.Operational = &op
	}
	return eval
}

func (r *CableResolver) errorReason(err error) Reason {
	reason := reasonFromError(err)
	if errors.Is(err, ErrConfiguration) {
		r.log.WithError(err).Error("cable check: catalog configuration gap")
	}
	return reason
}
