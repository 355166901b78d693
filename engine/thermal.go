package engine

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// ThermalConstants looks up the adiabatic k for a material/insulation pair.
// *catalog.Catalog implements it.
type ThermalConstants interface {
	ThermalConstant(material, insulation string) (float64, error)
}

// ThermalInput carries everything the adiabatic check needs. SectionMM2 is
// the finalized section from the hard cable judgement.
type ThermalInput struct {
	IscA       float64
	TUsedS     *float64
	Policy     ClearingPolicy
	SectionMM2 *float64
	Material   Material
	Insulation Insulation
}

// ThermalJudgement is the result of I*sqrt(t) <= k*S, with its operands for audit.
type ThermalJudgement struct {
	Status     Status         `json:"status" yaml:"status"`
	LHS        float64        `json:"lhs" yaml:"lhs"`
	RHS        float64        `json:"rhs" yaml:"rhs"`
	K          float64        `json:"k" yaml:"k"`
	SectionMM2 float64        `json:"section_mm2" yaml:"section_mm2"`
	TUsedS     float64        `json:"t_used_s" yaml:"t_used_s"`
	Policy     ClearingPolicy `json:"policy" yaml:"policy"`
	Reason     Reason         `json:"reason" yaml:"reason"`
}

// ThermalChecker runs the adiabatic short-circuit withstand check.
type ThermalChecker struct {
	constants ThermalConstants
	log       logrus.FieldLogger
}

// NewThermalChecker creates a checker. A nil log uses the standard logger.
func NewThermalChecker(constants ThermalConstants, log logrus.FieldLogger) *ThermalChecker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ThermalChecker{constants: constants, log: log}
}

// Check evaluates Isc*sqrt(t_used) <= k*S. The boundary is inclusive.
func (c *ThermalChecker) Check(in ThermalInput) ThermalJudgement {
	j := ThermalJudgement{Policy: in.Policy}
	indeterminate := func(reason Reason) ThermalJudgement {
		j.Status = StatusIndeterminate
		j.Reason = reason
		return j
	}

	var absent []string
	if in.TUsedS == nil {
		absent = append(absent, "t_clear_s")
	}
	if in.SectionMM2 == nil {
		absent = append(absent, "section_mm2")
	}
	if in.Material == "" {
		absent = append(absent, "material")
	}
	if in.Insulation == "" {
		absent = append(absent, "insulation")
	}
	if len(absent) > 0 {
		c.log.WithField("fields", absent).Debug("thermal check skipped: missing input")
		return indeterminate(missing(absent...))
	}
	if !in.Material.Valid() {
		return indeterminate(invalid("material", "unknown conductor material %q", in.Material))
	}
	if !in.Insulation.Valid() {
		return indeterminate(invalid("insulation", "unknown insulation %q", in.Insulation))
	}
	j.TUsedS, j.SectionMM2 = *in.TUsedS, *in.SectionMM2
	if !finite(j.TUsedS) || j.TUsedS <= 0 {
		return indeterminate(invalid("t_clear_s", "clearing time must be > 0 s, got %v", j.TUsedS))
	}
	if !finite(j.SectionMM2) || j.SectionMM2 <= 0 {
		return indeterminate(invalid("section_mm2", "section must be > 0 mm2, got %v", j.SectionMM2))
	}
	if !finite(in.IscA) || in.IscA < 0 {
		return indeterminate(invalid("isc_a", "short-circuit current must be >= 0 A, got %v", in.IscA))
	}

	k, err := c.constants.ThermalConstant(string(in.Material), string(in.Insulation))
	if err != nil {
		err = configErr(err)
		c.log.WithFields(logrus.Fields{
			"material":   in.Material,
			"insulation": in.Insulation,
		}).WithError(err).Error("thermal check: no k constant configured")
		return indeterminate(reasonFromError(err))
	}
	j.K = k
	j.LHS = in.IscA * math.Sqrt(j.TUsedS)
	j.RHS = k * j.SectionMM2

	detail := fmt.Sprintf("I*sqrt(t)=%.0f, k*S=%.0f (k=%g, S=%g mm2, t=%.3f s, %s)", j.LHS, j.RHS, k, j.SectionMM2, j.TUsedS, j.Policy)
	if j.LHS <= j.RHS {
		j.Status = StatusAdequate
		j.Reason = Reason{Code: ReasonCriterionMet, Detail: detail}
	} else {
		j.Status = StatusInadequate
		j.Reason = Reason{Code: ReasonCriterionNotMet, Detail: detail}
	}
	return j
}
