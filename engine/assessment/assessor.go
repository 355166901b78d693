package assessment

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/powercalc/powercalc/engine"
	"github.com/powercalc/powercalc/engine/catalog"
	"github.com/powercalc/powercalc/engine/risk"
	"github.com/powercalc/powercalc/engine/trace"
)

// Options configures an Assessor. Zero values select the defaults.
type Options struct {
	Catalog        *catalog.Catalog
	Estimator      risk.EstimatorConfig
	Levels         risk.LevelTable
	DurationLimitS float64
	Log            logrus.FieldLogger
	Now            func() time.Time
}

// Assessor runs the hard checks and the operational risk analysis for one
// request at a time. It holds only read-only state and is safe for
// concurrent use.
type Assessor struct {
	cat           *catalog.Catalog
	resolver      *engine.CableResolver
	thermal       *engine.ThermalChecker
	curve         engine.Curve
	estimator     *risk.Estimator
	scorer        *risk.Scorer
	durationLimit float64
	log           logrus.FieldLogger
	now           func() time.Time
}

// New creates an Assessor.
func New(opts Options) *Assessor {
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	estCfg := opts.Estimator
	if estCfg == (risk.EstimatorConfig{}) {
		estCfg = risk.DefaultEstimatorConfig()
	}
	limit := opts.DurationLimitS
	if !(limit > 0) {
		limit = risk.DefaultDurationLimitS
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Assessor{
		cat:           cat,
		resolver:      engine.NewCableResolver(cat, cat.Factors, log),
		thermal:       engine.NewThermalChecker(cat, log),
		curve:         engine.NewCurve(cat.Curve),
		estimator:     risk.NewEstimator(estCfg, log),
		scorer:        risk.NewScorer(opts.Levels),
		durationLimit: limit,
		log:           log,
		now:           now,
	}
}

// Catalog returns the reference data the assessor uses.
func (a *Assessor) Catalog() *catalog.Catalog { return a.cat }

// Assess evaluates req. Missing or invalid engineering inputs produce
// INDETERMINATE judgements in the report; only malformed requests (bad
// series, unknown baseline or trace level) return an error.
func (a *Assessor) Assess(req Request) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	log := a.log.WithField("assessment_id", id)
	tr := trace.NewAssessmentTrace(trace.TraceConfig{Level: req.Trace})
	rep := &Report{ID: id, Site: req.Site, CreatedAt: a.now().UTC()}
	std := req.Asset.Standard

	iscA := math.NaN()
	var ratedA *float64
	rated, err := engine.RatedCurrent(req.Asset.VoltageKV, req.Asset.CapacityKVA)
	var isc float64
	if err == nil {
		isc, err = engine.ShortCircuitCurrent(req.Asset.VoltageKV, req.Asset.CapacityKVA, req.Asset.ImpedancePct)
	}
	if err != nil {
		rep.ElectricalError = err.Error()
		log.WithError(err).Warn("electrical fundamentals unavailable")
	} else {
		iscA, ratedA = isc, &rated
		rep.Electrical = &engine.ElectricalResult{RatedA: rated, ShortCircuitA: isc, DesignA: designCurrent(req)}
	}

	rep.Breaker = engine.JudgeBreaker(iscA, req.Breaker.IcuKA, std, a.cat.BreakerMargins)
	if math.IsNaN(rep.Breaker.IscA) {
		rep.Breaker.IscA, rep.Breaker.RequiredA = 0, 0
	}
	recordCheck(tr, "breaker", rep.Breaker.Status, rep.Breaker.Reason)

	rep.Cable = a.resolver.ResolveHardAndOperational(req.Cable, req.LoadA, std, req.OperationalAmbientC)
	recordCheck(tr, "cable", rep.Cable.Hard.Status, rep.Cable.Hard.Reason)
	if op := rep.Cable.Operational; op != nil {
		tr.RecordAdvisory(trace.AdvisoryRecord{
			Step:   "operational_cable",
			Detail: fmt.Sprintf("%s at %.1f C", op.Status, derefOr(op.AmbientC, math.NaN())),
		})
	}

	settings, tripS, protErr := a.protection(req, ratedA, iscA)
	// Heuristic settings are not regulatory and never feed the thermal check.
	var estimatedS *float64
	if settings != nil && !settings.Heuristic {
		estimatedS = tripS
	}
	rep.Clearing = engine.SelectClearingTime(req.TClearS, estimatedS)
	rep.Thermal = a.thermal.Check(engine.ThermalInput{
		IscA:       iscA,
		TUsedS:     rep.Clearing.TUsedS,
		Policy:     rep.Clearing.Policy,
		SectionMM2: rep.Cable.Hard.SectionUsedMM2,
		Material:   req.Cable.Material,
		Insulation: req.Cable.Insulation,
	})
	recordCheck(tr, "thermal", rep.Thermal.Status, rep.Thermal.Reason)

	rep.Verdict = engine.Classify(rep.Breaker.Status, rep.Cable.Hard.Status, rep.Thermal.Status)

	rep.Risk = a.assessRisk(req, rep, log, tr)
	rep.Risk.Protection = a.protectionSection(rep.Risk.MaxDurationS, iscA, settings, tripS, protErr)
	rep.Risk.Score = a.scorer.Score(risk.ScoreInput{
		ExceedProb:       exceedProb(rep.Risk.EVT),
		MaxDurationS:     rep.Risk.MaxDurationS,
		DurationLimitS:   rep.Risk.DurationLimitS,
		ProtectionMargin: rep.Risk.Protection.Margin,
		BreakerAdequate:  rep.Breaker.Adequate(),
		HardStatus:       rep.Verdict.Status,
		Advisory:         rep.Risk.Series.Demo || rep.Risk.EVT == nil,
	})
	if settings != nil {
		for _, note := range settings.Notes {
			tr.RecordAdvisory(trace.AdvisoryRecord{Step: "protection_settings", Detail: note})
		}
	}

	if tr.Enabled() {
		rep.Trace = tr
		rep.TraceSummary = trace.Summarize(tr)
	}
	log.WithFields(logrus.Fields{
		"verdict": rep.Verdict.Status,
		"causes":  rep.Verdict.Causes,
		"level":   rep.Risk.Score.Level,
	}).Info("assessment complete")
	return rep, nil
}

// assessRisk fills the series, baseline, EVT and duration parts of the risk section.
func (a *Assessor) assessRisk(req Request, rep *Report, log logrus.FieldLogger, tr *trace.AssessmentTrace) RiskSection {
	var sec RiskSection
	var series risk.Series
	if req.Series != nil {
		// Validated by Request.Validate; NewSeries copies the samples.
		series, _ = risk.NewSeries(req.Series.Samples, req.Series.DT)
	} else {
		series = risk.DemoSeries(req.LoadA, risk.DefaultDemoSamples, a.estimator.Config().Seed)
		sec.Series.Demo = true
		tr.RecordAdvisory(trace.AdvisoryRecord{Step: "series", Detail: "no load series supplied; demo series used, total forced NA"})
	}
	sec.Series.Samples = series.Len()
	sec.Series.DT = series.DT
	sec.Series.MeanA = series.Mean()
	sec.Series.MaxA = series.Max()
	sec.Series.DurationS = series.Duration()

	var cand risk.BaselineCandidates
	if req.LoadA > 0 {
		load, design := req.LoadA, designCurrent(req)
		cand.LoadA, cand.DesignA = &load, &design
	}
	if hard := rep.Cable.Hard; hard.Status != engine.StatusIndeterminate {
		allow := hard.IAllowTotalA
		cand.Allow30CA = &allow
	}
	sec.Baseline = risk.SelectBaseline(req.Baseline, cand, series)
	if sec.Baseline.Fallback {
		log.WithFields(logrus.Fields{
			"requested": sec.Baseline.Requested,
			"used":      sec.Baseline.Used,
		}).Info("baseline fallback")
		tr.RecordAdvisory(trace.AdvisoryRecord{
			Step:   "baseline",
			Detail: fmt.Sprintf("%s unavailable, used %s (%.1f A)", sec.Baseline.Requested, sec.Baseline.Used, sec.Baseline.ValueA),
		})
	}

	fit, err := a.estimator.Estimate(series, sec.Baseline.ValueA)
	if err != nil {
		sec.EVTError = err.Error()
		log.WithError(err).Warn("extreme value fit failed; risk total is NA")
		tr.RecordAdvisory(trace.AdvisoryRecord{Step: "evt", Detail: err.Error()})
	} else {
		sec.EVT = &fit
	}

	sec.Durations = risk.PeakDurations(series, sec.Baseline.ValueA)
	sec.MaxDurationS = sec.Durations.Max()
	sec.DurationLimitS = req.DurationLimitS
	if !(sec.DurationLimitS > 0) {
		sec.DurationLimitS = a.durationLimit
	}
	sec.OverLimitCount = sec.Durations.CountOver(sec.DurationLimitS)

	ambient := req.OperationalAmbientC
	if ambient == nil {
		ambient = req.Cable.AmbientC
	}
	if ambient != nil || req.HumidityPct != nil {
		ext := risk.ExternalScore(ambient, req.HumidityPct)
		sec.External = &ext
	}
	return sec
}

// protection derives the TCC settings and the estimated trip time at Isc.
func (a *Assessor) protection(req Request, ratedA *float64, iscA float64) (*engine.ProtectionSettings, *float64, error) {
	if math.IsNaN(iscA) {
		return nil, nil, errors.New("short-circuit current unavailable")
	}
	s := engine.DeriveSettings(req.Breaker, ratedA, req.LoadA, iscA)
	t, err := a.curve.TripTime(iscA, s.PickupA, s.TMS)
	if err != nil {
		return &s, nil, err
	}
	return &s, &t, nil
}

// protectionSection computes the TCC margin for a peak of Isc lasting the
// longest observed excursion.
func (a *Assessor) protectionSection(durationS, iscA float64, s *engine.ProtectionSettings, tripS *float64, err error) ProtectionSection {
	sec := ProtectionSection{Settings: s, EstimatedTripS: tripS}
	if s == nil {
		sec.Error = err.Error()
		return sec
	}
	m, err := a.curve.Margin(iscA, durationS, s.PickupA, s.TMS)
	if err != nil {
		sec.Error = err.Error()
		return sec
	}
	sec.Margin = &m
	return sec
}

func designCurrent(req Request) float64 {
	margin := req.Cable.DesignMargin
	if !(margin > 0) {
		margin = engine.DefaultDesignMargin
	}
	return req.LoadA * margin
}

func exceedProb(fit *risk.EVTFit) float64 {
	if fit == nil {
		return 0
	}
	return fit.ExceedProb
}

func recordCheck(tr *trace.AssessmentTrace, check string, status engine.Status, reason engine.Reason) {
	tr.RecordCheck(trace.CheckRecord{
		Check:  check,
		Status: string(status),
		Code:   string(reason.Code),
		Fields: reason.Fields,
		Detail: reason.Detail,
	})
}

func derefOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
