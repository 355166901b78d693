package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/powercalc/powercalc/engine"
	"github.com/powercalc/powercalc/engine/assessment"
	"github.com/powercalc/powercalc/engine/risk"
	"github.com/powercalc/powercalc/store"
)

// historyView is what `history` prints.
type historyView struct {
	Asset      *store.Asset               `json:"asset" yaml:"asset"`
	Records    []assessment.HistoryRecord `json:"records" yaml:"records"`
	Comparison assessment.Comparison      `json:"comparison" yaml:"comparison"`
}

// DisplayResults writes v in the requested format. human falls back to
// indented JSON for types without a dedicated layout.
func DisplayResults(w io.Writer, v any, format string) error {
	switch format {
	case "json":
		return displayJSON(w, v)
	case "yaml":
		return displayYAML(w, v)
	case "human", "":
		switch x := v.(type) {
		case *assessment.Outcome:
			displayOutcome(w, x)
		case *historyView:
			displayHistory(w, x)
		case *tableView:
			displayTable(w, x)
		case *curveView:
			displayCurve(w, x)
		default:
			return displayJSON(w, v)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want human, json or yaml)", format)
	}
}

func displayJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func displayYAML(w io.Writer, v any) error {
	output, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(output))
	return err
}

var (
	bold   = color.New(color.Bold)
	cyan   = color.New(color.FgCyan, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	green  = color.New(color.FgGreen, color.Bold)
)

func statusColor(s engine.Status) *color.Color {
	switch s {
	case engine.StatusAdequate:
		return green
	case engine.StatusInadequate:
		return red
	default:
		return yellow
	}
}

func verdictColor(v engine.VerdictStatus) *color.Color {
	switch v {
	case engine.VerdictPass:
		return green
	case engine.VerdictFail:
		return red
	default:
		return yellow
	}
}

func levelColor(l risk.Level) *color.Color {
	switch l {
	case risk.LevelVeryHigh, risk.LevelHigh:
		return red
	case risk.LevelModerate, risk.LevelAdvisory:
		return yellow
	default:
		return green
	}
}

func check(w io.Writer, name string, s engine.Status, reason engine.Reason) {
	fmt.Fprintf(w, "%-12s", name)
	statusColor(s).Fprintf(w, "%-14s", s)
	fmt.Fprintln(w, reason.String())
}

func optional(v *float64, format string) string {
	if v == nil {
		return "NA"
	}
	return fmt.Sprintf(format, *v)
}

func displayOutcome(w io.Writer, out *assessment.Outcome) {
	r := out.Report
	cyan.Fprintf(w, "Assessment %s", r.ID)
	if r.Site != "" {
		fmt.Fprintf(w, "  site %s", r.Site)
	}
	if out.AssetID != 0 {
		fmt.Fprintf(w, "  asset %d", out.AssetID)
	}
	fmt.Fprintln(w)

	if e := r.Electrical; e != nil {
		fmt.Fprintf(w, "%-12sIn %.1f A  Isc %.2f kA  I_design %.1f A\n", "Electrical", e.RatedA, e.ShortCircuitA/1000, e.DesignA)
	} else {
		fmt.Fprintf(w, "%-12s", "Electrical")
		yellow.Fprintln(w, r.ElectricalError)
	}
	check(w, "Breaker", r.Breaker.Status, r.Breaker.Reason)
	check(w, "Cable", r.Cable.Hard.Status, r.Cable.Hard.Reason)
	if op := r.Cable.Operational; op != nil {
		check(w, "  at "+optional(op.AmbientC, "%.0f C"), op.Status, op.Reason)
	}
	check(w, "Thermal", r.Thermal.Status, r.Thermal.Reason)

	fmt.Fprintf(w, "%-12s", "Verdict")
	verdictColor(r.Verdict.Status).Fprint(w, r.Verdict.Status)
	if len(r.Verdict.Causes) > 0 {
		causes := make([]string, len(r.Verdict.Causes))
		for i, c := range r.Verdict.Causes {
			causes[i] = string(c)
		}
		fmt.Fprintf(w, "  %s", strings.Join(causes, ", "))
	}
	fmt.Fprintln(w)

	rs := r.Risk
	score := rs.Score
	fmt.Fprintln(w)
	bold.Fprintln(w, "Operational risk (advisory)")
	fmt.Fprintf(w, "%-12s", "Total")
	levelColor(score.Level).Fprintf(w, "%-14s", score.Level)
	fmt.Fprintf(w, "%s  (evt %.1f, time %.1f, protection %s)\n",
		optional(score.Total, "%.1f"), score.EVT, score.Time, optional(score.Protection, "%.1f"))
	series := fmt.Sprintf("%d samples @ %.3g s, mean %.1f A, max %.1f A", rs.Series.Samples, rs.Series.DT, rs.Series.MeanA, rs.Series.MaxA)
	if rs.Series.Demo {
		series += " (demo)"
	}
	fmt.Fprintf(w, "%-12s%s\n", "Series", series)
	fmt.Fprintf(w, "%-12s%s %.1f A", "Baseline", rs.Baseline.Used, rs.Baseline.ValueA)
	if rs.Baseline.Fallback {
		fmt.Fprintf(w, " (requested %s)", rs.Baseline.Requested)
	}
	fmt.Fprintln(w)
	if fit := rs.EVT; fit != nil {
		fmt.Fprintf(w, "%-12s%s n=%d, P(exceed) %.4f", "EVT", fit.Method, fit.SampleSize, fit.ExceedProb)
		if fit.CI != nil {
			fmt.Fprintf(w, " [%.4f, %.4f]", fit.CI.Low, fit.CI.High)
		}
		fmt.Fprintf(w, ", return level(%g) %s A\n", fit.ReturnPeriod, optional(fit.ReturnLevel, "%.1f"))
	} else {
		fmt.Fprintf(w, "%-12s", "EVT")
		yellow.Fprintln(w, rs.EVTError)
	}
	fmt.Fprintf(w, "%-12smax %.1f s, limit %.1f s, %d over limit\n", "Duration", rs.MaxDurationS, rs.DurationLimitS, rs.OverLimitCount)
	fmt.Fprintf(w, "%-12smargin %s", "Protection", optional(rs.Protection.Margin, "%.2f"))
	if s := rs.Protection.Settings; s != nil && s.Heuristic {
		fmt.Fprint(w, " (heuristic settings)")
	}
	if score.ProtectionNote != "" {
		fmt.Fprintf(w, "  %s", score.ProtectionNote)
	}
	fmt.Fprintln(w)
	if rs.External != nil {
		fmt.Fprintf(w, "%-12s%.1f (%s ambient)\n", "External", *rs.External, out.Ambient.Origin)
	}

	if c := out.Comparison; c != nil && c.Available {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%-12strend %s", "History", c.Trend)
		if c.RiskDelta != nil {
			fmt.Fprintf(w, " (%+.1f)", *c.RiskDelta)
		}
		if c.HardChanged {
			fmt.Fprint(w, ", hard ")
			red.Fprintf(w, "%s -> %s", c.PreviousHard, c.CurrentHard)
		}
		fmt.Fprintln(w)
	}
}

func displayHistory(w io.Writer, h *historyView) {
	a := h.Asset
	cyan.Fprintf(w, "Asset %d", a.ID)
	fmt.Fprintf(w, "  site %s  %.0f kVA %.1f kV Z %.1f%%\n", a.Site, a.Spec.CapacityKVA, a.Spec.VoltageKV, a.Spec.ImpedancePct)
	if len(h.Records) == 0 {
		fmt.Fprintln(w, "no assessments recorded")
		return
	}
	for _, rec := range h.Records {
		fmt.Fprintf(w, "%-6d%s  ", rec.ID, rec.RunAt.Format("2006-01-02 15:04:05"))
		verdictColor(rec.HardStatus).Fprintf(w, "%-10s", rec.HardStatus)
		fmt.Fprintf(w, "risk %s", optional(rec.RiskFinal, "%.1f"))
		if rec.Note != "" {
			fmt.Fprintf(w, "  %s", rec.Note)
		}
		fmt.Fprintln(w)
	}
	c := h.Comparison
	if c.Available {
		fmt.Fprintf(w, "trend %s", c.Trend)
		if c.RiskDelta != nil {
			fmt.Fprintf(w, " (%+.1f)", *c.RiskDelta)
		}
		fmt.Fprintln(w)
	}
}
