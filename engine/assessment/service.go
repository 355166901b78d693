package assessment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// DefaultSite is the site code used when a request names none.
const DefaultSite = "DEFAULT"

// Service materializes external data, runs the Assessor and records the
// result. Ambient, Assets and History are optional; without Assets and
// History nothing is persisted.
type Service struct {
	Assessor *Assessor
	Ambient  AmbientSource
	Assets   AssetRegistry
	History  HistoryStore
	Log      logrus.FieldLogger
}

// Outcome is what Run returns: the report plus persistence details.
type Outcome struct {
	Report     *Report     `json:"report" yaml:"report"`
	Ambient    Ambient     `json:"ambient" yaml:"ambient"`
	AssetID    int64       `json:"asset_id,omitempty" yaml:"asset_id,omitempty"`
	RecordID   int64       `json:"record_id,omitempty" yaml:"record_id,omitempty"`
	Comparison *Comparison `json:"comparison,omitempty" yaml:"comparison,omitempty"`
}

// Run resolves the operational ambient, assesses req and appends the result
// to the history. An ambient lookup failure is logged and the run continues
// without an operational ambient.
func (s *Service) Run(ctx context.Context, req Request) (*Outcome, error) {
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if req.Site == "" {
		req.Site = DefaultSite
	}

	amb, err := ResolveAmbient(ctx, req.OperationalAmbientC, s.Ambient, req.Site)
	if err != nil {
		log.WithError(err).Warn("operational ambient unavailable")
	}
	req.OperationalAmbientC = amb.ValueC

	rep, err := s.Assessor.Assess(req)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Report: rep, Ambient: amb}
	if s.Assets == nil || s.History == nil {
		return out, nil
	}

	out.AssetID, err = s.Assets.EnsureAsset(ctx, req.Site, req.Asset)
	if err != nil {
		return out, fmt.Errorf("register asset: %w", err)
	}
	out.RecordID, err = s.History.Append(ctx, rep.HistoryRecord(out.AssetID))
	if err != nil {
		return out, fmt.Errorf("append history: %w", err)
	}
	records, err := s.History.LastTwo(ctx, out.AssetID)
	if err != nil {
		return out, fmt.Errorf("load history: %w", err)
	}
	cmp := Compare(records)
	out.Comparison = &cmp
	log.WithFields(logrus.Fields{
		"assessment_id": rep.ID,
		"asset_id":      out.AssetID,
		"record_id":     out.RecordID,
		"trend":         cmp.Trend,
	}).Debug("assessment recorded")
	return out, nil
}
