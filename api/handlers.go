package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/powercalc/powercalc/engine"
	"github.com/powercalc/powercalc/engine/assessment"
	"github.com/powercalc/powercalc/engine/catalog"
	"github.com/powercalc/powercalc/store"
)

const (
	defaultHistoryLimit = 20
	defaultCurvePoints  = 50
)

type healthResponse struct {
	Status         string    `json:"status"`
	CatalogVersion string    `json:"catalog_version"`
	Timestamp      time.Time `json:"timestamp"`
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	ok(w, r, healthResponse{
		Status:         "ok",
		CatalogVersion: s.catalog().Version,
		Timestamp:      time.Now().UTC(),
	})
}

type tablesResponse struct {
	CatalogVersion string   `json:"catalog_version"`
	Profiles       []string `json:"profiles"`
}

func (s *server) listTables(w http.ResponseWriter, r *http.Request) {
	cat := s.catalog()
	ok(w, r, tablesResponse{CatalogVersion: cat.Version, Profiles: cat.ProfileNames()})
}

type tableResponse struct {
	Profile string          `json:"profile"`
	Entries []catalog.Entry `json:"entries"`
}

func (s *server) getTable(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")
	entries, err := s.catalog().Table(profile)
	if err != nil {
		fail(w, r, http.StatusNotFound, err.Error())
		return
	}
	ok(w, r, tableResponse{Profile: profile, Entries: entries})
}

type curveResponse struct {
	Curve   catalog.Curve       `json:"curve"`
	PickupA float64             `json:"pickup_a"`
	TMS     float64             `json:"tms"`
	Points  []engine.CurvePoint `json:"points"`
}

// curvePoints tabulates the protection characteristic for pickup_a, tms and max_a.
func (s *server) curvePoints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pickup, err1 := strconv.ParseFloat(q.Get("pickup_a"), 64)
	tms, err2 := strconv.ParseFloat(q.Get("tms"), 64)
	maxA, err3 := strconv.ParseFloat(q.Get("max_a"), 64)
	if err := errors.Join(err1, err2, err3); err != nil {
		fail(w, r, http.StatusBadRequest, "pickup_a, tms and max_a must be numbers")
		return
	}
	n := defaultCurvePoints
	if v := q.Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			fail(w, r, http.StatusBadRequest, "n must be an integer")
			return
		}
		n = parsed
	}
	c := s.catalog().Curve
	points, err := engine.NewCurve(c).Points(pickup, tms, maxA, n)
	if err != nil {
		fail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ok(w, r, curveResponse{Curve: c, PickupA: pickup, TMS: tms, Points: points})
}

func (s *server) createAssessment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBytes))
	if err != nil {
		fail(w, r, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	req, err := assessment.DecodeRequest(body, "json")
	if err != nil {
		fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	out, err := s.svc.Run(r.Context(), *req)
	if err != nil && out == nil {
		fail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.log.WithError(err).WithField("assessment_id", out.Report.ID).Error("assessment not recorded")
		fail(w, r, http.StatusInternalServerError, "assessment could not be recorded")
		return
	}
	s.metrics.Duration.Observe(time.Since(start).Seconds())
	s.metrics.Assessments.WithLabelValues(string(out.Report.Verdict.Status), string(out.Report.Risk.Score.Level)).Inc()

	w.Header().Set("X-Assessment-Id", out.Report.ID)
	ok(w, r, out)
}

type historyResponse struct {
	Asset      *store.Asset               `json:"asset"`
	Records    []assessment.HistoryRecord `json:"records"`
	Comparison assessment.Comparison      `json:"comparison"`
}

func (s *server) assetHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		fail(w, r, http.StatusServiceUnavailable, "history store not configured")
		return
	}
	assetID, err := strconv.ParseInt(chi.URLParam(r, "assetID"), 10, 64)
	if err != nil {
		fail(w, r, http.StatusBadRequest, "asset id must be an integer")
		return
	}
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit <= 0 {
			fail(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
	}

	asset, err := s.history.Asset(r.Context(), assetID)
	if errors.Is(err, store.ErrNotFound) {
		fail(w, r, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.WithError(err).Error("load asset")
		fail(w, r, http.StatusInternalServerError, "history unavailable")
		return
	}
	records, err := s.history.History(r.Context(), assetID, limit)
	if err != nil {
		s.log.WithError(err).Error("load history")
		fail(w, r, http.StatusInternalServerError, "history unavailable")
		return
	}
	ok(w, r, historyResponse{Asset: asset, Records: records, Comparison: assessment.Compare(records)})
}

func (s *server) catalog() *catalog.Catalog {
	return s.svc.Assessor.Catalog()
}
