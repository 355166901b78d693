// Package store persists assets, assessment history and weather snapshots
// in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/powercalc/powercalc/engine"
	"github.com/powercalc/powercalc/engine/assessment"
	"github.com/powercalc/powercalc/engine/risk"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("store: not found")

// SQLite implements assessment.AssetRegistry, assessment.HistoryStore and
// assessment.AmbientSource using modernc.org/sqlite.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ assessment.AssetRegistry = (*SQLite)(nil)
	_ assessment.HistoryStore  = (*SQLite)(nil)
	_ assessment.AmbientSource = (*SQLite)(nil)
)

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// Pragmas are per connection; one connection keeps foreign_keys in force.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLite{db: db, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS assets (
	asset_id          INTEGER PRIMARY KEY AUTOINCREMENT,
	asset_uid         TEXT NOT NULL UNIQUE,
	site_code         TEXT NOT NULL DEFAULT 'DEFAULT',
	voltage_kv        REAL,
	transformer_kva   REAL,
	transformer_z_pct REAL,
	standard          TEXT,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS assessments (
	assessment_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	asset_id        INTEGER NOT NULL REFERENCES assets(asset_id) ON DELETE CASCADE,
	correlation_id  TEXT NOT NULL,
	run_ts          DATETIME NOT NULL,
	in_a            REAL,
	isc_ka          REAL,
	breaker_ok      INTEGER,
	hard_status     TEXT NOT NULL,
	risk_internal   REAL,
	risk_external   REAL,
	risk_final      REAL,
	evt_method      TEXT,
	evt_exceed_prob REAL,
	observed_exceed REAL,
	duration_max_s  REAL,
	dt_s            REAL,
	tcc_available   INTEGER NOT NULL DEFAULT 0,
	tcc_margin      REAL,
	t_clear_used_s  REAL,
	note            TEXT
);

CREATE TABLE IF NOT EXISTS weather_snapshot (
	snapshot_id         INTEGER PRIMARY KEY AUTOINCREMENT,
	site_code           TEXT NOT NULL,
	ts                  DATETIME NOT NULL,
	temp_c              REAL,
	humidity_pct        REAL,
	external_risk_score REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assets_site ON assets(site_code);
CREATE INDEX IF NOT EXISTS idx_assessments_asset ON assessments(asset_id, run_ts);
CREATE INDEX IF NOT EXISTS idx_weather_site_ts ON weather_snapshot(site_code, ts);
`

func (s *SQLite) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// Asset is a registered transformer nameplate.
type Asset struct {
	ID        int64            `json:"asset_id" yaml:"asset_id"`
	UID       string           `json:"asset_uid" yaml:"asset_uid"`
	Site      string           `json:"site" yaml:"site"`
	Spec      engine.AssetSpec `json:"spec" yaml:"spec"`
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
}

// EnsureAsset returns the newest asset with the same site and nameplate, or
// registers a new one.
func (s *SQLite) EnsureAsset(ctx context.Context, site string, spec engine.AssetSpec) (int64, error) {
	if site == "" {
		site = assessment.DefaultSite
	}
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT asset_id FROM assets
		 WHERE site_code = ? AND transformer_kva = ? AND voltage_kv = ? AND transformer_z_pct = ?
		 ORDER BY asset_id DESC LIMIT 1`,
		site, spec.CapacityKVA, spec.VoltageKV, spec.ImpedancePct,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, eris.Wrap(err, "sqlite: find asset")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO assets (asset_uid, site_code, voltage_kv, transformer_kva, transformer_z_pct, standard, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), site, spec.VoltageKV, spec.CapacityKVA, spec.ImpedancePct, spec.Standard, s.now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert asset")
	}
	id, err = res.LastInsertId()
	return id, eris.Wrap(err, "sqlite: asset id")
}

// Asset loads one asset by id. It returns ErrNotFound when absent.
func (s *SQLite) Asset(ctx context.Context, id int64) (*Asset, error) {
	var a Asset
	var standard sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT asset_id, asset_uid, site_code, voltage_kv, transformer_kva, transformer_z_pct, standard, created_at
		 FROM assets WHERE asset_id = ?`, id,
	).Scan(&a.ID, &a.UID, &a.Site, &a.Spec.VoltageKV, &a.Spec.CapacityKVA, &a.Spec.ImpedancePct, &standard, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "asset %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get asset %d", id)
	}
	a.Spec.Standard = standard.String
	return &a, nil
}

// Append inserts one assessment summary and returns its row id.
func (s *SQLite) Append(ctx context.Context, rec assessment.HistoryRecord) (int64, error) {
	runAt := rec.RunAt
	if runAt.IsZero() {
		runAt = s.now()
	}
	var breakerOK any
	if rec.BreakerOK != nil {
		breakerOK = *rec.BreakerOK
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO assessments (
			asset_id, correlation_id, run_ts, in_a, isc_ka, breaker_ok, hard_status,
			risk_internal, risk_external, risk_final,
			evt_method, evt_exceed_prob, observed_exceed, duration_max_s, dt_s,
			tcc_available, tcc_margin, t_clear_used_s, note
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.AssetID, rec.AssessmentID, runAt.UTC(), nullable(rec.RatedA), nullable(rec.IscKA), breakerOK, string(rec.HardStatus),
		nullable(rec.RiskInternal), nullable(rec.RiskExternal), nullable(rec.RiskFinal),
		string(rec.EVTMethod), nullable(rec.EVTExceedProb), nullable(rec.ObservedExceed), rec.DurationMaxS, rec.DTS,
		rec.TCCAvailable, nullable(rec.TCCMargin), nullable(rec.TClearUsedS), rec.Note,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: insert assessment for asset %d", rec.AssetID)
	}
	id, err := res.LastInsertId()
	return id, eris.Wrap(err, "sqlite: assessment id")
}

// LastTwo returns the two newest records of an asset, newest first.
func (s *SQLite) LastTwo(ctx context.Context, assetID int64) ([]assessment.HistoryRecord, error) {
	return s.History(ctx, assetID, 2)
}

// History returns up to limit records of an asset, newest first.
func (s *SQLite) History(ctx context.Context, assetID int64, limit int) ([]assessment.HistoryRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT assessment_id, asset_id, correlation_id, run_ts, in_a, isc_ka, breaker_ok, hard_status,
			risk_internal, risk_external, risk_final,
			evt_method, evt_exceed_prob, observed_exceed, duration_max_s, dt_s,
			tcc_available, tcc_margin, t_clear_used_s, note
		 FROM assessments WHERE asset_id = ?
		 ORDER BY run_ts DESC, assessment_id DESC LIMIT ?`,
		assetID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list history for asset %d", assetID)
	}
	defer rows.Close()

	records := make([]assessment.HistoryRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: iterate history")
}

// WeatherSnapshot is one ambient observation for a site.
type WeatherSnapshot struct {
	ID            int64     `json:"snapshot_id" yaml:"snapshot_id"`
	Site          string    `json:"site" yaml:"site"`
	At            time.Time `json:"ts" yaml:"ts"`
	TempC         *float64  `json:"temp_c,omitempty" yaml:"temp_c,omitempty"`
	HumidityPct   *float64  `json:"humidity_pct,omitempty" yaml:"humidity_pct,omitempty"`
	ExternalScore float64   `json:"external_risk_score" yaml:"external_risk_score"`
}

// AddWeather stores a snapshot and its external risk score. A zero At uses
// the current time.
func (s *SQLite) AddWeather(ctx context.Context, w WeatherSnapshot) (WeatherSnapshot, error) {
	if w.Site == "" {
		w.Site = assessment.DefaultSite
	}
	if w.At.IsZero() {
		w.At = s.now()
	}
	w.At = w.At.UTC()
	w.ExternalScore = risk.ExternalScore(w.TempC, w.HumidityPct)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO weather_snapshot (site_code, ts, temp_c, humidity_pct, external_risk_score) VALUES (?, ?, ?, ?, ?)`,
		w.Site, w.At, nullable(w.TempC), nullable(w.HumidityPct), w.ExternalScore,
	)
	if err != nil {
		return w, eris.Wrapf(err, "sqlite: insert weather for site %s", w.Site)
	}
	w.ID, err = res.LastInsertId()
	return w, eris.Wrap(err, "sqlite: weather id")
}

// RecentAverageTemp averages the temperature of the newest limit snapshots
// of a site that carry one. It returns nil when there are none. limit <= 0
// uses assessment.DefaultAmbientWindow.
func (s *SQLite) RecentAverageTemp(ctx context.Context, site string, limit int) (*float64, error) {
	if limit <= 0 {
		limit = assessment.DefaultAmbientWindow
	}
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT AVG(temp_c) FROM (
			SELECT temp_c FROM weather_snapshot
			WHERE site_code = ? AND temp_c IS NOT NULL
			ORDER BY ts DESC, snapshot_id DESC LIMIT ?
		)`,
		site, limit,
	).Scan(&avg)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: average temperature for site %s", site)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (assessment.HistoryRecord, error) {
	var rec assessment.HistoryRecord
	var (
		ratedA, iscKA, internal, external, final sql.NullFloat64
		exceedProb, observed, tccMargin, tUsed   sql.NullFloat64
		breakerOK                                sql.NullBool
		hard, method, note                       sql.NullString
	)
	err := row.Scan(&rec.ID, &rec.AssetID, &rec.AssessmentID, &rec.RunAt, &ratedA, &iscKA, &breakerOK, &hard,
		&internal, &external, &final,
		&method, &exceedProb, &observed, &rec.DurationMaxS, &rec.DTS,
		&rec.TCCAvailable, &tccMargin, &tUsed, &note)
	if err != nil {
		return rec, eris.Wrap(err, "sqlite: scan assessment")
	}
	rec.RatedA, rec.IscKA = ptr(ratedA), ptr(iscKA)
	rec.RiskInternal, rec.RiskExternal, rec.RiskFinal = ptr(internal), ptr(external), ptr(final)
	rec.EVTExceedProb, rec.ObservedExceed = ptr(exceedProb), ptr(observed)
	rec.TCCMargin, rec.TClearUsedS = ptr(tccMargin), ptr(tUsed)
	if breakerOK.Valid {
		ok := breakerOK.Bool
		rec.BreakerOK = &ok
	}
	rec.HardStatus = engine.VerdictStatus(hard.String)
	rec.EVTMethod = risk.SamplingMethod(method.String)
	rec.Note = note.String
	return rec, nil
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func ptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
