package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/disclosurelab/esgscore/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS panel_runs (
	id          TEXT PRIMARY KEY,
	directory   TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	succeeded   INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE TABLE IF NOT EXISTS report_scores (
	id           TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL REFERENCES panel_runs(id),
	filename     TEXT NOT NULL,
	stock_code   TEXT NOT NULL,
	year         INTEGER NOT NULL,
	company_name TEXT NOT NULL,
	standards    REAL NOT NULL,
	assurance    REAL NOT NULL,
	metrics      REAL NOT NULL,
	total        REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_panel_runs_status ON panel_runs(status);
CREATE INDEX IF NOT EXISTS idx_report_scores_run_id ON report_scores(run_id);
CREATE INDEX IF NOT EXISTS idx_report_scores_stock_year ON report_scores(stock_code, year);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, directory string) (*model.PanelRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO panel_runs (id, directory, status, started_at) VALUES (?, ?, ?, ?)`,
		id, directory, string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.PanelRun{
		ID:        id,
		Directory: directory,
		Status:    model.RunStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, succeeded, failed int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE panel_runs SET status = ?, succeeded = ?, failed = ?, finished_at = ? WHERE id = ?`,
		string(status), succeeded, failed, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.PanelRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, directory, status, succeeded, failed, started_at, finished_at
		 FROM panel_runs WHERE id = ?`,
		runID,
	)

	var r model.PanelRun
	var status string
	var finished sql.NullTime
	err := row.Scan(&r.ID, &r.Directory, &status, &r.Succeeded, &r.Failed, &r.StartedAt, &finished)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	r.Status = model.RunStatus(status)
	if finished.Valid {
		r.FinishedAt = finished.Time
	}
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.PanelRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, directory, status, succeeded, failed, started_at, finished_at
		 FROM panel_runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.PanelRun
	for rows.Next() {
		var r model.PanelRun
		var status string
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Directory, &status, &r.Succeeded, &r.Failed, &r.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Status = model.RunStatus(status)
		if finished.Valid {
			r.FinishedAt = finished.Time
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveScores(ctx context.Context, runID string, results []model.ScoreResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, r := range results {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO report_scores
			 (id, run_id, filename, stock_code, year, company_name, standards, assurance, metrics, total)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), runID,
			r.Report.Filename, r.Report.StockCode, r.Report.Year, r.Report.Company,
			r.Dimensions[model.DimStandardsCompliance],
			r.Dimensions[model.DimThirdPartyAssurance],
			r.Dimensions[model.DimQuantitativeMetrics],
			r.Total,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert score %s", r.Report.Filename)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit scores")
}

func (s *SQLiteStore) ListScores(ctx context.Context, runID string) ([]model.ScoreResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT filename, stock_code, year, company_name, standards, assurance, metrics, total
		 FROM report_scores WHERE run_id = ? ORDER BY stock_code, year`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list scores")
	}
	defer rows.Close()

	var results []model.ScoreResult
	for rows.Next() {
		r, err := scanScoreRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: list scores iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanScoreRow(row scannable) (*model.ScoreResult, error) {
	var r model.ScoreResult
	var standards, assurance, metrics float64

	err := row.Scan(
		&r.Report.Filename, &r.Report.StockCode, &r.Report.Year, &r.Report.Company,
		&standards, &assurance, &metrics, &r.Total,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: scan score")
	}

	r.Dimensions = map[model.Dimension]float64{
		model.DimStandardsCompliance: standards,
		model.DimThirdPartyAssurance: assurance,
		model.DimQuantitativeMetrics: metrics,
	}
	return &r, nil
}
