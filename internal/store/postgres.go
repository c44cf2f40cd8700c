package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/disclosurelab/esgscore/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs. pgxmock satisfies it in
// tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS panel_runs (
	id          TEXT PRIMARY KEY,
	directory   TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'running',
	succeeded   INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0,
	started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS report_scores (
	id           TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL REFERENCES panel_runs(id),
	filename     TEXT NOT NULL,
	stock_code   TEXT NOT NULL,
	year         INTEGER NOT NULL,
	company_name TEXT NOT NULL,
	standards    DOUBLE PRECISION NOT NULL,
	assurance    DOUBLE PRECISION NOT NULL,
	metrics      DOUBLE PRECISION NOT NULL,
	total        DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_panel_runs_status ON panel_runs(status);
CREATE INDEX IF NOT EXISTS idx_report_scores_run_id ON report_scores(run_id);
CREATE INDEX IF NOT EXISTS idx_report_scores_stock_year ON report_scores(stock_code, year);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, directory string) (*model.PanelRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO panel_runs (id, directory, status, started_at) VALUES ($1, $2, $3, $4)`,
		id, directory, string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.PanelRun{
		ID:        id,
		Directory: directory,
		Status:    model.RunStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, succeeded, failed int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE panel_runs SET status = $1, succeeded = $2, failed = $3, finished_at = $4 WHERE id = $5`,
		string(status), succeeded, failed, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.PanelRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, directory, status, succeeded, failed, started_at, finished_at
		 FROM panel_runs WHERE id = $1`,
		runID,
	)

	var r model.PanelRun
	var status string
	var finished sql.NullTime
	err := row.Scan(&r.ID, &r.Directory, &status, &r.Succeeded, &r.Failed, &r.StartedAt, &finished)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan run")
	}
	r.Status = model.RunStatus(status)
	if finished.Valid {
		r.FinishedAt = finished.Time
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.PanelRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, directory, status, succeeded, failed, started_at, finished_at
		 FROM panel_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.PanelRun
	for rows.Next() {
		var r model.PanelRun
		var status string
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Directory, &status, &r.Succeeded, &r.Failed, &r.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.Status = model.RunStatus(status)
		if finished.Valid {
			r.FinishedAt = finished.Time
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SaveScores(ctx context.Context, runID string, results []model.ScoreResult) error {
	for _, r := range results {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO report_scores
			 (id, run_id, filename, stock_code, year, company_name, standards, assurance, metrics, total)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			uuid.New().String(), runID,
			r.Report.Filename, r.Report.StockCode, r.Report.Year, r.Report.Company,
			r.Dimensions[model.DimStandardsCompliance],
			r.Dimensions[model.DimThirdPartyAssurance],
			r.Dimensions[model.DimQuantitativeMetrics],
			r.Total,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert score %s", r.Report.Filename)
		}
	}
	return nil
}

func (s *PostgresStore) ListScores(ctx context.Context, runID string) ([]model.ScoreResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT filename, stock_code, year, company_name, standards, assurance, metrics, total
		 FROM report_scores WHERE run_id = $1 ORDER BY stock_code, year`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list scores")
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
	return results, eris.Wrap(rows.Err(), "postgres: list scores iterate")
}
