// Package store persists panel runs and their per-report scores.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/disclosurelab/esgscore/internal/config"
	"github.com/disclosurelab/esgscore/internal/model"
)

// Store defines the persistence interface for panel runs.
type Store interface {
	CreateRun(ctx context.Context, directory string) (*model.PanelRun, error)
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, succeeded, failed int) error
	GetRun(ctx context.Context, runID string) (*model.PanelRun, error)
	ListRuns(ctx context.Context, limit int) ([]model.PanelRun, error)

	SaveScores(ctx context.Context, runID string, results []model.ScoreResult) error
	ListScores(ctx context.Context, runID string) ([]model.ScoreResult, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
