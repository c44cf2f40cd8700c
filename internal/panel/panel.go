package panel

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/disclosurelab/esgscore/internal/model"
)

// Options controls a batch run.
type Options struct {
	// MinYear/MaxYear restrict processing to reports in the inclusive year
	// window; zero disables the bound.
	MinYear int
	MaxYear int
	// Limit caps the number of files processed; zero means no cap.
	Limit int
}

// Runner walks a directory of report files sequentially and accumulates
// successes and failures. One file failing never aborts the batch.
type Runner struct {
	analyzer *Analyzer
	opts     Options
}

// NewRunner creates a Runner.
func NewRunner(analyzer *Analyzer, opts Options) *Runner {
	return &Runner{analyzer: analyzer, opts: opts}
}

// Run processes every .pdf and .txt file in dir (sorted by name, so runs are
// reproducible) and returns the collected outcome. It only returns an error
// when the directory itself cannot be listed or the context is canceled.
func (r *Runner) Run(ctx context.Context, dir string) (*model.BatchOutcome, error) {
	files, err := listReportFiles(dir)
	if err != nil {
		return nil, err
	}

	if r.opts.Limit > 0 && len(files) > r.opts.Limit {
		files = files[:r.opts.Limit]
	}

	log := zap.L().With(zap.String("dir", dir))
	log.Info("panel run starting", zap.Int("files", len(files)))

	outcome := &model.BatchOutcome{}
	for _, filename := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := r.processOne(ctx, dir, filename)
		if err != nil {
			outcome.Failures = append(outcome.Failures, model.Failure{
				Filename: filename,
				Reason:   err.Error(),
			})
			log.Warn("report failed",
				zap.String("file", filename),
				zap.Error(err),
			)
			continue
		}
		outcome.Results = append(outcome.Results, *result)
		log.Info("report scored",
			zap.String("file", filename),
			zap.Float64("total", result.Total),
		)
	}

	log.Info("panel run complete",
		zap.Int("succeeded", len(outcome.Results)),
		zap.Int("failed", len(outcome.Failures)),
	)
	return outcome, nil
}

// processOne runs parse -> extract -> score for a single file.
func (r *Runner) processOne(ctx context.Context, dir, filename string) (*model.ScoreResult, error) {
	report, err := model.ParseFilename(filename)
	if err != nil {
		return nil, err
	}
	if r.opts.MinYear > 0 && report.Year < r.opts.MinYear {
		return nil, eris.Errorf("year %d before window start %d", report.Year, r.opts.MinYear)
	}
	if r.opts.MaxYear > 0 && report.Year > r.opts.MaxYear {
		return nil, eris.Errorf("year %d after window end %d", report.Year, r.opts.MaxYear)
	}

	text, err := r.analyzer.extractor.Extract(ctx, filepath.Join(dir, filename))
	if err != nil {
		return nil, err
	}

	return r.analyzer.scorer.Score(report, text)
}

// listReportFiles returns the names of .pdf/.txt files in dir, sorted.
func listReportFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "panel: read directory %s", dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pdf", ".txt":
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
