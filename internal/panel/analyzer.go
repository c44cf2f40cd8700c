// Package panel drives single-report and batch analysis of disclosure files.
package panel

import (
	"context"
	"path/filepath"

	"github.com/disclosurelab/esgscore/internal/extract"
	"github.com/disclosurelab/esgscore/internal/model"
	"github.com/disclosurelab/esgscore/internal/scorer"
)

// Analyzer ties extraction and scoring together for one report at a time.
type Analyzer struct {
	extractor *extract.Extractor
	scorer    *scorer.Scorer
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(extractor *extract.Extractor, sc *scorer.Scorer) *Analyzer {
	return &Analyzer{extractor: extractor, scorer: sc}
}

// AnalyzeFile extracts and scores a single report file. This is the
// programmatic entry point: errors surface to the caller directly. Filenames
// outside the panel naming convention are still scored; the report identity
// then carries only the filename.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*model.ScoreResult, error) {
	filename := filepath.Base(path)
	report, err := model.ParseFilename(filename)
	if err != nil {
		report = model.Report{Filename: filename}
	}

	text, err := a.extractor.Extract(ctx, path)
	if err != nil {
		return nil, err
	}

	return a.scorer.Score(report, text)
}
