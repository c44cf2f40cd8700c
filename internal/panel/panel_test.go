package panel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disclosurelab/esgscore/internal/config"
	"github.com/disclosurelab/esgscore/internal/extract"
	"github.com/disclosurelab/esgscore/internal/model"
	"github.com/disclosurelab/esgscore/internal/patterns"
	"github.com/disclosurelab/esgscore/internal/scorer"
)

const sampleReport = `This report follows the GRI Standards and SASB guidance.
Our data has been independently verified by external auditors (assurance).
Scope 1 emissions fell 12.5% year on year.`

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	sc, err := scorer.New(patterns.Default(), scorer.DefaultConfig())
	require.NoError(t, err)
	ex, err := extract.New(config.ExtractConfig{})
	require.NoError(t, err)
	return NewAnalyzer(ex, sc)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "600519-2022-Moutai.txt", sampleReport)

	result, err := newTestAnalyzer(t).AnalyzeFile(context.Background(), filepath.Join(dir, "600519-2022-Moutai.txt"))
	require.NoError(t, err)

	assert.Equal(t, "600519", result.Report.StockCode)
	assert.Equal(t, 2022, result.Report.Year)
	for _, dim := range model.Dimensions() {
		assert.Greater(t, result.Dimensions[dim], 0.0, "dimension %s", dim)
	}

	m := result.Map()
	assert.Contains(t, m, "standards_compliance")
	assert.Contains(t, m, "third_party_assurance")
	assert.Contains(t, m, "quantitative_metrics")
	assert.Contains(t, m, "total_score")
}

func TestAnalyzeFileUnconventionalName(t *testing.T) {
	// Single-file analysis does not require the panel naming convention.
	dir := t.TempDir()
	writeFile(t, dir, "draft.txt", sampleReport)

	result, err := newTestAnalyzer(t).AnalyzeFile(context.Background(), filepath.Join(dir, "draft.txt"))
	require.NoError(t, err)
	assert.Equal(t, "draft.txt", result.Report.Filename)
	assert.Empty(t, result.Report.StockCode)
	assert.Greater(t, result.Total, 0.0)
}

func TestAnalyzeFileSurfacesErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "000001-2020-Bank.pdf", "not a pdf at all")

	_, err := newTestAnalyzer(t).AnalyzeFile(context.Background(), filepath.Join(dir, "000001-2020-Bank.pdf"))
	require.Error(t, err)
	assert.True(t, extract.IsNotReadable(err))
}

func TestRunOneSuccessOneFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "600519-2022-Moutai.txt", sampleReport)
	writeFile(t, dir, "000001-2020-Bank.pdf", "corrupt bytes, not a pdf")

	runner := NewRunner(newTestAnalyzer(t), Options{})
	outcome, err := runner.Run(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, outcome.Results, 1)
	require.Len(t, outcome.Failures, 1)
	assert.Equal(t, "600519-2022-Moutai.txt", outcome.Results[0].Report.Filename)
	assert.Equal(t, "000001-2020-Bank.pdf", outcome.Failures[0].Filename)
	assert.NotEmpty(t, outcome.Failures[0].Reason)
}

func TestRunUnconventionalFilenameFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", sampleReport)

	outcome, err := NewRunner(newTestAnalyzer(t), Options{}).Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, outcome.Results)
	require.Len(t, outcome.Failures, 1)
	assert.Contains(t, outcome.Failures[0].Reason, "does not match")
}

func TestRunYearWindow(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "600519-2014-Moutai.txt", sampleReport)
	writeFile(t, dir, "600519-2020-Moutai.txt", sampleReport)
	writeFile(t, dir, "600519-2030-Moutai.txt", sampleReport)

	outcome, err := NewRunner(newTestAnalyzer(t), Options{MinYear: 2015, MaxYear: 2023}).Run(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, outcome.Results, 1)
	assert.Equal(t, 2020, outcome.Results[0].Report.Year)
	assert.Len(t, outcome.Failures, 2)
}

func TestRunLimit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "600519-2020-A.txt", sampleReport)
	writeFile(t, dir, "600519-2021-A.txt", sampleReport)
	writeFile(t, dir, "600519-2022-A.txt", sampleReport)

	outcome, err := NewRunner(newTestAnalyzer(t), Options{Limit: 2}).Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, outcome.Results, 2)
}

func TestRunSkipsNonReportFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "600519-2020-A.txt", sampleReport)
	writeFile(t, dir, "readme.md", "not a report")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	outcome, err := NewRunner(newTestAnalyzer(t), Options{}).Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, outcome.Results, 1)
	assert.Empty(t, outcome.Failures)
}

func TestRunMissingDirectory(t *testing.T) {
	_, err := NewRunner(newTestAnalyzer(t), Options{}).Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestRunIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "600519-2020-A.txt", sampleReport)

	runner := NewRunner(newTestAnalyzer(t), Options{})
	first, err := runner.Run(context.Background(), dir)
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, first.Results[0].Dimensions, second.Results[0].Dimensions)
	assert.Equal(t, first.Results[0].Total, second.Results[0].Total)
}
