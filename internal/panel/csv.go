package panel

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/disclosurelab/esgscore/internal/model"
)

// WriteResultsCSV writes one row per successfully scored report. Rows are
// ordered by stock code then year, the shape downstream panel regressions
// expect.
func WriteResultsCSV(w io.Writer, results []model.ScoreResult) error {
	sorted := sortResults(results)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"stock_code", "year", "company_name"}
	for _, dim := range model.Dimensions() {
		header = append(header, string(dim))
	}
	header = append(header, "total_score")
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "panel: write CSV header")
	}

	for _, r := range sorted {
		row := []string{
			r.Report.StockCode,
			fmt.Sprintf("%d", r.Report.Year),
			r.Report.Company,
		}
		for _, dim := range model.Dimensions() {
			row = append(row, fmt.Sprintf("%.2f", r.Dimensions[dim]))
		}
		row = append(row, fmt.Sprintf("%.2f", r.Total))
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "panel: write CSV row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "panel: flush CSV")
}

// WriteFailuresCSV writes one row per failed report.
func WriteFailuresCSV(w io.Writer, failures []model.Failure) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"filename", "error"}); err != nil {
		return eris.Wrap(err, "panel: write failures header")
	}
	for _, f := range failures {
		if err := cw.Write([]string{f.Filename, f.Reason}); err != nil {
			return eris.Wrap(err, "panel: write failure row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "panel: flush failures CSV")
}

// sortResults returns a copy ordered by stock code then year.
func sortResults(results []model.ScoreResult) []model.ScoreResult {
	sorted := make([]model.ScoreResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Report.StockCode != sorted[j].Report.StockCode {
			return sorted[i].Report.StockCode < sorted[j].Report.StockCode
		}
		return sorted[i].Report.Year < sorted[j].Report.Year
	})
	return sorted
}
