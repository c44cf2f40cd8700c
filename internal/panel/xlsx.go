package panel

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/disclosurelab/esgscore/internal/model"
)

// WriteResultsXLSX writes the success rows as a single-sheet workbook, for
// analysts who take the panel straight into Excel.
func WriteResultsXLSX(w io.Writer, results []model.ScoreResult) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("scores")
	if err != nil {
		return eris.Wrap(err, "panel: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range []string{"stock_code", "year", "company_name"} {
		header.AddCell().SetString(col)
	}
	for _, dim := range model.Dimensions() {
		header.AddCell().SetString(string(dim))
	}
	header.AddCell().SetString("total_score")

	for _, r := range sortResults(results) {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Report.StockCode)
		row.AddCell().SetInt(r.Report.Year)
		row.AddCell().SetString(r.Report.Company)
		for _, dim := range model.Dimensions() {
			row.AddCell().SetFloat(r.Dimensions[dim])
		}
		row.AddCell().SetFloat(r.Total)
	}

	return eris.Wrap(file.Write(w), "panel: write xlsx")
}
