package model

import (
	"regexp"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Dimension names a scoring dimension. Values double as CSV column headers
// and JSON keys, so they are stable identifiers.
type Dimension string

const (
	DimStandardsCompliance Dimension = "standards_compliance"
	DimThirdPartyAssurance Dimension = "third_party_assurance"
	DimQuantitativeMetrics Dimension = "quantitative_metrics"
)

// Dimensions lists all scoring dimensions in output order.
func Dimensions() []Dimension {
	return []Dimension{
		DimStandardsCompliance,
		DimThirdPartyAssurance,
		DimQuantitativeMetrics,
	}
}

// Report identifies a single disclosure report, parsed from its filename.
// Filename convention: {stock-code}-{year}-{company-name}.{pdf|txt}
type Report struct {
	Filename  string `json:"filename"`
	StockCode string `json:"stock_code"`
	Year      int    `json:"year"`
	Company   string `json:"company_name"`
}

var filenameRe = regexp.MustCompile(`^(\d{6})-(\d{4})-(.+)\.(?i:pdf|txt)$`)

// ParseFilename parses the panel filename convention. The extension must be
// .pdf or .txt (case-insensitive).
func ParseFilename(filename string) (Report, error) {
	m := filenameRe.FindStringSubmatch(filename)
	if m == nil {
		return Report{}, eris.Errorf("filename %q does not match {stock-code}-{year}-{company-name}.{pdf|txt}", filename)
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return Report{}, eris.Wrapf(err, "filename %q: parse year", filename)
	}
	return Report{
		Filename:  filename,
		StockCode: m[1],
		Year:      year,
		Company:   m[3],
	}, nil
}

// ScoreResult holds the per-dimension scores for one report. Each dimension
// score is in [0,1]; Total is always the sum of the three dimension scores.
// Immutable once computed.
type ScoreResult struct {
	Report     Report                 `json:"report"`
	Dimensions map[Dimension]float64  `json:"dimensions"`
	Matched    map[Dimension][]string `json:"matched,omitempty"`
	Total      float64                `json:"total_score"`
}

// Map returns the result keyed by the stable dimension names plus
// "total_score", the documented programmatic shape.
func (r *ScoreResult) Map() map[string]float64 {
	out := make(map[string]float64, len(r.Dimensions)+1)
	for dim, score := range r.Dimensions {
		out[string(dim)] = score
	}
	out["total_score"] = r.Total
	return out
}

// Failure records a report that could not be processed.
type Failure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// BatchOutcome collects the results of one panel run. Successes are keyed by
// filename; order of Results follows processing order.
type BatchOutcome struct {
	Results  []ScoreResult `json:"results"`
	Failures []Failure     `json:"failures"`
}

// RunStatus represents the state of a stored panel run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// PanelRun is the persisted record of a batch run.
type PanelRun struct {
	ID         string    `json:"id"`
	Directory  string    `json:"directory"`
	Status     RunStatus `json:"status"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}
