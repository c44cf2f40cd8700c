package scorer

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disclosurelab/esgscore/internal/config"
	"github.com/disclosurelab/esgscore/internal/model"
	"github.com/disclosurelab/esgscore/internal/patterns"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := New(patterns.Default(), DefaultConfig())
	require.NoError(t, err)
	return s
}

func scoreText(t *testing.T, text string) *model.ScoreResult {
	t.Helper()
	result, err := newTestScorer(t).Score(model.Report{Filename: "test.txt"}, text)
	require.NoError(t, err)
	return result
}

func TestMapScore(t *testing.T) {
	s := newTestScorer(t)

	tests := []struct {
		name string
		n    int
		want float64
	}{
		{"no evidence", 0, 0},
		{"single match", 1, 0.4},
		{"two matches", 2, 0.55},
		{"three matches", 3, 0.7},
		{"five matches hits cap", 5, 1.0},
		{"beyond cap stays capped", 20, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.mapScore(tt.n), 0.001)
		})
	}
}

func TestMapScoreMonotonic(t *testing.T) {
	s := newTestScorer(t)
	prev := 0.0
	for n := 0; n <= 30; n++ {
		got := s.mapScore(n)
		assert.GreaterOrEqual(t, got, prev, "score must never decrease with more matches (n=%d)", n)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
		prev = got
	}
}

func TestScoreBoundsAndTotal(t *testing.T) {
	texts := []string{
		"",
		"   \n\t  ",
		"plain narrative with nothing quantitative",
		"GRI Standards and SASB alignment, independently assured by KPMG, 42.5% reduction",
		strings.Repeat("GRI SASB TCFD ISSB CSRD SDGs assurance verified by 99% 15 吨 ", 50),
	}

	for _, text := range texts {
		result := scoreText(t, text)

		var sum float64
		for _, dim := range model.Dimensions() {
			score, ok := result.Dimensions[dim]
			require.True(t, ok, "missing dimension %s", dim)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
			sum += score
		}
		assert.InDelta(t, sum, result.Total, 1e-9, "total must be the exact sum of dimension scores")
		assert.LessOrEqual(t, result.Total, 3.0)
	}
}

func TestScoreEmptyTextAllZero(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\t  \n"} {
		result := scoreText(t, text)
		for _, dim := range model.Dimensions() {
			assert.Zero(t, result.Dimensions[dim], "dimension %s must be 0 for blank text", dim)
		}
		assert.Zero(t, result.Total)
	}
}

func TestScoreNoMatchesAllZero(t *testing.T) {
	result := scoreText(t, "The quick brown fox jumps over the lazy dog.\nNothing to see here.")
	for _, dim := range model.Dimensions() {
		assert.Zero(t, result.Dimensions[dim])
	}
	assert.Zero(t, result.Total)
}

func TestScoreWorkedExample(t *testing.T) {
	// Text referencing a standard, assurance language, and percentage figures
	// must score nonzero on all three dimensions.
	text := `This report follows the GRI Standards.
Our emissions data has been independently assured by a third party (assurance statement attached).
Emissions fell 12.5% while water use dropped 8% and energy intensity improved 3.2%.`

	result := scoreText(t, text)
	for _, dim := range model.Dimensions() {
		assert.Greater(t, result.Dimensions[dim], 0.0, "dimension %s", dim)
	}
	assert.Greater(t, result.Total, 0.0)
}

func TestScoreMonotonicInDistinctPatterns(t *testing.T) {
	base := "We reference GRI in this report."
	richer := base + " We also align with SASB and the TCFD recommendations."

	a := scoreText(t, base)
	b := scoreText(t, richer)
	assert.GreaterOrEqual(t,
		b.Dimensions[model.DimStandardsCompliance],
		a.Dimensions[model.DimStandardsCompliance],
		"adding distinct matches must never decrease the score")
	assert.Greater(t, b.Dimensions[model.DimStandardsCompliance], a.Dimensions[model.DimStandardsCompliance])
}

func TestScoreDeterministic(t *testing.T) {
	text := "GRI Standards, verified by auditors, 42% renewable energy.\nKPI\n核心指标"
	first := scoreText(t, text)
	second := scoreText(t, text)
	assert.Equal(t, first.Dimensions, second.Dimensions)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Matched, second.Matched)
}

func TestScoreTotalBitStable(t *testing.T) {
	// Three nonzero dimensions so the total depends on summation order.
	text := `GRI Standards and SASB guidance apply.
Independently assured by external auditors (assurance).
Emissions fell 12.5% and water use dropped 8%.`

	first := scoreText(t, text)
	want := math.Float64bits(first.Total)
	for i := 0; i < 100; i++ {
		again := scoreText(t, text)
		require.Equal(t, want, math.Float64bits(again.Total),
			"identical text must always yield the identical total")
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	upper := scoreText(t, "GRI STANDARDS APPLIED, ASSURED BY AUDITORS")
	lower := scoreText(t, "gri standards applied, assured by auditors")
	assert.Equal(t, upper.Dimensions, lower.Dimensions)
}

func TestQuantitativeUnitRequiresNumber(t *testing.T) {
	// A bare unit without a numeric prefix is not quantitative evidence.
	noNumber := scoreText(t, "we measure emissions in 吨 of CO2")
	assert.Zero(t, noNumber.Dimensions[model.DimQuantitativeMetrics])

	withNumber := scoreText(t, "emissions totalled 1250 吨 of CO2")
	assert.Greater(t, withNumber.Dimensions[model.DimQuantitativeMetrics], 0.0)
}

func TestQuantitativeKPIHeadingAnchored(t *testing.T) {
	// KPI keywords count only at the start of a line.
	inline := scoreText(t, "our KPI framework is described elsewhere")
	assert.Zero(t, inline.Dimensions[model.DimQuantitativeMetrics])

	heading := scoreText(t, "Section 4\nKPI\ndetails follow")
	assert.Greater(t, heading.Dimensions[model.DimQuantitativeMetrics], 0.0)
}

func TestScoreRejectsInvalidUTF8(t *testing.T) {
	s := newTestScorer(t)
	_, err := s.Score(model.Report{}, string([]byte{0xff, 0xfe, 0xfd}))
	require.Error(t, err)

	var scoringErr *ScoringError
	require.ErrorAs(t, err, &scoringErr)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ScorerConfig
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"zero base", config.ScorerConfig{Base: 0, Step: 0.1}, true},
		{"base above one", config.ScorerConfig{Base: 1.5, Step: 0.1}, true},
		{"negative step", config.ScorerConfig{Base: 0.4, Step: -0.1}, true},
		{"zero step allowed", config.ScorerConfig{Base: 0.4, Step: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
