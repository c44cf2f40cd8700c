package scorer

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/disclosurelab/esgscore/internal/config"
	"github.com/disclosurelab/esgscore/internal/model"
	"github.com/disclosurelab/esgscore/internal/patterns"
)

// ScoringError indicates input the scorer cannot meaningfully process.
type ScoringError struct {
	Reason string
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring error: %s", e.Reason)
}

// Scorer scans report text against the pattern library and produces bounded
// per-dimension scores. It is pure: the same text always yields the same
// result.
type Scorer struct {
	lib patterns.Library
	cfg config.ScorerConfig

	// Precompiled at construction; the library is immutable afterwards.
	unitRes []unitPattern
	kpiRes  []kpiPattern
}

type unitPattern struct {
	unit string
	re   *regexp.Regexp
}

type kpiPattern struct {
	keyword string
	re      *regexp.Regexp
}

// New creates a Scorer. The library and config are validated once here so
// Score itself never fails on configuration.
func New(lib patterns.Library, cfg config.ScorerConfig) (*Scorer, error) {
	if err := lib.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	s := &Scorer{lib: lib, cfg: cfg}
	for _, unit := range lib.Units {
		re := regexp.MustCompile(`\d+(?:\.\d+)?\s*` + regexp.QuoteMeta(strings.ToLower(unit)))
		s.unitRes = append(s.unitRes, unitPattern{unit: unit, re: re})
	}
	for _, kw := range lib.KPIs {
		// KPI keywords only count as evidence when they open a line,
		// i.e. look like a section heading rather than running prose.
		re := regexp.MustCompile(`(?m)^\s*` + regexp.QuoteMeta(strings.ToLower(kw)))
		s.kpiRes = append(s.kpiRes, kpiPattern{keyword: kw, re: re})
	}
	return s, nil
}

// Score computes the three dimension scores for the given report text and
// aggregates them into a ScoreResult. Each dimension score is in [0,1] and the
// total is exactly their sum.
func (s *Scorer) Score(report model.Report, text string) (*model.ScoreResult, error) {
	if !utf8.ValidString(text) {
		return nil, &ScoringError{Reason: "text is not valid UTF-8"}
	}

	result := &model.ScoreResult{
		Report:     report,
		Dimensions: make(map[model.Dimension]float64, 3),
		Matched:    make(map[model.Dimension][]string),
	}

	if strings.TrimSpace(text) == "" {
		for _, dim := range model.Dimensions() {
			result.Dimensions[dim] = 0
		}
		return result, nil
	}

	// Two normalized views: folded keeps line structure for heading-anchored
	// matches, collapsed flattens all whitespace for substring matches.
	folded := strings.ToLower(text)
	collapsed := strings.Join(strings.Fields(folded), " ")

	stdHits := matchKeywords(s.lib.Standards, collapsed)
	assHits := matchKeywords(s.lib.Assurance, collapsed)
	qmHits := s.matchQuantitative(folded, collapsed)

	result.Dimensions[model.DimStandardsCompliance] = s.mapScore(len(stdHits))
	result.Dimensions[model.DimThirdPartyAssurance] = s.mapScore(len(assHits))
	result.Dimensions[model.DimQuantitativeMetrics] = s.mapScore(len(qmHits))

	if len(stdHits) > 0 {
		result.Matched[model.DimStandardsCompliance] = stdHits
	}
	if len(assHits) > 0 {
		result.Matched[model.DimThirdPartyAssurance] = assHits
	}
	if len(qmHits) > 0 {
		result.Matched[model.DimQuantitativeMetrics] = qmHits
	}

	// Sum in declaration order; map iteration order would make the float
	// total bit-unstable across runs.
	for _, dim := range model.Dimensions() {
		result.Total += result.Dimensions[dim]
	}

	return result, nil
}

// mapScore maps a distinct-match count to [0,1]: zero evidence scores zero,
// any evidence starts at base and each further distinct match adds step,
// capped at 1.0. Monotonic non-decreasing in n.
func (s *Scorer) mapScore(n int) float64 {
	if n <= 0 {
		return 0
	}
	return math.Min(1, s.cfg.Base+s.cfg.Step*float64(n-1))
}

// matchKeywords returns the distinct keywords present (case-insensitive) in
// the collapsed text, preserving library order.
func matchKeywords(keywords []string, collapsed string) []string {
	var matched []string
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		folded := strings.ToLower(kw)
		if seen[folded] {
			continue
		}
		if strings.Contains(collapsed, folded) {
			matched = append(matched, kw)
			seen[folded] = true
		}
	}
	return matched
}

// matchQuantitative collects quantitative evidence: distinct measurement
// units appearing with a numeric prefix, plus distinct KPI section headings.
func (s *Scorer) matchQuantitative(folded, collapsed string) []string {
	var matched []string
	for _, up := range s.unitRes {
		if up.re.MatchString(collapsed) {
			matched = append(matched, up.unit)
		}
	}
	for _, kp := range s.kpiRes {
		if kp.re.MatchString(folded) {
			matched = append(matched, kp.keyword)
		}
	}
	return matched
}
