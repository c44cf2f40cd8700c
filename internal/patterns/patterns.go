// Package patterns holds the curated term lists the scorer matches against.
// The library is loaded once at startup and treated as read-only thereafter.
package patterns

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/disclosurelab/esgscore/internal/model"
)

// Library maps each scoring dimension to its pattern set. Quantitative units
// and KPI headings are kept separate because they are matched differently
// (number+unit regex vs. line-anchored heading).
type Library struct {
	Standards []string `yaml:"standards"`
	Assurance []string `yaml:"assurance"`
	Units     []string `yaml:"units"`
	KPIs      []string `yaml:"kpis"`
}

// Default returns the built-in library. Term lists cover the English names and
// acronyms of the major reporting frameworks plus their Chinese equivalents,
// since mainland CSR/ESG reports are the primary corpus.
func Default() Library {
	return Library{
		Standards: []string{
			"GRI", "Global Reporting Initiative",
			"SASB", "Sustainability Accounting Standards Board",
			"TCFD", "Task Force on Climate-Related Financial Disclosures",
			"ISSB", "International Sustainability Standards Board",
			"CSRD", "Corporate Sustainability Reporting Directive",
			"SDGs", "Sustainable Development Goals",
			"全球报告倡议", "可持续发展会计准则", "气候相关财务披露",
			"国际可持续发展准则", "欧盟企业可持续发展报告指令", "上市公司社会责任指引",
		},
		Assurance: []string{
			"第三方鉴证", "独立验证", "外部审计", "独立保证", "独立鉴证报告",
			"独立核验", "外部鉴证", "外部核验", "独立审计师报告",
			"assured by", "verified by", "assurance",
			"third-party verification", "independent audit",
		},
		Units: []string{"吨", "%", "千瓦时", "立方米", "小时", "人次", "元"},
		KPIs: []string{
			"关键绩效指标", "环境绩效数据", "社会绩效数据", "可持续发展表现",
			"ESG 数据", "绩效指标一览", "核心指标", "KPI",
		},
	}
}

// ForDimension returns the keyword patterns for the given dimension. For the
// quantitative metrics dimension this is the KPI heading list; units are
// exposed separately because they require a numeric prefix to count.
func (l Library) ForDimension(dim model.Dimension) []string {
	switch dim {
	case model.DimStandardsCompliance:
		return l.Standards
	case model.DimThirdPartyAssurance:
		return l.Assurance
	case model.DimQuantitativeMetrics:
		return l.KPIs
	default:
		return nil
	}
}

// Validate checks that every dimension has at least one non-blank pattern.
func (l Library) Validate() error {
	var errs []string
	sets := map[string][]string{
		"standards": l.Standards,
		"assurance": l.Assurance,
		"units":     l.Units,
		"kpis":      l.KPIs,
	}
	for name, set := range sets {
		if len(set) == 0 {
			errs = append(errs, name+" must have at least one pattern")
			continue
		}
		for _, p := range set {
			if strings.TrimSpace(p) == "" {
				errs = append(errs, name+" contains a blank pattern")
				break
			}
		}
	}
	if len(errs) > 0 {
		return eris.Errorf("patterns: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LoadFile reads a YAML pattern library. Sections present in the file replace
// the corresponding defaults; omitted sections keep the built-in lists.
func LoadFile(path string) (Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Library{}, eris.Wrapf(err, "patterns: read %s", path)
	}

	var override Library
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Library{}, eris.Wrapf(err, "patterns: parse %s", path)
	}

	lib := Default()
	if len(override.Standards) > 0 {
		lib.Standards = override.Standards
	}
	if len(override.Assurance) > 0 {
		lib.Assurance = override.Assurance
	}
	if len(override.Units) > 0 {
		lib.Units = override.Units
	}
	if len(override.KPIs) > 0 {
		lib.KPIs = override.KPIs
	}

	if err := lib.Validate(); err != nil {
		return Library{}, err
	}
	return lib, nil
}

// Marshal renders the library as YAML, for the patterns command.
func (l Library) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(l)
	if err != nil {
		return nil, eris.Wrap(err, "patterns: marshal")
	}
	return data, nil
}
