package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/disclosurelab/esgscore/internal/extract"
	"github.com/disclosurelab/esgscore/internal/panel"
	"github.com/disclosurelab/esgscore/internal/patterns"
	"github.com/disclosurelab/esgscore/internal/scorer"
)

// loadLibrary returns the active pattern library: built-in defaults, or the
// configured override file merged over them.
func loadLibrary() (patterns.Library, error) {
	if cfg.Scorer.PatternsFile == "" {
		return patterns.Default(), nil
	}
	lib, err := patterns.LoadFile(cfg.Scorer.PatternsFile)
	if err != nil {
		return patterns.Library{}, err
	}
	zap.L().Info("pattern overrides loaded", zap.String("file", cfg.Scorer.PatternsFile))
	return lib, nil
}

// newAnalyzer wires extractor and scorer from config.
func newAnalyzer() (*panel.Analyzer, error) {
	lib, err := loadLibrary()
	if err != nil {
		return nil, err
	}

	sc, err := scorer.New(lib, cfg.Scorer)
	if err != nil {
		return nil, eris.Wrap(err, "init scorer")
	}

	ex, err := extract.New(cfg.Extract)
	if err != nil {
		return nil, eris.Wrap(err, "init extractor")
	}

	return panel.NewAnalyzer(ex, sc), nil
}
