// Package scorer implements the rule-based quality scoring of disclosure
// report text: normalization, pattern matching, and the bounded mapping from
// match evidence to per-dimension scores.
package scorer

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/disclosurelab/esgscore/internal/config"
)

// DefaultConfig returns a config.ScorerConfig with the default scoring curve.
// With base 0.4 and step 0.15 a dimension reaches 1.0 at five distinct
// matches.
func DefaultConfig() config.ScorerConfig {
	return config.ScorerConfig{
		Base: 0.4,
		Step: 0.15,
	}
}

// ValidateConfig checks that a ScorerConfig produces a monotonic mapping
// bounded in [0,1].
func ValidateConfig(c config.ScorerConfig) error {
	var errs []string

	if c.Base <= 0 || c.Base > 1 {
		errs = append(errs, fmt.Sprintf("base must be in (0,1], got %g", c.Base))
	}
	if c.Step < 0 {
		errs = append(errs, fmt.Sprintf("step must be >= 0, got %g", c.Step))
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
