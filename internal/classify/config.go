// Package classify assigns one of the six part categories to scraped
// product text through a cascade of brand lookup, definitive pattern
// matching, weighted keyword scoring and semantic analysis, with a
// guaranteed weighted fallback.
package classify

// Config holds the cascade's tuning parameters. The thresholds and stage
// weights are empirically tuned values with no derivation from first
// principles; treat them as knobs to validate against a labeled set, not
// as fixed truths.
type Config struct {
	// Acceptance thresholds per stage. A stage's result is final when its
	// confidence clears the stage threshold; otherwise the next stage runs.
	BrandThreshold    float64 `yaml:"brand_threshold" json:"brand_threshold"`
	PatternThreshold  float64 `yaml:"pattern_threshold" json:"pattern_threshold"`
	KeywordThreshold  float64 `yaml:"keyword_threshold" json:"keyword_threshold"`
	SemanticThreshold float64 `yaml:"semantic_threshold" json:"semantic_threshold"`

	// Confidence assigned to brand hits.
	BrandDefinitiveConfidence float64 `yaml:"brand_definitive_confidence" json:"brand_definitive_confidence"`
	BrandAliasConfidence      float64 `yaml:"brand_alias_confidence" json:"brand_alias_confidence"`

	// KeywordCap bounds stage-3 confidence.
	KeywordCap float64 `yaml:"keyword_cap" json:"keyword_cap"`

	// Context-tag multipliers for keyword scoring.
	PrimaryMultiplier       float64 `yaml:"primary_multiplier" json:"primary_multiplier"`
	SpecificationMultiplier float64 `yaml:"specification_multiplier" json:"specification_multiplier"`
	TypeMultiplier          float64 `yaml:"type_multiplier" json:"type_multiplier"`

	// Stage weights for the fallback combination.
	FallbackBrandWeight    float64 `yaml:"fallback_brand_weight" json:"fallback_brand_weight"`
	FallbackPatternWeight  float64 `yaml:"fallback_pattern_weight" json:"fallback_pattern_weight"`
	FallbackKeywordWeight  float64 `yaml:"fallback_keyword_weight" json:"fallback_keyword_weight"`
	FallbackSemanticWeight float64 `yaml:"fallback_semantic_weight" json:"fallback_semantic_weight"`

	// FallbackCap bounds stage-5 confidence below every stage threshold.
	FallbackCap float64 `yaml:"fallback_cap" json:"fallback_cap"`

	// FallbackDefaultConfidence is reported when no stage produced any
	// signal and the engine defaults to motor.
	FallbackDefaultConfidence float64 `yaml:"fallback_default_confidence" json:"fallback_default_confidence"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		BrandThreshold:    95,
		PatternThreshold:  90,
		KeywordThreshold:  85,
		SemanticThreshold: 80,

		BrandDefinitiveConfidence: 99,
		BrandAliasConfidence:      95,

		KeywordCap: 95,

		PrimaryMultiplier:       1.5,
		SpecificationMultiplier: 1.3,
		TypeMultiplier:          1.2,

		FallbackBrandWeight:    0.4,
		FallbackPatternWeight:  0.3,
		FallbackKeywordWeight:  0.2,
		FallbackSemanticWeight: 0.1,

		FallbackCap:               79,
		FallbackDefaultConfidence: 25,
	}
}
