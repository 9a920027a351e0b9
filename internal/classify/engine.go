package classify

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fpvcatalog/partscrawler/internal/catalog"
	"github.com/fpvcatalog/partscrawler/internal/logger"
)

// Engine runs the classification cascade. It is safe for concurrent use;
// all rule tables are immutable after init.
type Engine struct {
	config Config
	cache  *Cache
	log    *logger.Logger

	// Per-stage acceptance counters, in cascade order. The counts are
	// monotone by construction: a stage only runs when every earlier stage
	// declined.
	brandHits    atomic.Int64
	patternHits  atomic.Int64
	keywordHits  atomic.Int64
	semanticHits atomic.Int64
	fallbackHits atomic.Int64
	cacheHits    atomic.Int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache attaches a result cache consulted before the cascade runs.
func WithCache(c *Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithLogger sets the engine's logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New builds an Engine with the given config.
func New(config Config, opts ...Option) *Engine {
	e := &Engine{
		config: config,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stats is a snapshot of the engine's stage acceptance counters.
type Stats struct {
	BrandHits    int64 `json:"brand_hits"`
	PatternHits  int64 `json:"pattern_hits"`
	KeywordHits  int64 `json:"keyword_hits"`
	SemanticHits int64 `json:"semantic_hits"`
	FallbackHits int64 `json:"fallback_hits"`
	CacheHits    int64 `json:"cache_hits"`
}

// Total returns the number of classifications performed.
func (s Stats) Total() int64 {
	return s.BrandHits + s.PatternHits + s.KeywordHits + s.SemanticHits + s.FallbackHits + s.CacheHits
}

// Stats returns a snapshot of the stage counters.
func (e *Engine) Stats() Stats {
	return Stats{
		BrandHits:    e.brandHits.Load(),
		PatternHits:  e.patternHits.Load(),
		KeywordHits:  e.keywordHits.Load(),
		SemanticHits: e.semanticHits.Load(),
		FallbackHits: e.fallbackHits.Load(),
		CacheHits:    e.cacheHits.Load(),
	}
}

// Classify assigns a category to the product described by name and
// description. ctx may be nil. The engine always returns a result; the
// fallback stage guarantees a category even for signal-free text.
func (e *Engine) Classify(name, description string, ctx *Context) *Result {
	if ctx == nil {
		ctx = &Context{}
	}

	if e.cache != nil {
		if cached, ok := e.cache.Get(name, description, ctx); ok {
			e.cacheHits.Add(1)
			cached.Cached = true
			return cached
		}
	}

	result := e.runCascade(name, description, ctx)

	e.log.ClassifyEvent(name, string(result.Category), string(result.Method), result.Confidence)

	if e.cache != nil {
		e.cache.Put(name, description, ctx, result)
	}
	return result
}

func (e *Engine) runCascade(name, description string, ctx *Context) *Result {
	text := strings.ToLower(name + " " + description)
	var warnings []string

	brand := e.classifyByBrand(text)
	if brand.ok() && brand.confidence >= e.config.BrandThreshold {
		e.brandHits.Add(1)
		return e.finish(brand, MethodBrand, warnings)
	}

	pattern := e.classifyByPattern(text, &warnings)
	if pattern.ok() && pattern.confidence >= e.config.PatternThreshold {
		e.patternHits.Add(1)
		return e.finish(pattern, MethodPattern, warnings)
	}

	keyword := e.classifyByKeywords(text)
	if keyword.ok() && keyword.confidence >= e.config.KeywordThreshold {
		e.keywordHits.Add(1)
		return e.finish(keyword, MethodKeyword, warnings)
	}

	semantic := e.classifyBySemantics(name, text)
	if semantic.ok() && semantic.confidence >= e.config.SemanticThreshold {
		e.semanticHits.Add(1)
		return e.finish(semantic, MethodSemantic, warnings)
	}

	e.fallbackHits.Add(1)
	return e.finish(e.combineFallback(brand, pattern, keyword, semantic, ctx), MethodFallback, warnings)
}

func (e *Engine) finish(outcome *stageOutcome, method Method, warnings []string) *Result {
	return &Result{
		Category:   outcome.category,
		Confidence: outcome.confidence,
		Method:     method,
		Reasoning:  outcome.reasoning,
		Warnings:   warnings,
	}
}

// combineFallback merges the sub-threshold evidence from all four stages
// into a weighted vote. Confidence is capped below every stage threshold
// so downstream consumers can recognize a fallback answer. With no
// evidence at all the vendor's category hint decides, then motor as the
// default of last resort.
func (e *Engine) combineFallback(brand, pattern, keyword, semantic *stageOutcome, ctx *Context) *stageOutcome {
	scores := make(map[catalog.Category]float64, len(catalog.All()))
	var reasoning []string

	add := func(o *stageOutcome, weight float64, stage string) {
		if !o.ok() {
			return
		}
		scores[o.category] += o.confidence * weight
		reasoning = append(reasoning, fmt.Sprintf(
			"%s evidence for %s at confidence %.0f (weight %.1f)", stage, o.category, o.confidence, weight))
	}
	add(brand, e.config.FallbackBrandWeight, "brand")
	add(pattern, e.config.FallbackPatternWeight, "pattern")
	add(keyword, e.config.FallbackKeywordWeight, "keyword")
	add(semantic, e.config.FallbackSemanticWeight, "semantic")

	if len(scores) == 0 {
		category := catalog.Motor
		reason := "no classification signal found, defaulting to motor"
		if ctx.CategoryHint.Valid() {
			category = ctx.CategoryHint
			reason = fmt.Sprintf("no classification signal found, using vendor category hint %s", category)
		}
		return &stageOutcome{
			category:   category,
			confidence: e.config.FallbackDefaultConfidence,
			reasoning:  []string{reason},
		}
	}

	best := catalog.Motor
	bestScore := -1.0
	for _, category := range catalog.All() {
		if s, present := scores[category]; present && s > bestScore {
			best = category
			bestScore = s
		}
	}

	confidence := bestScore
	if confidence > e.config.FallbackCap {
		confidence = e.config.FallbackCap
	}
	reasoning = append(reasoning, fmt.Sprintf("weighted combination selects %s with score %.1f", best, bestScore))

	return &stageOutcome{category: best, confidence: confidence, reasoning: reasoning}
}
