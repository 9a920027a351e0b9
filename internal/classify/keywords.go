package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fpvcatalog/partscrawler/internal/catalog"
)

// contextTag classifies the role a keyword plays in product copy. Primary
// keywords name the part itself, specification keywords are measurement
// vocabulary, type keywords describe variants and materials. Each tag has
// its own score multiplier.
type contextTag int

const (
	tagPrimary contextTag = iota
	tagSpecification
	tagType
)

type weightedKeyword struct {
	keyword string
	weight  float64
	tag     contextTag
}

var keywordTable = map[catalog.Category][]weightedKeyword{
	catalog.Motor: {
		{keyword: "motor", weight: 40, tag: tagPrimary},
		{keyword: "kv", weight: 25, tag: tagSpecification},
		{keyword: "stator", weight: 25, tag: tagSpecification},
		{keyword: "thrust", weight: 20, tag: tagSpecification},
		{keyword: "brushless", weight: 20, tag: tagType},
		{keyword: "unibell", weight: 15, tag: tagType},
	},
	catalog.Battery: {
		{keyword: "battery", weight: 40, tag: tagPrimary},
		{keyword: "lipo", weight: 30, tag: tagPrimary},
		{keyword: "mah", weight: 25, tag: tagSpecification},
		{keyword: "discharge", weight: 20, tag: tagSpecification},
		{keyword: "c rating", weight: 20, tag: tagSpecification},
		{keyword: "cell", weight: 15, tag: tagType},
	},
	catalog.Prop: {
		{keyword: "propeller", weight: 40, tag: tagPrimary},
		{keyword: "prop", weight: 30, tag: tagPrimary},
		{keyword: "pitch", weight: 20, tag: tagSpecification},
		{keyword: "blade", weight: 25, tag: tagType},
		{keyword: "polycarbonate", weight: 15, tag: tagType},
	},
	catalog.Frame: {
		{keyword: "frame", weight: 40, tag: tagPrimary},
		{keyword: "wheelbase", weight: 30, tag: tagSpecification},
		{keyword: "arm thickness", weight: 20, tag: tagSpecification},
		{keyword: "carbon fiber", weight: 15, tag: tagType},
		{keyword: "freestyle", weight: 15, tag: tagType},
		{keyword: "deadcat", weight: 15, tag: tagType},
	},
	catalog.Stack: {
		{keyword: "flight controller", weight: 40, tag: tagPrimary},
		{keyword: "esc", weight: 35, tag: tagPrimary},
		{keyword: "stack", weight: 30, tag: tagPrimary},
		{keyword: "gyro", weight: 25, tag: tagSpecification},
		{keyword: "betaflight", weight: 20, tag: tagSpecification},
		{keyword: "4-in-1", weight: 20, tag: tagType},
		{keyword: "aio", weight: 20, tag: tagType},
	},
	catalog.Camera: {
		{keyword: "camera", weight: 40, tag: tagPrimary},
		{keyword: "tvl", weight: 30, tag: tagSpecification},
		{keyword: "fov", weight: 20, tag: tagSpecification},
		{keyword: "sensor", weight: 20, tag: tagSpecification},
		{keyword: "lens", weight: 20, tag: tagType},
		{keyword: "low latency", weight: 15, tag: tagType},
	},
}

func (e *Engine) multiplier(tag contextTag) float64 {
	switch tag {
	case tagPrimary:
		return e.config.PrimaryMultiplier
	case tagSpecification:
		return e.config.SpecificationMultiplier
	default:
		return e.config.TypeMultiplier
	}
}

// classifyByKeywords scores every category by summing the weights of its
// keywords found in the text, each scaled by its context multiplier. The
// top scorer becomes the candidate; its confidence is the score capped at
// KeywordCap. Ties break alphabetically to keep the engine deterministic.
func (e *Engine) classifyByKeywords(text string) *stageOutcome {
	type scored struct {
		category catalog.Category
		score    float64
		matched  []string
	}

	var results []scored
	for _, category := range catalog.All() {
		var score float64
		var matched []string
		for _, kw := range keywordTable[category] {
			if !containsKeyword(text, kw.keyword) {
				continue
			}
			score += kw.weight * e.multiplier(kw.tag)
			matched = append(matched, kw.keyword)
		}
		if score > 0 {
			results = append(results, scored{category: category, score: score, matched: matched})
		}
	}
	if len(results) == 0 {
		return nil
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].category < results[j].category
	})

	top := results[0]
	confidence := top.score
	if confidence > e.config.KeywordCap {
		confidence = e.config.KeywordCap
	}

	return &stageOutcome{
		category:   top.category,
		confidence: confidence,
		reasoning: []string{fmt.Sprintf("keywords %s scored %.1f for %s",
			strings.Join(top.matched, ", "), top.score, top.category)},
	}
}

// containsKeyword does a word-boundary-aware substring check: single-word
// keywords must not match inside a larger word ("prop" must not fire on
// "appropriate"). A plural "s" right after the keyword still counts.
func containsKeyword(text, keyword string) bool {
	if strings.ContainsRune(keyword, ' ') || strings.ContainsRune(keyword, '-') {
		return strings.Contains(text, keyword)
	}

	idx := 0
	for {
		i := strings.Index(text[idx:], keyword)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(keyword)
		if (start == 0 || !isWordChar(text[start-1])) && boundaryAfter(text, end) {
			return true
		}
		idx = end
	}
}

func boundaryAfter(text string, end int) bool {
	if end == len(text) || !isWordChar(text[end]) {
		return true
	}
	if text[end] == 's' && (end+1 == len(text) || !isWordChar(text[end+1])) {
		return true
	}
	return false
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
