package classify

import (
	"github.com/fpvcatalog/partscrawler/internal/catalog"
)

// Method identifies which cascade stage produced a result.
type Method string

const (
	MethodBrand    Method = "brand"
	MethodPattern  Method = "pattern"
	MethodKeyword  Method = "keyword"
	MethodSemantic Method = "semantic"
	MethodFallback Method = "fallback"
)

// Result is the outcome of classifying one product.
type Result struct {
	Category   catalog.Category `json:"category"`
	Confidence float64          `json:"confidence"` // 0..100
	Method     Method           `json:"method"`

	// Reasoning lists the rules that fired, in firing order. Meant for
	// humans reviewing low-confidence results, not for machines.
	Reasoning []string `json:"reasoning,omitempty"`

	// Warnings records exclusion-pattern hits that suppressed a candidate
	// category, whether or not that category was ultimately chosen.
	Warnings []string `json:"warnings,omitempty"`

	// Specifications mined from the product text for the chosen category.
	// Populated by the caller after classification.
	Specifications map[string]string `json:"specifications,omitempty"`

	// Cached marks a result served from the cache. Not serialized; the
	// result is otherwise identical to the original.
	Cached bool `json:"-"`
}

// clone returns a deep copy so cached results cannot be mutated by
// callers.
func (r *Result) clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Reasoning = append([]string(nil), r.Reasoning...)
	out.Warnings = append([]string(nil), r.Warnings...)
	if r.Specifications != nil {
		out.Specifications = make(map[string]string, len(r.Specifications))
		for k, v := range r.Specifications {
			out.Specifications[k] = v
		}
	}
	return &out
}

// Context carries optional signals from the crawl that sharpen
// classification beyond the product text itself.
type Context struct {
	URL          string
	Vendor       string
	CategoryHint catalog.Category // from the vendor's category URL map
}

// stageOutcome is an intermediate candidate from one cascade stage,
// retained for the fallback combination.
type stageOutcome struct {
	category   catalog.Category
	confidence float64
	reasoning  []string
}

func (s *stageOutcome) ok() bool {
	return s != nil && s.category.Valid() && s.confidence > 0
}
