package classify

import (
	"fmt"
	"strings"

	"github.com/fpvcatalog/partscrawler/internal/catalog"
)

// brandRule disambiguates a multi-line brand: when any of its keywords
// appears in the product text, the brand hit resolves to this category
// instead of the brand's primary one.
type brandRule struct {
	keywords []string
	category catalog.Category
}

// brandEntry maps one manufacturer to a category. Brands that sell across
// several part lines carry disambiguation rules checked in order before
// the primary category applies.
type brandEntry struct {
	name    string
	aliases []string
	primary catalog.Category
	rules   []brandRule
}

// Common product-line keywords reused by the multi-line manufacturers.
var (
	propLineKeywords  = []string{"propeller", "prop ", " props", "blade"}
	stackLineKeywords = []string{"flight controller", " esc", "stack", "aio", "fc "}
	frameLineKeywords = []string{"frame", "wheelbase"}
)

// brandTable is the stage-1 knowledge base. Matching is case-insensitive
// substring over the combined product text; aliases carry slightly lower
// confidence than the canonical name.
var brandTable = []brandEntry{
	// Motor manufacturers. The big three sell props and stacks as well,
	// so their entries carry disambiguation rules.
	{
		name:    "t-motor",
		aliases: []string{"tmotor", "t motor"},
		primary: catalog.Motor,
		rules: []brandRule{
			{keywords: propLineKeywords, category: catalog.Prop},
			{keywords: stackLineKeywords, category: catalog.Stack},
		},
	},
	{
		name:    "iflight",
		primary: catalog.Motor,
		rules: []brandRule{
			{keywords: frameLineKeywords, category: catalog.Frame},
			{keywords: stackLineKeywords, category: catalog.Stack},
			{keywords: propLineKeywords, category: catalog.Prop},
		},
	},
	{
		name:    "emax",
		primary: catalog.Motor,
		rules: []brandRule{
			{keywords: propLineKeywords, category: catalog.Prop},
			{keywords: stackLineKeywords, category: catalog.Stack},
		},
	},
	{name: "brotherhobby", aliases: []string{"brother hobby"}, primary: catalog.Motor},
	{name: "xnova", primary: catalog.Motor},
	{name: "ethix", primary: catalog.Motor, rules: []brandRule{
		{keywords: propLineKeywords, category: catalog.Prop},
	}},

	// Battery manufacturers.
	{name: "tattu", primary: catalog.Battery},
	{name: "gens ace", aliases: []string{"gensace"}, primary: catalog.Battery},
	{name: "cnhl", aliases: []string{"china hobby line", "chinahobbyline"}, primary: catalog.Battery},
	{name: "gnb", aliases: []string{"gaoneng"}, primary: catalog.Battery},
	{name: "auline", primary: catalog.Battery},

	// Prop manufacturers.
	{name: "hqprop", aliases: []string{"hq prop"}, primary: catalog.Prop},
	{name: "gemfan", primary: catalog.Prop},
	{name: "dalprop", aliases: []string{"dal prop"}, primary: catalog.Prop},
	{name: "azure power", primary: catalog.Prop},

	// Frame manufacturers.
	{name: "impulserc", aliases: []string{"impulse rc"}, primary: catalog.Frame},
	{name: "armattan", primary: catalog.Frame},
	{name: "astrox", primary: catalog.Frame},
	{name: "five33", aliases: []string{"fivethirtythree"}, primary: catalog.Frame},

	// Flight controller and ESC manufacturers.
	{name: "speedybee", aliases: []string{"speedy bee"}, primary: catalog.Stack},
	{name: "mateksys", aliases: []string{"matek"}, primary: catalog.Stack},
	{name: "holybro", primary: catalog.Stack},
	{name: "aikon", primary: catalog.Stack},

	// Camera manufacturers.
	{name: "runcam", aliases: []string{"run cam"}, primary: catalog.Camera},
	{name: "foxeer", primary: catalog.Camera},
	{name: "caddx", aliases: []string{"caddxfpv"}, primary: catalog.Camera},
}

// classifyByBrand scans the text for known manufacturer names. Canonical
// name hits are near-definitive; alias hits score slightly lower. The
// first brand found in table order wins.
func (e *Engine) classifyByBrand(text string) *stageOutcome {
	for i := range brandTable {
		entry := &brandTable[i]

		matched, viaAlias := entry.match(text)
		if !matched {
			continue
		}

		category := entry.primary
		reasoning := []string{fmt.Sprintf("brand %q identifies %s products", entry.name, category)}

		for _, rule := range entry.rules {
			if kw := containsAny(text, rule.keywords); kw != "" {
				category = rule.category
				reasoning = append(reasoning,
					fmt.Sprintf("product line keyword %q resolves multi-line brand to %s", strings.TrimSpace(kw), rule.category))
				break
			}
		}

		confidence := e.config.BrandDefinitiveConfidence
		if viaAlias {
			confidence = e.config.BrandAliasConfidence
			reasoning = append(reasoning, "matched via brand alias")
		}

		return &stageOutcome{category: category, confidence: confidence, reasoning: reasoning}
	}
	return nil
}

func (b *brandEntry) match(text string) (matched, viaAlias bool) {
	if strings.Contains(text, b.name) {
		return true, false
	}
	for _, alias := range b.aliases {
		if strings.Contains(text, alias) {
			return true, true
		}
	}
	return false, false
}

// containsAny returns the first keyword present in the text, or "".
func containsAny(text string, keywords []string) string {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}
