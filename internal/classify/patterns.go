package classify

import (
	"fmt"
	"regexp"

	"github.com/fpvcatalog/partscrawler/internal/catalog"
)

// definitivePattern is a regex that, on its own, identifies a category
// with high confidence.
type definitivePattern struct {
	re         *regexp.Regexp
	confidence float64
	rationale  string
}

// exclusionPattern invalidates a category candidate. These catch the
// classic cross-contamination cases where one category's vocabulary shows
// up in another category's listing.
type exclusionPattern struct {
	re     *regexp.Regexp
	reason string
}

var patternTable = map[catalog.Category][]definitivePattern{
	catalog.Motor: {
		{re: regexp.MustCompile(`(?i)\b\d{3,4}\s*kv\b`), confidence: 95, rationale: "KV rating is motor-specific"},
		{re: regexp.MustCompile(`(?i)\bbrushless\s+motor\b`), confidence: 94, rationale: "explicit brushless motor"},
		{re: regexp.MustCompile(`(?i)\b\d{4}\s+motor\b`), confidence: 93, rationale: "stator size followed by motor"},
		{re: regexp.MustCompile(`(?i)\bstator\b`), confidence: 91, rationale: "stator terminology"},
	},
	catalog.Battery: {
		{re: regexp.MustCompile(`(?i)\b\d{3,5}\s*mah\b`), confidence: 96, rationale: "mAh capacity is battery-specific"},
		{re: regexp.MustCompile(`(?i)\b\d{1,2}s\s+(?:lipo|battery|pack)\b`), confidence: 95, rationale: "cell count with pack noun"},
		{re: regexp.MustCompile(`(?i)\blipo\b`), confidence: 93, rationale: "LiPo chemistry"},
		{re: regexp.MustCompile(`(?i)\bli-?ion\s+(?:battery|pack)\b`), confidence: 92, rationale: "Li-ion pack"},
	},
	catalog.Prop: {
		{re: regexp.MustCompile(`(?i)\b\d(?:\.\d)?x\d(?:\.\d)?(?:x\d)?\s+propellers?\b`), confidence: 96, rationale: "DxPxB size with propeller noun"},
		{re: regexp.MustCompile(`(?i)\bpropellers?\b`), confidence: 93, rationale: "propeller noun"},
		{re: regexp.MustCompile(`(?i)\b(?:tri|bi|quad)-?blade\b`), confidence: 92, rationale: "blade-count terminology"},
		{re: regexp.MustCompile(`(?i)\bprops?\b`), confidence: 90, rationale: "prop shorthand"},
	},
	catalog.Frame: {
		{re: regexp.MustCompile(`(?i)\bframe\s+kit\b`), confidence: 96, rationale: "explicit frame kit"},
		{re: regexp.MustCompile(`(?i)\bwheelbase\b`), confidence: 94, rationale: "wheelbase is frame-specific"},
		{re: regexp.MustCompile(`(?i)\b(?:freestyle|racing|cinewhoop)\s+frame\b`), confidence: 94, rationale: "frame with discipline qualifier"},
		{re: regexp.MustCompile(`(?i)\bframes?\b`), confidence: 90, rationale: "frame noun"},
	},
	catalog.Stack: {
		{re: regexp.MustCompile(`(?i)\bflight\s+controller\b`), confidence: 96, rationale: "explicit flight controller"},
		{re: regexp.MustCompile(`(?i)\b\d{2,3}a\s+(?:4-?in-?1\s+)?esc\b`), confidence: 95, rationale: "current rating with ESC"},
		{re: regexp.MustCompile(`(?i)\b(?:fc|esc)\s+stack\b`), confidence: 95, rationale: "stack terminology"},
		{re: regexp.MustCompile(`(?i)\bf[47]\d{2}\b`), confidence: 92, rationale: "STM32 processor family"},
		{re: regexp.MustCompile(`(?i)\baio\s+(?:fc|board|flight)\b`), confidence: 92, rationale: "all-in-one board"},
	},
	catalog.Camera: {
		{re: regexp.MustCompile(`(?i)\bfpv\s+camera\b`), confidence: 96, rationale: "explicit FPV camera"},
		{re: regexp.MustCompile(`(?i)\b\d{3,4}\s*tvl\b`), confidence: 95, rationale: "TVL resolution is camera-specific"},
		{re: regexp.MustCompile(`(?i)\bcameras?\b`), confidence: 91, rationale: "camera noun"},
		{re: regexp.MustCompile(`(?i)\bcmos\s+sensor\b`), confidence: 91, rationale: "image sensor terminology"},
	},
}

// exclusionTable lists the known false-positive traps per candidate
// category. A hit invalidates the candidate in stage 2 and emits a
// warning on the final result.
var exclusionTable = map[catalog.Category][]exclusionPattern{
	catalog.Prop: {
		{re: regexp.MustCompile(`(?i)propellers?\s+(?:compatibility|support|up\s+to)`), reason: "prop compatibility note in a non-prop listing"},
		{re: regexp.MustCompile(`(?i)(?:supports?|fits|up\s+to)\s+\d(?:\.\d)?\s*(?:inch|")\s+props?`), reason: "prop size compatibility in a non-prop listing"},
	},
	catalog.Motor: {
		{re: regexp.MustCompile(`(?i)\bmotor\s+(?:mounts?|screws?|soft\s+mounts?|wires?)\b`), reason: "motor accessory vocabulary"},
		{re: regexp.MustCompile(`(?i)\bmotor\s+to\s+motor\b`), reason: "motor-to-motor distance describes a frame"},
	},
	catalog.Frame: {
		{re: regexp.MustCompile(`(?i)\bframe\s+rates?\b`), reason: "frame rate describes a camera"},
	},
	catalog.Camera: {
		{re: regexp.MustCompile(`(?i)\baction\s+camera\b`), reason: "action camera is outside the FPV camera category"},
		{re: regexp.MustCompile(`(?i)\bcamera\s+(?:mounts?|plates?|protectors?)\b`), reason: "camera accessory vocabulary"},
	},
	catalog.Battery: {
		{re: regexp.MustCompile(`(?i)\bbattery\s+(?:straps?|pads?|holders?)\b`), reason: "battery accessory vocabulary"},
	},
	catalog.Stack: {
		{re: regexp.MustCompile(`(?i)\b(?:fc|esc|stack)\s+(?:mounting|screws?|grommets?)\b`), reason: "stack mounting hardware vocabulary"},
	},
}

// classifyByPattern evaluates the definitive patterns for every category,
// drops candidates hit by an exclusion pattern, and returns the highest
// scoring survivor. Exclusion hits are appended to warnings regardless of
// the winner.
func (e *Engine) classifyByPattern(text string, warnings *[]string) *stageOutcome {
	var best *stageOutcome

	for _, category := range catalog.All() {
		patterns := patternTable[category]

		var hit *definitivePattern
		for i := range patterns {
			if patterns[i].re.MatchString(text) {
				hit = &patterns[i]
				break
			}
		}
		if hit == nil {
			continue
		}

		if excl := firstExclusion(category, text); excl != nil {
			*warnings = append(*warnings,
				fmt.Sprintf("%s candidate suppressed: %s", category, excl.reason))
			continue
		}

		if best == nil || hit.confidence > best.confidence {
			best = &stageOutcome{
				category:   category,
				confidence: hit.confidence,
				reasoning:  []string{fmt.Sprintf("pattern %q matched: %s", hit.re.String(), hit.rationale)},
			}
		}
	}

	return best
}

func firstExclusion(category catalog.Category, text string) *exclusionPattern {
	excls := exclusionTable[category]
	for i := range excls {
		if excls[i].re.MatchString(text) {
			return &excls[i]
		}
	}
	return nil
}
