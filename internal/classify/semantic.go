package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fpvcatalog/partscrawler/internal/catalog"
)

// Stage 4 reads sentence structure instead of isolated tokens. Two signal
// sources: self-describing statements in the description ("this is a
// lightweight racing frame") and compound product-name forms whose head
// noun settles the category ("frame kit", "power system").

// selfDescribeRe captures the noun phrase after a self-describing lead-in.
var selfDescribeRe = regexp.MustCompile(`(?i)\bthis\s+is\s+(?:an?\s+)?([a-z0-9\s-]{3,60})`)

// statementNouns maps head nouns found in self-describing statements to a
// category, checked in order so more specific phrases win.
var statementNouns = []struct {
	noun     string
	category catalog.Category
}{
	{"flight controller", catalog.Stack},
	{"speed controller", catalog.Stack},
	{"camera", catalog.Camera},
	{"propeller", catalog.Prop},
	{"battery", catalog.Battery},
	{"pack", catalog.Battery},
	{"frame", catalog.Frame},
	{"motor", catalog.Motor},
}

// nameSignals are compound forms in the product name itself whose meaning
// differs from their parts. "power system" names a motor line even though
// no token says motor.
var nameSignals = []struct {
	phrase     string
	category   catalog.Category
	confidence float64
}{
	{"frame kit", catalog.Frame, 88},
	{"power system", catalog.Motor, 85},
	{"power kit", catalog.Motor, 85},
	{"combo stack", catalog.Stack, 86},
	{"vtx camera", catalog.Camera, 84},
	{"battery pack", catalog.Battery, 86},
	{"prop set", catalog.Prop, 85},
}

// classifyBySemantics evaluates self-describing statements and name
// signals, returning the stronger of the two.
func (e *Engine) classifyBySemantics(name, text string) *stageOutcome {
	var best *stageOutcome

	if m := selfDescribeRe.FindStringSubmatch(text); m != nil {
		phrase := strings.TrimSpace(m[1])
		for _, sn := range statementNouns {
			if strings.Contains(phrase, sn.noun) {
				best = &stageOutcome{
					category:   sn.category,
					confidence: 84,
					reasoning: []string{fmt.Sprintf(
						"self-describing statement %q names a %s", phrase, sn.category)},
				}
				break
			}
		}
	}

	lowerName := strings.ToLower(name)
	for _, ns := range nameSignals {
		if !strings.Contains(lowerName, ns.phrase) {
			continue
		}
		if best == nil || ns.confidence > best.confidence {
			best = &stageOutcome{
				category:   ns.category,
				confidence: ns.confidence,
				reasoning: []string{fmt.Sprintf(
					"name signal %q resolves to %s", ns.phrase, ns.category)},
			}
		}
		break
	}

	return best
}
