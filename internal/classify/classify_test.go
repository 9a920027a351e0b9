package classify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpvcatalog/partscrawler/internal/catalog"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	return New(DefaultConfig(), opts...)
}

func TestClassify_BrandStage(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name        string
		productName string
		description string
		want        catalog.Category
		wantMethod  Method
		minConf     float64
	}{
		{
			name:        "canonical brand name",
			productName: "RunCam Phoenix 2",
			description: "Micro sized with improved light handling.",
			want:        catalog.Camera,
			wantMethod:  MethodBrand,
			minConf:     99,
		},
		{
			name:        "battery brand",
			productName: "Tattu R-Line V5 1400",
			description: "",
			want:        catalog.Battery,
			wantMethod:  MethodBrand,
			minConf:     99,
		},
		{
			name:        "alias scores lower but still passes",
			productName: "HQ Prop 5.1x4.6x3 V2S",
			description: "",
			want:        catalog.Prop,
			wantMethod:  MethodBrand,
			minConf:     95,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Classify(tt.productName, tt.description, nil)
			assert.Equal(t, tt.want, res.Category)
			assert.Equal(t, tt.wantMethod, res.Method)
			assert.GreaterOrEqual(t, res.Confidence, tt.minConf)
			assert.NotEmpty(t, res.Reasoning)
		})
	}
}

func TestClassify_MultiLineBrandDisambiguation(t *testing.T) {
	e := newTestEngine(t)

	power := e.Classify("T-Motor VELOX power system", "", nil)
	require.Equal(t, catalog.Motor, power.Category, "power system without line keywords defaults to the brand's primary line")
	assert.Equal(t, MethodBrand, power.Method)

	prop := e.Classify("T-Motor propeller 5x4.3x3", "", nil)
	require.Equal(t, catalog.Prop, prop.Category, "propeller keyword resolves the same brand to its prop line")
	assert.Equal(t, MethodBrand, prop.Method)
}

func TestClassify_PatternStage(t *testing.T) {
	e := newTestEngine(t)

	res := e.Classify("Velox V2 2207 Brushless Motor", "", nil)
	assert.Equal(t, catalog.Motor, res.Category)

	res = e.Classify("R-Line 1300 6S Lipo", "High discharge pack for racing.", nil)
	assert.Equal(t, catalog.Battery, res.Category)

	res = e.Classify("Tempest F722 Flight Controller", "", nil)
	assert.Equal(t, catalog.Stack, res.Category)
	assert.Equal(t, MethodPattern, res.Method)
	assert.GreaterOrEqual(t, res.Confidence, 90.0)
}

func TestClassify_ExclusionSuppressesCandidate(t *testing.T) {
	e := newTestEngine(t)

	res := e.Classify(
		"Mach 5 Frame Kit",
		"Freestyle frame kit with propeller compatibility up to 5.1 inch.",
		nil)

	require.Equal(t, catalog.Frame, res.Category,
		"prop vocabulary inside a compatibility note must not win")
	assert.Equal(t, MethodPattern, res.Method)
	assert.NotEmpty(t, res.Warnings, "suppressed prop candidate should be recorded")
}

func TestClassify_ExclusionWarningSurvivesOtherWinner(t *testing.T) {
	e := newTestEngine(t)

	// The camera wins, but the suppressed frame candidate (from "frame
	// rate") still leaves a warning.
	res := e.Classify(
		"Nano 1200TVL",
		"High frame rate sensor for smooth video.",
		nil)

	assert.Equal(t, catalog.Camera, res.Category)
	assert.NotEmpty(t, res.Warnings)
}

func TestClassify_KeywordStage(t *testing.T) {
	e := newTestEngine(t)

	// No brand, no definitive pattern, but two weighted keyword hits:
	// motor (primary, 40*1.5) plus thrust (specification, 20*1.3) = 86.
	res := e.Classify("Racing motor with high thrust", "", nil)

	assert.Equal(t, catalog.Motor, res.Category)
	assert.Equal(t, MethodKeyword, res.Method)
	assert.InDelta(t, 86.0, res.Confidence, 0.01)
}

func TestClassify_KeywordConfidenceCapped(t *testing.T) {
	e := newTestEngine(t)

	// Five keyword hits score 180 raw; the reported confidence is capped.
	res := e.Classify("Betaflight stack", "Includes gyro, esc and aio design.", nil)

	assert.Equal(t, catalog.Stack, res.Category)
	assert.Equal(t, MethodKeyword, res.Method)
	assert.Equal(t, 95.0, res.Confidence)
}

func TestClassify_SemanticStage(t *testing.T) {
	e := newTestEngine(t)

	res := e.Classify("Quantum X", "This is a compact battery designed for long flights.", nil)
	assert.Equal(t, catalog.Battery, res.Category)
	assert.Equal(t, MethodSemantic, res.Method)

	res = e.Classify("Hurricane Power System", "", nil)
	assert.Equal(t, catalog.Motor, res.Category)
	assert.Equal(t, MethodSemantic, res.Method)
}

func TestClassify_FallbackDefaultsToMotor(t *testing.T) {
	e := newTestEngine(t)

	res := e.Classify("Widget 123", "", nil)

	assert.Equal(t, catalog.Motor, res.Category)
	assert.Equal(t, MethodFallback, res.Method)
	assert.LessOrEqual(t, res.Confidence, 79.0)
	assert.NotEmpty(t, res.Reasoning)
}

func TestClassify_FallbackUsesCategoryHint(t *testing.T) {
	e := newTestEngine(t)

	res := e.Classify("Widget 123", "", &Context{CategoryHint: catalog.Battery})

	assert.Equal(t, catalog.Battery, res.Category)
	assert.Equal(t, MethodFallback, res.Method)
}

func TestClassify_FallbackCombinesWeakEvidence(t *testing.T) {
	e := newTestEngine(t)

	// "freestyle" alone scores 15*1.2 = 18 in the keyword stage, far below
	// threshold, but it is still frame evidence for the fallback vote.
	res := e.Classify("Spare part for freestyle builds", "", nil)

	assert.Equal(t, catalog.Frame, res.Category)
	assert.Equal(t, MethodFallback, res.Method)
	assert.LessOrEqual(t, res.Confidence, 79.0)
}

func TestClassify_AlwaysReturnsValidCategory(t *testing.T) {
	e := newTestEngine(t)

	inputs := []string{
		"", "x", "???", "12345",
		"Universal mounting hardware set",
		"Gift card",
	}
	for _, name := range inputs {
		res := e.Classify(name, "", nil)
		require.NotNil(t, res)
		assert.True(t, res.Category.Valid(), "input %q produced category %q", name, res.Category)
		assert.GreaterOrEqual(t, res.Confidence, 0.0)
		assert.LessOrEqual(t, res.Confidence, 100.0)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	e := newTestEngine(t)

	name := "Velox V2 2207 Brushless Motor 1750KV"
	desc := "Designed for 5 inch freestyle."

	first := e.Classify(name, desc, nil)
	second := e.Classify(name, desc, nil)

	assert.Equal(t, first.Category, second.Category)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.Method, second.Method)
}

func TestClassify_StageCountersSumToCalls(t *testing.T) {
	e := newTestEngine(t)

	inputs := [][2]string{
		{"RunCam Phoenix 2", ""},
		{"Velox V2 2207 Brushless Motor", ""},
		{"Racing motor with high thrust", ""},
		{"Hurricane Power System", ""},
		{"Widget 123", ""},
	}
	for _, in := range inputs {
		e.Classify(in[0], in[1], nil)
	}

	stats := e.Stats()
	assert.Equal(t, int64(len(inputs)), stats.Total())
	assert.Equal(t, int64(1), stats.BrandHits)
	assert.Equal(t, int64(1), stats.PatternHits)
	assert.Equal(t, int64(1), stats.KeywordHits)
	assert.Equal(t, int64(1), stats.SemanticHits)
	assert.Equal(t, int64(1), stats.FallbackHits)
}

func TestClassify_ConcurrentUse(t *testing.T) {
	e := newTestEngine(t)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				e.Classify(fmt.Sprintf("Velox %d-%d 2207 Brushless Motor", n, j), "", nil)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.Equal(t, int64(400), e.Stats().Total())
}

func TestKeywordBoundaries(t *testing.T) {
	assert.False(t, containsKeyword("appropriate sizing", "prop"))
	assert.True(t, containsKeyword("set of props", "prop"))
	assert.True(t, containsKeyword("prop", "prop"))
	assert.False(t, containsKeyword("description", "esc"))
	assert.True(t, containsKeyword("35a esc included", "esc"))
}

func TestFeedbackRecorder(t *testing.T) {
	rec := NewFeedbackRecorder()

	rec.RecordFeedback("Velox 2207", catalog.Motor, catalog.Motor, VerdictCorrect)
	rec.RecordFeedback("Mach 5", catalog.Prop, catalog.Frame, VerdictIncorrect)
	rec.RecordFeedback("Mystery", catalog.Motor, catalog.Motor, VerdictUncertain)

	assert.Len(t, rec.Entries(), 3)
	assert.InDelta(t, 0.5, rec.Accuracy(), 0.001)
}
