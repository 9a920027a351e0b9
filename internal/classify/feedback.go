package classify

import (
	"sync"

	"github.com/fpvcatalog/partscrawler/internal/catalog"
)

// Verdict is an external reviewer's judgement on a classification.
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
	VerdictUncertain Verdict = "uncertain"
)

// Feedback is one recorded correction.
type Feedback struct {
	Name      string           `json:"name"`
	Predicted catalog.Category `json:"predicted"`
	Actual    catalog.Category `json:"actual"`
	Verdict   Verdict          `json:"verdict"`
}

// FeedbackRecorder accumulates reviewer corrections. The engine does not
// consume them; they exist so an analytics pass over a finished run can
// measure rule-table accuracy and propose tuning.
type FeedbackRecorder struct {
	mu      sync.Mutex
	entries []Feedback
}

// NewFeedbackRecorder returns an empty recorder.
func NewFeedbackRecorder() *FeedbackRecorder {
	return &FeedbackRecorder{}
}

// RecordFeedback stores one correction.
func (f *FeedbackRecorder) RecordFeedback(name string, predicted, actual catalog.Category, verdict Verdict) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, Feedback{
		Name:      name,
		Predicted: predicted,
		Actual:    actual,
		Verdict:   verdict,
	})
}

// Entries returns a copy of everything recorded so far.
func (f *FeedbackRecorder) Entries() []Feedback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Feedback(nil), f.entries...)
}

// Accuracy returns the fraction of reviewed classifications judged
// correct, ignoring uncertain verdicts. Returns 0 with no reviews.
func (f *FeedbackRecorder) Accuracy() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	var correct, judged int
	for _, e := range f.entries {
		switch e.Verdict {
		case VerdictCorrect:
			correct++
			judged++
		case VerdictIncorrect:
			judged++
		}
	}
	if judged == 0 {
		return 0
	}
	return float64(correct) / float64(judged)
}
