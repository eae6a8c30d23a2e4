// Package scoring grades response quality with two independent, fully
// attributable signals: a hedging-language penalty and a token-overlap
// similarity to known-safe exemplar responses. Neither signal involves a
// learned model; both are reproducible from the configuration snapshot.
package scoring

import (
	"math"
	"strings"
)

const (
	hedgingBase    = 0.95
	hedgingPenalty = 0.1
)

// defaultHedgingVocabulary lists phrases that signal the generator is
// unsure of its own answer. Multi-word entries are matched as substrings of
// the lowercased response.
var defaultHedgingVocabulary = []string{
	"might",
	"maybe",
	"possibly",
	"perhaps",
	"probably",
	"not sure",
	"i think",
	"could be",
	"unclear",
	"uncertain",
}

// ConfidenceScorer applies the hedging penalty. Construction-time state is
// read-only afterwards; Calculate is safe for unbounded concurrent use.
type ConfidenceScorer struct {
	vocabulary []string
}

// NewConfidenceScorer builds a scorer over the given hedging vocabulary,
// falling back to the built-in list when none is supplied.
func NewConfidenceScorer(vocabulary []string) *ConfidenceScorer {
	if len(vocabulary) == 0 {
		vocabulary = defaultHedgingVocabulary
	}
	lowered := make([]string, 0, len(vocabulary))
	for _, w := range vocabulary {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			lowered = append(lowered, w)
		}
	}
	return &ConfidenceScorer{vocabulary: lowered}
}

// Calculate returns base(0.95) minus 0.1 per hedging occurrence, clamped to
// [0,1].
func (s *ConfidenceScorer) Calculate(response string) float64 {
	score, _ := s.Explain(response)
	return score
}

// Explain returns the score together with every vocabulary entry that
// contributed, so the penalty is attributable word by word in the audit
// trail.
func (s *ConfidenceScorer) Explain(response string) (float64, []string) {
	if response == "" {
		return 0, nil
	}
	lower := strings.ToLower(response)

	var matched []string
	occurrences := 0
	for _, w := range s.vocabulary {
		if n := strings.Count(lower, w); n > 0 {
			matched = append(matched, w)
			occurrences += n
		}
	}

	score := hedgingBase - float64(occurrences)*hedgingPenalty
	score = math.Max(0.0, math.Min(1.0, score))
	return round3(score), matched
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
