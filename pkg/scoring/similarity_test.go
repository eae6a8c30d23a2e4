package scoring

import (
	"testing"
)

func TestSimilarityExactExemplar(t *testing.T) {
	s := NewSimilarityScorer([]string{"consult a doctor"})

	score, match := s.Calculate("consult a doctor")
	if score != 1.0 {
		t.Errorf("score = %v, want 1.0 for identical text", score)
	}
	if match != "consult a doctor" {
		t.Errorf("match = %q", match)
	}
}

func TestSimilarityPartialOverlap(t *testing.T) {
	s := NewSimilarityScorer([]string{"please consult a doctor"})

	// Tokens: {you, should, consult, a, doctor} vs {please, consult, a,
	// doctor}: intersection 3, union 6.
	score, _ := s.Calculate("you should consult a doctor")
	if score != 0.5 {
		t.Errorf("score = %v, want 0.5", score)
	}
}

func TestSimilarityNoOverlap(t *testing.T) {
	s := NewSimilarityScorer(nil)

	score, match := s.Calculate("xyzzy plugh")
	if score != 0 {
		t.Errorf("score = %v, want 0", score)
	}
	if match != "" {
		t.Errorf("match = %q, want empty when nothing overlaps", match)
	}
}

func TestSimilarityPicksBestExemplar(t *testing.T) {
	s := NewSimilarityScorer([]string{
		"completely unrelated sentence here",
		"seek immediate medical attention",
	})

	score, match := s.Calculate("seek immediate medical attention")
	if score != 1.0 {
		t.Errorf("score = %v, want 1.0", score)
	}
	if match != "seek immediate medical attention" {
		t.Errorf("match = %q", match)
	}
}

func TestSimilarityExcerptTruncated(t *testing.T) {
	long := "this exemplar is deliberately much longer than fifty characters to force truncation"
	s := NewSimilarityScorer([]string{long})

	_, match := s.Calculate("this exemplar is deliberately much longer")
	if len(match) != exemplarExcerptLen+3 {
		t.Errorf("excerpt length = %d, want %d", len(match), exemplarExcerptLen+3)
	}
}

func TestSimilarityCaseInsensitive(t *testing.T) {
	s := NewSimilarityScorer([]string{"consult a doctor"})

	score, _ := s.Calculate("CONSULT A DOCTOR")
	if score != 1.0 {
		t.Errorf("score = %v, want 1.0", score)
	}
}
