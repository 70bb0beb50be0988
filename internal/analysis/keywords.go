package analysis

import (
	"cmp"
	"errors"
	"math"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

const (
	// maxVocabulary caps candidate terms to the most frequent ones.
	maxVocabulary = 10
	// maxKeywords caps the reported list.
	maxKeywords = 20
	minTermRunes = 2
)

// ErrRanking is returned by Rank when no candidate terms remain.
var ErrRanking = errors.New("keyword ranking failed")

// Term is a scored keyword.
type Term struct {
	Term  string
	Score float64
}

// Rank scores candidate terms of a single document. Each term's score is its
// L2-normalised term frequency; inverse document frequency is constant for a
// one-document corpus. Terms are ordered by score, then alphabetically.
func Rank(text string) ([]Term, error) {
	counts := countTerms(text)
	if len(counts) == 0 {
		return nil, ErrRanking
	}

	vocab := make([]Term, 0, len(counts))
	for term, n := range counts {
		vocab = append(vocab, Term{Term: term, Score: float64(n)})
	}
	slices.SortFunc(vocab, byScore)
	if len(vocab) > maxVocabulary {
		vocab = vocab[:maxVocabulary]
	}

	var sum float64
	for _, t := range vocab {
		sum += t.Score * t.Score
	}
	norm := math.Sqrt(sum)
	for i := range vocab {
		vocab[i].Score /= norm
	}
	slices.SortFunc(vocab, byScore)

	return vocab[:min(len(vocab), maxKeywords)], nil
}

// RankKeywords returns the ranked terms of text. Degenerate input yields an
// empty slice.
func RankKeywords(text string) []string {
	terms, err := Rank(text)
	if err != nil {
		return []string{}
	}
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.Term
	}
	return out
}

func byScore(a, b Term) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return strings.Compare(a.Term, b.Term)
}

// countTerms case-folds text and counts word tokens of at least two runes
// that are not stop words.
func countTerms(text string) map[string]int {
	folded := cases.Fold().String(text)
	counts := make(map[string]int)

	tokens := strings.FieldsFunc(folded, func(r rune) bool {
		return !isWordRune(r)
	})
	for _, tok := range tokens {
		if len([]rune(tok)) < minTermRunes {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		counts[tok]++
	}
	return counts
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
