package analysis

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// ErrSummarization is recorded when a summary cannot be produced. It does
// not stop the pipeline.
var ErrSummarization = errors.New("summarization failed")

// Summarizer builds extractive summaries from the leading sentences of a text.
type Summarizer struct {
	mu        sync.Mutex // tokenizer is not documented as safe for concurrent use
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewSummarizer loads the English Punkt model.
func NewSummarizer() (*Summarizer, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load sentence tokenizer: %w", err)
	}
	return &Summarizer{tokenizer: tok}, nil
}

// Summarize returns the first 10, 15 or 25 sentences of text, chosen by the
// length category of units, trimmed and joined with single spaces.
func (s *Summarizer) Summarize(text string, units int) (string, error) {
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("%w: invalid UTF-8", ErrSummarization)
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	limit := Classify(units).SummarySentences()

	sents := s.tokenize(text)

	kept := make([]string, 0, limit)
	for _, sent := range sents {
		if len(kept) == limit {
			break
		}
		if t := strings.TrimSpace(sent.Text); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " "), nil
}

// tokenize holds the lock for the tokenizer call only. A panic inside the
// tokenizer must not leave the lock held for other workers.
func (s *Summarizer) tokenize(text string) []*sentences.Sentence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenizer.Tokenize(text)
}
