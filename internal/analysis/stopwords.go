package analysis

import (
	_ "embed"
	"strings"
)

//go:embed stopwords_en.txt
var stopWordList string

// stopWords is the English list used by scikit-learn's text vectorizers.
var stopWords = func() map[string]struct{} {
	words := strings.Fields(stopWordList)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
