package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// extractTXT loads a UTF-8 text file, dropping a leading byte order mark.
func extractTXT(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open text: %w", ErrExtraction, err)
	}
	defer f.Close()

	r := transform.NewReader(f, unicode.UTF8BOM.NewDecoder())
	docs, err := documentloaders.NewText(r).Load(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: load text: %w", ErrExtraction, err)
	}

	var b strings.Builder
	for _, doc := range docs {
		b.WriteString(doc.PageContent)
	}
	return b.String(), nil
}
