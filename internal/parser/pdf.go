package parser

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF returns the text of every non-null page joined by newlines and
// the page count reported by the document.
func extractPDF(path string) (text string, pages int, err error) {
	// The PDF reader panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			text, pages = "", 0
			err = fmt.Errorf("%w: pdf parser panic: %v", ErrExtraction, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("%w: open pdf: %w", ErrExtraction, err)
	}
	defer f.Close()

	pages = r.NumPage()
	parts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			return "", pages, fmt.Errorf("%w: page %d: %w", ErrExtraction, i, err)
		}
		if pageText != "" {
			parts = append(parts, pageText)
		}
	}

	return strings.Join(parts, "\n"), pages, nil
}
