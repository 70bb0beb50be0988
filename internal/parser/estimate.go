package parser

import (
	"context"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

var disableConfigDir sync.Once

// EstimatePages returns a best-effort page count for path, used as the
// declared page count when submitting a job. PDFs report their page tree
// count; DOCX and TXT use the word heuristic. Anything unreadable or
// unsupported counts as one page.
func EstimatePages(path string) int {
	switch DetectFormat(path) {
	case FormatPDF:
		disableConfigDir.Do(api.DisableConfigDir)
		n, err := api.PageCountFile(path)
		if err != nil {
			return 1
		}
		return max(1, n)

	case FormatDOCX, FormatTXT:
		c, err := Extract(context.Background(), path)
		if err != nil {
			return 1
		}
		return c.Units

	default:
		return 1
	}
}
