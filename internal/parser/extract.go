// Package parser extracts plain text from PDF, DOCX and plain text documents.
package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a supported document container.
type Format string

const (
	FormatPDF     Format = "pdf"
	FormatDOCX    Format = "docx"
	FormatTXT     Format = "txt"
	FormatUnknown Format = ""
)

// wordsPerPage converts word counts into page-like units for formats without
// physical pages.
const wordsPerPage = 300

var (
	// ErrExtraction indicates a malformed or unreadable container.
	ErrExtraction = errors.New("text extraction failed")

	// ErrUnsupportedFormat marks files whose extension is not recognised.
	// Extract does not return it; callers use it when reporting skipped input.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Content is the text extracted from one document.
type Content struct {
	Text   string
	Units  int // Pages for PDF, word-count estimate otherwise
	Format Format
}

// DetectFormat returns the format for path based on its lower-cased extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "pdf":
		return FormatPDF
	case "docx":
		return FormatDOCX
	case "txt":
		return FormatTXT
	default:
		return FormatUnknown
	}
}

// Supported returns nil if path has a supported extension, or a wrapped
// ErrUnsupportedFormat otherwise.
func Supported(path string) error {
	if DetectFormat(path) == FormatUnknown {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return nil
}

// Extract reads the document at path and returns its text and unit count.
// Unsupported formats yield empty text, one unit and no error.
// Malformed containers return an error wrapping ErrExtraction.
func Extract(ctx context.Context, path string) (*Content, error) {
	format := DetectFormat(path)

	switch format {
	case FormatPDF:
		text, pages, err := extractPDF(path)
		if err != nil {
			return nil, err
		}
		return &Content{Text: text, Units: max(1, pages), Format: format}, nil

	case FormatDOCX:
		text, err := extractDOCX(path)
		if err != nil {
			return nil, err
		}
		return &Content{Text: text, Units: wordUnits(text), Format: format}, nil

	case FormatTXT:
		text, err := extractTXT(ctx, path)
		if err != nil {
			return nil, err
		}
		return &Content{Text: text, Units: wordUnits(text), Format: format}, nil

	default:
		return &Content{Units: 1, Format: FormatUnknown}, nil
	}
}

// wordUnits estimates pages as one per 300 whitespace-separated words, at least 1.
func wordUnits(text string) int {
	return max(1, len(strings.Fields(text))/wordsPerPage)
}
