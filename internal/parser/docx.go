package parser

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// extractDOCX returns the text of the body paragraphs of a DOCX file, one
// paragraph per line. Paragraphs inside tables are not included.
func extractDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: open docx: %w", ErrExtraction, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: open %s: %w", ErrExtraction, docxBody, err)
		}
		defer rc.Close()
		return readParagraphs(rc)
	}

	return "", fmt.Errorf("%w: %s not found", ErrExtraction, docxBody)
}

// readParagraphs streams WordprocessingML and collects top-level paragraph text.
func readParagraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		tblDepth   int
		pDepth     int
		propsDepth int // Inside w:pPr, where w:tab defines tab stops
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: parse %s: %w", ErrExtraction, docxBody, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "pPr":
				propsDepth++
			case "p":
				pDepth++
				if pDepth == 1 {
					current.Reset()
				}
			case "t":
				inText = true
			case "tab":
				if propsDepth == 0 && collecting(tblDepth, pDepth) {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if collecting(tblDepth, pDepth) {
					current.WriteByte('\n')
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth--
			case "pPr":
				propsDepth--
			case "p":
				if collecting(tblDepth, pDepth) {
					paragraphs = append(paragraphs, current.String())
				}
				pDepth--
			case "t":
				inText = false
			}

		case xml.CharData:
			if inText && collecting(tblDepth, pDepth) {
				current.Write(t)
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}

func collecting(tblDepth, pDepth int) bool {
	return tblDepth == 0 && pDepth == 1
}
