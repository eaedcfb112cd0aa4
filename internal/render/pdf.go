package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// PDF renders the text as an A4 document, one paragraph per input line.
// The core PDF fonts are cp1252-only, so the mask glyph is swapped for '#'
// at draw time; the redacted text itself keeps the real glyph.
func (r *Renderer) PDF(text string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(documentTitle, true)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.MultiCell(0, 8, documentTitle, "", "L", false)
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 11)
	translate := doc.UnicodeTranslatorFromDescriptor("")

	for _, line := range splitLines(text) {
		if line == "" {
			doc.Ln(5)
			continue
		}
		line = strings.ReplaceAll(line, r.maskGlyph, "#")
		doc.MultiCell(0, 5, translate(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	return buf.Bytes(), nil
}
