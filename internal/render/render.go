package render

import (
	"strings"

	"github.com/pandeygaura/navins-redact/internal/logger"
)

const documentTitle = "Cleaned & Redacted Document"

// Renderer turns redacted text into downloadable documents, one paragraph per
// input line. It is stateless and safe for concurrent use.
type Renderer struct {
	maskGlyph string
	logger    *logger.Logger
}

// New creates a renderer. maskGlyph is the glyph the redaction engine uses;
// the PDF writer substitutes it with a core-font-safe character.
func New(maskGlyph string, log *logger.Logger) *Renderer {
	if maskGlyph == "" {
		maskGlyph = "█"
	}
	return &Renderer{
		maskGlyph: maskGlyph,
		logger:    log,
	}
}

// splitLines normalizes line terminators and splits into paragraph lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
