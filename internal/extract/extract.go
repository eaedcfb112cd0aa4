package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pandeygaura/navins-redact/internal/config"
	"github.com/pandeygaura/navins-redact/internal/logger"
	"go.uber.org/zap"
)

// Kind identifies the declared document format, derived from the filename.
type Kind string

const (
	KindText    Kind = "text"
	KindDOCX    Kind = "docx"
	KindPDF     Kind = "pdf"
	KindImage   Kind = "image"
	KindUnknown Kind = "unknown"
)

// DetectKind classifies a file by its extension.
func DetectKind(filename string) Kind {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch ext {
	case "jpg", "jpeg", "png", "bmp", "tiff", "tif":
		return KindImage
	case "pdf":
		return KindPDF
	case "txt":
		return KindText
	case "docx":
		return KindDOCX
	default:
		return KindUnknown
	}
}

// Extractor recovers a single UTF-8 string from uploaded document bytes.
// Extraction is best-effort: a scanned page nothing can read yields an empty
// string, never an error, so callers decide how to degrade.
type Extractor struct {
	config config.ExtractConfig
	remote *OCRSpaceClient
	local  localEngine
	logger *logger.Logger
}

// New creates an extractor. The OCR.space client is only constructed when an
// API key is configured; the local engine is nil unless built in (see the
// tesseract build tag) and enabled.
func New(cfg config.ExtractConfig, log *logger.Logger) *Extractor {
	extractor := &Extractor{
		config: cfg,
		logger: log,
	}

	if cfg.OCRSpace.Enabled && cfg.OCRSpace.APIKey != "" {
		extractor.remote = NewOCRSpaceClient(cfg, log.WithComponent("ocrspace"))
	}

	if cfg.LocalFallback {
		extractor.local = newLocalEngine()
	}

	log.Info("Extractor initialized",
		zap.Bool("remote_ocr", extractor.remote != nil),
		zap.Bool("local_ocr", extractor.local != nil),
	)

	return extractor
}

// Extract produces text from raw file bytes. Unknown file kinds are the only
// hard error; everything else degrades to the best available text.
func (x *Extractor) Extract(ctx context.Context, data []byte, filename, language string) (string, error) {
	if language == "" {
		language = x.config.DefaultLanguage
	}

	switch DetectKind(filename) {
	case KindText:
		return strings.ToValidUTF8(string(data), ""), nil

	case KindDOCX:
		text, err := extractDOCX(data)
		if err != nil {
			x.logger.Warn("DOCX extraction failed", zap.String("filename", filename), zap.Error(err))
			return "", nil
		}
		return text, nil

	case KindPDF, KindImage:
		return x.extractScanned(ctx, data, filename, language), nil

	default:
		return "", fmt.Errorf("unsupported file type: %s", filename)
	}
}

// extractScanned runs the tiered OCR path: OCR.space first, then the local
// fallback (tesseract for images, the PDF text layer for PDFs).
func (x *Extractor) extractScanned(ctx context.Context, data []byte, filename, language string) string {
	if x.remote != nil {
		text, err := x.remote.ParseBytes(ctx, data, filename, language)
		if err != nil {
			x.logger.Warn("Remote OCR failed", zap.String("filename", filename), zap.Error(err))
		} else if strings.TrimSpace(text) != "" {
			return text
		}
	}

	switch DetectKind(filename) {
	case KindImage:
		if x.local == nil {
			return ""
		}
		text, err := x.local.Recognize(ctx, data, language)
		if err != nil {
			x.logger.Warn("Local OCR failed",
				zap.String("engine", x.local.Name()),
				zap.String("filename", filename),
				zap.Error(err))
			return ""
		}
		return text

	case KindPDF:
		text, err := pdfTextLayer(data)
		if err != nil {
			x.logger.Warn("PDF text layer extraction failed", zap.String("filename", filename), zap.Error(err))
			return ""
		}
		return text
	}

	return ""
}
