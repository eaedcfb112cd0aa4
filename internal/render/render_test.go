package render

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pandeygaura/navins-redact/internal/config"
	"github.com/pandeygaura/navins-redact/internal/extract"
	"github.com/pandeygaura/navins-redact/internal/logger"
	"go.uber.org/zap"
)

func newTestRenderer() *Renderer {
	return New("█", &logger.Logger{Logger: zap.NewNop()})
}

func readArchiveMember(t *testing.T, archive []byte, name string) []byte {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("Output is not a valid zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Failed to open %s: %v", name, err)
		}
		defer rc.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			t.Fatalf("Failed to read %s: %v", name, err)
		}
		return buf.Bytes()
	}
	t.Fatalf("Archive has no member %s", name)
	return nil
}

func TestDOCX(t *testing.T) {
	renderer := newTestRenderer()

	t.Run("ContainsHeadingAndParagraphs", func(t *testing.T) {
		out, err := renderer.DOCX("first line\n\nthird line")
		if err != nil {
			t.Fatalf("DOCX() error: %v", err)
		}

		body := string(readArchiveMember(t, out, "word/document.xml"))
		if !strings.Contains(body, "Cleaned &amp; Redacted Document") {
			t.Error("Heading missing or not escaped")
		}
		for _, want := range []string{"first line", "third line", "<w:p/>"} {
			if !strings.Contains(body, want) {
				t.Errorf("Document body missing %q", want)
			}
		}
	})

	t.Run("EscapesMarkup", func(t *testing.T) {
		out, err := renderer.DOCX(`a < b & c > "d"`)
		if err != nil {
			t.Fatalf("DOCX() error: %v", err)
		}

		body := string(readArchiveMember(t, out, "word/document.xml"))
		if !strings.Contains(body, "a &lt; b &amp; c &gt;") {
			t.Errorf("Markup not escaped in %q", body)
		}
	})

	t.Run("RoundTripsThroughExtractor", func(t *testing.T) {
		out, err := renderer.DOCX("name: ████████\nssn: ███████████")
		if err != nil {
			t.Fatalf("DOCX() error: %v", err)
		}

		extractor := extract.New(config.ExtractConfig{}, &logger.Logger{Logger: zap.NewNop()})
		text, err := extractor.Extract(context.Background(), out, "roundtrip.docx", "")
		if err != nil {
			t.Fatalf("Extract() error: %v", err)
		}
		for _, want := range []string{"name: ████████", "ssn: ███████████"} {
			if !strings.Contains(text, want) {
				t.Errorf("Round-tripped text missing %q, got %q", want, text)
			}
		}
	})
}

func TestPDF(t *testing.T) {
	renderer := newTestRenderer()

	t.Run("ProducesDocument", func(t *testing.T) {
		out, err := renderer.PDF("hello\n\nmasked: ████")
		if err != nil {
			t.Fatalf("PDF() error: %v", err)
		}
		if !bytes.HasPrefix(out, []byte("%PDF-")) {
			t.Errorf("Output does not start with a PDF header: %q", out[:8])
		}
	})

	t.Run("EmptyTextStillRenders", func(t *testing.T) {
		out, err := renderer.PDF("")
		if err != nil {
			t.Fatalf("PDF() error: %v", err)
		}
		if len(out) == 0 {
			t.Error("Empty input produced no document")
		}
	})
}

func TestBundle(t *testing.T) {
	renderer := newTestRenderer()

	docxBytes := []byte("docx payload")
	pdfBytes := []byte("pdf payload")

	out, err := renderer.Bundle("report", docxBytes, pdfBytes)
	if err != nil {
		t.Fatalf("Bundle() error: %v", err)
	}

	if got := readArchiveMember(t, out, "report_cleaned_redacted.docx"); !bytes.Equal(got, docxBytes) {
		t.Errorf("DOCX member = %q", got)
	}
	if got := readArchiveMember(t, out, "report_cleaned_redacted.pdf"); !bytes.Equal(got, pdfBytes) {
		t.Errorf("PDF member = %q", got)
	}
}

func TestBundleNames(t *testing.T) {
	docxName, pdfName, zipName := BundleNames("scan_01")
	if docxName != "scan_01_cleaned_redacted.docx" ||
		pdfName != "scan_01_cleaned_redacted.pdf" ||
		zipName != "scan_01_cleaned_redacted.zip" {
		t.Errorf("BundleNames() = %q, %q, %q", docxName, pdfName, zipName)
	}
}
