package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pandeygaura/navins-redact/internal/config"
	"github.com/pandeygaura/navins-redact/internal/logger"
	"go.uber.org/zap"
)

func testConfig() config.ExtractConfig {
	cfg := config.ExtractConfig{DefaultLanguage: "eng"}
	cfg.OCRSpace.Endpoint = "https://api.ocr.space/parse/image"
	cfg.OCRSpace.Engine = 2
	cfg.OCRSpace.Timeout = 5 * time.Second
	return cfg
}

func TestDetectKind(t *testing.T) {
	cases := []struct {
		filename string
		want     Kind
	}{
		{"scan.jpg", KindImage},
		{"scan.JPEG", KindImage},
		{"photo.png", KindImage},
		{"fax.tiff", KindImage},
		{"report.pdf", KindPDF},
		{"notes.txt", KindText},
		{"letter.docx", KindDOCX},
		{"archive.tar.gz", KindUnknown},
		{"noextension", KindUnknown},
	}

	for _, tc := range cases {
		if got := DetectKind(tc.filename); got != tc.want {
			t.Errorf("DetectKind(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("Failed to create document part: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("Failed to write document part: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}

	return buf.Bytes()
}

func TestExtractDOCX(t *testing.T) {
	t.Run("Paragraphs", func(t *testing.T) {
		data := buildDOCX(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>first line</w:t></w:r></w:p>
    <w:p><w:r><w:t>ssn: </w:t></w:r><w:r><w:t>123-45-6789</w:t></w:r></w:p>
    <w:p/>
  </w:body>
</w:document>`)

		text, err := extractDOCX(data)
		if err != nil {
			t.Fatalf("extractDOCX() error: %v", err)
		}
		want := "first line\nssn: 123-45-6789\n"
		if text != want {
			t.Errorf("extractDOCX() = %q, want %q", text, want)
		}
	})

	t.Run("NotAnArchive", func(t *testing.T) {
		if _, err := extractDOCX([]byte("plain bytes")); err == nil {
			t.Error("Expected error for non-zip payload")
		}
	})

	t.Run("MissingDocumentPart", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, _ := zw.Create("word/styles.xml")
		w.Write([]byte("<styles/>"))
		zw.Close()

		if _, err := extractDOCX(buf.Bytes()); err == nil {
			t.Error("Expected error for archive without word/document.xml")
		}
	})
}

func TestOCRSpaceClient(t *testing.T) {
	log := &logger.Logger{Logger: zap.NewNop()}

	t.Run("ParsedText", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(32 << 20); err != nil {
				t.Errorf("Bad multipart request: %v", err)
			}
			if got := r.FormValue("apikey"); got != "test-key" {
				t.Errorf("apikey = %q", got)
			}
			if got := r.FormValue("language"); got != "eng" {
				t.Errorf("language = %q", got)
			}
			w.Write([]byte(`{"IsErroredOnProcessing":false,"ParsedResults":[{"ParsedText":"page one"},{"ParsedText":"page two"}]}`))
		}))
		defer server.Close()

		cfg := testConfig()
		cfg.OCRSpace.APIKey = "test-key"
		cfg.OCRSpace.Endpoint = server.URL

		client := NewOCRSpaceClient(cfg, log)
		text, err := client.ParseBytes(context.Background(), []byte("fake-image"), "scan.png", "eng")
		if err != nil {
			t.Fatalf("ParseBytes() error: %v", err)
		}
		if text != "page one\npage two" {
			t.Errorf("ParseBytes() = %q", text)
		}
	})

	t.Run("ProcessingError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"IsErroredOnProcessing":true,"ErrorMessage":["unreadable file"]}`))
		}))
		defer server.Close()

		cfg := testConfig()
		cfg.OCRSpace.APIKey = "test-key"
		cfg.OCRSpace.Endpoint = server.URL

		client := NewOCRSpaceClient(cfg, log)
		if _, err := client.ParseBytes(context.Background(), []byte("x"), "scan.png", "eng"); err == nil {
			t.Error("Expected error when the service reports a processing failure")
		}
	})

	t.Run("HTTPError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		cfg := testConfig()
		cfg.OCRSpace.APIKey = "test-key"
		cfg.OCRSpace.Endpoint = server.URL

		client := NewOCRSpaceClient(cfg, log)
		if _, err := client.ParseBytes(context.Background(), []byte("x"), "scan.png", "eng"); err == nil {
			t.Error("Expected error for non-200 response")
		}
	})
}

func TestExtractor(t *testing.T) {
	log := &logger.Logger{Logger: zap.NewNop()}

	t.Run("PlainText", func(t *testing.T) {
		x := New(testConfig(), log)
		text, err := x.Extract(context.Background(), []byte("hello\nworld"), "notes.txt", "")
		if err != nil {
			t.Fatalf("Extract() error: %v", err)
		}
		if text != "hello\nworld" {
			t.Errorf("Extract() = %q", text)
		}
	})

	t.Run("InvalidUTF8Dropped", func(t *testing.T) {
		x := New(testConfig(), log)
		text, err := x.Extract(context.Background(), []byte{'o', 'k', 0xff, 0xfe, '!'}, "notes.txt", "")
		if err != nil {
			t.Fatalf("Extract() error: %v", err)
		}
		if text != "ok!" {
			t.Errorf("Extract() = %q", text)
		}
	})

	t.Run("DOCX", func(t *testing.T) {
		x := New(testConfig(), log)
		data := buildDOCX(t, `<w:document xmlns:w="ns"><w:body><w:p><w:r><w:t>content</w:t></w:r></w:p></w:body></w:document>`)
		text, err := x.Extract(context.Background(), data, "letter.docx", "")
		if err != nil {
			t.Fatalf("Extract() error: %v", err)
		}
		if text != "content" {
			t.Errorf("Extract() = %q", text)
		}
	})

	t.Run("CorruptDOCXDegradesToEmpty", func(t *testing.T) {
		x := New(testConfig(), log)
		text, err := x.Extract(context.Background(), []byte("not a zip"), "letter.docx", "")
		if err != nil {
			t.Fatalf("Extract() error: %v", err)
		}
		if text != "" {
			t.Errorf("Expected empty text, got %q", text)
		}
	})

	t.Run("UnknownKind", func(t *testing.T) {
		x := New(testConfig(), log)
		if _, err := x.Extract(context.Background(), []byte("x"), "data.bin", ""); err == nil {
			t.Error("Expected error for unsupported file type")
		}
	})

	t.Run("ImageViaRemoteOCR", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"IsErroredOnProcessing":false,"ParsedResults":[{"ParsedText":"scanned words"}]}`))
		}))
		defer server.Close()

		cfg := testConfig()
		cfg.OCRSpace.Enabled = true
		cfg.OCRSpace.APIKey = "test-key"
		cfg.OCRSpace.Endpoint = server.URL

		x := New(cfg, log)
		text, err := x.Extract(context.Background(), []byte("fake-image"), "scan.png", "eng")
		if err != nil {
			t.Fatalf("Extract() error: %v", err)
		}
		if text != "scanned words" {
			t.Errorf("Extract() = %q", text)
		}
	})

	t.Run("ImageWithoutAnyOCREmpty", func(t *testing.T) {
		cfg := testConfig()
		cfg.OCRSpace.Enabled = false
		cfg.LocalFallback = false

		x := New(cfg, log)
		text, err := x.Extract(context.Background(), []byte("fake-image"), "scan.png", "eng")
		if err != nil {
			t.Fatalf("Extract() error: %v", err)
		}
		if text != "" {
			t.Errorf("Expected empty text, got %q", text)
		}
	})
}
