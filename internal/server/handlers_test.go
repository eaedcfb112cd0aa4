package server

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pandeygaura/navins-redact/internal/config"
	"github.com/pandeygaura/navins-redact/internal/logger"
	"github.com/pandeygaura/navins-redact/internal/metrics"
)

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) *Server {
	t.Helper()

	cfg := config.GetDefaults()
	cfg.Security.RateLimit.Enabled = false
	cfg.Extract.OCRSpace.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	log := &logger.Logger{Logger: zap.NewNop()}
	srv, err := newServer(cfg, log, metrics.NewWith("redactd", prometheus.NewRegistry()))
	require.NoError(t, err)
	return srv
}

func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	return &body, writer.FormDataContentType()
}

func TestHandleRedact(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("RedactsText", func(t *testing.T) {
		body := `{"text":"ssn: 123-45-6789\ncontact me at jane@example.com"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/redact", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp redactResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotContains(t, resp.Redacted, "123-45-6789")
		assert.NotContains(t, resp.Redacted, "jane@example.com")
		assert.Contains(t, resp.Redacted, "█")
		assert.Greater(t, resp.TotalFindings, 0)
	})

	t.Run("EmptyText", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/redact", strings.NewReader(`{"text":""}`))
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/redact", strings.NewReader("not json"))
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleProcess(t *testing.T) {
	srv := newTestServer(t, nil)

	document := []byte("Patient record\nssn: 123-45-6789\nPhone: 555-123-4567\n")

	t.Run("JSONResponse", func(t *testing.T) {
		body, contentType := multipartUpload(t, "record.txt", document, map[string]string{"response": "json"})
		req := httptest.NewRequest(http.MethodPost, "/v1/process", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp processResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "record.txt", resp.Filename)
		assert.Equal(t, "text", resp.Kind)
		assert.False(t, resp.Cached)
		assert.Greater(t, resp.TotalFindings, 0)
		assert.NotContains(t, resp.RedactedText, "123-45-6789")
		assert.Contains(t, resp.RedactedText, "Patient record")

		docxBytes, err := base64.StdEncoding.DecodeString(resp.DOCXBase64)
		require.NoError(t, err)
		_, err = zip.NewReader(bytes.NewReader(docxBytes), int64(len(docxBytes)))
		assert.NoError(t, err, "docx payload is not a valid archive")

		pdfBytes, err := base64.StdEncoding.DecodeString(resp.PDFBase64)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF-")))
	})

	t.Run("ZIPResponse", func(t *testing.T) {
		body, contentType := multipartUpload(t, "record.txt", document, nil)
		req := httptest.NewRequest(http.MethodPost, "/v1/process", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "record_cleaned_redacted.zip")

		archive := rec.Body.Bytes()
		zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
		require.NoError(t, err)

		names := make([]string, 0, len(zr.File))
		for _, f := range zr.File {
			names = append(names, f.Name)
		}
		assert.ElementsMatch(t, []string{
			"record_cleaned_redacted.docx",
			"record_cleaned_redacted.pdf",
		}, names)

		for _, f := range zr.File {
			if !strings.HasSuffix(f.Name, ".docx") {
				continue
			}
			rc, err := f.Open()
			require.NoError(t, err)
			content, err := io.ReadAll(rc)
			rc.Close()
			require.NoError(t, err)
			assert.NotContains(t, string(content), "123-45-6789")
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		body, contentType := multipartUpload(t, "", nil, map[string]string{"use_ai": "false"})
		req := httptest.NewRequest(http.MethodPost, "/v1/process", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("EmptyFile", func(t *testing.T) {
		body, contentType := multipartUpload(t, "empty.txt", nil, nil)
		req := httptest.NewRequest(http.MethodPost, "/v1/process", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnsupportedType", func(t *testing.T) {
		body, contentType := multipartUpload(t, "binary.exe", []byte("MZ"), nil)
		req := httptest.NewRequest(http.MethodPost, "/v1/process", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("InvalidResponseFormat", func(t *testing.T) {
		body, contentType := multipartUpload(t, "record.txt", document, map[string]string{"response": "xml"})
		req := httptest.NewRequest(http.MethodPost, "/v1/process", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ScannedImageWithoutOCR", func(t *testing.T) {
		body, contentType := multipartUpload(t, "scan.png", []byte{0x89, 'P', 'N', 'G'}, nil)
		req := httptest.NewRequest(http.MethodPost, "/v1/process", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestHandleHealthAndInfo(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("Health", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	})

	t.Run("Info", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/info", nil)
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"name":"navins-redact"`)
	})
}

func TestHandleStats(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Cache)
	assert.Nil(t, resp.Audit)
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.RateLimit.Enabled = true
		cfg.Security.RateLimit.RequestsPerSec = 0.001
		cfg.Security.RateLimit.Burst = 1
	})

	request := func() int {
		req := httptest.NewRequest(http.MethodPost, "/v1/redact", strings.NewReader(`{"text":"hello"}`))
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, request())
	assert.Equal(t, http.StatusTooManyRequests, request())
}
