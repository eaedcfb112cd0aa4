package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/pandeygaura/navins-redact/internal/config"
	"github.com/pandeygaura/navins-redact/internal/logger"
	"go.uber.org/zap"
)

// OCRSpaceClient calls the OCR.space parse endpoint. It accepts both image
// and PDF payloads, so it is the first tier for every scanned document.
type OCRSpaceClient struct {
	endpoint string
	apiKey   string
	engine   int
	client   *http.Client
	logger   *logger.Logger
}

type ocrSpaceResponse struct {
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage,omitempty"`
	ParsedResults         []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
}

// NewOCRSpaceClient creates a client from the extract configuration.
func NewOCRSpaceClient(cfg config.ExtractConfig, log *logger.Logger) *OCRSpaceClient {
	return &OCRSpaceClient{
		endpoint: cfg.OCRSpace.Endpoint,
		apiKey:   cfg.OCRSpace.APIKey,
		engine:   cfg.OCRSpace.Engine,
		client:   &http.Client{Timeout: cfg.OCRSpace.Timeout},
		logger:   log,
	}
}

// ParseBytes submits the file and returns the parsed text of all result
// pages joined with '\n'. A processing error reported by the API yields an
// empty string and an error describing it.
func (c *OCRSpaceClient) ParseBytes(ctx context.Context, data []byte, filename, language string) (string, error) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write upload payload: %w", err)
	}

	_ = form.WriteField("apikey", c.apiKey)
	_ = form.WriteField("language", language)
	_ = form.WriteField("OCREngine", strconv.Itoa(c.engine))
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to build OCR request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OCR service returned HTTP %d", resp.StatusCode)
	}

	var parsed ocrSpaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode OCR response: %w", err)
	}

	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("OCR processing error: %s", string(parsed.ErrorMessage))
	}

	texts := make([]string, 0, len(parsed.ParsedResults))
	for _, result := range parsed.ParsedResults {
		texts = append(texts, result.ParsedText)
	}

	c.logger.Debug("OCR completed",
		zap.String("filename", filename),
		zap.Int("pages", len(parsed.ParsedResults)),
	)

	return strings.Join(texts, "\n"), nil
}
