package cleanup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pandeygaura/navins-redact/internal/config"
	"github.com/pandeygaura/navins-redact/internal/logger"
	"go.uber.org/zap"
)

const cleanupPrompt = `Clean OCR text:
- fix OCR mistakes
- remove random breaks
- preserve formatting
Return ONLY cleaned text.

`

// Cleaner applies a best-effort text-to-text cleanup. Implementations must
// return the original text on any failure, so callers can always use the
// returned value.
type Cleaner interface {
	Clean(ctx context.Context, text string) (string, error)
	Enabled() bool
}

// New selects the cleaner implementation at configuration time: the Gemini
// client when enabled with an API key, otherwise a passthrough.
func New(cfg config.CleanupConfig, log *logger.Logger) Cleaner {
	if !cfg.Enabled || cfg.APIKey == "" {
		return passthrough{}
	}
	return &GeminiClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   log,
	}
}

// passthrough returns text unchanged; used when cleanup is not configured.
type passthrough struct{}

func (passthrough) Clean(_ context.Context, text string) (string, error) { return text, nil }
func (passthrough) Enabled() bool                                        { return false }

// GeminiClient calls the generative language generateContent endpoint.
type GeminiClient struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	logger   *logger.Logger
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) Enabled() bool { return true }

// Clean sends the text to the model and returns the cleaned result. On any
// failure the original text comes back together with the error.
func (c *GeminiClient) Clean(ctx context.Context, text string) (string, error) {
	reqBody := generateRequest{
		Contents: []generateContent{
			{Parts: []generatePart{{Text: cleanupPrompt + text}}},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return text, fmt.Errorf("failed to encode cleanup request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return text, fmt.Errorf("failed to build cleanup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return text, fmt.Errorf("cleanup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return text, fmt.Errorf("cleanup service returned HTTP %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return text, fmt.Errorf("failed to decode cleanup response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return text, fmt.Errorf("cleanup response has no candidates")
	}

	cleaned := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if cleaned == "" {
		return text, fmt.Errorf("cleanup response is empty")
	}

	c.logger.Debug("Text cleanup completed",
		zap.Int("input_chars", len(text)),
		zap.Int("output_chars", len(cleaned)),
	)

	return cleaned, nil
}
