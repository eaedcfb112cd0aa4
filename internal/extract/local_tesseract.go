//go:build tesseract
// +build tesseract

package extract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// tesseractEngine implements localEngine on the gosseract client. Requires
// build tag 'tesseract' and a host tesseract installation.
type tesseractEngine struct{}

func newLocalEngine() localEngine {
	return &tesseractEngine{}
}

func (e *tesseractEngine) Name() string { return "tesseract" }

func (e *tesseractEngine) Recognize(ctx context.Context, image []byte, language string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	client := gosseract.NewClient()
	defer client.Close()

	if language != "" {
		if err := client.SetLanguage(language); err != nil {
			return "", fmt.Errorf("set language: %w", err)
		}
	}

	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}

	return text, nil
}
