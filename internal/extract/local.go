package extract

import "context"

// localEngine performs on-host OCR for image payloads when the remote service
// is unavailable or returns nothing usable.
type localEngine interface {
	Name() string
	Recognize(ctx context.Context, image []byte, language string) (string, error)
}
