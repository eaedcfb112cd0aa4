//go:build !tesseract
// +build !tesseract

package extract

// Stub implementation used when the 'tesseract' build tag is not set.
func newLocalEngine() localEngine {
	return nil
}
