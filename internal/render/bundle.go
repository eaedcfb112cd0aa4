package render

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// BundleNames returns the archive member names for a given upload base name.
func BundleNames(base string) (docxName, pdfName, zipName string) {
	return base + "_cleaned_redacted.docx",
		base + "_cleaned_redacted.pdf",
		base + "_cleaned_redacted.zip"
}

// Bundle packs the rendered documents into a deflate-compressed ZIP archive.
func (r *Renderer) Bundle(base string, docxBytes, pdfBytes []byte) ([]byte, error) {
	docxName, pdfName, _ := BundleNames(base)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	members := []struct {
		name    string
		content []byte
	}{
		{docxName, docxBytes},
		{pdfName, pdfBytes},
	}

	for _, member := range members {
		w, err := zw.Create(member.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive member %s: %w", member.name, err)
		}
		if _, err := w.Write(member.content); err != nil {
			return nil, fmt.Errorf("failed to write archive member %s: %w", member.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	return buf.Bytes(), nil
}
