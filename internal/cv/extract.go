// Package cv extracts plain text from uploaded CV documents so the agent can
// use them as conversational context.
package cv

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxTextBytes caps stored extracted text; CVs are short documents and the
// agent only injects an excerpt anyway.
const maxTextBytes = 64 << 10

// ExtractFromBase64 decodes a base64-encoded PDF (optionally carrying a
// data-URL prefix, as browsers produce) and returns its plain text.
func ExtractFromBase64(encoded string) (string, error) {
	if idx := strings.Index(encoded, ";base64,"); idx >= 0 {
		encoded = encoded[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decoding base64 payload: %w", err)
	}
	return Extract(data)
}

// Extract returns the plain text of a PDF document.
func Extract(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	rd, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rd); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}

	text := strings.TrimSpace(buf.String())
	if len(text) > maxTextBytes {
		text = text[:maxTextBytes]
	}
	return text, nil
}

// IsPDF reports whether filename looks like a PDF document.
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(strings.TrimSpace(filename)), ".pdf")
}
