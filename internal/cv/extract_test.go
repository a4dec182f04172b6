package cv

import (
	"strings"
	"testing"
)

func TestIsPDF(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"resume.pdf", true},
		{"Resume.PDF", true},
		{" resume.pdf ", true},
		{"resume.docx", false},
		{"pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsPDF(tt.filename); got != tt.want {
			t.Errorf("IsPDF(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestExtractFromBase64InvalidPayload(t *testing.T) {
	if _, err := ExtractFromBase64("not valid base64!!!"); err == nil {
		t.Error("expected a decode error")
	}
}

func TestExtractFromBase64StripsDataURLPrefix(t *testing.T) {
	// The payload decodes fine once the prefix is stripped, so the failure
	// must come from the PDF parser, not the base64 decoder.
	_, err := ExtractFromBase64("data:application/pdf;base64,aGVsbG8gd29ybGQ=")
	if err == nil {
		t.Fatal("expected a pdf parse error")
	}
	if strings.HasPrefix(err.Error(), "decoding base64") {
		t.Errorf("err = %q, prefix was not stripped before decoding", err)
	}
}

func TestExtractRejectsNonPDFBytes(t *testing.T) {
	// Valid base64, but the payload is not a PDF document.
	if _, err := ExtractFromBase64("aGVsbG8gd29ybGQ="); err == nil {
		t.Error("expected a pdf parse error")
	}
}
