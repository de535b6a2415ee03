// Package pdfdoc loads source documents from PDF files and can synthesize
// a small sample document when none is configured.
package pdfdoc

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ledongthuc/pdf"

	"assistant/internal/domain"
)

// SampleText is indexed when the configured document is missing, so the
// pipeline always has content to answer from.
const SampleText = "This is a sample PDF document used for demonstrating retrieval-augmented generation. " +
	"The Eiffel Tower is located in Paris, France. It is one of the most famous landmarks in the world. " +
	"Weather information is often needed by travellers. The weather in Hyderabad can be very hot in the summer."

// Extract reads a PDF and returns its plain text as a Document.
func Extract(path string) (domain.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return domain.Document{}, err
	}
	defer f.Close()

	var buf bytes.Buffer
	b, err := r.GetPlainText()
	if err != nil {
		return domain.Document{}, err
	}
	if _, err := io.Copy(&buf, b); err != nil {
		return domain.Document{}, err
	}
	return domain.Document{
		ID:      hashString(path),
		Path:    path,
		Content: strings.TrimSpace(buf.String()),
	}, nil
}

// EnsureSample writes a minimal valid sample PDF at path if no file exists there.
func EnsureSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Arial", "", 12)
	doc.MultiCell(0, 10, SampleText, "", "L", false)
	return doc.OutputFileAndClose(path)
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
