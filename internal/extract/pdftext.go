// Package extract provides a local PDF-to-text input adapter for the CLI.
// The resolver core only ever consumes plain text; this is a convenience so
// statements that embed a text layer can skip a separate extraction step.
package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextFromPDF extracts row-ordered text from a PDF file. Scanned documents
// without a text layer yield empty output, which the tokenizer then rejects
// as malformed input; OCR belongs to an upstream service, not here.
func TextFromPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("failed to read page %d of %s: %w", pageIndex, path, err)
		}
		for _, row := range rows {
			for i, word := range row.Content {
				if i > 0 {
					b.WriteString(" ")
				}
				b.WriteString(word.S)
			}
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// TextFromFile reads input text for the resolver: PDFs go through the text
// layer extractor, everything else is read as UTF-8 plain text.
func TextFromFile(path string) (string, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return TextFromPDF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
