package util

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// ExtractPDFText returns the plain text of every page. MuPDF is tried first;
// if it cannot open the document the pure-Go reader is used instead.
func ExtractPDFText(data []byte) (string, error) {
	text, err := extractWithFitz(data)
	if err == nil {
		return text, nil
	}

	fallback, fallbackErr := extractWithPDFReader(data)
	if fallbackErr != nil {
		return "", fmt.Errorf("failed to open PDF: %w (fallback: %v)", err, fallbackErr)
	}
	return fallback, nil
}

func extractWithFitz(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("mupdf open: %w", err)
	}
	defer doc.Close()

	var fullText strings.Builder
	var lastErr error
	for n := 0; n < doc.NumPage(); n++ {
		pageText, err := doc.Text(n)
		if err != nil {
			lastErr = fmt.Errorf("page %d: %w", n+1, err)
			continue
		}
		if pageText = strings.TrimSpace(pageText); pageText != "" {
			fullText.WriteString(pageText)
			fullText.WriteString("\n")
		}
	}

	if fullText.Len() == 0 && lastErr != nil {
		return "", lastErr
	}
	return fullText.String(), nil
}

func extractWithPDFReader(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("new pdf reader: %w", err)
	}

	var builder strings.Builder
	for page := 1; page <= reader.NumPage(); page++ {
		p := reader.Page(page)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page, err)
		}
		builder.WriteString(content)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}
