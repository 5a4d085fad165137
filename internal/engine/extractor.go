package engine

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/narayana-thota/Query-Stream/internal/model"
)

// ExtractPDF converts an uploaded PDF payload into whitespace-collapsed
// plain text. It is a pure transform: nothing is retained on failure.
func ExtractPDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", model.ErrExtractionFailed
	}

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrExtractionFailed, err)
	}

	textReader, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrExtractionFailed, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrExtractionFailed, err)
	}

	text := collapseWhitespace(buf.String())
	if text == "" {
		// Parsed fine but carries no embedded text, e.g. a scanned image.
		return "", model.ErrEmptyDocument
	}
	return text, nil
}
