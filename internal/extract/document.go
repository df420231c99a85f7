package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dslipak/pdf"
	"github.com/gen2brain/go-fitz"
	"github.com/lu4p/cat"
	"go.uber.org/zap"
)

var errNoText = errors.New("no text found")

// extractPDF uses MuPDF and falls back to the pure Go reader when MuPDF
// fails or finds no text layer.
func (e *Extractor) extractPDF(data []byte) (string, error) {
	text, err := pdfWithFitz(data)
	if err == nil {
		return text, nil
	}
	e.logger.Warn("go-fitz extraction failed, trying fallback reader", zap.Error(err))

	text, fallbackErr := pdfWithReader(data)
	if fallbackErr != nil {
		return "", errors.Join(err, fallbackErr)
	}
	return text, nil
}

func pdfWithFitz(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			continue
		}
		if pageText != "" {
			b.WriteString(pageText)
			b.WriteString("\n")
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errNoText
	}
	return text, nil
}

func pdfWithReader(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", errNoText
	}
	return text, nil
}

// extractDOCX goes through a temp file because cat detects the format by
// extension.
func extractDOCX(data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "kbbot-*.docx")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	text, err := cat.File(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read docx: %w", err)
	}
	return text, nil
}
