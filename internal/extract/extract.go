// Package extract turns uploaded files into plain text for segmentation.
package extract

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"kbbot/internal/models"

	"go.uber.org/zap"
)

var (
	// ErrExtraction marks a file that could not be turned into text.
	ErrExtraction  = errors.New("text extraction failed")
	ErrUnsupported = errors.New("unsupported file type")
)

// Func extracts plain text from the raw bytes of one file type.
type Func func(data []byte) (string, error)

type Extractor struct {
	funcs  map[models.FileType]Func
	logger *zap.Logger
}

func New(logger *zap.Logger) *Extractor {
	e := &Extractor{logger: logger}
	e.funcs = map[models.FileType]Func{
		models.FileTypeTXT:  extractText,
		models.FileTypeMD:   extractMarkdown,
		models.FileTypeDOCX: extractDOCX,
		models.FileTypePDF:  e.extractPDF,
	}
	return e
}

// Register overrides the extractor used for a file type.
func (e *Extractor) Register(fileType models.FileType, fn Func) {
	e.funcs[fileType] = fn
}

func (e *Extractor) Supports(fileType models.FileType) bool {
	_, ok := e.funcs[fileType]
	return ok
}

// Extract returns the text of data. Failures wrap ErrExtraction, and an
// unknown type wraps ErrUnsupported as well.
func (e *Extractor) Extract(fileType models.FileType, data []byte) (string, error) {
	fn, ok := e.funcs[fileType]
	if !ok {
		return "", fmt.Errorf("%w: %w %q", ErrExtraction, ErrUnsupported, fileType)
	}

	text, err := fn(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrExtraction, fileType, err)
	}

	text = strings.TrimSpace(sanitizeUTF8(text))
	e.logger.Debug("Text extracted",
		zap.String("file_type", string(fileType)),
		zap.Int("bytes", len(data)),
		zap.Int("text_length", len(text)),
	)
	return text, nil
}

func (e *Extractor) ExtractFile(fileType models.FileType, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read %s: %w", ErrExtraction, path, err)
	}
	return e.Extract(fileType, data)
}
