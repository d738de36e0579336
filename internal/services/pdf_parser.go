package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractionError reports that no usable text could be read from an upload.
type ExtractionError struct {
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from document: %v", e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

var errNoText = errors.New("no text content found in PDF")

type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

type pdfParserService struct{}

func NewPDFParserService() TextExtractor {
	return &pdfParserService{}
}

// ExtractText reads the document row by row, page by page. When that yields
// nothing it falls back to the plain-text dump of the whole document.
func (p *pdfParserService) ExtractText(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &ExtractionError{Cause: errors.New("empty document")}
	}

	text, primaryErr := extractByRows(data)
	if primaryErr == nil {
		return text, nil
	}
	slog.DebugContext(ctx, "row extraction failed, falling back to plain text", "error", primaryErr)

	if err := ctx.Err(); err != nil {
		return "", &ExtractionError{Cause: err}
	}

	text, fallbackErr := extractPlain(data)
	if fallbackErr == nil {
		return text, nil
	}

	return "", &ExtractionError{Cause: errors.Join(primaryErr, fallbackErr)}
}

func extractByRows(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var pages []string
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", pageIndex, err)
		}

		var pageText strings.Builder
		for _, row := range rows {
			for _, word := range row.Content {
				pageText.WriteString(word.S)
			}
			pageText.WriteString("\n")
		}

		if s := CleanText(pageText.String()); s != "" {
			pages = append(pages, s)
		}
	}

	if len(pages) == 0 {
		return "", errNoText
	}

	return strings.Join(pages, "\n\n"), nil
}

func extractPlain(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read plain text: %w", err)
	}

	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read plain text: %w", err)
	}

	text = strings.TrimSpace(string(b))
	if text == "" {
		return "", errNoText
	}

	return text, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
