// Package extractor turns raw document bytes into text and row-based tables.
// Every entry point is best effort: failures are logged and yield empty content.
package extractor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
)

// Table is a row-based table with an optional header row.
type Table struct {
	Header []string
	Rows   [][]string
}

// Content is what a document yields before parsing.
type Content struct {
	Text   string
	Tables []Table
}

// IsEmpty reports whether neither text nor any table row was recovered.
func (c Content) IsEmpty() bool {
	if strings.TrimSpace(c.Text) != "" {
		return false
	}
	for _, t := range c.Tables {
		if len(t.Rows) > 0 {
			return false
		}
	}
	return true
}

// Headers returns the header cells of every table, in order.
func (c Content) Headers() []string {
	var out []string
	for _, t := range c.Tables {
		out = append(out, t.Header...)
	}
	return out
}

// OCR recognizes text in scanned PDFs and images.
type OCR interface {
	Recognize(ctx context.Context, name string, data []byte, format transaction.SourceFormat) (string, error)
}

// Extractor dispatches on source format.
type Extractor struct {
	logger *slog.Logger
	ocr    OCR
}

// New creates an extractor. A nil OCR disables the scanned-document fallback.
func New(logger *slog.Logger, ocr OCR) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger, ocr: ocr}
}

// Extract reads text and tables from a document.
func (e *Extractor) Extract(ctx context.Context, name string, data []byte, format transaction.SourceFormat) Content {
	var (
		content Content
		err     error
	)

	switch format {
	case transaction.FormatCSV:
		content, err = extractCSV(data)
	case transaction.FormatXLSX:
		content, err = extractExcel(data)
	case transaction.FormatPDF:
		content, err = extractPDF(data)
	case transaction.FormatDOCX:
		content, err = extractDOCX(data)
	case transaction.FormatText:
		content = Content{Text: string(normalizeText(data))}
	case transaction.FormatImage:
		// images only have text through OCR
	default:
		e.logger.Debug("unsupported source format", slog.String("document", name), slog.String("format", string(format)))
	}

	if err != nil {
		e.logger.Warn("content extraction failed",
			slog.String("document", name),
			slog.String("format", string(format)),
			slog.Any("error", err))
		return Content{}
	}
	return content
}

// PerformOCR runs the configured OCR engine, returning empty text on any failure.
func (e *Extractor) PerformOCR(ctx context.Context, name string, data []byte, format transaction.SourceFormat) string {
	if e.ocr == nil {
		return ""
	}
	text, err := e.ocr.Recognize(ctx, name, data, format)
	if err != nil {
		e.logger.Warn("ocr failed", slog.String("document", name), slog.Any("error", err))
		return ""
	}
	return text
}

// tableText renders rows as whitespace-separated lines so line parsers can scan them.
func tableText(t Table) string {
	var b strings.Builder
	if len(t.Header) > 0 {
		b.WriteString(strings.Join(t.Header, "  "))
		b.WriteByte('\n')
	}
	for _, row := range t.Rows {
		b.WriteString(strings.Join(row, "  "))
		b.WriteByte('\n')
	}
	return b.String()
}
