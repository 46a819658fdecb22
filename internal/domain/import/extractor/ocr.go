package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
)

// ErrOCRUnavailable is returned when the tesseract or pdftoppm binaries are missing.
var ErrOCRUnavailable = errors.New("ocr tools not available")

// TesseractOCR shells out to tesseract, rasterizing PDFs with pdftoppm first.
type TesseractOCR struct {
	logger    *slog.Logger
	languages string
	dpi       int
}

// NewTesseractOCR creates an OCR engine for Portuguese and English text.
func NewTesseractOCR(logger *slog.Logger) *TesseractOCR {
	if logger == nil {
		logger = slog.Default()
	}
	return &TesseractOCR{logger: logger, languages: "por+eng", dpi: 300}
}

// Recognize returns the text of every page, in page order.
func (o *TesseractOCR) Recognize(ctx context.Context, name string, data []byte, format transaction.SourceFormat) (string, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", fmt.Errorf("%w: tesseract: %v", ErrOCRUnavailable, err)
	}

	tmpDir, err := os.MkdirTemp("", "ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	input := filepath.Join(tmpDir, "input"+filepath.Ext(name))
	if err := os.WriteFile(input, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	images := []string{input}
	if format == transaction.FormatPDF {
		images, err = o.rasterize(ctx, input, tmpDir)
		if err != nil {
			return "", err
		}
	}

	var pages []string
	for _, img := range images {
		cmd := exec.CommandContext(ctx, "tesseract", img, "stdout", "-l", o.languages, "--psm", "4")
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		out, err := cmd.Output()
		if err != nil {
			o.logger.Debug("tesseract page failed",
				slog.String("document", name),
				slog.String("page", filepath.Base(img)),
				slog.String("stderr", strings.TrimSpace(stderr.String())),
				slog.Any("error", err))
			continue
		}
		if text := strings.TrimSpace(string(out)); text != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n"), nil
}

func (o *TesseractOCR) rasterize(ctx context.Context, input, dir string) ([]string, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("%w: pdftoppm: %v", ErrOCRUnavailable, err)
	}

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", fmt.Sprint(o.dpi), "-png", input, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(out))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	var images []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "page") && strings.HasSuffix(e.Name(), ".png") {
			images = append(images, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(images)

	if len(images) == 0 {
		return nil, errors.New("pdftoppm produced no page images")
	}
	return images, nil
}
