package extractor

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/sniffer"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// normalizeText strips a UTF-8 BOM and decodes Windows-1252, the charset of most
// Brazilian bank exports, when the bytes are not valid UTF-8.
func normalizeText(data []byte) []byte {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}

func extractCSV(data []byte) (Content, error) {
	data = normalizeText(data)
	cfg, err := sniffer.DetectConfig(data)
	if err != nil {
		if errors.Is(err, sniffer.ErrEmptyFile) {
			return Content{}, nil
		}
		return Content{}, fmt.Errorf("failed to detect csv layout: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	body := strings.Join(lines[cfg.SkipLines+1:], "\n")

	reader := csv.NewReader(strings.NewReader(body))
	reader.Comma = cfg.Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	table := Table{Header: cfg.Headers}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if isBlank(record) {
			continue
		}
		table.Rows = append(table.Rows, trimCells(record))
	}

	return Content{Text: tableText(table), Tables: []Table{table}}, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
