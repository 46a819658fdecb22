package extractor

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// extractExcel reads every sheet; the first row with at least two filled cells is its header.
// Cells are read raw so number formats never leak into amounts; date-styled cells are
// rendered day-first.
func extractExcel(data []byte) (Content, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{
		RawCellValue: true,
	})
	if err != nil {
		return Content{}, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	dates := newDateCells(f)

	var (
		content Content
		text    strings.Builder
	)
	for _, sheet := range orderedSheets(f) {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return Content{}, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		dates.render(sheet, rows)

		headerIdx := -1
		for i, row := range rows {
			if filledCells(row) >= 2 {
				headerIdx = i
				break
			}
		}
		if headerIdx < 0 {
			continue
		}

		table := Table{Header: trimCells(rows[headerIdx])}
		for _, row := range rows[headerIdx+1:] {
			if isBlank(row) {
				continue
			}
			table.Rows = append(table.Rows, trimCells(row))
		}
		content.Tables = append(content.Tables, table)
		text.WriteString(tableText(table))
	}
	content.Text = text.String()

	return content, nil
}

var bracketsAndQuotes = regexp.MustCompile(`\[[^\]]*\]|"[^"]*"`)

// dateCells recognises cells whose number format is a date and rewrites their serial
// value as dd/mm/yyyy.
type dateCells struct {
	f        *excelize.File
	date1904 bool
	styles   map[int]bool
}

func newDateCells(f *excelize.File) *dateCells {
	d := &dateCells{f: f, styles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

func (d *dateCells) render(sheet string, rows [][]string) {
	for r, row := range rows {
		for c, cell := range row {
			if cell == "" {
				continue
			}
			serial, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil || !d.isDate(sheet, name) {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, d.date1904)
			if err != nil {
				continue
			}
			row[c] = formatCellDate(t)
		}
	}
}

func (d *dateCells) isDate(sheet, cell string) bool {
	id, err := d.f.GetCellStyle(sheet, cell)
	if err != nil || id == 0 {
		return false
	}
	if known, ok := d.styles[id]; ok {
		return known
	}
	style, err := d.f.GetStyle(id)
	isDate := err == nil && isDateFormat(style)
	d.styles[id] = isDate
	return isDate
}

// isDateFormat covers the built-in day-month-year formats and custom formats carrying
// day or year tokens outside brackets and quotes.
func isDateFormat(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		format := strings.ToLower(bracketsAndQuotes.ReplaceAllString(*style.CustomNumFmt, ""))
		return strings.ContainsAny(format, "dy")
	}
	switch n := style.NumFmt; {
	case n >= 14 && n <= 17, n == 22:
		return true
	}
	return false
}

func formatCellDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("02/01/2006")
	}
	return t.Format("02/01/2006 15:04:05")
}

// orderedSheets puts sheets with transaction-like names first.
func orderedSheets(f *excelize.File) []string {
	sheets := f.GetSheetList()
	preferredNames := []string{"extrato", "movimentacao", "movimentação", "transacoes", "transações", "fatura", "lancamentos"}

	var preferred, rest []string
	for _, sheet := range sheets {
		lower := strings.ToLower(sheet)
		matched := false
		for _, name := range preferredNames {
			if strings.Contains(lower, name) {
				matched = true
				break
			}
		}
		if matched {
			preferred = append(preferred, sheet)
		} else {
			rest = append(rest, sheet)
		}
	}
	return append(preferred, rest...)
}

func filledCells(row []string) int {
	n := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			n++
		}
	}
	return n
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}
