package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// extractDOCX pulls paragraph text and tables out of word/document.xml.
func extractDOCX(data []byte) (Content, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Content{}, fmt.Errorf("failed to open docx: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return Content{}, errors.New("docx has no word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return Content{}, fmt.Errorf("failed to open document.xml: %w", err)
	}
	defer rc.Close()

	var (
		content   Content
		text      strings.Builder
		paragraph strings.Builder
		table     *Table
		row       []string
		depth     int // table nesting
	)

	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Content{}, fmt.Errorf("failed to decode document.xml: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Space != wordNamespace {
				continue
			}
			switch el.Name.Local {
			case "tbl":
				depth++
				if depth == 1 {
					table = &Table{}
				}
			case "tr":
				row = nil
			case "tc":
				row = append(row, "")
			case "tab":
				paragraph.WriteByte('\t')
			case "t":
				var s string
				if err := dec.DecodeElement(&s, &el); err == nil {
					paragraph.WriteString(s)
				}
			}
		case xml.EndElement:
			if el.Name.Space != wordNamespace {
				continue
			}
			switch el.Name.Local {
			case "p":
				line := strings.TrimSpace(paragraph.String())
				paragraph.Reset()
				if depth > 0 {
					row = appendCellText(row, line)
				} else if line != "" {
					text.WriteString(line)
					text.WriteByte('\n')
				}
			case "tr":
				if table != nil && depth == 1 && len(row) > 0 {
					if table.Header == nil {
						table.Header = row
					} else {
						table.Rows = append(table.Rows, row)
					}
				}
			case "tbl":
				depth--
				if depth == 0 && table != nil {
					content.Tables = append(content.Tables, *table)
					text.WriteString(tableText(*table))
					table = nil
				}
			}
		}
	}

	content.Text = text.String()
	return content, nil
}

// appendCellText writes a paragraph into the currently open cell.
func appendCellText(row []string, line string) []string {
	if len(row) == 0 {
		return []string{line}
	}
	last := len(row) - 1
	switch {
	case row[last] == "":
		row[last] = line
	case line != "":
		row[last] += " " + line
	}
	return row
}
