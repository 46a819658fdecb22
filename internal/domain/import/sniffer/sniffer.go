// Package sniffer classifies incoming documents: which bank issued them, what kind of
// document they are and, for delimited text, how the table is laid out.
package sniffer

import (
	"encoding/csv"
	"errors"
	"strings"
)

// Header keywords of Brazilian bank exports, used to find the header row below any
// preamble lines.
var headerKeywords = []string{
	"data", "data mov", "data da transação", "data da transacao", "dt transacao",
	"descrição", "descricao", "histórico", "historico", "estabelecimento", "detalhes",
	"valor", "montante", "quantia", "débito", "debito", "crédito", "credito",
	"saída", "saida", "entrada", "saldo", "tipo",
	"date", "description", "amount", "value", "debit", "credit", "balance",
}

// FileConfig holds the detected layout of a delimited file
type FileConfig struct {
	Delimiter rune     // The field delimiter (';', ',', '\t', '|')
	SkipLines int      // Number of preamble lines before headers
	Headers   []string // Detected header names
}

var (
	ErrEmptyFile        = errors.New("file is empty")
	ErrNoHeadersFound   = errors.New("could not find data headers")
	ErrInvalidDelimiter = errors.New("could not detect valid delimiter")
)

// DetectConfig analyzes delimited text and returns its layout
func DetectConfig(data []byte) (*FileConfig, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyFile
	}

	lines := strings.Split(string(data), "\n")

	delimiter, skipLines, err := findHeaderRow(lines)
	if err != nil {
		return nil, err
	}

	headerLine := cleanLine(lines[skipLines], skipLines == 0)
	reader := csv.NewReader(strings.NewReader(headerLine))
	reader.Comma = delimiter
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, err
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	return &FileConfig{
		Delimiter: delimiter,
		SkipLines: skipLines,
		Headers:   headers,
	}, nil
}

// findHeaderRow locates the header row and its delimiter
func findHeaderRow(lines []string) (rune, int, error) {
	fallbackIndex := -1
	fallbackDelimiter := rune(0)
	fallbackCount := 0

	keywordIndex := -1
	keywordDelimiter := rune(0)
	keywordCount := 0
	keywordScore := 0

	for i, line := range lines {
		if i > 20 {
			break
		}

		line = cleanLine(line, i == 0)
		if line == "" {
			continue
		}
		lineLower := strings.ToLower(line)

		delimiter, count := detectDelimiter(line)
		if count < 1 {
			continue
		}

		keywordMatches := 0
		for _, kw := range headerKeywords {
			if strings.Contains(lineLower, kw) {
				keywordMatches++
			}
		}

		if keywordMatches > 0 {
			// wider rows win, keyword hits break ties
			score := count*10 + keywordMatches
			if keywordIndex == -1 || score > keywordScore {
				keywordCount = count
				keywordDelimiter = delimiter
				keywordIndex = i
				keywordScore = score
			}
		} else if count > fallbackCount {
			fallbackCount = count
			fallbackDelimiter = delimiter
			fallbackIndex = i
		}
	}

	if keywordIndex >= 0 && keywordCount >= 1 {
		return keywordDelimiter, keywordIndex, nil
	}
	if fallbackIndex >= 0 && fallbackCount >= 1 {
		return fallbackDelimiter, fallbackIndex, nil
	}

	return 0, 0, ErrNoHeadersFound
}

func cleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r")
	if firstLine {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	return strings.TrimSpace(line)
}

func detectDelimiter(line string) (rune, int) {
	delimiters := []rune{';', '\t', ',', '|'}
	bestDelimiter := rune(0)
	bestCount := 0
	for _, d := range delimiters {
		count := strings.Count(line, string(d))
		if count > bestCount {
			bestCount = count
			bestDelimiter = d
		}
	}
	return bestDelimiter, bestCount
}
