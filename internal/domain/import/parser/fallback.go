package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/normalizer"
)

var fallbackDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`),
	regexp.MustCompile(`\b\d{2}/\d{2}\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`\b\d{1,2}\s+de\s+\p{L}+\s+de\s+\d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}\s+[A-Za-z]{3}\b`),
}

var fallbackAmountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`R\$?\s*-?\d{1,3}(?:\.?\d{3})*,\d{2}`),
	regexp.MustCompile(`R\$?\s*-?\d{1,3}(?:,\d{3})*\.\d{2}`),
	regexp.MustCompile(`-?\d{1,3}(?:\.?\d{3})*,\d{2}`),
	regexp.MustCompile(`-?\d{1,3}(?:,\d{3})*\.\d{2}`),
	regexp.MustCompile(`-?\d+\.\d{2}`),
	regexp.MustCompile(`-?\d+,\d{2}`),
}

var (
	fallbackInflow  = []string{"recebido", "deposito", "crédito", "estorno", "salario", "rendimento", "inclusao de pagamento"}
	fallbackOutflow = []string{"enviado", "pagamento", "compra", "débito", "tarifa", "encargo", "saque", "pgto fat"}
)

// parseFallback scans unstructured text for lines carrying both a date and an amount.
// The matched fragments are cut out of the line and the rest becomes the description.
func parseFallback(b *Builder, in Input) {
	for _, l := range lines(in.Text) {
		dateRaw, ok := firstDate(l.text, in.AssumedYear)
		if !ok {
			continue
		}
		amountRaw, v, ok := firstAmount(l.text)
		if !ok {
			continue
		}

		description := strings.Replace(l.text, dateRaw, "", 1)
		description = strings.Replace(description, amountRaw, "", 1)
		description = strings.TrimSpace(description)

		b.Add(l.n, dateRaw, description, exclusive(description, v, fallbackInflow, fallbackOutflow), "")
	}
}

func firstDate(line string, year int) (string, bool) {
	for _, re := range fallbackDatePatterns {
		m := re.FindString(line)
		if m == "" {
			continue
		}
		if _, err := normalizer.ParseDate(m, year); err == nil {
			return m, true
		}
	}
	return "", false
}

func firstAmount(line string) (string, decimal.Decimal, bool) {
	for _, re := range fallbackAmountPatterns {
		m := re.FindString(line)
		if m == "" {
			continue
		}
		if v, err := normalizer.ParseAmount(m); err == nil {
			return m, v, true
		}
	}
	return "", decimal.Zero, false
}
