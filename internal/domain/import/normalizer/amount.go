package normalizer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonNumeric = regexp.MustCompile(`[^\d.,-]`)

var amountReplacer = strings.NewReplacer(
	"R$", "",
	"US$", "",
	"%", "",
	"–", "-",
	"−", "-",
)

// ParseAmount converts a currency fragment into a signed decimal.
//
// When both separators occur the later one is the decimal point, so "1.234,56" and
// "1,234.56" both yield 1234.56. A lone comma is always the decimal point.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := amountReplacer.Replace(strings.TrimSpace(raw))
	s = nonNumeric.ReplaceAllString(s, "")

	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparsableAmount, raw)
	}
	return d, nil
}
