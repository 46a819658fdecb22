// Package transaction defines the canonical transaction record produced by every parser
// and consumed by classification and analytics.
package transaction

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DocType identifies what kind of financial document a record came from.
type DocType string

const (
	DocStatement DocType = "statement"
	DocCardBill  DocType = "card_bill"
	DocPayslip   DocType = "payslip"
	DocUnknown   DocType = "unknown"
)

// Flow is the money direction, derived from the sign of the value.
type Flow string

const (
	FlowInflow  Flow = "Inflow"
	FlowOutflow Flow = "Outflow"
)

// Category is a granular spending/income label.
type Category string

const (
	CategoryFood              Category = "Food"
	CategoryTransport         Category = "Transport"
	CategoryHealth            Category = "Health"
	CategoryApparel           Category = "Apparel"
	CategoryLeisure           Category = "Leisure"
	CategoryTechnology        Category = "Technology"
	CategoryEssentialServices Category = "Essential Services/Bills"
	CategoryHomeAndHousing    Category = "Home & Housing"
	CategoryEducation         Category = "Education"
	CategoryInvestments       Category = "Investments"
	CategoryFeesAndInterest   Category = "Fees & Interest"
	CategoryGambling          Category = "Gambling"
	CategoryPets              Category = "Pets"
	CategoryPrimaryIncome     Category = "Primary Income"
	CategoryOther             Category = "Other"

	// Card-bill credit relabels.
	CategoryChargeback  Category = "Chargeback/Refund"
	CategoryBillPayment Category = "Bill Payment (Credit)"
	CategoryMiscCredit  Category = "Miscellaneous Credit"
)

// Bank is the issuing institution of a document.
type Bank string

const (
	BankC6        Bank = "C6 Bank"
	BankNubank    Bank = "Nubank"
	BankCaixa     Bank = "Caixa Econômica Federal"
	BankInter     Bank = "Banco Inter"
	BankPicPay    Bank = "PicPay"
	BankBradesco  Bank = "Bradesco"
	BankItau      Bank = "Itaú"
	BankSantander Bank = "Santander"
	BankUnknown   Bank = "Unknown"
)

// SourceFormat is the physical format a document was extracted from.
type SourceFormat string

const (
	FormatPDF     SourceFormat = "pdf"
	FormatCSV     SourceFormat = "csv"
	FormatXLSX    SourceFormat = "xlsx"
	FormatDOCX    SourceFormat = "docx"
	FormatText    SourceFormat = "txt"
	FormatImage   SourceFormat = "image"
	FormatUnknown SourceFormat = "unknown"
)

// IsTabular reports whether the format usually carries row-based tables.
func (f SourceFormat) IsTabular() bool {
	return f == FormatCSV || f == FormatXLSX
}

// NeedsOCR reports whether an empty text layer may be recovered through OCR.
func (f SourceFormat) NeedsOCR() bool {
	return f == FormatPDF || f == FormatImage
}

// FormatFromFilename resolves the source format from the file extension.
func FormatFromFilename(name string) SourceFormat {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xls", ".xlsm":
		return FormatXLSX
	case ".docx":
		return FormatDOCX
	case ".txt":
		return FormatText
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp":
		return FormatImage
	default:
		return FormatUnknown
	}
}

// Transaction is one normalized money movement.
//
// Value is negative for outflows. The flow direction is not stored: Flow derives it
// from the sign so the two can never disagree.
type Transaction struct {
	Date         time.Time
	Description  string
	Value        decimal.Decimal
	Currency     string
	DocType      DocType
	OperationTag string
	Category     Category
	Bank         Bank
	Source       string
}

// Flow returns Inflow for non-negative values and Outflow otherwise.
func (t Transaction) Flow() Flow {
	return FlowOf(t.Value)
}

// FlowOf classifies a value by sign.
func FlowOf(v decimal.Decimal) Flow {
	if v.IsNegative() {
		return FlowOutflow
	}
	return FlowInflow
}

// IsInflow reports whether the record brings money in.
func (t Transaction) IsInflow() bool {
	return !t.Value.IsNegative()
}

// Day returns the calendar day of the record, dropping any time component.
func (t Transaction) Day() time.Time {
	y, m, d := t.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Month returns the YYYY-MM bucket of the record.
func (t Transaction) Month() string {
	return t.Date.Format("2006-01")
}
