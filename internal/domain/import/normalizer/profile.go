package normalizer

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// CadastralInfo holds the account-holder fields found in document text.
// Nil fields were not found.
type CadastralInfo struct {
	Name       *string `json:"name,omitempty"`
	TaxID      *string `json:"tax_id,omitempty"` // CPF or CNPJ
	Address    *string `json:"address,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	Branch     *string `json:"branch,omitempty"`
	Account    *string `json:"account,omitempty"`
}

// PayslipInfo holds the employment fields printed on a payslip.
type PayslipInfo struct {
	Employer *string          `json:"employer,omitempty"`
	Role     *string          `json:"role,omitempty"`
	Gross    *decimal.Decimal `json:"gross,omitempty"`
	Net      *decimal.Decimal `json:"net,omitempty"`
}

var (
	cpfPattern      = regexp.MustCompile(`\b\d{3}\.?\d{3}\.?\d{3}-?\d{2}\b`)
	cnpjPattern     = regexp.MustCompile(`\b\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2}\b`)
	namePattern     = regexp.MustCompile(`(?i)(?:Nome Completo|Nome|Titular|Cliente|Sr\.|Sra\.)[:\s]*([A-ZÀÁÂÃÄÉÊËÍÎÏÓÔÕÖÚÛÜ][a-zàáâãäéêëíîïóôõöúûü ]+)`)
	addressPattern  = regexp.MustCompile(`(?i)(?:Endereço|Rua|Avenida|Av)[:\s]*([^,\n]+(?:,\s*\d+)?(?:\s*-\s*[^\n,]+)?)`)
	phonePattern    = regexp.MustCompile(`\(?\d{2}\)?\s?\d{4,5}-?\d{4}`)
	postalPattern   = regexp.MustCompile(`\b\d{5}-?\d{3}\b`)
	branchPattern   = regexp.MustCompile(`(?i)(?:Agência|Ag)[:\s]*(\d{1,5}-?\d?)`)
	accountPattern  = regexp.MustCompile(`(?i)(?:Conta|C/C|Cta)[:\s]*(\d+[-\s]?\d*)`)
	grossPattern    = regexp.MustCompile(`(?i)(?:Salário Bruto|Vencimento Base|Remuneração Bruta)[:\s]*R?\$?\s*([\d.,]+)`)
	netPattern      = regexp.MustCompile(`(?i)(?:Salário Líquido|Líquido a Receber|Valor Líquido)[:\s]*R?\$?\s*([\d.,]+)`)
	employerPattern = regexp.MustCompile(`(?i)(?:Empresa|Empregador|Razão Social)[:\s]*([^\n\r]+)`)
	rolePattern     = regexp.MustCompile(`(?i)(?:Cargo|Função|Ocupação)[:\s]*([^\n\r]+)`)
)

// ExtractCadastral scans free text for account-holder fields.
func ExtractCadastral(text string) CadastralInfo {
	var info CadastralInfo

	if m := cpfPattern.FindString(text); m != "" {
		info.TaxID = ptr(m)
	} else if m := cnpjPattern.FindString(text); m != "" {
		info.TaxID = ptr(m)
	}
	info.Name = firstGroup(namePattern, text)
	info.Address = firstGroup(addressPattern, text)
	if m := phonePattern.FindString(text); m != "" {
		info.Phone = ptr(m)
	}
	if m := postalPattern.FindString(text); m != "" {
		info.PostalCode = ptr(m)
	}
	info.Branch = firstGroup(branchPattern, text)
	info.Account = firstGroup(accountPattern, text)

	return info
}

// Merge overlays the fields present in other onto c.
func (c CadastralInfo) Merge(other CadastralInfo) CadastralInfo {
	pick := func(a, b *string) *string {
		if b != nil {
			return b
		}
		return a
	}
	return CadastralInfo{
		Name:       pick(c.Name, other.Name),
		TaxID:      pick(c.TaxID, other.TaxID),
		Address:    pick(c.Address, other.Address),
		Phone:      pick(c.Phone, other.Phone),
		PostalCode: pick(c.PostalCode, other.PostalCode),
		Branch:     pick(c.Branch, other.Branch),
		Account:    pick(c.Account, other.Account),
	}
}

// IsEmpty reports whether no field was found.
func (c CadastralInfo) IsEmpty() bool {
	return c == CadastralInfo{}
}

// ExtractPayslip scans payslip text for employment and salary fields.
func ExtractPayslip(text string) PayslipInfo {
	var info PayslipInfo

	info.Employer = firstGroup(employerPattern, text)
	info.Role = firstGroup(rolePattern, text)
	if m := firstGroup(grossPattern, text); m != nil {
		if d, err := ParseAmount(*m); err == nil {
			info.Gross = &d
		}
	}
	if m := firstGroup(netPattern, text); m != nil {
		if d, err := ParseAmount(*m); err == nil {
			info.Net = &d
		}
	}

	return info
}

// DeclaredIncome is the net salary when printed, else the gross one.
func (p PayslipInfo) DeclaredIncome() *decimal.Decimal {
	if p.Net != nil {
		return p.Net
	}
	return p.Gross
}

func firstGroup(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return nil
	}
	return &v
}

func ptr(s string) *string {
	return &s
}
