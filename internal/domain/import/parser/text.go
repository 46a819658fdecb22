package parser

import (
	"regexp"
	"strings"
)

var nubankStatementLine = regexp.MustCompile(`(\d{1,2}/\d{1,2})\s+-\s+(.+?)\s+-\s*R?\$?\s*(-?[\d.,]+)(?:\s+Saldo R?\$?\s*[\d.,]+)?`)

var (
	nubankOutflow = []string{"pagamento realizado", "transferencia enviada", "compra", "débito", "saída"}
	nubankInflow  = []string{"transferencia recebida", "depósito", "pix recebido", "entrada", "salario"}
)

// Balance, limit and summary lines of a Nubank statement that look like transactions.
var nubankBoilerplate = []string{
	"saldo do dia", "saldo anterior", "saldo inicial", "saldo final", "saldo em conta",
	"saldo disponível", "saldo disponivel", "limite", "total de entradas", "total de saídas",
	"total de saidas", "total do período", "subtotal", "vencimento", "impostos",
}

// parseNubankStatementText reads "DD/MM - Description - R$ V [Saldo R$ V]" lines.
func parseNubankStatementText(b *Builder, in Input) {
	for _, l := range lines(in.Text) {
		if containsAny(strings.ToLower(l.text), nubankBoilerplate) {
			continue
		}
		m := nubankStatementLine.FindStringSubmatch(l.text)
		if m == nil {
			continue
		}
		description := strings.TrimSpace(m[2])
		v, ok := b.Amount(l.n, m[3])
		if !ok {
			continue
		}
		b.Add(l.n, m[1], description, outflowFirst(description, v, nubankOutflow, nubankInflow), "")
	}
}

var (
	c6PurchaseLine = regexp.MustCompile(`(?i)(\d{1,2}\s+[A-Za-z]{3,})\s+(.+?)\s+R?\$?\s*([\d.,]+)\s*$`)
	c6TabularLine  = regexp.MustCompile(`(?i)(\d{2}/\d{2})\s+(Entrada PIX|Saida PIX|Débito de Cartão|Pagamento|Outros gastos)\s+(.+?)\s+(R\$?\s*-?[\d.,]+)`)
)

// Summary and header lines of a C6 bill that look like transactions.
var c6Boilerplate = []string{
	"saldo total", "limite total", "vencimento", "pagamento mínimo",
	"c6 black", "subtotal", "total a pagar", "parcelamento de fatura",
	"juros rotativo", "cet do financiamento", "iof do rotativo", "encargos", "impostos",
	"compras nacionais", "compras internacionais", "valores creditados",
}

var c6Credit = []string{"entrada pix", "estorno", "inclusao de pagamento", "pagamento efetuado", "pgto fat", "credito"}

const (
	opCardDebit  = "Card Debit"
	opCardCredit = "Bill Credit"
)

// parseC6CardBillText reads "DD mon Merchant V" purchase lines and the
// "DD/MM Type Description R$ V" rows printed when the bill carries account movements.
func parseC6CardBillText(b *Builder, in Input) {
	for _, l := range lines(in.Text) {
		if containsAny(strings.ToLower(l.text), c6Boilerplate) {
			continue
		}

		var dateRaw, description, amountRaw, opTag string
		if m := c6TabularLine.FindStringSubmatch(l.text); m != nil {
			dateRaw, opTag, description, amountRaw = m[1], strings.TrimSpace(m[2]), m[3], m[4]
		} else if m := c6PurchaseLine.FindStringSubmatch(l.text); m != nil {
			dateRaw, description, amountRaw = m[1], m[2], m[3]
		} else {
			continue
		}
		description = strings.TrimSpace(description)

		v, ok := b.Amount(l.n, amountRaw)
		if !ok {
			continue
		}
		v, credit := cardBill(opTag+" "+description, v, c6Credit)
		if opTag == "" {
			opTag = opCardDebit
			if credit {
				opTag = opCardCredit
			}
		}
		b.Add(l.n, dateRaw, description, v, opTag)
	}
}
