package normalizer

import (
	"regexp"
	"strings"
)

// Operation tags inferred from descriptions. They are advisory only.
const (
	OpPIX        = "PIX"
	OpTransfer   = "Transfer"
	OpPayment    = "Payment"
	OpWithdrawal = "Withdrawal"
	OpPurchase   = "Purchase/Debit"
	OpDeposit    = "Deposit"
	OpInvestment = "Investment/Redemption"
	OpFees       = "Fees/Charges"
	OpOther      = "Other"
)

// OperationPattern maps a description pattern to an operation tag
type OperationPattern struct {
	Pattern *regexp.Regexp
	Tag     string
}

// OperationTagger infers the operational kind of a movement from its description.
// Patterns are evaluated in order and the first hit wins.
type OperationTagger struct {
	patterns []OperationPattern
}

// NewOperationTagger creates a tagger with the standard Brazilian banking vocabulary
func NewOperationTagger() *OperationTagger {
	return &OperationTagger{patterns: defaultOperationPatterns()}
}

// Tag returns the operation tag for a description, OpOther when nothing matches.
func (t *OperationTagger) Tag(description string) string {
	lower := strings.ToLower(description)
	for _, p := range t.patterns {
		if p.Pattern.MatchString(lower) {
			return p.Tag
		}
	}
	return OpOther
}

func substrings(terms ...string) *regexp.Regexp {
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = regexp.QuoteMeta(term)
	}
	return regexp.MustCompile(strings.Join(quoted, "|"))
}

func defaultOperationPatterns() []OperationPattern {
	return []OperationPattern{
		{Pattern: substrings("pix"), Tag: OpPIX},
		{Pattern: substrings("ted", "transferencia", "transf"), Tag: OpTransfer},
		{Pattern: substrings("boleto", "pagamento", "pgto"), Tag: OpPayment},
		{Pattern: substrings("saque"), Tag: OpWithdrawal},
		{Pattern: substrings("compra", "débito", "debito", "cartão", "cartao"), Tag: OpPurchase},
		{Pattern: substrings("deposito"), Tag: OpDeposit},
		{Pattern: substrings("rendimento", "resgate", "investimento"), Tag: OpInvestment},
		{Pattern: substrings("tarifa", "encargo", "juro", "multa"), Tag: OpFees},
	}
}
