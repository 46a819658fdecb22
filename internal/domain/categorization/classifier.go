// Package categorization assigns granular categories to transactions
// and splits them into the statement and card-bill subsets used by analytics.
package categorization

import (
	"strings"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
)

// Classifier is an immutable keyword classifier built once from a Taxonomy.
// It is safe for concurrent use.
type Classifier struct {
	categories []transaction.Category
	gambling   int // index of the gambling category, -1 when absent
	keywords   *keywordSet
	sites      *keywordSet
	processors *keywordSet
	refunds    *keywordSet
	payments   *keywordSet
}

// NewClassifier compiles a taxonomy.
func NewClassifier(t Taxonomy) *Classifier {
	c := &Classifier{gambling: -1}

	groups := make([][]string, len(t.Categories))
	for i, ck := range t.Categories {
		c.categories = append(c.categories, ck.Category)
		groups[i] = ck.Keywords
		if ck.Category == transaction.CategoryGambling {
			c.gambling = i
		}
	}

	c.keywords = newKeywordSet(groups...)
	c.sites = newKeywordSet(t.GamblingSites)
	c.processors = newKeywordSet(t.Processors)
	c.refunds = newKeywordSet(t.RefundKeywords)
	c.payments = newKeywordSet(t.PaymentKeywords)
	return c
}

// NewDefaultClassifier compiles DefaultTaxonomy.
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultTaxonomy())
}

// KeywordCount returns the number of distinct category keywords loaded.
func (c *Classifier) KeywordCount() int {
	return c.keywords.PatternCount()
}

// ClassifyCategory returns the first category in taxonomy order with a keyword in the
// description.
//
// A processor token keeps the description out of Gambling: the scan is repeated without
// it and, when nothing else matches, the result is Essential Services/Bills.
func (c *Classifier) ClassifyCategory(description string) transaction.Category {
	lower := strings.ToLower(description)
	hits := c.keywords.hits(lower, len(c.categories))

	if c.processors.any(lower) {
		for i, hit := range hits {
			if hit && i != c.gambling {
				return c.categories[i]
			}
		}
		return transaction.CategoryEssentialServices
	}

	for i, hit := range hits {
		if hit {
			return c.categories[i]
		}
	}
	return transaction.CategoryOther
}

// IsGambling reports whether the description names a gambling operator and no
// payment processor.
func (c *Classifier) IsGambling(description string) bool {
	lower := strings.ToLower(description)
	return c.sites.any(lower) && !c.processors.any(lower)
}

// RefineCardCredits relabels card-bill credits: refunds, then bill payments, and any
// remaining Other as a miscellaneous credit. Every other record is returned unchanged.
// Payment keywords are checked after refund ones and win when both match.
func (c *Classifier) RefineCardCredits(txs []transaction.Transaction) []transaction.Transaction {
	out := make([]transaction.Transaction, len(txs))
	for i, tx := range txs {
		if tx.DocType == transaction.DocCardBill && tx.IsInflow() {
			lower := strings.ToLower(tx.Description)
			if c.refunds.any(lower) {
				tx.Category = transaction.CategoryChargeback
			}
			if c.payments.any(lower) {
				tx.Category = transaction.CategoryBillPayment
			}
			if tx.Category == transaction.CategoryOther {
				tx.Category = transaction.CategoryMiscCredit
			}
		}
		out[i] = tx
	}
	return out
}

// Partitioned holds the four subsets analytics work on.
type Partitioned struct {
	StatementInflows  []transaction.Transaction
	StatementOutflows []transaction.Transaction
	CardPurchases     []transaction.Transaction
	CardCredits       []transaction.Transaction
}

// Statement returns statement inflows followed by outflows.
func (p Partitioned) Statement() []transaction.Transaction {
	out := make([]transaction.Transaction, 0, len(p.StatementInflows)+len(p.StatementOutflows))
	out = append(out, p.StatementInflows...)
	return append(out, p.StatementOutflows...)
}

// Card returns card purchases followed by credits.
func (p Partitioned) Card() []transaction.Transaction {
	out := make([]transaction.Transaction, 0, len(p.CardPurchases)+len(p.CardCredits))
	out = append(out, p.CardPurchases...)
	return append(out, p.CardCredits...)
}

// All returns every partitioned record.
func (p Partitioned) All() []transaction.Transaction {
	return append(p.Statement(), p.Card()...)
}

// Partition splits records by document type and sign. Payslip and unknown records
// belong to no subset.
func Partition(txs []transaction.Transaction) Partitioned {
	var p Partitioned
	for _, tx := range txs {
		switch tx.DocType {
		case transaction.DocStatement:
			if tx.IsInflow() {
				p.StatementInflows = append(p.StatementInflows, tx)
			} else {
				p.StatementOutflows = append(p.StatementOutflows, tx)
			}
		case transaction.DocCardBill:
			if tx.IsInflow() {
				p.CardCredits = append(p.CardCredits, tx)
			} else {
				p.CardPurchases = append(p.CardPurchases, tx)
			}
		}
	}
	return p
}

// Categorized is the labelled batch in input order together with its partitions.
// Records of unknown document type appear in Records only.
type Categorized struct {
	Records []transaction.Transaction
	Partitioned
}

// Categorize assigns a category to every record, refines card credits and partitions
// the result. The input slice is not modified.
func (c *Classifier) Categorize(txs []transaction.Transaction) Categorized {
	labelled := make([]transaction.Transaction, len(txs))
	for i, tx := range txs {
		tx.Category = c.ClassifyCategory(tx.Description)
		labelled[i] = tx
	}
	labelled = c.RefineCardCredits(labelled)
	return Categorized{Records: labelled, Partitioned: Partition(labelled)}
}
