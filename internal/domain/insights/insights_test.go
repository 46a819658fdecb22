package insights

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/categorization"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/normalizer"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
)

func at(day, hour int) time.Time {
	return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC)
}

func stmt(date time.Time, description, value string) transaction.Transaction {
	return transaction.Transaction{Date: date, Description: description, Value: decimal.RequireFromString(value), DocType: transaction.DocStatement}
}

func card(date time.Time, description, value string, category transaction.Category) transaction.Transaction {
	return transaction.Transaction{Date: date, Description: description, Value: decimal.RequireFromString(value), DocType: transaction.DocCardBill, Category: category}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals([]transaction.Transaction{
		stmt(at(1, 0), "a", "100"),
		stmt(at(1, 0), "b", "-30.50"),
		stmt(at(2, 0), "c", "0"),
	})

	assert.True(t, dec("100").Equal(totals.Inflow))
	assert.True(t, dec("-30.50").Equal(totals.Outflow))
	assert.True(t, dec("69.50").Equal(totals.Balance))
}

func TestScore(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name   string
		values []string
		want   int
	}{
		{"all zero", nil, 0},
		{"zero values only", []string{"0"}, 0},
		{"no outflow", []string{"100"}, 1000},
		{"balanced", []string{"100", "-100"}, 749},
		{"only outflow", []string{"-100"}, 500},
		{"heavy inflow", []string{"10000", "-1"}, 999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var txs []transaction.Transaction
			for _, v := range tt.values {
				txs = append(txs, stmt(at(1, 0), "x", v))
			}
			assert.Equal(t, tt.want, Score(txs, th))
		})
	}
}

func TestScore_Bounded(t *testing.T) {
	th := DefaultThresholds()
	gofakeit.Seed(11)

	for i := 0; i < 100; i++ {
		var txs []transaction.Transaction
		for j := 0; j < gofakeit.Number(1, 20); j++ {
			v := decimal.NewFromFloat(gofakeit.Float64Range(-10000, 10000)).Round(2)
			txs = append(txs, transaction.Transaction{Date: at(1, 0), Value: v, DocType: transaction.DocStatement})
		}
		score := Score(txs, th)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 1000)
	}
}

func TestMonthlyRollup(t *testing.T) {
	rollup := MonthlyRollup([]transaction.Transaction{
		stmt(time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), "a", "50"),
		stmt(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), "b", "200"),
		stmt(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "c", "-80"),
		{Description: "undated", Value: dec("999")},
	})

	require.Len(t, rollup, 2)
	assert.Equal(t, "2024-03", rollup[0].Month)
	assert.True(t, dec("200").Equal(rollup[0].Inflow))
	assert.True(t, dec("-80").Equal(rollup[0].Outflow))
	assert.True(t, dec("120").Equal(rollup[0].Balance))
	assert.Equal(t, "2024-04", rollup[1].Month)
}

func TestTopN(t *testing.T) {
	txs := []transaction.Transaction{
		stmt(at(1, 0), "small out", "-10"),
		stmt(at(1, 0), "big out", "-500"),
		stmt(at(1, 0), "in", "1000"),
		stmt(at(1, 0), "mid out", "-50"),
	}

	top := TopN(txs, transaction.FlowOutflow, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "big out", top[0].Description)
	assert.Equal(t, "mid out", top[1].Description)

	assert.Len(t, TopN(txs, transaction.FlowInflow, 10), 1)
}

func TestDetectGambling(t *testing.T) {
	c := categorization.NewDefaultClassifier()

	flags := DetectGambling([]transaction.Transaction{
		stmt(at(1, 0), "PIX BET365", "-200"),
		stmt(at(2, 0), "Betano premio", "350"),
		stmt(at(3, 0), "Mercado Pago *BET365", "-50"),
		stmt(at(4, 0), "Padaria", "-5"),
	}, c)

	require.Len(t, flags, 2)
	assert.Equal(t, GamblingBet, flags[0].Kind)
	assert.Equal(t, GamblingPayout, flags[1].Kind)
	assert.NotEmpty(t, flags[0].Alert)
}

func TestDetectAnomalies_PassThrough(t *testing.T) {
	th := DefaultThresholds()

	t.Run("fires when most of the inflow leaves the same day", func(t *testing.T) {
		anomalies := DetectAnomalies([]transaction.Transaction{
			stmt(at(10, 0), "pix recebido", "2000"),
			stmt(at(10, 0), "pix enviado", "-1800"),
		}, th, "BRL")

		require.Len(t, anomalies, 1)
		assert.Equal(t, AnomalyPassThrough, anomalies[0].Kind)
		assert.True(t, dec("2000").Equal(anomalies[0].Amount))
	})

	t.Run("quiet when most of the inflow stays", func(t *testing.T) {
		anomalies := DetectAnomalies([]transaction.Transaction{
			stmt(at(10, 0), "pix recebido", "2000"),
			stmt(at(10, 0), "pix enviado", "-500"),
		}, th, "BRL")

		assert.Empty(t, anomalies)
	})

	t.Run("card bills are ignored", func(t *testing.T) {
		anomalies := DetectAnomalies([]transaction.Transaction{
			card(at(10, 0), "credito", "2000", transaction.CategoryOther),
			card(at(10, 0), "loja", "-1900", transaction.CategoryApparel),
		}, th, "BRL")

		assert.Empty(t, anomalies)
	})
}

func TestDetectAnomalies_Structuring(t *testing.T) {
	th := DefaultThresholds()

	var txs []transaction.Transaction
	for i := 0; i < 5; i++ {
		txs = append(txs, stmt(at(12, 0), "pix enviado", "-400"))
	}
	txs = append(txs, stmt(at(12, 0), "transferencia grande", "-5000"))

	anomalies := DetectAnomalies(txs, th, "BRL")
	require.Len(t, anomalies, 1)
	assert.Equal(t, AnomalyStructuring, anomalies[0].Kind)
	assert.True(t, dec("2000").Equal(anomalies[0].Amount))

	assert.Empty(t, DetectAnomalies(txs[:4], th, "BRL"))
}

func TestDetectAnomalies_OffHours(t *testing.T) {
	th := DefaultThresholds()

	anomalies := DetectAnomalies([]transaction.Transaction{
		stmt(time.Date(2024, 3, 1, 3, 15, 0, 0, time.UTC), "ted madrugada", "-800"),
		stmt(time.Date(2024, 3, 2, 6, 0, 0, 0, time.UTC), "ted manha", "-800"),
		stmt(time.Date(2024, 3, 3, 2, 0, 0, 0, time.UTC), "pequena", "-100"),
		stmt(at(4, 0), "sem horario", "-900"),
	}, th, "BRL")

	require.Len(t, anomalies, 1)
	assert.Equal(t, AnomalyOffHours, anomalies[0].Kind)
	require.NotNil(t, anomalies[0].Transaction)
	assert.Equal(t, "ted madrugada", anomalies[0].Transaction.Description)
}

func indicators(risks []RiskIndicator) map[string]RiskIndicator {
	out := make(map[string]RiskIndicator)
	for _, r := range risks {
		out[r.Key] = r
	}
	return out
}

func TestAnalyzeRisk_Statement(t *testing.T) {
	th := DefaultThresholds()

	t.Run("heavy overdraft and overspending", func(t *testing.T) {
		risks := indicators(AnalyzeRisk([]transaction.Transaction{
			stmt(at(1, 0), "salario", "1000"),
			stmt(at(2, 0), "aluguel", "-2500"),
		}, "", th, "BRL"))

		assert.Equal(t, SeverityHigh, risks[RiskDebtDependency].Severity)
		assert.Equal(t, SeverityHigh, risks[RiskExpenseRatio].Severity)
		assert.Contains(t, risks[RiskNegativeBalance].Message, "1 days")
	})

	t.Run("moderate overdraft and low margin", func(t *testing.T) {
		txs := []transaction.Transaction{stmt(at(1, 0), "salario", "1000")}
		txs = append(txs, stmt(at(2, 0), "conta", "-1050"))
		txs = append(txs, stmt(at(3, 0), "conta", "-10"))
		txs = append(txs, stmt(at(4, 0), "conta", "-10"))
		txs = append(txs, stmt(at(5, 0), "deposito", "100"))

		risks := indicators(AnalyzeRisk(txs, "", th, "BRL"))
		assert.Equal(t, SeverityModerate, risks[RiskDebtDependency].Severity)
		assert.Equal(t, SeverityModerate, risks[RiskExpenseRatio].Severity)
	})

	t.Run("no income", func(t *testing.T) {
		risks := indicators(AnalyzeRisk([]transaction.Transaction{stmt(at(1, 0), "x", "-1")}, "", th, "BRL"))
		assert.Contains(t, risks, RiskIncomeMissing)
	})

	t.Run("healthy", func(t *testing.T) {
		risks := indicators(AnalyzeRisk([]transaction.Transaction{
			stmt(at(1, 0), "salario", "5000"),
			stmt(at(2, 0), "mercado", "-1000"),
		}, "", th, "BRL"))
		assert.Equal(t, SeverityInfo, risks[RiskNegativeBalance].Severity)
		assert.NotContains(t, risks, RiskDebtDependency)
		assert.NotContains(t, risks, RiskExpenseRatio)
	})
}

func TestAnalyzeRisk_Card(t *testing.T) {
	th := DefaultThresholds()

	var txs []transaction.Transaction
	for i := 1; i <= 16; i++ {
		txs = append(txs, card(at(i, 0), "ifood", "-30", transaction.CategoryFood))
	}
	txs = append(txs, card(at(20, 0), "notebook", "-400", transaction.CategoryTechnology))

	text := "Limite total: R$ 1.000,00\nPagamento mínimo ou parcial"
	risks := indicators(AnalyzeRisk(txs, text, th, "BRL"))

	assert.Equal(t, SeverityHigh, risks[RiskCardUtilization].Severity)
	assert.Equal(t, SeverityHigh, risks[RiskImpulseSpending].Severity)
	assert.Contains(t, risks, RiskMinimumPayment)

	risks = indicators(AnalyzeRisk(txs[:8], "", th, "BRL"))
	assert.Contains(t, risks, RiskCardLimitUnknown)
	assert.Equal(t, SeverityModerate, risks[RiskImpulseSpending].Severity)
	assert.NotContains(t, risks, RiskMinimumPayment)
}

func TestCardLimit(t *testing.T) {
	v, ok := CardLimit("LIMITE TOTAL: R$10.500,00")
	require.True(t, ok)
	assert.True(t, dec("10500").Equal(v))

	_, ok = CardLimit("nothing here")
	assert.False(t, ok)
}

func TestSummaries(t *testing.T) {
	p := categorization.Partitioned{
		StatementInflows: []transaction.Transaction{
			{Value: dec("3000"), Category: transaction.CategoryPrimaryIncome, OperationTag: normalizer.OpOther},
			{Value: dec("1000"), Category: transaction.CategoryFeesAndInterest, OperationTag: normalizer.OpPIX},
		},
		StatementOutflows: []transaction.Transaction{
			{Value: dec("-500"), Category: transaction.CategoryFood, OperationTag: normalizer.OpPIX},
			{Value: dec("-1500"), Category: transaction.CategoryEssentialServices},
		},
		CardPurchases: []transaction.Transaction{
			{Value: dec("-300"), Category: transaction.CategoryFood},
			{Value: dec("-100"), Category: transaction.CategoryLeisure},
		},
		CardCredits: []transaction.Transaction{
			{Value: dec("400"), Category: transaction.CategoryBillPayment},
		},
	}

	s := SummarizeStatement(p)
	assert.True(t, dec("4000").Equal(s.TotalInflow))
	assert.True(t, dec("-2000").Equal(s.TotalOutflow))
	require.Len(t, s.Rows, 4)
	for _, r := range s.Rows {
		if r.Category == transaction.CategoryPrimaryIncome {
			assert.True(t, dec("75").Equal(r.InflowShare))
		}
		if r.Category == transaction.CategoryEssentialServices {
			assert.True(t, dec("75").Equal(r.OutflowShare))
		}
	}

	text := "Valor da fatura: R$ 400,00\nVencimento: 10/04/2024\nLimite total: R$ 5.000,00\nDisponível R$ 4.600,00"
	b := SummarizeBill(p, text, 2024)
	require.NotNil(t, b.BillTotal)
	assert.True(t, dec("400").Equal(*b.BillTotal))
	require.NotNil(t, b.DueDate)
	assert.Equal(t, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), *b.DueDate)
	require.NotNil(t, b.AvailableLimit)
	assert.True(t, dec("4600").Equal(*b.AvailableLimit))
	assert.Nil(t, b.Installment)
	assert.True(t, dec("-400").Equal(b.Purchases))
	require.Len(t, b.ByCategory, 2)
	assert.True(t, dec("75").Equal(b.ByCategory[0].Share))

	g := SummarizeGeneral(p)
	assert.True(t, dec("2000").Equal(g.StatementBalance))
	assert.True(t, dec("-2400").Equal(g.TotalOutflow))
	assert.True(t, dec("1600").Equal(g.NetBalance))
	require.NotNil(t, g.TotalOutflowPct)
	assert.True(t, dec("60").Equal(*g.TotalOutflowPct))
	assert.True(t, dec("500").Equal(g.PixNet))

	empty := SummarizeGeneral(categorization.Partitioned{})
	assert.Nil(t, empty.StatementOutflowPct)
}

func TestAnalyzer_Analyze(t *testing.T) {
	a := NewAnalyzer(categorization.NewDefaultClassifier(), Options{Thresholds: DefaultThresholds()}, nil)

	t.Run("empty batch", func(t *testing.T) {
		r, err := a.Analyze(context.Background(), nil, "")
		require.ErrorIs(t, err, ErrNothingToAnalyze)
		require.NotNil(t, r)
		assert.True(t, r.Empty)
	})

	t.Run("full report", func(t *testing.T) {
		txs := []transaction.Transaction{
			stmt(at(10, 0), "Pix recebido de FULANO", "2000"),
			stmt(at(10, 0), "PIX BET365", "-1800"),
			card(at(11, 0), "IFOOD *CALDO", "-102.99", ""),
			card(at(12, 0), "ESTORNO LOJA", "50", ""),
			{Date: at(13, 0), Description: "holerite", Value: dec("4000"), DocType: transaction.DocPayslip},
		}

		r, err := a.Analyze(context.Background(), txs, "Limite total: R$ 1.000,00")
		require.NoError(t, err)
		assert.False(t, r.Empty)

		assert.Len(t, r.Records, 5)
		assert.Len(t, r.Partitions.All(), 4)
		assert.Equal(t, 763, r.Score)
		assert.Len(t, r.Gambling, 1)
		require.Len(t, r.Anomalies, 1)
		assert.Equal(t, AnomalyPassThrough, r.Anomalies[0].Kind)
		require.Len(t, r.Monthly, 1)
		assert.Equal(t, transaction.CategoryChargeback, r.Partitions.CardCredits[0].Category)
		assert.Equal(t, transaction.CategoryFood, r.Partitions.CardPurchases[0].Category)
		assert.NotEmpty(t, r.Risk)
		require.NotEmpty(t, r.TopOutflows)
		assert.Equal(t, "PIX BET365", r.TopOutflows[0].Description)
	})
}

func TestAnalyzer_AnalyzeUnknownDocumentType(t *testing.T) {
	a := NewAnalyzer(categorization.NewDefaultClassifier(), Options{Thresholds: DefaultThresholds()}, nil)

	bet := transaction.Transaction{
		Date:        time.Date(2024, 3, 12, 2, 30, 0, 0, time.UTC),
		Description: "BET365 deposito",
		Value:       dec("-900"),
		DocType:     transaction.DocUnknown,
	}

	r, err := a.Analyze(context.Background(), []transaction.Transaction{bet}, "")
	require.NoError(t, err)

	require.Len(t, r.Records, 1)
	assert.Empty(t, r.Partitions.All())
	assert.Equal(t, transaction.CategoryGambling, r.Records[0].Category)
	assert.True(t, dec("-900").Equal(r.Totals.Outflow))
	require.Len(t, r.Gambling, 1)
	assert.Equal(t, GamblingBet, r.Gambling[0].Kind)
	require.Len(t, r.Anomalies, 1)
	assert.Equal(t, AnomalyOffHours, r.Anomalies[0].Kind)
	require.Len(t, r.TopOutflows, 1)
	require.Len(t, r.Monthly, 1)
}
