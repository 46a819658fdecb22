package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/categorization"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/extractor"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/parser"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/insights"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
	"github.com/FACorreiaa/statement-analyzer/pkg/metrics"
)

type stubOCR struct {
	text string
	err  error
}

func (o stubOCR) Recognize(context.Context, string, []byte, transaction.SourceFormat) (string, error) {
	return o.text, o.err
}

func newTestService(ocr extractor.OCR, workers int) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	analyzer := insights.NewAnalyzer(categorization.NewDefaultClassifier(), insights.Options{
		Thresholds:  insights.DefaultThresholds(),
		TopN:        5,
		Currency:    "BRL",
		AssumedYear: 2024,
	}, logger)
	return NewService(
		extractor.New(logger, ocr),
		parser.NewDefaultRegistry(logger),
		analyzer,
		Options{Currency: "BRL", AssumedYear: 2024, Workers: workers},
		logger,
	)
}

const (
	nubankCSV = "Data;Descrição;Valor\n" +
		"12/03/2024;Pix recebido de FULANO;20.000,00\n" +
		"13/03/2024;Compra IFOOD;-45,90\n"

	nubankCSVOverlap = "Data;Descrição;Valor\n" +
		"12/03/2024;Pix recebido de FULANO;20.000,00\n" +
		"13/03/2024;Compra IFOOD;-45,90\n" +
		"14/03/2024;Pagamento de boleto ENEL;-210,00\n"

	payslipText = "Holerite\nEmpresa: ACME LTDA\nCargo: Analista\nSalário Líquido: R$ 3.500,00\n"
)

func testDocuments() []Document {
	return []Document{
		NewDocument("nubank_extrato.csv", []byte(nubankCSV)),
		NewDocument("scan.png", []byte{0x89, 0x50, 0x4e, 0x47}),
		NewDocument("nubank_extrato_abril.csv", []byte(nubankCSVOverlap)),
		NewDocument("holerite.txt", []byte(payslipText)),
		NewDocument("notas.txt", []byte("nada para ver aqui\n")),
	}
}

func TestProcessDocument_SpecificTableParser(t *testing.T) {
	svc := newTestService(nil, 1)

	res := svc.ProcessDocument(context.Background(), NewDocument("nubank_extrato.csv", []byte(nubankCSV)))

	require.NoError(t, res.Err)
	assert.Equal(t, transaction.BankNubank, res.Bank)
	assert.Equal(t, transaction.DocStatement, res.DocType)
	assert.Equal(t, parser.StageSpecific, res.Stage)
	assert.Equal(t, "nubank-statement-table", res.Parser)
	require.Len(t, res.Transactions, 2)
	assert.True(t, res.Transactions[0].Value.Equal(decimal.NewFromInt(20000)))
	assert.True(t, res.Transactions[1].Value.Equal(decimal.RequireFromString("-45.90")))
}

func TestProcessDocument_ExcelDateCells(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Data", "Descrição", "Valor"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), "Mercado", -50.5}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC), "Padaria", -10}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	svc := newTestService(nil, 1)
	res := svc.ProcessDocument(context.Background(), NewDocument("extrato_mercado.xlsx", buf.Bytes()))

	require.NoError(t, res.Err)
	assert.Empty(t, res.Dropped)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), res.Transactions[0].Date)
	assert.Equal(t, time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC), res.Transactions[1].Date)
	assert.True(t, res.Transactions[0].Value.Equal(decimal.RequireFromString("-50.5")))
}

func TestProcessDocument_Failures(t *testing.T) {
	svc := newTestService(nil, 1)

	tests := []struct {
		name    string
		doc     Document
		wantErr error
	}{
		{"image without ocr", NewDocument("scan.png", []byte{0x89, 0x50}), ErrNoContentExtracted},
		{"empty csv", NewDocument("vazio.csv", nil), ErrNoContentExtracted},
		{"text without records", NewDocument("notas.txt", []byte("nada para ver aqui\n")), ErrNoTransactionsFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.ProcessDocument(context.Background(), tt.doc)
			assert.False(t, res.OK())
			assert.True(t, errors.Is(res.Err, tt.wantErr), "got %v", res.Err)
			assert.NotEmpty(t, res.Error)
			assert.Empty(t, res.Transactions)
		})
	}
}

func TestProcessDocument_OCRFallback(t *testing.T) {
	ocr := stubOCR{text: "12/03 - Pix recebido de FULANO - R$ 20.000,00 Saldo R$ 5.851,34\n"}
	svc := newTestService(ocr, 1)

	res := svc.ProcessDocument(context.Background(), NewDocument("nubank_extrato.png", []byte{0x89, 0x50}))

	require.NoError(t, res.Err)
	assert.True(t, res.UsedOCR)
	assert.Equal(t, parser.StageSpecific, res.Stage)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "Pix recebido de FULANO", res.Transactions[0].Description)
}

func TestProcessDocument_Payslip(t *testing.T) {
	svc := newTestService(nil, 1)

	res := svc.ProcessDocument(context.Background(), NewDocument("holerite.txt", []byte(payslipText)))

	require.NoError(t, res.Err)
	assert.Equal(t, transaction.DocPayslip, res.DocType)
	require.NotNil(t, res.Payslip)
	require.NotNil(t, res.Payslip.Net)
	assert.True(t, res.Payslip.Net.Equal(decimal.NewFromInt(3500)))
	require.NotNil(t, res.Payslip.Employer)
	assert.Equal(t, "ACME LTDA", *res.Payslip.Employer)
	assert.Empty(t, res.Transactions)
}

func TestRunBatch_IsolatesFailuresAndDeduplicates(t *testing.T) {
	svc := newTestService(nil, 1)

	batch := svc.RunBatch(context.Background(), testDocuments())

	require.Len(t, batch.Documents, 5)
	assert.Len(t, batch.Failed(), 2)
	assert.Equal(t, "scan.png", batch.Failed()[0].Name)
	assert.Equal(t, "notas.txt", batch.Failed()[1].Name)

	assert.Len(t, batch.Transactions, 3)
	assert.Equal(t, 2, batch.Duplicates)
	assert.Equal(t, 2, batch.Documents[0].Added)
	assert.Equal(t, 1, batch.Documents[2].Added)
	assert.Equal(t, "Pagamento de boleto ENEL", batch.Transactions[2].Description)

	require.NotNil(t, batch.Payslip.Net)
	assert.Contains(t, batch.RawText, "Holerite")
}

func TestRunBatch_ParallelMatchesSequential(t *testing.T) {
	ctx := context.Background()
	seq := newTestService(nil, 1).RunBatch(ctx, testDocuments())
	par := newTestService(nil, 4).RunBatch(ctx, testDocuments())

	require.Len(t, par.Transactions, len(seq.Transactions))
	for i := range seq.Transactions {
		assert.Equal(t, seq.Transactions[i].Key(), par.Transactions[i].Key())
	}
	assert.Equal(t, seq.Duplicates, par.Duplicates)
	assert.Equal(t, seq.RawText, par.RawText)
	for i := range seq.Documents {
		assert.Equal(t, seq.Documents[i].Name, par.Documents[i].Name)
		assert.Equal(t, seq.Documents[i].OK(), par.Documents[i].OK())
	}
}

func TestAnalyze(t *testing.T) {
	svc := newTestService(nil, 1)
	ctx := context.Background()

	t.Run("empty batch", func(t *testing.T) {
		report, err := svc.Analyze(ctx, BatchResult{})
		require.ErrorIs(t, err, insights.ErrNothingToAnalyze)
		require.NotNil(t, report)
		assert.True(t, report.Empty)
	})

	t.Run("consolidated batch", func(t *testing.T) {
		batch, report, err := svc.Run(ctx, testDocuments())
		require.NoError(t, err)
		require.NotNil(t, report)
		assert.False(t, report.Empty)
		assert.Len(t, batch.Transactions, 3)
		assert.True(t, report.Totals.Inflow.Equal(decimal.NewFromInt(20000)))
		assert.True(t, report.Totals.Outflow.Equal(decimal.RequireFromString("-255.90")))
	})
}

func TestRunBatch_Metrics(t *testing.T) {
	m := metrics.NewPipeline()
	svc := newTestService(nil, 1).WithMetrics(m)

	svc.RunBatch(context.Background(), testDocuments())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsProcessed.WithLabelValues(string(transaction.BankNubank), string(transaction.DocStatement))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsFailed.WithLabelValues("no_content")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsFailed.WithLabelValues("no_transactions")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.TransactionsExtracted.WithLabelValues(string(parser.StageSpecific))))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DuplicatesDropped))
}
