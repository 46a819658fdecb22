package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/extractor"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/import/normalizer"
	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRegistry_NubankStatementText(t *testing.T) {
	r := NewDefaultRegistry(nil)

	res := r.Extract(Input{
		Text:        "Extrato\n12/03 - Pix recebido de FULANO - R$ 20.000,00 Saldo R$ 5.851,34\n13/03 - Compra no débito - R$ 45,90\n",
		Bank:        transaction.BankNubank,
		DocType:     transaction.DocStatement,
		Format:      transaction.FormatPDF,
		AssumedYear: 2024,
		Source:      "nubank.pdf",
	})

	require.Equal(t, StageSpecific, res.Stage)
	require.Len(t, res.Transactions, 2)

	pix := res.Transactions[0]
	assert.True(t, dec("20000").Equal(pix.Value))
	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), pix.Date)
	assert.Equal(t, "Pix recebido de FULANO", pix.Description)
	assert.Equal(t, normalizer.OpPIX, pix.OperationTag)
	assert.Equal(t, transaction.BankNubank, pix.Bank)
	assert.Equal(t, "BRL", pix.Currency)
	assert.Equal(t, "nubank.pdf", pix.Source)

	assert.True(t, dec("-45.90").Equal(res.Transactions[1].Value))
}

func TestRegistry_C6CardBillText(t *testing.T) {
	r := NewDefaultRegistry(nil)

	text := `Fatura C6 Black
Vencimento: 10/06/2024
Limite total: R$ 10.000,00
01 mai IFD IMPERIO DO CALDO L 102,99
03 mai ESTORNO LOJA X 50,00
Subtotal 152,99`

	res := r.Extract(Input{
		Text:        text,
		Bank:        transaction.BankC6,
		DocType:     transaction.DocCardBill,
		Format:      transaction.FormatPDF,
		AssumedYear: 2024,
	})

	require.Equal(t, StageSpecific, res.Stage)
	require.Len(t, res.Transactions, 2)

	purchase := res.Transactions[0]
	assert.Equal(t, "IFD IMPERIO DO CALDO L", purchase.Description)
	assert.True(t, dec("-102.99").Equal(purchase.Value))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), purchase.Date)
	assert.Equal(t, opCardDebit, purchase.OperationTag)

	refund := res.Transactions[1]
	assert.True(t, dec("50").Equal(refund.Value))
	assert.Equal(t, opCardCredit, refund.OperationTag)
}

func TestRegistry_NubankStatementSkipsBoilerplate(t *testing.T) {
	r := NewDefaultRegistry(nil)

	text := "12/03 - Saldo do dia - R$ 5.851,34\n" +
		"12/03 - Limite disponível - R$ 2.000,00\n" +
		"12/03 - Pix recebido de FULANO - R$ 150,00\n" +
		"13/03 - Total de saídas - R$ 45,90\n"

	res := r.Extract(Input{
		Text:        text,
		Bank:        transaction.BankNubank,
		DocType:     transaction.DocStatement,
		Format:      transaction.FormatPDF,
		AssumedYear: 2024,
	})

	require.Equal(t, StageSpecific, res.Stage)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "Pix recebido de FULANO", res.Transactions[0].Description)
	assert.True(t, dec("150").Equal(res.Transactions[0].Value))
}

func TestRegistry_C6PurchaseAmountAtLineEnd(t *testing.T) {
	r := NewDefaultRegistry(nil)

	res := r.Extract(Input{
		Text:        "05 mai UBER 99 TRIP 25,00\n10 mai LOJA CENTRO 02/10 150,00",
		Bank:        transaction.BankC6,
		DocType:     transaction.DocCardBill,
		Format:      transaction.FormatPDF,
		AssumedYear: 2024,
	})

	require.Equal(t, StageSpecific, res.Stage)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "UBER 99 TRIP", res.Transactions[0].Description)
	assert.True(t, dec("-25").Equal(res.Transactions[0].Value))
	assert.Equal(t, "LOJA CENTRO 02/10", res.Transactions[1].Description)
	assert.True(t, dec("-150").Equal(res.Transactions[1].Value))
}

func TestRegistry_C6TabularLineWins(t *testing.T) {
	r := NewDefaultRegistry(nil)

	res := r.Extract(Input{
		Text:        "05/05 Entrada PIX Maria Souza R$ 300,00",
		Bank:        transaction.BankC6,
		DocType:     transaction.DocCardBill,
		Format:      transaction.FormatImage,
		AssumedYear: 2024,
	})

	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "Entrada PIX", res.Transactions[0].OperationTag)
	assert.Equal(t, "Maria Souza", res.Transactions[0].Description)
	assert.True(t, dec("300").Equal(res.Transactions[0].Value))
}

func TestRegistry_BankTables(t *testing.T) {
	tests := []struct {
		name    string
		bank    transaction.Bank
		docType transaction.DocType
		table   extractor.Table
		want    []string
	}{
		{
			name:    "nubank statement keeps sign",
			bank:    transaction.BankNubank,
			docType: transaction.DocStatement,
			table: extractor.Table{
				Header: []string{"Data", "Valor", "Identificador", "Descrição"},
				Rows: [][]string{
					{"01/02/2024", "-10,50", "abc", "Padaria"},
					{"02/02/2024", "1.000,00", "def", "Salario"},
					{"", "5,00", "ghi", "sem data"},
				},
			},
			want: []string{"-10.50", "1000"},
		},
		{
			name:    "nubank bill is always outflow",
			bank:    transaction.BankNubank,
			docType: transaction.DocCardBill,
			table: extractor.Table{
				Header: []string{"Data da transação", "Estabelecimento", "Valor"},
				Rows:   [][]string{{"2024-02-01", "Mercado", "80,00"}},
			},
			want: []string{"-80"},
		},
		{
			name:    "caixa debit and credit columns",
			bank:    transaction.BankCaixa,
			docType: transaction.DocStatement,
			table: extractor.Table{
				Header: []string{"Data Mov.", "Histórico", "Débito", "Crédito", "Valor"},
				Rows: [][]string{
					{"01/02/2024", "Tarifa", "12,00", "", ""},
					{"02/02/2024", "Deposito", "", "300,00", ""},
					{"03/02/2024", "Ajuste", "", "", "-7,00"},
				},
			},
			want: []string{"-12", "300", "-7"},
		},
		{
			name:    "picpay type column",
			bank:    transaction.BankPicPay,
			docType: transaction.DocCardBill,
			table: extractor.Table{
				Header: []string{"Data", "Descrição", "Valor", "Tipo"},
				Rows: [][]string{
					{"01/02/2024", "Pix de Ana", "40,00", "Recebido"},
					{"02/02/2024", "Loja", "25,00", "Pago"},
				},
			},
			want: []string{"40", "-25"},
		},
		{
			name:    "inter bill",
			bank:    transaction.BankInter,
			docType: transaction.DocCardBill,
			table: extractor.Table{
				Header: []string{"Data", "Descrição", "Valor"},
				Rows:   [][]string{{"01/02/2024", "Farmacia", "R$ 19,90"}},
			},
			want: []string{"-19.90"},
		},
	}

	r := NewDefaultRegistry(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Extract(Input{
				Tables:  []extractor.Table{tt.table},
				Bank:    tt.bank,
				DocType: tt.docType,
				Format:  transaction.FormatCSV,
			})

			require.Equal(t, StageSpecific, res.Stage)
			require.Len(t, res.Transactions, len(tt.want))
			for i, want := range tt.want {
				assert.True(t, dec(want).Equal(res.Transactions[i].Value), "row %d: got %s", i, res.Transactions[i].Value)
			}
		})
	}
}

func TestRegistry_GenericTable(t *testing.T) {
	r := NewDefaultRegistry(nil)

	res := r.Extract(Input{
		Tables: []extractor.Table{{
			Header: []string{"DATA", "Historico", "Debito", "Credito"},
			Rows: [][]string{
				{"05/01/2024", "Aluguel", "1.500,00", ""},
				{"06/01/2024", "Salario", "", "4.000,00"},
				{"07/01/2024", "Linha vazia", "", ""},
			},
		}},
		Bank:    transaction.BankBradesco,
		DocType: transaction.DocStatement,
		Format:  transaction.FormatXLSX,
	})

	require.Equal(t, StageGeneric, res.Stage)
	require.Len(t, res.Transactions, 2)
	assert.True(t, dec("-1500").Equal(res.Transactions[0].Value))
	assert.Equal(t, "Aluguel", res.Transactions[0].Description)
	assert.True(t, dec("4000").Equal(res.Transactions[1].Value))
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "amount", res.Errors[0].Field)
}

func TestGenericTableParser_MapColumns(t *testing.T) {
	p := NewGenericTableParser(DefaultColumnAliases())

	tests := []struct {
		name    string
		headers []string
		want    ColumnMap
	}{
		{
			name:    "exact",
			headers: []string{"data", "descricao", "valor"},
			want:    ColumnMap{Date: 0, Description: 1, Amount: 2, Debit: -1, Credit: -1},
		},
		{
			name:    "dots underscores and case",
			headers: []string{"Data Mov.", "Valor", "Data_Da_Transacao"},
			want:    ColumnMap{Date: 0, Description: -1, Amount: 1, Debit: -1, Credit: -1},
		},
		{
			name:    "accent insensitive",
			headers: []string{"Data", "Descrição", "Débito", "Crédito"},
			want:    ColumnMap{Date: 0, Description: 1, Amount: -1, Debit: 2, Credit: 3},
		},
		{
			name:    "near miss",
			headers: []string{"data", "historco", "valor"},
			want:    ColumnMap{Date: 0, Description: 1, Amount: 2, Debit: -1, Credit: -1},
		},
		{
			name:    "short aliases are not fuzzy",
			headers: []string{"dta", "vlor"},
			want:    ColumnMap{Date: -1, Description: -1, Amount: -1, Debit: -1, Credit: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.MapColumns(tt.headers))
		})
	}
}

func TestRegistry_Fallback(t *testing.T) {
	r := NewDefaultRegistry(nil)

	text := `Banco Bradesco
15/01/2024 PIX RECEBIDO JOAO 1.250,00
16/01/2024 TARIFA PACOTE 35,90
texto sem valor 17/01/2024`

	res := r.Extract(Input{
		Text:    text,
		Bank:    transaction.BankBradesco,
		DocType: transaction.DocStatement,
		Format:  transaction.FormatPDF,
	})

	require.Equal(t, StageFallback, res.Stage)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "PIX RECEBIDO JOAO", res.Transactions[0].Description)
	assert.True(t, dec("1250").Equal(res.Transactions[0].Value))
	assert.True(t, dec("-35.90").Equal(res.Transactions[1].Value))
	assert.Equal(t, normalizer.OpFees, res.Transactions[1].OperationTag)
}

func TestRegistry_SpecificParserFallsToText(t *testing.T) {
	r := NewDefaultRegistry(nil)

	res := r.Extract(Input{
		Text:    "20/02/2024 compra mercado 30,00",
		Bank:    transaction.BankNubank,
		DocType: transaction.DocStatement,
		Format:  transaction.FormatPDF,
	})

	require.Equal(t, StageFallback, res.Stage)
	require.Len(t, res.Transactions, 1)
	assert.True(t, dec("-30").Equal(res.Transactions[0].Value))
}

func TestRegistry_NothingToParse(t *testing.T) {
	r := NewDefaultRegistry(nil)

	res := r.Extract(Input{Bank: transaction.BankUnknown, DocType: transaction.DocUnknown, Format: transaction.FormatText})

	assert.Equal(t, StageNone, res.Stage)
	assert.Empty(t, res.Transactions)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry(nil, nil)

	r.Register(transaction.BankSantander, transaction.DocStatement, Parser{
		Name: "santander-test",
		Parse: func(b *Builder, in Input) {
			for _, l := range lines(in.Text) {
				if v, ok := b.Amount(l.n, l.text); ok {
					b.Add(l.n, "01/01/2024", "fixed", v, "custom")
				}
			}
		},
	}, transaction.FormatText)

	_, ok := r.Lookup(Key{Bank: transaction.BankSantander, DocType: transaction.DocStatement, Format: transaction.FormatText})
	assert.True(t, ok)
	assert.Len(t, r.Keys(), 1)

	res := r.Extract(Input{
		Text:    "10,00\nnot a number\n",
		Bank:    transaction.BankSantander,
		DocType: transaction.DocStatement,
		Format:  transaction.FormatText,
	})

	require.Equal(t, StageSpecific, res.Stage)
	assert.Equal(t, "santander-test", res.Parser)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "custom", res.Transactions[0].OperationTag)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Line)
}
