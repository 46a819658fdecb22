package sniffer

import (
	"strings"

	"github.com/FACorreiaa/statement-analyzer/internal/domain/transaction"
)

var docTypeKeywords = []struct {
	docType  transaction.DocType
	keywords []string
}{
	{transaction.DocStatement, []string{"extrato", "movimentacao", "historico", "comprovante"}},
	{transaction.DocCardBill, []string{"fatura", "cartao", "credito"}},
	{transaction.DocPayslip, []string{"contracheque", "holerite", "salario", "renda"}},
}

var bankKeywords = []struct {
	bank     transaction.Bank
	keywords []string
}{
	{transaction.BankC6, []string{"c6"}},
	{transaction.BankNubank, []string{"nubank", "nu_pagamentos"}},
	{transaction.BankCaixa, []string{"caixa"}},
	{transaction.BankInter, []string{"inter"}},
	{transaction.BankPicPay, []string{"picpay"}},
	{transaction.BankBradesco, []string{"bradesco"}},
	{transaction.BankItau, []string{"itau"}},
	{transaction.BankSantander, []string{"santander"}},
}

// Body-text signals. Filename tokens like "inter" are too short to trust inside free text.
var bankContentKeywords = []struct {
	bank     transaction.Bank
	keywords []string
}{
	{transaction.BankC6, []string{"c6 bank", "banco c6"}},
	{transaction.BankNubank, []string{"nubank", "nu pagamentos"}},
	{transaction.BankCaixa, []string{"caixa econômica", "caixa economica"}},
	{transaction.BankInter, []string{"banco inter"}},
	{transaction.BankPicPay, []string{"picpay"}},
	{transaction.BankBradesco, []string{"bradesco"}},
	{transaction.BankItau, []string{"itaú unibanco", "itau unibanco", "banco itaú", "banco itau"}},
	{transaction.BankSantander, []string{"santander"}},
}

var (
	payslipSignals   = []string{"contracheque", "holerite", "salário líquido", "salario liquido", "vencimentos e descontos", "demonstrativo de pagamento"}
	cardBillSignals  = []string{"fatura", "vencimento da fatura", "total da fatura", "valor da fatura", "limite total", "pagamento mínimo"}
	statementSignals = []string{"extrato", "saldo anterior", "saldo do dia", "saldo em conta"}
)

// DetectDocumentType guesses the document type from filename keywords. Statement
// keywords take priority over card-bill ones, which take priority over payslip ones.
func DetectDocumentType(filename string) transaction.DocType {
	lower := strings.ToLower(filename)
	for _, entry := range docTypeKeywords {
		if containsAny(lower, entry.keywords) {
			return entry.docType
		}
	}
	return transaction.DocUnknown
}

// DetectBank matches the filename against known bank tokens, first match wins.
func DetectBank(filename string) transaction.Bank {
	lower := strings.ToLower(filename)
	for _, entry := range bankKeywords {
		if containsAny(lower, entry.keywords) {
			return entry.bank
		}
	}
	return transaction.BankUnknown
}

// ResolveDocumentType refines the filename guess with body content. Payslip terminology
// always wins; card-bill and statement terminology only resolve an unknown guess.
func ResolveDocumentType(text string, headers []string, format transaction.SourceFormat, filename string) transaction.DocType {
	guess := DetectDocumentType(filename)

	body := strings.ToLower(text + " " + strings.Join(headers, " "))
	if containsAny(body, payslipSignals) {
		return transaction.DocPayslip
	}
	if guess != transaction.DocUnknown {
		return guess
	}
	if containsAny(body, cardBillSignals) {
		return transaction.DocCardBill
	}
	if containsAny(body, statementSignals) {
		return transaction.DocStatement
	}
	// exported tables with a running balance column are account statements
	if format.IsTabular() && containsAny(strings.ToLower(strings.Join(headers, " ")), []string{"saldo"}) {
		return transaction.DocStatement
	}
	return transaction.DocUnknown
}

// ResolveBank prefers the filename and falls back to bank names printed in the body.
func ResolveBank(filename, text string) transaction.Bank {
	if bank := DetectBank(filename); bank != transaction.BankUnknown {
		return bank
	}
	lower := strings.ToLower(text)
	for _, entry := range bankContentKeywords {
		if containsAny(lower, entry.keywords) {
			return entry.bank
		}
	}
	return transaction.BankUnknown
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
