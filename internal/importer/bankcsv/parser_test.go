package bankcsv_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/encoding"
	"github.com/MrJamesThe3rd/peraccount/internal/importer/bankcsv"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func amount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestParser_OwnExport(t *testing.T) {
	csv := `date,type,category,amount,memo
2024-03-01,income,월급,3000000,
2024-03-10,expense,식비,500000,"점심, 저녁"
2024-03-25,expense,저축,200000,적금
`

	res, err := bankcsv.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Drafts, 3)
	assert.Equal(t, "peraccount", res.Format)
	assert.Equal(t, encoding.UTF8, res.Charset)

	assert.Equal(t, ledger.TypeIncome, res.Drafts[0].Type)
	assert.Equal(t, "월급", res.Drafts[0].Category)
	amount(t, "3000000", res.Drafts[0].Amount)
	assert.Empty(t, res.Drafts[0].Memo)

	assert.Equal(t, date(2024, 3, 10), res.Drafts[1].Date)
	assert.Equal(t, "점심, 저녁", res.Drafts[1].Memo)
	assert.Equal(t, ledger.TypeExpense, res.Drafts[2].Type)
}

func TestParser_OwnExportUnknownType(t *testing.T) {
	csv := "date,type,category,amount,memo\n2024-03-01,refund,기타,10,\n"

	_, err := bankcsv.NewParser().Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "row 2")
}

func TestParser_KoreanBank(t *testing.T) {
	csv := `조회기간,2024.03.01 ~ 2024.03.31
계좌번호,110-123-456789

거래일시,적요,출금액,입금액,잔액
2024.03.01 09:12:45,급여,,"3,000,000","3,120,000"
2024.03.02 12:30:00,스타벅스,"5,500원",,"3,114,500"
합계,,"5,500","3,000,000",
`

	res, err := bankcsv.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Drafts, 2)
	assert.Equal(t, "korean bank", res.Format)
	assert.Equal(t, 1, res.Skipped)

	assert.Equal(t, date(2024, 3, 1), res.Drafts[0].Date)
	assert.Equal(t, ledger.TypeIncome, res.Drafts[0].Type)
	assert.Equal(t, bankcsv.DefaultCategory, res.Drafts[0].Category)
	assert.Equal(t, "급여", res.Drafts[0].Memo)
	amount(t, "3000000", res.Drafts[0].Amount)

	assert.Equal(t, ledger.TypeExpense, res.Drafts[1].Type)
	amount(t, "5500", res.Drafts[1].Amount)
}

func TestParser_KoreanBankEUCKR(t *testing.T) {
	utf8CSV := "거래일자,적요,출금액,입금액\n2024-03-05,편의점,\"1,200\",\n"

	eucKR, err := korean.EUCKR.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	res, err := bankcsv.NewParser().Parse(bytes.NewReader(eucKR))
	require.NoError(t, err)
	require.Len(t, res.Drafts, 1)

	assert.Equal(t, encoding.EUCKR, res.Charset)
	assert.Equal(t, "편의점", res.Drafts[0].Memo)
	amount(t, "1200", res.Drafts[0].Amount)
}

func TestParser_Conta(t *testing.T) {
	csv := `Consultar saldos e movimentos à ordem - 31-01-2026;"=""0000"""
Nome cliente;JOHN DOE

Data mov.;Data-valor;Descrição;Montante;Saldo contabilístico após movimento
30-01-2026;30-01-2026;INSTITUTO GESTAO FINA;-588,74;48.825,46
09-01-2026;09-01-2026;TFI Wise;8.608,52;52.532,78
`

	res, err := bankcsv.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Drafts, 2)
	assert.Equal(t, "signed", res.Format)

	assert.Equal(t, date(2026, 1, 30), res.Drafts[0].Date)
	assert.Equal(t, "INSTITUTO GESTAO FINA", res.Drafts[0].Memo)
	amount(t, "588.74", res.Drafts[0].Amount)
	assert.Equal(t, ledger.TypeExpense, res.Drafts[0].Type)

	amount(t, "8608.52", res.Drafts[1].Amount)
	assert.Equal(t, ledger.TypeIncome, res.Drafts[1].Type)
}

func TestParser_CardSplitColumns(t *testing.T) {
	csv := `Data ;Data valor ;Descrição ;Débito ;Crédito ;
16-12-2025 ;14-12-2025 ;PA GONDOMAR         GONDOMAR ;64,00 ; ;
17-12-2025 ;14-12-2025 ;REFUND AMAZON ;  ;25,00 ;
 ; ; ; ;Página 1/2 ;
`

	res, err := bankcsv.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Drafts, 2)
	assert.Equal(t, "split", res.Format)

	assert.Equal(t, "PA GONDOMAR         GONDOMAR", res.Drafts[0].Memo)
	amount(t, "64", res.Drafts[0].Amount)
	assert.Equal(t, ledger.TypeExpense, res.Drafts[0].Type)

	amount(t, "25", res.Drafts[1].Amount)
	assert.Equal(t, ledger.TypeIncome, res.Drafts[1].Type)
}

func TestParser_Latin1Encoding(t *testing.T) {
	utf8CSV := "Data mov.;Descrição;Montante\n30-01-2026;CAFÉ CENTRAL;-10,00\n"

	latin1Bytes, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	res, err := bankcsv.NewParser().Parse(bytes.NewReader(latin1Bytes))
	require.NoError(t, err)
	require.Len(t, res.Drafts, 1)

	assert.Equal(t, "CAFÉ CENTRAL", res.Drafts[0].Memo)
}

func TestParser_DifferentColumnOrder(t *testing.T) {
	csv := `Random;MetaData
Montante;Descrição;Data mov.;Ignored
-10,00;TEST_ORDER;30-01-2026;XXX
`

	res, err := bankcsv.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Drafts, 1)

	assert.Equal(t, "TEST_ORDER", res.Drafts[0].Memo)
	amount(t, "10", res.Drafts[0].Amount)
}

func TestParser_EmptyFile(t *testing.T) {
	_, err := bankcsv.NewParser().Parse(strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestParser_HeaderOnly(t *testing.T) {
	res, err := bankcsv.NewParser().Parse(strings.NewReader("거래일자,적요,출금액,입금액"))
	require.NoError(t, err)
	assert.Empty(t, res.Drafts)
}

func TestParser_MissingDescription(t *testing.T) {
	csv := `Data mov.;Descrição;Montante
30-01-2026;;-10,00
`

	_, err := bankcsv.NewParser().Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}

func TestParser_BadAmount(t *testing.T) {
	csv := "거래일자,적요,출금액,입금액\n2024-03-05,편의점,abc,\n"

	_, err := bankcsv.NewParser().Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "row 2")
}

func TestParser_Amounts(t *testing.T) {
	tests := []struct {
		cell string
		want string
		typ  ledger.Type
	}{
		{cell: "-1.234.567,89", want: "1234567.89", typ: ledger.TypeExpense},
		{cell: "1,234,567", want: "1234567", typ: ledger.TypeIncome},
		{cell: "₩12,000", want: "12000", typ: ledger.TypeIncome},
		{cell: "1234.56", want: "1234.56", typ: ledger.TypeIncome},
		{cell: "-1,234.56", want: "1234.56", typ: ledger.TypeExpense},
		{cell: "+700", want: "700", typ: ledger.TypeIncome},
		{cell: "10,5", want: "10.5", typ: ledger.TypeIncome},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			csv := "date;description;amount\n2024-03-01;x;" + tt.cell + "\n"

			res, err := bankcsv.NewParser().Parse(strings.NewReader(csv))
			require.NoError(t, err)
			require.Len(t, res.Drafts, 1)
			amount(t, tt.want, res.Drafts[0].Amount)
			assert.Equal(t, tt.typ, res.Drafts[0].Type)
		})
	}
}

func TestParser_RejectsBinaryStatements(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "PDF", input: []byte("%PDF-1.7\n%âãÏÓ\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")},
		{name: "Zip", input: append([]byte("PK\x03\x04\x14\x00\x06\x00"), bytes.Repeat([]byte{0}, 64)...)},
		{name: "PNG", input: append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bankcsv.NewParser().Parse(bytes.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
			assert.Contains(t, err.Error(), "export the statement as CSV")
		})
	}
}
