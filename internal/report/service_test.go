package report_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/peraccount/internal/importer/bankcsv"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
	"github.com/MrJamesThe3rd/peraccount/internal/memstore"
	"github.com/MrJamesThe3rd/peraccount/internal/report"
	"github.com/MrJamesThe3rd/peraccount/internal/summary"
)

func seed(t *testing.T) (*report.Service, *ledger.Service) {
	t.Helper()

	ctx := context.Background()
	store := memstore.New()
	ledgerSvc := ledger.NewService(store)
	summarySvc := summary.NewService(ledgerSvc, store, summary.NewCategorySet("저축"))
	ledgerSvc.OnChange(summarySvc.Invalidate)

	for _, d := range []ledger.Draft{
		{Type: ledger.TypeIncome, Amount: decimal.NewFromInt(3_000_000), Category: "월급", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Type: ledger.TypeExpense, Amount: decimal.NewFromInt(500_000), Category: "식비", Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), Memo: "장보기, 외식"},
		{Type: ledger.TypeExpense, Amount: decimal.NewFromInt(200_000), Category: "저축", Date: time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)},
		{Type: ledger.TypeExpense, Amount: decimal.NewFromInt(1), Category: "기타", Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	} {
		_, err := ledgerSvc.AddTransaction(ctx, "u1", d)
		require.NoError(t, err)
	}

	return report.NewService(ledgerSvc, summarySvc), ledgerSvc
}

func TestService_Month(t *testing.T) {
	svc, _ := seed(t)

	r, err := svc.Month(context.Background(), "u1", 2024, time.March)
	require.NoError(t, err)
	require.Len(t, r.Transactions, 3)
	assert.True(t, decimal.NewFromInt(2_300_000).Equal(r.Summary.NetBalance))

	body := report.Body(r)
	assert.Contains(t, body, "2024년 3월")
	assert.Contains(t, body, "순수지: 2,300,000원")
	assert.Contains(t, body, "- 식비: 500,000원")
	assert.Contains(t, body, "* 2024-03-10 | 식비 | -500,000원 | 장보기, 외식")
	assert.Contains(t, body, "* 2024-03-01 | 월급 | +3,000,000원")
	assert.NotContains(t, body, "2024-04-01")
}

func TestWriteCSV_ReadBackByImporter(t *testing.T) {
	svc, _ := seed(t)

	r, err := svc.Month(context.Background(), "u1", 2024, time.March)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, r.Transactions))

	assert.Contains(t, buf.String(), "date,type,category,amount,memo\n2024-03-01,income,월급,3000000,\n")

	res, err := bankcsv.NewParser().Parse(&buf)
	require.NoError(t, err)
	require.Len(t, res.Drafts, 3)
	assert.Equal(t, "peraccount", res.Format)
	assert.Equal(t, "장보기, 외식", res.Drafts[1].Memo)
	assert.Equal(t, "저축", res.Drafts[2].Category)
}

func TestFormatWon(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0", want: "0원"},
		{in: "1234500", want: "1,234,500원"},
		{in: "-2300000", want: "-2,300,000원"},
		{in: "1000.5", want: "1,000.50원"},
		{in: "999.999", want: "1,000원"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, report.FormatWon(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "peraccount-2024-03.csv", report.Filename(2024, time.March))
}
