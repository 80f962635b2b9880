// Package report renders a user's month for download: a CSV of its
// transactions and a plain-text body with the summary lines.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
	"github.com/MrJamesThe3rd/peraccount/internal/summary"
)

// Header is the column row of every exported CSV. The importer reads it back.
var Header = []string{"date", "type", "category", "amount", "memo"}

type TransactionLister interface {
	ListTransactions(ctx context.Context, userID string, r ledger.DateRange) ([]*ledger.Transaction, error)
}

type Summaries interface {
	Monthly(ctx context.Context, userID string, year int, month time.Month) (*summary.MonthlySummary, error)
}

// Report is one month of a user's ledger.
type Report struct {
	Summary      *summary.MonthlySummary
	Transactions []*ledger.Transaction
}

// Service builds monthly reports.
type Service struct {
	transactions TransactionLister
	summaries    Summaries
}

func NewService(transactions TransactionLister, summaries Summaries) *Service {
	return &Service{
		transactions: transactions,
		summaries:    summaries,
	}
}

// Month loads the summary and the transactions of one month.
func (s *Service) Month(ctx context.Context, userID string, year int, month time.Month) (*Report, error) {
	sum, err := s.summaries.Monthly(ctx, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("loading summary: %w", err)
	}

	txs, err := s.transactions.ListTransactions(ctx, userID, ledger.MonthRange(year, month))
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return &Report{Summary: sum, Transactions: txs}, nil
}

// Filename is the suggested download name, e.g. peraccount-2024-03.csv.
func Filename(year int, month time.Month) string {
	return fmt.Sprintf("peraccount-%04d-%02d.csv", year, int(month))
}

// WriteCSV writes the transactions, oldest first.
func WriteCSV(w io.Writer, txs []*ledger.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]

		memo := ""
		if tx.Memo != nil {
			memo = *tx.Memo
		}

		record := []string{
			tx.Date.Format("2006-01-02"),
			string(tx.Type),
			tx.Category,
			tx.Amount.String(),
			memo,
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing transaction %s: %w", tx.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Body formats the report as text, one transaction per line.
func Body(r *Report) string {
	var sb strings.Builder

	s := r.Summary
	sb.WriteString(fmt.Sprintf("%d년 %d월\n", s.Year, int(s.Month)))
	sb.WriteString(fmt.Sprintf("수입: %s\n", FormatWon(s.TotalIncome)))
	sb.WriteString(fmt.Sprintf("지출: %s\n", FormatWon(s.TotalExpense)))
	sb.WriteString(fmt.Sprintf("저축/투자: %s\n", FormatWon(s.TotalSavingInvestment)))
	sb.WriteString(fmt.Sprintf("순수지: %s\n", FormatWon(s.NetBalance)))

	if len(s.ExpenseByCategory) > 0 {
		sb.WriteString("\n")

		for _, c := range s.ExpenseByCategory {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", c.Category, FormatWon(c.Amount)))
		}
	}

	if len(r.Transactions) > 0 {
		sb.WriteString("\n")
	}

	for _, tx := range r.Transactions {
		sign := "-"
		if tx.Type == ledger.TypeIncome {
			sign = "+"
		}

		memo := ""
		if tx.Memo != nil {
			memo = " | " + *tx.Memo
		}

		sb.WriteString(fmt.Sprintf("* %s | %s | %s%s%s\n", tx.Date.Format("2006-01-02"), tx.Category, sign, FormatWon(tx.Amount), memo))
	}

	return sb.String()
}

// FormatWon renders an amount with thousands separators, e.g. 1,234,500원.
// Fractions are kept to two places.
func FormatWon(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	d = d.Round(2)
	whole := humanize.Comma(d.IntPart())

	if frac := d.Sub(d.Truncate(0)); !frac.IsZero() {
		whole += strings.TrimPrefix(frac.StringFixed(2), "0")
	}

	return sign + whole + "원"
}
