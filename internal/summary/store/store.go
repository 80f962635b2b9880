package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/summary"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type categoryRow struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// PutSummary upserts the monthly_summaries row keyed by summary.DocumentID.
func (s *Store) PutSummary(ctx context.Context, sum *summary.MonthlySummary) error {
	rows := make([]categoryRow, 0, len(sum.ExpenseByCategory))
	for _, c := range sum.ExpenseByCategory {
		rows = append(rows, categoryRow{Category: c.Category, Amount: c.Amount.String()})
	}

	byCategory, err := json.Marshal(rows)
	if err != nil {
		return apperr.Persistence("encoding expense categories", err)
	}

	query := `
		INSERT INTO monthly_summaries (
			id, user_id, year, month, total_income, total_expense,
			total_saving_investment, net_balance, expense_by_category, computed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			total_income = EXCLUDED.total_income,
			total_expense = EXCLUDED.total_expense,
			total_saving_investment = EXCLUDED.total_saving_investment,
			net_balance = EXCLUDED.net_balance,
			expense_by_category = EXCLUDED.expense_by_category,
			computed_at = EXCLUDED.computed_at`

	_, err = s.db.ExecContext(ctx, query,
		summary.DocumentID(sum.UserID, sum.Year, sum.Month),
		sum.UserID,
		sum.Year,
		int(sum.Month),
		sum.TotalIncome,
		sum.TotalExpense,
		sum.TotalSavingInvestment,
		sum.NetBalance,
		string(byCategory),
		sum.ComputedAt,
	)

	return apperr.Persistence("storing monthly summary", err)
}

func (s *Store) DeleteSummary(ctx context.Context, userID string, year int, month time.Month) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM monthly_summaries WHERE id = $1`,
		summary.DocumentID(userID, year, month))

	return apperr.Persistence("deleting monthly summary", err)
}
