package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/profile"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func encodeItems(items []profile.Item) (string, error) {
	if items == nil {
		items = []profile.Item{}
	}

	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func decodeItems(raw []byte) ([]profile.Item, error) {
	var items []profile.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	return items, nil
}

func (s *Store) CreateProfile(ctx context.Context, p *profile.Profile) error {
	income, err := encodeItems(p.MonthlyIncomeItems)
	if err != nil {
		return apperr.Persistence("encoding income items", err)
	}

	expenses, err := encodeItems(p.MonthlyFixedExpenseItems)
	if err != nil {
		return apperr.Persistence("encoding expense items", err)
	}

	query := `
		INSERT INTO users (
			user_id, email, onboarding_completed, monthly_income_items, monthly_fixed_expense_items,
			total_monthly_income, total_fixed_expense, created_at, last_login
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = s.db.ExecContext(ctx, query,
		p.UserID,
		p.Email,
		p.OnboardingCompleted,
		income,
		expenses,
		p.TotalMonthlyIncome,
		p.TotalFixedExpense,
		p.CreatedAt,
		p.LastLogin,
	)

	return apperr.Persistence("creating profile", err)
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	query := `
		SELECT user_id, email, onboarding_completed, income_saved, monthly_income_items, monthly_fixed_expense_items,
			total_monthly_income, total_fixed_expense, created_at, last_login
		FROM users
		WHERE user_id = $1`

	var p profile.Profile

	var income, expenses []byte

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.Email, &p.OnboardingCompleted, &p.IncomeSaved, &income, &expenses,
		&p.TotalMonthlyIncome, &p.TotalFixedExpense, &p.CreatedAt, &p.LastLogin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}

		return nil, apperr.Persistence("getting profile", err)
	}

	if p.MonthlyIncomeItems, err = decodeItems(income); err != nil {
		return nil, apperr.Persistence("decoding income items", fmt.Errorf("user %s: %w", userID, err))
	}

	if p.MonthlyFixedExpenseItems, err = decodeItems(expenses); err != nil {
		return nil, apperr.Persistence("decoding expense items", fmt.Errorf("user %s: %w", userID, err))
	}

	return &p, nil
}

func (s *Store) SaveIncome(ctx context.Context, userID string, items []profile.Item, total decimal.Decimal) error {
	encoded, err := encodeItems(items)
	if err != nil {
		return apperr.Persistence("encoding income items", err)
	}

	query := `
		INSERT INTO users (user_id, email, monthly_income_items, total_monthly_income, income_saved)
		VALUES ($1, '', $2, $3, TRUE)
		ON CONFLICT (user_id) DO UPDATE SET
			monthly_income_items = EXCLUDED.monthly_income_items,
			total_monthly_income = EXCLUDED.total_monthly_income,
			income_saved = TRUE`

	_, err = s.db.ExecContext(ctx, query, userID, encoded, total)

	return apperr.Persistence("saving income", err)
}

func (s *Store) CompleteOnboarding(ctx context.Context, userID string, items []profile.Item, total decimal.Decimal) error {
	encoded, err := encodeItems(items)
	if err != nil {
		return apperr.Persistence("encoding expense items", err)
	}

	query := `
		INSERT INTO users (user_id, email, monthly_fixed_expense_items, total_fixed_expense, onboarding_completed)
		VALUES ($1, '', $2, $3, TRUE)
		ON CONFLICT (user_id) DO UPDATE SET
			monthly_fixed_expense_items = EXCLUDED.monthly_fixed_expense_items,
			total_fixed_expense = EXCLUDED.total_fixed_expense,
			onboarding_completed = TRUE`

	_, err = s.db.ExecContext(ctx, query, userID, encoded, total)

	return apperr.Persistence("completing onboarding", err)
}

func (s *Store) TouchLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE user_id = $2`, at, userID)

	return apperr.Persistence("recording login", err)
}
