// Package memstore keeps every repository in process memory. It backs the
// API when DB_DRIVER=memory and the end-to-end tests. Data is lost on exit.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/auth"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
	"github.com/MrJamesThe3rd/peraccount/internal/profile"
	"github.com/MrJamesThe3rd/peraccount/internal/summary"
)

// Store is safe for concurrent use. Records are copied on the way in and on
// the way out.
type Store struct {
	now func() time.Time

	mu           sync.RWMutex
	assets       map[string]ledger.AssetSnapshot
	transactions map[uuid.UUID]ledger.Transaction
	summaries    map[string]summary.MonthlySummary
	profiles     map[string]profile.Profile
	accounts     map[string]auth.Account
}

func New() *Store {
	return &Store{
		now:          time.Now,
		assets:       make(map[string]ledger.AssetSnapshot),
		transactions: make(map[uuid.UUID]ledger.Transaction),
		summaries:    make(map[string]summary.MonthlySummary),
		profiles:     make(map[string]profile.Profile),
		accounts:     make(map[string]auth.Account),
	}
}

func (s *Store) GetAssetSnapshot(_ context.Context, userID string) (*ledger.AssetSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assets[userID]
	if !ok {
		return nil, apperr.ErrNotFound
	}

	return &a, nil
}

func (s *Store) PutAssetSnapshot(_ context.Context, a *ledger.AssetSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assets[a.UserID] = *a

	return nil
}

func copyTransaction(tx ledger.Transaction) *ledger.Transaction {
	if tx.Memo != nil {
		memo := *tx.Memo
		tx.Memo = &memo
	}

	return &tx
}

// ListTransactions orders by date, then creation time, newest first, and by
// id for equal timestamps.
func (s *Store) ListTransactions(_ context.Context, userID string, r ledger.DateRange) ([]*ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*ledger.Transaction

	for _, tx := range s.transactions {
		if tx.UserID != userID || !r.Contains(tx.Date) {
			continue
		}

		out = append(out, copyTransaction(tx))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}

		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}

		return strings.Compare(out[i].ID.String(), out[j].ID.String()) < 0
	})

	return out, nil
}

func (s *Store) insertLocked(tx *ledger.Transaction) {
	tx.ID = uuid.New()
	tx.CreatedAt = s.now().UTC()
	s.transactions[tx.ID] = *copyTransaction(*tx)
}

func (s *Store) CreateTransaction(_ context.Context, tx *ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertLocked(tx)

	return nil
}

func (s *Store) CreateTransactions(_ context.Context, txs []*ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range txs {
		s.insertLocked(tx)
	}

	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID string, id uuid.UUID) (*ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return nil, nil
	}

	delete(s.transactions, id)

	return copyTransaction(tx), nil
}

func (s *Store) PutSummary(_ context.Context, sum *summary.MonthlySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *sum
	c.ExpenseByCategory = append([]summary.CategoryAmount(nil), sum.ExpenseByCategory...)
	s.summaries[summary.DocumentID(sum.UserID, sum.Year, sum.Month)] = c

	return nil
}

func (s *Store) DeleteSummary(_ context.Context, userID string, year int, month time.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.summaries, summary.DocumentID(userID, year, month))

	return nil
}

// Summary returns the stored document, for inspection.
func (s *Store) Summary(userID string, year int, month time.Month) (*summary.MonthlySummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, ok := s.summaries[summary.DocumentID(userID, year, month)]

	return &sum, ok
}

func copyProfile(p profile.Profile) *profile.Profile {
	p.MonthlyIncomeItems = append([]profile.Item{}, p.MonthlyIncomeItems...)
	p.MonthlyFixedExpenseItems = append([]profile.Item{}, p.MonthlyFixedExpenseItems...)

	return &p
}

func (s *Store) CreateProfile(_ context.Context, p *profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[p.UserID] = *copyProfile(*p)

	return nil
}

func (s *Store) GetProfile(_ context.Context, userID string) (*profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, apperr.ErrNotFound
	}

	return copyProfile(p), nil
}

// profileLocked returns the stored profile or a fresh one, matching the
// upsert semantics of the SQL store.
func (s *Store) profileLocked(userID string) profile.Profile {
	if p, ok := s.profiles[userID]; ok {
		return p
	}

	now := s.now().UTC()

	return profile.Profile{
		UserID:             userID,
		TotalMonthlyIncome: decimal.Zero,
		TotalFixedExpense:  decimal.Zero,
		CreatedAt:          now,
		LastLogin:          now,
	}
}

func (s *Store) SaveIncome(_ context.Context, userID string, items []profile.Item, total decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.profileLocked(userID)
	p.MonthlyIncomeItems = append([]profile.Item{}, items...)
	p.TotalMonthlyIncome = total
	p.IncomeSaved = true
	s.profiles[userID] = p

	return nil
}

func (s *Store) CompleteOnboarding(_ context.Context, userID string, items []profile.Item, total decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.profileLocked(userID)
	p.MonthlyFixedExpenseItems = append([]profile.Item{}, items...)
	p.TotalFixedExpense = total
	p.OnboardingCompleted = true
	s.profiles[userID] = p

	return nil
}

func (s *Store) TouchLogin(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.profiles[userID]; ok {
		p.LastLogin = at
		s.profiles[userID] = p
	}

	return nil
}

func (s *Store) CreateAccount(_ context.Context, a *auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.Email]; ok {
		return auth.ErrEmailTaken
	}

	a.ID = uuid.New()
	a.CreatedAt = s.now().UTC()
	s.accounts[a.Email] = *a

	return nil
}

func (s *Store) GetAccountByEmail(_ context.Context, email string) (*auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[email]
	if !ok {
		return nil, apperr.ErrNotFound
	}

	return &a, nil
}
