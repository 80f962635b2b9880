package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=summary
type Repository interface {
	PutSummary(ctx context.Context, s *MonthlySummary) error
	DeleteSummary(ctx context.Context, userID string, year int, month time.Month) error
}

type LedgerReader interface {
	GetAssetSnapshot(ctx context.Context, userID string) (*ledger.AssetSnapshot, error)
	ListTransactions(ctx context.Context, userID string, r ledger.DateRange) ([]*ledger.Transaction, error)
}

type key struct {
	userID string
	year   int
	month  time.Month
}

// Service caches monthly summaries per (user, year, month). Entries are
// dropped by Invalidate, which is meant to be registered with
// ledger.Service.OnChange.
type Service struct {
	ledger     LedgerReader
	repo       Repository
	classifier Classifier
	now        func() time.Time

	mu    sync.Mutex
	cache map[key]MonthlySummary
	gen   map[key]uint64
	group singleflight.Group

	// writes orders stored documents against deletes so a summary computed
	// before an invalidation is never written after it.
	writes sync.Mutex
}

func NewService(reader LedgerReader, repo Repository, classifier Classifier) *Service {
	return &Service{
		ledger:     reader,
		repo:       repo,
		classifier: classifier,
		now:        time.Now,
		cache:      make(map[key]MonthlySummary),
		gen:        make(map[key]uint64),
	}
}

// Monthly returns the summary for the month, computing it from the
// transaction log when it is not cached.
func (s *Service) Monthly(ctx context.Context, userID string, year int, month time.Month) (*MonthlySummary, error) {
	if userID == "" {
		return nil, apperr.Validation("user id", "is required")
	}

	if month < time.January || month > time.December {
		return nil, apperr.Validation("month", "must be between 1 and 12")
	}

	if year < 1 {
		return nil, apperr.Validation("year", "must be positive")
	}

	k := key{userID: userID, year: year, month: month}

	s.mu.Lock()
	cached, ok := s.cache[k]
	gen := s.gen[k]
	s.mu.Unlock()

	if ok {
		return clone(cached), nil
	}

	flight := fmt.Sprintf("%s#%d", DocumentID(userID, year, month), gen)

	v, err, _ := s.group.Do(flight, func() (any, error) {
		return s.compute(ctx, k, gen)
	})
	if err != nil {
		return nil, err
	}

	return clone(v.(MonthlySummary)), nil
}

func clone(s MonthlySummary) *MonthlySummary {
	s.ExpenseByCategory = append([]CategoryAmount(nil), s.ExpenseByCategory...)
	return &s
}

func (s *Service) compute(ctx context.Context, k key, gen uint64) (MonthlySummary, error) {
	txs, err := s.ledger.ListTransactions(ctx, k.userID, ledger.MonthRange(k.year, k.month))
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("loading transactions: %w", err)
	}

	sum := ComputeMonthly(k.userID, k.year, k.month, txs, s.classifier)
	sum.ComputedAt = s.now().UTC()

	s.writes.Lock()
	defer s.writes.Unlock()

	if !s.current(k, gen) {
		return sum, nil
	}

	if err := s.repo.PutSummary(ctx, &sum); err != nil {
		slog.Warn("failed to store monthly summary", "id", DocumentID(k.userID, k.year, k.month), "error", err)
	}

	s.mu.Lock()
	if s.gen[k] == gen {
		s.cache[k] = sum
	}
	s.mu.Unlock()

	return sum, nil
}

func (s *Service) current(k key, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gen[k] == gen
}

// Invalidate forgets the cached summary of the month containing date.
func (s *Service) Invalidate(ctx context.Context, userID string, date time.Time) {
	k := key{userID: userID, year: date.Year(), month: date.Month()}

	s.mu.Lock()
	delete(s.cache, k)
	s.gen[k]++
	s.mu.Unlock()

	s.writes.Lock()
	defer s.writes.Unlock()

	if err := s.repo.DeleteSummary(ctx, k.userID, k.year, k.month); err != nil {
		slog.Warn("failed to drop monthly summary", "id", DocumentID(k.userID, k.year, k.month), "error", err)
	}
}

// Dashboard is the landing view: total assets and the current month.
type Dashboard struct {
	Snapshot    *ledger.AssetSnapshot
	TotalAssets decimal.Decimal
	Month       MonthlySummary
}

// Dashboard reports total assets and the summary of the month containing now.
// A user without a snapshot has zero assets.
func (s *Service) Dashboard(ctx context.Context, userID string, now time.Time) (*Dashboard, error) {
	snapshot, err := s.ledger.GetAssetSnapshot(ctx, userID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("loading assets: %w", err)
	}

	d := &Dashboard{Snapshot: snapshot, TotalAssets: decimal.Zero}
	if snapshot != nil {
		d.TotalAssets = TotalAssets(*snapshot)
	}

	month, err := s.Monthly(ctx, userID, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}

	d.Month = *month

	return d, nil
}
