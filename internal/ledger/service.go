package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	GetAssetSnapshot(ctx context.Context, userID string) (*AssetSnapshot, error)
	PutAssetSnapshot(ctx context.Context, snapshot *AssetSnapshot) error

	ListTransactions(ctx context.Context, userID string, r DateRange) ([]*Transaction, error)
	CreateTransaction(ctx context.Context, tx *Transaction) error
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	// DeleteTransaction returns the removed record, or nil when nothing was live under id.
	DeleteTransaction(ctx context.Context, userID string, id uuid.UUID) (*Transaction, error)
}

// ChangeFunc is told about every write to a user's transaction log.
type ChangeFunc func(ctx context.Context, userID string, date time.Time)

type Service struct {
	repo Repository
	now  func() time.Time

	mu        sync.RWMutex
	observers []ChangeFunc
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// OnChange registers fn to run after each successful add or delete.
func (s *Service) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observers = append(s.observers, fn)
}

func (s *Service) notify(ctx context.Context, userID string, date time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, fn := range s.observers {
		fn(ctx, userID, date)
	}
}

func (s *Service) GetAssetSnapshot(ctx context.Context, userID string) (*AssetSnapshot, error) {
	if userID == "" {
		return nil, apperr.Validation("user id", "is required")
	}

	return s.repo.GetAssetSnapshot(ctx, userID)
}

// PutAssetSnapshot replaces the user's snapshot and stamps LastUpdated.
func (s *Service) PutAssetSnapshot(ctx context.Context, userID string, snapshot AssetSnapshot) (*AssetSnapshot, error) {
	if userID == "" {
		return nil, apperr.Validation("user id", "is required")
	}

	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	snapshot.UserID = userID
	snapshot.LastUpdated = s.now().UTC()

	if err := s.repo.PutAssetSnapshot(ctx, &snapshot); err != nil {
		return nil, fmt.Errorf("saving asset snapshot: %w", err)
	}

	return &snapshot, nil
}

// ListTransactions returns the user's transactions in r, newest date first.
func (s *Service) ListTransactions(ctx context.Context, userID string, r DateRange) ([]*Transaction, error) {
	if userID == "" {
		return nil, apperr.Validation("user id", "is required")
	}

	return s.repo.ListTransactions(ctx, userID, r)
}

func (s *Service) AddTransaction(ctx context.Context, userID string, draft Draft) (*Transaction, error) {
	if userID == "" {
		return nil, apperr.Validation("user id", "is required")
	}

	if err := draft.Validate(); err != nil {
		return nil, err
	}

	tx := draft.toTransaction(userID)
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("adding transaction: %w", err)
	}

	s.notify(ctx, userID, tx.Date)

	return tx, nil
}

// AddTransactions inserts all drafts or none of them.
func (s *Service) AddTransactions(ctx context.Context, userID string, drafts []Draft) ([]*Transaction, error) {
	if userID == "" {
		return nil, apperr.Validation("user id", "is required")
	}

	if len(drafts) == 0 {
		return nil, nil
	}

	txs := make([]*Transaction, len(drafts))

	for i, d := range drafts {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		txs[i] = d.toTransaction(userID)
	}

	if err := s.repo.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("adding transactions: %w", err)
	}

	type month struct {
		year  int
		month time.Month
	}

	seen := make(map[month]struct{})

	for _, tx := range txs {
		k := month{tx.Date.Year(), tx.Date.Month()}
		if _, ok := seen[k]; ok {
			continue
		}

		seen[k] = struct{}{}
		s.notify(ctx, userID, tx.Date)
	}

	return txs, nil
}

// DeleteTransaction removes the transaction. Deleting an id that is already
// gone is a no-op.
func (s *Service) DeleteTransaction(ctx context.Context, userID string, id uuid.UUID) error {
	if userID == "" {
		return apperr.Validation("user id", "is required")
	}

	removed, err := s.repo.DeleteTransaction(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if removed != nil {
		s.notify(ctx, userID, removed.Date)
	}

	return nil
}
