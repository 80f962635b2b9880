package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=profile
type Repository interface {
	CreateProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	// SaveIncome and CompleteOnboarding upsert, creating the row if needed.
	SaveIncome(ctx context.Context, userID string, items []Item, total decimal.Decimal) error
	CompleteOnboarding(ctx context.Context, userID string, items []Item, total decimal.Decimal) error
	TouchLogin(ctx context.Context, userID string, at time.Time) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create writes a fresh profile with onboarding not yet completed.
func (s *Service) Create(ctx context.Context, userID, email string) (*Profile, error) {
	if userID == "" {
		return nil, apperr.Validation("user id", "is required")
	}

	now := s.now().UTC()
	p := &Profile{
		UserID:                   userID,
		Email:                    email,
		MonthlyIncomeItems:       []Item{},
		MonthlyFixedExpenseItems: []Item{},
		TotalMonthlyIncome:       decimal.Zero,
		TotalFixedExpense:        decimal.Zero,
		CreatedAt:                now,
		LastLogin:                now,
	}

	if err := s.repo.CreateProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, apperr.Validation("user id", "is required")
	}

	return s.repo.GetProfile(ctx, userID)
}

// OnboardingCompleted reads the authoritative onboarding flag. A user
// without a profile has not completed onboarding.
func (s *Service) OnboardingCompleted(ctx context.Context, userID string) (bool, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	return p.OnboardingCompleted, nil
}

// SaveIncome stores the monthly income items and their total.
func (s *Service) SaveIncome(ctx context.Context, userID string, items []Item) error {
	if userID == "" {
		return apperr.Validation("user id", "is required")
	}

	if err := ValidateItems("income", items); err != nil {
		return err
	}

	items = normalize(items)
	if err := s.repo.SaveIncome(ctx, userID, items, Sum(items)); err != nil {
		return fmt.Errorf("saving income: %w", err)
	}

	return nil
}

// CompleteOnboarding stores the fixed expense items and marks onboarding as
// completed in the same write.
func (s *Service) CompleteOnboarding(ctx context.Context, userID string, items []Item) error {
	if userID == "" {
		return apperr.Validation("user id", "is required")
	}

	if err := ValidateItems("expenses", items); err != nil {
		return err
	}

	items = normalize(items)
	if err := s.repo.CompleteOnboarding(ctx, userID, items, Sum(items)); err != nil {
		return fmt.Errorf("completing onboarding: %w", err)
	}

	return nil
}

func (s *Service) TouchLogin(ctx context.Context, userID string) error {
	if err := s.repo.TouchLogin(ctx, userID, s.now().UTC()); err != nil {
		return fmt.Errorf("recording login: %w", err)
	}

	return nil
}
