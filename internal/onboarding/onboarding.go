// Package onboarding persists the three steps a new user goes through before
// the main screen: initial assets, monthly income and fixed expenses.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
	"github.com/MrJamesThe3rd/peraccount/internal/profile"
)

// Steps is the number of onboarding steps. Persisting the last one completes
// onboarding.
const Steps = 3

// Step is the data collected on one onboarding screen.
type Step interface {
	// Number is 1-based.
	Number() int
	Validate() error
}

type AssetsStep struct {
	Cash        decimal.Decimal
	Investments decimal.Decimal
	Savings     decimal.Decimal
}

func (AssetsStep) Number() int { return 1 }

func (s AssetsStep) Validate() error {
	return s.snapshot().Validate()
}

func (s AssetsStep) snapshot() ledger.AssetSnapshot {
	return ledger.AssetSnapshot{Cash: s.Cash, Investments: s.Investments, Savings: s.Savings}
}

type IncomeStep struct {
	Items []profile.Item
}

func (IncomeStep) Number() int { return 2 }

func (s IncomeStep) Validate() error { return profile.ValidateItems("income", s.Items) }

type ExpensesStep struct {
	Items []profile.Item
}

func (ExpensesStep) Number() int { return 3 }

func (s ExpensesStep) Validate() error { return profile.ValidateItems("expenses", s.Items) }

type Assets interface {
	GetAssetSnapshot(ctx context.Context, userID string) (*ledger.AssetSnapshot, error)
	PutAssetSnapshot(ctx context.Context, userID string, snapshot ledger.AssetSnapshot) (*ledger.AssetSnapshot, error)
}

type Profiles interface {
	Get(ctx context.Context, userID string) (*profile.Profile, error)
	SaveIncome(ctx context.Context, userID string, items []profile.Item) error
	CompleteOnboarding(ctx context.Context, userID string, items []profile.Item) error
}

type Service struct {
	assets   Assets
	profiles Profiles
}

func NewService(assets Assets, profiles Profiles) *Service {
	return &Service{assets: assets, profiles: profiles}
}

// Persist writes one step. A step is only accepted once every earlier step
// has been written; earlier steps stay committed when a later one fails.
// Steps already written may be written again.
func (s *Service) Persist(ctx context.Context, userID string, step Step) error {
	if userID == "" {
		return apperr.Validation("user id", "is required")
	}

	if step == nil {
		return apperr.Validation("step", "is required")
	}

	if err := step.Validate(); err != nil {
		return err
	}

	next, err := s.Next(ctx, userID)
	if err != nil {
		return err
	}

	if step.Number() > next {
		return apperr.Validation("step", fmt.Sprintf("step %d must be saved first", next))
	}

	switch st := step.(type) {
	case AssetsStep:
		if _, err := s.assets.PutAssetSnapshot(ctx, userID, st.snapshot()); err != nil {
			return fmt.Errorf("saving assets: %w", err)
		}
	case IncomeStep:
		if err := s.profiles.SaveIncome(ctx, userID, st.Items); err != nil {
			return fmt.Errorf("saving income: %w", err)
		}
	case ExpensesStep:
		if err := s.profiles.CompleteOnboarding(ctx, userID, st.Items); err != nil {
			return fmt.Errorf("saving fixed expenses: %w", err)
		}
	default:
		return apperr.Validation("step", fmt.Sprintf("unknown step %T", step))
	}

	return nil
}

// Next returns the highest step userID may submit: the first one not yet
// written, or the last step once income is saved.
func (s *Service) Next(ctx context.Context, userID string) (int, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return 0, fmt.Errorf("reading profile: %w", err)
	}

	if p != nil && p.OnboardingCompleted {
		return Steps, nil
	}

	if _, err := s.assets.GetAssetSnapshot(ctx, userID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return 1, nil
		}

		return 0, fmt.Errorf("reading assets: %w", err)
	}

	if p == nil || !p.IncomeSaved {
		return 2, nil
	}

	return Steps, nil
}

// ParseAmount reads a user-typed amount. Blank input counts as zero and
// thousands separators are ignored.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperr.Validation("amount", fmt.Sprintf("%q is not a number", s))
	}

	return d, nil
}
