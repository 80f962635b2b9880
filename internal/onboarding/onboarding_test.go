package onboarding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
	"github.com/MrJamesThe3rd/peraccount/internal/onboarding"
	"github.com/MrJamesThe3rd/peraccount/internal/profile"
)

type fakeAssets struct {
	got *ledger.AssetSnapshot
	err error
}

func (f *fakeAssets) GetAssetSnapshot(context.Context, string) (*ledger.AssetSnapshot, error) {
	if f.got == nil {
		return nil, apperr.ErrNotFound
	}

	return f.got, nil
}

func (f *fakeAssets) PutAssetSnapshot(_ context.Context, userID string, s ledger.AssetSnapshot) (*ledger.AssetSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}

	s.UserID = userID
	f.got = &s

	return &s, nil
}

type fakeProfiles struct {
	income      []profile.Item
	incomeSaved bool
	expenses    []profile.Item
	completed   bool
	err         error
	getErr      error
}

func (f *fakeProfiles) Get(context.Context, string) (*profile.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	if !f.incomeSaved && !f.completed {
		return nil, apperr.ErrNotFound
	}

	return &profile.Profile{IncomeSaved: f.incomeSaved, OnboardingCompleted: f.completed}, nil
}

func (f *fakeProfiles) SaveIncome(_ context.Context, _ string, items []profile.Item) error {
	if f.err != nil {
		return f.err
	}

	f.income = items
	f.incomeSaved = true

	return nil
}

func (f *fakeProfiles) CompleteOnboarding(_ context.Context, _ string, items []profile.Item) error {
	if f.err != nil {
		return f.err
	}

	f.expenses = items
	f.completed = true

	return nil
}

func TestService_Persist(t *testing.T) {
	salary := []profile.Item{{Name: "월급", Amount: decimal.NewFromInt(3_000_000)}}

	type testCase struct {
		name        string
		step        onboarding.Step
		progress    int
		assetsErr   error
		profilesErr error
		wantInvalid bool
		wantErr     bool
		check       func(t *testing.T, a *fakeAssets, p *fakeProfiles)
	}

	tests := []testCase{
		{
			name: "Assets",
			step: onboarding.AssetsStep{Cash: decimal.NewFromInt(1_000_000), Savings: decimal.NewFromInt(5)},
			check: func(t *testing.T, a *fakeAssets, _ *fakeProfiles) {
				require.NotNil(t, a.got)
				assert.Equal(t, "u1", a.got.UserID)
				assert.True(t, decimal.NewFromInt(1_000_005).Equal(a.got.Total()))
			},
		},
		{
			name:     "Income",
			step:     onboarding.IncomeStep{Items: salary},
			progress: 2,
			check: func(t *testing.T, _ *fakeAssets, p *fakeProfiles) {
				assert.Equal(t, salary, p.income)
				assert.False(t, p.completed)
			},
		},
		{
			name:     "ExpensesCompletes",
			step:     onboarding.ExpensesStep{Items: []profile.Item{{Name: "구독료", Amount: decimal.NewFromInt(15_000)}}},
			progress: 3,
			check: func(t *testing.T, _ *fakeAssets, p *fakeProfiles) {
				assert.True(t, p.completed)
			},
		},
		{
			name:        "NegativeAsset",
			step:        onboarding.AssetsStep{Cash: decimal.NewFromInt(-1)},
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name:        "BlankIncomeName",
			step:        onboarding.IncomeStep{Items: []profile.Item{{Name: "", Amount: decimal.NewFromInt(1)}}},
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name:        "IncomeBeforeAssets",
			step:        onboarding.IncomeStep{Items: salary},
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name:        "ExpensesBeforeIncome",
			step:        onboarding.ExpensesStep{},
			progress:    2,
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name:     "AssetsAgainAfterIncome",
			step:     onboarding.AssetsStep{Cash: decimal.NewFromInt(7)},
			progress: 3,
			check: func(t *testing.T, a *fakeAssets, _ *fakeProfiles) {
				assert.True(t, decimal.NewFromInt(7).Equal(a.got.Total()))
			},
		},
		{
			name:        "StoreFailure",
			step:        onboarding.IncomeStep{Items: salary},
			progress:    2,
			profilesErr: apperr.Persistence("saving income", errors.New("db down")),
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &fakeAssets{}
			p := &fakeProfiles{}

			if tt.progress >= 2 {
				a.got = &ledger.AssetSnapshot{UserID: "u1"}
			}

			p.incomeSaved = tt.progress >= 3
			a.err, p.err = tt.assetsErr, tt.profilesErr

			err := onboarding.NewService(a, p).Persist(context.Background(), "u1", tt.step)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantInvalid, apperr.IsValidation(err))

				return
			}

			require.NoError(t, err)
			tt.check(t, a, p)
		})
	}
}

func TestService_Next(t *testing.T) {
	ctx := context.Background()

	t.Run("FollowsWrites", func(t *testing.T) {
		a, p := &fakeAssets{}, &fakeProfiles{}
		svc := onboarding.NewService(a, p)

		next, err := svc.Next(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, next)

		require.NoError(t, svc.Persist(ctx, "u1", onboarding.AssetsStep{}))
		next, err = svc.Next(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, next)

		require.NoError(t, svc.Persist(ctx, "u1", onboarding.IncomeStep{}))
		next, err = svc.Next(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 3, next, "empty income still counts")
	})

	t.Run("CompletedAllowsEveryStep", func(t *testing.T) {
		next, err := onboarding.NewService(&fakeAssets{}, &fakeProfiles{completed: true}).Next(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, onboarding.Steps, next)
	})

	t.Run("ReadFailure", func(t *testing.T) {
		p := &fakeProfiles{getErr: apperr.Persistence("getting profile", errors.New("db down"))}

		err := onboarding.NewService(&fakeAssets{}, p).Persist(ctx, "u1", onboarding.AssetsStep{})
		assert.True(t, apperr.IsPersistence(err))
	})
}

func TestStepNumbers(t *testing.T) {
	assert.Equal(t, 1, onboarding.AssetsStep{}.Number())
	assert.Equal(t, 2, onboarding.IncomeStep{}.Number())
	assert.Equal(t, onboarding.Steps, onboarding.ExpensesStep{}.Number())
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "", want: 0},
		{in: "  ", want: 0},
		{in: "1000000", want: 1_000_000},
		{in: "1,000,000", want: 1_000_000},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := onboarding.ParseAmount(tt.in)
			if tt.wantErr {
				assert.True(t, apperr.IsValidation(err))
				return
			}

			require.NoError(t, err)
			assert.True(t, decimal.NewFromInt(tt.want).Equal(got))
		})
	}
}
