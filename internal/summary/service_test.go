package summary_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
	"github.com/MrJamesThe3rd/peraccount/internal/summary"
)

func TestService_Monthly(t *testing.T) {
	type testCase struct {
		name      string
		userID    string
		month     time.Month
		setupMock func(l *summary.MockLedgerReader, r *summary.MockRepository)
		wantErr   bool
		wantNet   int64
	}

	tests := []testCase{
		{
			name:   "ComputesAndStores",
			userID: "u1",
			month:  time.March,
			setupMock: func(l *summary.MockLedgerReader, r *summary.MockRepository) {
				l.EXPECT().
					ListTransactions(gomock.Any(), "u1", ledger.MonthRange(2024, time.March)).
					Return([]*ledger.Transaction{
						tx(ledger.TypeIncome, 1000, "월급", day(2024, 3, 1)),
						tx(ledger.TypeExpense, 400, "식비", day(2024, 3, 2)),
					}, nil)
				r.EXPECT().
					PutSummary(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, s *summary.MonthlySummary) error {
						assert.Equal(t, "u1-2024-3", summary.DocumentID(s.UserID, s.Year, s.Month))
						return nil
					})
			},
			wantNet: 600,
		},
		{
			name:   "StoreFailureIsNotFatal",
			userID: "u1",
			month:  time.March,
			setupMock: func(l *summary.MockLedgerReader, r *summary.MockRepository) {
				l.EXPECT().ListTransactions(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
				r.EXPECT().PutSummary(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
			},
		},
		{
			name:   "LedgerError",
			userID: "u1",
			month:  time.March,
			setupMock: func(l *summary.MockLedgerReader, _ *summary.MockRepository) {
				l.EXPECT().
					ListTransactions(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, apperr.Persistence("listing transactions", errors.New("db down")))
			},
			wantErr: true,
		},
		{
			name:    "MissingUser",
			month:   time.March,
			wantErr: true,
		},
		{
			name:    "BadMonth",
			userID:  "u1",
			month:   13,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			reader := summary.NewMockLedgerReader(ctrl)
			repo := summary.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(reader, repo)
			}

			svc := summary.NewService(reader, repo, summary.NewCategorySet("저축"))
			got, err := svc.Monthly(context.Background(), tt.userID, 2024, tt.month)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, decimal.NewFromInt(tt.wantNet).Equal(got.NetBalance))
			assert.False(t, got.ComputedAt.IsZero())
		})
	}
}

func TestService_MonthlyInvalidatedMidCompute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := summary.NewMockLedgerReader(ctrl)
	repo := summary.NewMockRepository(ctrl)
	svc := summary.NewService(reader, repo, nil)
	ctx := context.Background()

	// A transaction lands while the month is being read. The result is still
	// returned, but neither stored nor cached.
	reader.EXPECT().
		ListTransactions(gomock.Any(), "u1", gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ ledger.DateRange) ([]*ledger.Transaction, error) {
			svc.Invalidate(ctx, "u1", day(2024, 3, 20))
			return []*ledger.Transaction{tx(ledger.TypeIncome, 100, "월급", day(2024, 3, 1))}, nil
		})
	repo.EXPECT().DeleteSummary(gomock.Any(), "u1", 2024, time.March).Return(nil)

	got, err := svc.Monthly(ctx, "u1", 2024, time.March)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(got.NetBalance))

	reader.EXPECT().
		ListTransactions(gomock.Any(), "u1", gomock.Any()).
		Return([]*ledger.Transaction{
			tx(ledger.TypeIncome, 100, "월급", day(2024, 3, 1)),
			tx(ledger.TypeExpense, 30, "식비", day(2024, 3, 20)),
		}, nil)
	repo.EXPECT().PutSummary(gomock.Any(), gomock.Any()).Return(nil)

	got, err = svc.Monthly(ctx, "u1", 2024, time.March)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(70).Equal(got.NetBalance))
}

func TestService_MonthlyCachesUntilInvalidated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := summary.NewMockLedgerReader(ctrl)
	repo := summary.NewMockRepository(ctrl)
	svc := summary.NewService(reader, repo, nil)
	ctx := context.Background()

	reader.EXPECT().
		ListTransactions(gomock.Any(), "u1", gomock.Any()).
		Return([]*ledger.Transaction{tx(ledger.TypeIncome, 100, "월급", day(2024, 3, 1))}, nil)
	repo.EXPECT().PutSummary(gomock.Any(), gomock.Any()).Return(nil)

	first, err := svc.Monthly(ctx, "u1", 2024, time.March)
	require.NoError(t, err)

	second, err := svc.Monthly(ctx, "u1", 2024, time.March)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	repo.EXPECT().DeleteSummary(gomock.Any(), "u1", 2024, time.March).Return(nil)
	svc.Invalidate(ctx, "u1", day(2024, 3, 15))

	reader.EXPECT().
		ListTransactions(gomock.Any(), "u1", gomock.Any()).
		Return([]*ledger.Transaction{
			tx(ledger.TypeIncome, 100, "월급", day(2024, 3, 1)),
			tx(ledger.TypeIncome, 50, "용돈", day(2024, 3, 15)),
		}, nil)
	repo.EXPECT().PutSummary(gomock.Any(), gomock.Any()).Return(nil)

	third, err := svc.Monthly(ctx, "u1", 2024, time.March)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150).Equal(third.TotalIncome))
}

func TestService_Dashboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := summary.NewMockLedgerReader(ctrl)
	repo := summary.NewMockRepository(ctrl)
	svc := summary.NewService(reader, repo, nil)
	now := time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC)

	t.Run("NoSnapshotMeansZero", func(t *testing.T) {
		reader.EXPECT().GetAssetSnapshot(gomock.Any(), "u1").Return(nil, apperr.ErrNotFound)
		reader.EXPECT().ListTransactions(gomock.Any(), "u1", ledger.MonthRange(2024, time.March)).Return(nil, nil)
		repo.EXPECT().PutSummary(gomock.Any(), gomock.Any()).Return(nil)

		got, err := svc.Dashboard(context.Background(), "u1", now)
		require.NoError(t, err)
		assert.True(t, decimal.Zero.Equal(got.TotalAssets))
		assert.Nil(t, got.Snapshot)
		assert.Equal(t, time.March, got.Month.Month)
	})

	t.Run("WithSnapshot", func(t *testing.T) {
		reader.EXPECT().GetAssetSnapshot(gomock.Any(), "u2").Return(&ledger.AssetSnapshot{
			UserID:      "u2",
			Cash:        decimal.NewFromInt(1_000_000),
			Investments: decimal.NewFromInt(500_000),
			Savings:     decimal.NewFromInt(200_000),
		}, nil)
		reader.EXPECT().ListTransactions(gomock.Any(), "u2", gomock.Any()).Return(nil, nil)
		repo.EXPECT().PutSummary(gomock.Any(), gomock.Any()).Return(nil)

		got, err := svc.Dashboard(context.Background(), "u2", now)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1_700_000).Equal(got.TotalAssets))
	})

	t.Run("SnapshotError", func(t *testing.T) {
		reader.EXPECT().GetAssetSnapshot(gomock.Any(), "u3").Return(nil, errors.New("boom"))

		_, err := svc.Dashboard(context.Background(), "u3", now)
		assert.Error(t, err)
	})
}
