package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
)

type change struct {
	userID string
	date   time.Time
}

func recordChanges(svc *ledger.Service) *[]change {
	var changes []change

	svc.OnChange(func(_ context.Context, userID string, date time.Time) {
		changes = append(changes, change{userID, date})
	})

	return &changes
}

func TestService_AddTransaction(t *testing.T) {
	date := time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC)

	type args struct {
		userID string
		draft  ledger.Draft
	}

	type testCase struct {
		name        string
		args        args
		setupMock   func(m *ledger.MockRepository)
		wantErr     bool
		wantInvalid bool
	}

	valid := ledger.Draft{
		Type:     ledger.TypeExpense,
		Amount:   decimal.NewFromInt(12_000),
		Category: " 식비 ",
		Date:     date,
		Memo:     "lunch",
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{userID: "u1", draft: valid},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *ledger.Transaction) error {
						assert.Equal(t, "u1", tx.UserID)
						assert.Equal(t, "식비", tx.Category)
						assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), tx.Date)
						require.NotNil(t, tx.Memo)
						assert.Equal(t, "lunch", *tx.Memo)

						tx.ID = uuid.New()
						tx.CreatedAt = time.Now()

						return nil
					})
			},
		},
		{
			name: "ZeroAmount",
			args: args{userID: "u1", draft: ledger.Draft{
				Type: ledger.TypeExpense, Amount: decimal.Zero, Category: "식비", Date: date,
			}},
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name: "NegativeAmount",
			args: args{userID: "u1", draft: ledger.Draft{
				Type: ledger.TypeIncome, Amount: decimal.NewFromInt(-5), Category: "월급", Date: date,
			}},
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name: "UnknownType",
			args: args{userID: "u1", draft: ledger.Draft{
				Type: "transfer", Amount: decimal.NewFromInt(5), Category: "기타", Date: date,
			}},
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name:        "MissingUser",
			args:        args{draft: valid},
			wantErr:     true,
			wantInvalid: true,
		},
		{
			name: "RepoError",
			args: args{userID: "u1", draft: valid},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := ledger.NewService(repo)
			changes := recordChanges(svc)

			got, err := svc.AddTransaction(context.Background(), tt.args.userID, tt.args.draft)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				assert.Equal(t, tt.wantInvalid, apperr.IsValidation(err))
				assert.Empty(t, *changes)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, []change{{"u1", got.Date}}, *changes)
		})
	}
}

func TestService_AddTransactions(t *testing.T) {
	march := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	draft := func(date time.Time) ledger.Draft {
		return ledger.Draft{Type: ledger.TypeIncome, Amount: decimal.NewFromInt(1), Category: "용돈", Date: date}
	}

	t.Run("NotifiesOncePerMonth", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		repo.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(3)).Return(nil)

		svc := ledger.NewService(repo)
		changes := recordChanges(svc)

		got, err := svc.AddTransactions(context.Background(), "u1", []ledger.Draft{
			draft(march), draft(march.AddDate(0, 0, 5)), draft(april),
		})
		require.NoError(t, err)
		assert.Len(t, got, 3)
		assert.Equal(t, []change{{"u1", march}, {"u1", april}}, *changes)
	})

	t.Run("InvalidRowRejectsBatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := ledger.NewService(ledger.NewMockRepository(ctrl))

		bad := draft(march)
		bad.Amount = decimal.Zero

		_, err := svc.AddTransactions(context.Background(), "u1", []ledger.Draft{draft(march), bad})
		require.Error(t, err)
		assert.True(t, apperr.IsValidation(err))
		assert.Contains(t, err.Error(), "row 2")
	})

	t.Run("Empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := ledger.NewService(ledger.NewMockRepository(ctrl))

		got, err := svc.AddTransactions(context.Background(), "u1", nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestService_DeleteTransaction(t *testing.T) {
	id := uuid.New()
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	type testCase struct {
		name        string
		setupMock   func(m *ledger.MockRepository)
		wantErr     bool
		wantChanges int
	}

	tests := []testCase{
		{
			name: "Removed",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					DeleteTransaction(gomock.Any(), "u1", id).
					Return(&ledger.Transaction{ID: id, UserID: "u1", Date: date}, nil)
			},
			wantChanges: 1,
		},
		{
			name: "AlreadyGone",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().DeleteTransaction(gomock.Any(), "u1", id).Return(nil, nil)
			},
		},
		{
			name: "RepoError",
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					DeleteTransaction(gomock.Any(), "u1", id).
					Return(nil, apperr.Persistence("deleting transaction", errors.New("db error")))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := ledger.NewService(repo)
			changes := recordChanges(svc)

			err := svc.DeleteTransaction(context.Background(), "u1", id)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, apperr.IsPersistence(err))

				return
			}

			require.NoError(t, err)
			assert.Len(t, *changes, tt.wantChanges)
		})
	}
}

func TestService_PutAssetSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	t.Run("Success", func(t *testing.T) {
		repo.EXPECT().
			PutAssetSnapshot(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, s *ledger.AssetSnapshot) error {
				assert.Equal(t, "u1", s.UserID)
				assert.False(t, s.LastUpdated.IsZero())

				return nil
			})

		got, err := svc.PutAssetSnapshot(context.Background(), "u1", ledger.AssetSnapshot{
			Cash:        decimal.NewFromInt(1_000_000),
			Investments: decimal.NewFromInt(500_000),
			Savings:     decimal.NewFromInt(200_000),
		})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1_700_000).Equal(got.Total()))
	})

	t.Run("Negative", func(t *testing.T) {
		_, err := svc.PutAssetSnapshot(context.Background(), "u1", ledger.AssetSnapshot{
			Cash: decimal.NewFromInt(-1),
		})
		require.Error(t, err)
		assert.True(t, apperr.IsValidation(err))
	})
}

func TestService_ListTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	r := ledger.MonthRange(2024, time.March)

	repo.EXPECT().
		ListTransactions(gomock.Any(), "u1", r).
		Return([]*ledger.Transaction{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	got, err := ledger.NewService(repo).ListTransactions(context.Background(), "u1", r)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDateRange(t *testing.T) {
	feb := ledger.MonthRange(2024, time.February)

	assert.True(t, feb.Contains(time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)))
	assert.False(t, feb.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, feb.Contains(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)))

	days := ledger.DaysRange(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC))
	assert.True(t, days.Contains(time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)))
	assert.False(t, days.Contains(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)))

	open := ledger.DaysRange(time.Time{}, time.Time{})
	assert.True(t, open.Contains(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)))
}
