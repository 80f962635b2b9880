package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectTransactionColumns = `id, user_id, type, amount, category, date, memo, created_at`

// scanTransaction reads a row in selectTransactionColumns order.
func scanTransaction(s scanner) (*ledger.Transaction, error) {
	var tx ledger.Transaction

	var typeStr string

	var memo sql.NullString

	if err := s.Scan(&tx.ID, &tx.UserID, &typeStr, &tx.Amount, &tx.Category, &tx.Date, &memo, &tx.CreatedAt); err != nil {
		return nil, err
	}

	tx.Type = ledger.Type(typeStr)
	if !tx.Type.Valid() {
		return nil, fmt.Errorf("transaction %s has unknown type %q", tx.ID, typeStr)
	}

	if memo.Valid {
		tx.Memo = &memo.String
	}

	tx.Date = ledger.Day(tx.Date)

	return &tx, nil
}

func (s *Store) GetAssetSnapshot(ctx context.Context, userID string) (*ledger.AssetSnapshot, error) {
	query := `
		SELECT user_id, cash_balance, investment_total, saving_total, last_updated
		FROM assets
		WHERE user_id = $1`

	var a ledger.AssetSnapshot

	err := s.db.QueryRowContext(ctx, query, userID).
		Scan(&a.UserID, &a.Cash, &a.Investments, &a.Savings, &a.LastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}

		return nil, apperr.Persistence("getting asset snapshot", err)
	}

	return &a, nil
}

func (s *Store) PutAssetSnapshot(ctx context.Context, a *ledger.AssetSnapshot) error {
	query := `
		INSERT INTO assets (user_id, cash_balance, investment_total, saving_total, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			cash_balance = EXCLUDED.cash_balance,
			investment_total = EXCLUDED.investment_total,
			saving_total = EXCLUDED.saving_total,
			last_updated = EXCLUDED.last_updated`

	_, err := s.db.ExecContext(ctx, query, a.UserID, a.Cash, a.Investments, a.Savings, a.LastUpdated)

	return apperr.Persistence("putting asset snapshot", err)
}

func (s *Store) ListTransactions(ctx context.Context, userID string, r ledger.DateRange) ([]*ledger.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND deleted_at IS NULL`

	args := []any{userID}

	if !r.Start.IsZero() {
		args = append(args, r.Start)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}

	if !r.End.IsZero() {
		args = append(args, r.End)
		query += fmt.Sprintf(" AND date < $%d", len(args))
	}

	query += " ORDER BY date DESC, created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Persistence("listing transactions", err)
	}
	defer rows.Close()

	var txs []*ledger.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, apperr.Persistence("scanning transaction", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("listing transactions", err)
	}

	return txs, nil
}

func insertTransaction(ctx context.Context, q rowQuerier, tx *ledger.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, type, amount, category, date, memo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at`

	return q.QueryRowContext(ctx, query,
		tx.UserID,
		string(tx.Type),
		tx.Amount,
		tx.Category,
		tx.Date,
		tx.Memo,
	).Scan(&tx.ID, &tx.CreatedAt)
}

func (s *Store) CreateTransaction(ctx context.Context, tx *ledger.Transaction) error {
	return apperr.Persistence("creating transaction", insertTransaction(ctx, s.db, tx))
}

func batchLockKey(userID string) int64 {
	h := fnv.New64a()
	h.Write([]byte("transactions:"))
	h.Write([]byte(userID))

	return int64(h.Sum64())
}

// CreateTransactions inserts the batch in a single database transaction.
// Batches of the same user are serialized with an advisory lock.
func (s *Store) CreateTransactions(ctx context.Context, txs []*ledger.Transaction) (err error) {
	if len(txs) == 0 {
		return nil
	}

	defer func() {
		if err != nil {
			for _, t := range txs {
				t.ID = uuid.Nil
			}
		}
	}()

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Persistence("beginning transaction", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", batchLockKey(txs[0].UserID)); err != nil {
		return apperr.Persistence("acquiring batch lock", err)
	}

	for _, tx := range txs {
		if err := insertTransaction(ctx, dbTx, tx); err != nil {
			return apperr.Persistence("creating transactions", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return apperr.Persistence("committing transactions", err)
	}

	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID string, id uuid.UUID) (*ledger.Transaction, error) {
	query := `
		UPDATE transactions
		SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		RETURNING ` + selectTransactionColumns

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, apperr.Persistence("deleting transaction", err)
	}

	return tx, nil
}
