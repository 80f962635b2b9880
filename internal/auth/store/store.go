package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/auth"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateAccount(ctx context.Context, a *auth.Account) error {
	query := `
		INSERT INTO accounts (email, password_hash, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query, a.Email, string(a.PasswordHash)).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return auth.ErrEmailTaken
		}

		return apperr.Persistence("creating account", err)
	}

	return nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*auth.Account, error) {
	query := `SELECT id, email, password_hash, created_at FROM accounts WHERE email = $1`

	var a auth.Account

	var hash string

	if err := s.db.QueryRowContext(ctx, query, email).Scan(&a.ID, &a.Email, &hash, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}

		return nil, apperr.Persistence("getting account", err)
	}

	a.PasswordHash = []byte(hash)

	return &a, nil
}
