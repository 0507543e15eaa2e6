package passreset

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements UserStorage and CodeStorage on top of pgx.
//
// Expected schema:
//
//	CREATE TABLE users (
//	    id            UUID PRIMARY KEY,
//	    email         TEXT NOT NULL UNIQUE,
//	    username      TEXT NOT NULL,
//	    password_hash BYTEA,
//	    otp_secret    TEXT NOT NULL DEFAULT '',
//	    otp_enabled   BOOLEAN NOT NULL DEFAULT FALSE
//	);
//
//	CREATE TABLE reset_codes (
//	    hash       TEXT PRIMARY KEY,
//	    user_id    UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a store over an existing connection pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanUser(s.db.QueryRow(ctx,
		`SELECT id, email, username, otp_secret, otp_enabled FROM users WHERE lower(email) = lower($1)`,
		email,
	))
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.scanUser(s.db.QueryRow(ctx,
		`SELECT id, email, username, otp_secret, otp_enabled FROM users WHERE id = $1`,
		id,
	))
}

func (s *PostgresStore) scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.OTPSecret, &user.OTPEnabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`,
		userID, hash,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *PostgresStore) SaveCode(ctx context.Context, code *ResetCode) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO reset_codes (hash, user_id, created_at) VALUES ($1, $2, $3)`,
		code.Hash, code.UserID, code.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetCodeByHash(ctx context.Context, hash string) (*ResetCode, error) {
	var code ResetCode
	err := s.db.QueryRow(ctx,
		`SELECT hash, user_id, created_at FROM reset_codes WHERE hash = $1`,
		hash,
	).Scan(&code.Hash, &code.UserID, &code.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}

// ConsumeCode deletes and returns the code in one statement; the row lock
// taken by DELETE ... RETURNING guarantees at-most-once redemption under
// concurrent attempts.
func (s *PostgresStore) ConsumeCode(ctx context.Context, hash string) (*ResetCode, error) {
	var code ResetCode
	err := s.db.QueryRow(ctx,
		`DELETE FROM reset_codes WHERE hash = $1 RETURNING hash, user_id, created_at`,
		hash,
	).Scan(&code.Hash, &code.UserID, &code.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}
