package passreset

import (
	"context"

	"github.com/google/uuid"
)

// UserStorage defines the user operations the reset flow needs.
// Implementations return ErrUserNotFound for missing accounts.
type UserStorage interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error
}

// CodeStorage persists issued reset codes keyed by token hash.
// Implementations return ErrCodeNotFound for unknown hashes.
//
// ConsumeCode must be atomic: under concurrent redemption of the same token
// exactly one caller receives the code, every other caller gets
// ErrCodeNotFound. That atomicity is what makes a possession token
// single-use.
type CodeStorage interface {
	SaveCode(ctx context.Context, code *ResetCode) error
	GetCodeByHash(ctx context.Context, hash string) (*ResetCode, error)
	ConsumeCode(ctx context.Context, hash string) (*ResetCode, error)
}
