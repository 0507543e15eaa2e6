package passreset_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/authkit/pkg/passreset"
)

// MockUserStorage is a mock implementation of UserStorage.
type MockUserStorage struct {
	mock.Mock
}

func (m *MockUserStorage) GetUserByEmail(ctx context.Context, email string) (*passreset.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*passreset.User), args.Error(1)
}

func (m *MockUserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*passreset.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*passreset.User), args.Error(1)
}

func (m *MockUserStorage) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error {
	args := m.Called(ctx, userID, hash)
	return args.Error(0)
}

// MockCodeStorage is a mock implementation of CodeStorage.
type MockCodeStorage struct {
	mock.Mock
}

func (m *MockCodeStorage) SaveCode(ctx context.Context, code *passreset.ResetCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCodeStorage) GetCodeByHash(ctx context.Context, hash string) (*passreset.ResetCode, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*passreset.ResetCode), args.Error(1)
}

func (m *MockCodeStorage) ConsumeCode(ctx context.Context, hash string) (*passreset.ResetCode, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*passreset.ResetCode), args.Error(1)
}
