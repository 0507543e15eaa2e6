package passreset_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authkit/pkg/passreset"
	"github.com/dmitrymomot/authkit/pkg/totp"
	"github.com/dmitrymomot/authkit/pkg/validator"
)

const strongPassword = "correct-horse-battery-staple-42"

func newTestUser(t *testing.T, otpEnabled bool) *passreset.User {
	t.Helper()

	user := &passreset.User{
		ID:       uuid.New(),
		Email:    "alice@example.com",
		Username: "alice",
	}
	if otpEnabled {
		secret, err := totp.GenerateSecretKey()
		require.NoError(t, err)
		user.OTPSecret = secret
		user.OTPEnabled = true
	}
	return user
}

// issueCode runs the full init phase and returns the possession token.
func issueCode(t *testing.T, svc *passreset.Service, email string) string {
	t.Helper()

	intent, err := svc.ValidateInit(context.Background(), passreset.InitRequest{Email: email})
	require.NoError(t, err)

	ticket, err := svc.ExecuteInit(context.Background(), intent)
	require.NoError(t, err)
	require.NotEmpty(t, ticket.Token)
	return ticket.Token
}

func TestValidateInit(t *testing.T) {
	t.Parallel()

	t.Run("existing user", func(t *testing.T) {
		t.Parallel()

		store := passreset.NewMemoryStore()
		user := newTestUser(t, false)
		store.PutUser(user)
		svc := passreset.NewService(store, store)

		intent, err := svc.ValidateInit(context.Background(), passreset.InitRequest{Email: user.Email})
		require.NoError(t, err)
		assert.Equal(t, user.ID, intent.User().ID)
	})

	t.Run("email is normalized", func(t *testing.T) {
		t.Parallel()

		store := passreset.NewMemoryStore()
		store.PutUser(newTestUser(t, false))
		svc := passreset.NewService(store, store)

		_, err := svc.ValidateInit(context.Background(), passreset.InitRequest{Email: "  ALICE@example.com "})
		assert.NoError(t, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()

		store := passreset.NewMemoryStore()
		svc := passreset.NewService(store, store)

		_, err := svc.ValidateInit(context.Background(), passreset.InitRequest{Email: "nobody@example.com"})
		errs := validator.ExtractValidationErrors(err)
		require.NotNil(t, errs)
		assert.True(t, errs.Has("email"))
	})

	t.Run("malformed email", func(t *testing.T) {
		t.Parallel()

		store := passreset.NewMemoryStore()
		svc := passreset.NewService(store, store)

		_, err := svc.ValidateInit(context.Background(), passreset.InitRequest{Email: "not-an-email"})
		errs := validator.ExtractValidationErrors(err)
		require.NotNil(t, errs)
		assert.True(t, errs.Has("email"))
	})

	t.Run("storage failure is operational", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStorage{}
		codes := &MockCodeStorage{}
		users.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(nil, errors.New("db down"))

		svc := passreset.NewService(users, codes)
		_, err := svc.ValidateInit(context.Background(), passreset.InitRequest{Email: "alice@example.com"})
		require.Error(t, err)
		assert.False(t, validator.IsValidationError(err))
	})
}

func TestExecuteInit(t *testing.T) {
	t.Parallel()

	t.Run("persists hashed code", func(t *testing.T) {
		t.Parallel()

		store := passreset.NewMemoryStore()
		user := newTestUser(t, false)
		store.PutUser(user)
		svc := passreset.NewService(store, store)

		token := issueCode(t, svc, user.Email)

		code, err := store.GetCodeByHash(context.Background(), passreset.HashResetToken(token))
		require.NoError(t, err)
		assert.Equal(t, user.ID, code.UserID)
	})

	t.Run("invokes delivery hook", func(t *testing.T) {
		t.Parallel()

		store := passreset.NewMemoryStore()
		user := newTestUser(t, false)
		store.PutUser(user)

		var delivered *passreset.Ticket
		svc := passreset.NewService(store, store, passreset.WithDelivery(
			func(_ context.Context, ticket *passreset.Ticket) error {
				delivered = ticket
				return nil
			},
		))

		token := issueCode(t, svc, user.Email)
		require.NotNil(t, delivered)
		assert.Equal(t, token, delivered.Token)
		assert.Equal(t, user.Email, delivered.Email)
	})

	t.Run("delivery failure aborts", func(t *testing.T) {
		t.Parallel()

		store := passreset.NewMemoryStore()
		user := newTestUser(t, false)
		store.PutUser(user)

		svc := passreset.NewService(store, store, passreset.WithDelivery(
			func(context.Context, *passreset.Ticket) error { return errors.New("smtp down") },
		))

		intent, err := svc.ValidateInit(context.Background(), passreset.InitRequest{Email: user.Email})
		require.NoError(t, err)

		_, err = svc.ExecuteInit(context.Background(), intent)
		assert.ErrorIs(t, err, passreset.ErrDeliveryFailed)
	})
}

func TestValidateReset(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T, otpEnabled bool, opts ...passreset.Option) (*passreset.MemoryStore, *passreset.Service, *passreset.User, string) {
		t.Helper()
		store := passreset.NewMemoryStore()
		user := newTestUser(t, otpEnabled)
		store.PutUser(user)
		svc := passreset.NewService(store, store, opts...)
		token := issueCode(t, svc, user.Email)
		return store, svc, user, token
	}

	t.Run("valid token resolves user", func(t *testing.T) {
		t.Parallel()
		_, svc, user, token := setup(t, false)

		intent, err := svc.ValidateReset(context.Background(), passreset.ResetRequest{
			ResetToken:     token,
			Password:       strongPassword,
			PasswordVerify: strongPassword,
		})
		require.NoError(t, err)
		assert.Equal(t, user.ID, intent.User().ID)
	})

	t.Run("pre-bound user accepted", func(t *testing.T) {
		t.Parallel()
		_, svc, user, token := setup(t, false)

		_, err := svc.ValidateReset(context.Background(), passreset.ResetRequest{
			ResetToken:     token,
			Password:       strongPassword,
			PasswordVerify: strongPassword,
			User:           user,
		})
		assert.NoError(t, err)
	})

	t.Run("pre-bound user must match code owner", func(t *testing.T) {
		t.Parallel()
		_, svc, _, token := setup(t, false)

		other := newTestUser(t, false)
		other.Email = "bob@example.com"

		_, err := svc.ValidateReset(context.Background(), passreset.ResetRequest{
			ResetToken:     token,
			Password:       strongPassword,
			PasswordVerify: strongPassword,
			User:           other,
		})
		errs := validator.ExtractValidationErrors(err)
		require.NotNil(t, errs)
		assert.True(t, errs.Has("reset_token"))
	})

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()
		_, svc, _, _ := setup(t, false)

		_, err := svc.ValidateReset(context.Background(), passreset.ResetRequest{
			ResetToken:     "bogus",
			Password:       strongPassword,
			PasswordVerify: strongPassword,
		})
		errs := validator.ExtractValidationErrors(err)
		require.NotNil(t, errs)
		assert.True(t, errs.Has("reset_token"))
	})

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()
		_, svc, _, _ := setup(t, false)

		_, err := svc.ValidateReset(context.Background(), passreset.ResetRequest{
			Password:       strongPassword,
			PasswordVerify: strongPassword,
		})
		errs := validator.ExtractValidationErrors(err)
		require.NotNil(t, errs)
		assert.True(t, errs.Has("reset_token"))
	})

	t.Run("expired code", func(t *testing.T) {
		t.Parallel()
		_, svc, _, token := setup(t, false, passreset.WithCodeTTL(time.Nanosecond))

		time.Sleep(10 * time.Millisecond)
		_, err := svc.ValidateReset(context.Background(), passreset.ResetRequest{
			ResetToken:     token,
			Password:       strongPassword,
			PasswordVerify: strongPassword,
		})
		errs := validator.ExtractValidationErrors(err)
		require.NotNil(t, errs)
		assert.True(t, errs.Has("reset_token"))
	})

	t.Run("password mismatch", func(t *testing.T) {
		t.Parallel()
		_, svc, _, token := setup(t, false)

		_, err := svc.ValidateReset(context.Background(), passreset.ResetRequest{
			ResetToken:     token,
			Password:       strongPassword,
			PasswordVerify: strongPassword + "x",
		})
		errs := validator.ExtractValidationErrors(err)
		require.NotNil(t, errs)
		assert.True(t, errs.Has("password_verify"))
	})

	t.Run("weak password", func(t *testing.T) {
		t.Parallel()
		_, svc, _, token := setup(t, false)

		_, err := svc.ValidateReset(context.Background(), passreset.ResetRequest{
			ResetToken:     token,
			Password:       "short",
			PasswordVerify: "short",
		})
		errs := validator.ExtractValidationErrors(err)
		require.NotNil(t, errs)
		assert.True(t, errs.Has("password"))
	})

	t.Run("otp required when enabled", func(t *testing.T) {
		t.Parallel()
		_, svc, _, token := setup(t, true)

		_, err := svc.ValidateReset(context.Background(), passreset.ResetRequest{
			ResetToken:     token,
			Password:       strongPassword,
			PasswordVerify: strongPassword,
		})
		errs := validator.ExtractValidationErrors(err)
		require.NotNil(t, errs)
		assert.True(t, errs.Has("otp"))
	})

	t.Run("wrong otp rejected", func(t *testing.T) {
		t.Parallel()
		_, svc, _, token := setup(t, true)

		_, err := svc.ValidateReset(context.Background(), passreset.ResetRequest{
			ResetToken:     token,
			Password:       strongPassword,
			PasswordVerify: strongPassword,
			OTP:            "000000",
		})
		errs := validator.ExtractValidationErrors(err)
		require.NotNil(t, errs)
		assert.True(t, errs.Has("otp"))
	})

	t.Run("valid otp accepted", func(t *testing.T) {
		t.Parallel()
		_, svc, user, token := setup(t, true)

		code, err := totp.GenerateTOTP(user.OTPSecret)
		require.NoError(t, err)

		_, err = svc.ValidateReset(context.Background(), passreset.ResetRequest{
			ResetToken:     token,
			Password:       strongPassword,
			PasswordVerify: strongPassword,
			OTP:            code,
		})
		assert.NoError(t, err)
	})

	t.Run("otp ignored when disabled", func(t *testing.T) {
		t.Parallel()
		_, svc, _, token := setup(t, false)

		_, err := svc.ValidateReset(context.Background(), passreset.ResetRequest{
			ResetToken:     token,
			Password:       strongPassword,
			PasswordVerify: strongPassword,
			OTP:            "whatever",
		})
		assert.NoError(t, err)
	})
}

func TestExecuteReset(t *testing.T) {
	t.Parallel()

	t.Run("changes password and consumes code", func(t *testing.T) {
		t.Parallel()

		store := passreset.NewMemoryStore()
		user := newTestUser(t, false)
		store.PutUser(user)
		svc := passreset.NewService(store, store, passreset.WithBcryptCost(bcrypt.MinCost))
		token := issueCode(t, svc, user.Email)

		req := passreset.ResetRequest{
			ResetToken:     token,
			Password:       strongPassword,
			PasswordVerify: strongPassword,
		}
		intent, err := svc.ValidateReset(context.Background(), req)
		require.NoError(t, err)
		require.NoError(t, svc.ExecuteReset(context.Background(), intent))

		hash := store.PasswordHash(user.ID)
		require.NotEmpty(t, hash)
		assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte(strongPassword)))

		// The token is spent: validation now fails.
		_, err = svc.ValidateReset(context.Background(), req)
		errs := validator.ExtractValidationErrors(err)
		require.NotNil(t, errs)
		assert.True(t, errs.Has("reset_token"))
	})

	t.Run("replaying a stale intent fails", func(t *testing.T) {
		t.Parallel()

		store := passreset.NewMemoryStore()
		user := newTestUser(t, false)
		store.PutUser(user)
		svc := passreset.NewService(store, store, passreset.WithBcryptCost(bcrypt.MinCost))
		token := issueCode(t, svc, user.Email)

		intent, err := svc.ValidateReset(context.Background(), passreset.ResetRequest{
			ResetToken:     token,
			Password:       strongPassword,
			PasswordVerify: strongPassword,
		})
		require.NoError(t, err)
		require.NoError(t, svc.ExecuteReset(context.Background(), intent))

		assert.ErrorIs(t, svc.ExecuteReset(context.Background(), intent), passreset.ErrCodeAlreadyUsed)
	})

	t.Run("failed password write restores the code", func(t *testing.T) {
		t.Parallel()

		codes := passreset.NewMemoryStore()
		users := &MockUserStorage{}
		user := newTestUser(t, false)

		token, err := passreset.GenerateResetToken()
		require.NoError(t, err)
		hash := passreset.HashResetToken(token)
		require.NoError(t, codes.SaveCode(context.Background(), &passreset.ResetCode{
			Hash:      hash,
			UserID:    user.ID,
			CreatedAt: time.Now(),
		}))

		users.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
		users.On("UpdatePasswordHash", mock.Anything, user.ID, mock.Anything).Return(errors.New("db down"))

		svc := passreset.NewService(users, codes, passreset.WithBcryptCost(bcrypt.MinCost))
		req := passreset.ResetRequest{
			ResetToken:     token,
			Password:       strongPassword,
			PasswordVerify: strongPassword,
		}
		intent, err := svc.ValidateReset(context.Background(), req)
		require.NoError(t, err)

		err = svc.ExecuteReset(context.Background(), intent)
		require.Error(t, err)
		assert.False(t, validator.IsValidationError(err))

		// Neither half of the operation applied: the code is back in the
		// store with its original timestamp and the token stays redeemable.
		restored, err := codes.GetCodeByHash(context.Background(), hash)
		require.NoError(t, err)
		assert.Equal(t, user.ID, restored.UserID)

		_, err = svc.ValidateReset(context.Background(), req)
		assert.NoError(t, err)
	})

	t.Run("failed write against mocked code store restores via SaveCode", func(t *testing.T) {
		t.Parallel()

		users := &MockUserStorage{}
		codes := &MockCodeStorage{}
		user := newTestUser(t, false)

		token, err := passreset.GenerateResetToken()
		require.NoError(t, err)
		code := &passreset.ResetCode{Hash: passreset.HashResetToken(token), UserID: user.ID, CreatedAt: time.Now()}

		codes.On("GetCodeByHash", mock.Anything, code.Hash).Return(code, nil)
		codes.On("ConsumeCode", mock.Anything, code.Hash).Return(code, nil)
		codes.On("SaveCode", mock.Anything, code).Return(nil)
		users.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
		users.On("UpdatePasswordHash", mock.Anything, user.ID, mock.Anything).Return(errors.New("db down"))

		svc := passreset.NewService(users, codes, passreset.WithBcryptCost(bcrypt.MinCost))
		intent, err := svc.ValidateReset(context.Background(), passreset.ResetRequest{
			ResetToken:     token,
			Password:       strongPassword,
			PasswordVerify: strongPassword,
		})
		require.NoError(t, err)

		require.Error(t, svc.ExecuteReset(context.Background(), intent))
		codes.AssertCalled(t, "SaveCode", mock.Anything, code)
	})
}

func TestConsumeCodeAtMostOnce(t *testing.T) {
	t.Parallel()

	store := passreset.NewMemoryStore()
	token, err := passreset.GenerateResetToken()
	require.NoError(t, err)
	hash := passreset.HashResetToken(token)

	require.NoError(t, store.SaveCode(context.Background(), &passreset.ResetCode{
		Hash:      hash,
		UserID:    uuid.New(),
		CreatedAt: time.Now(),
	}))

	const attempts = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.ConsumeCode(context.Background(), hash); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1)
}

func TestHashResetToken(t *testing.T) {
	t.Parallel()

	// Known vector: sha256("token_reset_token")
	assert.Equal(t,
		"fabe8c761d715103c11fc5720d55f053be2ae61f0fa0a73dc27f745edc771347",
		passreset.HashResetToken("token"),
	)

	assert.NotEqual(t, passreset.HashResetToken("a"), passreset.HashResetToken("b"))
}

func TestGenerateResetToken(t *testing.T) {
	t.Parallel()

	token, err := passreset.GenerateResetToken()
	require.NoError(t, err)
	assert.Regexp(t, "^[A-Z2-7]+$", token)

	other, err := passreset.GenerateResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
