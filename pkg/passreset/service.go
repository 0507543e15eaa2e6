package passreset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/totp"
	"github.com/dmitrymomot/authkit/pkg/validator"
)

// Ticket is the outcome of a successful init: the possession token to deliver
// to the user through an out-of-band channel.
type Ticket struct {
	Email string
	Token string
	User  *User
}

// InitIntent is a validated init request. It can only be obtained from
// ValidateInit, which makes "validate before execute" a property of the types
// rather than a calling convention.
type InitIntent struct {
	user  *User
	email string
}

// User returns the resolved account.
func (i *InitIntent) User() *User { return i.user }

// ResetIntent is a validated reset request, carrying the resolved account,
// the matched code and the vetted replacement password.
type ResetIntent struct {
	user     *User
	code     *ResetCode
	password string
}

// User returns the resolved account.
func (i *ResetIntent) User() *User { return i.user }

// DeliveryFunc hands a freshly issued ticket to an out-of-band channel,
// typically a mailer. Errors abort ExecuteInit.
type DeliveryFunc func(ctx context.Context, ticket *Ticket) error

// Service drives the two-phase password reset flow.
type Service struct {
	users      UserStorage
	codes      CodeStorage
	logger     *slog.Logger
	strength   validator.PasswordStrengthConfig
	bcryptCost int
	codeTTL    time.Duration
	deliver    DeliveryFunc
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPasswordStrength sets custom password strength requirements.
func WithPasswordStrength(config validator.PasswordStrengthConfig) Option {
	return func(s *Service) {
		s.strength = config
	}
}

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// WithCodeTTL bounds how long an issued code stays redeemable. Zero disables
// the age check (useful when the code store enforces its own TTL).
func WithCodeTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.codeTTL = ttl
	}
}

// WithDelivery sets the out-of-band delivery hook invoked on ExecuteInit.
func WithDelivery(fn DeliveryFunc) Option {
	return func(s *Service) {
		s.deliver = fn
	}
}

// NewService creates a password reset service over the given storages.
func NewService(users UserStorage, codes CodeStorage, opts ...Option) *Service {
	s := &Service{
		users:      users,
		codes:      codes,
		logger:     logger.NewDiscard(),
		strength:   validator.DefaultPasswordStrength(),
		bcryptCost: bcrypt.DefaultCost,
		codeTTL:    time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateInit checks an init request and resolves the target account.
// Failures come back as validator.ValidationErrors keyed by field; anything
// else is an operational error.
func (s *Service) ValidateInit(ctx context.Context, req InitRequest) (*InitIntent, error) {
	email := normalizeEmail(req.Email)

	if err := validator.Apply(
		validator.Required("email", email),
		validator.ValidEmail("email", email),
	); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			var errs validator.ValidationErrors
			errs.Add("email", "No account registered for this email address")
			return nil, errs
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	return &InitIntent{user: user, email: email}, nil
}

// ExecuteInit issues a possession token for the validated account, records
// its hash and hands the ticket to the delivery hook. The token itself is
// never persisted.
func (s *Service) ExecuteInit(ctx context.Context, intent *InitIntent) (*Ticket, error) {
	token, err := GenerateResetToken()
	if err != nil {
		return nil, err
	}

	code := &ResetCode{
		Hash:      HashResetToken(token),
		UserID:    intent.user.ID,
		CreatedAt: time.Now(),
	}
	if err := s.codes.SaveCode(ctx, code); err != nil {
		return nil, fmt.Errorf("failed to save reset code: %w", err)
	}

	ticket := &Ticket{Email: intent.email, Token: token, User: intent.user}

	if s.deliver != nil {
		if err := s.deliver(ctx, ticket); err != nil {
			return nil, errors.Join(ErrDeliveryFailed, err)
		}
	}

	s.logger.Info("password reset initiated",
		logger.UserID(intent.user.ID.String()),
		logger.Component("passreset"),
	)

	return ticket, nil
}

// ValidateReset checks a reset request: the possession token must match a
// live code, the passwords must agree and satisfy policy, and when the
// resolved account has two-factor enabled the OTP must be a valid current
// TOTP code. All failures are collected into field-keyed validation errors.
func (s *Service) ValidateReset(ctx context.Context, req ResetRequest) (*ResetIntent, error) {
	var errs validator.ValidationErrors

	user, code, err := s.resolveReset(ctx, req, &errs)
	if err != nil {
		return nil, err
	}

	if pwErr := validator.Apply(
		validator.Required("password", req.Password),
		validator.StrongPassword("password", req.Password, s.strength),
		validator.NotCommonPassword("password", req.Password),
		validator.EqualStrings("password_verify", req.PasswordVerify, req.Password),
	); pwErr != nil {
		errs = append(errs, validator.ExtractValidationErrors(pwErr)...)
	}

	// The OTP rule is conditional on the resolved account: required and
	// checked only when two-factor is enabled, ignored entirely otherwise.
	if user != nil && user.OTPEnabled {
		if strings.TrimSpace(req.OTP) == "" {
			errs.Add("otp", "OTP code is required")
		} else {
			ok, otpErr := totp.ValidateTOTP(user.OTPSecret, req.OTP)
			if otpErr != nil || !ok {
				errs.Add("otp", "Invalid OTP code")
			}
		}
	}

	if !errs.IsEmpty() {
		return nil, errs
	}

	return &ResetIntent{user: user, code: code, password: req.Password}, nil
}

// resolveReset locates the code and account a reset request targets,
// attaching field errors for anything the requester can fix and returning an
// error only for operational failures.
func (s *Service) resolveReset(ctx context.Context, req ResetRequest, errs *validator.ValidationErrors) (*User, *ResetCode, error) {
	if strings.TrimSpace(req.ResetToken) == "" {
		errs.Add("reset_token", "Reset token is required")
		return req.User, nil, nil
	}

	code, err := s.codes.GetCodeByHash(ctx, HashResetToken(req.ResetToken))
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			errs.Add("reset_token", "Invalid or already used reset token")
			return req.User, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to look up reset code: %w", err)
	}

	if s.codeTTL > 0 && time.Since(code.CreatedAt) > s.codeTTL {
		errs.Add("reset_token", "Reset token has expired")
		return req.User, nil, nil
	}

	user := req.User
	if user == nil {
		user, err = s.users.GetUserByID(ctx, code.UserID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				errs.Add("reset_token", "Invalid or already used reset token")
				return nil, nil, nil
			}
			return nil, nil, fmt.Errorf("failed to resolve user: %w", err)
		}
	} else if user.ID != code.UserID {
		// A pre-bound account must match the account the code was issued for.
		errs.Add("reset_token", "Invalid or already used reset token")
		return user, nil, nil
	}

	return user, code, nil
}

// ExecuteReset redeems the code and commits the new password. The code is
// consumed first through the store's atomic redemption, so a token can change
// a password at most once even under concurrent attempts; a second redemption
// fails with ErrCodeAlreadyUsed and leaves the password untouched. If the
// password write then fails, the consumed code is restored so the user keeps
// a retryable token instead of ending up with a spent token and an old
// password.
func (s *Service) ExecuteReset(ctx context.Context, intent *ResetIntent) error {
	code, err := s.codes.ConsumeCode(ctx, intent.code.Hash)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return ErrCodeAlreadyUsed
		}
		return fmt.Errorf("failed to consume reset code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(intent.password), s.bcryptCost)
	if err != nil {
		s.restoreCode(ctx, code)
		return errors.Join(ErrFailedToHashPassword, err)
	}

	if err := s.users.UpdatePasswordHash(ctx, intent.user.ID, hash); err != nil {
		s.restoreCode(ctx, code)
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("password reset completed",
		logger.UserID(intent.user.ID.String()),
		logger.Component("passreset"),
	)

	return nil
}

// restoreCode puts an already-consumed code back after a failed password
// write. Restore failures are logged, not returned: the caller already has
// the primary error and the code store keeps its original CreatedAt, so a
// restored code ages as if it was never touched.
func (s *Service) restoreCode(ctx context.Context, code *ResetCode) {
	if err := s.codes.SaveCode(ctx, code); err != nil {
		s.logger.Error("failed to restore reset code",
			logger.UserID(code.UserID.String()),
			logger.Error(err),
			logger.Component("passreset"),
		)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
