package passreset

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

// resetTokenContext is the domain-separation suffix mixed into every stored
// token hash. It is part of the persisted format; changing it invalidates all
// outstanding reset codes.
const resetTokenContext = "_reset_token"

// resetTokenBytes gives possession tokens 512 bits of entropy.
const resetTokenBytes = 64

// User is the account a reset operates on. The reset flow consumes it but
// does not own it; the password hash and OTP settings live with the caller's
// user storage.
type User struct {
	ID         uuid.UUID
	Email      string
	Username   string
	OTPSecret  string // Base32 TOTP secret, only meaningful when OTPEnabled
	OTPEnabled bool
}

// ResetCode is the persisted record of an issued possession token. Only the
// hash is stored; the token itself travels out-of-band to the user.
type ResetCode struct {
	Hash      string
	UserID    uuid.UUID
	CreatedAt time.Time
}

// InitRequest starts a reset: the user identifies the account by email.
type InitRequest struct {
	Email string
}

// ResetRequest completes a reset with the possession token delivered
// out-of-band. OTP is required only when the resolved account has two-factor
// enabled. User optionally pre-binds the target account, in which case the
// token must still match a code issued for that same account.
type ResetRequest struct {
	ResetToken     string
	Password       string
	PasswordVerify string
	OTP            string
	User           *User
}

// GenerateResetToken mints a new possession token: 64 random bytes, Base32
// encoded so it survives copy-paste and URL transport.
func GenerateResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrFailedToGenerateToken, err)
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(b), nil
}

// HashResetToken derives the storage hash for a possession token:
// sha256_hex(token + "_reset_token").
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token + resetTokenContext))
	return hex.EncodeToString(sum[:])
}
