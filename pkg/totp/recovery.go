package totp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"strings"
)

const (
	// recoveryCodeBytes gives each code 80 bits of entropy, 16 base32 chars.
	recoveryCodeBytes = 10
	recoveryGroupSize = 4
)

// GenerateRecoveryCodes mints single-use backup codes for accounts that would
// otherwise be locked out by a lost authenticator. Codes are base32 in
// hyphenated groups ("ABCD-EFGH-IJKL-MNOP") so they survive being read out
// loud or copied by hand.
func GenerateRecoveryCodes(count int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidRecoveryCodeCount
	}

	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	codes := make([]string, count)
	for i := range codes {
		raw := make([]byte, recoveryCodeBytes)
		if _, err := rand.Read(raw); err != nil {
			return nil, errors.Join(ErrFailedToGenerateRecoveryCode, err)
		}
		codes[i] = groupRecoveryCode(enc.EncodeToString(raw))
	}
	return codes, nil
}

func groupRecoveryCode(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/recoveryGroupSize)
	for i := 0; i < len(s); i += recoveryGroupSize {
		if i > 0 {
			b.WriteByte('-')
		}
		end := min(i+recoveryGroupSize, len(s))
		b.WriteString(s[i:end])
	}
	return b.String()
}

// normalizeRecoveryCode strips the formatting a user may or may not type
// back: case, hyphens and spaces carry no information.
func normalizeRecoveryCode(code string) string {
	code = strings.ToUpper(code)
	code = strings.ReplaceAll(code, "-", "")
	return strings.ReplaceAll(code, " ", "")
}

// HashRecoveryCode derives the storage hash of a recovery code. Only hashes
// are persisted, same as reset tokens.
func HashRecoveryCode(code string) string {
	sum := sha256.Sum256([]byte(normalizeRecoveryCode(code)))
	return hex.EncodeToString(sum[:])
}

// VerifyRecoveryCode compares a submitted code against its stored hash in
// constant time. Formatting differences do not fail the match.
func VerifyRecoveryCode(code, storedHash string) bool {
	return subtle.ConstantTimeCompare(
		[]byte(HashRecoveryCode(code)),
		[]byte(storedHash),
	) == 1
}
