// Package totp implements the time-based one-time-password second factor used
// by the password reset flow: RFC 4226 HOTP truncation with a pluggable HMAC
// algorithm, RFC 6238 time windows, and the supporting lifecycle around it.
//
// The deployment contract is HMAC-SHA256, 6 digits, 30-second steps; those are
// the package defaults and the only parameters ValidateTOTP accepts. The lower
// level GenerateHOTP takes an explicit hash constructor for SHA-1/SHA-512
// interoperability testing.
//
// Beyond code generation and validation the package covers:
//
//   - secret lifecycle: GenerateSecretKey, AES-256-GCM EncryptSecret /
//     DecryptSecret with the key loaded from TOTP_ENCRYPTION_KEY
//   - onboarding: ProvisioningURI plus QR rendering via ProvisioningQRCode
//   - fallback: single-use recovery codes (GenerateRecoveryCodes,
//     HashRecoveryCode, VerifyRecoveryCode)
//
// Validation accepts codes from the previous, current and next window to
// tolerate client clock drift.
//
// Errors are package-level sentinels joined with their causes; inspect them
// with errors.Is against ErrInvalidSecret, ErrInvalidOTP and friends.
package totp
