// Package passreset implements the two-phase password reset state machine:
// INIT issues a possession token delivered out-of-band, RESET redeems it to
// change the password, optionally gated by a TOTP second factor.
//
// Validation and execution are split into separate steps, and execution
// requires the intent value produced by validation:
//
//	intent, err := svc.ValidateInit(ctx, passreset.InitRequest{Email: email})
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//	    // field-scoped feedback, e.g. errs.Get("email")
//	}
//	ticket, err := svc.ExecuteInit(ctx, intent)
//
// Possession tokens are never stored; only sha256(token + "_reset_token")
// is persisted, keyed by hash. Redemption is single-use: the code store
// consumes a code atomically, so concurrent redemption attempts of the same
// token settle with exactly one winner.
//
// The OTP rule is conditional on the resolved account. When the account has
// two-factor enabled the reset request must carry a valid current TOTP code
// (SHA-256, 30-second step, 6 digits) and failures attach to the "otp" field;
// when it does not, the field is ignored.
//
// The service treats failures as two distinct classes: validation errors are
// field-keyed validator.ValidationErrors the caller renders back to the user,
// while storage and crypto failures propagate as operational errors and leave
// password and code state unchanged.
package passreset
