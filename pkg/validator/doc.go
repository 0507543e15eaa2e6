// Package validator provides a lightweight rule-based validation engine that
// produces field-scoped errors suitable for rendering web form feedback.
//
// Validation is expressed as a flat list of rules applied in order:
//
//	err := validator.Apply(
//	    validator.Required("email", email),
//	    validator.ValidEmail("email", email),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//	    // errs.Map() -> {"email": ["Must be a valid email address"]}
//	}
//
// Rules never panic and never perform I/O; conditional rules (for example an
// OTP code that is only required when a user has two-factor enabled) are built
// by the caller deciding which rules to pass to Apply.
package validator
