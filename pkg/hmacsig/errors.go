package hmacsig

import "errors"

var (
	ErrMissingKeyMaterial    = errors.New("missing input key material")
	ErrFailedToGenerateSalt  = errors.New("failed to generate signature salt")
	ErrFailedToDeriveKey     = errors.New("failed to derive authentication key")
	ErrInvalidPayload        = errors.New("payload is not serializable")
	ErrMalformedSignature    = errors.New("malformed signature string")
	ErrSignatureMismatch     = errors.New("signature mismatch")
	ErrMissingAuthentication = errors.New("missing authentication material")
	ErrDateOutOfWindow       = errors.New("request date outside accepted window")
)
