package hmacsig

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// SaltSize is the number of random bytes drawn for every signature.
	SaltSize = 32

	// DerivedKeySize pins the HKDF output to the SHA-256 digest length.
	DerivedKeySize = 32

	// AuthInfo is the fixed HKDF context string binding derived keys to
	// request authentication.
	AuthInfo = "HMAC|AuthenticationKey"
)

// Request describes the parts of an HTTP request covered by a signature.
// Payload may be any JSON-serializable value; it is canonicalized before
// hashing so client and server agree on the exact bytes.
type Request struct {
	Method  string
	URI     string
	Date    string
	Payload any
}

// Signer produces request signatures from a session's input key material.
// The zero value is not usable; construct with NewSigner.
type Signer struct {
	rand io.Reader
}

// SignerOption configures a Signer.
type SignerOption func(*Signer)

// WithRand overrides the salt source. Tests use it to pin salts; production
// code should leave the crypto/rand default in place.
func WithRand(r io.Reader) SignerOption {
	return func(s *Signer) {
		if r != nil {
			s.rand = r
		}
	}
}

// NewSigner creates a Signer drawing salts from crypto/rand by default.
func NewSigner(opts ...SignerOption) *Signer {
	s := &Signer{rand: rand.Reader}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign authenticates the request with a fresh 32-byte salt and a key derived
// from ikm via HKDF-SHA256. The result is "base64(mac),base64(salt)".
//
// The salt is never reused: every call draws a new one, so signing the same
// request twice yields two different signatures.
func (s *Signer) Sign(ikm []byte, req Request) (string, error) {
	if len(ikm) == 0 {
		return "", ErrMissingKeyMaterial
	}

	payload, err := CanonicalPayload(req.Method, req.Payload)
	if err != nil {
		return "", err
	}

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(s.rand, salt); err != nil {
		return "", errors.Join(ErrFailedToGenerateSalt, err)
	}

	mac, err := computeMAC(ikm, salt, req.Method, req.URI, req.Date, payload)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(mac) + "," + base64.StdEncoding.EncodeToString(salt), nil
}

// Sign is a convenience wrapper using a default Signer.
func Sign(ikm []byte, req Request) (string, error) {
	return NewSigner().Sign(ikm, req)
}

// signingString builds the canonical four-line string covered by the MAC:
// payload hash, method+uri, date, salt.
func signingString(method, uri, date string, payload, salt []byte) []byte {
	payloadHash := sha256.Sum256(payload)

	out := make([]byte, 0, len(payloadHash)*2+len(method)+len(uri)+len(date)+base64.StdEncoding.EncodedLen(len(salt))+4)
	out = append(out, hex.EncodeToString(payloadHash[:])...)
	out = append(out, '\n')
	out = append(out, method...)
	out = append(out, '+')
	out = append(out, uri...)
	out = append(out, '\n')
	out = append(out, date...)
	out = append(out, '\n')
	out = append(out, base64.StdEncoding.EncodeToString(salt)...)
	return out
}

// computeMAC derives the per-request key and MACs the signing string. The
// derived key is hex-encoded before use as the HMAC key; that is part of the
// wire protocol, not an implementation detail.
func computeMAC(ikm, salt []byte, method, uri, date string, payload []byte) ([]byte, error) {
	kdf := hkdf.New(sha256.New, ikm, salt, []byte(AuthInfo))
	derived := make([]byte, DerivedKeySize)
	if _, err := io.ReadFull(kdf, derived); err != nil {
		return nil, errors.Join(ErrFailedToDeriveKey, err)
	}

	mac := hmac.New(sha256.New, []byte(hex.EncodeToString(derived)))
	mac.Write(signingString(method, uri, date, payload, salt))
	return mac.Sum(nil), nil
}
