package hmacsig

import (
	"crypto/hmac"
	"encoding/base64"
	"strings"
)

// ParseSignature splits a "base64(mac),base64(salt)" signature string into its
// raw components. Both segments must be valid standard base64 and the salt
// must be exactly SaltSize bytes.
func ParseSignature(signature string) (mac, salt []byte, err error) {
	parts := strings.Split(signature, ",")
	if len(parts) != 2 {
		return nil, nil, ErrMalformedSignature
	}

	mac, err = base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(mac) == 0 {
		return nil, nil, ErrMalformedSignature
	}

	salt, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(salt) != SaltSize {
		return nil, nil, ErrMalformedSignature
	}

	return mac, salt, nil
}

// Verify recomputes the signature for req with the salt transmitted in
// signature and compares MACs in constant time. It returns nil only when the
// request bytes, date, method, URI and ikm all match what was signed.
func Verify(ikm []byte, req Request, signature string) error {
	payload, err := CanonicalPayload(req.Method, req.Payload)
	if err != nil {
		return err
	}
	return VerifyRaw(ikm, req.Method, req.URI, req.Date, payload, signature)
}

// VerifyRaw verifies a signature over an already-serialized payload, which is
// what a server has in hand when the request body arrives on the wire. GET
// requests are verified with an empty payload regardless of body.
func VerifyRaw(ikm []byte, method, uri, date string, payload []byte, signature string) error {
	if len(ikm) == 0 {
		return ErrMissingKeyMaterial
	}

	mac, salt, err := ParseSignature(signature)
	if err != nil {
		return err
	}

	if strings.EqualFold(method, "GET") {
		payload = nil
	}

	expected, err := computeMAC(ikm, salt, method, uri, date, payload)
	if err != nil {
		return err
	}

	if !hmac.Equal(mac, expected) {
		return ErrSignatureMismatch
	}

	return nil
}
