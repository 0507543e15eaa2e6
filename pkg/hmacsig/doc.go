// Package hmacsig implements the HMAC request-signing protocol that
// authenticates API calls without ever transmitting the session secret.
//
// Each authenticated session holds input key material (IKM) shared between
// client and server. For every request the client:
//
//  1. canonicalizes the payload (empty for GET, JSON otherwise — HTML escaping
//     off, numbers stay numeric)
//  2. draws a fresh 32-byte random salt
//  3. derives a per-request key: HKDF-SHA256(ikm, salt, "HMAC|AuthenticationKey"),
//     32 bytes out
//  4. MACs the signing string
//
//     sha256_hex(payload) "\n" METHOD "+" uri "\n" date "\n" base64(salt)
//
//     with HMAC-SHA256 keyed by the hex encoding of the derived key
//  5. transmits "base64(mac),base64(salt)"
//
// The server repeats the derivation with the transmitted salt and compares in
// constant time. Binding method, URI, date and body hash into the signing
// string prevents replaying a signature against a different endpoint, verb,
// time or payload; the per-request salt means a leaked derived key is only
// good for the one request it signed.
//
//	sig, err := hmacsig.Sign(ikm, hmacsig.Request{
//	    Method:  "POST",
//	    URI:     "/api/v1/user/refresh",
//	    Date:    date,
//	    Payload: map[string]string{"refresh_token": refreshToken},
//	})
//
// Middleware wires verification into an HTTP stack. Authentication failures
// are uniform: the response never reveals whether the token or the signature
// was at fault.
package hmacsig
