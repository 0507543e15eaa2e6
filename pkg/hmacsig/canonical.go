package hmacsig

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
)

// CanonicalPayload serializes a request payload to the exact bytes covered by
// the signature. GET requests and empty payloads canonicalize to no bytes at
// all; everything else is JSON with HTML escaping disabled so forward slashes
// and non-ASCII characters survive as literal UTF-8, and numeric values stay
// numeric.
func CanonicalPayload(method string, payload any) ([]byte, error) {
	if strings.EqualFold(method, http.MethodGet) || isEmptyPayload(payload) {
		return nil, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}

	// json.Encoder terminates every value with a newline that is not part of
	// the canonical form.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func isEmptyPayload(payload any) bool {
	if payload == nil {
		return true
	}

	v := reflect.ValueOf(payload)
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
