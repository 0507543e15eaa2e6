package user

import (
	"encoding/json"
	"net/http"
)

// envelope is the wire shape of every response: the HTTP status repeated in
// the body and the operation result under data. Validation failures add an
// errors map keyed by field.
type envelope struct {
	Status int                 `json:"status"`
	Data   any                 `json:"data"`
	Errors map[string][]string `json:"errors,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, env envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(env.Status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(env)
}

// respondData answers 200 with the operation result.
func respondData(w http.ResponseWriter, data any) {
	writeEnvelope(w, envelope{Status: http.StatusOK, Data: data})
}

// respondInvalid answers 200 with data:false and the field-keyed messages, the
// shape clients render as inline form feedback.
func respondInvalid(w http.ResponseWriter, errors map[string][]string) {
	writeEnvelope(w, envelope{Status: http.StatusOK, Data: false, Errors: errors})
}

func respondBadRequest(w http.ResponseWriter) {
	writeEnvelope(w, envelope{Status: http.StatusBadRequest, Data: nil})
}

func respondInternalError(w http.ResponseWriter) {
	writeEnvelope(w, envelope{Status: http.StatusInternalServerError, Data: nil})
}
