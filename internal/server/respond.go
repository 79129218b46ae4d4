package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/matzehuels/stammbaum/pkg/errors"
)

// maxBodySize caps request bodies. Family documents stay small; the largest
// legitimate payload is a preset-sized import.
const maxBodySize = 8 << 20

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain error codes to HTTP statuses. Invariant violations
// are 409: the request was well-formed but the domain rule forbids it, and
// the explanation is surfaced to the client rather than swallowed.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeValidation, errors.ErrCodeImport:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvariant:
		status = http.StatusConflict
	case errors.ErrCodeNetwork:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: code})
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodySize)
	defer func() { _, _ = io.Copy(io.Discard, body) }()

	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeValidation, err, "invalid request body")
	}
	return nil
}
