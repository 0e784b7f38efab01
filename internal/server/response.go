package server

import (
	"encoding/json"
	"net/http"

	"github.com/deckforge/deckforge/pkg/errors"
)

// errorBody is the JSON envelope for failed requests.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusForCode(code)
	if status >= 500 {
		s.logger.Error("request failed", "code", code, "err", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    string(code),
		Message: errors.UserMessage(err),
	}})
}

func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidColor,
		errors.ErrCodeInvalidSelector, errors.ErrCodeInvalidPart,
		errors.ErrCodeOutOfRange, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInconsistent:
		return http.StatusConflict
	case errors.ErrCodeCorruptArchive:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeStorage:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// decodeBody parses the JSON request body into v. A false return means
// the error response has already been written.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return false
	}
	return true
}
