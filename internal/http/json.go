package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"financeiro/internal/core"
	"financeiro/internal/log"
)

// errorResponse is the standard error payload for the API. Line points at
// the offending record of an import.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Line  int    `json:"line,omitempty"`
}

// toJSON writes a JSON response with status code.
func toJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeErr(w, http.StatusBadRequest, msg, "bad_request")
}

// writeStoreErr maps domain and store failures to responses.
func writeStoreErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	var (
		ve *core.ValidationError
		me *core.MalformedRecordError
	)
	switch {
	case errors.As(err, &ve):
		logger.InfoContext(ctx, "Rejected input",
			log.FieldOperation, op,
			log.FieldErrorType, log.ErrorTypeValidation,
			log.FieldError, err)
		toJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: ve.Msg, Code: log.ErrorTypeValidation, Line: ve.Line})
	case errors.As(err, &me):
		logger.InfoContext(ctx, "Rejected input",
			log.FieldOperation, op,
			log.FieldErrorType, log.ErrorTypeMalformed,
			log.FieldError, err)
		toJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: log.ErrorTypeMalformed, Line: me.Line})
	case errors.Is(err, core.ErrNotFound):
		writeErr(w, http.StatusNotFound, "entry not found", "not_found")
	case errors.Is(err, core.ErrStoreUnavailable):
		logger.ErrorContext(ctx, "Record store unavailable",
			log.FieldOperation, op,
			log.FieldErrorType, log.ErrorTypeUnavailable,
			log.FieldError, err)
		writeErr(w, http.StatusServiceUnavailable, "record store unavailable", log.ErrorTypeUnavailable)
	default:
		logger.ErrorContext(ctx, "Request failed",
			log.FieldOperation, op,
			log.FieldErrorType, log.ErrorTypeInternal,
			log.FieldError, err)
		writeErr(w, http.StatusInternalServerError, "internal error", log.ErrorTypeInternal)
	}
}
