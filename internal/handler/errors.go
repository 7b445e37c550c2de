package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/parikshasarathi/sarathi/internal/exam"
	appI18n "github.com/parikshasarathi/sarathi/internal/i18n"
	"github.com/parikshasarathi/sarathi/internal/model"
	"github.com/parikshasarathi/sarathi/internal/store"
)

// ErrCode is a typed error code for API clients.
type ErrCode string

const (
	ErrValidation        ErrCode = "VALIDATION_ERROR"
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrInvalidPayload    ErrCode = "INVALID_PAYLOAD"
	ErrSessionNotRunning ErrCode = "SESSION_NOT_RUNNING"
	ErrIndexRange        ErrCode = "INDEX_OUT_OF_RANGE"
	ErrOptionRange       ErrCode = "OPTION_OUT_OF_RANGE"
	ErrResultPending     ErrCode = "RESULT_PENDING"
	ErrUnknownAction     ErrCode = "UNKNOWN_ACTION"
	ErrInternal          ErrCode = "INTERNAL_ERROR"
)

// messageIDs maps codes to locale message IDs.
var messageIDs = map[ErrCode]string{
	ErrValidation:        "ErrValidation",
	ErrNotFound:          "ErrNotFound",
	ErrInvalidPayload:    "ErrInvalidPayload",
	ErrSessionNotRunning: "ErrSessionNotRunning",
	ErrIndexRange:        "ErrIndexRange",
	ErrOptionRange:       "ErrOptionRange",
	ErrResultPending:     "ErrResultPending",
	ErrInternal:          "ErrInternal",
}

// ErrorBody is the JSON body of every failed API call.
type ErrorBody struct {
	Code    ErrCode           `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeFail(w http.ResponseWriter, r *http.Request, status int, code ErrCode, fields map[string]string) {
	writeJSON(w, status, ErrorBody{
		Code:    code,
		Message: appI18n.T(r.Context(), messageIDs[code]),
		Fields:  fields,
	})
}

// writeError maps domain errors to status codes and error codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *model.ValidationError
		se *json.SyntaxError
		te *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &ve):
		writeFail(w, r, http.StatusUnprocessableEntity, ErrValidation, ve.Fields)
	case errors.As(err, &se), errors.As(err, &te):
		writeFail(w, r, http.StatusBadRequest, ErrInvalidPayload, nil)
	case errors.Is(err, store.ErrNotFound), errors.Is(err, exam.ErrSessionNotFound):
		writeFail(w, r, http.StatusNotFound, ErrNotFound, nil)
	case errors.Is(err, exam.ErrNotRunning):
		writeFail(w, r, http.StatusConflict, ErrSessionNotRunning, nil)
	case errors.Is(err, exam.ErrIndexRange):
		writeFail(w, r, http.StatusBadRequest, ErrIndexRange, nil)
	case errors.Is(err, exam.ErrOptionRange):
		writeFail(w, r, http.StatusBadRequest, ErrOptionRange, nil)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeFail(w, r, http.StatusInternalServerError, ErrInternal, nil)
	}
}

// decodeJSON reads a size-limited JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		slog.Debug("bad request body", "path", r.URL.Path, "error", err)
		writeFail(w, r, http.StatusBadRequest, ErrInvalidPayload, nil)
		return false
	}
	return true
}
