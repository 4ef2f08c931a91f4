// Package httputil holds the JSON request/response helpers shared by handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	dErrors "remitguard/pkg/domain-errors"
)

// maxBodyBytes bounds request bodies read by DecodeJSON.
const maxBodyBytes = 1 << 20

// Validatable is implemented by request bodies that check themselves after decoding.
type Validatable interface {
	Validate() error
}

// ValidationDetails mirrors the field/form split returned on 400 responses.
type ValidationDetails struct {
	FieldErrors map[string][]string `json:"fieldErrors"`
	FormErrors  []string            `json:"formErrors"`
}

// ValidationResponse is the body written for request validation failures.
type ValidationResponse struct {
	Error   string            `json:"error"`
	Details ValidationDetails `json:"details"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into a JSON error envelope. Validation errors keep
// their field detail; client errors include their message; everything else is
// reported as a bare internal_error.
func WriteError(w http.ResponseWriter, err error) {
	var verr *dErrors.ValidationError
	if errors.As(err, &verr) {
		WriteValidationError(w, verr)
		return
	}

	code := dErrors.CodeOf(err)
	body := map[string]string{"error": string(code)}
	if dErrors.IsClientError(code) {
		var de *dErrors.Error
		if errors.As(err, &de) {
			body["error_description"] = de.Message
		}
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}

// WriteValidationError writes a 400 with field-level detail.
func WriteValidationError(w http.ResponseWriter, verr *dErrors.ValidationError) {
	details := ValidationDetails{
		FieldErrors: verr.FieldErrors,
		FormErrors:  verr.FormErrors,
	}
	if details.FieldErrors == nil {
		details.FieldErrors = map[string][]string{}
	}
	if details.FormErrors == nil {
		details.FormErrors = []string{}
	}
	WriteJSON(w, http.StatusBadRequest, ValidationResponse{
		Error:   "Validation failed",
		Details: details,
	})
}

// DecodeJSON reads a JSON body into T and validates it when T implements
// Validatable. On failure it writes the response and returns ok=false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	var req T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(r.Context(), "failed to decode request body", "error", err)
		}
		verr := &dErrors.ValidationError{}
		verr.AddForm("request body must be valid JSON")
		WriteValidationError(w, verr)
		return nil, false
	}

	if v, ok := any(&req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			WriteError(w, err)
			return nil, false
		}
	}
	return &req, true
}

// isoLayout matches JavaScript's Date.toISOString output.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders t in UTC with millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// ParseTime accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date (UTC midnight).
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
