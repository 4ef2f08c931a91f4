package domainerrors

import (
	"sort"
	"strings"
)

// ValidationError collects field-level problems found while validating a
// request body. The zero value is ready to use.
type ValidationError struct {
	FieldErrors map[string][]string
	FormErrors  []string
}

// Add records a problem for a dotted field path such as "amount.currency".
func (v *ValidationError) Add(field, msg string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string][]string)
	}
	v.FieldErrors[field] = append(v.FieldErrors[field], msg)
}

// AddForm records a problem that is not tied to a single field.
func (v *ValidationError) AddForm(msg string) {
	v.FormErrors = append(v.FormErrors, msg)
}

// Empty reports whether no problems were recorded.
func (v *ValidationError) Empty() bool {
	return len(v.FieldErrors) == 0 && len(v.FormErrors) == 0
}

// Err returns v as an error, or nil when nothing was recorded.
func (v *ValidationError) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	fields := make([]string, 0, len(v.FieldErrors))
	for f := range v.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields)+len(v.FormErrors))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(v.FieldErrors[f], ", "))
	}
	parts = append(parts, v.FormErrors...)
	return "validation failed: " + strings.Join(parts, "; ")
}
