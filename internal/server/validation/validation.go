// Package validation checks raw form submissions and turns them into typed
// input. Every rule runs; all failures are reported at once.
package validation

import (
	"net/url"
	"strings"
)

// Form is a flat map of submitted field values.
type Form map[string]string

// FormFromValues keeps the first value of every submitted field.
func FormFromValues(v url.Values) Form {
	f := make(Form, len(v))
	for k, vals := range v {
		if len(vals) > 0 {
			f[k] = vals[0]
		}
	}
	return f
}

// Get returns the field value, or "" when absent.
func (f Form) Get(key string) string {
	return f[key]
}

// FieldErrors maps a field name to its ordered, non-empty list of messages.
type FieldErrors map[string][]string

func (e FieldErrors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Empty reports whether no field failed.
func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

func required(f Form, field string) (string, bool) {
	v := strings.TrimSpace(f.Get(field))
	return v, v != ""
}
