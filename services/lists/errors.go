package lists

import (
	"errors"
	"sort"
	"strings"

	"todolists/services/visibility"
)

var (
	// ErrAuthRequired means the operation needs an identified viewer.
	ErrAuthRequired = visibility.ErrAuthRequired
	// ErrNotFound covers both missing records and records the viewer may not see or change.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports field-level problems with submitted values.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
