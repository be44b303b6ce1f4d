package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrTaskNotFound = errors.New("task not found")

// ValidationError reports structurally invalid input, keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// BusinessRuleError is a domain invariant violation. Message is shown to the caller verbatim.
type BusinessRuleError struct {
	Message string
}

func (e *BusinessRuleError) Error() string { return e.Message }

func notFound(id int64) error {
	return fmt.Errorf("%w with id: %d", ErrTaskNotFound, id)
}
