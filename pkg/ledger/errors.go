package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation   = errors.New("the request is not valid")
	ErrInconsistent = errors.New("monthly totals are inconsistent")
	ErrInvalidCSV   = errors.New("the CSV file is not valid")
	ErrCache        = errors.New("the report cache could not be updated")
)

// ValidationError lists the problems of a rejected write, keyed by field.
type ValidationError struct {
	Fields map[string]string
}

func (e ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}

	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func fieldError(field, message string) ValidationError {
	return ValidationError{Fields: map[string]string{field: message}}
}
