package tabula

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoEntities is returned when a batch holds no entity type.
var ErrNoEntities = errors.New("tabula: no entity types to translate")

// BatchError collects the failures of a batch translation, one per failing
// entity type, in the order the types were given.
type BatchError struct {
	Errors []error
}

// Error returns the error string.
func (e *BatchError) Error() string {
	if len(e.Errors) == 0 {
		return "tabula: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "tabula: %d types failed:", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %s", i+1, strings.ReplaceAll(err.Error(), "\n", "\n      "))
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *BatchError) Unwrap() []error {
	return e.Errors
}

// NewBatchError returns a new BatchError if there are errors, otherwise
// returns nil. A single error is returned as is.
func NewBatchError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	switch len(filtered) {
	case 0:
		return nil
	case 1:
		return filtered[0]
	}
	return &BatchError{Errors: filtered}
}

// IsBatchError returns true if the error is a BatchError.
func IsBatchError(err error) bool {
	if err == nil {
		return false
	}
	var e *BatchError
	return errors.As(err, &e)
}
