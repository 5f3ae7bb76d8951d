package quote

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicate marks an add or import rejected by an identity collision.
var ErrDuplicate = errors.New("quote already exists")

// Issue describes one rejected input. Index is the position in an imported
// document, or -1 for single-quote input.
type Issue struct {
	Index  int
	Field  string
	Reason string
}

func (i Issue) String() string {
	if i.Index >= 0 {
		return fmt.Sprintf("entry %d: %s %s", i.Index, i.Field, i.Reason)
	}
	return fmt.Sprintf("%s %s", i.Field, i.Reason)
}

// ValidationError reports user input that was rejected.
type ValidationError struct {
	Issues []Issue
	Err    error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues)+1)
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StorageError reports a durable or session storage failure. The in-memory
// state that triggered the write is kept.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NetworkError reports a failed remote call.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Conflict pairs a local quote with a remote quote that has the same text but
// a different category.
type Conflict struct {
	Local  Quote `json:"local"`
	Server Quote `json:"server"`
}

// ConflictError blocks an automatic merge until the caller picks a resolution.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%d sync conflict(s) need resolution", len(e.Conflicts))
}

// IsStorage reports whether err is or wraps a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IsNetwork reports whether err is or wraps a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
