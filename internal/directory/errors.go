package directory

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory classifies remote directory failures for propagation policy
// decisions: connection failures are fatal to the in-flight operation, while
// not-found and conflict outcomes are recoverable at the call site.
type ErrorCategory string

const (
	ErrorCategoryConnection ErrorCategory = "connection"
	ErrorCategoryNotFound   ErrorCategory = "not_found"
	ErrorCategoryConflict   ErrorCategory = "conflict"
	ErrorCategoryPermission ErrorCategory = "permission"
	ErrorCategoryValidation ErrorCategory = "validation"
	ErrorCategoryServer     ErrorCategory = "server"
	ErrorCategoryUnknown    ErrorCategory = "unknown"
)

// Error carries operation context and a category for a failed directory call.
type Error struct {
	Op       string // the operation that failed
	Category ErrorCategory
	Target   string // identity involved, if applicable
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("directory %s failed", e.Op))
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Target != "" {
		parts = append(parts, fmt.Sprintf("target: %s", e.Target))
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a categorized directory error.
func NewError(op string, category ErrorCategory, target, message string, cause error) *Error {
	return &Error{Op: op, Category: category, Target: target, Message: message, Cause: cause}
}

// Category returns the category of err, unwrapping as needed.
func Category(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryUnknown
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Category
	}
	return ErrorCategoryUnknown
}

// IsNotFound reports whether err indicates a missing object, attribute or
// permission entry.
func IsNotFound(err error) bool {
	return Category(err) == ErrorCategoryNotFound
}

// IsConflict reports whether err indicates the remote state already matches
// the requested mutation (entry or value already exists).
func IsConflict(err error) bool {
	return Category(err) == ErrorCategoryConflict
}

// IsConnection reports whether err indicates the remote session cannot be
// established or used. Connection errors abort the in-flight operation.
func IsConnection(err error) bool {
	return Category(err) == ErrorCategoryConnection
}
