// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by someone
// else, while ErrInvalidState signals that an operation cannot proceed
// because dependent records exist (e.g. deleting a teacher who still
// owns active courses).
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when the requested record does not exist.
// Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("record not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write collides with an existing unique
// value. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInvalidState is returned when a delete or update cannot be
// performed because of conflicting state, such as deleting a course
// that still has enrolled students. Handlers translate this into
// HTTP 400.
var ErrInvalidState = errors.New("invalid state")

// ErrEmailExists is the email-specific uniqueness conflict raised by
// the user repository.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (code 1062), optionally for one specific unique key. The unique
// indexes are the backstop for the application-level uniqueness checks,
// which are not atomic with the following insert.
func isDuplicateKey(err error, key string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return false
	}
	return key == "" || strings.Contains(msg, strings.ToLower(key))
}
