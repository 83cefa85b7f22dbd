package guardkit

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for GuardKit operations.
var (
	// ErrNotFound is returned when a role or permission lookup finds nothing
	// within the current guard and team scope.
	ErrNotFound = errors.New("guardkit: not found")

	// ErrAlreadyExists is returned when creation would violate the
	// (name, guard, team) uniqueness invariant.
	ErrAlreadyExists = errors.New("guardkit: already exists")

	// ErrGuardMismatch is returned when a check crosses authentication
	// contexts, e.g. a "web" permission checked against an "api" principal.
	ErrGuardMismatch = errors.New("guardkit: guard mismatch")

	// ErrInvalidArgument is returned for empty names, malformed wildcard
	// patterns and other structurally invalid input.
	ErrInvalidArgument = errors.New("guardkit: invalid argument")

	// ErrDatabaseError is returned when a database operation fails for a
	// reason other than not-found or duplicate.
	ErrDatabaseError = errors.New("guardkit: database error")
)

// Error wraps a sentinel error with the identity that triggered it.
type Error struct {
	Err       error  // Underlying sentinel error
	Message   string // Additional context
	Name      string // Role/permission name involved (if applicable)
	Guard     string // Guard name involved (if applicable)
	TeamID    string // Team involved (if applicable)
	Principal string // Principal reference involved (if applicable)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithName adds the role/permission name to the error.
func (e *Error) WithName(name string) *Error {
	e.Name = name
	return e
}

// WithGuard adds the guard name to the error.
func (e *Error) WithGuard(guard string) *Error {
	e.Guard = guard
	return e
}

// WithTeam adds the team id to the error.
func (e *Error) WithTeam(teamID string) *Error {
	e.TeamID = teamID
	return e
}

// WithPrincipal adds the principal reference to the error.
func (e *Error) WithPrincipal(ref PrincipalRef) *Error {
	e.Principal = ref.String()
	return e
}

// GuardError reports a permission check that crossed authentication
// contexts. It carries the guard the record expects and the full set of
// guards the principal is accepted under, so callers can log both sides.
type GuardError struct {
	// Expected is the guard of the permission or role being checked.
	Expected string
	// Accepted is the principal's accepted guard set.
	Accepted []string
}

// Error implements the error interface.
func (e *GuardError) Error() string {
	return fmt.Sprintf("guardkit: guard mismatch: record guard %q not in principal guards [%s]",
		e.Expected, strings.Join(e.Accepted, ", "))
}

// Is reports ErrGuardMismatch so errors.Is(err, ErrGuardMismatch) works.
func (e *GuardError) Is(target error) bool {
	return target == ErrGuardMismatch
}

// IsNotFound checks if an error is a scoped-lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is a uniqueness violation.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsGuardMismatch checks if an error is a cross-guard check.
func IsGuardMismatch(err error) bool {
	return errors.Is(err, ErrGuardMismatch)
}

// IsInvalidArgument checks if an error is due to invalid input.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
