package guardkit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrorWrapping tests the Error wrapper against errors.Is
func TestErrorWrapping(t *testing.T) {
	err := NewError(ErrNotFound, "role not found").WithName("editor").WithGuard("web")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrAlreadyExists))
	assert.Equal(t, "editor", err.Name)
	assert.Equal(t, "web", err.Guard)
	assert.Contains(t, err.Error(), "not found")
	assert.Contains(t, err.Error(), "role not found")
}

// TestErrorWithoutMessage tests the bare sentinel rendering
func TestErrorWithoutMessage(t *testing.T) {
	err := NewError(ErrAlreadyExists, "")
	assert.Equal(t, ErrAlreadyExists.Error(), err.Error())
	assert.Equal(t, ErrAlreadyExists, err.Unwrap())
}

// TestErrorContextBuilders tests the chainable context setters
func TestErrorContextBuilders(t *testing.T) {
	ref := NewPrincipalRef("user", "42")
	err := NewError(ErrAlreadyExists, "duplicate").
		WithName("editor").
		WithGuard("api").
		WithTeam("team-1").
		WithPrincipal(ref)

	assert.Equal(t, "editor", err.Name)
	assert.Equal(t, "api", err.Guard)
	assert.Equal(t, "team-1", err.TeamID)
	assert.Equal(t, "user:42", err.Principal)
}

// TestGuardError tests that a guard mismatch carries both sides
func TestGuardError(t *testing.T) {
	err := ValidateGuard("web", []string{"api"})
	assert.Error(t, err)

	var ge *GuardError
	assert.True(t, errors.As(err, &ge))
	assert.Equal(t, "web", ge.Expected)
	assert.Equal(t, []string{"api"}, ge.Accepted)

	assert.True(t, errors.Is(err, ErrGuardMismatch))
	assert.True(t, IsGuardMismatch(err))
	assert.Contains(t, err.Error(), `"web"`)
	assert.Contains(t, err.Error(), "api")
}

// TestValidateGuardAccepts tests the matching cases
func TestValidateGuardAccepts(t *testing.T) {
	assert.NoError(t, ValidateGuard("web", []string{"web"}))
	assert.NoError(t, ValidateGuard("api", []string{"web", "api"}))
	assert.Error(t, ValidateGuard("web", nil))
}

// TestErrorClassifiers tests the Is* helpers
func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
	}{
		{"NotFound", NewError(ErrNotFound, "x"), IsNotFound},
		{"AlreadyExists", NewError(ErrAlreadyExists, "x"), IsAlreadyExists},
		{"GuardMismatch", &GuardError{Expected: "web"}, IsGuardMismatch},
		{"InvalidArgument", NewError(ErrInvalidArgument, "x"), IsInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.checker(tt.err))
			assert.True(t, tt.checker(fmt.Errorf("wrapped: %w", tt.err)))
			assert.False(t, tt.checker(errors.New("other")))
			assert.False(t, tt.checker(nil))
		})
	}
}
