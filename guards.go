package guardkit

import (
	"sync"
)

// GuardRegistry maps principal types to their default authentication guard.
// It is populated at startup and treated as immutable afterwards, like a
// role registry: register every principal type your application checks, and
// anything unregistered falls back to the configured default guard.
type GuardRegistry struct {
	mu           sync.RWMutex
	guards       map[string]string
	defaultGuard string
}

// NewGuardRegistry creates a registry with the given fallback guard.
func NewGuardRegistry(defaultGuard string) *GuardRegistry {
	if defaultGuard == "" {
		defaultGuard = "web"
	}
	return &GuardRegistry{
		guards:       make(map[string]string),
		defaultGuard: defaultGuard,
	}
}

// Register maps a principal type to its guard.
//
// Example:
//
//	registry.Register("user", "web")
//	registry.Register("api_client", "api")
func (r *GuardRegistry) Register(principalType, guard string) *GuardRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guards[principalType] = guard
	return r
}

// GuardFor resolves the default guard for a principal type. Unregistered
// types resolve to the registry's default guard.
func (r *GuardRegistry) GuardFor(principalType string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if g, ok := r.guards[principalType]; ok {
		return g
	}
	return r.defaultGuard
}

// DefaultGuard returns the registry's fallback guard.
func (r *GuardRegistry) DefaultGuard() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultGuard
}

// PrincipalTypes returns all registered principal types.
func (r *GuardRegistry) PrincipalTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.guards))
	for t := range r.guards {
		types = append(types, t)
	}
	return types
}

// resolveGuard picks the guard for an operation: the explicit guard wins,
// then the principal's own guard, then the registry mapping for its type,
// then the configured default.
func (r *GuardRegistry) resolveGuard(explicit string, principal Principal) string {
	if explicit != "" {
		return explicit
	}
	if principal != nil {
		if g := principal.GuardName(); g != "" {
			return g
		}
		return r.GuardFor(principal.Ref().Type)
	}
	return r.DefaultGuard()
}

// ValidateGuard checks that a record's guard is a member of the principal's
// accepted guard set. On mismatch it returns a *GuardError carrying both
// sides; a check must never silently succeed across authentication contexts.
func ValidateGuard(recordGuard string, accepted []string) error {
	for _, g := range accepted {
		if g == recordGuard {
			return nil
		}
	}
	return &GuardError{Expected: recordGuard, Accepted: accepted}
}

// acceptedGuards returns the principal's guard set, falling back to the
// registry resolution when the principal declares none.
func (r *GuardRegistry) acceptedGuards(principal Principal) []string {
	guards := principal.GuardNames()
	if len(guards) > 0 {
		return guards
	}
	return []string{r.GuardFor(principal.Ref().Type)}
}
