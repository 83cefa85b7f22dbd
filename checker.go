package guardkit

// PermissionRef identifies a permission by name, by id, or as an already
// resolved record. The resolver normalizes every form to a concrete
// Permission before the guard check.
type PermissionRef struct {
	name string
	id   string
	perm *Permission
}

// PermissionByName references a permission by its name.
func PermissionByName(name string) PermissionRef {
	return PermissionRef{name: name}
}

// PermissionByID references a permission by its id.
func PermissionByID(id string) PermissionRef {
	return PermissionRef{id: id}
}

// ResolvedPermission wraps an already loaded Permission record.
func ResolvedPermission(p *Permission) PermissionRef {
	return PermissionRef{perm: p}
}

// Name returns the referenced name, when known without resolution.
func (r PermissionRef) Name() string {
	if r.perm != nil {
		return r.perm.Name
	}
	return r.name
}

// IsZero reports whether the reference is empty.
func (r PermissionRef) IsZero() bool {
	return r.name == "" && r.id == "" && r.perm == nil
}

// Checker is a preloaded permission snapshot for one principal: its
// accepted guards, its roles under the current team scope, and the union of
// permissions those roles grant. All methods are pure: build it once per
// request (Service.CheckerFor), stash it in the context, and check as often
// as needed without further database access.
type Checker struct {
	ref       PrincipalRef
	guards    []string
	roles     []Role
	grants    []Permission
	wildcards bool
	matcher   *WildcardMatcher
}

// NewChecker builds a Checker from already loaded data.
func NewChecker(ref PrincipalRef, guards []string, roles []Role, grants []Permission, wildcards bool) *Checker {
	return &Checker{
		ref:       ref,
		guards:    guards,
		roles:     roles,
		grants:    grants,
		wildcards: wildcards,
		matcher:   NewWildcardMatcher(),
	}
}

// Ref returns the principal reference this checker is for.
func (c *Checker) Ref() PrincipalRef {
	return c.ref
}

// GuardNames returns the principal's accepted guard set.
func (c *Checker) GuardNames() []string {
	return c.guards
}

// HasRole checks if the principal holds a role with the given name under
// any of its accepted guards.
func (c *Checker) HasRole(name string) bool {
	for _, r := range c.roles {
		if r.Name == name && c.acceptsGuard(r.GuardName) {
			return true
		}
	}
	return false
}

// HasAnyRole checks if the principal holds at least one of the named roles.
func (c *Checker) HasAnyRole(names ...string) bool {
	for _, n := range names {
		if c.HasRole(n) {
			return true
		}
	}
	return false
}

// HasAllRoles checks if the principal holds every named role.
func (c *Checker) HasAllRoles(names ...string) bool {
	for _, n := range names {
		if !c.HasRole(n) {
			return false
		}
	}
	return true
}

// HasPermission checks if the principal's roles grant the named permission.
// In discrete mode the name must match a granted record exactly; in
// wildcard mode granted names are patterns matched against it. Only grants
// under the principal's accepted guards participate.
func (c *Checker) HasPermission(name string) bool {
	for _, p := range c.grants {
		if !c.acceptsGuard(p.GuardName) {
			continue
		}
		if c.wildcards {
			if c.matcher.Match(p.Name, name) {
				return true
			}
			continue
		}
		if p.Name == name {
			return true
		}
	}
	return false
}

// HasAnyPermission checks if the principal holds at least one of the named
// permissions.
func (c *Checker) HasAnyPermission(names ...string) bool {
	for _, n := range names {
		if c.HasPermission(n) {
			return true
		}
	}
	return false
}

// HasAllPermissions checks if the principal holds every named permission.
func (c *Checker) HasAllPermissions(names ...string) bool {
	for _, n := range names {
		if !c.HasPermission(n) {
			return false
		}
	}
	return true
}

// Roles returns the principal's roles under the current team scope.
func (c *Checker) Roles() []Role {
	return c.roles
}

// Permissions returns the union of permissions granted by the principal's
// roles, restricted to its accepted guards.
func (c *Checker) Permissions() []Permission {
	out := make([]Permission, 0, len(c.grants))
	for _, p := range c.grants {
		if c.acceptsGuard(p.GuardName) {
			out = append(out, p)
		}
	}
	return out
}

// IsEmpty returns true if the principal holds no roles.
func (c *Checker) IsEmpty() bool {
	return len(c.roles) == 0
}

func (c *Checker) acceptsGuard(guard string) bool {
	for _, g := range c.guards {
		if g == guard {
			return true
		}
	}
	return false
}
