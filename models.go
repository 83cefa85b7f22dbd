package guardkit

import (
	"time"

	"github.com/uptrace/bun"
)

// Role is a named grant holder within a guard. When teams are enabled a role
// may additionally be pinned to a team; a NULL team id makes it global.
// (Name, GuardName, TeamID) is unique.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:r"`

	ID        string    `bun:"id,pk,type:uuid"`
	Name      string    `bun:"name,notnull"`
	GuardName string    `bun:"guard_name,notnull"`
	TeamID    *string   `bun:"team_id"` // NULL = global, visible to every team
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// IsGlobal reports whether the role is visible to every team.
func (r *Role) IsGlobal() bool {
	return r.TeamID == nil
}

// Permission is a named capability within a guard. (Name, GuardName) is
// unique. Permissions are never team scoped, even when roles are: teams
// partition who holds a role, not the permission vocabulary itself.
type Permission struct {
	bun.BaseModel `bun:"table:permissions,alias:p"`

	ID        string    `bun:"id,pk,type:uuid"`
	Name      string    `bun:"name,notnull"`
	GuardName string    `bun:"guard_name,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// RolePermission is an edge in the Role↔Permission graph. Edges hold only
// foreign ids, never embedded copies of the entities.
type RolePermission struct {
	bun.BaseModel `bun:"table:role_has_permissions,alias:rp"`

	RoleID       string `bun:"role_id,pk,type:uuid"`
	PermissionID string `bun:"permission_id,pk,type:uuid"`
}

// PrincipalRole is an edge in the Principal↔Role graph. The team id is
// stamped from the request context at assignment time when teams are
// enabled.
type PrincipalRole struct {
	bun.BaseModel `bun:"table:principal_roles,alias:pr"`

	PrincipalType string    `bun:"principal_type,notnull"`
	PrincipalID   string    `bun:"principal_id,notnull"`
	RoleID        string    `bun:"role_id,notnull,type:uuid"`
	TeamID        *string   `bun:"team_id"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// PrincipalRef identifies a principal for edge lookups without coupling
// GuardKit to the caller's user model.
type PrincipalRef struct {
	Type string // e.g. "user", "api_client"
	ID   string
}

// NewPrincipalRef creates a PrincipalRef.
func NewPrincipalRef(principalType, id string) PrincipalRef {
	return PrincipalRef{Type: principalType, ID: id}
}

// String returns a string representation of the reference.
func (p PrincipalRef) String() string {
	return p.Type + ":" + p.ID
}

// IsZero reports whether the reference is empty.
func (p PrincipalRef) IsZero() bool {
	return p.Type == "" && p.ID == ""
}

// Principal is the capability interface any role-holding entity implements:
// a default guard, the full set of guards it is accepted under, and a
// reference usable for assignment rows.
type Principal interface {
	// GuardName returns the principal's default authentication guard.
	// An empty string defers to the service's configured default.
	GuardName() string

	// GuardNames returns every guard the principal is accepted under.
	// Must include GuardName().
	GuardNames() []string

	// Ref returns the (type, id) reference used for edge lookups.
	Ref() PrincipalRef
}

// BasicPrincipal is a ready-made Principal for callers whose user model does
// not implement the interface itself.
type BasicPrincipal struct {
	PrincipalType string
	PrincipalID   string
	Guard         string
	Guards        []string
}

// NewBasicPrincipal creates a BasicPrincipal with a single guard.
func NewBasicPrincipal(principalType, id, guard string) BasicPrincipal {
	return BasicPrincipal{
		PrincipalType: principalType,
		PrincipalID:   id,
		Guard:         guard,
	}
}

// GuardName returns the principal's default guard.
func (p BasicPrincipal) GuardName() string {
	return p.Guard
}

// GuardNames returns the accepted guard set, always including the default.
func (p BasicPrincipal) GuardNames() []string {
	if len(p.Guards) == 0 {
		if p.Guard == "" {
			return nil
		}
		return []string{p.Guard}
	}
	for _, g := range p.Guards {
		if g == p.Guard {
			return p.Guards
		}
	}
	return append([]string{p.Guard}, p.Guards...)
}

// Ref returns the (type, id) reference.
func (p BasicPrincipal) Ref() PrincipalRef {
	return PrincipalRef{Type: p.PrincipalType, ID: p.PrincipalID}
}
