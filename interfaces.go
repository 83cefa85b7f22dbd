package guardkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// Database defines the database operations interface for dependency
// injection.
type Database interface {
	dbkit.IDB
}

// IdentityStore owns uniqueness and CRUD for roles and permissions, keyed
// by (name, guard, team). *Service implements it.
type IdentityStore interface {
	CreateRole(ctx context.Context, name, guard string, opts ...RoleOption) (*Role, error)
	FindRoleByName(ctx context.Context, name, guard string) (*Role, error)
	FindRoleByID(ctx context.Context, id, guard string) (*Role, error)
	FindOrCreateRole(ctx context.Context, name, guard string, opts ...RoleOption) (*Role, error)
	RenameRole(ctx context.Context, id, newName string) error
	DeleteRole(ctx context.Context, id string) error

	CreatePermission(ctx context.Context, name, guard string) (*Permission, error)
	FindPermissionByName(ctx context.Context, name, guard string) (*Permission, error)
	FindPermissionByID(ctx context.Context, id, guard string) (*Permission, error)
	FindOrCreatePermission(ctx context.Context, name, guard string) (*Permission, error)
	RenamePermission(ctx context.Context, id, newName string) error
	DeletePermission(ctx context.Context, id string) error
}

// AssignmentGraph owns the Role↔Permission and Principal↔Role edge sets.
// *Service implements it.
type AssignmentGraph interface {
	GivePermission(ctx context.Context, roleID, permissionID string) error
	RevokePermission(ctx context.Context, roleID, permissionID string) error
	PermissionsOf(ctx context.Context, roleID string) ([]Permission, error)

	AssignRole(ctx context.Context, ref PrincipalRef, roleID string) error
	RemoveRole(ctx context.Context, ref PrincipalRef, roleID string) error
	RolesOf(ctx context.Context, ref PrincipalRef) ([]Role, error)
	PrincipalHasRole(ctx context.Context, ref PrincipalRef, roleID string) (bool, error)
}

// PermissionResolver answers membership queries. *Service implements it.
type PermissionResolver interface {
	HasPermissionTo(ctx context.Context, principal Principal, ref PermissionRef) (bool, error)
	CheckerFor(ctx context.Context, principal Principal) (*Checker, error)
}

// TransactionManager defines the transaction management interface.
type TransactionManager interface {
	Transaction(ctx context.Context, fn func(txs *Service) error) error
	TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(txs *Service) error) error
	ReadOnlyTransaction(ctx context.Context, fn func(txs *Service) error) error
}

// HealthMonitor defines the health monitoring interface.
type HealthMonitor interface {
	Health(ctx context.Context) dbkit.HealthStatus
	IsHealthy(ctx context.Context) bool
	Ping(ctx context.Context) error
	GetPoolStats() dbkit.PoolStats
}

// Interface conformance checks.
var (
	_ IdentityStore      = (*Service)(nil)
	_ AssignmentGraph    = (*Service)(nil)
	_ PermissionResolver = (*Service)(nil)
	_ TransactionManager = (*Service)(nil)
	_ HealthMonitor      = (*HealthService)(nil)
)
