// Package guardkit provides database-backed role and permission management
// with authentication-guard isolation and optional multi-tenant team scoping.
//
// GuardKit stores roles, permissions and their assignments in your database
// and answers the question "does this principal have that permission?". It is
// the companion library to RoleKit for applications whose roles are data, not
// code: roles and permissions are created, renamed and deleted at runtime,
// and every record is pinned to an authentication guard so checks can never
// silently cross authentication contexts.
//
// # Core Concepts
//
// Guard: the authentication context a role or permission belongs to (for
// example "web" sessions vs "api" tokens). A role with guard "web" is a
// different record from a role of the same name with guard "api", and a
// permission check fails with a GuardError when the permission's guard is not
// one of the principal's accepted guards.
//
// Principal: anything that can hold roles. A principal exposes its default
// guard, its accepted guard set, and a (type, id) reference used for
// assignment rows. Users, API clients and service accounts are all
// principals.
//
// Team: an optional tenant partition. When Config.Teams is enabled, roles
// and role assignments carry a team id; a record with a NULL team id is
// global and visible to every tenant, while a record with a team id is only
// visible under that team's context. The current team id travels in the
// request context (WithTeamID), never in shared state. Permissions are NOT
// team scoped: they are a global vocabulary, and teams partition only who
// holds which role.
//
// # Basic Usage
//
//	cfg := guardkit.Config{DefaultGuard: "web"}
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	service := guardkit.NewService(db, cfg)
//
//	// Run migrations once at startup.
//	db.Migrate(ctx, service.Migrations())
//
//	// Identity: find-or-create is safe under concurrent callers.
//	editor, _ := service.FindOrCreateRole(ctx, "editor", "web")
//	edit, _ := service.FindOrCreatePermission(ctx, "posts.edit", "web")
//
//	// Assignment graph.
//	service.GivePermission(ctx, editor.ID, edit.ID)
//	service.AssignRole(ctx, user.Ref(), editor.ID)
//
//	// Resolution.
//	ok, err := service.HasPermissionTo(ctx, user, guardkit.PermissionByName("posts.edit"))
//
// # Teams
//
//	cfg := guardkit.Config{DefaultGuard: "web", Teams: true}
//	ctx = guardkit.WithTeamID(ctx, tenantID)
//
//	// Created under tenantID unless WithTeam/AsGlobal overrides it.
//	service.CreateRole(ctx, "manager", "web")
//
// Lookups under a team context match records whose team id is NULL or equals
// the current team id, so global roles remain visible to every tenant.
//
// # Wildcard Mode
//
// With Config.Wildcards enabled, granted permission names are treated as
// patterns instead of discrete records. Patterns are split on "." (or "/");
// a "*" segment matches exactly one segment of the checked name, and a
// trailing "*" matches the whole remaining tail:
//
//	"posts.*"      matches "posts.edit" and "posts.delete.own"
//	"posts.*.own"  matches "posts.edit.own" but not "posts.edit"
//	"posts.edit"   does not match "posts.edit.extra"
//
// # Cache Invalidation
//
// GuardKit does not cache. Instead, every successful mutation (create,
// rename, delete, attach, detach, assign, remove) emits a single
// invalidation signal through the Invalidator configured with
// WithInvalidator. A Redis implementation is included
// (NewRedisInvalidator); the default is a no-op.
//
// # Errors
//
// Lookups fail with ErrNotFound, duplicate creation with ErrAlreadyExists,
// cross-guard checks with ErrGuardMismatch (as a *GuardError carrying both
// sides), and malformed input with ErrInvalidArgument. A permission the
// principal simply does not hold is not an error: HasPermissionTo returns
// (false, nil).
package guardkit
