package guardkit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// ROLE IDENTITY OPERATIONS
// ============================================================================

// RoleOption configures role creation.
type RoleOption func(*roleOptions)

type roleOptions struct {
	team *string
}

// WithTeam pins the new role to a specific team instead of the context
// default. Only meaningful when Config.Teams is enabled.
func WithTeam(teamID string) RoleOption {
	return func(o *roleOptions) {
		o.team = &teamID
	}
}

// AsGlobal creates the role without a team, making it visible to every
// team context even when a team id is present in the context.
func AsGlobal() RoleOption {
	return func(o *roleOptions) {
		empty := ""
		o.team = &empty
	}
}

// CreateRole creates a role under the given guard. An empty guard uses the
// configured default. When teams are enabled the team id defaults to the
// context team unless WithTeam or AsGlobal overrides it.
//
// Fails with ErrAlreadyExists when a role with the same name is already
// visible under the guard and current team scope, or when a concurrent
// creation of the same (name, guard, team) wins the race.
func (s *Service) CreateRole(ctx context.Context, name, guard string, opts ...RoleOption) (*Role, error) {
	if name == "" {
		return nil, NewError(ErrInvalidArgument, "role name cannot be empty")
	}
	if guard == "" {
		guard = s.cfg.defaultGuard()
	}

	var o roleOptions
	for _, opt := range opts {
		opt(&o)
	}
	teamID := s.scope.defaultTeam(ctx, o.team)

	// Scoped pre-check: a role of this name visible under the current team
	// context (its own team or global) blocks creation.
	if _, err := s.FindRoleByName(ctx, name, guard); err == nil {
		return nil, s.roleExistsError(name, guard, teamID)
	} else if !IsNotFound(err) {
		return nil, err
	}

	now := time.Now()
	role := &Role{
		ID:        uuid.NewString(),
		Name:      name,
		GuardName: guard,
		TeamID:    teamID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := s.db.NewInsert().Model(role).Exec(ctx)
	if err = dbkit.WithErr(result, err, "CreateRole").Err(); err != nil {
		if dbkit.IsDuplicate(err) {
			// Race loser: the unique index is the arbiter.
			return nil, s.roleExistsError(name, guard, teamID)
		}
		return nil, NewError(ErrDatabaseError, "failed to create role").WithName(name).WithGuard(guard)
	}

	s.logger.Info("role created", "role", name, "guard", guard, "id", role.ID)
	s.auditEntity(ctx, AuditActionCreated, AuditEntityRole, role.ID, name, guard, teamID)
	s.invalidate(ctx, "CreateRole")

	return role, nil
}

// FindRoleByName looks up a role by name under a guard, applying the team
// scope rule: when teams are enabled a role matches if its team id is NULL
// or equals the current context team. Fails with ErrNotFound when absent.
func (s *Service) FindRoleByName(ctx context.Context, name, guard string) (*Role, error) {
	if guard == "" {
		guard = s.cfg.defaultGuard()
	}

	var role Role
	q := s.db.NewSelect().Model(&role).
		Where("r.name = ?", name).
		Where("r.guard_name = ?", guard)
	q = s.scope.apply(ctx, q, "r")

	err := dbkit.WithErr1(q.Limit(1).Scan(ctx), "FindRoleByName").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrNotFound, "role not found").WithName(name).WithGuard(guard)
		}
		return nil, err
	}
	return &role, nil
}

// FindRoleByID looks up a role by id under a guard, with the same team
// scope rule as FindRoleByName. Fails with ErrNotFound when absent.
func (s *Service) FindRoleByID(ctx context.Context, id, guard string) (*Role, error) {
	if guard == "" {
		guard = s.cfg.defaultGuard()
	}

	var role Role
	q := s.db.NewSelect().Model(&role).
		Where("r.id = ?", id).
		Where("r.guard_name = ?", guard)
	q = s.scope.apply(ctx, q, "r")

	err := dbkit.WithErr1(q.Limit(1).Scan(ctx), "FindRoleByID").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrNotFound, "role not found").WithGuard(guard)
		}
		return nil, err
	}
	return &role, nil
}

// FindOrCreateRole looks the role up and creates it on a miss. Safe under
// concurrent racing callers: a raced duplicate on the create path is treated
// as a signal to re-read, never surfaced, so both callers end up with the
// same record.
func (s *Service) FindOrCreateRole(ctx context.Context, name, guard string, opts ...RoleOption) (*Role, error) {
	role, err := s.FindRoleByName(ctx, name, guard)
	if err == nil {
		return role, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	role, err = s.CreateRole(ctx, name, guard, opts...)
	if err == nil {
		return role, nil
	}
	if !IsAlreadyExists(err) {
		return nil, err
	}

	// Lost the race: the record exists now.
	return s.FindRoleByName(ctx, name, guard)
}

// RenameRole changes a role's name, re-validating uniqueness under its
// guard and team. Fails with ErrAlreadyExists when the new name is taken
// and ErrNotFound when the role does not exist in scope.
func (s *Service) RenameRole(ctx context.Context, id, newName string) error {
	if newName == "" {
		return NewError(ErrInvalidArgument, "role name cannot be empty")
	}

	q := s.db.NewUpdate().Model((*Role)(nil)).
		Set("name = ?", newName).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id)

	result, err := q.Exec(ctx)
	if err = dbkit.WithErr(result, err, "RenameRole").Err(); err != nil {
		if dbkit.IsDuplicate(err) {
			return NewError(ErrAlreadyExists, "role name already taken").WithName(newName)
		}
		return NewError(ErrDatabaseError, "failed to rename role").WithName(newName)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return NewError(ErrNotFound, "role not found")
	}

	s.logger.Info("role renamed", "id", id, "name", newName)
	s.auditEntity(ctx, AuditActionRenamed, AuditEntityRole, id, newName, "", nil)
	s.invalidate(ctx, "RenameRole")

	return nil
}

// DeleteRole removes a role and cascades edge removal: its permission
// grants and every principal assignment referencing it go in the same
// transaction, so no dangling edge can survive a crash between the steps.
func (s *Service) DeleteRole(ctx context.Context, id string) error {
	err := s.Transaction(ctx, func(txs *Service) error {
		if _, err := txs.db.NewDelete().Model((*RolePermission)(nil)).
			Where("role_id = ?", id).Exec(ctx); err != nil {
			return dbkit.WithErr1(err, "DeleteRolePermissions").Err()
		}

		if _, err := txs.db.NewDelete().Model((*PrincipalRole)(nil)).
			Where("role_id = ?", id).Exec(ctx); err != nil {
			return dbkit.WithErr1(err, "DeleteRoleAssignments").Err()
		}

		result, err := txs.db.NewDelete().Model((*Role)(nil)).
			Where("id = ?", id).Exec(ctx)
		if err = dbkit.WithErr(result, err, "DeleteRole").Err(); err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return NewError(ErrNotFound, "role not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("role deleted", "id", id)
	s.auditEntity(ctx, AuditActionDeleted, AuditEntityRole, id, "", "", nil)
	s.invalidate(ctx, "DeleteRole")

	return nil
}

func (s *Service) roleExistsError(name, guard string, teamID *string) *Error {
	e := NewError(ErrAlreadyExists, "role already exists").WithName(name).WithGuard(guard)
	if teamID != nil {
		e = e.WithTeam(*teamID)
	}
	return e
}
