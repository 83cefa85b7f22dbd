package guardkit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// ASSIGNMENT GRAPH
// ============================================================================

// GivePermission attaches a permission to a role. Idempotent: attaching an
// edge that already exists is not an error. Both records must live under
// the same guard; a mismatch fails with a *GuardError.
func (s *Service) GivePermission(ctx context.Context, roleID, permissionID string) error {
	role, err := s.getRole(ctx, roleID)
	if err != nil {
		return err
	}
	perm, err := s.getPermission(ctx, permissionID)
	if err != nil {
		return err
	}
	if err := ValidateGuard(perm.GuardName, []string{role.GuardName}); err != nil {
		return err
	}

	edge := &RolePermission{RoleID: roleID, PermissionID: permissionID}
	result, err := s.db.NewInsert().Model(edge).
		On("CONFLICT (role_id, permission_id) DO NOTHING").
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "GivePermission").Err(); err != nil {
		return NewError(ErrDatabaseError, "failed to attach permission").WithName(perm.Name)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Edge already present: nothing changed, nothing to invalidate.
		return nil
	}

	s.logger.Info("permission attached", "role", role.Name, "permission", perm.Name)
	s.auditEdge(ctx, AuditActionAttached, role, perm.Name, PrincipalRef{})
	s.invalidate(ctx, "GivePermission")

	return nil
}

// RevokePermission detaches a permission from a role. Idempotent: removing
// an absent edge is not an error.
func (s *Service) RevokePermission(ctx context.Context, roleID, permissionID string) error {
	result, err := s.db.NewDelete().Model((*RolePermission)(nil)).
		Where("role_id = ?", roleID).
		Where("permission_id = ?", permissionID).
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "RevokePermission").Err(); err != nil {
		return NewError(ErrDatabaseError, "failed to detach permission")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return nil
	}

	s.logger.Info("permission detached", "role_id", roleID, "permission_id", permissionID)
	s.auditEdge(ctx, AuditActionDetached, &Role{ID: roleID}, permissionID, PrincipalRef{})
	s.invalidate(ctx, "RevokePermission")

	return nil
}

// PermissionsOf returns every permission attached to a role.
func (s *Service) PermissionsOf(ctx context.Context, roleID string) ([]Permission, error) {
	var perms []Permission
	err := dbkit.WithErr1(s.db.NewSelect().Model(&perms).
		Join("JOIN role_has_permissions AS rp ON rp.permission_id = p.id").
		Where("rp.role_id = ?", roleID).
		Scan(ctx), "PermissionsOf").Err()
	if err != nil {
		return nil, err
	}
	return perms, nil
}

// AssignRole assigns a role to a principal. When teams are enabled the edge
// is stamped with the current context team, so the assignment only shows up
// under that team's scope. Idempotent.
func (s *Service) AssignRole(ctx context.Context, ref PrincipalRef, roleID string) error {
	if ref.IsZero() {
		return NewError(ErrInvalidArgument, "principal reference cannot be empty")
	}
	role, err := s.getRole(ctx, roleID)
	if err != nil {
		return err
	}

	edge := &PrincipalRole{
		PrincipalType: ref.Type,
		PrincipalID:   ref.ID,
		RoleID:        roleID,
		TeamID:        s.scope.currentTeam(ctx),
	}
	result, err := s.db.NewInsert().Model(edge).
		On("CONFLICT (principal_type, principal_id, role_id, COALESCE(team_id, '')) DO NOTHING").
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "AssignRole").Err(); err != nil {
		return NewError(ErrDatabaseError, "failed to assign role").WithName(role.Name).WithPrincipal(ref)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return nil
	}

	s.logger.Info("role assigned", "role", role.Name, "principal", ref.String())
	s.auditEdge(ctx, AuditActionAssigned, role, "", ref)
	s.invalidate(ctx, "AssignRole")

	return nil
}

// RemoveRole removes a role from a principal under the current team scope.
// Idempotent.
func (s *Service) RemoveRole(ctx context.Context, ref PrincipalRef, roleID string) error {
	if ref.IsZero() {
		return NewError(ErrInvalidArgument, "principal reference cannot be empty")
	}

	q := s.db.NewDelete().Model((*PrincipalRole)(nil)).
		Where("principal_type = ?", ref.Type).
		Where("principal_id = ?", ref.ID).
		Where("role_id = ?", roleID)
	if s.scope.enabled() {
		col := bun.Safe(s.cfg.teamsColumn())
		if tid := s.scope.currentTeam(ctx); tid != nil {
			q = q.Where("(? IS NULL OR ? = ?)", col, col, *tid)
		} else {
			q = q.Where("? IS NULL", col)
		}
	}

	result, err := q.Exec(ctx)
	if err = dbkit.WithErr(result, err, "RemoveRole").Err(); err != nil {
		return NewError(ErrDatabaseError, "failed to remove role").WithPrincipal(ref)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return nil
	}

	s.logger.Info("role removed", "role_id", roleID, "principal", ref.String())
	s.auditEdge(ctx, AuditActionRevoked, &Role{ID: roleID}, "", ref)
	s.invalidate(ctx, "RemoveRole")

	return nil
}

// RolesOf returns every role the principal holds, scoped by team when
// enabled (edges from other teams do not show up).
func (s *Service) RolesOf(ctx context.Context, ref PrincipalRef) ([]Role, error) {
	var roles []Role
	q := s.db.NewSelect().Model(&roles).
		Join("JOIN principal_roles AS pr ON pr.role_id = r.id").
		Where("pr.principal_type = ?", ref.Type).
		Where("pr.principal_id = ?", ref.ID)
	q = s.scope.apply(ctx, q, "pr")

	err := dbkit.WithErr1(q.Scan(ctx), "RolesOf").Err()
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// PrincipalHasRole reports whether the principal holds the role under the
// current team scope.
func (s *Service) PrincipalHasRole(ctx context.Context, ref PrincipalRef, roleID string) (bool, error) {
	return dbkit.Exists[PrincipalRole](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("pr.principal_type = ?", ref.Type).
			Where("pr.principal_id = ?", ref.ID).
			Where("pr.role_id = ?", roleID)
		return s.scope.apply(ctx, q, "pr")
	})
}

// getRole loads a role by id without guard or team filtering. Internal:
// graph operations address records the caller already resolved.
func (s *Service) getRole(ctx context.Context, id string) (*Role, error) {
	var role Role
	err := dbkit.WithErr1(s.db.NewSelect().Model(&role).
		Where("r.id = ?", id).Limit(1).Scan(ctx), "GetRole").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrNotFound, "role not found")
		}
		return nil, err
	}
	return &role, nil
}

// getPermission loads a permission by id without guard filtering.
func (s *Service) getPermission(ctx context.Context, id string) (*Permission, error) {
	var perm Permission
	err := dbkit.WithErr1(s.db.NewSelect().Model(&perm).
		Where("p.id = ?", id).Limit(1).Scan(ctx), "GetPermission").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrNotFound, "permission not found")
		}
		return nil, err
	}
	return &perm, nil
}
