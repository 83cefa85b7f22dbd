package guardkit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// DATA RETRIEVAL
// ============================================================================

// ListRoles returns every role visible under a guard and the current team
// scope (global roles plus the current team's own).
func (s *Service) ListRoles(ctx context.Context, guard string) ([]Role, error) {
	if guard == "" {
		guard = s.cfg.defaultGuard()
	}

	var roles []Role
	q := s.db.NewSelect().Model(&roles).
		Where("r.guard_name = ?", guard).
		Order("r.name ASC")
	q = s.scope.apply(ctx, q, "r")

	if err := dbkit.WithErr1(q.Scan(ctx), "ListRoles").Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// ListPermissions returns every permission under a guard. Permissions are
// global, so no team predicate applies.
func (s *Service) ListPermissions(ctx context.Context, guard string) ([]Permission, error) {
	if guard == "" {
		guard = s.cfg.defaultGuard()
	}

	var perms []Permission
	err := dbkit.WithErr1(s.db.NewSelect().Model(&perms).
		Where("p.guard_name = ?", guard).
		Order("p.name ASC").
		Scan(ctx), "ListPermissions").Err()
	if err != nil {
		return nil, err
	}
	return perms, nil
}

// PrincipalsWithRole returns every principal assignment for a role under
// the current team scope.
func (s *Service) PrincipalsWithRole(ctx context.Context, roleID string) ([]PrincipalRole, error) {
	var edges []PrincipalRole
	q := s.db.NewSelect().Model(&edges).
		Where("pr.role_id = ?", roleID)
	q = s.scope.apply(ctx, q, "pr")

	if err := dbkit.WithErr1(q.Scan(ctx), "PrincipalsWithRole").Err(); err != nil {
		return nil, err
	}
	return edges, nil
}

// CountRoles returns the number of roles under a guard and the current
// team scope.
func (s *Service) CountRoles(ctx context.Context, guard string) (int, error) {
	if guard == "" {
		guard = s.cfg.defaultGuard()
	}
	return dbkit.Count[Role](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("r.guard_name = ?", guard)
		return s.scope.apply(ctx, q, "r")
	})
}

// CountPermissions returns the number of permissions under a guard.
func (s *Service) CountPermissions(ctx context.Context, guard string) (int, error) {
	if guard == "" {
		guard = s.cfg.defaultGuard()
	}
	return dbkit.Count[Permission](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("p.guard_name = ?", guard)
	})
}
