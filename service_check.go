package guardkit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// PERMISSION RESOLUTION
// ============================================================================

// HasPermissionTo decides whether a principal holds a permission.
//
// Discrete mode: the reference is resolved to a concrete Permission under
// the principal's default guard, the permission's guard must be in the
// principal's accepted guard set (a *GuardError otherwise), and membership
// is true iff the permission's id appears in the grants of any role the
// principal holds under the current team scope.
//
// Wildcard mode: the granted permission names of the principal's roles are
// treated as patterns and the queried name must match at least one of them.
// A name that does not exist as a record is checkable in this mode.
//
// Lacking the permission is not an error: the result is (false, nil).
// Errors are reserved for structural problems such as a guard mismatch or
// an unresolvable reference.
func (s *Service) HasPermissionTo(ctx context.Context, principal Principal, ref PermissionRef) (bool, error) {
	if principal == nil {
		return false, NewError(ErrInvalidArgument, "principal cannot be nil")
	}
	if ref.IsZero() {
		return false, NewError(ErrInvalidArgument, "permission reference cannot be empty")
	}

	if s.cfg.Wildcards {
		return s.hasWildcardPermission(ctx, principal, ref)
	}
	return s.hasDiscretePermission(ctx, principal, ref)
}

func (s *Service) hasDiscretePermission(ctx context.Context, principal Principal, ref PermissionRef) (bool, error) {
	perm, err := s.ResolvePermission(ctx, principal, ref)
	if err != nil {
		return false, err
	}

	accepted := s.guards.acceptedGuards(principal)
	if err := ValidateGuard(perm.GuardName, accepted); err != nil {
		return false, err
	}

	pref := principal.Ref()
	return dbkit.Exists[PrincipalRole](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Join("JOIN role_has_permissions AS rp ON rp.role_id = pr.role_id").
			Where("pr.principal_type = ?", pref.Type).
			Where("pr.principal_id = ?", pref.ID).
			Where("rp.permission_id = ?", perm.ID)
		return s.scope.apply(ctx, q, "pr")
	})
}

func (s *Service) hasWildcardPermission(ctx context.Context, principal Principal, ref PermissionRef) (bool, error) {
	name := ref.Name()
	if name == "" {
		// Only an id was given; resolve it to learn the name.
		perm, err := s.ResolvePermission(ctx, principal, ref)
		if err != nil {
			return false, err
		}
		name = perm.Name
	}
	if err := s.matcher.Validate(name); err != nil {
		return false, err
	}

	// A resolved record still gets the guard check before matching.
	if perm := ref.perm; perm != nil {
		if err := ValidateGuard(perm.GuardName, s.guards.acceptedGuards(principal)); err != nil {
			return false, err
		}
	}

	grants, err := s.grantsOf(ctx, principal.Ref())
	if err != nil {
		return false, err
	}

	accepted := s.guards.acceptedGuards(principal)
	for _, g := range grants {
		if ValidateGuard(g.GuardName, accepted) != nil {
			continue
		}
		if s.matcher.Match(g.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// ResolvePermission normalizes a PermissionRef to a concrete record, using
// the principal's default guard for name and id lookups.
func (s *Service) ResolvePermission(ctx context.Context, principal Principal, ref PermissionRef) (*Permission, error) {
	switch {
	case ref.perm != nil:
		return ref.perm, nil
	case ref.id != "":
		return s.FindPermissionByID(ctx, ref.id, s.guards.resolveGuard("", principal))
	case ref.name != "":
		return s.FindPermissionByName(ctx, ref.name, s.guards.resolveGuard("", principal))
	default:
		return nil, NewError(ErrInvalidArgument, "permission reference cannot be empty")
	}
}

// CheckerFor loads a principal's roles and granted permissions into a
// Checker for repeated in-memory checks.
func (s *Service) CheckerFor(ctx context.Context, principal Principal) (*Checker, error) {
	if principal == nil {
		return nil, NewError(ErrInvalidArgument, "principal cannot be nil")
	}

	ref := principal.Ref()
	roles, err := s.RolesOf(ctx, ref)
	if err != nil {
		return nil, err
	}
	grants, err := s.grantsOf(ctx, ref)
	if err != nil {
		return nil, err
	}

	return NewChecker(ref, s.guards.acceptedGuards(principal), roles, grants, s.cfg.Wildcards), nil
}

// grantsOf returns the union of permissions granted by every role the
// principal holds under the current team scope.
func (s *Service) grantsOf(ctx context.Context, ref PrincipalRef) ([]Permission, error) {
	var perms []Permission
	q := s.db.NewSelect().Model(&perms).Distinct().
		Join("JOIN role_has_permissions AS rp ON rp.permission_id = p.id").
		Join("JOIN principal_roles AS pr ON pr.role_id = rp.role_id").
		Where("pr.principal_type = ?", ref.Type).
		Where("pr.principal_id = ?", ref.ID)
	q = s.scope.apply(ctx, q, "pr")

	err := dbkit.WithErr1(q.Scan(ctx), "GrantsOf").Err()
	if err != nil {
		return nil, err
	}
	return perms, nil
}
