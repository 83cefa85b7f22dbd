package guardkit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// PERMISSION IDENTITY OPERATIONS
// ============================================================================
//
// Permissions are deliberately NOT team scoped, even when roles are. Teams
// partition who holds which role; the permission vocabulary stays global.
// Pinned by TestPermissionsAreGlobalAcrossTeams.

// CreatePermission creates a permission under the given guard. An empty
// guard uses the configured default. In wildcard mode the name must be a
// valid pattern. Fails with ErrAlreadyExists when (name, guard) is taken.
func (s *Service) CreatePermission(ctx context.Context, name, guard string) (*Permission, error) {
	if name == "" {
		return nil, NewError(ErrInvalidArgument, "permission name cannot be empty")
	}
	if s.cfg.Wildcards {
		if err := s.matcher.Validate(name); err != nil {
			return nil, err
		}
	}
	if guard == "" {
		guard = s.cfg.defaultGuard()
	}

	now := time.Now()
	perm := &Permission{
		ID:        uuid.NewString(),
		Name:      name,
		GuardName: guard,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := s.db.NewInsert().Model(perm).Exec(ctx)
	if err = dbkit.WithErr(result, err, "CreatePermission").Err(); err != nil {
		if dbkit.IsDuplicate(err) {
			return nil, NewError(ErrAlreadyExists, "permission already exists").WithName(name).WithGuard(guard)
		}
		return nil, NewError(ErrDatabaseError, "failed to create permission").WithName(name).WithGuard(guard)
	}

	s.logger.Info("permission created", "permission", name, "guard", guard, "id", perm.ID)
	s.auditEntity(ctx, AuditActionCreated, AuditEntityPermission, perm.ID, name, guard, nil)
	s.invalidate(ctx, "CreatePermission")

	return perm, nil
}

// FindPermissionByName looks up a permission by name under a guard.
// Fails with ErrNotFound when absent.
func (s *Service) FindPermissionByName(ctx context.Context, name, guard string) (*Permission, error) {
	if guard == "" {
		guard = s.cfg.defaultGuard()
	}

	var perm Permission
	err := dbkit.WithErr1(s.db.NewSelect().Model(&perm).
		Where("p.name = ?", name).
		Where("p.guard_name = ?", guard).
		Limit(1).Scan(ctx), "FindPermissionByName").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrNotFound, "permission not found").WithName(name).WithGuard(guard)
		}
		return nil, err
	}
	return &perm, nil
}

// FindPermissionByID looks up a permission by id under a guard.
// Fails with ErrNotFound when absent.
func (s *Service) FindPermissionByID(ctx context.Context, id, guard string) (*Permission, error) {
	if guard == "" {
		guard = s.cfg.defaultGuard()
	}

	var perm Permission
	err := dbkit.WithErr1(s.db.NewSelect().Model(&perm).
		Where("p.id = ?", id).
		Where("p.guard_name = ?", guard).
		Limit(1).Scan(ctx), "FindPermissionByID").Err()
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrNotFound, "permission not found").WithGuard(guard)
		}
		return nil, err
	}
	return &perm, nil
}

// FindOrCreatePermission looks the permission up and creates it on a miss.
// A raced duplicate on the create path triggers a re-read instead of an
// error, so concurrent callers converge on the same record.
func (s *Service) FindOrCreatePermission(ctx context.Context, name, guard string) (*Permission, error) {
	perm, err := s.FindPermissionByName(ctx, name, guard)
	if err == nil {
		return perm, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	perm, err = s.CreatePermission(ctx, name, guard)
	if err == nil {
		return perm, nil
	}
	if !IsAlreadyExists(err) {
		return nil, err
	}

	return s.FindPermissionByName(ctx, name, guard)
}

// RenamePermission changes a permission's name, re-validating uniqueness
// under its guard.
func (s *Service) RenamePermission(ctx context.Context, id, newName string) error {
	if newName == "" {
		return NewError(ErrInvalidArgument, "permission name cannot be empty")
	}
	if s.cfg.Wildcards {
		if err := s.matcher.Validate(newName); err != nil {
			return err
		}
	}

	result, err := s.db.NewUpdate().Model((*Permission)(nil)).
		Set("name = ?", newName).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "RenamePermission").Err(); err != nil {
		if dbkit.IsDuplicate(err) {
			return NewError(ErrAlreadyExists, "permission name already taken").WithName(newName)
		}
		return NewError(ErrDatabaseError, "failed to rename permission").WithName(newName)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return NewError(ErrNotFound, "permission not found")
	}

	s.logger.Info("permission renamed", "id", id, "name", newName)
	s.auditEntity(ctx, AuditActionRenamed, AuditEntityPermission, id, newName, "", nil)
	s.invalidate(ctx, "RenamePermission")

	return nil
}

// DeletePermission removes a permission and cascades removal of every
// role edge holding it, atomically.
func (s *Service) DeletePermission(ctx context.Context, id string) error {
	err := s.Transaction(ctx, func(txs *Service) error {
		if _, err := txs.db.NewDelete().Model((*RolePermission)(nil)).
			Where("permission_id = ?", id).Exec(ctx); err != nil {
			return dbkit.WithErr1(err, "DeletePermissionEdges").Err()
		}

		result, err := txs.db.NewDelete().Model((*Permission)(nil)).
			Where("id = ?", id).Exec(ctx)
		if err = dbkit.WithErr(result, err, "DeletePermission").Err(); err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return NewError(ErrNotFound, "permission not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("permission deleted", "id", id)
	s.auditEntity(ctx, AuditActionDeleted, AuditEntityPermission, id, "", "", nil)
	s.invalidate(ctx, "DeletePermission")

	return nil
}
