package guardkit

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDiscretePermissionCheck tests the end-to-end grant path in discrete
// mode
func TestDiscretePermissionCheck(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := setupTestService(ctx, Config{DefaultGuard: "web"})
	require.NoError(t, err)

	role, err := service.CreateRole(ctx, uniqueName("editor"), "web")
	require.NoError(t, err)
	edit, err := service.CreatePermission(ctx, uniqueName("posts.edit"), "web")
	require.NoError(t, err)
	del, err := service.CreatePermission(ctx, uniqueName("posts.delete"), "web")
	require.NoError(t, err)

	require.NoError(t, service.GivePermission(ctx, role.ID, edit.ID))

	user := NewBasicPrincipal("user", uniqueName("u"), "web")
	require.NoError(t, service.AssignRole(ctx, user.Ref(), role.ID))

	// Granted through the role.
	allowed, err := service.HasPermissionTo(ctx, user, PermissionByName(edit.Name))
	require.NoError(t, err)
	assert.True(t, allowed)

	// Exists but never attached: plain false, not an error.
	allowed, err = service.HasPermissionTo(ctx, user, PermissionByName(del.Name))
	require.NoError(t, err)
	assert.False(t, allowed)

	// By id and by resolved record give the same answer.
	allowed, err = service.HasPermissionTo(ctx, user, PermissionByID(edit.ID))
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = service.HasPermissionTo(ctx, user, ResolvedPermission(edit))
	require.NoError(t, err)
	assert.True(t, allowed)

	// A name with no record at all is a structural miss in discrete mode.
	_, err = service.HasPermissionTo(ctx, user, PermissionByName(uniqueName("ghost.perm")))
	assert.True(t, IsNotFound(err))

	// Revoking closes the path again.
	require.NoError(t, service.RevokePermission(ctx, role.ID, edit.ID))
	allowed, err = service.HasPermissionTo(ctx, user, PermissionByName(edit.Name))
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, service.DeleteRole(ctx, role.ID))
	require.NoError(t, service.DeletePermission(ctx, edit.ID))
	require.NoError(t, service.DeletePermission(ctx, del.ID))
}

// TestGuardMismatchOnCheck tests that cross-guard checks fail loudly
func TestGuardMismatchOnCheck(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := setupTestService(ctx, Config{DefaultGuard: "web"})
	require.NoError(t, err)

	perm, err := service.CreatePermission(ctx, uniqueName("billing.read"), "web")
	require.NoError(t, err)

	apiUser := NewBasicPrincipal("user", uniqueName("u"), "api")

	// The record lives under "web"; an api-only principal is a structural
	// mismatch, not a quiet false.
	_, err = service.HasPermissionTo(ctx, apiUser, ResolvedPermission(perm))
	require.Error(t, err)
	assert.True(t, IsGuardMismatch(err))

	var ge *GuardError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "web", ge.Expected)
	assert.Equal(t, []string{"api"}, ge.Accepted)

	require.NoError(t, service.DeletePermission(ctx, perm.ID))
}

// TestGuardMismatchOnAttach tests that cross-guard attachment is rejected
func TestGuardMismatchOnAttach(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := setupTestService(ctx, Config{DefaultGuard: "web"})
	require.NoError(t, err)

	role, err := service.CreateRole(ctx, uniqueName("editor"), "web")
	require.NoError(t, err)
	perm, err := service.CreatePermission(ctx, uniqueName("posts.edit"), "api")
	require.NoError(t, err)

	err = service.GivePermission(ctx, role.ID, perm.ID)
	assert.True(t, IsGuardMismatch(err))

	require.NoError(t, service.DeleteRole(ctx, role.ID))
	require.NoError(t, service.DeletePermission(ctx, perm.ID))
}

// TestWildcardPermissionCheck tests pattern grants end to end
func TestWildcardPermissionCheck(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := setupTestService(ctx, Config{DefaultGuard: "web", Wildcards: true})
	require.NoError(t, err)

	role, err := service.CreateRole(ctx, uniqueName("moderator"), "web")
	require.NoError(t, err)
	pattern, err := service.CreatePermission(ctx, "posts.*", "web")
	if IsAlreadyExists(err) {
		pattern, err = service.FindPermissionByName(ctx, "posts.*", "web")
	}
	require.NoError(t, err)

	require.NoError(t, service.GivePermission(ctx, role.ID, pattern.ID))

	user := NewBasicPrincipal("user", uniqueName("u"), "web")
	require.NoError(t, service.AssignRole(ctx, user.Ref(), role.ID))

	// Names under the pattern pass even without a record of their own.
	allowed, err := service.HasPermissionTo(ctx, user, PermissionByName("posts.edit"))
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = service.HasPermissionTo(ctx, user, PermissionByName("posts.delete.own"))
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = service.HasPermissionTo(ctx, user, PermissionByName("comments.edit"))
	require.NoError(t, err)
	assert.False(t, allowed)

	// An invalid pattern as the queried name is rejected.
	_, err = service.HasPermissionTo(ctx, user, PermissionByName("posts..bad"))
	assert.True(t, IsInvalidArgument(err))

	require.NoError(t, service.DeleteRole(ctx, role.ID))
	require.NoError(t, service.DeletePermission(ctx, pattern.ID))
}

// TestCheckerForEndToEnd tests the preloaded checker against live data
func TestCheckerForEndToEnd(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := setupTestService(ctx, Config{DefaultGuard: "web"})
	require.NoError(t, err)

	roleName := uniqueName("editor")
	role, err := service.CreateRole(ctx, roleName, "web")
	require.NoError(t, err)
	perm, err := service.CreatePermission(ctx, uniqueName("posts.edit"), "web")
	require.NoError(t, err)
	require.NoError(t, service.GivePermission(ctx, role.ID, perm.ID))

	user := NewBasicPrincipal("user", uniqueName("u"), "web")
	require.NoError(t, service.AssignRole(ctx, user.Ref(), role.ID))

	checker, err := service.CheckerFor(ctx, user)
	require.NoError(t, err)

	assert.True(t, checker.HasRole(roleName))
	assert.True(t, checker.HasPermission(perm.Name))
	assert.False(t, checker.HasPermission(uniqueName("other.perm")))
	assert.False(t, checker.IsEmpty())

	// The checker is a snapshot: revoking afterwards does not change it.
	require.NoError(t, service.RemoveRole(ctx, user.Ref(), role.ID))
	assert.True(t, checker.HasRole(roleName))

	fresh, err := service.CheckerFor(ctx, user)
	require.NoError(t, err)
	assert.True(t, fresh.IsEmpty())

	require.NoError(t, service.DeleteRole(ctx, role.ID))
	require.NoError(t, service.DeletePermission(ctx, perm.ID))
}

// TestInvalidationSignals tests one signal per effective mutation and none
// for idempotent no-ops
func TestInvalidationSignals(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	ctx := context.Background()
	var signals atomic.Int64
	service, err := setupTestService(ctx, Config{DefaultGuard: "web"},
		WithInvalidator(InvalidatorFunc(func(ctx context.Context) error {
			signals.Add(1)
			return nil
		})),
	)
	require.NoError(t, err)

	role, err := service.CreateRole(ctx, uniqueName("editor"), "web")
	require.NoError(t, err)
	perm, err := service.CreatePermission(ctx, uniqueName("posts.edit"), "web")
	require.NoError(t, err)
	assert.Equal(t, int64(2), signals.Load())

	require.NoError(t, service.GivePermission(ctx, role.ID, perm.ID))
	assert.Equal(t, int64(3), signals.Load())

	// Re-attaching the same edge changes nothing and stays silent.
	require.NoError(t, service.GivePermission(ctx, role.ID, perm.ID))
	assert.Equal(t, int64(3), signals.Load())

	ref := NewPrincipalRef("user", uniqueName("u"))
	require.NoError(t, service.AssignRole(ctx, ref, role.ID))
	require.NoError(t, service.AssignRole(ctx, ref, role.ID)) // no-op
	assert.Equal(t, int64(4), signals.Load())

	require.NoError(t, service.RemoveRole(ctx, ref, role.ID))
	require.NoError(t, service.RemoveRole(ctx, ref, role.ID)) // no-op
	assert.Equal(t, int64(5), signals.Load())

	require.NoError(t, service.DeleteRole(ctx, role.ID))
	require.NoError(t, service.DeletePermission(ctx, perm.ID))
	assert.Equal(t, int64(7), signals.Load())
}

// TestAuditTrail tests that mutations leave audit rows
func TestAuditTrail(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	ctx := WithActorID(context.Background(), "test-admin")
	service, err := setupTestService(ctx, Config{DefaultGuard: "web"})
	require.NoError(t, err)

	roleName := uniqueName("editor")
	role, err := service.CreateRole(ctx, roleName, "web")
	require.NoError(t, err)

	ref := NewPrincipalRef("user", uniqueName("u"))
	require.NoError(t, service.AssignRole(ctx, ref, role.ID))

	created, err := service.GetAuditLog(ctx, NewAuditFilter().
		WithAction(AuditActionCreated).
		WithEntity(AuditEntityRole).
		WithName(roleName))
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "test-admin", created[0].ActorID)
	assert.Equal(t, role.ID, created[0].EntityID)

	assigned, err := service.GetAuditLog(ctx, NewAuditFilter().
		WithAction(AuditActionAssigned).
		WithPrincipal(ref))
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, roleName, assigned[0].Name)

	require.NoError(t, service.DeleteRole(ctx, role.ID))

	deleted, err := service.GetAuditLog(ctx, NewAuditFilter().
		WithAction(AuditActionDeleted).
		WithEntityID(role.ID))
	require.NoError(t, err)
	assert.Len(t, deleted, 1)
}
