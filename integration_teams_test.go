package guardkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTeamScopedRoleVisibility tests the NULL-or-match rule against a real
// database
func TestTeamScopedRoleVisibility(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	base := context.Background()
	service, err := setupTestService(base, Config{DefaultGuard: "web", Teams: true})
	require.NoError(t, err)

	team1 := uniqueName("team1")
	team2 := uniqueName("team2")
	ctx1 := WithTeamID(base, team1)
	ctx2 := WithTeamID(base, team2)

	name := uniqueName("editor")

	// Created under team 1's context: pinned to team 1.
	scoped, err := service.CreateRole(ctx1, name, "web")
	require.NoError(t, err)
	require.NotNil(t, scoped.TeamID)
	assert.Equal(t, team1, *scoped.TeamID)

	// Visible under team 1, invisible under team 2 and with no team.
	found, err := service.FindRoleByName(ctx1, name, "web")
	require.NoError(t, err)
	assert.Equal(t, scoped.ID, found.ID)

	_, err = service.FindRoleByName(ctx2, name, "web")
	assert.True(t, IsNotFound(err))

	_, err = service.FindRoleByName(base, name, "web")
	assert.True(t, IsNotFound(err))

	// Same name can now exist under team 2 and globally.
	other, err := service.CreateRole(ctx2, name, "web")
	require.NoError(t, err)
	assert.NotEqual(t, scoped.ID, other.ID)

	global, err := service.CreateRole(base, name, "web")
	require.NoError(t, err)
	assert.True(t, global.IsGlobal())

	// From a teamless context only the global record matches.
	found, err = service.FindRoleByName(base, name, "web")
	require.NoError(t, err)
	assert.Equal(t, global.ID, found.ID)

	require.NoError(t, service.DeleteRole(base, scoped.ID))
	require.NoError(t, service.DeleteRole(base, other.ID))
	require.NoError(t, service.DeleteRole(base, global.ID))
}

// TestRoleTeamOptions tests WithTeam and AsGlobal overriding the context
func TestRoleTeamOptions(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	base := context.Background()
	service, err := setupTestService(base, Config{DefaultGuard: "web", Teams: true})
	require.NoError(t, err)

	ctxTeam := WithTeamID(base, uniqueName("ctx-team"))
	pinned := uniqueName("pinned-team")

	explicit, err := service.CreateRole(ctxTeam, uniqueName("editor"), "web", WithTeam(pinned))
	require.NoError(t, err)
	require.NotNil(t, explicit.TeamID)
	assert.Equal(t, pinned, *explicit.TeamID)

	// AsGlobal wins over the context team.
	global, err := service.CreateRole(ctxTeam, uniqueName("admin"), "web", AsGlobal())
	require.NoError(t, err)
	assert.True(t, global.IsGlobal())

	require.NoError(t, service.DeleteRole(base, explicit.ID))
	require.NoError(t, service.DeleteRole(base, global.ID))
}

// TestPermissionsAreGlobalAcrossTeams tests that the permission vocabulary
// is never partitioned by team
func TestPermissionsAreGlobalAcrossTeams(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	base := context.Background()
	service, err := setupTestService(base, Config{DefaultGuard: "web", Teams: true})
	require.NoError(t, err)

	ctx1 := WithTeamID(base, uniqueName("team1"))
	ctx2 := WithTeamID(base, uniqueName("team2"))

	name := uniqueName("posts.edit")

	perm, err := service.CreatePermission(ctx1, name, "web")
	require.NoError(t, err)

	// The same record is visible from every team context.
	found, err := service.FindPermissionByName(ctx2, name, "web")
	require.NoError(t, err)
	assert.Equal(t, perm.ID, found.ID)

	// And a duplicate under another team context is still a duplicate.
	_, err = service.CreatePermission(ctx2, name, "web")
	assert.True(t, IsAlreadyExists(err))

	require.NoError(t, service.DeletePermission(base, perm.ID))
}

// TestTeamStampedAssignments tests that role assignments are partitioned by
// the team active at assignment time
func TestTeamStampedAssignments(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	base := context.Background()
	service, err := setupTestService(base, Config{DefaultGuard: "web", Teams: true})
	require.NoError(t, err)

	team1 := uniqueName("team1")
	team2 := uniqueName("team2")
	ctx1 := WithTeamID(base, team1)
	ctx2 := WithTeamID(base, team2)

	role, err := service.CreateRole(base, uniqueName("editor"), "web", AsGlobal())
	require.NoError(t, err)
	ref := NewPrincipalRef("user", uniqueName("u"))

	// Assigned under team 1 only.
	require.NoError(t, service.AssignRole(ctx1, ref, role.ID))

	has, err := service.PrincipalHasRole(ctx1, ref, role.ID)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = service.PrincipalHasRole(ctx2, ref, role.ID)
	require.NoError(t, err)
	assert.False(t, has)

	roles1, err := service.RolesOf(ctx1, ref)
	require.NoError(t, err)
	assert.Len(t, roles1, 1)

	roles2, err := service.RolesOf(ctx2, ref)
	require.NoError(t, err)
	assert.Empty(t, roles2)

	// The same assignment under team 2 is a distinct edge; removing under
	// team 2 leaves team 1's intact.
	require.NoError(t, service.AssignRole(ctx2, ref, role.ID))
	require.NoError(t, service.RemoveRole(ctx2, ref, role.ID))

	has, err = service.PrincipalHasRole(ctx1, ref, role.ID)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, service.DeleteRole(base, role.ID))
}

// TestTeamContextIsolationAcrossRequests tests that two team contexts built
// from the same service never observe each other's scope
func TestTeamContextIsolationAcrossRequests(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	base := context.Background()
	service, err := setupTestService(base, Config{DefaultGuard: "web", Teams: true})
	require.NoError(t, err)

	team1 := uniqueName("team1")
	team2 := uniqueName("team2")
	name := uniqueName("lead")

	r1, err := service.CreateRole(WithTeamID(base, team1), name, "web")
	require.NoError(t, err)
	r2, err := service.CreateRole(WithTeamID(base, team2), name, "web")
	require.NoError(t, err)

	// Interleaved lookups on the shared service stay scoped per context.
	f1, err := service.FindRoleByName(WithTeamID(base, team1), name, "web")
	require.NoError(t, err)
	f2, err := service.FindRoleByName(WithTeamID(base, team2), name, "web")
	require.NoError(t, err)

	assert.Equal(t, r1.ID, f1.ID)
	assert.Equal(t, r2.ID, f2.ID)
	assert.NotEqual(t, f1.ID, f2.ID)

	require.NoError(t, service.DeleteRole(base, r1.ID))
	require.NoError(t, service.DeleteRole(base, r2.ID))
}
